package ad7745

import (
	"ad7745-go/errcode"

	"tinygo.org/x/drivers"
)

// Bus is the register transport owned by a Device.
//
// NOTE: Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided; the write selects the register pointer.
type Bus interface {
	drivers.I2C
	SetClock(hz uint32) error
	Clock() (uint32, error)
	Close() error
}

// Pullups is implemented by buses that can switch their SDA/SCL pull-ups.
type Pullups interface {
	SetPullups(enabled bool) error
}

// Indicator is a diagnostic side channel (e.g. a red LED) raised on
// hardware faults and timeouts. Its errors never fail a driver operation.
type Indicator interface {
	Fault() error
}

// Register I/O. Every call selects the register pointer with a write, then
// writes the value bytes or reads len(buf) sequential bytes.

func (d *Device) readReg(op string, reg byte, buf []byte) error {
	if d.res.isClosed() {
		return errcode.New(errcode.Closed, op, "device closed")
	}
	d.w[0] = reg
	return errcode.MapDriverErr(op, d.bus.Tx(d.addr, d.w[:1], buf))
}

func (d *Device) readByte(op string, reg byte) (byte, error) {
	if err := d.readReg(op, reg, d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) readU16(op string, reg byte) (uint16, error) {
	if err := d.readReg(op, reg, d.r[:2]); err != nil {
		return 0, err
	}
	return decodeU16(d.r[:2]), nil
}

func (d *Device) readU24(op string, reg byte) (uint32, error) {
	if err := d.readReg(op, reg, d.r[:3]); err != nil {
		return 0, err
	}
	return decodeRaw24(d.r[:3]), nil
}

func (d *Device) write(op string, w []byte) error {
	if d.res.isClosed() {
		return errcode.New(errcode.Closed, op, "device closed")
	}
	return errcode.MapDriverErr(op, d.bus.Tx(d.addr, w, nil))
}

func (d *Device) writeByte(op string, reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.write(op, d.w[:2])
}

// writeU16 writes high then low in one auto-incrementing transaction.
func (d *Device) writeU16(op string, reg byte, val uint16) error {
	d.w[0] = reg
	d.w[1] = byte(val >> 8) // high
	d.w[2] = byte(val)      // low
	return d.write(op, d.w[:3])
}

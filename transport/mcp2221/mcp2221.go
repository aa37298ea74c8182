// Package mcp2221 drives an AD7745 through a Microchip MCP2221A USB-to-I²C
// bridge. One GP pin can carry a fault LED.
package mcp2221

import (
	"ad7745-go/drivers/ad7745"
	"ad7745-go/errcode"

	"github.com/ardnew/mcp2221a"
	"go.uber.org/multierr"
)

// Factory USB identifiers of the MCP2221A.
const (
	VID = 0x04D8
	PID = 0x00DD
)

// NoLED disables the fault indicator.
const NoLED = -1

type Config struct {
	Index  byte   // enumeration index among matching devices
	VID    uint16 // 0 selects VID
	PID    uint16 // 0 selects PID
	LEDPin int    // GP0..GP3 driven high on faults, or NoLED
}

// i2cPort and gpioPort are the parts of the mcp2221a modules in use.
type i2cPort interface {
	SetConfig(baud uint32) error
	Write(stop bool, addr uint8, out []byte, cnt uint16) error
	Read(rep bool, addr uint8, cnt uint16) ([]byte, error)
}

type gpioPort interface {
	SetConfig(pin byte, val byte, mode mcp2221a.GPIOMode, dir mcp2221a.GPIODir) error
	Set(pin byte, val byte) error
}

type closer interface{ Close() error }

// Bridge implements ad7745.Bus and ad7745.Indicator.
type Bridge struct {
	i2c  i2cPort
	gpio gpioPort
	dev  closer
	led  int
	hz   uint32
	set  bool
}

var (
	_ ad7745.Bus       = (*Bridge)(nil)
	_ ad7745.Indicator = (*Bridge)(nil)
)

// Open enumerates the bridge over USB HID and prepares the LED pin.
func Open(cfg Config) (*Bridge, error) {
	const op = "mcp2221.Open"
	if cfg.LEDPin != NoLED && (cfg.LEDPin < 0 || cfg.LEDPin >= mcp2221a.GPPinCount) {
		return nil, errcode.New(errcode.InvalidParams, op, "led pin outside GP0..GP3")
	}
	if cfg.VID == 0 {
		cfg.VID = VID
	}
	if cfg.PID == 0 {
		cfg.PID = PID
	}
	m, err := mcp2221a.New(cfg.Index, cfg.VID, cfg.PID)
	if err != nil {
		return nil, errcode.Wrap(errcode.Transport, op, err)
	}
	b, err := newBridge(m.I2C, m.GPIO, m, cfg.LEDPin)
	if err != nil {
		return nil, multierr.Append(err, m.Close())
	}
	return b, nil
}

func newBridge(i i2cPort, g gpioPort, dev closer, led int) (*Bridge, error) {
	b := &Bridge{i2c: i, gpio: g, dev: dev, led: led}
	if led != NoLED {
		if err := g.SetConfig(byte(led), 0, mcp2221a.ModeGPIO, mcp2221a.DirOutput); err != nil {
			return nil, errcode.Wrap(errcode.Transport, "mcp2221.Open", err)
		}
	}
	return b, nil
}

// Tx writes w with a stop when r is empty. Otherwise it writes w without a
// stop and reads len(r) bytes after a repeated start.
func (b *Bridge) Tx(addr uint16, w, r []byte) error {
	a := uint8(addr)
	if len(r) == 0 {
		return b.i2c.Write(true, a, w, uint16(len(w)))
	}
	if len(w) > 0 {
		if err := b.i2c.Write(false, a, w, uint16(len(w))); err != nil {
			return err
		}
	}
	got, err := b.i2c.Read(len(w) > 0, a, uint16(len(r)))
	if err != nil {
		return err
	}
	if len(got) < len(r) {
		return errcode.New(errcode.Transport, "mcp2221.Tx", "short read")
	}
	copy(r, got)
	return nil
}

// SetClock programs the I²C baud rate. Zero keeps the chip's default.
func (b *Bridge) SetClock(hz uint32) error {
	if hz != 0 {
		if err := b.i2c.SetConfig(hz); err != nil {
			return err
		}
	}
	b.hz, b.set = hz, true
	return nil
}

// Clock reports the rate last programmed; the chip has no readback.
func (b *Bridge) Clock() (uint32, error) {
	if !b.set {
		return 0, errcode.New(errcode.Unsupported, "mcp2221.Clock", "rate not set yet")
	}
	return b.hz, nil
}

// Fault drives the LED pin high. It is a no-op without an LED.
func (b *Bridge) Fault() error { return b.setLED(1) }

// Clear drives the LED pin low.
func (b *Bridge) Clear() error { return b.setLED(0) }

func (b *Bridge) setLED(v byte) error {
	if b.led == NoLED {
		return nil
	}
	return b.gpio.Set(byte(b.led), v)
}

// Close turns the LED off and releases the USB device.
func (b *Bridge) Close() error {
	return multierr.Combine(b.Clear(), b.dev.Close())
}

package ad7745

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"ad7745-go/errcode"
	"ad7745-go/x/conv"
	"ad7745-go/x/mathx"
)

// Driver configuration.
type Config struct {
	Address uint16 // defaults to AddressDefault
	// ClockHz is applied during Init. Zero selects ClockDefaultHz.
	ClockHz int
	// SingleShot triggers one conversion per read instead of relying on
	// continuous conversion.
	SingleShot bool
	// Timeout bounds each acquisition. Default 10 s.
	Timeout time.Duration

	Logger    *slog.Logger
	Indicator Indicator        // optional
	Now       func() time.Time // optional; tests inject a fake clock
}

// DefaultConfig returns the power-on driver settings.
func DefaultConfig() Config {
	return Config{
		Address: AddressDefault,
		ClockHz: ClockDefaultHz,
		Timeout: DefaultTimeout,
	}
}

// Validate checks fields that would otherwise fail on first use.
func (c Config) Validate() error {
	if c.Address > 0x7F {
		return errcode.New(errcode.InvalidParams, "ad7745.Config", "address must be 7-bit")
	}
	if !mathx.Between(c.ClockHz, 0, ClockMaxHz) {
		return errClock("ad7745.Config", c.ClockHz)
	}
	if c.Timeout < 0 {
		return errcode.New(errcode.InvalidParams, "ad7745.Config", "timeout must not be negative")
	}
	return nil
}

// Device represents an AD7745 on a register bus. It is not safe for
// concurrent use.
type Device struct {
	bus        Bus
	addr       uint16
	clockHz    int
	singleShot bool
	timeout    time.Duration
	log        *slog.Logger
	ind        Indicator
	now        func() time.Time

	// CAPDAC LSB estimate, computed once from the gain register.
	lsb      float64
	lsbValid bool

	res     *resource
	cleanup runtime.Cleanup

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [3]byte
}

// resource closes the bus exactly once, from Close or from the runtime
// cleanup of an unreachable Device.
type resource struct {
	once   sync.Once
	bus    Bus
	log    *slog.Logger
	closed bool
	err    error
}

func (r *resource) close() error {
	r.once.Do(func() {
		r.closed = true
		r.err = errcode.Wrap(errcode.Transport, "ad7745.Close", r.bus.Close())
	})
	return r.err
}

func (r *resource) isClosed() bool { return r.closed }

// closeUnreachable runs on the cleanup goroutine; there is no caller left to
// return the error to.
func closeUnreachable(r *resource) {
	if err := r.close(); err != nil {
		r.log.Warn("ad7745: bus close on cleanup failed", "err", err)
	}
}

// New takes ownership of bus and runs Init. If Init fails the bus is left
// open and remains the caller's.
func New(bus Bus, cfg Config) (*Device, error) {
	if bus == nil {
		return nil, errcode.New(errcode.InvalidParams, "ad7745.New", "nil bus")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Device{
		bus:        bus,
		addr:       cfg.Address,
		clockHz:    cfg.ClockHz,
		singleShot: cfg.SingleShot,
		timeout:    cfg.Timeout,
		log:        cfg.Logger,
		ind:        cfg.Indicator,
		now:        cfg.Now,
		res:        &resource{bus: bus},
	}
	if d.addr == 0 {
		d.addr = AddressDefault
	}
	if d.clockHz == 0 {
		d.clockHz = ClockDefaultHz
	}
	if d.timeout == 0 {
		d.timeout = DefaultTimeout
	}
	if d.log == nil {
		d.log = slog.New(slog.DiscardHandler)
	}
	if d.now == nil {
		d.now = time.Now
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	d.res.log = d.log
	d.cleanup = runtime.AddCleanup(d, closeUnreachable, d.res)
	return d, nil
}

// initialModeConfig: idle, slowest cap and VT filters.
var initialModeConfig = ModeConfig{VTFS1: true, VTFS0: true, CapFS2: true, CapFS1: true, CapFS0: true}

// Init puts the device in a known-safe state: pull-ups on (when the bus can),
// bus clock set, VT channel disabled, idle mode with the slowest filters.
func (d *Device) Init() error {
	if p, ok := d.bus.(Pullups); ok {
		if err := p.SetPullups(true); err != nil {
			return errcode.MapDriverErr("ad7745.Init", err)
		}
	}
	if err := d.SetClock(d.clockHz); err != nil {
		return err
	}
	if err := d.SetVTSetup(VTSetup{}); err != nil {
		return err
	}
	return d.SetModeConfig(initialModeConfig)
}

// Close releases the bus. Repeated calls return the first result.
func (d *Device) Close() error {
	d.cleanup.Stop()
	return d.res.close()
}

// Introspection.
func (d *Device) Address() uint16        { return d.addr }
func (d *Device) SingleShot() bool       { return d.singleShot }
func (d *Device) Timeout() time.Duration { return d.timeout }

// SetSingleShot selects single-shot triggering for subsequent reads. The mode
// register is rewritten on the next SetCapInput or read.
func (d *Device) SetSingleShot(on bool) { d.singleShot = on }

// Bus clock.

func errClock(op string, hz int) error {
	return errcode.New(errcode.InvalidParams, op,
		"clock "+conv.Itoa(int64(hz))+" Hz outside 0..400000")
}

// SetClock validates hz against 0..400 kHz before touching the bus.
func (d *Device) SetClock(hz int) error {
	const op = "ad7745.SetClock"
	if !mathx.Between(hz, 0, ClockMaxHz) {
		return errClock(op, hz)
	}
	if d.res.isClosed() {
		return errcode.New(errcode.Closed, op, "device closed")
	}
	if err := d.bus.SetClock(uint32(hz)); err != nil {
		return errcode.MapDriverErr(op, err)
	}
	d.clockHz = hz
	return nil
}

func (d *Device) Clock() (int, error) {
	if d.res.isClosed() {
		return 0, errcode.New(errcode.Closed, "ad7745.Clock", "device closed")
	}
	hz, err := d.bus.Clock()
	if err != nil {
		return 0, errcode.MapDriverErr("ad7745.Clock", err)
	}
	return int(hz), nil
}

// Register groups. Getters always read the device; setters write the whole
// register.

func (d *Device) Status() (Status, error) {
	b, err := d.readByte("ad7745.Status", RegStatus)
	return DecodeStatus(b), err
}

// RawCapData reads CAP DATA without waiting for a fresh conversion.
func (d *Device) RawCapData() (uint32, error) { return d.readU24("ad7745.RawCapData", RegCapData) }

// RawVTData reads VT DATA without waiting for a fresh conversion.
func (d *Device) RawVTData() (uint32, error) { return d.readU24("ad7745.RawVTData", RegVTData) }

func (d *Device) CapSetup() (CapSetup, error) {
	b, err := d.readByte("ad7745.CapSetup", RegCapSetup)
	return DecodeCapSetup(b), err
}
func (d *Device) SetCapSetup(s CapSetup) error {
	return d.writeByte("ad7745.SetCapSetup", RegCapSetup, s.Encode())
}

func (d *Device) VTSetup() (VTSetup, error) {
	b, err := d.readByte("ad7745.VTSetup", RegVTSetup)
	return DecodeVTSetup(b), err
}
func (d *Device) SetVTSetup(s VTSetup) error {
	return d.writeByte("ad7745.SetVTSetup", RegVTSetup, s.Encode())
}

func (d *Device) ExcSetup() (ExcSetup, error) {
	b, err := d.readByte("ad7745.ExcSetup", RegExcSetup)
	return DecodeExcSetup(b), err
}
func (d *Device) SetExcSetup(s ExcSetup) error {
	return d.writeByte("ad7745.SetExcSetup", RegExcSetup, s.Encode())
}

func (d *Device) ModeConfig() (ModeConfig, error) {
	b, err := d.readByte("ad7745.ModeConfig", RegConfig)
	return DecodeModeConfig(b), err
}
func (d *Device) SetModeConfig(c ModeConfig) error {
	return d.writeByte("ad7745.SetModeConfig", RegConfig, c.Encode())
}

func (d *Device) CapDacA() (DacTrim, error) {
	b, err := d.readByte("ad7745.CapDacA", RegCapDacA)
	return DecodeDacTrim(b), err
}
func (d *Device) SetCapDacA(t DacTrim) error { return d.setDac("ad7745.SetCapDacA", RegCapDacA, t) }

func (d *Device) CapDacB() (DacTrim, error) {
	b, err := d.readByte("ad7745.CapDacB", RegCapDacB)
	return DecodeDacTrim(b), err
}
func (d *Device) SetCapDacB(t DacTrim) error { return d.setDac("ad7745.SetCapDacB", RegCapDacB, t) }

func (d *Device) setDac(op string, reg byte, t DacTrim) error {
	b, err := t.Encode()
	if err != nil {
		var e *errcode.E
		if errors.As(err, &e) {
			e.Op = op
		}
		return err
	}
	return d.writeByte(op, reg, b)
}

// 16-bit calibration registers.

func (d *Device) CapOffset() (uint16, error) { return d.readU16("ad7745.CapOffset", RegCapOffsetH) }
func (d *Device) SetCapOffset(v uint16) error {
	return d.writeU16("ad7745.SetCapOffset", RegCapOffsetH, v)
}

func (d *Device) CapGain() (uint16, error) { return d.readU16("ad7745.CapGain", RegCapGainH) }
func (d *Device) SetCapGain(v uint16) error {
	return d.writeU16("ad7745.SetCapGain", RegCapGainH, v)
}

func (d *Device) VoltGain() (uint16, error) { return d.readU16("ad7745.VoltGain", RegVoltGainH) }
func (d *Device) SetVoltGain(v uint16) error {
	return d.writeU16("ad7745.SetVoltGain", RegVoltGainH, v)
}

// signalFault raises the indicator; indicator errors are only logged.
func (d *Device) signalFault(op string) {
	if d.ind == nil {
		return
	}
	if err := d.ind.Fault(); err != nil {
		d.log.Warn("fault indicator failed", "op", op, "err", err)
	}
}

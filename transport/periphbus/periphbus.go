// Package periphbus adapts a periph.io I²C bus to ad7745.Bus for Linux hosts.
package periphbus

import (
	"sync"

	"ad7745-go/errcode"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

// Open initialises the periph host drivers once and opens the named bus
// ("" picks the first one registered, "1" is /dev/i2c-1).
func Open(name string) (*Bus, error) {
	hostOnce.Do(func() { _, hostErr = host.Init() })
	if hostErr != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "periphbus.Open", hostErr)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, errcode.Wrap(errcode.Transport, "periphbus.Open", err)
	}
	return New(b), nil
}

// Bus wraps an i2c.BusCloser. periph cannot report the current speed, so
// the last value set is remembered.
type Bus struct {
	b   i2c.BusCloser
	hz  uint32
	set bool
}

// New takes ownership of b.
func New(b i2c.BusCloser) *Bus { return &Bus{b: b} }

func (p *Bus) Tx(addr uint16, w, r []byte) error { return p.b.Tx(addr, w, r) }

// SetClock sets the bus speed. Zero keeps the adapter's own default.
func (p *Bus) SetClock(hz uint32) error {
	if hz != 0 {
		if err := p.b.SetSpeed(physic.Frequency(hz) * physic.Hertz); err != nil {
			return errcode.Wrap(errcode.Transport, "periphbus.SetClock", err)
		}
	}
	p.hz, p.set = hz, true
	return nil
}

func (p *Bus) Clock() (uint32, error) {
	if !p.set {
		return 0, errcode.New(errcode.Unsupported, "periphbus.Clock", "speed not set yet")
	}
	return p.hz, nil
}

func (p *Bus) Close() error { return p.b.Close() }

func (p *Bus) String() string { return p.b.String() }

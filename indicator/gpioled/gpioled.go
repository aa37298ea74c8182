//go:build linux

// Package gpioled drives a fault LED on a Linux GPIO character device line.
package gpioled

import (
	"ad7745-go/drivers/ad7745"
	"ad7745-go/errcode"

	"github.com/warthog618/gpiod"
)

const consumer = "ad7745-fault"

type line interface {
	SetValue(value int) error
	Close() error
}

// LED implements ad7745.Indicator. The line starts low.
type LED struct {
	l line
}

var _ ad7745.Indicator = (*LED)(nil)

// Open requests offset on chip (e.g. "gpiochip0") as an output.
// activeLow inverts the line for LEDs wired to the supply rail.
func Open(chip string, offset int, activeLow bool) (*LED, error) {
	opts := []gpiod.LineReqOption{gpiod.WithConsumer(consumer), gpiod.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiod.AsActiveLow)
	}
	l, err := gpiod.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, errcode.Wrap(errcode.Transport, "gpioled.Open", err)
	}
	return &LED{l: l}, nil
}

func (d *LED) Fault() error { return d.l.SetValue(1) }

func (d *LED) Clear() error { return d.l.SetValue(0) }

// Close turns the LED off and releases the line.
func (d *LED) Close() error {
	err := d.l.SetValue(0)
	if cerr := d.l.Close(); err == nil {
		err = cerr
	}
	return err
}

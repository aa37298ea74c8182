//go:build linux

// Command ad7745ctl reads, calibrates and samples AD7745 sensors described
// in a YAML device file.
//
//	ad7745ctl -config devices.yaml -device cap0 read
//	ad7745ctl -config devices.yaml -device cap0 calibrate
//	ad7745ctl -config devices.yaml -device cap0 sample
//	ad7745ctl -config devices.yaml -device cap0 regs
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ad7745-go/bus"
	"ad7745-go/config"
	"ad7745-go/drivers/ad7745"
	"ad7745-go/errcode"
	"ad7745-go/indicator/gpioled"
	"ad7745-go/services/sampler"
	"ad7745-go/transport/mcp2221"
	"ad7745-go/transport/periphbus"

	"go.uber.org/multierr"
)

func main() {
	var (
		cfgPath  = flag.String("config", "devices.yaml", "device description file")
		devID    = flag.String("device", "", "device id (default: first in file)")
		ledChip  = flag.String("led-chip", "", "gpio chip of a fault LED, e.g. gpiochip0")
		ledLine  = flag.Int("led-line", 0, "gpio line offset of the fault LED")
		bridgeGP = flag.Int("bridge-led", mcp2221.NoLED, "MCP2221A GP pin of a fault LED")
		interval = flag.Duration("interval", time.Second, "sample interval")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "read"
	}
	if err := run(cmd, *cfgPath, *devID, *ledChip, *ledLine, *bridgeGP, *interval, log); err != nil {
		log.Error("failed", "cmd", cmd, "code", errcode.Of(err), "err", err)
		os.Exit(1)
	}
}

func run(cmd, cfgPath, devID, ledChip string, ledLine, bridgeGP int, interval time.Duration, log *slog.Logger) (err error) {
	f, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if len(f.Devices) == 0 {
		return errcode.New(errcode.InvalidParams, "ad7745ctl", "no devices in "+cfgPath)
	}
	desc := f.Devices[0]
	if devID != "" {
		var ok bool
		if desc, ok = f.Find(devID); !ok {
			return errcode.New(errcode.InvalidParams, "ad7745ctl", "unknown device "+devID)
		}
	}
	cfg, setup, err := desc.AD7745()
	if err != nil {
		return err
	}
	cfg.Logger = log.With("device", desc.ID)

	b, ind, err := openBus(desc.BusRef, bridgeGP)
	if err != nil {
		return err
	}
	if ledChip != "" {
		led, lerr := gpioled.Open(ledChip, ledLine, false)
		if lerr != nil {
			return multierr.Append(lerr, b.Close())
		}
		defer func() { err = multierr.Append(err, led.Close()) }()
		ind = led
	}
	cfg.Indicator = ind

	d, err := ad7745.New(b, cfg)
	if err != nil {
		return multierr.Append(err, b.Close())
	}
	defer func() { err = multierr.Append(err, d.Close()) }()

	if err := d.Apply(setup); err != nil {
		return err
	}

	switch cmd {
	case "read":
		pf, err := d.ReadCapacitance(0)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %.6f pF\n", desc.ID, pf)
	case "calibrate":
		code, err := d.CalibrateDacA(desc.Params.DacFloor)
		if err != nil {
			return err
		}
		lsb, err := d.DacLSB()
		if err != nil {
			return err
		}
		fmt.Printf("%s: CAPDAC A = %d (%.4f pF offset)\n", desc.ID, code, float64(code)*lsb)
	case "regs":
		return dumpRegs(d)
	case "sample":
		return sample(d, desc.ID, interval, log)
	default:
		return errcode.New(errcode.InvalidParams, "ad7745ctl", "unknown command "+cmd)
	}
	return nil
}

func openBus(ref config.BusRef, bridgeGP int) (ad7745.Bus, ad7745.Indicator, error) {
	switch ref.Type {
	case "i2c":
		b, err := periphbus.Open(ref.ID)
		return b, nil, err
	case "mcp2221":
		idx, err := strconv.ParseUint(ref.ID, 10, 8)
		if err != nil && ref.ID != "" {
			return nil, nil, errcode.Wrap(errcode.InvalidParams, "ad7745ctl", err)
		}
		br, err := mcp2221.Open(mcp2221.Config{Index: byte(idx), LEDPin: bridgeGP})
		if err != nil {
			return nil, nil, err
		}
		return br, br, nil
	}
	return nil, nil, errcode.New(errcode.Unsupported, "ad7745ctl", "bus type "+ref.Type)
}

func dumpRegs(d *ad7745.Device) error {
	st, err := d.Status()
	if err != nil {
		return err
	}
	cs, err := d.CapSetup()
	if err != nil {
		return err
	}
	ex, err := d.ExcSetup()
	if err != nil {
		return err
	}
	mc, err := d.ModeConfig()
	if err != nil {
		return err
	}
	a, err := d.CapDacA()
	if err != nil {
		return err
	}
	bb, err := d.CapDacB()
	if err != nil {
		return err
	}
	off, err := d.CapOffset()
	if err != nil {
		return err
	}
	gain, err := d.CapGain()
	if err != nil {
		return err
	}
	fmt.Printf("status    %+v\n", st)
	fmt.Printf("cap setup %+v\n", cs)
	fmt.Printf("exc setup %+v\n", ex)
	fmt.Printf("config    mode=%s filter=%dHz\n", mc.Mode(), mc.CapFilter().Hz())
	fmt.Printf("capdac a  %+v\n", a)
	fmt.Printf("capdac b  %+v\n", bb)
	fmt.Printf("offset    0x%04X\n", off)
	fmt.Printf("gain      0x%04X (lsb %.5f pF)\n", gain, ad7745.DacLSBFromGain(gain))
	return nil
}

func sample(d *ad7745.Device, id string, interval time.Duration, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(16)
	conn := b.NewConnection("ad7745ctl")
	defer conn.Disconnect()
	sub := conn.Subscribe(bus.Topic{"ad7745", id, bus.Rest})

	done := make(chan error, 1)
	s := sampler.New(d, conn, sampler.Config{ID: id, Interval: interval, Logger: log})
	go func() { done <- s.Run(ctx) }()

	for {
		select {
		case err := <-done:
			return err
		case m := <-sub.Channel():
			switch p := m.Payload.(type) {
			case sampler.Reading:
				fmt.Printf("%s %s %.6f pF (0x%06X)\n", p.At.Format(time.RFC3339Nano), id, p.PF, p.Raw)
			case sampler.Fault:
				fmt.Printf("%s %s fault %s: %s\n", p.At.Format(time.RFC3339Nano), id, p.Code, p.Err)
			}
		}
	}
}

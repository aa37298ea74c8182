package ad7745

import (
	"time"

	"ad7745-go/errcode"
)

// DefaultTimeout bounds the status poll when no timeout is given.
const DefaultTimeout = 10 * time.Second

// ReadRawCap waits for an unread capacitance conversion and returns the raw
// 24-bit count. In single-shot mode a conversion is triggered first.
//
// Status is busy-polled with no delay. EXCERR aborts on the first poll
// that reports it; a timeout <= 0 selects the configured Timeout.
func (d *Device) ReadRawCap(timeout time.Duration) (uint32, error) {
	return d.acquire("ad7745.ReadRawCap", timeout, Status.CapAvailable, d.RawCapData)
}

// ReadRawVT is ReadRawCap for the voltage/temperature channel. The channel
// must have been enabled with SetVTSetup.
func (d *Device) ReadRawVT(timeout time.Duration) (uint32, error) {
	return d.acquire("ad7745.ReadRawVT", timeout, Status.VTAvailable, d.RawVTData)
}

// ReadCapacitance returns a fresh capacitance reading in pF.
func (d *Device) ReadCapacitance(timeout time.Duration) (float64, error) {
	raw, err := d.ReadRawCap(timeout)
	if err != nil {
		return 0, err
	}
	return CapToPF(raw), nil
}

func (d *Device) acquire(op string, timeout time.Duration, ready func(Status) bool, data func() (uint32, error)) (uint32, error) {
	if timeout <= 0 {
		timeout = d.timeout
	}
	if d.singleShot {
		if err := d.trigger(); err != nil {
			return 0, err
		}
	}
	start := d.now()
	for {
		st, err := d.Status()
		if err != nil {
			return 0, err
		}
		if st.ExcErr {
			d.signalFault(op)
			return 0, errcode.New(errcode.HardwareFault, op,
				"excitation output cannot be driven (short or excess capacitance to ground)")
		}
		if ready(st) {
			return data()
		}
		if d.now().Sub(start) > timeout {
			d.signalFault(op)
			return 0, errcode.New(errcode.Timeout, op, "sensor not ready within "+timeout.String())
		}
	}
}

// trigger starts one conversion, keeping the filter bits.
func (d *Device) trigger() error {
	mc, err := d.ModeConfig()
	if err != nil {
		return err
	}
	d.log.Debug("ad7745 single-shot trigger", "config", mc.Encode())
	return d.SetModeConfig(mc.WithMode(ModeSingle))
}

package ad7745

import (
	"ad7745-go/errcode"
	"ad7745-go/x/conv"
	"ad7745-go/x/mathx"
)

// CalibrationError reports the last CAPDAC code tried and its raw reading.
type CalibrationError struct {
	DacCode uint8
	Raw     uint32
}

func (e *CalibrationError) Error() string {
	return "ad7745.CalibrateDacA: calibration: no valid CAPDAC code, last attempt " +
		conv.Itoa(int64(e.DacCode)) + " @ " + conv.Hex24(e.Raw)
}

func (e *CalibrationError) Code() errcode.Code { return errcode.Calibration }

// Is lets errors.Is match errcode.Calibration.
func (e *CalibrationError) Is(target error) bool { return target == errcode.Calibration }

// CalibrateDacA finds the CAPDAC A code that leaves the most headroom: it
// raises the code from floor until the channel reads zero, steps back one
// code, and checks that reading is clipped neither low nor high. On success
// DAC A is left enabled at the returned code.
//
// After each DAC change one sample is discarded; the conversion pipeline
// still holds a result from the previous setting.
func (d *Device) CalibrateDacA(floor int) (uint8, error) {
	const op = "ad7745.CalibrateDacA"
	if !mathx.Between(floor, 0, DacCodeMax) {
		return 0, errDacCode(op, int64(floor))
	}

	if err := d.SetCapDacA(DacTrim{Enabled: true}); err != nil {
		return 0, err
	}
	// Flush stale samples.
	for i := 0; i < 2; i++ {
		if _, err := d.ReadRawCap(0); err != nil {
			return 0, err
		}
	}

	code := floor
	var raw uint32
	for ; code <= DacCodeMax; code++ {
		d.log.Debug("ad7745 calibration step", "code", code)
		var err error
		if raw, err = d.sampleAt(code); err != nil {
			return 0, err
		}
		if raw == 0 {
			break
		}
	}
	if code > DacCodeMax {
		// Never balanced inside the DAC range.
		return 0, d.calFailed(DacCodeMax, raw)
	}
	if code == 0 {
		return 0, d.calFailed(0, raw)
	}

	best := code - 1
	raw, err := d.sampleAt(best)
	if err != nil {
		return 0, err
	}
	if raw != 0 && raw != RawMax {
		d.log.Debug("ad7745 calibration done", "code", best, "raw", raw)
		return uint8(best), nil
	}
	return 0, d.calFailed(best, raw)
}

// sampleAt sets DAC A to code, discards one sample and returns the next.
func (d *Device) sampleAt(code int) (uint32, error) {
	if err := d.SetCapDacA(DacTrim{Enabled: true, Code: uint8(code)}); err != nil {
		return 0, err
	}
	if _, err := d.ReadRawCap(0); err != nil {
		return 0, err
	}
	return d.ReadRawCap(0)
}

func (d *Device) calFailed(code int, raw uint32) error {
	d.signalFault("ad7745.CalibrateDacA")
	return &CalibrationError{DacCode: uint8(code), Raw: raw}
}

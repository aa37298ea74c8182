package ad7745

import (
	"ad7745-go/errcode"
	"ad7745-go/x/conv"
)

// CapInput selects the capacitive input and excitation routing.
type CapInput uint8

const (
	CapInputCin1Exc1 CapInput = iota + 1 // CIN1 single-ended, EXCA
	CapInputCin2Exc2                     // CIN2 single-ended, EXCB (AD7746)
	CapInputDiffCin1                     // CIN1(+)/CIN1(-), EXCA with inverted EXCB
	CapInputDiffCin2                     // CIN2(+)/CIN2(-), EXCA with inverted EXCB
)

func (in CapInput) String() string {
	switch in {
	case CapInputCin1Exc1:
		return "cin1"
	case CapInputCin2Exc2:
		return "cin2"
	case CapInputDiffCin1:
		return "diff_cin1"
	case CapInputDiffCin2:
		return "diff_cin2"
	default:
		return "unknown"
	}
}

// ParseCapInput accepts the String forms.
func ParseCapInput(s string) (CapInput, error) {
	for in := CapInputCin1Exc1; in <= CapInputDiffCin2; in++ {
		if in.String() == s {
			return in, nil
		}
	}
	return 0, errcode.New(errcode.InvalidParams, "ad7745.ParseCapInput", "unknown input "+s)
}

// route returns the cap and excitation setups for an input. Excitation runs
// at the full ±VDD/2 level on every route.
func (in CapInput) route() (CapSetup, ExcSetup, bool) {
	exc := ExcSetup{ExcLvl1: true, ExcLvl0: true}
	switch in {
	case CapInputCin1Exc1:
		exc.ExcA = true
		return CapSetup{CapEn: true}, exc, true
	case CapInputCin2Exc2:
		exc.ExcB = true
		return CapSetup{CapEn: true, Cin2: true}, exc, true
	case CapInputDiffCin1:
		exc.ExcA, exc.NExcB = true, true
		return CapSetup{CapEn: true, CapDiff: true}, exc, true
	case CapInputDiffCin2:
		exc.ExcA, exc.NExcB = true, true
		return CapSetup{CapEn: true, Cin2: true, CapDiff: true}, exc, true
	default:
		return CapSetup{}, ExcSetup{}, false
	}
}

// CapFilter is a named CAPFS2..CAPFS0 combination, by output rate.
type CapFilter uint8

const (
	CapFilter87Hz CapFilter = iota // 11.0 ms
	CapFilter79Hz                  // 11.9 ms
	CapFilter44Hz                  // 20.0 ms
	CapFilter22Hz                  // 38.0 ms
	CapFilter14Hz                  // 62.0 ms
	CapFilter11Hz                  // 77.0 ms
	CapFilter9Hz                   // 92.0 ms
	CapFilter8Hz                   // 109.6 ms
)

var capFilterHz = [...]uint8{87, 79, 44, 22, 14, 11, 9, 8}

// Hz returns the nominal output rate, or 0 for an invalid value.
func (f CapFilter) Hz() int {
	if int(f) >= len(capFilterHz) {
		return 0
	}
	return int(capFilterHz[f])
}

func (f CapFilter) valid() bool { return int(f) < len(capFilterHz) }

// CapFilterFromHz maps a nominal output rate onto a CapFilter.
func CapFilterFromHz(hz int) (CapFilter, error) {
	for i, v := range capFilterHz {
		if int(v) == hz {
			return CapFilter(i), nil
		}
	}
	return 0, errcode.New(errcode.InvalidParams, "ad7745.CapFilterFromHz",
		"unsupported filter rate "+conv.Itoa(int64(hz))+" Hz")
}

// Setup is the initial measurement configuration applied by Apply.
type Setup struct {
	Input  CapInput
	Filter CapFilter
}

// SetCapInput routes the capacitive channel and selects the conversion mode
// (continuous, or single-shot when Config.SingleShot is set).
func (d *Device) SetCapInput(in CapInput) error {
	const op = "ad7745.SetCapInput"
	cs, ex, ok := in.route()
	if !ok {
		return errcode.New(errcode.InvalidParams, op, "unknown input "+conv.Itoa(int64(in)))
	}
	// Read config first and change only the mode bits.
	mc, err := d.ModeConfig()
	if err != nil {
		return err
	}
	if err := d.SetCapSetup(cs); err != nil {
		return err
	}
	if err := d.SetExcSetup(ex); err != nil {
		return err
	}
	return d.SetModeConfig(mc.WithMode(d.conversionMode()))
}

// SetCapFilter changes only the CAPFS bits of the configuration register.
func (d *Device) SetCapFilter(f CapFilter) error {
	if !f.valid() {
		return errcode.New(errcode.InvalidParams, "ad7745.SetCapFilter",
			"unknown filter "+conv.Itoa(int64(f)))
	}
	mc, err := d.ModeConfig()
	if err != nil {
		return err
	}
	return d.SetModeConfig(mc.WithCapFilter(f))
}

// Apply routes the input then selects the filter.
func (d *Device) Apply(s Setup) error {
	if err := d.SetCapInput(s.Input); err != nil {
		return err
	}
	return d.SetCapFilter(s.Filter)
}

func (d *Device) conversionMode() Mode {
	if d.singleShot {
		return ModeSingle
	}
	return ModeContinuous
}

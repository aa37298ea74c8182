package ad7745

// Unit conversions.

const (
	// CapFullScalePF is the nominal input range over the positive half of
	// the 24-bit code space.
	CapFullScalePF = 4.096
	// CAPDAC full range relative to the (gain-corrected) reference, AN-1585.
	capDacRangeFactor = 3.2
)

// CapToPF maps a raw count linearly onto picofarads: 0x800000 -> 4.096 pF.
func CapToPF(raw uint32) float64 {
	return float64(raw) * (CapFullScalePF / RawMidScale)
}

// DacLSBFromGain estimates the CAPDAC step size in pF from the CAP GAIN
// register. Typical results lie between 0.134 and 0.173 pF.
func DacLSBFromGain(gain uint16) float64 {
	factor := (65536 + float64(gain)) / 65536
	ref := CapFullScalePF * factor
	return ref * capDacRangeFactor / DacCodeMax
}

// DacLSB returns the CAPDAC step size in pF. The gain register is read on
// the first call only; call ResetDacLSB after changing the gain.
func (d *Device) DacLSB() (float64, error) {
	if d.lsbValid {
		return d.lsb, nil
	}
	gain, err := d.CapGain()
	if err != nil {
		return 0, err
	}
	d.lsb = DacLSBFromGain(gain)
	d.lsbValid = true
	return d.lsb, nil
}

// ResetDacLSB drops the cached estimate so the next DacLSB re-reads gain.
func (d *Device) ResetDacLSB() {
	d.lsb = 0
	d.lsbValid = false
}

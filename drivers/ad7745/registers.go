// Package ad7745 provides constants for register addresses and bitfields used
// in the operation of the AD7745/AD7746 capacitance-to-digital converter.
package ad7745

const (
	// 7-bit I2C address (1001_000b); 0x90/0x91 on the wire.
	AddressDefault = 0x48

	// Bus clock limits (Hz).
	ClockMaxHz     = 400_000
	ClockDefaultHz = ClockMaxHz
)

// Register sub-addresses. Multi-byte registers auto-increment high to low.
const (
	RegStatus      = 0x00 // R
	RegCapData     = 0x01 // R, 3 bytes (H, M, L)
	RegVTData      = 0x04 // R, 3 bytes (H, M, L)
	RegCapSetup    = 0x07 // R/W
	RegVTSetup     = 0x08 // R/W
	RegExcSetup    = 0x09 // R/W
	RegConfig      = 0x0A // R/W
	RegCapDacA     = 0x0B // R/W
	RegCapDacB     = 0x0C // R/W
	RegCapOffsetH  = 0x0D // R/W
	RegCapOffsetL  = 0x0E // R/W
	RegCapGainH    = 0x0F // R/W, factory calibrated
	RegCapGainL    = 0x10
	RegVoltGainH   = 0x11 // R/W, factory calibrated
	RegVoltGainL   = 0x12
	regCount       = 0x13
	regStatusReset = 0x07 // power-on value: no conversion pending
)

// STATUS (0x00). RDY bits are active-low: 0 means unread data is available.
const (
	statusExcErr = 1 << 3
	statusRdy    = 1 << 2
	statusRdyVT  = 1 << 1
	statusRdyCap = 1 << 0
)

// CAP SETUP (0x07).
const (
	capSetupCapEn   = 1 << 7
	capSetupCin2    = 1 << 6
	capSetupCapDiff = 1 << 5
	capSetupCapChop = 1 << 0
)

// VT SETUP (0x08).
const (
	vtSetupVTEn    = 1 << 7
	vtSetupVTMD1   = 1 << 6
	vtSetupVTMD0   = 1 << 5
	vtSetupExtRef  = 1 << 4
	vtSetupVTShort = 1 << 1
	vtSetupVTChop  = 1 << 0
)

// EXC SETUP (0x09).
const (
	excSetupClkCtrl = 1 << 7
	excSetupExcOn   = 1 << 6
	excSetupExcB    = 1 << 5
	excSetupNExcB   = 1 << 4 // inverted EXCB
	excSetupExcA    = 1 << 3
	excSetupNExcA   = 1 << 2 // inverted EXCA
	excSetupExcLvl1 = 1 << 1
	excSetupExcLvl0 = 1 << 0
)

// CONFIGURATION (0x0A).
const (
	cfgVTFS1  = 1 << 7
	cfgVTFS0  = 1 << 6
	cfgCapFS2 = 1 << 5
	cfgCapFS1 = 1 << 4
	cfgCapFS0 = 1 << 3
	cfgMD2    = 1 << 2
	cfgMD1    = 1 << 1
	cfgMD0    = 1 << 0
)

// CAP DAC A/B (0x0B, 0x0C).
const (
	dacEnable   = 1 << 7
	dacCodeMask = 0x7F
	DacCodeMax  = 127
)

// Raw sample bounds.
const (
	RawMax      = 0xFFFFFF // 24-bit full scale (clipped high)
	RawMidScale = 0x800000
)

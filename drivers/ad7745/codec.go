package ad7745

import (
	"ad7745-go/errcode"
	"ad7745-go/x/conv"
	"ad7745-go/x/mathx"
)

// Register codec. Every Encode is a bitwise OR of per-field masks and every
// Decode tests each mask independently, so Decode(Encode(s)) == s.

func bit(set bool, mask byte) byte {
	if set {
		return mask
	}
	return 0
}

// Status is a snapshot of the STATUS register. The RDY fields carry the raw
// bit (true == 1 == no unread data); use the *Available helpers for intent.
type Status struct {
	ExcErr bool // excitation output cannot be driven
	Rdy    bool
	RdyVT  bool
	RdyCap bool
}

func DecodeStatus(b byte) Status {
	return Status{
		ExcErr: b&statusExcErr != 0,
		Rdy:    b&statusRdy != 0,
		RdyVT:  b&statusRdyVT != 0,
		RdyCap: b&statusRdyCap != 0,
	}
}

func (s Status) Encode() byte {
	return bit(s.ExcErr, statusExcErr) | bit(s.Rdy, statusRdy) |
		bit(s.RdyVT, statusRdyVT) | bit(s.RdyCap, statusRdyCap)
}

// CapAvailable reports an unread capacitance conversion.
func (s Status) CapAvailable() bool { return !s.RdyCap }

// VTAvailable reports an unread voltage/temperature conversion.
func (s Status) VTAvailable() bool { return !s.RdyVT }

// CapSetup mirrors CAP SETUP (0x07).
type CapSetup struct {
	CapEn   bool // enable the capacitive channel
	Cin2    bool // AD7746 only: select CIN2
	CapDiff bool // differential mode
	CapChop bool // doubles conversion time; leave clear for specified performance
}

func DecodeCapSetup(b byte) CapSetup {
	return CapSetup{
		CapEn:   b&capSetupCapEn != 0,
		Cin2:    b&capSetupCin2 != 0,
		CapDiff: b&capSetupCapDiff != 0,
		CapChop: b&capSetupCapChop != 0,
	}
}

func (s CapSetup) Encode() byte {
	return bit(s.CapEn, capSetupCapEn) | bit(s.Cin2, capSetupCin2) |
		bit(s.CapDiff, capSetupCapDiff) | bit(s.CapChop, capSetupCapChop)
}

// VTSetup mirrors VT SETUP (0x08).
//
//	VTMD1 VTMD0  input
//	  0     0    internal temperature sensor
//	  0     1    external temperature diode
//	  1     0    VDD monitor
//	  1     1    external voltage (VIN)
type VTSetup struct {
	VTEn    bool
	VTMD1   bool
	VTMD0   bool
	ExtRef  bool // external reference; must be clear for the internal sensor
	VTShort bool // test only
	VTChop  bool // required for specified VT performance
}

func DecodeVTSetup(b byte) VTSetup {
	return VTSetup{
		VTEn:    b&vtSetupVTEn != 0,
		VTMD1:   b&vtSetupVTMD1 != 0,
		VTMD0:   b&vtSetupVTMD0 != 0,
		ExtRef:  b&vtSetupExtRef != 0,
		VTShort: b&vtSetupVTShort != 0,
		VTChop:  b&vtSetupVTChop != 0,
	}
}

func (s VTSetup) Encode() byte {
	return bit(s.VTEn, vtSetupVTEn) | bit(s.VTMD1, vtSetupVTMD1) | bit(s.VTMD0, vtSetupVTMD0) |
		bit(s.ExtRef, vtSetupExtRef) | bit(s.VTShort, vtSetupVTShort) | bit(s.VTChop, vtSetupVTChop)
}

// ExcSetup mirrors EXC SETUP (0x09).
//
//	EXCLVL1 EXCLVL0  swing
//	  0       0      ±VDD/8
//	  0       1      ±VDD/4
//	  1       0      ±VDD×3/8
//	  1       1      ±VDD/2
type ExcSetup struct {
	ClkCtrl bool // halves modulator clock; leave clear for specified performance
	ExcOn   bool // excitation also during VT conversion
	ExcB    bool
	NExcB   bool // inverted EXCB
	ExcA    bool
	NExcA   bool // inverted EXCA
	ExcLvl1 bool
	ExcLvl0 bool
}

func DecodeExcSetup(b byte) ExcSetup {
	return ExcSetup{
		ClkCtrl: b&excSetupClkCtrl != 0,
		ExcOn:   b&excSetupExcOn != 0,
		ExcB:    b&excSetupExcB != 0,
		NExcB:   b&excSetupNExcB != 0,
		ExcA:    b&excSetupExcA != 0,
		NExcA:   b&excSetupNExcA != 0,
		ExcLvl1: b&excSetupExcLvl1 != 0,
		ExcLvl0: b&excSetupExcLvl0 != 0,
	}
}

func (s ExcSetup) Encode() byte {
	return bit(s.ClkCtrl, excSetupClkCtrl) | bit(s.ExcOn, excSetupExcOn) |
		bit(s.ExcB, excSetupExcB) | bit(s.NExcB, excSetupNExcB) |
		bit(s.ExcA, excSetupExcA) | bit(s.NExcA, excSetupNExcA) |
		bit(s.ExcLvl1, excSetupExcLvl1) | bit(s.ExcLvl0, excSetupExcLvl0)
}

// ModeConfig mirrors CONFIGURATION (0x0A). The filter and mode sub-fields are
// kept as independent bits to match the chip layout; see CapFilter and Mode
// for the named combinations.
type ModeConfig struct {
	VTFS1  bool
	VTFS0  bool
	CapFS2 bool
	CapFS1 bool
	CapFS0 bool
	MD2    bool
	MD1    bool
	MD0    bool
}

func DecodeModeConfig(b byte) ModeConfig {
	return ModeConfig{
		VTFS1:  b&cfgVTFS1 != 0,
		VTFS0:  b&cfgVTFS0 != 0,
		CapFS2: b&cfgCapFS2 != 0,
		CapFS1: b&cfgCapFS1 != 0,
		CapFS0: b&cfgCapFS0 != 0,
		MD2:    b&cfgMD2 != 0,
		MD1:    b&cfgMD1 != 0,
		MD0:    b&cfgMD0 != 0,
	}
}

func (c ModeConfig) Encode() byte {
	return bit(c.VTFS1, cfgVTFS1) | bit(c.VTFS0, cfgVTFS0) |
		bit(c.CapFS2, cfgCapFS2) | bit(c.CapFS1, cfgCapFS1) | bit(c.CapFS0, cfgCapFS0) |
		bit(c.MD2, cfgMD2) | bit(c.MD1, cfgMD1) | bit(c.MD0, cfgMD0)
}

// Mode is a named MD2..MD0 combination.
type Mode uint8

const (
	ModeIdle       Mode = 0b000
	ModeContinuous Mode = 0b001
	ModeSingle     Mode = 0b010
	ModePowerDown  Mode = 0b011
	ModeOffsetCal  Mode = 0b101
	ModeGainCal    Mode = 0b110
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeContinuous:
		return "continuous"
	case ModeSingle:
		return "single"
	case ModePowerDown:
		return "power_down"
	case ModeOffsetCal:
		return "offset_cal"
	case ModeGainCal:
		return "gain_cal"
	default:
		return "reserved"
	}
}

// Mode returns the MD bits as a Mode.
func (c ModeConfig) Mode() Mode {
	return Mode(bit(c.MD2, 0b100) | bit(c.MD1, 0b010) | bit(c.MD0, 0b001))
}

// WithMode returns a copy with only the MD bits replaced.
func (c ModeConfig) WithMode(m Mode) ModeConfig {
	c.MD2, c.MD1, c.MD0 = m&0b100 != 0, m&0b010 != 0, m&0b001 != 0
	return c
}

// CapFilter returns the CAPFS bits as a CapFilter.
func (c ModeConfig) CapFilter() CapFilter {
	return CapFilter(bit(c.CapFS2, 0b100) | bit(c.CapFS1, 0b010) | bit(c.CapFS0, 0b001))
}

// WithCapFilter returns a copy with only the CAPFS bits replaced.
func (c ModeConfig) WithCapFilter(f CapFilter) ModeConfig {
	c.CapFS2, c.CapFS1, c.CapFS0 = f&0b100 != 0, f&0b010 != 0, f&0b001 != 0
	return c
}

// DacTrim mirrors CAP DAC A/B: enable bit plus a 7-bit code.
type DacTrim struct {
	Enabled bool
	Code    uint8
}

// NewDacTrim validates code before building a trim.
func NewDacTrim(enabled bool, code int) (DacTrim, error) {
	if !mathx.Between(code, 0, DacCodeMax) {
		return DacTrim{}, errDacCode("ad7745.NewDacTrim", int64(code))
	}
	return DacTrim{Enabled: enabled, Code: uint8(code)}, nil
}

func DecodeDacTrim(b byte) DacTrim {
	return DacTrim{Enabled: b&dacEnable != 0, Code: b & dacCodeMask}
}

// Encode fails for codes above 127 rather than masking them.
func (t DacTrim) Encode() (byte, error) {
	if t.Code > DacCodeMax {
		return 0, errDacCode("ad7745.DacTrim.Encode", int64(t.Code))
	}
	return bit(t.Enabled, dacEnable) | t.Code, nil
}

func errDacCode(op string, code int64) error {
	return errcode.New(errcode.InvalidParams, op, "dac code "+conv.Itoa(code)+" outside 0..127")
}

// Multi-byte registers are big-endian.

func decodeRaw24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func decodeU16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

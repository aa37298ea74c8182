package ad7745

import (
	"errors"
	"testing"

	"ad7745-go/errcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Decoding every byte yields every field combination, so these loops cover
// Decode(Encode(s)) == s exhaustively.
func TestCodecRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)

		st := DecodeStatus(b)
		assert.Equal(t, st, DecodeStatus(st.Encode()), "status %#02x", b)

		cs := DecodeCapSetup(b)
		assert.Equal(t, cs, DecodeCapSetup(cs.Encode()), "cap setup %#02x", b)

		vt := DecodeVTSetup(b)
		assert.Equal(t, vt, DecodeVTSetup(vt.Encode()), "vt setup %#02x", b)

		ex := DecodeExcSetup(b)
		assert.Equal(t, ex, DecodeExcSetup(ex.Encode()), "exc setup %#02x", b)
		assert.Equal(t, b, ex.Encode(), "exc setup uses all 8 bits")

		mc := DecodeModeConfig(b)
		assert.Equal(t, mc, DecodeModeConfig(mc.Encode()), "config %#02x", b)
		assert.Equal(t, b, mc.Encode(), "config uses all 8 bits")

		dt := DecodeDacTrim(b)
		enc, err := dt.Encode()
		require.NoError(t, err)
		assert.Equal(t, b, enc)
	}
}

func TestStatusDecode(t *testing.T) {
	assert.Equal(t, Status{ExcErr: true, Rdy: true, RdyVT: true, RdyCap: true}, DecodeStatus(0x0F))
	assert.Equal(t, Status{}, DecodeStatus(0x00))

	// Upper bits are not part of the register.
	assert.Equal(t, Status{}, DecodeStatus(0xF0))

	st := DecodeStatus(0x06)
	assert.True(t, st.CapAvailable())
	assert.False(t, st.VTAvailable())
}

func TestEncodeIsMaskOR(t *testing.T) {
	cases := []struct {
		name string
		got  byte
		want byte
	}{
		{"capen", CapSetup{CapEn: true}.Encode(), 0x80},
		{"cin2", CapSetup{Cin2: true}.Encode(), 0x40},
		{"capdiff", CapSetup{CapDiff: true}.Encode(), 0x20},
		{"capchop", CapSetup{CapChop: true}.Encode(), 0x01},
		{"cap all", CapSetup{CapEn: true, Cin2: true, CapDiff: true, CapChop: true}.Encode(), 0xE1},
		{"vten", VTSetup{VTEn: true}.Encode(), 0x80},
		{"vtmd", VTSetup{VTMD1: true, VTMD0: true}.Encode(), 0x60},
		{"extref", VTSetup{ExtRef: true}.Encode(), 0x10},
		{"vtshort vtchop", VTSetup{VTShort: true, VTChop: true}.Encode(), 0x03},
		{"exc default", ExcSetup{ExcLvl1: true, ExcLvl0: true}.Encode(), 0x03},
		{"exca", ExcSetup{ExcA: true}.Encode(), 0x08},
		{"nexcb", ExcSetup{NExcB: true}.Encode(), 0x10},
		{"clkctrl excon", ExcSetup{ClkCtrl: true, ExcOn: true}.Encode(), 0xC0},
		{"initial config", initialModeConfig.Encode(), 0xF8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestModeConfigTransforms(t *testing.T) {
	mc := DecodeModeConfig(0xF8)
	assert.Equal(t, ModeIdle, mc.Mode())
	assert.Equal(t, CapFilter8Hz, mc.CapFilter())

	cont := mc.WithMode(ModeContinuous)
	assert.Equal(t, byte(0xF9), cont.Encode())
	assert.Equal(t, byte(0xF8), mc.Encode(), "receiver is a value; original unchanged")

	single := cont.WithMode(ModeSingle)
	assert.Equal(t, byte(0xFA), single.Encode())
	assert.Equal(t, "single", single.Mode().String())

	f := cont.WithCapFilter(CapFilter22Hz)
	assert.Equal(t, byte(0xD9), f.Encode())
	assert.Equal(t, CapFilter22Hz, f.CapFilter())
	assert.Equal(t, ModeContinuous, f.Mode())

	assert.Equal(t, "reserved", Mode(0b100).String())
}

func TestDacTrim(t *testing.T) {
	dt, err := NewDacTrim(true, 127)
	require.NoError(t, err)
	b, err := dt.Encode()
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), b)

	dt, err = NewDacTrim(false, 0)
	require.NoError(t, err)
	b, err = dt.Encode()
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), b)

	for _, code := range []int{-1, 128, 177, 1000} {
		_, err := NewDacTrim(true, code)
		require.Error(t, err, "code %d", code)
		assert.True(t, errors.Is(err, errcode.InvalidParams))
	}

	_, err = DacTrim{Enabled: true, Code: 200}.Encode()
	require.Error(t, err)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))

	assert.Equal(t, DacTrim{Enabled: true, Code: 49}, DecodeDacTrim(0xB1))
}

func TestBigEndianDecode(t *testing.T) {
	assert.Equal(t, uint32(0x123456), decodeRaw24([]byte{0x12, 0x34, 0x56}))
	assert.Equal(t, uint32(0xFFFFFF), decodeRaw24([]byte{0xFF, 0xFF, 0xFF}))
	assert.Equal(t, uint16(0xBEEF), decodeU16([]byte{0xBE, 0xEF}))
}

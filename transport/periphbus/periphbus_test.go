package periphbus

import (
	"testing"

	"ad7745-go/drivers/ad7745"
	"ad7745-go/errcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

var _ ad7745.Bus = (*Bus)(nil)

func TestClock(t *testing.T) {
	b := New(&i2ctest.Playback{})
	_, err := b.Clock()
	assert.Equal(t, errcode.Unsupported, errcode.Of(err))

	require.NoError(t, b.SetClock(100_000))
	hz, err := b.Clock()
	require.NoError(t, err)
	assert.Equal(t, uint32(100_000), hz)

	require.NoError(t, b.SetClock(0))
	hz, err = b.Clock()
	require.NoError(t, err)
	assert.Zero(t, hz)
	require.NoError(t, b.Close())
}

func TestDriverOverPlayback(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			// Init
			{Addr: 0x48, W: []byte{0x08, 0x00}},
			{Addr: 0x48, W: []byte{0x0A, 0xF8}},
			// SetCapInput(cin2): config read, cap setup, exc setup, config
			{Addr: 0x48, W: []byte{0x0A}, R: []byte{0xF8}},
			{Addr: 0x48, W: []byte{0x07, 0xC0}},
			{Addr: 0x48, W: []byte{0x09, 0x23}},
			{Addr: 0x48, W: []byte{0x0A, 0xF9}},
			// ReadRawCap: one busy poll, one ready poll, data
			{Addr: 0x48, W: []byte{0x00}, R: []byte{0x07}},
			{Addr: 0x48, W: []byte{0x00}, R: []byte{0x06}},
			{Addr: 0x48, W: []byte{0x01}, R: []byte{0x80, 0x12, 0x34}},
		},
		DontPanic: true,
	}
	d, err := ad7745.New(New(pb), ad7745.Config{ClockHz: 100_000})
	require.NoError(t, err)

	hz, err := d.Clock()
	require.NoError(t, err)
	assert.Equal(t, 100_000, hz)

	require.NoError(t, d.SetCapInput(ad7745.CapInputCin2Exc2))
	raw, err := d.ReadRawCap(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x801234), raw)

	// Playback.Close fails if any scripted transaction is left over.
	require.NoError(t, d.Close())
}

func TestPlaybackMismatchIsTransportError(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x48, W: []byte{0x08, 0x01}}},
		DontPanic: true,
	}
	_, err := ad7745.New(New(pb), ad7745.Config{})
	require.Error(t, err)
	assert.Equal(t, errcode.Transport, errcode.Of(err))
}

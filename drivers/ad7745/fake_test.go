package ad7745

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"
)

// Compile-time checks.
var (
	_ drivers.I2C = (*fakeBus)(nil)
	_ Bus         = (*fakeBus)(nil)
	_ Pullups     = (*fakeBus)(nil)
)

var errNack = errors.New("i2c: nack")

// fakeBus is a scripted AD7745 register file. Writes land in regs; reads of
// STATUS and CAP DATA can be scripted.
type fakeBus struct {
	regs [regCount]byte
	hz   uint32
	ops  []string // call order, e.g. "clock:400000", "w:0A F8"

	// status returns the STATUS byte for the n-th status read (1-based).
	status func(n int) byte
	// capValue returns CAP DATA for the current DAC A setting.
	capValue func(dacA DacTrim) uint32

	statusReads int
	capReads    int
	failTx      error
	closeErr    error
	closed      atomic.Int32 // also bumped by the runtime cleanup goroutine
}

func newFakeBus() *fakeBus {
	f := &fakeBus{}
	f.regs[RegStatus] = regStatusReset
	f.regs[RegExcSetup] = 0x03
	return f
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	if addr != AddressDefault {
		return errNack
	}
	if f.failTx != nil {
		return f.failTx
	}
	if len(w) == 0 {
		return errors.New("fake: missing register pointer")
	}
	reg := int(w[0])
	if reg+max(len(w)-1, len(r)) > regCount {
		return errors.New("fake: register out of range")
	}
	if len(r) == 0 {
		f.ops = append(f.ops, "w:"+hexBytes(w))
		copy(f.regs[reg:], w[1:])
		return nil
	}
	f.ops = append(f.ops, fmt.Sprintf("r:%02X/%d", reg, len(r)))
	switch reg {
	case RegStatus:
		f.statusReads++
		b := f.regs[RegStatus]
		if f.status != nil {
			b = f.status(f.statusReads)
		}
		r[0] = b
		return nil
	case RegCapData:
		f.capReads++
		if f.capValue != nil {
			v := f.capValue(DecodeDacTrim(f.regs[RegCapDacA]))
			r[0], r[1], r[2] = byte(v>>16), byte(v>>8), byte(v)
			return nil
		}
	}
	copy(r, f.regs[reg:])
	return nil
}

func (f *fakeBus) SetClock(hz uint32) error {
	f.ops = append(f.ops, fmt.Sprintf("clock:%d", hz))
	f.hz = hz
	return nil
}

func (f *fakeBus) Clock() (uint32, error) { return f.hz, nil }

func (f *fakeBus) SetPullups(on bool) error {
	f.ops = append(f.ops, fmt.Sprintf("pullups:%t", on))
	return nil
}

func (f *fakeBus) Close() error {
	f.closed.Add(1)
	return f.closeErr
}

// writes returns only the register writes recorded so far.
func (f *fakeBus) writes() []string {
	var out []string
	for _, op := range f.ops {
		if strings.HasPrefix(op, "w:") {
			out = append(out, op)
		}
	}
	return out
}

func (f *fakeBus) reset() { f.ops = nil }

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}

// plainBus hides the Pullups method of a fakeBus.
type plainBus struct{ f *fakeBus }

func (p plainBus) Tx(addr uint16, w, r []byte) error { return p.f.Tx(addr, w, r) }
func (p plainBus) SetClock(hz uint32) error          { return p.f.SetClock(hz) }
func (p plainBus) Clock() (uint32, error)            { return p.f.Clock() }
func (p plainBus) Close() error                      { return p.f.Close() }

type mockIndicator struct{ mock.Mock }

func (m *mockIndicator) Fault() error { return m.Called().Error(0) }

// fakeClock advances by step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestDevice(t *testing.T, f *fakeBus, cfg Config) *Device {
	t.Helper()
	d, err := New(f, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	f.reset()
	return d
}

// readyStatus reports unread capacitance and VT conversions.
func readyStatus(int) byte { return 0x00 }

// busyStatus never reports data.
func busyStatus(int) byte { return regStatusReset }

// syncBuffer is a log sink safe for use from the cleanup goroutine.
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

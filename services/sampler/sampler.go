// Package sampler polls one AD7745 at a fixed interval and publishes its
// readings and faults on the bus.
package sampler

import (
	"context"
	"log/slog"
	"time"

	"ad7745-go/bus"
	"ad7745-go/drivers/ad7745"
	"ad7745-go/errcode"
)

// Reader is the part of *ad7745.Device a sampler needs.
type Reader interface {
	ReadRawCap(timeout time.Duration) (uint32, error)
}

var _ Reader = (*ad7745.Device)(nil)

type Reading struct {
	Raw uint32
	PF  float64
	At  time.Time
}

type Fault struct {
	Code errcode.Code
	Err  string
	At   time.Time
}

// ValueTopic carries the latest Reading (retained).
func ValueTopic(id string) bus.Topic { return bus.Topic{"ad7745", id, "value"} }

// FaultTopic carries the latest Fault (retained). It is cleared after the
// next good reading.
func FaultTopic(id string) bus.Topic { return bus.Topic{"ad7745", id, "fault"} }

type Config struct {
	ID          string
	Interval    time.Duration // default 1s
	Timeout     time.Duration // per read; 0 uses the device timeout
	MaxFailures int           // consecutive failures before Run gives up; default 3
	Logger      *slog.Logger
	Now         func() time.Time
}

type Sampler struct {
	r       Reader
	conn    *bus.Connection
	cfg     Config
	log     *slog.Logger
	failing bool
}

func New(r Reader, conn *bus.Connection, cfg Config) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Sampler{r: r, conn: conn, cfg: cfg, log: log.With("device", cfg.ID)}
}

// SampleOnce takes one reading and publishes it, or publishes the fault.
func (s *Sampler) SampleOnce() (Reading, error) {
	raw, err := s.r.ReadRawCap(s.cfg.Timeout)
	now := s.cfg.Now()
	if err != nil {
		s.failing = true
		s.conn.Publish(&bus.Message{
			Topic:    FaultTopic(s.cfg.ID),
			Payload:  Fault{Code: errcode.Of(err), Err: err.Error(), At: now},
			Retained: true,
		})
		return Reading{}, err
	}
	if s.failing {
		s.failing = false
		s.conn.Publish(&bus.Message{Topic: FaultTopic(s.cfg.ID), Retained: true})
	}
	rd := Reading{Raw: raw, PF: ad7745.CapToPF(raw), At: now}
	s.conn.Publish(&bus.Message{Topic: ValueTopic(s.cfg.ID), Payload: rd, Retained: true})
	return rd, nil
}

// Run samples immediately and then every Interval until ctx is done or
// MaxFailures reads in a row have failed; in the latter case it returns the
// last error.
func (s *Sampler) Run(ctx context.Context) error {
	tick := time.NewTicker(s.cfg.Interval)
	defer tick.Stop()

	failures := 0
	for {
		if _, err := s.SampleOnce(); err != nil {
			failures++
			s.log.Warn("sample failed", "err", err, "failures", failures)
			if failures >= s.cfg.MaxFailures {
				return err
			}
		} else {
			failures = 0
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}

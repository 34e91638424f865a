package sensor

import (
	"time"

	"github.com/tlikar/garage-monitor/internal/door"
)

// Sampler converts repeated raw readings into one confirmed door state.
// It takes Count readings separated by Gap, resolves each sensor channel
// by majority vote, and combines the two channels through the truth table.
//
// Transient read failures must not look like transitions, so when a tick
// yields no usable samples the sampler returns the previously confirmed
// state, or StateUnknown before any state was ever confirmed.
type Sampler struct {
	reader Reader
	count  int
	gap    time.Duration

	// sleep is injectable for tests; defaults to time.Sleep.
	sleep func(time.Duration)

	// last successfully confirmed state, "" until the first success.
	last door.State
}

// NewSampler creates a sampler over the given reader. count defaults to 3
// and gap to 100ms when zero.
func NewSampler(reader Reader, count int, gap time.Duration) *Sampler {
	if count <= 0 {
		count = 3
	}
	if gap <= 0 {
		gap = 100 * time.Millisecond
	}
	return &Sampler{
		reader: reader,
		count:  count,
		gap:    gap,
		sleep:  time.Sleep,
	}
}

// SetSleep replaces the inter-sample delay function. Tests use this to run
// without real waits.
func (s *Sampler) SetSleep(sleep func(time.Duration)) {
	s.sleep = sleep
}

// Sample returns one confirmed door state.
func (s *Sampler) Sample() door.State {
	var openSamples, closedSamples []bool

	for i := 0; i < s.count; i++ {
		if i > 0 {
			s.sleep(s.gap)
		}
		r, err := s.reader.ReadRaw()
		if err != nil {
			// Transient by definition at this layer; the failed sample
			// simply drops out of the vote.
			continue
		}
		openSamples = append(openSamples, r.Open)
		closedSamples = append(closedSamples, r.Closed)
	}

	if len(openSamples) == 0 {
		return s.fallback()
	}

	state := door.Resolve(door.Reading{
		Open:   door.Majority(openSamples),
		Closed: door.Majority(closedSamples),
	})
	s.last = state
	return state
}

func (s *Sampler) fallback() door.State {
	if s.last == "" {
		return door.StateUnknown
	}
	return s.last
}

package sensor

import (
	"testing"
	"time"

	"github.com/tlikar/garage-monitor/internal/door"
)

func noSleep(time.Duration) {}

func newTestSampler(r Reader) *Sampler {
	s := NewSampler(r, 3, 100*time.Millisecond)
	s.SetSleep(noSleep)
	return s
}

func TestSampleMajorityIgnoresSingleNoise(t *testing.T) {
	// open channel reads 1,0,1 -> open; closed channel stays clear.
	reader := NewFakeReader(
		door.Reading{Open: true},
		door.Reading{Open: false},
		door.Reading{Open: true},
	)
	s := newTestSampler(reader)

	if got := s.Sample(); got != door.StateOpen {
		t.Errorf("Sample() = %s, want %s", got, door.StateOpen)
	}
	if reader.Reads != 3 {
		t.Errorf("expected 3 raw reads, got %d", reader.Reads)
	}
}

func TestSampleBothTriggeredResolvesUnknown(t *testing.T) {
	reader := NewFakeReader(door.Reading{Open: true, Closed: true})
	s := newTestSampler(reader)

	if got := s.Sample(); got != door.StateUnknown {
		t.Errorf("Sample() = %s, want %s", got, door.StateUnknown)
	}
}

func TestSampleFallsBackBeforeFirstConfirmation(t *testing.T) {
	reader := NewFakeReader(door.Reading{})
	reader.Errs = []bool{true, true, true}
	s := newTestSampler(reader)

	if got := s.Sample(); got != door.StateUnknown {
		t.Errorf("Sample() with no history = %s, want %s", got, door.StateUnknown)
	}
}

func TestSampleFallsBackToPreviousState(t *testing.T) {
	reader := NewFakeReader(
		door.Reading{Closed: true},
		door.Reading{Closed: true},
		door.Reading{Closed: true},
		// Second tick: every read fails.
		door.Reading{},
		door.Reading{},
		door.Reading{},
	)
	reader.Errs = []bool{false, false, false, true, true, true}
	s := newTestSampler(reader)

	if got := s.Sample(); got != door.StateClosed {
		t.Fatalf("first Sample() = %s, want %s", got, door.StateClosed)
	}
	if got := s.Sample(); got != door.StateClosed {
		t.Errorf("Sample() during transport outage = %s, want previous %s", got, door.StateClosed)
	}
}

func TestSamplePartialOutageStillVotes(t *testing.T) {
	// One failed read out of three leaves a two-sample vote.
	reader := NewFakeReader(
		door.Reading{Open: true},
		door.Reading{},
		door.Reading{Open: true},
	)
	reader.Errs = []bool{false, true, false}
	s := newTestSampler(reader)

	if got := s.Sample(); got != door.StateOpen {
		t.Errorf("Sample() = %s, want %s", got, door.StateOpen)
	}
}

func TestSamplerSleepsBetweenSamples(t *testing.T) {
	reader := NewFakeReader(door.Reading{Closed: true})
	s := NewSampler(reader, 3, 100*time.Millisecond)

	var slept []time.Duration
	s.SetSleep(func(d time.Duration) { slept = append(slept, d) })

	s.Sample()

	if len(slept) != 2 {
		t.Fatalf("expected 2 inter-sample delays, got %d", len(slept))
	}
	for _, d := range slept {
		if d != 100*time.Millisecond {
			t.Errorf("expected 100ms gap, got %v", d)
		}
	}
}

func TestSamplerDefaults(t *testing.T) {
	s := NewSampler(NewFakeReader(door.Reading{}), 0, 0)
	if s.count != 3 {
		t.Errorf("default count = %d, want 3", s.count)
	}
	if s.gap != 100*time.Millisecond {
		t.Errorf("default gap = %v, want 100ms", s.gap)
	}
}

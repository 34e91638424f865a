package sensor

import (
	"errors"

	"github.com/tlikar/garage-monitor/internal/door"
)

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	// Samples contains scripted readings. Each call to ReadRaw consumes
	// the next one; when exhausted, the last sample repeats.
	Samples []door.Reading

	// Errs, if non-nil, is consulted per call: a true entry makes that
	// call fail with ErrNoReading instead of returning its sample.
	Errs []bool

	// Reads counts ReadRaw calls.
	Reads int

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...door.Reading) *FakeReader {
	return &FakeReader{Samples: samples}
}

// ReadRaw returns the next scripted reading.
func (f *FakeReader) ReadRaw() (door.Reading, error) {
	i := f.index
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	f.Reads++

	if i < len(f.Errs) && f.Errs[i] {
		return door.Reading{}, ErrNoReading
	}

	if len(f.Samples) == 0 {
		return door.Reading{}, errors.New("no samples configured")
	}
	return f.Samples[i], nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the reader to the first sample.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}

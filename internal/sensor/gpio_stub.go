//go:build !linux

package sensor

import (
	"errors"

	"github.com/tlikar/garage-monitor/internal/door"
)

// GPIOReader is not available on non-Linux platforms.
type GPIOReader struct{}

// GPIOConfig selects the chip, the two sensor lines, and the polarity.
type GPIOConfig struct {
	Chip      string
	OpenPin   int
	ClosedPin int
	Triggered int
}

// NewGPIOReader returns an error on non-Linux platforms.
func NewGPIOReader(cfg GPIOConfig) (*GPIOReader, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// ReadRaw is not implemented on non-Linux platforms.
func (r *GPIOReader) ReadRaw() (door.Reading, error) {
	return door.Reading{}, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *GPIOReader) Close() error {
	return nil
}

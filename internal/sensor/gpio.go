//go:build linux

package sensor

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/tlikar/garage-monitor/internal/door"
)

// GPIOReader reads both door sensors from the Linux GPIO character device.
type GPIOReader struct {
	chip      *gpiocdev.Chip
	openPin   *gpiocdev.Line
	closedPin *gpiocdev.Line

	// triggered is the raw logic level meaning "sensor triggered".
	// Depends on switch wiring (NO vs NC), so it is configurable.
	triggered int
}

// GPIOConfig selects the chip, the two sensor lines, and the polarity.
type GPIOConfig struct {
	Chip      string
	OpenPin   int
	ClosedPin int
	Triggered int
}

// NewGPIOReader requests both sensor lines as inputs with pull-up bias,
// matching reed switches wired to ground.
func NewGPIOReader(cfg GPIOConfig) (*GPIOReader, error) {
	chipName := cfg.Chip
	if chipName == "" {
		chipName = "gpiochip0"
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	openLine, err := chip.RequestLine(cfg.OpenPin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request open-sensor pin %d: %w", cfg.OpenPin, err)
	}

	closedLine, err := chip.RequestLine(cfg.ClosedPin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		openLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request closed-sensor pin %d: %w", cfg.ClosedPin, err)
	}

	return &GPIOReader{
		chip:      chip,
		openPin:   openLine,
		closedPin: closedLine,
		triggered: cfg.Triggered,
	}, nil
}

// ReadRaw returns the instantaneous logic level of both sensor lines,
// normalized against the configured triggered polarity.
func (r *GPIOReader) ReadRaw() (door.Reading, error) {
	openRaw, err := r.openPin.Value()
	if err != nil {
		return door.Reading{}, fmt.Errorf("%w: read open-sensor pin: %v", ErrNoReading, err)
	}

	closedRaw, err := r.closedPin.Value()
	if err != nil {
		return door.Reading{}, fmt.Errorf("%w: read closed-sensor pin: %v", ErrNoReading, err)
	}

	return door.Reading{
		Open:   openRaw == r.triggered,
		Closed: closedRaw == r.triggered,
	}, nil
}

// Close releases both lines and the chip.
func (r *GPIOReader) Close() error {
	var errs []error

	if r.openPin != nil {
		if err := r.openPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close open-sensor pin: %w", err))
		}
	}
	if r.closedPin != nil {
		if err := r.closedPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close closed-sensor pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

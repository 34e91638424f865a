// Package sensor provides the signal adapters that turn physical or
// microcontroller-reported sensor activity into door readings.
// The real implementations use the Linux GPIO character device or a
// line-oriented serial feed. The fake implementation allows testing
// without hardware.
package sensor

import (
	"errors"

	"github.com/tlikar/garage-monitor/internal/door"
)

// ErrNoReading indicates a transient failure to obtain a usable sample
// (empty serial read, malformed line, bus hiccup). Callers recover locally
// by falling back to the last confirmed state; it never escapes the loop.
var ErrNoReading = errors.New("sensor: no usable reading")

// Reader reads the instantaneous raw signal of both door sensors.
type Reader interface {
	// ReadRaw returns one raw sample. A transient failure is reported as
	// an error wrapping ErrNoReading.
	ReadRaw() (door.Reading, error)

	// Close releases the underlying transport.
	Close() error
}

// Default GPIO line offsets (character device numbering).
const (
	DefaultOpenPin   = 0 // fully-open sensor
	DefaultClosedPin = 1 // fully-closed sensor
)

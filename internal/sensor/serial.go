package sensor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/tlikar/garage-monitor/internal/door"
)

// SerialConfig configures the line-oriented serial feed from the
// microcontroller reporting both sensors.
type SerialConfig struct {
	// Port is the serial device path. Empty means auto-discovery by the
	// known microcontroller USB identifiers.
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	// Triggered is the integer value meaning "sensor triggered" in the
	// numeric line format.
	Triggered int
}

// serialPort is the part of serial.Port the reader uses.
type serialPort interface {
	Read(p []byte) (int, error)
	ResetInputBuffer() error
	Close() error
}

// SerialReader reads door states from a microcontroller over a serial line.
// The device reports either a direct keyword (OPEN / CLOSED / PARTIAL) or a
// comma-separated pair of sensor values ("1,0").
type SerialReader struct {
	port      serialPort
	device    string
	triggered int

	// buf carries bytes read past a newline over to the next line.
	buf []byte
}

// Known USB VID:PID pairs for Arduino Nano style boards (genuine, CH340
// clone, FTDI).
var knownSerialIDs = map[string]bool{
	"2341:0043": true,
	"1a86:7523": true,
	"0403:6001": true,
}

// DiscoverSerialPort scans attached serial devices for a known
// microcontroller, by VID:PID or by product string.
func DiscoverSerialPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerate serial ports: %w", err)
	}

	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		id := strings.ToLower(p.VID + ":" + p.PID)
		if knownSerialIDs[id] ||
			strings.Contains(p.Product, "Arduino") ||
			strings.Contains(p.Product, "CH340") ||
			strings.Contains(p.Product, "FTDI") {
			return p.Name, nil
		}
	}

	return "", fmt.Errorf("no known microcontroller found among %d serial ports", len(ports))
}

// NewSerialReader opens the configured port (discovering one if unset),
// waits for the microcontroller to reset, and drains any startup output.
func NewSerialReader(cfg SerialConfig) (*SerialReader, error) {
	device := cfg.Port
	if device == "" {
		discovered, err := DiscoverSerialPort()
		if err != nil {
			return nil, err
		}
		device = discovered
	}

	baud := cfg.BaudRate
	if baud == 0 {
		baud = 9600
	}

	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}

	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	// Opening the port resets typical boards; give the firmware time to
	// come up, then drop whatever it printed while booting.
	time.Sleep(2 * time.Second)
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("reset input buffer: %w", err)
	}

	return &SerialReader{
		port:      port,
		device:    device,
		triggered: cfg.Triggered,
	}, nil
}

// Device returns the serial device path in use.
func (r *SerialReader) Device() string {
	return r.device
}

// ReadRaw returns a current reading from the feed. The firmware streams
// continuously, so any backlog is discarded first and the line parsed
// here is fresh from the device, not whatever has been sitting in the
// receive buffer since the last poll. Timeouts and malformed lines are
// reported as ErrNoReading so the sampler can fall back to the last
// confirmed state instead of inventing a transition.
func (r *SerialReader) ReadRaw() (door.Reading, error) {
	if err := r.port.ResetInputBuffer(); err != nil {
		return door.Reading{}, fmt.Errorf("%w: reset input buffer: %v", ErrNoReading, err)
	}
	r.buf = r.buf[:0]

	// The first line after the flush may have been cut mid-transmission.
	if _, err := r.readLine(); err != nil {
		return door.Reading{}, err
	}

	line, err := r.readLine()
	if err != nil {
		return door.Reading{}, err
	}
	return parseSignalLine(line, r.triggered)
}

// maxLineLen bounds a single report; the firmware's lines are a few bytes.
const maxLineLen = 256

// readLine returns the next newline-terminated line, reading from the
// port as needed. The port returns a zero-byte read when the configured
// timeout expires, which is surfaced immediately as ErrNoReading rather
// than retried. Bytes past the newline stay in r.buf for the next call.
func (r *SerialReader) readLine() (string, error) {
	chunk := make([]byte, 64)
	for {
		if i := bytes.IndexByte(r.buf, '\n'); i >= 0 {
			line := strings.TrimSpace(string(r.buf[:i]))
			r.buf = append(r.buf[:0], r.buf[i+1:]...)
			return line, nil
		}
		if len(r.buf) > maxLineLen {
			n := len(r.buf)
			r.buf = r.buf[:0]
			return "", fmt.Errorf("%w: no newline in %d bytes", ErrNoReading, n)
		}

		n, err := r.port.Read(chunk)
		if err != nil {
			return "", fmt.Errorf("%w: serial read: %v", ErrNoReading, err)
		}
		if n == 0 {
			return "", fmt.Errorf("%w: serial read timed out", ErrNoReading)
		}
		r.buf = append(r.buf, chunk[:n]...)
	}
}

// Close releases the serial port.
func (r *SerialReader) Close() error {
	return r.port.Close()
}

// parseSignalLine decodes one reported line. Keyword matching is a
// case-insensitive substring test where OPEN wins unless CLOSED is also
// present; otherwise the line is a comma-separated pair of integers for
// the open and closed sensors.
func parseSignalLine(line string, triggered int) (door.Reading, error) {
	upper := strings.ToUpper(line)

	switch {
	case strings.Contains(upper, "OPEN") && !strings.Contains(upper, "CLOSED"):
		return door.Reading{Open: true, Closed: false}, nil
	case strings.Contains(upper, "CLOSED"):
		return door.Reading{Open: false, Closed: true}, nil
	case strings.Contains(upper, "PARTIAL"):
		return door.Reading{Open: false, Closed: false}, nil
	}

	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return door.Reading{}, fmt.Errorf("%w: unrecognized line %q", ErrNoReading, line)
	}

	openVal, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return door.Reading{}, fmt.Errorf("%w: bad open-sensor field %q", ErrNoReading, parts[0])
	}
	closedVal, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return door.Reading{}, fmt.Errorf("%w: bad closed-sensor field %q", ErrNoReading, parts[1])
	}

	return door.Reading{
		Open:   openVal == triggered,
		Closed: closedVal == triggered,
	}, nil
}

// Package serialio wraps github.com/pkg/term to open and drive the serial
// link to a device, hiding the handful of platform differences the source
// handled with conditional cgo branches per OS.
package serialio

import (
	"fmt"

	"github.com/pkg/term"
)

// Port is an open serial connection.
type Port struct {
	t *term.Term
}

// Open opens devicename (e.g. "/dev/ttyUSB0") in raw mode and sets baud if
// nonzero. baud values outside the standard set fall back to 4800, the
// same default the source used for an unrecognized speed.
func Open(devicename string, baud int) (*Port, error) {
	t, err := term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("serialio: open %s: %w", devicename, err)
	}

	switch baud {
	case 0:
		// leave it alone
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		if err := t.SetSpeed(baud); err != nil {
			return nil, fmt.Errorf("serialio: set speed %d on %s: %w", baud, devicename, err)
		}
	default:
		if err := t.SetSpeed(4800); err != nil {
			return nil, fmt.Errorf("serialio: set fallback speed on %s: %w", devicename, err)
		}
	}

	return &Port{t: t}, nil
}

// Write sends data and returns an error if short-written.
func (p *Port) Write(data []byte) (int, error) {
	n, err := p.t.Write(data)
	if err != nil {
		return n, fmt.Errorf("serialio: write: %w", err)
	}
	if n != len(data) {
		return n, fmt.Errorf("serialio: short write %d of %d bytes", n, len(data))
	}
	return n, nil
}

// ReadByte blocks for exactly one byte, the discipline the L2 decoder
// expects to feed byte-at-a-time.
func (p *Port) ReadByte() (byte, error) {
	buf := make([]byte, 1)
	n, err := p.t.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("serialio: read: %w", err)
	}
	if n != 1 {
		return 0, fmt.Errorf("serialio: short read %d bytes", n)
	}
	return buf[0], nil
}

// Close releases the underlying terminal handle.
func (p *Port) Close() error {
	if err := p.t.Close(); err != nil {
		return fmt.Errorf("serialio: close: %w", err)
	}
	return nil
}

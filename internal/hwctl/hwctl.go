// Package hwctl drives the GPIO output line used to key PTT (push-to-talk)
// and other keyline-style control signals.
//
// The source's ptt.go used cgo to call libgpiod directly, but its own test
// file (ptt_test.go) already mocks a small output-line interface
// (SetValue/Close) rather than touching real hardware — a pure-Go seam the
// source itself was anticipating. hwctl completes that migration using
// github.com/warthog618/go-gpiocdev, the character-device GPIO library that
// supersedes the deprecated sysfs interface libgpiod itself wraps.
package hwctl

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// OutputLine is the seam ptt_test.go's mockGPIODLine anticipated: anything
// that can be driven high or low and released.
type OutputLine interface {
	SetValue(v int) error
	Close() error
}

// Line drives one GPIO output line through a gpiocdev request.
type Line struct {
	req    *gpiocdev.Line
	invert bool
}

// Open requests offset on chip (e.g. "gpiochip0") as an output line, driven
// low initially. invert flips Set's sense, matching the source's
// ptt_invert config flag.
func Open(chip string, offset int, invert bool) (*Line, error) {
	req, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("hwctl: request %s line %d: %w", chip, offset, err)
	}
	return &Line{req: req, invert: invert}, nil
}

// SetValue drives the line: 1 for active, 0 for inactive, with invert
// applied the same way ptt_set_real applies ptt_invert.
func (l *Line) SetValue(v int) error {
	signal := v
	if l.invert {
		if signal == 0 {
			signal = 1
		} else {
			signal = 0
		}
	}
	return l.req.SetValue(signal)
}

// Set is a convenience wrapper over SetValue taking a bool, for callers
// driving PTT as an on/off signal rather than a raw line level.
func (l *Line) Set(active bool) error {
	if active {
		return l.SetValue(1)
	}
	return l.SetValue(0)
}

// Close releases the underlying line request.
func (l *Line) Close() error {
	return l.req.Close()
}

var _ OutputLine = (*Line)(nil)

// Keyer drives an OutputLine from dfifo.DoubleSlot handoffs: the first byte
// of each slot is interpreted as 0 (key up) or nonzero (key down),
// letting a PTT line be toggled from data produced on another goroutine
// without the keying goroutine touching hardware directly.
type Keyer struct {
	line OutputLine
}

// NewKeyer wraps line for slot-driven keying.
func NewKeyer(line OutputLine) *Keyer {
	return &Keyer{line: line}
}

// Apply drives the line according to slot[0], the convention dfifo slots
// use for single-byte keying commands.
func (k *Keyer) Apply(slot []byte) error {
	if len(slot) == 0 {
		return fmt.Errorf("hwctl: empty keying slot")
	}
	return k.line.SetValue(boolToLevel(slot[0] != 0))
}

func boolToLevel(active bool) int {
	if active {
		return 1
	}
	return 0
}

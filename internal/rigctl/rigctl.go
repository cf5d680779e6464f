// Package rigctl drives radio PTT and frequency control over hamlib's CAT
// protocol using github.com/xylo04/goHamlib. The source's ptt.go carried a
// hamlib code path guarded everywhere with "Hamlib support currently
// disabled due to mid-stage porting complexity" — this package is that
// porting finished, against a pure Go binding instead of the source's cgo
// call into librig directly.
package rigctl

import (
	"fmt"

	"github.com/xylo04/goHamlib"
	"github.com/kc9wav/linkkit/internal/climatch"
)

// Rig is one open hamlib CAT control session.
type Rig struct {
	rig   *goHamlib.Rig
	model int
}

// Open opens a CAT control session for model on device at baud, retrying a
// handful of times since hamlib can take a moment to finish init — the
// same retry the source's commented-out hamlib path performed.
const openRetries = 5

func Open(model int, device string, baud int) (*Rig, error) {
	r := goHamlib.NewRig(model)

	r.SetConf("rig_pathname", device)
	if baud > 0 {
		r.SetConf("serial_speed", fmt.Sprintf("%d", baud))
	}

	var err error
	for attempt := 0; attempt < openRetries; attempt++ {
		err = r.Open()
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("rigctl: open rig model %d on %s: %w", model, device, err)
	}

	return &Rig{rig: r, model: model}, nil
}

// SetPTT keys or unkeys the rig's transmitter over CAT rather than a GPIO
// line.
func (r *Rig) SetPTT(active bool) error {
	if err := r.rig.SetPTT(goHamlib.VFOCurr, active); err != nil {
		return fmt.Errorf("rigctl: set ptt on model %d: %w", r.model, err)
	}
	return nil
}

// SetFrequency tunes the rig's current VFO.
func (r *Rig) SetFrequency(hz float64) error {
	if err := r.rig.SetFreq(goHamlib.VFOCurr, hz); err != nil {
		return fmt.Errorf("rigctl: set frequency on model %d: %w", r.model, err)
	}
	return nil
}

// Close ends the CAT session.
func (r *Rig) Close() error {
	if err := r.rig.Close(); err != nil {
		return fmt.Errorf("rigctl: close model %d: %w", r.model, err)
	}
	return nil
}

// Command is one CLI-dispatchable rig control line, matched with
// climatch the same way the rest of the command surface is.
type Command struct {
	Format   string
	ParamMax int
	Run      func(r *Rig, params []string) error
}

// Dispatcher matches an incoming line against a fixed set of Commands and
// runs the first one that matches.
type Dispatcher struct {
	rig      *Rig
	commands []Command
}

// NewDispatcher builds a Dispatcher over rig using commands, checked in
// order.
func NewDispatcher(rig *Rig, commands []Command) *Dispatcher {
	return &Dispatcher{rig: rig, commands: commands}
}

// Dispatch matches line against the dispatcher's commands and runs the
// first match. It reports false if nothing matched.
func (d *Dispatcher) Dispatch(line string) (bool, error) {
	for _, cmd := range d.commands {
		offsets, ok := climatch.Match(line, cmd.Format, cmd.ParamMax)
		if !ok {
			continue
		}
		params := make([]string, len(offsets))
		for i, off := range offsets {
			params[i] = climatch.ParamText(line, off)
		}
		return true, cmd.Run(d.rig, params)
	}
	return false, nil
}

// Package devwatch enumerates and watches serial/TTY devices using udev,
// so a link daemon can notice a radio's USB-serial adapter being plugged
// in or removed.
package devwatch

import (
	"context"
	"fmt"

	"github.com/jochenvg/go-udev"
)

// EventAction mirrors udev's action strings for a monitored device event.
type EventAction string

const (
	ActionAdd    EventAction = "add"
	ActionRemove EventAction = "remove"
	ActionChange EventAction = "change"
)

// DeviceEvent is one hotplug notification.
type DeviceEvent struct {
	Action  EventAction
	DevNode string
	Subsystem string
}

// Enumerate lists the current devnodes on subsystem (e.g. "tty").
func Enumerate(subsystem string) ([]string, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()

	if err := e.AddMatchSubsystem(subsystem); err != nil {
		return nil, fmt.Errorf("devwatch: match subsystem %s: %w", subsystem, err)
	}

	devices, err := e.Devices()
	if err != nil {
		return nil, fmt.Errorf("devwatch: enumerate %s: %w", subsystem, err)
	}

	nodes := make([]string, 0, len(devices))
	for _, d := range devices {
		if node := d.Devnode(); node != "" {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// Watch streams add/remove/change events for subsystem until ctx is
// cancelled. The returned channel is closed when the monitor exits.
func Watch(ctx context.Context, subsystem string) (<-chan DeviceEvent, error) {
	u := udev.Udev{}
	m := u.NewMonitorFromNetlink("udev")

	if err := m.FilterAddMatchSubsystem(subsystem); err != nil {
		return nil, fmt.Errorf("devwatch: filter subsystem %s: %w", subsystem, err)
	}

	deviceCh, _, err := m.DeviceChan(ctx)
	if err != nil {
		return nil, fmt.Errorf("devwatch: start monitor: %w", err)
	}

	out := make(chan DeviceEvent)
	go func() {
		defer close(out)
		for d := range deviceCh {
			ev := DeviceEvent{
				Action:    EventAction(d.Action()),
				DevNode:   d.Devnode(),
				Subsystem: d.Subsystem(),
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

package gesture

import (
	"fmt"
	"sync/atomic"
)

// Gate selects in which display state detection runs.
type Gate int

const (
	// GateScreenOn runs detection while the display is on (sweep to sleep).
	GateScreenOn Gate = iota
	// GateScreenOff runs detection while the display is off (sweep to wake).
	GateScreenOff
)

func (g Gate) String() string {
	if g == GateScreenOff {
		return "screen-off"
	}
	return "screen-on"
}

// ParseGate accepts "screen-on" or "screen-off".
func ParseGate(s string) (Gate, error) {
	switch s {
	case "", "screen-on", "on":
		return GateScreenOn, nil
	case "screen-off", "off":
		return GateScreenOff, nil
	default:
		return GateScreenOn, fmt.Errorf("%w: unknown gate %q", ErrInvalidArgument, s)
	}
}

// Screen mirrors the display power state. It is written by the power
// notifier and only read by the detectors.
type Screen struct {
	gate      Gate
	suspended atomic.Bool
}

func NewScreen(gate Gate) *Screen {
	return &Screen{gate: gate}
}

func (s *Screen) SetOn() {
	s.suspended.Store(false)
}

func (s *Screen) SetOff() {
	s.suspended.Store(true)
}

func (s *Screen) Suspended() bool {
	return s.suspended.Load()
}

func (s *Screen) Gate() Gate {
	return s.gate
}

// Active reports whether detection should run right now.
func (s *Screen) Active() bool {
	if s.gate == GateScreenOff {
		return s.Suspended()
	}
	return !s.Suspended()
}

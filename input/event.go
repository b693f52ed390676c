// Package input turns raw multi-touch axis updates into the ordered event
// stream the gesture worker consumes.
package input

import (
	"fmt"

	"github.com/mobile-next/sweep2sleep/gesture"
)

// Kind identifies an event on the worker stream.
type Kind int

const (
	KindPoint Kind = iota
	KindLift
	KindSlot
	KindScreenOn
	KindScreenOff
	KindExpire
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLift:
		return "lift"
	case KindSlot:
		return "slot"
	case KindScreenOn:
		return "screen-on"
	case KindScreenOff:
		return "screen-off"
	case KindExpire:
		return "expire"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one item on the worker stream. Point carries the coordinate for
// points and lifts; Generation is set on expiry events only.
type Event struct {
	Kind       Kind
	Point      gesture.Point
	Generation uint64
}

// Marker reports whether the event must never be dropped. Everything but
// a point is a marker.
func (e Event) Marker() bool {
	return e.Kind != KindPoint
}

func (e Event) String() string {
	switch e.Kind {
	case KindPoint, KindLift:
		return fmt.Sprintf("%s %d,%d", e.Kind, e.Point.X, e.Point.Y)
	case KindExpire:
		return fmt.Sprintf("%s #%d", e.Kind, e.Generation)
	default:
		return e.Kind.String()
	}
}

func Point(x, y int) Event {
	return Event{Kind: KindPoint, Point: gesture.Point{X: x, Y: y}}
}

func Lift(x, y int) Event {
	return Event{Kind: KindLift, Point: gesture.Point{X: x, Y: y}}
}

func Slot() Event {
	return Event{Kind: KindSlot}
}

func ScreenOn() Event {
	return Event{Kind: KindScreenOn}
}

func ScreenOff() Event {
	return Event{Kind: KindScreenOff}
}

func Expire(generation uint64) Event {
	return Event{Kind: KindExpire, Generation: generation}
}

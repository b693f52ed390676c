package commands

import (
	"fmt"

	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/input"
	"github.com/mobile-next/sweep2sleep/service"
)

// InjectEvent is one synthetic touch event.
type InjectEvent struct {
	Type string `json:"type"` // point, lift, slot
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type InjectRequest struct {
	Events []InjectEvent `json:"events"`
}

// InjectCommand queues synthetic events as if they came from the panel.
// Consecutive points may be coalesced by the mailbox like real input.
func InjectCommand(req InjectRequest) *CommandResponse {
	return withService(func(s *service.Service) (interface{}, error) {
		if len(req.Events) == 0 {
			return nil, fmt.Errorf("%w: 'events' is required", gesture.ErrInvalidArgument)
		}

		events := make([]input.Event, len(req.Events))
		for i, e := range req.Events {
			switch e.Type {
			case "point":
				events[i] = input.Point(e.X, e.Y)
			case "lift":
				events[i] = input.Lift(e.X, e.Y)
			case "slot":
				events[i] = input.Slot()
			default:
				return nil, fmt.Errorf("%w: event %d: unknown type %q", gesture.ErrInvalidArgument, i, e.Type)
			}
		}

		queued := 0
		for _, ev := range events {
			if s.Post(ev) {
				queued++
			}
		}
		return map[string]int{"queued": queued}, nil
	})
}

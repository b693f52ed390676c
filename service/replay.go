package service

import (
	"fmt"
	"time"

	"github.com/mobile-next/sweep2sleep/input"
	"github.com/mobile-next/sweep2sleep/types"
	"github.com/mobile-next/sweep2sleep/utils"
)

// ReplayResult is the outcome of evaluating a recorded trace.
type ReplayResult struct {
	Steps    int             `json:"steps"`
	Events   int             `json:"events"`
	Duration time.Duration   `json:"duration"`
	Triggers []types.Trigger `json:"triggers"`
	Final    types.Status    `json:"final"`
}

// replayEpoch anchors trace time so trigger timestamps are reproducible.
var replayEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Replay runs steps through a fresh service on a manual clock. Actions
// are never run; opts.Action and opts.Clock are ignored.
func Replay(opts Options, steps []input.Step) (*ReplayResult, error) {
	clock := utils.NewMockClock(replayEpoch)
	opts.Clock = clock
	opts.Action = nil

	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	result := &ReplayResult{Steps: len(steps), Triggers: []types.Trigger{}}
	if err := s.bus.Subscribe(TopicTrigger, func(t types.Trigger) {
		result.Triggers = append(result.Triggers, t)
	}); err != nil {
		return nil, fmt.Errorf("failed to subscribe replay: %w", err)
	}

	coalescer := input.NewCoalescer(func(ev input.Event) { s.Post(ev) })

	for _, step := range steps {
		switch step.Op {
		case input.OpAbs:
			coalescer.Abs(step.Code, step.Value)
		case input.OpScreenOn:
			s.Post(input.ScreenOn())
		case input.OpScreenOff:
			s.Post(input.ScreenOff())
		case input.OpWait:
			clock.Advance(step.Wait)
		}
		result.Events += s.Flush()
	}

	result.Duration = clock.Now().Sub(replayEpoch)
	result.Final = s.Status()
	return result, nil
}

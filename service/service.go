// Package service runs the gesture engine on its worker goroutine and
// fans triggers out to history, the configured action and push clients.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/asaskevich/EventBus"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/sweep2sleep/devices"
	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/input"
	"github.com/mobile-next/sweep2sleep/types"
	"github.com/mobile-next/sweep2sleep/utils"
	"github.com/sirupsen/logrus"
)

// TopicTrigger carries a types.Trigger for every fired gesture.
const TopicTrigger = "gesture:trigger"

const DefaultHistorySize = 32

type Options struct {
	Catalog *gesture.Catalog
	Mask    int
	Debug   bool
	Gate    gesture.Gate

	// Action runs asynchronously for every trigger. Nil disables it.
	Action devices.Action

	HistorySize int
	Version     string
	Input       *types.InputDevice

	// Clock defaults to the wall clock.
	Clock utils.Clock
}

// Service owns the engine. Run (or Flush) is the only caller of engine
// methods; everything else goes through the mailbox or atomics.
type Service struct {
	catalog  *gesture.Catalog
	settings *gesture.Settings
	screen   *gesture.Screen
	engine   *gesture.Engine
	mailbox  *input.Mailbox
	clock    utils.Clock

	bus     EventBus.Bus
	history *lru.Cache[uint64, types.Trigger]
	action  devices.Action

	version string
	input   *types.InputDevice

	seq       atomic.Uint64
	processed atomic.Uint64
	snapshot  atomic.Pointer[gesture.Snapshot]
}

func New(opts Options) (*Service, error) {
	if opts.Catalog == nil {
		opts.Catalog = gesture.DefaultCatalog()
	}
	if err := opts.Catalog.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = utils.RealClock{}
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}

	settings := gesture.NewSettings(opts.Catalog.Implemented)
	if _, err := settings.SetMask(opts.Mask); err != nil {
		return nil, err
	}
	settings.SetDebug(opts.Debug)

	history, err := lru.New[uint64, types.Trigger](opts.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create trigger history: %w", err)
	}

	screen := gesture.NewScreen(opts.Gate)
	s := &Service{
		catalog:  opts.Catalog,
		settings: settings,
		screen:   screen,
		engine:   gesture.NewEngine(opts.Catalog, settings, screen, opts.Clock),
		mailbox:  input.NewMailbox(),
		clock:    opts.Clock,
		bus:      EventBus.New(),
		history:  history,
		action:   opts.Action,
		version:  opts.Version,
		input:    opts.Input,
	}

	s.engine.DoubleTap().SetExpiryHook(func(generation uint64) {
		s.mailbox.Post(input.Expire(generation))
	})

	if err := s.bus.Subscribe(TopicTrigger, s.record); err != nil {
		return nil, fmt.Errorf("failed to subscribe history: %w", err)
	}
	if s.action != nil {
		if err := s.bus.SubscribeAsync(TopicTrigger, s.runAction, false); err != nil {
			return nil, fmt.Errorf("failed to subscribe action: %w", err)
		}
	}

	s.publishSnapshot()
	return s, nil
}

// Post queues an event for the worker.
func (s *Service) Post(ev input.Event) bool {
	return s.mailbox.Post(ev)
}

// Run processes events until ctx is cancelled or Close is called.
func (s *Service) Run(ctx context.Context) error {
	utils.Verbose("gesture worker started")
	for {
		ev, err := s.mailbox.Next(ctx)
		if errors.Is(err, input.ErrMailboxClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		s.handle(ev)
	}
}

// Flush processes every queued event on the calling goroutine and returns
// how many were handled. It must not be used while Run is active.
func (s *Service) Flush() int {
	n := 0
	for {
		ev, ok := s.mailbox.TryNext()
		if !ok {
			return n
		}
		s.handle(ev)
		n++
	}
}

// Close stops the worker and waits for running actions.
func (s *Service) Close() {
	s.mailbox.Close()
	s.bus.WaitAsync()
}

func (s *Service) handle(ev input.Event) {
	switch ev.Kind {
	case input.KindPoint:
		if m, ok := s.engine.OnPoint(ev.Point); ok {
			s.fire(m)
		}
	case input.KindLift:
		if m, ok := s.engine.OnLift(ev.Point); ok {
			s.fire(m)
		}
	case input.KindSlot:
		s.engine.OnSlotChange()
	case input.KindScreenOn:
		s.screen.SetOn()
		utils.Verbose("screen on")
	case input.KindScreenOff:
		s.screen.SetOff()
		utils.Verbose("screen off")
	case input.KindExpire:
		s.engine.OnExpire(ev.Generation)
	}

	s.processed.Add(1)
	s.publishSnapshot()
}

func (s *Service) fire(m gesture.Match) {
	t := types.Trigger{
		Seq:     s.seq.Add(1),
		Bank:    m.Bank,
		Kind:    m.Kind.String(),
		Bit:     uint32(m.Bit),
		X:       m.Point.X,
		Y:       m.Point.Y,
		Session: m.Session,
		Time:    s.clock.Now(),
	}

	utils.WithFields(logrus.Fields{
		"bank":    t.Bank,
		"x":       t.X,
		"y":       t.Y,
		"session": t.Session,
	}).Info("gesture triggered")

	s.bus.Publish(TopicTrigger, t)
}

func (s *Service) record(t types.Trigger) {
	s.history.Add(t.Seq, t)
}

func (s *Service) runAction(t types.Trigger) {
	ctx, cancel := context.WithTimeout(context.Background(), devices.DefaultTimeout)
	defer cancel()

	if err := s.action.Trigger(ctx); err != nil {
		utils.WithFields(logrus.Fields{"action": s.action.Name(), "seq": t.Seq}).Errorf("trigger action failed: %v", err)
	}
}

func (s *Service) publishSnapshot() {
	snap := s.engine.Snapshot()
	s.snapshot.Store(&snap)
}

// OnTrigger registers fn for every trigger. fn runs on its own goroutine
// and must not block for long.
func (s *Service) OnTrigger(fn func(types.Trigger)) error {
	return s.bus.SubscribeAsync(TopicTrigger, fn, false)
}

func (s *Service) Settings() *gesture.Settings {
	return s.settings
}

func (s *Service) Catalog() *gesture.Catalog {
	return s.catalog
}

// SetMask validates and applies a new mask, returning the effective value.
func (s *Service) SetMask(v int) (gesture.Mask, error) {
	m, err := s.settings.SetMask(v)
	if err != nil {
		return m, err
	}
	utils.Info("mask set to %d (requested %d)", m, v)
	return m, nil
}

// SetDebug toggles diagnostic logging.
func (s *Service) SetDebug(on bool) {
	s.settings.SetDebug(on)
	utils.SetVerbose(on)
}

// SetScreen queues a display power transition.
func (s *Service) SetScreen(on bool) {
	if on {
		s.Post(input.ScreenOn())
	} else {
		s.Post(input.ScreenOff())
	}
}

// Dropped returns the number of points overwritten in the mailbox.
func (s *Service) Dropped() uint64 {
	return s.mailbox.Dropped()
}

// History returns the retained triggers, oldest first.
func (s *Service) History() []types.Trigger {
	keys := s.history.Keys()
	out := make([]types.Trigger, 0, len(keys))
	for _, k := range keys {
		if t, ok := s.history.Peek(k); ok {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) Status() types.Status {
	st := types.Status{
		Version:       s.version,
		DriverVersion: gesture.DriverVersion,
		Mask:          uint32(s.settings.Mask()),
		Implemented:   uint32(s.settings.Implemented()),
		Debug:         s.settings.Debug(),
		Screen: types.ScreenState{
			Suspended: s.screen.Suspended(),
			Gate:      s.screen.Gate().String(),
			Active:    s.screen.Active(),
		},
		Engine:    *s.snapshot.Load(),
		Processed: s.processed.Load(),
		Dropped:   s.mailbox.Dropped(),
		Triggers:  s.seq.Load(),
		Input:     s.input,
	}
	if s.action != nil {
		st.Action = &types.ActionInfo{Name: s.action.Name()}
	}
	return st
}

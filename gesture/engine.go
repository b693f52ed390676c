// Package gesture implements the sweep2sleep matching engine: the bank
// catalog, sequential barrier matching for static and dynamic gestures,
// the status bar double tap detector and the per-session trigger guard.
//
// The engine holds no locks. Every method except the ones on Settings and
// Screen must be called from a single goroutine, in event order.
package gesture

import (
	"github.com/mobile-next/sweep2sleep/utils"
)

// Match describes a trigger decision.
type Match struct {
	Bank    string
	Kind    Kind
	Bit     Mask
	Point   Point
	Session string
}

// BankSnapshot is the progress of one bank, for diagnostics.
type BankSnapshot struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Active bool   `json:"active"`
	Stage1 bool   `json:"stage1"`
	Stage2 bool   `json:"stage2"`
	Target *Rect  `json:"target,omitempty"`
}

// Snapshot is a copy of the engine state, safe to hand to other goroutines.
type Snapshot struct {
	Armed         bool           `json:"armed"`
	Session       string         `json:"session"`
	Last          Point          `json:"last"`
	DoubleTapOpen bool           `json:"doubleTapOpen"`
	Banks         []BankSnapshot `json:"banks"`
}

// Engine evaluates touch events against the catalog.
type Engine struct {
	catalog  *Catalog
	settings *Settings
	screen   *Screen
	banks    []bankState
	guard    SessionGuard
	tap      *DoubleTap
}

// NewEngine builds an engine over a validated catalog.
func NewEngine(catalog *Catalog, settings *Settings, screen *Screen, clock utils.Clock) *Engine {
	if clock == nil {
		clock = utils.RealClock{}
	}
	return &Engine{
		catalog:  catalog,
		settings: settings,
		screen:   screen,
		banks:    make([]bankState, len(catalog.Banks)),
		guard:    newSessionGuard(),
		tap:      newDoubleTap(catalog, settings, screen, clock),
	}
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) DoubleTap() *DoubleTap {
	return e.tap
}

func (e *Engine) Guard() *SessionGuard {
	return &e.guard
}

// OnPoint evaluates one coalesced sample. It returns the matching bank
// when the sample completes a gesture; the caller runs the trigger.
func (e *Engine) OnPoint(p Point) (Match, bool) {
	mask := e.settings.Mask()
	if !e.screen.Active() || mask&BankBits == 0 || !e.guard.armed {
		return Match{}, false
	}

	e.guard.last = p
	utils.Verbose("point x=%d y=%d", p.X, p.Y)

	for i := range e.catalog.Banks {
		def := &e.catalog.Banks[i]
		if mask&def.Bit == 0 {
			continue
		}
		if !e.advance(i, p) {
			continue
		}

		e.guard.claim()
		e.clearLatches()

		return Match{
			Bank:    def.Name,
			Kind:    def.Kind,
			Bit:     def.Bit,
			Point:   p,
			Session: e.guard.ID(),
		}, true
	}
	return Match{}, false
}

// advance moves bank i through its barriers and reports a full match.
// A point may latch a stage and be tested against the next one in the
// same call.
func (e *Engine) advance(i int, p Point) bool {
	def := &e.catalog.Banks[i]
	st := &e.banks[i]

	if !st.stage1 {
		if !def.Stages[0].Rect.Contains(p) {
			return false
		}
		st.stage1 = true
		st.target = def.Stages[1].Resolve(p)
		e.logTarget(def, 1, st.target)
	}

	if !st.stage2 {
		if !st.target.Contains(p) {
			return false
		}
		st.stage2 = true
		st.target = def.Stages[2].Resolve(p)
		e.logTarget(def, 2, st.target)
	}

	return st.target.Contains(p)
}

func (e *Engine) logTarget(def *Definition, stage int, target Rect) {
	if def.Kind == KindDynamic {
		utils.Verbose("%s new target %d: %s", def.Name, stage, target)
	}
}

// OnLift handles a lift-off. The double tap detector sees it first; the
// session is then reset unless the finger left inside the soft key band,
// where contact is routinely interrupted mid swipe.
func (e *Engine) OnLift(p Point) (Match, bool) {
	var m Match
	fired := false

	if e.tap.OnLift(p) && e.guard.claim() {
		m = Match{
			Bank:    "statusbar",
			Kind:    KindDoubleTap,
			Bit:     BitStatusBarDoubleTap,
			Point:   p,
			Session: e.guard.ID(),
		}
		fired = true
	}

	if p.Y < e.catalog.ButtonLimit {
		e.Reset()
		utils.Verbose("session reset on lift y=%d", p.Y)
	}
	return m, fired
}

// OnSlotChange handles a multi-touch slot change, which always ends the
// session.
func (e *Engine) OnSlotChange() {
	e.Reset()
	utils.Verbose("session reset on slot change")
}

// OnExpire forwards a double tap timer expiry.
func (e *Engine) OnExpire(generation uint64) {
	e.tap.Expire(generation)
}

// Reset re-arms the guard and clears all latches.
func (e *Engine) Reset() {
	e.guard.rearm()
	e.clearLatches()
}

func (e *Engine) clearLatches() {
	for i := range e.banks {
		e.banks[i].clear()
	}
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	mask := e.settings.Mask()
	s := Snapshot{
		Armed:         e.guard.armed,
		Session:       e.guard.ID(),
		Last:          e.guard.last,
		DoubleTapOpen: e.tap.Open(),
		Banks:         make([]BankSnapshot, len(e.catalog.Banks)),
	}

	for i, def := range e.catalog.Banks {
		st := e.banks[i]
		b := BankSnapshot{
			Name:   def.Name,
			Kind:   def.Kind.String(),
			Active: mask&def.Bit != 0,
			Stage1: st.stage1,
			Stage2: st.stage2,
		}
		if st.stage1 {
			target := st.target
			b.Target = &target
		}
		s.Banks[i] = b
	}
	return s
}

package gesture

import (
	"time"

	"github.com/mobile-next/sweep2sleep/utils"
)

// DoubleTap detects two lifts inside the status bar band within a fixed
// window. It is Idle until a qualifying tap opens the window; a second
// qualifying tap at or before the deadline fires and returns to Idle.
//
// Expiry is delivered through the hook set with SetExpiryHook so that the
// state change happens on the worker, not on the timer goroutine. Without
// a hook the deadline alone decides.
type DoubleTap struct {
	band     Band
	window   time.Duration
	clock    utils.Clock
	settings *Settings
	screen   *Screen

	open       bool
	deadline   time.Time
	timer      utils.Timer
	generation uint64
	onExpire   func(generation uint64)
}

func newDoubleTap(c *Catalog, settings *Settings, screen *Screen, clock utils.Clock) *DoubleTap {
	return &DoubleTap{
		band:     c.StatusBar,
		window:   c.DoubleTapWindow,
		clock:    clock,
		settings: settings,
		screen:   screen,
	}
}

// SetExpiryHook registers the function the expiry timer calls. The hook
// must hand the generation back to Expire on the worker.
func (d *DoubleTap) SetExpiryHook(fn func(generation uint64)) {
	d.onExpire = fn
}

// Open reports whether a first tap is waiting for its partner.
func (d *DoubleTap) Open() bool {
	return d.open
}

// OnLift feeds one lift-off. It returns true when the lift completes a
// double tap.
func (d *DoubleTap) OnLift(p Point) bool {
	if d.settings.Mask()&BitStatusBarDoubleTap == 0 || !d.screen.Active() {
		return false
	}
	if !d.band.Contains(p.Y) {
		return false
	}

	now := d.clock.Now()
	utils.Verbose("double tap x=%d y=%d open=%v", p.X, p.Y, d.open)

	if d.open && !now.After(d.deadline) {
		d.close()
		return true
	}

	d.arm(now)
	return false
}

// Expire closes the window if generation still names the pending timer.
// Timers cancelled after they already fired report stale generations.
func (d *DoubleTap) Expire(generation uint64) {
	if !d.open || generation != d.generation {
		return
	}
	if !d.clock.Now().After(d.deadline) {
		return
	}
	d.open = false
	d.timer = nil
}

func (d *DoubleTap) arm(now time.Time) {
	d.stopTimer()
	d.generation++
	d.open = true
	d.deadline = now.Add(d.window)

	if d.onExpire != nil {
		gen := d.generation
		hook := d.onExpire
		// the deadline itself is still inside the window
		d.timer = d.clock.AfterFunc(d.window+time.Nanosecond, func() { hook(gen) })
	}
}

func (d *DoubleTap) close() {
	d.stopTimer()
	d.generation++
	d.open = false
}

func (d *DoubleTap) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

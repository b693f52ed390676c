package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const window = DefaultDoubleTapWindow

func (r *testRig) tap(p Point) bool {
	_, fired := r.engine.OnLift(p)
	return fired
}

func TestDoubleTap_TwoTapsInsideWindowFire(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	assert.False(t, r.tap(Point{500, 40}))
	assert.True(t, r.engine.DoubleTap().Open())

	r.clock.Advance(300 * time.Millisecond)
	m, fired := r.engine.OnLift(Point{520, 42})

	require.True(t, fired)
	assert.Equal(t, KindDoubleTap, m.Kind)
	assert.Equal(t, BitStatusBarDoubleTap, m.Bit)
	assert.False(t, r.engine.DoubleTap().Open())
}

func TestDoubleTap_ThirdTapStartsOver(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	r.tap(Point{500, 40})
	require.True(t, r.tap(Point{500, 40}))

	assert.False(t, r.tap(Point{500, 40}), "a fired window does not chain")
	assert.True(t, r.engine.DoubleTap().Open())
}

func TestDoubleTap_DeadlineIsInclusive(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	r.tap(Point{500, 40})
	r.clock.Advance(window)

	assert.True(t, r.tap(Point{500, 40}))
}

func TestDoubleTap_ExpiryAtDeadlineKeepsWindow(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	r.tap(Point{500, 40})
	gen := r.engine.DoubleTap().generation

	r.clock.Advance(window)
	r.engine.OnExpire(gen)
	assert.True(t, r.engine.DoubleTap().Open())
	assert.True(t, r.tap(Point{500, 40}))
}

func TestDoubleTap_LateTapOpensNewWindow(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	r.tap(Point{500, 40})
	r.clock.Advance(window + time.Millisecond)

	assert.False(t, r.tap(Point{500, 40}))
	assert.True(t, r.engine.DoubleTap().Open())

	r.clock.Advance(100 * time.Millisecond)
	assert.True(t, r.tap(Point{500, 40}))
}

func TestDoubleTap_BandIsInclusive(t *testing.T) {
	tests := []struct {
		name string
		y    int
		want bool
	}{
		{"top edge", DefaultStatusBarYMin, true},
		{"bottom edge", DefaultStatusBarYMax, true},
		{"below band", DefaultStatusBarYMax + 1, false},
		{"above panel", DefaultStatusBarYMin - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, BitStatusBarDoubleTap)
			r.tap(Point{500, tt.y})
			assert.Equal(t, tt.want, r.tap(Point{500, tt.y}))
		})
	}
}

func TestDoubleTap_TapOutsideBandDoesNotCloseWindow(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	r.tap(Point{500, 40})
	assert.False(t, r.tap(Point{500, 600}))
	assert.True(t, r.tap(Point{500, 40}))
}

func TestDoubleTap_DisabledBitIgnored(t *testing.T) {
	r := newRig(t, BitStatic1)

	assert.False(t, r.tap(Point{500, 40}))
	assert.False(t, r.tap(Point{500, 40}))
	assert.False(t, r.engine.DoubleTap().Open())
}

func TestDoubleTap_SuspendedScreenIgnored(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	r.screen.SetOff()
	assert.False(t, r.tap(Point{500, 40}))
	assert.False(t, r.tap(Point{500, 40}))
	assert.False(t, r.engine.DoubleTap().Open())
}

func TestDoubleTap_ExpiryHookClosesWindow(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	var expired []uint64
	r.engine.DoubleTap().SetExpiryHook(func(gen uint64) { expired = append(expired, gen) })

	r.tap(Point{500, 40})
	r.clock.Advance(window)
	assert.Empty(t, expired, "the deadline is still inside the window")

	r.clock.Advance(time.Nanosecond)
	require.Len(t, expired, 1)
	assert.True(t, r.engine.DoubleTap().Open(), "the hook only reports, the worker applies")

	r.engine.OnExpire(expired[0])
	assert.False(t, r.engine.DoubleTap().Open())
}

func TestDoubleTap_SecondTapCancelsExpiry(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	var expired []uint64
	r.engine.DoubleTap().SetExpiryHook(func(gen uint64) { expired = append(expired, gen) })

	r.tap(Point{500, 40})
	r.clock.Advance(100 * time.Millisecond)
	require.True(t, r.tap(Point{500, 40}))

	r.clock.Advance(time.Second)
	assert.Empty(t, expired)
	assert.Equal(t, 0, r.clock.Pending())
}

func TestDoubleTap_StaleExpiryIgnored(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap)

	var expired []uint64
	r.engine.DoubleTap().SetExpiryHook(func(gen uint64) { expired = append(expired, gen) })

	r.tap(Point{500, 40})
	r.clock.Advance(window + time.Nanosecond)
	require.Len(t, expired, 1)

	// the expiry is still queued when a late tap opens a new window
	r.clock.Advance(time.Millisecond)
	r.tap(Point{500, 40})
	r.engine.OnExpire(expired[0])

	assert.True(t, r.engine.DoubleTap().Open())
	assert.True(t, r.tap(Point{500, 40}))
}

func TestDoubleTap_RespectsSessionGuard(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap|BitDynamic1)

	// first tap, the lift also ends its session
	r.tap(Point{500, 40})

	// a gesture fires in the next session
	require.Len(t, r.swipe(Point{1000, 1000}, Point{800, 1200}, Point{600, 1400}), 1)

	// the second tap would close the window but the session already fired
	assert.False(t, r.tap(Point{500, 40}))
	assert.False(t, r.engine.DoubleTap().Open())

	// the lift reset the session, a fresh double tap works again
	r.tap(Point{500, 40})
	assert.True(t, r.tap(Point{500, 40}))
}

func TestDoubleTap_LiftStillResetsSession(t *testing.T) {
	r := newRig(t, BitStatusBarDoubleTap|BitDynamic1)

	r.swipe(Point{1000, 1000})
	r.tap(Point{500, 40})

	assert.False(t, r.bank("dynamic.1").Stage1)
}

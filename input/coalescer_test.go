package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record() (*Coalescer, *[]Event) {
	var events []Event
	return NewCoalescer(func(ev Event) { events = append(events, ev) }), &events
}

func TestCoalescer_EmitsWhenBothAxesUpdated(t *testing.T) {
	c, events := record()

	c.Abs(AbsMTPositionX, 1000)
	assert.Empty(t, *events)

	c.Abs(AbsMTPositionY, 2000)
	assert.Equal(t, []Event{Point(1000, 2000)}, *events)
}

func TestCoalescer_AxisOrderDoesNotMatter(t *testing.T) {
	c, events := record()

	c.Abs(AbsMTPositionY, 2000)
	c.Abs(AbsMTPositionX, 1000)

	assert.Equal(t, []Event{Point(1000, 2000)}, *events)
}

func TestCoalescer_RepeatedAxisKeepsNewestValue(t *testing.T) {
	c, events := record()

	c.Abs(AbsMTPositionX, 1000)
	c.Abs(AbsMTPositionX, 1010)
	c.Abs(AbsMTPositionY, 2000)

	assert.Equal(t, []Event{Point(1010, 2000)}, *events)
}

func TestCoalescer_SingleAxisAfterPointWaitsForPartner(t *testing.T) {
	c, events := record()

	c.Abs(AbsMTPositionX, 1000)
	c.Abs(AbsMTPositionY, 2000)
	c.Abs(AbsMTPositionX, 500)

	assert.Len(t, *events, 1)

	c.Abs(AbsMTPositionY, 2100)
	assert.Equal(t, Point(500, 2100), (*events)[1])
}

func TestCoalescer_LiftCarriesLastCoordinate(t *testing.T) {
	c, events := record()

	c.Abs(AbsMTPositionX, 300)
	c.Abs(AbsMTPositionY, 40)
	c.Abs(AbsMTTrackingID, 12)
	c.Abs(AbsMTTrackingID, -1)

	assert.Equal(t, []Event{Point(300, 40), Lift(300, 40)}, *events)
}

func TestCoalescer_SlotAndUnknownCodes(t *testing.T) {
	c, events := record()

	c.Abs(AbsMTSlot, 1)
	c.Abs(0x30, 5) // ABS_MT_TOUCH_MAJOR
	c.Abs(0x3a, 9) // ABS_MT_PRESSURE

	assert.Equal(t, []Event{Slot()}, *events)
}

func TestEvent_Marker(t *testing.T) {
	assert.False(t, Point(1, 2).Marker())
	for _, ev := range []Event{Lift(1, 2), Slot(), ScreenOn(), ScreenOff(), Expire(3)} {
		assert.True(t, ev.Marker(), ev.String())
	}
}

package input

// Multi-touch protocol B axis codes, see linux/input-event-codes.h.
const (
	AbsMTSlot       uint16 = 0x2f
	AbsMTPositionX  uint16 = 0x35
	AbsMTPositionY  uint16 = 0x36
	AbsMTTrackingID uint16 = 0x39
)

// Coalescer pairs X and Y axis updates into points. A point is emitted once
// both axes have been updated since the previous point; a lift carries the
// last known coordinate.
type Coalescer struct {
	x, y       int
	xSet, ySet bool
	emit       func(Event)
}

func NewCoalescer(emit func(Event)) *Coalescer {
	return &Coalescer{emit: emit}
}

// Abs feeds one absolute axis update. Codes other than the ones above are
// ignored.
func (c *Coalescer) Abs(code uint16, value int32) {
	switch code {
	case AbsMTSlot:
		c.emit(Slot())
		return
	case AbsMTTrackingID:
		if value == -1 {
			c.emit(Lift(c.x, c.y))
		}
		return
	case AbsMTPositionX:
		c.x = int(value)
		c.xSet = true
	case AbsMTPositionY:
		c.y = int(value)
		c.ySet = true
	default:
		return
	}

	if c.xSet && c.ySet {
		c.xSet, c.ySet = false, false
		c.emit(Point(c.x, c.y))
	}
}

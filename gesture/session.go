package gesture

import "github.com/google/uuid"

// SessionGuard lets at most one trigger through per touch session.
type SessionGuard struct {
	armed bool
	last  Point
	id    uuid.UUID
}

func newSessionGuard() SessionGuard {
	return SessionGuard{armed: true, id: uuid.New()}
}

// Armed reports whether a trigger may still fire this session.
func (g *SessionGuard) Armed() bool {
	return g.armed
}

// Last returns the last point evaluated this session.
func (g *SessionGuard) Last() Point {
	return g.last
}

// ID identifies the current session in trigger records.
func (g *SessionGuard) ID() string {
	return g.id.String()
}

// claim disarms the guard. It returns false when a trigger already fired.
func (g *SessionGuard) claim() bool {
	if !g.armed {
		return false
	}
	g.armed = false
	return true
}

func (g *SessionGuard) rearm() {
	g.armed = true
	g.id = uuid.New()
}

// bankState is the progress of one bank. Latches only move forward
// within a session.
type bankState struct {
	stage1 bool
	stage2 bool

	// target is the rectangle the next unlatched stage (or stage3) is
	// tested against. It is resolved once, when the previous stage latches.
	target Rect
}

func (b *bankState) clear() {
	*b = bankState{}
}

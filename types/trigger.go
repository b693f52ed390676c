package types

import (
	"time"

	"github.com/mobile-next/sweep2sleep/gesture"
)

// Trigger is one fired gesture, as kept in history and pushed to
// websocket clients.
type Trigger struct {
	Seq     uint64    `json:"seq"`
	Bank    string    `json:"bank"`
	Kind    string    `json:"kind"`
	Bit     uint32    `json:"bit"`
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Session string    `json:"session"`
	Time    time.Time `json:"time"`
}

// Status is the daemon state reported by the status method.
type Status struct {
	Version       string           `json:"version"`
	DriverVersion string           `json:"driverVersion"`
	Mask          uint32           `json:"mask"`
	Implemented   uint32           `json:"implemented"`
	Debug         bool             `json:"debug"`
	Screen        ScreenState      `json:"screen"`
	Engine        gesture.Snapshot `json:"engine"`
	Processed     uint64           `json:"processed"`
	Dropped       uint64           `json:"dropped"`
	Triggers      uint64           `json:"triggers"`
	Input         *InputDevice     `json:"input,omitempty"`
	Action        *ActionInfo      `json:"action,omitempty"`
}

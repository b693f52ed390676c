package types

// ScreenState is the display power state as seen by the gesture gate.
type ScreenState struct {
	Suspended bool   `json:"suspended"`
	Gate      string `json:"gate"`

	// Active is true while gestures are evaluated.
	Active bool `json:"active"`
}

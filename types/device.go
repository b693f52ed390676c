package types

// InputDevice describes the touch panel the daemon reads from.
type InputDevice struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// ActionInfo describes what runs when a gesture fires.
type ActionInfo struct {
	Name string `json:"name"`
}

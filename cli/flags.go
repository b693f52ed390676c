package cli

var (
	verbose    bool
	configPath string

	// for commands that talk to a running daemon
	serverAddr string

	// for replay command
	replayCatalog string
	replayMask    string
	replayGate    string
)

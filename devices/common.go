package devices

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/mobile-next/sweep2sleep/utils"
)

// Action kinds accepted by NewAction.
const (
	KindPowerKey = "power-key"
	KindAdb      = "adb"
	KindExec     = "exec"
	KindLog      = "log"
)

// DefaultTimeout bounds a single trigger.
const DefaultTimeout = 10 * time.Second

// KeycodePower is the Android key event that toggles the display.
const KeycodePower = "26"

// Action is run when a gesture fires.
type Action interface {
	Name() string
	Trigger(ctx context.Context) error
}

// runCommand executes a command and returns its combined output.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// NewAction builds the action configured by kind. serial selects the adb
// device and may be empty when exactly one device is attached; command is
// the shell line for exec actions.
func NewAction(kind, serial, command string) (Action, error) {
	switch kind {
	case "", KindPowerKey:
		return LocalDevice{}, nil
	case KindAdb:
		return &AndroidDevice{id: serial}, nil
	case KindExec:
		if command == "" {
			return nil, fmt.Errorf("exec action needs a command")
		}
		return ExecAction{Command: command}, nil
	case KindLog:
		return LogAction{}, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q, expected one of %s, %s, %s, %s", kind, KindPowerKey, KindAdb, KindExec, KindLog)
	}
}

// LogAction only records the trigger.
type LogAction struct{}

func (LogAction) Name() string {
	return KindLog
}

func (LogAction) Trigger(ctx context.Context) error {
	utils.Info("sleep requested")
	return nil
}

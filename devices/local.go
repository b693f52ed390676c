package devices

import (
	"context"
	"fmt"
)

// LocalDevice presses the power key on the device the daemon runs on.
type LocalDevice struct{}

func (LocalDevice) Name() string {
	return KindPowerKey
}

func (LocalDevice) Trigger(ctx context.Context) error {
	output, err := runCommand(ctx, "input", "keyevent", KeycodePower)
	if err != nil {
		return fmt.Errorf("failed to press power key: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// ExecAction runs a shell command line.
type ExecAction struct {
	Command string
}

func (a ExecAction) Name() string {
	return KindExec
}

func (a ExecAction) Trigger(ctx context.Context) error {
	output, err := runCommand(ctx, "sh", "-c", a.Command)
	if err != nil {
		return fmt.Errorf("command %q failed: %w\nOutput: %s", a.Command, err, string(output))
	}
	return nil
}

package devices

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mobile-next/sweep2sleep/utils"
)

// AndroidDevice presses keys on a device reached through adb.
type AndroidDevice struct {
	mu sync.Mutex
	id string
}

func (d *AndroidDevice) ID() string {
	return d.id
}

func (d *AndroidDevice) Name() string {
	if d.id == "" {
		return KindAdb
	}
	return KindAdb + ":" + d.id
}

func (d *AndroidDevice) runAdbCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmdArgs := append([]string{"-s", d.id}, args...)
	return runCommand(ctx, "adb", cmdArgs...)
}

// PressButton sends a named key event.
func (d *AndroidDevice) PressButton(ctx context.Context, key string) error {
	keyMap := map[string]string{
		"home":  "3",
		"back":  "4",
		"power": KeycodePower,
		"sleep": "223",
	}

	keycode, exists := keyMap[key]
	if !exists {
		return fmt.Errorf("AndroidDevice: unsupported button key: %s", key)
	}

	output, err := d.runAdbCommand(ctx, "shell", "input", "keyevent", keycode)
	if err != nil {
		return fmt.Errorf("AndroidDevice: failed to press %s button: %w\nOutput: %s", key, err, string(output))
	}

	return nil
}

// Trigger presses the power key. Without a serial the only attached
// device is selected on first use.
func (d *AndroidDevice) Trigger(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.id == "" {
		device, err := autoSelectDevice(ctx)
		if err != nil {
			return err
		}
		d.id = device.id
		utils.Verbose("selected adb device %s", d.id)
	}
	return d.PressButton(ctx, "power")
}

func autoSelectDevice(ctx context.Context) (*AndroidDevice, error) {
	devices, err := GetAndroidDevices(ctx)
	if err != nil {
		return nil, err
	}

	switch len(devices) {
	case 0:
		return nil, fmt.Errorf("no online android devices found")
	case 1:
		return devices[0], nil
	default:
		ids := make([]string, len(devices))
		for i, d := range devices {
			ids[i] = d.id
		}
		return nil, fmt.Errorf("multiple devices found (%d), please set action.serial to one of: [%s]", len(devices), strings.Join(ids, ", "))
	}
}

func parseAdbDevicesOutput(output string) []*AndroidDevice {
	var devices []*AndroidDevice

	lines := strings.Split(output, "\n")
	for i := 1; i < len(lines); i++ {
		parts := strings.Fields(lines[i])
		if len(parts) == 2 && parts[1] == "device" {
			devices = append(devices, &AndroidDevice{id: parts[0]})
		}
	}

	return devices
}

// GetAndroidDevices lists devices adb reports as online.
func GetAndroidDevices(ctx context.Context) ([]*AndroidDevice, error) {
	output, err := runCommand(ctx, "adb", "devices")
	if err != nil {
		return nil, fmt.Errorf("failed to run 'adb devices': %w", err)
	}

	return parseAdbDevicesOutput(string(output)), nil
}

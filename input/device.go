package input

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kenshaw/evdev"
	"github.com/mobile-next/sweep2sleep/utils"
)

// DefaultNameFilter matches the touch controller of the panels the default
// catalog is tuned for.
const DefaultNameFilter = "synaptics"

var ErrNoDevice = errors.New("no touch device found")

// devicePattern is where FindDevice looks for event nodes.
var devicePattern = "/dev/input/event*"

// Device is an opened evdev touch panel.
type Device struct {
	path string
	dev  *evdev.Evdev
}

// OpenDevice opens the event node at path.
func OpenDevice(path string) (*Device, error) {
	dev, err := evdev.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input device %s: %w", path, err)
	}
	return &Device{path: path, dev: dev}, nil
}

// FindDevice returns the first event node whose name contains "touch" or
// filter, case insensitively.
func FindDevice(filter string) (string, error) {
	if filter == "" {
		filter = DefaultNameFilter
	}
	filter = strings.ToLower(filter)

	paths, err := filepath.Glob(devicePattern)
	if err != nil {
		return "", fmt.Errorf("failed to list input devices: %w", err)
	}

	for _, path := range paths {
		dev, err := evdev.OpenFile(path)
		if err != nil {
			utils.Verbose("skipping %s: %v", path, err)
			continue
		}
		name := strings.ToLower(dev.Name())
		_ = dev.Close()

		if strings.Contains(name, "touch") || strings.Contains(name, filter) {
			utils.Verbose("using input device %s (%s)", path, name)
			return path, nil
		}
	}

	return "", fmt.Errorf("%w matching %q in %s", ErrNoDevice, filter, devicePattern)
}

func (d *Device) Path() string {
	return d.path
}

func (d *Device) Name() string {
	return d.dev.Name()
}

// Run feeds absolute axis events to c until ctx is cancelled or the device
// goes away.
func (d *Device) Run(ctx context.Context, c *Coalescer) error {
	return pump(ctx, d.path, d.dev.Poll(ctx), c)
}

// pump reads envelopes until ch closes or ctx is done. After cancellation
// ch is drained in the background so the poll goroutine can finish its
// pending send and observe ctx.
func pump(ctx context.Context, path string, ch <-chan *evdev.EventEnvelope, c *Coalescer) error {
	for {
		select {
		case <-ctx.Done():
			go drain(ch)
			return ctx.Err()
		case env, ok := <-ch:
			if !ok || env == nil {
				if err := ctx.Err(); err != nil {
					return err
				}
				return fmt.Errorf("input device %s closed", path)
			}
			if env.Event.Type != evdev.EventAbsolute {
				continue
			}
			c.Abs(env.Event.Code, env.Event.Value)
		}
	}
}

func drain(ch <-chan *evdev.EventEnvelope) {
	for range ch {
	}
}

func (d *Device) Close() error {
	return d.dev.Close()
}

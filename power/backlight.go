// Package power follows the display power state from sysfs.
package power

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mobile-next/sweep2sleep/utils"
)

const DefaultPollInterval = 500 * time.Millisecond

// BacklightWatcher polls a backlight attribute and reports display power
// transitions. For bl_power a value of 0 (FB_BLANK_UNBLANK) means on; for
// brightness any positive value means on.
type BacklightWatcher struct {
	path     string
	interval time.Duration
	notify   func(on bool)

	known bool
	on    bool
}

// NewBacklightWatcher watches path and calls notify on every change. The
// first successful read is always reported.
func NewBacklightWatcher(path string, interval time.Duration, notify func(on bool)) *BacklightWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &BacklightWatcher{path: path, interval: interval, notify: notify}
}

// Read returns the current power state.
func (w *BacklightWatcher) Read() (bool, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return false, fmt.Errorf("failed to read backlight state: %w", err)
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, fmt.Errorf("unexpected backlight value %q in %s", strings.TrimSpace(string(data)), w.path)
	}

	if filepath.Base(w.path) == "brightness" {
		return v > 0, nil
	}
	return v == 0, nil
}

// Poll reads once and reports a change.
func (w *BacklightWatcher) Poll() error {
	on, err := w.Read()
	if err != nil {
		return err
	}
	if w.known && on == w.on {
		return nil
	}

	w.known, w.on = true, on
	utils.Verbose("backlight %s: on=%v", w.path, on)
	w.notify(on)
	return nil
}

// Run polls until ctx is cancelled. Read errors are logged once per
// streak and do not stop the watcher.
func (w *BacklightWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	failing := false
	for {
		if err := w.Poll(); err != nil {
			if !failing {
				utils.Warn("%v", err)
			}
			failing = true
		} else {
			failing = false
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

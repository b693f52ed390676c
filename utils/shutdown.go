package utils

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ShutdownHook collects cleanup functions for SIGINT/SIGTERM and for the
// server.shutdown call. Hooks run in reverse registration order, so the
// input device is closed only after the worker feeding on it has stopped.
type ShutdownHook struct {
	mu    sync.Mutex
	hooks []namedHook
}

type namedHook struct {
	name string
	fn   func() error
}

func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a cleanup function. name is used for logging only.
func (s *ShutdownHook) Register(name string, cleanupFn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: cleanupFn})
	Verbose("registered shutdown hook: %s", name)
}

// Shutdown runs every registered hook once, continuing past failures, and
// returns the joined errors. Later calls are no-ops until new hooks are
// registered.
func (s *ShutdownHook) Shutdown() error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		if err := hook.fn(); err != nil {
			WithFields(logrus.Fields{"hook": hook.name}).Warnf("shutdown hook failed: %v", err)
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			continue
		}
		Verbose("shutdown hook %s done", hook.name)
	}
	return errors.Join(errs...)
}

// Count returns the number of pending hooks.
func (s *ShutdownHook) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}

package gesture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Mask selects enabled gesture banks. Bits 0-3 are static banks, bits 4-7
// dynamic banks and bit 8 the status bar double tap.
type Mask uint32

const (
	BitStatic1            Mask = 0x0001
	BitStatic2            Mask = 0x0002
	BitStatic3            Mask = 0x0004
	BitStatic4            Mask = 0x0008
	BitDynamic1           Mask = 0x0010
	BitDynamic2           Mask = 0x0020
	BitDynamic3           Mask = 0x0040
	BitDynamic4           Mask = 0x0080
	BitStatusBarDoubleTap Mask = 0x0100

	// BankBits covers every bit that names a swipe bank.
	BankBits Mask = 0x00FF

	// MaxMask is the largest value accepted from the configuration surface.
	MaxMask = 0xFFFF
)

var (
	// ErrInvalidArgument reports malformed configuration input. The prior
	// state is left untouched when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidGeometry reports a catalog that cannot be matched against.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// ValidateMask checks that v fits the configuration surface.
func ValidateMask(v int) error {
	if v < 0 || v > MaxMask {
		return fmt.Errorf("%w: mask %d out of range 0-%d", ErrInvalidArgument, v, MaxMask)
	}
	return nil
}

// ParseMask parses a decimal mask as written to the configuration surface.
func ParseMask(s string) (Mask, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: mask %q is not an integer", ErrInvalidArgument, s)
	}
	if err := ValidateMask(v); err != nil {
		return 0, err
	}
	return Mask(v), nil
}

// Settings is the runtime configuration shared between the worker and the
// configuration path. Writers only ever store whole values.
type Settings struct {
	implemented Mask
	mask        atomic.Uint32
	debug       atomic.Bool
}

func NewSettings(implemented Mask) *Settings {
	return &Settings{implemented: implemented}
}

func (s *Settings) Implemented() Mask {
	return s.implemented
}

func (s *Settings) Mask() Mask {
	return Mask(s.mask.Load())
}

// SetMask stores v after clearing bits that are not implemented.
// Unimplemented bits are dropped silently rather than rejected.
func (s *Settings) SetMask(v int) (Mask, error) {
	if err := ValidateMask(v); err != nil {
		return s.Mask(), err
	}
	m := Mask(v) & s.implemented
	s.mask.Store(uint32(m))
	return m, nil
}

// SetMaskString parses and stores a mask in one step.
func (s *Settings) SetMaskString(input string) (Mask, error) {
	m, err := ParseMask(input)
	if err != nil {
		return s.Mask(), err
	}
	return s.SetMask(int(m))
}

func (s *Settings) Debug() bool {
	return s.debug.Load()
}

func (s *Settings) SetDebug(on bool) {
	s.debug.Store(on)
}

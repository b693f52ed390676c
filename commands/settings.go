package commands

import (
	"fmt"

	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/service"
)

// MaskSetRequest carries the new mask as written on the configuration
// surface: a decimal string or a JSON number.
type MaskSetRequest struct {
	Mask interface{} `json:"mask"`
}

func MaskGetCommand() *CommandResponse {
	return withService(func(s *service.Service) (interface{}, error) {
		return maskData(s), nil
	})
}

// MaskSetCommand applies a new mask. Unimplemented bits are cleared; a
// malformed value is rejected and the current mask kept.
func MaskSetCommand(req MaskSetRequest) *CommandResponse {
	return withService(func(s *service.Service) (interface{}, error) {
		v, err := maskValue(req.Mask)
		if err != nil {
			return nil, err
		}
		if _, err := s.SetMask(v); err != nil {
			return nil, err
		}
		return maskData(s), nil
	})
}

func maskValue(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case string:
		m, err := gesture.ParseMask(v)
		return int(m), err
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: mask %v is not an integer", gesture.ErrInvalidArgument, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("%w: 'mask' is required", gesture.ErrInvalidArgument)
	default:
		return 0, fmt.Errorf("%w: mask must be a number or a decimal string", gesture.ErrInvalidArgument)
	}
}

func ImplementedCommand() *CommandResponse {
	return withService(func(s *service.Service) (interface{}, error) {
		implemented := s.Settings().Implemented()
		return map[string]interface{}{
			"implemented": uint32(implemented),
			"hex":         fmt.Sprintf("0x%x", uint32(implemented)),
		}, nil
	})
}

// VersionCommand works without a running service.
func VersionCommand(version string) *CommandResponse {
	return NewSuccessResponse(map[string]string{
		"version":       version,
		"driverVersion": gesture.DriverVersion,
	})
}

type DebugSetRequest struct {
	Enabled bool `json:"enabled"`
}

func DebugSetCommand(req DebugSetRequest) *CommandResponse {
	return withService(func(s *service.Service) (interface{}, error) {
		s.SetDebug(req.Enabled)
		return map[string]bool{"debug": req.Enabled}, nil
	})
}

type ScreenSetRequest struct {
	On bool `json:"on"`
}

func ScreenSetCommand(req ScreenSetRequest) *CommandResponse {
	return withService(func(s *service.Service) (interface{}, error) {
		s.SetScreen(req.On)
		return map[string]bool{"on": req.On}, nil
	})
}

func StatusCommand() *CommandResponse {
	return withService(func(s *service.Service) (interface{}, error) {
		return s.Status(), nil
	})
}

func TriggersCommand() *CommandResponse {
	return withService(func(s *service.Service) (interface{}, error) {
		return s.History(), nil
	})
}

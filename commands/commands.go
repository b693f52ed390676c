package commands

import (
	"errors"
	"fmt"

	"github.com/mobile-next/sweep2sleep/service"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`

	// err keeps the original error for callers that classify it.
	err error
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
		err:    err,
	}
}

// Err returns the error behind an error response, or nil.
func (r *CommandResponse) Err() error {
	if r.Status != "error" {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return errors.New(r.Error)
}

var ErrNotRunning = errors.New("gesture service is not running")

// gestureService is the running service. It is set once at startup by the
// server command and read by every handler.
var gestureService *service.Service

// SetService installs the running service.
func SetService(s *service.Service) {
	gestureService = s
}

// GetService returns the running service, or nil before SetService.
func GetService() *service.Service {
	return gestureService
}

func requireService() (*service.Service, error) {
	if gestureService == nil {
		return nil, ErrNotRunning
	}
	return gestureService, nil
}

// withService runs fn against the running service and wraps the result.
func withService(fn func(s *service.Service) (interface{}, error)) *CommandResponse {
	s, err := requireService()
	if err != nil {
		return NewErrorResponse(err)
	}

	data, err := fn(s)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(data)
}

func maskData(s *service.Service) map[string]interface{} {
	settings := s.Settings()
	return map[string]interface{}{
		"mask":        uint32(settings.Mask()),
		"implemented": uint32(settings.Implemented()),
		"hex":         fmt.Sprintf("0x%x", uint32(settings.Mask())),
	}
}

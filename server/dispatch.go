package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mobile-next/sweep2sleep/commands"
	"github.com/mobile-next/sweep2sleep/gesture"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// ErrMethodNotFound is returned by Execute for names outside the registry.
var ErrMethodNotFound = errors.New("method not found")

// methods returns a map of method names to handler functions
// This is used by both the HTTP and the WebSocket endpoints
func (s *Server) methods() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"status":      handleStatus,
		"mask_get":    handleMaskGet,
		"mask_set":    handleMaskSet,
		"implemented": handleImplemented,
		"version":     s.handleVersion,
		"debug_set":   handleDebugSet,
		"screen_set":  handleScreenSet,
		"inject":      handleInject,
		"triggers":    handleTriggers,
	}
}

// Execute dispatches a method call using the registry
func (s *Server) Execute(method string, params json.RawMessage) (interface{}, error) {
	if method == MethodShutdown {
		s.requestShutdown()
		return okResponse, nil
	}

	handler, exists := s.methods()[method]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}

	return handler(params)
}

func result(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, response.Err()
	}
	return response.Data, nil
}

// decodeParams unmarshals required params into v.
func decodeParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: 'params' is required with fields: %s", gesture.ErrInvalidArgument, fields)
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: invalid parameters: %v. Expected fields: %s", gesture.ErrInvalidArgument, err, fields)
	}
	return nil
}

// requireFields rejects params that omit any of names, so a missing flag
// is not mistaken for false.
func requireFields(params json.RawMessage, names ...string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(params, &raw); err != nil {
		return fmt.Errorf("%w: invalid parameters format", gesture.ErrInvalidArgument)
	}
	for _, name := range names {
		if _, exists := raw[name]; !exists {
			return fmt.Errorf("%w: '%s' is required", gesture.ErrInvalidArgument, name)
		}
	}
	return nil
}

func handleStatus(params json.RawMessage) (interface{}, error) {
	return result(commands.StatusCommand())
}

func handleMaskGet(params json.RawMessage) (interface{}, error) {
	return result(commands.MaskGetCommand())
}

func handleMaskSet(params json.RawMessage) (interface{}, error) {
	var req commands.MaskSetRequest
	if err := decodeParams(params, &req, "mask"); err != nil {
		return nil, err
	}
	return result(commands.MaskSetCommand(req))
}

func handleImplemented(params json.RawMessage) (interface{}, error) {
	return result(commands.ImplementedCommand())
}

func (s *Server) handleVersion(params json.RawMessage) (interface{}, error) {
	return result(commands.VersionCommand(s.version()))
}

func handleDebugSet(params json.RawMessage) (interface{}, error) {
	var req commands.DebugSetRequest
	if err := decodeParams(params, &req, "enabled"); err != nil {
		return nil, err
	}
	if err := requireFields(params, "enabled"); err != nil {
		return nil, err
	}
	return result(commands.DebugSetCommand(req))
}

func handleScreenSet(params json.RawMessage) (interface{}, error) {
	var req commands.ScreenSetRequest
	if err := decodeParams(params, &req, "on"); err != nil {
		return nil, err
	}
	if err := requireFields(params, "on"); err != nil {
		return nil, err
	}
	return result(commands.ScreenSetCommand(req))
}

func handleInject(params json.RawMessage) (interface{}, error) {
	var req commands.InjectRequest
	if err := decodeParams(params, &req, "events"); err != nil {
		return nil, err
	}
	return result(commands.InjectCommand(req))
}

func handleTriggers(params json.RawMessage) (interface{}, error) {
	return result(commands.TriggersCommand())
}

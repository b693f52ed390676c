package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/input"
	"github.com/mobile-next/sweep2sleep/service"
)

type ReplayRequest struct {
	TracePath   string
	CatalogPath string
	Mask        int
	Gate        string
}

// ReplayCommand evaluates a recorded trace offline.
func ReplayCommand(req ReplayRequest) *CommandResponse {
	f, err := os.Open(req.TracePath)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to open trace: %w", err))
	}
	defer f.Close()

	steps, err := input.ParseTrace(f)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("%s: %w", req.TracePath, err))
	}

	catalog, err := LoadCatalog(req.CatalogPath)
	if err != nil {
		return NewErrorResponse(err)
	}

	gate, err := gesture.ParseGate(req.Gate)
	if err != nil {
		return NewErrorResponse(err)
	}

	result, err := service.Replay(service.Options{
		Catalog: catalog,
		Mask:    req.Mask,
		Gate:    gate,
	}, steps)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(result)
}

// LoadCatalog reads path, or returns the built-in catalog when path is
// empty.
func LoadCatalog(path string) (*gesture.Catalog, error) {
	if path == "" {
		return gesture.DefaultCatalog(), nil
	}
	return gesture.LoadCatalog(path)
}

// CatalogCommand renders the effective geometry in catalog file format.
func CatalogCommand(path string) *CommandResponse {
	catalog, err := LoadCatalog(path)
	if err != nil {
		return NewErrorResponse(err)
	}

	var buf bytes.Buffer
	if _, err := catalog.WriteTo(&buf); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to render catalog: %w", err))
	}
	return NewSuccessResponse(buf.String())
}

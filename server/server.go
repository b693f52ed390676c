package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

// MethodShutdown stops the server. It is handled here rather than in the
// registry because it needs the server itself.
const MethodShutdown = "server.shutdown"

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// JSONRPCNotification is a server push without an id.
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type Options struct {
	Addr       string
	EnableCORS bool
	Version    string
}

// Server serves the control API for the running gesture service.
type Server struct {
	opts Options
	hub  *Hub

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

func New(opts Options) *Server {
	return &Server{
		opts:       opts,
		hub:        NewHub(),
		shutdownCh: make(chan struct{}),
	}
}

// version is reported by the version method.
func (s *Server) version() string {
	if s.opts.Version == "" {
		return "dev"
	}
	return s.opts.Version
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// ShutdownRequested is closed once a client calls server.shutdown.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdownCh
}

func (s *Server) requestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownCh) })
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler with /, /rpc and /ws routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", sendBanner)
	mux.HandleFunc("/rpc", s.handleJSONRPC)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.handleWebSocket(w, r)
	})

	if s.opts.EnableCORS {
		return corsMiddleware(mux)
	}
	return mux
}

// normalizeAddr turns a bare port into ":port".
func normalizeAddr(addr string) (string, error) {
	if strings.Contains(addr, ":") {
		return addr, nil
	}

	port, err := strconv.Atoi(addr)
	if err != nil {
		return "", fmt.Errorf("invalid port: %v", err)
	}
	return fmt.Sprintf(":%d", port), nil
}

// ListenAndServe serves until ctx is cancelled or server.shutdown is
// called, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr, err := normalizeAddr(s.opts.Addr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("Starting server on http://%s...", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case <-s.shutdownCh:
		utils.Info("shutdown requested over JSON-RPC")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.hub.CloseAll()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// errorCode classifies a handler error.
func errorCode(err error) (int, string) {
	if errors.Is(err, gesture.ErrInvalidArgument) {
		return ErrCodeInvalidParams, "Invalid params"
	}
	return ErrCodeServerError, "Server error"
}

// call runs one method and returns a result or a JSON-RPC error triple.
func (s *Server) call(req JSONRPCRequest) (interface{}, *rpcError) {
	result, err := s.Execute(req.Method, req.Params)
	if errors.Is(err, ErrMethodNotFound) {
		return nil, &rpcError{ErrCodeMethodNotFound, "Method not found", fmt.Sprintf("Method '%s' not found", req.Method)}
	}
	if err != nil {
		utils.Verbose("method %s failed: %v", req.Method, err)
		code, message := errorCode(err)
		return nil, &rpcError{code, message, err.Error()}
	}
	return result, nil
}

type rpcError struct {
	code    int
	message string
	data    interface{}
}

func (e *rpcError) payload() map[string]interface{} {
	return map[string]interface{}{
		"code":    e.code,
		"message": e.message,
		"data":    e.data,
	}
}

// validateRequest checks the envelope shared by HTTP and WebSocket.
func validateRequest(req JSONRPCRequest) *rpcError {
	if req.JSONRPC != "2.0" {
		return &rpcError{ErrCodeInvalidRequest, "Invalid Request", "'jsonrpc' must be '2.0'"}
	}
	if req.ID == nil {
		return &rpcError{ErrCodeInvalidRequest, "Invalid Request", "'id' field is required"}
	}
	if req.Method == "" {
		return &rpcError{ErrCodeInvalidRequest, "Invalid Request", "'method' is required"}
	}
	return nil
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, &rpcError{ErrCodeParseError, "Parse error", "expecting jsonrpc payload"})
		return
	}

	if rerr := validateRequest(req); rerr != nil {
		sendJSONRPCError(w, req.ID, rerr)
		return
	}

	utils.Verbose("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, rerr := s.call(req)
	if rerr != nil {
		sendJSONRPCError(w, req.ID, rerr)
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, rerr *rpcError) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error:   rerr.payload(),
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}

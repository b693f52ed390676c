package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mobile-next/sweep2sleep/types"
	"github.com/mobile-next/sweep2sleep/utils"
)

// MethodTrigger is the notification pushed to every websocket client when
// a gesture fires.
const MethodTrigger = "trigger"

type wsConnection struct {
	id      uuid.UUID
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Hub tracks connected websocket clients for trigger pushes.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*wsConnection
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]*wsConnection)}
}

func (h *Hub) add(c *wsConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) remove(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast pushes a trigger notification to every client. Clients that
// fail to receive it are dropped by their own read loop.
func (h *Hub) Broadcast(t types.Trigger) {
	h.mu.RLock()
	clients := make([]*wsConnection, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	n := JSONRPCNotification{JSONRPC: "2.0", Method: MethodTrigger, Params: t}
	for _, c := range clients {
		if err := c.sendJSON(n); err != nil {
			utils.Verbose("push to %s failed: %v", c.id, err)
		}
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, id)
	}
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := newUpgrader(s.opts.EnableCORS).Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := &wsConnection{id: uuid.New(), conn: conn}
	s.hub.add(wsConn)
	defer s.hub.remove(wsConn.id)
	utils.Verbose("WebSocket client %s connected", wsConn.id)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection %s closed: %v", wsConn.id, err)
			break
		}

		if messageType != websocket.TextMessage {
			wsConn.sendError(nil, &rpcError{ErrCodeInvalidRequest, "Invalid Request", "only text messages accepted for requests"})
			continue
		}

		s.handleWSMessage(wsConn, message)
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func (s *Server) handleWSMessage(wsConn *wsConnection, message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		wsConn.sendError(nil, &rpcError{ErrCodeParseError, "Parse error", "expecting jsonrpc payload"})
		return
	}

	if rerr := validateRequest(req); rerr != nil {
		wsConn.sendError(req.ID, rerr)
		return
	}

	utils.Verbose("WebSocket Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, rerr := s.call(req)
	if rerr != nil {
		wsConn.sendError(req.ID, rerr)
		return
	}

	wsConn.sendResponse(req.ID, result)
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, rerr *rpcError) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error:   rerr.payload(),
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	return wsc.conn.WriteJSON(v)
}

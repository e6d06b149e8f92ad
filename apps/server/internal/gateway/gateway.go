package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"negotiator-lite/apps/server/internal/auth"
	"negotiator-lite/apps/server/internal/codec"
	"negotiator-lite/apps/server/internal/game"
	"negotiator-lite/apps/server/internal/httpx"
)

const (
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	requestWait  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the configured web origin
	},
}

// Connection is one authenticated WebSocket client.
type Connection struct {
	ID      string
	Player  auth.Account
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway

	seq  atomic.Uint64
	done chan struct{}
}

// Gateway serves the game over WebSocket using codec frames.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64
	game        *game.Service
	auth        auth.Service
}

func New(svc *game.Service, authService auth.Service) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		game:        svc,
		auth:        authService,
	}
}

// sessionToken accepts a bearer header or a ?token= query parameter, since
// browsers cannot set headers on WebSocket upgrades.
func sessionToken(r *http.Request) string {
	if token := httpx.BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	player, ok := g.auth.ResolveSession(r.Context(), sessionToken(r))
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      fmt.Sprintf("conn_%d", g.nextConnID),
		Player:  player,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		Gateway: g,
		done:    make(chan struct{}),
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s (player=%d), total: %d", c.ID, player.ID, total)

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		close(c.done)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			return
		}
		if messageType == websocket.BinaryMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	req, err := codec.DecodeRequest(data)
	if err != nil {
		log.Printf("[Gateway] Failed to decode frame from %s: %v", c.ID, err)
		c.sendError("", http.StatusBadRequest, "invalid message format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestWait)
	defer cancel()

	svc := c.Gateway.game
	var (
		respType = codec.ResponseView
		payload  any
	)
	switch req.Type {
	case codec.RequestPing:
		c.send(codec.Response{Type: codec.ResponsePong, RequestID: req.RequestID})
		return
	case codec.RequestStart:
		payload, err = svc.Start(ctx, c.Player)
	case codec.RequestSay:
		if strings.TrimSpace(req.Text) == "" {
			c.sendError(req.RequestID, http.StatusBadRequest, "text is required")
			return
		}
		payload, err = svc.Say(ctx, c.Player, req.AttemptID, req.Text)
	case codec.RequestGet:
		payload, err = svc.Get(ctx, c.Player, req.AttemptID)
	case codec.RequestDebrief:
		respType = codec.ResponseDebrief
		payload, err = svc.Debrief(ctx, c.Player, req.AttemptID)
	case codec.RequestStats:
		respType = codec.ResponseStats
		payload, err = svc.Stats(ctx, c.Player)
	case codec.RequestLeaderboard:
		respType = codec.ResponseLeaderboard
		payload, err = svc.Leaderboard(ctx, req.Limit)
	default:
		log.Printf("[Gateway] Unknown request type %q from %s", req.Type, c.ID)
		c.sendError(req.RequestID, http.StatusBadRequest, "unknown request type")
		return
	}
	if err != nil {
		status, msg := game.StatusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("[Gateway] %s request from %s failed: %v", req.Type, c.ID, err)
		}
		c.sendError(req.RequestID, int32(status), msg)
		return
	}
	c.send(codec.Response{Type: respType, RequestID: req.RequestID, Payload: payload})
}

func (c *Connection) sendError(requestID string, code int32, msg string) {
	c.send(codec.Response{
		Type:         codec.ResponseError,
		RequestID:    requestID,
		ErrorCode:    code,
		ErrorMessage: msg,
	})
}

func (c *Connection) send(resp codec.Response) {
	resp.ServerSeq = c.seq.Add(1)
	data, err := codec.EncodeResponse(resp)
	if err != nil {
		log.Printf("[Gateway] Encode %s response failed: %v", resp.Type, err)
		return
	}
	select {
	case c.Send <- data:
	case <-c.done:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, len(g.connections))
}

// Count returns the number of open connections.
func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

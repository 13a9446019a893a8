package gateway

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"dice-lite/apps/server/internal/codec"
	"dice-lite/apps/server/internal/lobby"
	"dice-lite/apps/server/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMessage = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type outbound struct {
	data []byte
	text bool
}

// Connection is one websocket client. Each connection owns exactly one session.
type Connection struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan outbound
	Gateway  *Gateway
	LastPing time.Time
	Session  *session.Session

	// text switches to protojson text frames; set by ?format=json or by the
	// client's own framing.
	text      atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
}

// Gateway manages WebSocket connections
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	lobby       *lobby.Lobby
}

func New(lby *lobby.Lobby) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		lobby:       lby,
	}
}

// HandleWebSocket upgrades the request and opens a session for it.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	c := &Connection{
		ID:       uuid.NewString(),
		Conn:     conn,
		Send:     make(chan outbound, 256),
		Gateway:  g,
		LastPing: time.Now(),
		closed:   make(chan struct{}),
	}
	c.text.Store(r.URL.Query().Get("format") == "json")

	sess, err := g.lobby.Open(c.enqueue)
	if err != nil {
		log.Printf("[Gateway] Open session failed for %s: %v", c.ID, err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session unavailable"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	c.Session = sess

	g.mu.Lock()
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()
	log.Printf("[Gateway] Client connected: %s (session=%s), total: %d", c.ID, sess.ID, total)

	go c.writePump()
	if err := sess.SubmitEvent(session.Event{Type: session.EventSync}); err != nil {
		log.Printf("[Gateway] initial sync failed: %s err=%v", c.ID, err)
	}
	go c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessage)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}
		if messageType != websocket.BinaryMessage && messageType != websocket.TextMessage {
			continue
		}
		if !c.handleMessage(messageType == websocket.TextMessage, message) {
			break
		}
	}
}

// handleMessage returns false when the connection should be dropped.
func (c *Connection) handleMessage(text bool, data []byte) bool {
	c.text.Store(text)

	cmd, err := codec.DecodeClient(data, text)
	if err != nil {
		log.Printf("[Gateway] Failed to decode from %s: %v", c.ID, err)
		c.sendError(0, codec.ErrCodeBadRequest, err.Error())
		return true
	}

	ev, ok := eventFromCommand(cmd)
	if !ok {
		c.sendError(cmd.ClientSeq, codec.ErrCodeBadRequest, "unsupported command")
		return true
	}
	err = c.Session.SubmitEvent(ev)
	if err == nil {
		return true
	}
	if errors.Is(err, session.ErrSessionClosed) {
		c.sendError(cmd.ClientSeq, codec.ErrCodeInternal, err.Error())
		return false
	}
	c.sendError(cmd.ClientSeq, codec.ErrorCode(err), err.Error())
	return true
}

func eventFromCommand(cmd codec.ClientCommand) (session.Event, bool) {
	switch cmd.Type {
	case codec.CommandStart:
		return session.Event{Type: session.EventStartMatch, Target: cmd.Target}, true
	case codec.CommandThrow:
		return session.Event{Type: session.EventThrow, Hold: cmd.Hold}, true
	case codec.CommandScore:
		return session.Event{Type: session.EventScore}, true
	case codec.CommandAck:
		return session.Event{Type: session.EventAcknowledge}, true
	case codec.CommandSync:
		return session.Event{Type: session.EventSync}, true
	default:
		return session.Event{}, false
	}
}

// sendError replies outside the session's sequence; server_seq stays 0.
func (c *Connection) sendError(clientSeq uint64, code int32, msg string) {
	payload := codec.ErrorPayload(code, msg)
	payload["client_seq"] = clientSeq
	sessionID := ""
	if c.Session != nil {
		sessionID = c.Session.ID
	}
	c.enqueue(codec.WrapServerEnvelope(sessionID, 0, codec.EnvelopeError, payload))
}

// enqueue encodes env for this connection's framing. Never blocks.
func (c *Connection) enqueue(env codec.ServerEnvelope) {
	text := c.text.Load()
	data, err := env.Marshal(text)
	if err != nil {
		log.Printf("[Gateway] Failed to marshal %s for %s: %v", env.Type, c.ID, err)
		return
	}
	select {
	case c.Send <- outbound{data: data, text: text}:
	default:
		log.Printf("[Gateway] Send buffer full, dropping %s seq=%d for %s", env.Type, env.ServerSeq, c.ID)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			frame := websocket.BinaryMessage
			if msg.text {
				frame = websocket.TextMessage
			}
			if err := c.Conn.WriteMessage(frame, msg.data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	c.closeOnce.Do(func() {
		close(c.closed)
	})

	g.mu.Lock()
	delete(g.connections, c.ID)
	total := len(g.connections)
	g.mu.Unlock()

	if c.Session != nil {
		g.lobby.Close(c.Session.ID)
	}
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, total)
}

// ConnectionCount reports live connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

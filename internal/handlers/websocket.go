package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/services"
)

const (
	MessageGameState    = "GAME_STATE"
	MessagePlayRecorded = "PLAY_RECORDED"
	MessagePing         = "PING"
	MessagePong         = "PONG"
	MessageGetState     = "GET_STATE"
	MessageError        = "ERROR"

	writeWait      = 10 * time.Second
	clientSendSize = 16
)

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan *Message
}

// queue never blocks; a client that is not draining its buffer misses
// messages.
func (cl *client) queue(msg *Message) bool {
	select {
	case cl.send <- msg:
		return true
	default:
		return false
	}
}

// WebSocketHub fans recorded plays out to connected clients. The run
// goroutine owns the client set.
type WebSocketHub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan *Message
	done       chan struct{}
	stopOnce   sync.Once
	logger     *zap.Logger
}

func NewWebSocketHub(logger *zap.Logger) *WebSocketHub {
	hub := &WebSocketHub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *Message, 100),
		done:       make(chan struct{}),
		logger:     logger,
	}

	go hub.run()

	return hub
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case cl := <-hub.register:
			hub.clients[cl] = struct{}{}
			hub.logger.Debug("websocket client registered", zap.Int("clients", len(hub.clients)))

		case cl := <-hub.unregister:
			if _, ok := hub.clients[cl]; ok {
				delete(hub.clients, cl)
				close(cl.send)
				hub.logger.Debug("websocket client unregistered", zap.Int("clients", len(hub.clients)))
			}

		case msg := <-hub.broadcast:
			for cl := range hub.clients {
				if !cl.queue(msg) {
					hub.logger.Warn("dropping message for slow websocket client",
						zap.String("op", "ws.broadcast"), zap.String("type", msg.Type))
				}
			}

		case <-hub.done:
			return
		}
	}
}

func (hub *WebSocketHub) add(cl *client) bool {
	select {
	case hub.register <- cl:
		return true
	case <-hub.done:
		return false
	}
}

func (hub *WebSocketHub) remove(cl *client) {
	select {
	case hub.unregister <- cl:
	case <-hub.done:
	}
}

// BroadcastPlay implements services.Broadcaster. It never blocks the
// recording request.
func (hub *WebSocketHub) BroadcastPlay(play *models.GamePlay) {
	msg := &Message{Type: MessagePlayRecorded, Data: play}
	select {
	case hub.broadcast <- msg:
	case <-hub.done:
	default:
		hub.logger.Warn("websocket broadcast queue full",
			zap.String("op", "ws.broadcast"), zap.String("play_id", play.ID))
	}
}

// Stop ends the hub; every client's writer closes its connection.
func (hub *WebSocketHub) Stop() {
	hub.stopOnce.Do(func() { close(hub.done) })
}

type WebSocketHandler struct {
	hub      *WebSocketHub
	state    *services.GameStateService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler accepts upgrades from origins allowOrigin approves.
// Requests without an Origin header are always accepted.
func NewWebSocketHandler(hub *WebSocketHub, state *services.GameStateService, allowOrigin func(string) bool, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		state: state,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowOrigin == nil || allowOrigin(origin)
			},
		},
		logger: logger,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("op", "ws.upgrade"), zap.Error(err))
		return
	}

	cl := &client{
		conn: conn,
		send: make(chan *Message, clientSendSize),
	}
	if !h.hub.add(cl) {
		conn.Close()
		return
	}

	go h.writePump(cl)

	defer func() {
		h.hub.remove(cl)
		conn.Close()
	}()

	h.sendState(c, cl)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.String("op", "ws.read"), zap.Error(err))
			}
			return
		}

		h.handleMessage(c, cl, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(c *gin.Context, cl *client, msg *Message) {
	switch msg.Type {
	case MessagePing:
		cl.queue(&Message{
			Type: MessagePong,
			Data: gin.H{"timestamp": time.Now().Unix()},
		})
	case MessageGetState:
		h.sendState(c, cl)
	}
}

func (h *WebSocketHandler) sendState(c *gin.Context, cl *client) {
	state, source, err := h.state.GetGameState(c.Request.Context())
	if err != nil {
		h.logger.Warn("websocket state read failed", zap.String("op", "ws.state"), zap.Error(err))
		cl.queue(&Message{Type: MessageError, Data: gin.H{"error": "Failed to read game state"}})
		return
	}

	cl.queue(&Message{
		Type: MessageGameState,
		Data: gin.H{"source": source, "state": state},
	})
}

// writePump is the only writer on the connection. It exits when the hub
// unregisters the client or stops.
func (h *WebSocketHandler) writePump(cl *client) {
	defer cl.conn.Close()

	for {
		select {
		case msg, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := cl.conn.WriteJSON(msg); err != nil {
				h.logger.Debug("websocket write failed", zap.String("op", "ws.write"), zap.Error(err))
				return
			}
		case <-h.hub.done:
			cl.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

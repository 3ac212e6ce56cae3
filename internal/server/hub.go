package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hspp/hspp-server-go/internal/engine"
	"go.uber.org/zap"
)

// Client is one websocket connection watching a game. send is never closed;
// done is closed once the client stops receiving.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
	gameID   string
	playerID string
}

func newClient(conn *websocket.Conn, gameID, playerID string) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
		gameID:   gameID,
		playerID: playerID,
	}
}

func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Hub tracks connected clients and fans engine notifications out to the
// clients of the affected game.
type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	broadcast  chan engine.Notification
	registerCh chan *Client
	unregister chan *Client
	done       chan struct{}
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan engine.Notification, 256),
		registerCh: make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.stop()
				delete(h.clients, client)
			}
			return

		case client := <-h.registerCh:
			h.clients[client] = true
			h.logger.Debug("client registered",
				zap.String("game_id", client.gameID),
				zap.String("player_id", client.playerID),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.stop()
				h.logger.Debug("client unregistered",
					zap.String("game_id", client.gameID),
					zap.String("player_id", client.playerID),
				)
			}

		case n := <-h.broadcast:
			message := encode(TypeNotification, n.GameID, n.PlayerID, n)
			for client := range h.clients {
				if client.gameID != n.GameID {
					continue
				}
				select {
				case client.send <- message:
				default:
					client.stop()
					delete(h.clients, client)
				}
			}
		}
	}
}

func (h *Hub) register(c *Client) {
	select {
	case h.registerCh <- c:
	case <-h.done:
		c.conn.Close()
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// notify is the engine's notification handler.
func (h *Hub) notify(n engine.Notification) {
	select {
	case h.broadcast <- n:
	case <-h.done:
	default:
		h.logger.Warn("dropping notification, hub is busy",
			zap.String("game_id", n.GameID),
			zap.String("type", n.Type),
		)
	}
}

func (c *Client) readPump(s *Server) {
	defer func() {
		s.hub.leave(c)
		c.conn.Close()
	}()

	pongWait := s.cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.logger.Warn("invalid websocket message", zap.Error(err))
			c.reply(errorReply(c.gameID, err))
			continue
		}
		c.reply(s.handleMessage(c, msg))
	}
}

// reply queues a direct answer to the client's own command. It gives up once
// the client has been stopped.
func (c *Client) reply(message []byte) {
	select {
	case c.send <- message:
	case <-c.done:
	}
}

func (c *Client) writePump(pingPeriod, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

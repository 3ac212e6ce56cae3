// Package server exposes the engine over websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/config"
	"github.com/hspp/hspp-server-go/internal/engine"
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/hspp/hspp-server-go/internal/game/tasks"
	"go.uber.org/zap"
)

const maxMessageSize = 8192

// Message types sent to clients.
const (
	TypeTaskResult   = "task_result"
	TypeGameState    = "game_state"
	TypeNotification = "notification"
	TypeError        = "error"
	TypeOK           = "ok"
)

// WSMessage is the envelope of every websocket frame in both directions.
type WSMessage struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type commandData struct {
	Count    int    `json:"count"`
	CardID   string `json:"card_id"`
	EntityID int    `json:"entity_id"`
	Position *int   `json:"position"`
	Source   int    `json:"source"`
	Target   int    `json:"target"`
}

// Server serves the websocket endpoint and a health check.
type Server struct {
	engine   *engine.Engine
	logger   *zap.Logger
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
	hub      *Hub
}

// New creates a server for eng and registers its hub as the engine's
// notification handler.
func New(eng *engine.Engine, cfg config.WebSocketConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := config.Default().Server.WebSocket
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = defaults.PingPeriod
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.Address == "" {
		cfg.Address = defaults.Address
	}

	s := &Server{
		engine: eng,
		logger: logger,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		hub: newHub(logger),
	}
	eng.SetNotificationHandler(s.hub.notify)
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/games", s.createGame)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"games":  len(s.engine.Games()),
		})
	})
	return mux
}

// StartHub runs the client hub until ctx is done. Run calls it; tests using
// Handler directly call it themselves.
func (s *Server) StartHub(ctx context.Context) {
	go s.hub.run(ctx)
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.StartHub(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("websocket server listening", zap.String("address", s.cfg.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("websocket server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down websocket server: %w", err)
		}
		return nil
	}
}

type seatRequest struct {
	ID       string   `json:"id"`
	Nickname string   `json:"nickname"`
	Class    string   `json:"class"`
	Deck     []string `json:"deck"`
}

type createGameRequest struct {
	Players []seatRequest `json:"players"`
}

// createGame starts a game from a POSTed pair of seats.
func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Players) != 2 {
		http.Error(w, "exactly two players are required", http.StatusBadRequest)
		return
	}

	seats := make([]engine.PlayerSetup, 2)
	for i, p := range req.Players {
		seats[i] = engine.PlayerSetup{
			ID:       p.ID,
			Nickname: p.Nickname,
			Class:    cards.ParseCardClass(p.Class),
			Deck:     p.Deck,
		}
	}
	gameID, err := s.engine.StartGame(seats[0], seats[1])
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, engine.ErrTooManyGames) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"game_id": gameID})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	playerID := r.URL.Query().Get("player")
	if gameID == "" {
		http.Error(w, "game is required", http.StatusBadRequest)
		return
	}
	if _, err := s.engine.Checksum(gameID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(conn, gameID, playerID)
	s.hub.register(client)

	go client.writePump(s.cfg.PingPeriod, s.cfg.WriteTimeout)
	go client.readPump(s)
}

func encode(msgType, gameID, playerID string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		raw, _ = json.Marshal(map[string]string{"message": err.Error()})
		msgType = TypeError
	}
	out, _ := json.Marshal(WSMessage{Type: msgType, GameID: gameID, PlayerID: playerID, Data: raw})
	return out
}

func errorReply(gameID string, err error) []byte {
	return encode(TypeError, gameID, "", map[string]string{"message": err.Error()})
}

// handleMessage runs one client command and returns the reply.
func (s *Server) handleMessage(c *Client, msg WSMessage) []byte {
	s.logger.Debug("websocket command",
		zap.String("game_id", c.gameID),
		zap.String("player_id", c.playerID),
		zap.String("type", msg.Type),
	)

	var data commandData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return errorReply(c.gameID, fmt.Errorf("invalid data for %s: %w", msg.Type, err))
		}
	}

	switch msg.Type {
	case "view":
		view, err := s.engine.GameView(c.gameID, c.playerID)
		if err != nil {
			return errorReply(c.gameID, err)
		}
		return encode(TypeGameState, c.gameID, c.playerID, view)

	case "end_turn":
		if err := s.engine.EndTurn(c.gameID, c.playerID); err != nil {
			return errorReply(c.gameID, err)
		}
		return encode(TypeOK, c.gameID, c.playerID, map[string]string{"command": msg.Type})

	case "concede":
		if err := s.engine.Concede(c.gameID, c.playerID); err != nil {
			return errorReply(c.gameID, err)
		}
		return encode(TypeOK, c.gameID, c.playerID, map[string]string{"command": msg.Type})
	}

	build, err := taskBuilder(msg.Type, data)
	if err != nil {
		return errorReply(c.gameID, err)
	}
	meta, err := s.engine.Submit(c.gameID, c.playerID, build)
	if err != nil {
		return errorReply(c.gameID, err)
	}
	return encode(TypeTaskResult, c.gameID, c.playerID, meta.View())
}

func lookupEntity(g *game.Game, id int) (*game.Entity, error) {
	e, ok := g.Entity(game.EntityID(id))
	if !ok {
		return nil, fmt.Errorf("entity %d not found", id)
	}
	return e, nil
}

// taskBuilder converts a command into a task built against the live game.
func taskBuilder(command string, data commandData) (engine.TaskBuilder, error) {
	switch command {
	case "draw":
		count := data.Count
		if count <= 0 {
			count = 1
		}
		return func(*game.Game, *game.Player) (game.Task, error) {
			return tasks.NewDrawTask(count), nil
		}, nil

	case "draw_card":
		if data.CardID == "" {
			return nil, fmt.Errorf("draw_card needs card_id")
		}
		return func(g *game.Game, _ *game.Player) (game.Task, error) {
			card := &cards.Card{ID: data.CardID}
			if reg := g.Registry(); reg != nil {
				if found, ok := reg.FindCardByID(data.CardID); ok {
					card = found
				}
			}
			return tasks.NewDrawCardTask(card), nil
		}, nil

	case "play_minion":
		return func(g *game.Game, p *game.Player) (game.Task, error) {
			source, err := lookupEntity(g, data.EntityID)
			if err != nil {
				return nil, err
			}
			position := p.Field().Len()
			if data.Position != nil {
				position = *data.Position
			}
			return tasks.NewPlayMinionTask(source, position), nil
		}, nil

	case "play_weapon":
		return func(g *game.Game, _ *game.Player) (game.Task, error) {
			source, err := lookupEntity(g, data.EntityID)
			if err != nil {
				return nil, err
			}
			return tasks.NewPlayWeaponTask(source), nil
		}, nil

	case "attack":
		return func(g *game.Game, _ *game.Player) (game.Task, error) {
			source, err := lookupEntity(g, data.Source)
			if err != nil {
				return nil, err
			}
			target, err := lookupEntity(g, data.Target)
			if err != nil {
				return nil, err
			}
			return tasks.NewCombatTask(source, target), nil
		}, nil

	case "destroy_weapon":
		return func(*game.Game, *game.Player) (game.Task, error) {
			return tasks.NewDestroyWeaponTask(), nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

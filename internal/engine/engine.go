// Package engine drives games: it owns every running game, runs tasks for
// players on their turn and reports what happened through notifications.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/config"
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/hspp/hspp-server-go/internal/game/tasks"
	"github.com/hspp/hspp-server-go/internal/game/watchers"
	"go.uber.org/zap"
)

var (
	// ErrGameNotFound is returned for an unknown game id.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameOver is returned when a finished game is asked to change.
	ErrGameOver = errors.New("game is over")
	// ErrNotYourTurn is returned when a player acts outside their turn.
	ErrNotYourTurn = errors.New("not the current player")
	// ErrTooManyGames is returned when the concurrent game limit is reached.
	ErrTooManyGames = errors.New("too many concurrent games")
)

// Notification types.
const (
	NotifyOverdraw = "OVERDRAW"
	NotifyTask     = "TASK"
	NotifyTurn     = "TURN"
	NotifyGameOver = "GAME_OVER"
)

// Notification is sent to the registered handler after a game changes.
type Notification struct {
	Type      string                 `json:"type"`
	GameID    string                 `json:"game_id"`
	PlayerID  string                 `json:"player_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NotificationHandler receives engine notifications.
type NotificationHandler func(Notification)

// TaskBuilder builds a task against the live game. It runs with the game
// locked, so it may resolve entity ids.
type TaskBuilder func(g *game.Game, p *game.Player) (game.Task, error)

// PlayerSetup describes one seat of a new game. Deck lists card ids from the
// top of the deck down.
type PlayerSetup struct {
	ID       string
	Nickname string
	Class    cards.CardClass
	Deck     []string
}

// Options configures an Engine.
type Options struct {
	Logger   *zap.Logger
	Registry cards.Registry
	Game     config.GameConfig
	Replay   config.ReplayConfig
}

// session is one running game. The game is only touched with mu held.
type session struct {
	mu      sync.Mutex
	game    *game.Game
	pending []Notification
}

func (s *session) queue(n Notification) {
	s.pending = append(s.pending, n)
}

func (s *session) drain() []Notification {
	out := s.pending
	s.pending = nil
	return out
}

// Engine keeps running games keyed by id.
type Engine struct {
	logger   *zap.Logger
	registry cards.Registry
	rules    config.GameConfig
	recorder *game.ReplayRecorder

	mu                  sync.RWMutex
	games               map[string]*session
	notificationHandler NotificationHandler
}

// New creates an engine. Zero rule values fall back to config defaults.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	defaults := config.Default().Game
	if opts.Game.HandCapacity <= 0 {
		opts.Game.HandCapacity = defaults.HandCapacity
	}
	if opts.Game.FieldCapacity <= 0 {
		opts.Game.FieldCapacity = defaults.FieldCapacity
	}
	if opts.Game.HeroHealth <= 0 {
		opts.Game.HeroHealth = defaults.HeroHealth
	}

	e := &Engine{
		logger:   opts.Logger,
		registry: opts.Registry,
		rules:    opts.Game,
		games:    make(map[string]*session),
	}
	if opts.Replay.Enabled {
		e.recorder = game.NewReplayRecorder(opts.Logger, opts.Replay.Directory)
	}
	return e
}

// SetNotificationHandler sets the handler for game notifications.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

// emit delivers notifications in order. Callers must not hold a session lock
// so that handlers can call back into the engine.
func (e *Engine) emit(notifications []Notification) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()

	if handler == nil {
		return
	}
	for _, n := range notifications {
		handler(n)
	}
}

func newNotification(kind, gameID, playerID string, data map[string]interface{}) Notification {
	return Notification{
		Type:      kind,
		GameID:    gameID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (e *Engine) resolveDeck(ids []string) ([]*cards.Card, error) {
	deck := make([]*cards.Card, 0, len(ids))
	for _, id := range ids {
		if e.registry == nil {
			return nil, fmt.Errorf("card %s: %w", id, cards.ErrCardNotFound)
		}
		card, ok := e.registry.FindCardByID(id)
		if !ok {
			return nil, fmt.Errorf("card %s: %w", id, cards.ErrCardNotFound)
		}
		deck = append(deck, card)
	}
	return deck, nil
}

// StartGame creates a game, deals the opening hands and begins the first
// turn. It returns the new game id.
func (e *Engine) StartGame(first, second PlayerSetup) (string, error) {
	if first.ID == "" || second.ID == "" {
		return "", fmt.Errorf("both players need an id")
	}
	if first.ID == second.ID {
		return "", fmt.Errorf("players must differ, got %s twice", first.ID)
	}
	decks := make([][]*cards.Card, 2)
	for i, setup := range []PlayerSetup{first, second} {
		deck, err := e.resolveDeck(setup.Deck)
		if err != nil {
			return "", fmt.Errorf("deck of %s: %w", setup.ID, err)
		}
		decks[i] = deck
	}

	gameID := uuid.NewString()
	s := &session{}
	overdraw := func(meta game.TaskMeta) {
		s.queue(newNotification(NotifyOverdraw, gameID, meta.UserID, map[string]interface{}{
			"meta": meta.View(),
		}))
	}

	g := game.New(game.Options{
		ID:            gameID,
		Player1:       game.PlayerOptions{ID: first.ID, Nickname: first.Nickname, Class: first.Class, Policy: game.PolicyFunc(overdraw)},
		Player2:       game.PlayerOptions{ID: second.ID, Nickname: second.Nickname, Class: second.Class, Policy: game.PolicyFunc(overdraw)},
		Registry:      e.registry,
		Logger:        e.logger,
		HandCapacity:  e.rules.HandCapacity,
		FieldCapacity: e.rules.FieldCapacity,
		HeroHealth:    e.rules.HeroHealth,
	})
	watchers.RegisterDefaults(g.Watchers())
	s.game = g

	for i, p := range g.Players() {
		// The first listed card ends on top.
		for j := len(decks[i]) - 1; j >= 0; j-- {
			p.AddToDeck(decks[i][j])
		}
	}

	// Held until the opening hands are dealt.
	s.mu.Lock()
	e.mu.Lock()
	if limit := e.rules.MaxConcurrentGames; limit > 0 && len(e.games) >= limit {
		e.mu.Unlock()
		s.mu.Unlock()
		return "", ErrTooManyGames
	}
	e.games[gameID] = s
	e.mu.Unlock()

	if e.recorder != nil {
		e.recorder.StartRecording(gameID)
	}

	g.RunTask(g.Player1(), tasks.NewDrawTask(e.rules.FirstPlayerHand))
	g.RunTask(g.Player2(), tasks.NewDrawTask(e.rules.SecondPlayerHand))
	e.record(g, "start")
	g.Start()
	e.beginTurn(s)
	notifications := s.drain()
	s.mu.Unlock()

	e.logger.Info("engine started game",
		zap.String("game_id", gameID),
		zap.String("player1", first.ID),
		zap.String("player2", second.ID),
	)
	e.emit(notifications)
	return gameID, nil
}

// beginTurn performs the turn-start draw and opens the action step.
func (e *Engine) beginTurn(s *session) {
	g := s.game
	p := g.CurrentPlayer()
	meta := g.RunTask(p, tasks.NewDrawTask(1))
	if !g.IsComplete() {
		g.EnterAction()
	}
	s.queue(newNotification(NotifyTurn, g.ID(), p.ID(), map[string]interface{}{
		"turn": g.Turn(),
		"draw": meta.View(),
	}))
	e.record(g, "turn")
	e.checkGameOver(s)
}

func (e *Engine) record(g *game.Game, action string) {
	if e.recorder != nil {
		e.recorder.Record(g, action)
	}
}

// checkGameOver queues the game over notification once and saves the replay.
func (e *Engine) checkGameOver(s *session) {
	g := s.game
	if !g.IsComplete() {
		return
	}
	for _, n := range s.pending {
		if n.Type == NotifyGameOver {
			return
		}
	}
	s.queue(newNotification(NotifyGameOver, g.ID(), g.Winner(), map[string]interface{}{
		"winner": g.Winner(),
		"turn":   g.Turn(),
	}))
	if e.recorder != nil && e.recorder.IsRecording(g.ID()) {
		if err := e.recorder.Save(g.ID()); err != nil {
			e.logger.Warn("failed to save replay",
				zap.String("game_id", g.ID()),
				zap.Error(err),
			)
		}
	}
}

func (e *Engine) session(gameID string) (*session, error) {
	e.mu.RLock()
	s, ok := e.games[gameID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	return s, nil
}

// activePlayer returns playerID's player if it is their turn.
func activePlayer(g *game.Game, playerID string) (*game.Player, error) {
	p, err := g.PlayerByID(playerID)
	if err != nil {
		return nil, err
	}
	if g.IsComplete() {
		return nil, fmt.Errorf("game %s: %w", g.ID(), ErrGameOver)
	}
	if g.CurrentPlayer() != p {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotYourTurn)
	}
	return p, nil
}

// RunTask runs task for playerID in gameID.
func (e *Engine) RunTask(gameID, playerID string, task game.Task) (game.TaskMeta, error) {
	return e.Submit(gameID, playerID, func(*game.Game, *game.Player) (game.Task, error) {
		return task, nil
	})
}

// Submit builds a task with the game locked and runs it for playerID. Task
// outcomes are reported in the returned TaskMeta; errors mean the task never
// ran.
func (e *Engine) Submit(gameID, playerID string, build TaskBuilder) (game.TaskMeta, error) {
	s, err := e.session(gameID)
	if err != nil {
		return game.TaskMeta{}, err
	}

	s.mu.Lock()
	g := s.game
	p, err := activePlayer(g, playerID)
	if err != nil {
		s.mu.Unlock()
		return game.TaskMeta{}, err
	}
	task, err := build(g, p)
	if err != nil {
		s.mu.Unlock()
		return game.TaskMeta{}, err
	}
	if task == nil {
		s.mu.Unlock()
		return game.TaskMeta{}, fmt.Errorf("no task to run")
	}

	meta := g.RunTask(p, task)
	s.queue(newNotification(NotifyTask, gameID, playerID, map[string]interface{}{
		"meta": meta.View(),
	}))
	e.record(g, meta.ID.String())
	e.checkGameOver(s)
	notifications := s.drain()
	s.mu.Unlock()

	e.emit(notifications)
	return meta, nil
}

// EndTurn ends playerID's turn and begins the opponent's, including the
// turn-start draw.
func (e *Engine) EndTurn(gameID, playerID string) error {
	s, err := e.session(gameID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	g := s.game
	if _, err := activePlayer(g, playerID); err != nil {
		s.mu.Unlock()
		return err
	}
	g.EndTurn()
	e.beginTurn(s)
	notifications := s.drain()
	s.mu.Unlock()

	e.logger.Debug("turn ended",
		zap.String("game_id", gameID),
		zap.String("player_id", playerID),
	)
	e.emit(notifications)
	return nil
}

// Concede ends the game in favour of playerID's opponent.
func (e *Engine) Concede(gameID, playerID string) error {
	s, err := e.session(gameID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	g := s.game
	p, err := g.PlayerByID(playerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if g.IsComplete() {
		s.mu.Unlock()
		return fmt.Errorf("game %s: %w", gameID, ErrGameOver)
	}
	g.Concede(p)
	e.record(g, "concede")
	e.checkGameOver(s)
	notifications := s.drain()
	s.mu.Unlock()

	e.logger.Info("player conceded",
		zap.String("game_id", gameID),
		zap.String("player_id", playerID),
	)
	e.emit(notifications)
	return nil
}

// GameView returns gameID as seen by viewerID.
func (e *Engine) GameView(gameID, viewerID string) (game.GameView, error) {
	s, err := e.session(gameID)
	if err != nil {
		return game.GameView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.View(viewerID), nil
}

// Checksum returns the state checksum of gameID.
func (e *Engine) Checksum(gameID string) (string, error) {
	s, err := e.session(gameID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Checksum(), nil
}

// WithGame runs fn with gameID locked. fn must not keep g.
func (e *Engine) WithGame(gameID string, fn func(g *game.Game) error) error {
	s, err := e.session(gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// EndGame removes gameID from the engine. A replay still being recorded is
// saved first.
func (e *Engine) EndGame(gameID string) error {
	e.mu.Lock()
	_, ok := e.games[gameID]
	delete(e.games, gameID)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	if e.recorder != nil && e.recorder.IsRecording(gameID) {
		if err := e.recorder.Save(gameID); err != nil {
			return err
		}
	}

	e.logger.Info("engine ended game", zap.String("game_id", gameID))
	return nil
}

// Replay returns the replay of gameID, in memory while the game runs and
// from disk once it was saved.
func (e *Engine) Replay(gameID string) (*game.Replay, error) {
	if e.recorder == nil {
		return nil, fmt.Errorf("replay recording is disabled")
	}
	if replay, ok := e.recorder.Replay(gameID); ok {
		return replay, nil
	}
	return e.recorder.Load(gameID)
}

// Games returns the ids of running games in sorted order.
func (e *Engine) Games() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.games))
	for id := range e.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

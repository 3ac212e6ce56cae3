package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/game/effects"
	"github.com/hspp/hspp-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Rule defaults used when Options leaves them unset.
const (
	DefaultHandCapacity  = 10
	DefaultFieldCapacity = 7
)

// State represents the lifecycle of a game.
type State int

const (
	StateInProgress State = iota
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "IN_PROGRESS"
	case StateComplete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("STATE_%d", int(s))
	}
}

// PlayerOptions configures one seat.
type PlayerOptions struct {
	ID       string
	Nickname string
	Class    cards.CardClass
	Policy   Policy
}

// Options configures a new game.
type Options struct {
	ID       string
	Player1  PlayerOptions
	Player2  PlayerOptions
	Registry cards.Registry
	Logger   *zap.Logger

	HandCapacity  int
	FieldCapacity int
	// HeroHealth overrides the hero card's health when positive.
	HeroHealth int
}

// Game owns both players, every entity created during the game and the
// index of minions waiting for the cleanup pass. A game is a single mutation
// domain: callers serialize access to it.
type Game struct {
	id       string
	logger   *zap.Logger
	registry cards.Registry

	players [2]*Player

	entities    map[EntityID]*Entity
	nextID      EntityID
	nextOrder   int
	deadMinions map[int]EntityID

	turns  *rules.TurnManager
	state  State
	winner string

	events   *rules.EventBus
	watchers *rules.WatcherRegistry
	effects  *effects.System

	handCapacity  int
	fieldCapacity int
	startedAt     time.Time
}

// New creates a game with both heroes in place and empty zones.
func New(opts Options) *Game {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HandCapacity <= 0 {
		opts.HandCapacity = DefaultHandCapacity
	}
	if opts.FieldCapacity <= 0 {
		opts.FieldCapacity = DefaultFieldCapacity
	}
	if opts.Player1.ID == "" {
		opts.Player1.ID = "player1"
	}
	if opts.Player2.ID == "" {
		opts.Player2.ID = "player2"
	}

	g := &Game{
		id:            opts.ID,
		logger:        opts.Logger,
		registry:      opts.Registry,
		entities:      make(map[EntityID]*Entity),
		nextID:        1,
		nextOrder:     1,
		deadMinions:   make(map[int]EntityID),
		state:         StateInProgress,
		events:        rules.NewEventBus(),
		watchers:      rules.NewWatcherRegistry(),
		effects:       effects.NewSystem(),
		handCapacity:  opts.HandCapacity,
		fieldCapacity: opts.FieldCapacity,
		startedAt:     time.Now(),
	}
	g.events.Subscribe(g.watchers.NotifyWatchers)

	for seat, po := range []PlayerOptions{opts.Player1, opts.Player2} {
		if po.Nickname == "" {
			po.Nickname = po.ID
		}
		p := newPlayer(g, seat, po)
		p.hero = g.CreateEntity(p, cards.HeroCard(opts.Registry, po.Class))
		if opts.HeroHealth > 0 {
			p.hero.setBaseTag(GameTagHealth, opts.HeroHealth)
		}
		g.players[seat] = p
	}
	g.turns = rules.NewTurnManager(g.players[0].id)

	g.logger.Debug("game created",
		zap.String("game_id", g.id),
		zap.String("player1", g.players[0].id),
		zap.String("player2", g.players[1].id),
	)
	return g
}

// ID returns the game id.
func (g *Game) ID() string { return g.id }

// Logger returns the game's logger.
func (g *Game) Logger() *zap.Logger { return g.logger }

// Registry returns the card registry the game was created with (may be nil).
func (g *Game) Registry() cards.Registry { return g.registry }

func (g *Game) Player1() *Player { return g.players[0] }
func (g *Game) Player2() *Player { return g.players[1] }

// Players returns both players in seat order.
func (g *Game) Players() []*Player {
	return []*Player{g.players[0], g.players[1]}
}

// PlayerByID looks up a player.
func (g *Game) PlayerByID(id string) (*Player, error) {
	for _, p := range g.players {
		if p.id == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in game %s", ErrPlayerNotFound, id, g.id)
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	if g.turns.ActivePlayer() == g.players[1].id {
		return g.players[1]
	}
	return g.players[0]
}

// Turn returns the turn number (1-based).
func (g *Game) Turn() int { return g.turns.TurnNumber() }

// Phase returns the current turn phase.
func (g *Game) Phase() rules.Phase { return g.turns.CurrentPhase() }

// Step returns the current turn step.
func (g *Game) Step() rules.Step { return g.turns.CurrentStep() }

// State returns the lifecycle state.
func (g *Game) State() State { return g.state }

// IsComplete reports whether the game has ended.
func (g *Game) IsComplete() bool { return g.state == StateComplete }

// Winner returns the winning player id, "" for a draw or a running game.
func (g *Game) Winner() string { return g.winner }

// StartedAt returns the creation time.
func (g *Game) StartedAt() time.Time { return g.startedAt }

// Events returns the game's event bus.
func (g *Game) Events() *rules.EventBus { return g.events }

// Watchers returns the watcher registry fed by the event bus.
func (g *Game) Watchers() *rules.WatcherRegistry { return g.watchers }

// Effects returns the on-going effect system.
func (g *Game) Effects() *effects.System { return g.effects }

func (g *Game) HandCapacity() int  { return g.handCapacity }
func (g *Game) FieldCapacity() int { return g.fieldCapacity }

func (g *Game) publish(evt rules.Event) {
	g.events.Publish(evt)
}

// Publish delivers evt to the game's listeners and watchers.
func (g *Game) Publish(evt rules.Event) {
	g.publish(evt)
}

// CreateEntity allocates a new entity for card owned by owner. The entity is
// not placed in any zone.
func (g *Game) CreateEntity(owner *Player, card *cards.Card) *Entity {
	e := newEntity(g.nextID, g.nextOrder, owner, card)
	g.nextID++
	g.nextOrder++
	g.entities[e.id] = e
	return e
}

// Entity resolves a handle.
func (g *Game) Entity(id EntityID) (*Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// Entities returns every entity ordered by handle.
func (g *Game) Entities() []*Entity {
	ids := make([]int, 0, len(g.entities))
	for id := range g.entities {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	out := make([]*Entity, len(ids))
	for i, id := range ids {
		out[i] = g.entities[EntityID(id)]
	}
	return out
}

func (g *Game) registerDeadMinion(m *Entity) {
	if existing, ok := g.deadMinions[m.orderOfPlay]; ok {
		if existing == m.id {
			return
		}
		invariantViolation("order of play %d already indexed for entity %d, got %d", m.orderOfPlay, existing, m.id)
	}
	g.deadMinions[m.orderOfPlay] = m.id
}

func (g *Game) forgetDeadMinion(m *Entity) {
	if existing, ok := g.deadMinions[m.orderOfPlay]; ok && existing == m.id {
		delete(g.deadMinions, m.orderOfPlay)
	}
}

func (g *Game) deadOrders() []int {
	orders := make([]int, 0, len(g.deadMinions))
	for order := range g.deadMinions {
		orders = append(orders, order)
	}
	sort.Ints(orders)
	return orders
}

// DeadMinions returns the minions awaiting cleanup in order of play.
func (g *Game) DeadMinions() []*Entity {
	orders := g.deadOrders()
	out := make([]*Entity, 0, len(orders))
	for _, order := range orders {
		if e, ok := g.entities[g.deadMinions[order]]; ok {
			out = append(out, e)
		}
	}
	return out
}

// IsDeadMinionIndexed reports whether m currently has a dead-minion entry.
func (g *Game) IsDeadMinionIndexed(m *Entity) bool {
	id, ok := g.deadMinions[m.orderOfPlay]
	return ok && id == m.id
}

// ProcessDestroyed is the cleanup pass. Destroyed minions leave the board in
// order of play: their board position is remembered, their attached effect
// removed and they move to the graveyard. Minions left without health, for
// instance by a removed aura, are destroyed before each round. Afterwards a
// hero without health ends the game.
func (g *Game) ProcessDestroyed() {
	for {
		g.destroyDeadOnField()
		if len(g.deadMinions) == 0 {
			break
		}
		orders := g.deadOrders()
		batch := make([]*Entity, len(orders))
		for i, order := range orders {
			id := g.deadMinions[order]
			m, exists := g.entities[id]
			if !exists {
				invariantViolation("dead minion entry %d (order %d) has no entity", id, order)
			}
			if !m.destroyed {
				invariantViolation("dead minion entry %d (order %d) is not destroyed", id, order)
			}
			// Positions are taken before anyone leaves the board.
			if m.zone != nil && m.zone.kind == ZoneField {
				m.SetTag(GameTagLastBoardPos, m.GetTag(GameTagZonePosition))
			}
			batch[i] = m
		}

		for i, m := range batch {
			order := orders[i]
			if id, ok := g.deadMinions[order]; !ok || id != m.id {
				// reset by a listener earlier in this batch
				continue
			}
			delete(g.deadMinions, order)

			if m.onGoingEffect != nil {
				m.onGoingEffect.Remove()
				m.onGoingEffect = nil
				m.publish(rules.EventEffectRemoved, 0)
			}
			m.owner.MoveTo(m, m.owner.graveyard)

			evt := rules.NewEvent(rules.EventMinionDied, m.owner.id, int(m.id))
			evt.CardID = m.CardID()
			g.publish(evt)

			g.logger.Debug("minion died",
				zap.String("game_id", g.id),
				zap.String("player_id", m.owner.id),
				zap.String("card_id", m.CardID()),
				zap.Int("order_of_play", order),
			)
		}
	}
	g.checkHeroes()
}

// destroyDeadOnField destroys field minions whose health dropped to zero
// without passing through a damage task.
func (g *Game) destroyDeadOnField() {
	for _, p := range g.players {
		for _, m := range p.field.All() {
			if m.IsMinion() && !m.destroyed && m.IsDead() {
				m.Destroy()
			}
		}
	}
}

func (g *Game) checkHeroes() {
	if g.state == StateComplete {
		return
	}
	dead1 := g.players[0].hero.IsDead()
	dead2 := g.players[1].hero.IsDead()
	switch {
	case dead1 && dead2:
		g.finish("")
	case dead1:
		g.finish(g.players[1].id)
	case dead2:
		g.finish(g.players[0].id)
	}
}

func (g *Game) finish(winner string) {
	g.state = StateComplete
	g.winner = winner

	evt := rules.NewEvent(rules.EventGameOver, winner, 0)
	evt.Description = "game over"
	g.publish(evt)

	g.logger.Info("game over",
		zap.String("game_id", g.id),
		zap.String("winner", winner),
		zap.Int("turn", g.Turn()),
	)
}

// Concede ends the game in favour of p's opponent.
func (g *Game) Concede(p *Player) {
	if g.state == StateComplete || p == nil {
		return
	}
	g.finish(p.Opponent().id)
}

// RunTask runs task for p, then the cleanup pass. Once the game is complete
// no task runs and the status is StatusGameOver.
func (g *Game) RunTask(p *Player, task Task) TaskMeta {
	if p == nil || p.game != g {
		invariantViolation("task %s run for a player outside game %s", task.TaskID(), g.id)
	}
	if g.state == StateComplete {
		return NewTaskMeta(task.TaskID(), StatusGameOver, p.id)
	}

	var meta TaskMeta
	if mt, ok := task.(MetaTask); ok {
		meta = mt.RunMeta(p)
	} else {
		meta = NewTaskMeta(task.TaskID(), task.Run(p), p.id)
	}

	evt := rules.NewEvent(rules.EventTaskRun, p.id, 0)
	evt.Metadata["task"] = meta.ID.String()
	evt.Metadata["status"] = meta.Status.String()
	g.publish(evt)

	g.logger.Debug("task run",
		zap.String("game_id", g.id),
		zap.String("player_id", p.id),
		zap.String("task", meta.ID.String()),
		zap.String("status", meta.Status.String()),
	)

	g.ProcessDestroyed()
	return meta
}

// Start publishes the start of the game and begins the first turn.
func (g *Game) Start() {
	g.publish(rules.NewEvent(rules.EventGameStarted, g.CurrentPlayer().id, 0))
	g.logger.Info("game started",
		zap.String("game_id", g.id),
		zap.String("first_player", g.CurrentPlayer().id),
	)
	g.BeginTurn()
}

// BeginTurn readies the current player's characters and moves to the draw
// step.
func (g *Game) BeginTurn() {
	p := g.CurrentPlayer()
	p.refreshCharacters()
	if g.turns.CurrentStep() == rules.StepReady {
		g.turns.AdvanceStep("")
	}
	g.publish(rules.NewEventWithAmount(rules.EventTurnBegan, p.id, 0, g.Turn()))
}

// EnterAction moves the turn to the action step, where tasks are played.
func (g *Game) EnterAction() {
	if g.turns.CurrentStep() != rules.StepAction {
		g.turns.AdvanceTo(rules.StepAction, "")
	}
}

// EndTurn hands the turn to the opponent and begins it.
func (g *Game) EndTurn() {
	if g.state == StateComplete {
		return
	}
	p := g.CurrentPlayer()
	g.publish(rules.NewEventWithAmount(rules.EventTurnEnded, p.id, 0, g.Turn()))
	g.watchers.ResetWatchers()
	g.turns.PassTurn(p.Opponent().id)
	g.BeginTurn()
}

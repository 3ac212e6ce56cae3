package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/config"
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/hspp/hspp-server-go/internal/game/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testRegistry(t *testing.T) *cards.MemoryRegistry {
	t.Helper()
	var all []*cards.Card
	for i := 0; i < 30; i++ {
		all = append(all, &cards.Card{ID: fmt.Sprintf("M%02d", i), Name: fmt.Sprintf("Minion %d", i), Type: cards.TypeMinion, Attack: 2, Health: 2, Cost: 1})
	}
	all = append(all, &cards.Card{ID: "W01", Name: "Blade", Type: cards.TypeWeapon, Attack: 3, Durability: 1, Cost: 1})
	reg, err := cards.NewMemoryRegistry(all...)
	require.NoError(t, err)
	return reg
}

func deck(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("M%02d", i)
	}
	return ids
}

type collector struct {
	mu   sync.Mutex
	seen []Notification
}

func (c *collector) handle(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, n)
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.seen))
	for _, n := range c.seen {
		out = append(out, n.Type)
	}
	return out
}

func newTestEngine(t *testing.T, rules config.GameConfig) (*Engine, *collector) {
	t.Helper()
	defaults := config.Default().Game
	if rules.FirstPlayerHand == 0 && rules.SecondPlayerHand == 0 {
		rules.FirstPlayerHand = defaults.FirstPlayerHand
		rules.SecondPlayerHand = defaults.SecondPlayerHand
	}
	e := New(Options{
		Logger:   zaptest.NewLogger(t),
		Registry: testRegistry(t),
		Game:     rules,
	})
	c := &collector{}
	e.SetNotificationHandler(c.handle)
	return e, c
}

func startGame(t *testing.T, e *Engine) string {
	t.Helper()
	id, err := e.StartGame(
		PlayerSetup{ID: "alice", Class: cards.ClassMage, Deck: deck(10)},
		PlayerSetup{ID: "bob", Class: cards.ClassWarrior, Deck: deck(10)},
	)
	require.NoError(t, err)
	return id
}

func TestStartGameDealsOpeningHands(t *testing.T) {
	e, c := newTestEngine(t, config.GameConfig{})
	id := startGame(t, e)

	view, err := e.GameView(id, "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", view.CurrentPlayer)
	assert.Equal(t, 1, view.Turn)
	require.Len(t, view.Players, 2)
	assert.Equal(t, 4, view.Players[0].HandCount, "three opening cards plus the turn draw")
	assert.Equal(t, 4, view.Players[1].HandCount)
	assert.Equal(t, 6, view.Players[0].DeckCount)
	assert.Equal(t, "M00", view.Players[0].Hand[0].CardID, "the first listed card is on top")
	assert.Equal(t, 30, view.Players[0].Hero.Health)

	assert.Equal(t, []string{NotifyTurn}, c.types())
	assert.Equal(t, []string{id}, e.Games())
}

func TestStartGameValidation(t *testing.T) {
	e, _ := newTestEngine(t, config.GameConfig{})

	_, err := e.StartGame(PlayerSetup{ID: "a", Deck: []string{"nope"}}, PlayerSetup{ID: "b"})
	assert.True(t, errors.Is(err, cards.ErrCardNotFound))

	_, err = e.StartGame(PlayerSetup{ID: "a"}, PlayerSetup{ID: "a"})
	assert.Error(t, err)

	_, err = e.StartGame(PlayerSetup{ID: ""}, PlayerSetup{ID: "b"})
	assert.Error(t, err)

	assert.Empty(t, e.Games())
}

func TestMaxConcurrentGames(t *testing.T) {
	e, _ := newTestEngine(t, config.GameConfig{MaxConcurrentGames: 1})
	startGame(t, e)

	_, err := e.StartGame(PlayerSetup{ID: "c"}, PlayerSetup{ID: "d"})
	assert.ErrorIs(t, err, ErrTooManyGames)
}

func TestRunTaskErrors(t *testing.T) {
	e, _ := newTestEngine(t, config.GameConfig{})
	id := startGame(t, e)

	_, err := e.RunTask("missing", "alice", tasks.NewDrawTask(1))
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = e.RunTask(id, "carol", tasks.NewDrawTask(1))
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)

	_, err = e.RunTask(id, "bob", tasks.NewDrawTask(1))
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = e.Submit(id, "alice", func(*game.Game, *game.Player) (game.Task, error) {
		return nil, errors.New("bad command")
	})
	assert.EqualError(t, err, "bad command")
}

func TestRunTaskNotifies(t *testing.T) {
	e, c := newTestEngine(t, config.GameConfig{})
	id := startGame(t, e)

	meta, err := e.Submit(id, "alice", func(g *game.Game, p *game.Player) (game.Task, error) {
		return tasks.NewPlayMinionTask(p.Hand().At(0), 0), nil
	})
	require.NoError(t, err)
	assert.Equal(t, game.PlayMinionSuccess, meta.Status)
	assert.Equal(t, []string{NotifyTurn, NotifyTask}, c.types())

	view, err := e.GameView(id, "alice")
	require.NoError(t, err)
	require.Len(t, view.Players[0].Field, 1)
	assert.Equal(t, "M00", view.Players[0].Field[0].CardID)
}

func TestEndTurn(t *testing.T) {
	e, c := newTestEngine(t, config.GameConfig{})
	id := startGame(t, e)

	assert.ErrorIs(t, e.EndTurn(id, "bob"), ErrNotYourTurn)
	require.NoError(t, e.EndTurn(id, "alice"))

	view, err := e.GameView(id, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", view.CurrentPlayer)
	assert.Equal(t, 2, view.Turn)
	assert.Equal(t, 5, view.Players[1].HandCount)
	assert.Equal(t, []string{NotifyTurn, NotifyTurn}, c.types())
}

func TestOverdrawNotification(t *testing.T) {
	e, c := newTestEngine(t, config.GameConfig{HandCapacity: 4})
	id := startGame(t, e)

	require.NoError(t, e.EndTurn(id, "alice"))

	assert.Equal(t, []string{NotifyTurn, NotifyOverdraw, NotifyTurn}, c.types())
	c.mu.Lock()
	overdraw := c.seen[1]
	c.mu.Unlock()
	assert.Equal(t, "bob", overdraw.PlayerID)
	meta := overdraw.Data["meta"].(game.TaskMetaView)
	assert.Equal(t, "OVERDRAW", meta.Task)
	assert.Equal(t, "DRAW_OVERDRAW", meta.Status)
	require.Len(t, meta.Objects, 1)
	assert.Equal(t, "M04", meta.Objects[0].CardID)
}

func TestFatigueDuringOpeningEndsGame(t *testing.T) {
	e, c := newTestEngine(t, config.GameConfig{HeroHealth: 5})
	id, err := e.StartGame(PlayerSetup{ID: "alice"}, PlayerSetup{ID: "bob", Deck: deck(10)})
	require.NoError(t, err)

	view, err := e.GameView(id, "")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETE", view.State)
	assert.Equal(t, "bob", view.Winner)
	assert.Contains(t, c.types(), NotifyGameOver)

	_, err = e.RunTask(id, "alice", tasks.NewDrawTask(1))
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestConcede(t *testing.T) {
	e, c := newTestEngine(t, config.GameConfig{})
	id := startGame(t, e)

	require.NoError(t, e.Concede(id, "bob"))
	view, err := e.GameView(id, "")
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Winner)
	assert.Equal(t, NotifyGameOver, c.types()[len(c.types())-1])

	assert.ErrorIs(t, e.Concede(id, "alice"), ErrGameOver)
	assert.ErrorIs(t, e.EndTurn(id, "alice"), ErrGameOver)
}

func TestEndGame(t *testing.T) {
	e, _ := newTestEngine(t, config.GameConfig{})
	id := startGame(t, e)

	require.NoError(t, e.EndGame(id))
	assert.Empty(t, e.Games())
	assert.ErrorIs(t, e.EndGame(id), ErrGameNotFound)

	_, err := e.GameView(id, "alice")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestReplayRecording(t *testing.T) {
	dir := t.TempDir()
	e := New(Options{
		Logger:   zaptest.NewLogger(t),
		Registry: testRegistry(t),
		Game:     config.GameConfig{FirstPlayerHand: 3, SecondPlayerHand: 4},
		Replay:   config.ReplayConfig{Enabled: true, Directory: dir},
	})
	id := startGame(t, e)
	require.NoError(t, e.EndTurn(id, "alice"))

	replay, err := e.Replay(id)
	require.NoError(t, err)
	assert.Equal(t, 3, replay.Size(), "start, turn 1, turn 2")

	require.NoError(t, e.Concede(id, "bob"))
	loaded, err := e.Replay(id)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Size())
	assert.Equal(t, -1, loaded.Verify())
	assert.Equal(t, "concede", loaded.At(3).Action)
}

func TestReplayDisabled(t *testing.T) {
	e, _ := newTestEngine(t, config.GameConfig{})
	_, err := e.Replay("any")
	assert.Error(t, err)
}

func TestChecksumAndWithGame(t *testing.T) {
	e, _ := newTestEngine(t, config.GameConfig{})
	id := startGame(t, e)

	sum, err := e.Checksum(id)
	require.NoError(t, err)

	err = e.WithGame(id, func(g *game.Game) error {
		assert.Equal(t, sum, g.Checksum())
		return nil
	})
	require.NoError(t, err)

	_, err = e.Checksum("missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestConcurrentGames(t *testing.T) {
	e, _ := newTestEngine(t, config.GameConfig{})
	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := e.StartGame(
				PlayerSetup{ID: "alice", Deck: deck(10)},
				PlayerSetup{ID: "bob", Deck: deck(10)},
			)
			assert.NoError(t, err)
			ids[i] = id
			assert.NoError(t, e.EndTurn(id, "alice"))
		}(i)
	}
	wg.Wait()
	assert.Len(t, e.Games(), 8)
}

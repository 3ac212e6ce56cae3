package tasks

import (
	"fmt"
	"testing"

	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/game"
	"go.uber.org/zap/zaptest"
)

// recordingPolicy keeps every overdraw notification it receives.
type recordingPolicy struct {
	overdraws []game.TaskMeta
}

func (r *recordingPolicy) NotifyOverDraw(meta game.TaskMeta) {
	r.overdraws = append(r.overdraws, meta)
}

func newTestGame(t *testing.T) (*game.Game, *recordingPolicy) {
	t.Helper()
	policy := &recordingPolicy{}
	g := game.New(game.Options{
		ID:      "tasks-test",
		Player1: game.PlayerOptions{ID: "p1", Class: cards.ClassRogue, Policy: policy},
		Player2: game.PlayerOptions{ID: "p2", Class: cards.ClassDruid},
		Logger:  zaptest.NewLogger(t),
	})
	return g, policy
}

func minionCard(id string, attack, health int, mechanics ...string) *cards.Card {
	return &cards.Card{ID: id, Name: id, Type: cards.TypeMinion, Attack: attack, Health: health, Cost: 1, Mechanics: mechanics}
}

func weaponCard(id string, attack, durability int) *cards.Card {
	return &cards.Card{ID: id, Name: id, Type: cards.TypeWeapon, Attack: attack, Durability: durability, Cost: 1}
}

func spellCard(id string) *cards.Card {
	return &cards.Card{ID: id, Name: id, Type: cards.TypeSpell}
}

// deckOf adds one spell card per id to p's deck in insertion order.
func deckOf(p *game.Player, ids ...string) []*game.Entity {
	out := make([]*game.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.AddToDeck(spellCard(id)))
	}
	return out
}

func fillHand(p *game.Player, n int) {
	for i := 0; i < n; i++ {
		p.AddToHand(spellCard(fmt.Sprintf("filler%d", i)))
	}
}

// summon puts a ready minion straight onto p's field.
func summon(t *testing.T, p *game.Player, card *cards.Card) *game.Entity {
	t.Helper()
	e := p.Game().CreateEntity(p, card)
	if !p.Field().Add(e) {
		t.Fatalf("field full while summoning %s", card.ID)
	}
	return e
}

func cardIDs(entities []*game.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.CardID())
	}
	return out
}

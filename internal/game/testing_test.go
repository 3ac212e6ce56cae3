package game

import (
	"fmt"
	"testing"

	"github.com/hspp/hspp-server-go/internal/cards"
	"go.uber.org/zap/zaptest"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	return New(Options{
		ID:      "test-game",
		Player1: PlayerOptions{ID: "p1", Class: cards.ClassRogue},
		Player2: PlayerOptions{ID: "p2", Class: cards.ClassDruid},
		Logger:  zaptest.NewLogger(t),
	})
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

// summon creates a minion directly on p's field.
func summon(t *testing.T, p *Player, card *cards.Card) *Entity {
	t.Helper()
	e := p.Game().CreateEntity(p, card)
	if !p.Field().Add(e) {
		t.Fatalf("field full while summoning %s", card.ID)
	}
	return e
}

func fillHand(p *Player, n int) {
	for i := 0; i < n; i++ {
		p.AddToHand(spellCard(fmt.Sprintf("filler%d", i)))
	}
}

type stubTask struct {
	id  TaskID
	run func(p *Player) TaskStatus
}

func (s stubTask) TaskID() TaskID { return s.id }

func (s stubTask) Run(p *Player) TaskStatus { return s.run(p) }

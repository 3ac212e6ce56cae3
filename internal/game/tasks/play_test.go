package tasks

import (
	"testing"

	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayMinionTask(t *testing.T) {
	g, _ := newTestGame(t)
	p := g.Player1()
	left := p.AddToHand(minionCard("left", 1, 1))
	right := p.AddToHand(minionCard("right", 1, 1))
	middle := p.AddToHand(minionCard("middle", 1, 1))

	assert.Equal(t, game.TaskPlayMinion, NewPlayMinionTask(left, 0).TaskID())
	assert.Equal(t, game.PlayMinionSuccess, NewPlayMinionTask(left, 0).Run(p))
	assert.Equal(t, game.PlayMinionSuccess, NewPlayMinionTask(right, 1).Run(p))

	meta := NewPlayMinionTask(middle, 1).RunMeta(p)
	assert.Equal(t, game.PlayMinionSuccess, meta.Status)
	require.Len(t, meta.Objects, 1)
	assert.Same(t, middle, meta.Objects[0])

	assert.Equal(t, []string{"left", "middle", "right"}, cardIDs(p.Field().All()))
	assert.Equal(t, 2, middle.GetTag(game.GameTagZonePosition))
	assert.True(t, p.Hand().IsEmpty())
	assert.True(t, middle.IsExhausted(), "minions enter play exhausted")
}

func TestPlayMinionTaskCharge(t *testing.T) {
	g, _ := newTestGame(t)
	p := g.Player1()
	charger := p.AddToHand(minionCard("CS2_124", 3, 1, cards.MechanicCharge))

	require.Equal(t, game.PlayMinionSuccess, NewPlayMinionTask(charger, 0).Run(p))
	assert.False(t, charger.IsExhausted())
}

func TestPlayMinionTaskFailures(t *testing.T) {
	g, _ := newTestGame(t)
	p := g.Player1()
	inDeck := p.AddToDeck(minionCard("deck", 1, 1))
	spell := p.AddToHand(spellCard("spell"))
	minion := p.AddToHand(minionCard("m", 1, 1))
	enemy := g.Player2().AddToHand(minionCard("enemy", 1, 1))

	tests := []struct {
		name     string
		source   *game.Entity
		position int
		want     game.TaskStatus
	}{
		{"nil source", nil, 0, game.PlayCardNotInHand},
		{"card in deck", inDeck, 0, game.PlayCardNotInHand},
		{"opponent's card", enemy, 0, game.PlayCardNotInHand},
		{"not a minion", spell, 0, game.PlayInvalidCard},
		{"negative position", minion, -1, game.PlayInvalidPosition},
		{"past the end", minion, 1, game.PlayInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPlayMinionTask(tt.source, tt.position).Run(p))
		})
	}
	assert.Equal(t, p.Hand(), minion.Zone())
	assert.True(t, p.Field().IsEmpty())
}

func TestPlayMinionTaskFieldFull(t *testing.T) {
	g, _ := newTestGame(t)
	p := g.Player1()
	for i := 0; i < g.FieldCapacity(); i++ {
		summon(t, p, minionCard("board", 1, 1))
	}
	m := p.AddToHand(minionCard("m", 1, 1))

	assert.Equal(t, game.PlayFieldFull, NewPlayMinionTask(m, 0).Run(p))
	assert.Equal(t, p.Hand(), m.Zone())
}

func TestPlayWeaponTask(t *testing.T) {
	g, _ := newTestGame(t)
	p := g.Player1()
	first := p.AddToHand(weaponCard("CS2_080", 1, 2))
	second := p.AddToHand(weaponCard("AT_034", 1, 3))

	task := NewPlayWeaponTask(first)
	assert.Equal(t, game.TaskPlayWeapon, task.TaskID())
	assert.Equal(t, game.PlayWeaponSuccess, task.Run(p))
	assert.Same(t, first, p.Weapon())
	assert.Nil(t, first.Zone())
	assert.Equal(t, 1, p.Hero().Attack())

	assert.Equal(t, game.PlayWeaponSuccess, NewPlayWeaponTask(second).Run(p))
	assert.Same(t, second, p.Weapon())
	assert.True(t, first.IsDestroyed())
	assert.Equal(t, p.Graveyard(), first.Zone())
	assert.True(t, p.Hand().IsEmpty())
}

func TestPlayWeaponTaskFailures(t *testing.T) {
	g, _ := newTestGame(t)
	p := g.Player1()
	minion := p.AddToHand(minionCard("m", 1, 1))
	inDeck := p.AddToDeck(weaponCard("w", 1, 1))

	assert.Equal(t, game.PlayInvalidCard, NewPlayWeaponTask(minion).Run(p))
	assert.Equal(t, game.PlayCardNotInHand, NewPlayWeaponTask(inDeck).Run(p))
	assert.Equal(t, game.PlayCardNotInHand, NewPlayWeaponTask(nil).Run(p))
	assert.Nil(t, p.Weapon())
}

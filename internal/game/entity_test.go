package game

import (
	"errors"
	"testing"

	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/game/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsAndCapabilities(t *testing.T) {
	g := newTestGame(t)
	p := g.Player1()

	minion := g.CreateEntity(p, minionCard("m", 1, 1))
	weapon := g.CreateEntity(p, weaponCard("w", 3, 2))
	spell := g.CreateEntity(p, spellCard("s"))

	assert.Equal(t, KindMinion, minion.Kind())
	assert.True(t, minion.Has(CapHealth|CapBoardPosition|CapAttachedEffect))
	assert.False(t, minion.Has(CapWeaponSlot))

	assert.Equal(t, KindHero, p.Hero().Kind())
	assert.True(t, p.Hero().Has(CapWeaponSlot))
	assert.False(t, p.Hero().Has(CapAttachedEffect))

	assert.Equal(t, KindWeapon, weapon.Kind())
	assert.True(t, weapon.Has(CapDurability))
	assert.Equal(t, 2, weapon.Durability())

	assert.Equal(t, KindCard, spell.Kind())
	assert.False(t, spell.Has(CapHealth))
	assert.Equal(t, 0, spell.TakeDamage(5))
}

func TestOrderOfPlayIsMonotonic(t *testing.T) {
	g := newTestGame(t)
	last := 0
	for i := 0; i < 5; i++ {
		e := g.CreateEntity(g.Player2(), minionCard("m", 1, 1))
		assert.Greater(t, e.OrderOfPlay(), last)
		last = e.OrderOfPlay()
	}
}

func TestDestroyThenResetRoundTrip(t *testing.T) {
	g := newTestGame(t)
	m := summon(t, g.Player1(), minionCard("m", 2, 3))

	m.Destroy()
	require.True(t, m.IsDestroyed())
	require.True(t, g.IsDeadMinionIndexed(m))
	require.Len(t, g.DeadMinions(), 1)

	m.Reset()
	assert.False(t, m.IsDestroyed())
	assert.False(t, g.IsDeadMinionIndexed(m))
	assert.Empty(t, g.DeadMinions())
	assert.Equal(t, 3, m.Health())
	assert.True(t, g.Player1().Field().Contains(m))

	g.ProcessDestroyed()
	assert.True(t, g.Player1().Field().Contains(m), "reset minion must survive cleanup")
}

func TestResetOnFreshEntityIsNoop(t *testing.T) {
	g := newTestGame(t)
	m := summon(t, g.Player1(), minionCard("m", 2, 3))

	assert.NotPanics(t, m.Reset)
	assert.False(t, m.IsDestroyed())
	assert.Empty(t, g.DeadMinions())
}

func TestDestroyTwiceIsNoop(t *testing.T) {
	g := newTestGame(t)
	m := summon(t, g.Player1(), minionCard("m", 2, 3))

	m.Destroy()
	assert.NotPanics(t, m.Destroy)
	assert.Len(t, g.DeadMinions(), 1)
}

func TestDeadMinionCollisionPanics(t *testing.T) {
	g := newTestGame(t)
	a := summon(t, g.Player1(), minionCard("a", 1, 1))
	b := summon(t, g.Player1(), minionCard("b", 1, 1))
	b.orderOfPlay = a.orderOfPlay

	a.Destroy()
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrInvariant))
	}()
	b.Destroy()
}

func TestResetRestoresTagsButKeepsPlacement(t *testing.T) {
	g := newTestGame(t)
	p := g.Player1()
	summon(t, p, minionCard("first", 1, 1))
	m := summon(t, p, minionCard("m", 2, 3))

	m.TakeDamage(2)
	m.SetTag(GameTagAtk, 10)
	m.SetTag(GameTagExhausted, 1)
	require.Equal(t, 2, m.GetTag(GameTagZonePosition))

	m.Reset()
	assert.Equal(t, 2, m.Attack())
	assert.Equal(t, 3, m.Health())
	assert.False(t, m.IsExhausted())
	assert.Equal(t, 2, m.GetTag(GameTagZonePosition))
}

func TestResetRemovesAttachedEffect(t *testing.T) {
	g := newTestGame(t)
	p := g.Player1()
	leader := summon(t, p, minionCard("leader", 1, 1))
	follower := summon(t, p, minionCard("follower", 2, 2))

	require.True(t, leader.AttachEffect(effects.NewStatAura(int(leader.ID()), p.ID(), 1, 0, false)))
	assert.Equal(t, 3, follower.Attack())
	assert.Equal(t, 1, leader.Attack())

	attached := leader.OnGoingEffect()
	leader.Reset()
	assert.Nil(t, leader.OnGoingEffect())
	assert.False(t, attached.Active())
	assert.Equal(t, 0, g.Effects().Len())
	assert.Equal(t, 2, follower.Attack())
}

func TestAttachEffectRejectsNonMinions(t *testing.T) {
	g := newTestGame(t)
	p := g.Player1()
	assert.False(t, p.Hero().AttachEffect(effects.NewStatAura(1, p.ID(), 1, 0, false)))
	assert.Equal(t, 0, g.Effects().Len())
}

func TestHeroArmorAbsorbsDamage(t *testing.T) {
	g := newTestGame(t)
	hero := g.Player1().Hero()
	hero.GainArmor(3)

	assert.Equal(t, 2, hero.TakeDamage(5))
	assert.Equal(t, 0, hero.Armor())
	assert.Equal(t, 28, hero.Health())

	assert.Equal(t, 2, hero.Heal(10))
	assert.Equal(t, 30, hero.Health())
}

func TestHeroHealthOverride(t *testing.T) {
	g := New(Options{HeroHealth: 20, Player1: PlayerOptions{Class: cards.ClassWarrior}})
	assert.Equal(t, 20, g.Player1().Hero().Health())
	assert.Equal(t, "HERO_01", g.Player1().Hero().CardID())
	assert.Equal(t, "player2", g.Player2().ID())
}

func TestMechanicsBecomeTags(t *testing.T) {
	g := newTestGame(t)
	m := g.CreateEntity(g.Player1(), minionCard("m", 1, 1, cards.MechanicTaunt, cards.MechanicCharge))
	assert.True(t, m.HasTaunt())
	assert.True(t, m.HasCharge())
}

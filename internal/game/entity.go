package game

import (
	"fmt"

	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/game/effects"
	"github.com/hspp/hspp-server-go/internal/game/rules"
)

// EntityID is the stable handle of an entity inside its game's arena.
type EntityID int

// Kind tags what an entity is.
type Kind int

const (
	KindCard Kind = iota
	KindMinion
	KindHero
	KindWeapon
)

var kindNames = map[Kind]string{
	KindCard:   "CARD",
	KindMinion: "MINION",
	KindHero:   "HERO",
	KindWeapon: "WEAPON",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// KindOf returns the kind an entity created from card will have.
func KindOf(card *cards.Card) Kind {
	if card == nil {
		return KindCard
	}
	switch card.Type {
	case cards.TypeMinion:
		return KindMinion
	case cards.TypeHero:
		return KindHero
	case cards.TypeWeapon:
		return KindWeapon
	default:
		return KindCard
	}
}

// Capability is a behaviour an entity supports, derived from its kind.
type Capability uint8

const (
	CapHealth Capability = 1 << iota
	CapBoardPosition
	CapAttachedEffect
	CapWeaponSlot
	CapDurability
)

var kindCapabilities = map[Kind]Capability{
	KindCard:   0,
	KindMinion: CapHealth | CapBoardPosition | CapAttachedEffect,
	KindHero:   CapHealth | CapWeaponSlot,
	KindWeapon: CapDurability,
}

// Entity is a card instance inside a game: a minion, hero, weapon or a plain
// card sitting in a zone.
type Entity struct {
	id          EntityID
	kind        Kind
	orderOfPlay int
	owner       *Player
	card        *cards.Card

	tags     map[GameTag]int
	baseTags map[GameTag]int

	zone      *Zone
	destroyed bool

	// Minion only. The minion owns the attached effect.
	onGoingEffect *effects.Attached
	// Hero only. Destroying the weapon empties the slot.
	weapon *Entity
}

func newEntity(id EntityID, orderOfPlay int, owner *Player, card *cards.Card) *Entity {
	kind := KindOf(card)
	base := baseTagsFor(card, kind)
	return &Entity{
		id:          id,
		kind:        kind,
		orderOfPlay: orderOfPlay,
		owner:       owner,
		card:        card,
		tags:        cloneTags(base),
		baseTags:    base,
	}
}

func baseTagsFor(card *cards.Card, kind Kind) map[GameTag]int {
	tags := make(map[GameTag]int)
	if card == nil {
		return tags
	}
	tags[GameTagCost] = card.Cost
	switch kind {
	case KindMinion:
		tags[GameTagAtk] = card.Attack
		tags[GameTagHealth] = card.Health
		if card.HasMechanic(cards.MechanicTaunt) {
			tags[GameTagTaunt] = 1
		}
		if card.HasMechanic(cards.MechanicCharge) {
			tags[GameTagCharge] = 1
		}
	case KindHero:
		tags[GameTagAtk] = card.Attack
		tags[GameTagHealth] = card.Health
	case KindWeapon:
		tags[GameTagAtk] = card.Attack
		tags[GameTagDurability] = card.Durability
	}
	return tags
}

func cloneTags(src map[GameTag]int) map[GameTag]int {
	dst := make(map[GameTag]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// ID returns the arena handle.
func (e *Entity) ID() EntityID { return e.id }

// Kind returns the entity kind.
func (e *Entity) Kind() Kind { return e.kind }

// OrderOfPlay returns the creation sequence number, unique within the game.
func (e *Entity) OrderOfPlay() int { return e.orderOfPlay }

// Owner returns the controlling player.
func (e *Entity) Owner() *Player { return e.owner }

// Card returns the shared card definition.
func (e *Entity) Card() *cards.Card { return e.card }

// CardID returns the card definition id, or "" for an entity without a card.
func (e *Entity) CardID() string {
	if e.card == nil {
		return ""
	}
	return e.card.ID
}

// Zone returns the zone currently holding the entity, or nil.
func (e *Entity) Zone() *Zone { return e.zone }

// Has reports whether the entity's kind supports capability c.
func (e *Entity) Has(c Capability) bool {
	return kindCapabilities[e.kind]&c == c
}

func (e *Entity) IsMinion() bool { return e.kind == KindMinion }
func (e *Entity) IsHero() bool   { return e.kind == KindHero }
func (e *Entity) IsWeapon() bool { return e.kind == KindWeapon }

// GetTag returns the runtime value of tag (0 when unset).
func (e *Entity) GetTag(tag GameTag) int {
	return e.tags[tag]
}

// SetTag sets the runtime value of tag.
func (e *Entity) SetTag(tag GameTag, value int) {
	e.tags[tag] = value
}

// BaseTag returns the value tag is restored to by Reset.
func (e *Entity) BaseTag(tag GameTag) int {
	return e.baseTags[tag]
}

func (e *Entity) setBaseTag(tag GameTag, value int) {
	e.baseTags[tag] = value
	e.tags[tag] = value
}

// IsDestroyed reports whether Destroy has been called since the last Reset.
func (e *Entity) IsDestroyed() bool { return e.destroyed }

// Game returns the owning game, or nil for an ownerless entity.
func (e *Entity) Game() *Game {
	if e.owner == nil {
		return nil
	}
	return e.owner.game
}

// Reset restores the entity to its canonical state. Runtime tags go back to
// the card's base values (board placement is kept). A minion also drops its
// attached effect and, if destroyed, leaves the dead-minion index.
func (e *Entity) Reset() {
	placement := make(map[GameTag]int, len(placementTags))
	for _, tag := range placementTags {
		if v, ok := e.tags[tag]; ok {
			placement[tag] = v
		}
	}
	e.tags = cloneTags(e.baseTags)
	for tag, v := range placement {
		e.tags[tag] = v
	}

	if e.Has(CapAttachedEffect) && e.onGoingEffect != nil {
		e.onGoingEffect.Remove()
		e.onGoingEffect = nil
		e.publish(rules.EventEffectRemoved, 0)
	}

	if e.destroyed {
		if e.IsMinion() {
			if g := e.Game(); g != nil {
				g.forgetDeadMinion(e)
			}
		}
		e.destroyed = false
	}

	e.publish(rules.EventEntityReset, 0)
}

// Destroy marks the entity destroyed. A minion is registered in the game's
// dead-minion index; it stays in its zone until the game's cleanup pass.
func (e *Entity) Destroy() {
	if e.IsMinion() {
		g := e.Game()
		if g == nil {
			invariantViolation("minion %d destroyed outside of a game", e.id)
		}
		if e.destroyed && g.IsDeadMinionIndexed(e) {
			return
		}
		g.registerDeadMinion(e)
		e.destroyed = true
		e.publish(rules.EventMinionDestroy, 0)
		return
	}
	e.destroyed = true
}

// AttachEffect registers an on-going effect owned by this minion, replacing
// any effect it already had. It returns false for entities that cannot carry
// one.
func (e *Entity) AttachEffect(effect effects.OngoingEffect) bool {
	if !e.Has(CapAttachedEffect) || effect == nil {
		return false
	}
	g := e.Game()
	if g == nil {
		return false
	}
	if e.onGoingEffect != nil {
		e.onGoingEffect.Remove()
	}
	e.onGoingEffect = g.effects.Attach(effect)
	e.publish(rules.EventEffectAttached, 0)
	return true
}

// OnGoingEffect returns the attached effect, or nil.
func (e *Entity) OnGoingEffect() *effects.Attached {
	return e.onGoingEffect
}

func (e *Entity) stats() *effects.Snapshot {
	ownerID := ""
	if e.owner != nil {
		ownerID = e.owner.id
	}
	s := effects.NewSnapshot(int(e.id), ownerID, e.IsMinion(), e.tags[GameTagAtk], e.tags[GameTagHealth])
	if e.IsMinion() && e.zone != nil && e.zone.kind == ZoneField {
		if g := e.Game(); g != nil {
			g.effects.Apply(s)
		}
	}
	return s
}

// Attack returns the current attack including auras; a hero adds its
// weapon's attack.
func (e *Entity) Attack() int {
	atk := e.stats().Attack
	if e.IsHero() && e.weapon != nil {
		atk += e.weapon.GetTag(GameTagAtk)
	}
	if atk < 0 {
		return 0
	}
	return atk
}

// MaxHealth returns the health of an undamaged character including auras.
func (e *Entity) MaxHealth() int {
	if !e.Has(CapHealth) {
		return 0
	}
	return e.stats().Health
}

// Health returns the remaining health.
func (e *Entity) Health() int {
	if !e.Has(CapHealth) {
		return 0
	}
	return e.MaxHealth() - e.tags[GameTagDamage]
}

// Damage returns the damage taken so far.
func (e *Entity) Damage() int {
	return e.tags[GameTagDamage]
}

// Armor returns the hero's armor.
func (e *Entity) Armor() int {
	return e.tags[GameTagArmor]
}

// GainArmor adds armor to a hero.
func (e *Entity) GainArmor(amount int) {
	if e.IsHero() && amount > 0 {
		e.tags[GameTagArmor] += amount
	}
}

// TakeDamage applies amount damage and returns how much reached health.
// Hero armor absorbs damage first.
func (e *Entity) TakeDamage(amount int) int {
	if !e.Has(CapHealth) || amount <= 0 {
		return 0
	}
	if armor := e.tags[GameTagArmor]; armor > 0 {
		absorbed := min(armor, amount)
		e.tags[GameTagArmor] = armor - absorbed
		amount -= absorbed
		if absorbed > 0 {
			e.publish(rules.EventHeroArmorLost, absorbed)
		}
	}
	if amount == 0 {
		return 0
	}
	e.tags[GameTagDamage] += amount
	e.publish(rules.EventDamageDealt, amount)
	return amount
}

// Heal removes up to amount damage and returns how much was healed.
func (e *Entity) Heal(amount int) int {
	if !e.Has(CapHealth) || amount <= 0 {
		return 0
	}
	healed := min(e.tags[GameTagDamage], amount)
	e.tags[GameTagDamage] -= healed
	return healed
}

// IsDead reports whether a character has no health left.
func (e *Entity) IsDead() bool {
	return e.Has(CapHealth) && e.Health() <= 0
}

// Weapon returns the weapon in a hero's slot, or nil.
func (e *Entity) Weapon() *Entity {
	return e.weapon
}

// Durability returns a weapon's remaining durability.
func (e *Entity) Durability() int {
	return e.tags[GameTagDurability]
}

// IsExhausted reports whether the character has already used its attack or
// was just played.
func (e *Entity) IsExhausted() bool {
	return e.tags[GameTagExhausted] != 0
}

// HasTaunt reports whether the minion has Taunt.
func (e *Entity) HasTaunt() bool {
	return e.tags[GameTagTaunt] != 0
}

// HasCharge reports whether the minion has Charge.
func (e *Entity) HasCharge() bool {
	return e.tags[GameTagCharge] != 0
}

// LastBoardPos returns the field position the minion had when it last left
// the board.
func (e *Entity) LastBoardPos() int {
	return e.tags[GameTagLastBoardPos]
}

func (e *Entity) publish(eventType rules.EventType, amount int) {
	g := e.Game()
	if g == nil {
		return
	}
	evt := rules.NewEventWithAmount(eventType, e.owner.id, int(e.id), amount)
	evt.CardID = e.CardID()
	if e.zone != nil {
		evt.Zone = e.zone.kind.String()
	}
	g.publish(evt)
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s#%d(%s)", e.kind, e.id, e.CardID())
}

package game

import (
	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Player is one side of a game. It owns its zones and the entities in them.
type Player struct {
	id       string
	nickname string
	game     *Game
	seat     int

	hero      *Entity
	deck      *Zone
	hand      *Zone
	field     *Zone
	graveyard *Zone

	policy Policy

	numCardAfterExhaust int
}

func newPlayer(g *Game, seat int, opts PlayerOptions) *Player {
	p := &Player{
		id:       opts.ID,
		nickname: opts.Nickname,
		game:     g,
		seat:     seat,
		policy:   opts.Policy,
	}
	if p.policy == nil {
		p.policy = BasicPolicy{}
	}
	p.deck = newZone(ZoneDeck, p, 0)
	p.hand = newZone(ZoneHand, p, g.handCapacity)
	p.field = newZone(ZoneField, p, g.fieldCapacity)
	p.graveyard = newZone(ZoneGraveyard, p, 0)
	return p
}

// ID returns the player id.
func (p *Player) ID() string { return p.id }

// Nickname returns the display name.
func (p *Player) Nickname() string { return p.nickname }

// Game returns the owning game.
func (p *Player) Game() *Game { return p.game }

// Hero returns the player's hero entity.
func (p *Player) Hero() *Entity { return p.hero }

// Weapon returns the weapon equipped by the hero, or nil.
func (p *Player) Weapon() *Entity {
	if p.hero == nil {
		return nil
	}
	return p.hero.weapon
}

func (p *Player) Deck() *Zone      { return p.deck }
func (p *Player) Hand() *Zone      { return p.hand }
func (p *Player) Field() *Zone     { return p.field }
func (p *Player) Graveyard() *Zone { return p.graveyard }

// Zone returns the zone of the given type.
func (p *Player) Zone(kind ZoneType) *Zone {
	switch kind {
	case ZoneDeck:
		return p.deck
	case ZoneHand:
		return p.hand
	case ZoneField:
		return p.field
	case ZoneGraveyard:
		return p.graveyard
	default:
		return nil
	}
}

// Policy returns the bound notification policy.
func (p *Player) Policy() Policy { return p.policy }

// NumCardAfterExhaust returns how many draws hit an empty deck so far.
func (p *Player) NumCardAfterExhaust() int { return p.numCardAfterExhaust }

// Opponent returns the other player of the game.
func (p *Player) Opponent() *Player {
	return p.game.players[1-p.seat]
}

// TakeFatigue records one draw from an empty deck and deals the new fatigue
// value to the hero. It returns the damage dealt.
func (p *Player) TakeFatigue() int {
	p.numCardAfterExhaust++
	damage := p.numCardAfterExhaust
	p.hero.TakeDamage(damage)

	p.game.publish(rules.NewEventWithAmount(rules.EventFatigue, p.id, int(p.hero.id), damage))
	p.game.logger.Debug("fatigue",
		zap.String("game_id", p.game.id),
		zap.String("player_id", p.id),
		zap.Int("damage", damage),
	)
	return damage
}

// AddToDeck creates an entity for card on top of the deck.
func (p *Player) AddToDeck(card *cards.Card) *Entity {
	e := p.game.CreateEntity(p, card)
	p.deck.Add(e)
	return e
}

// AddToHand creates an entity for card in the hand. It returns nil when the
// hand is full.
func (p *Player) AddToHand(card *cards.Card) *Entity {
	if p.hand.IsFull() {
		return nil
	}
	e := p.game.CreateEntity(p, card)
	p.hand.Add(e)
	return e
}

// MoveTo takes e out of its current zone and appends it to target. It returns
// false, leaving e where it was, when target is full.
func (p *Player) MoveTo(e *Entity, target *Zone) bool {
	return p.MoveToPosition(e, target, -1)
}

// MoveToPosition is MoveTo with an explicit index; a negative pos appends.
func (p *Player) MoveToPosition(e *Entity, target *Zone, pos int) bool {
	if e == nil || target == nil {
		return false
	}
	if target.IsFull() {
		return false
	}
	from := e.zone
	if from != nil {
		if from == target {
			return true
		}
		from.Remove(e)
	}
	if pos < 0 {
		pos = target.Len()
	}
	if !target.Insert(e, pos) {
		if from != nil {
			from.Add(e)
		}
		return false
	}

	evt := rules.NewEvent(rules.EventZoneChange, p.id, int(e.id))
	evt.CardID = e.CardID()
	evt.Zone = target.kind.String()
	if from != nil {
		evt.Metadata["from"] = from.kind.String()
	}
	p.game.publish(evt)
	return true
}

// EquipWeapon puts weapon into the hero's slot. A weapon already equipped is
// destroyed first.
func (p *Player) EquipWeapon(weapon *Entity) {
	if weapon == nil || !weapon.IsWeapon() {
		return
	}
	p.DestroyWeapon()
	if weapon.zone != nil {
		weapon.zone.Remove(weapon)
	}
	p.hero.weapon = weapon

	evt := rules.NewEvent(rules.EventWeaponEquip, p.id, int(weapon.id))
	evt.CardID = weapon.CardID()
	p.game.publish(evt)
}

// DestroyWeapon empties the hero's weapon slot and moves the weapon to the
// graveyard. It returns the destroyed weapon, or nil when none was equipped.
func (p *Player) DestroyWeapon() *Entity {
	if p.hero == nil || p.hero.weapon == nil {
		return nil
	}
	weapon := p.hero.weapon
	p.hero.weapon = nil
	weapon.Destroy()
	p.graveyard.Add(weapon)

	evt := rules.NewEvent(rules.EventWeaponDestroy, p.id, int(weapon.id))
	evt.CardID = weapon.CardID()
	p.game.publish(evt)
	return weapon
}

// Characters returns the hero followed by the field minions.
func (p *Player) Characters() []*Entity {
	out := make([]*Entity, 0, p.field.Len()+1)
	out = append(out, p.hero)
	return append(out, p.field.All()...)
}

func (p *Player) refreshCharacters() {
	for _, c := range p.Characters() {
		c.SetTag(GameTagExhausted, 0)
		c.SetTag(GameTagNumAttacksThisTurn, 0)
	}
}

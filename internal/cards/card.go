package cards

import "strings"

// CardType identifies what kind of game object a card becomes when played.
type CardType string

const (
	TypeInvalid   CardType = ""
	TypeHero      CardType = "HERO"
	TypeMinion    CardType = "MINION"
	TypeSpell     CardType = "SPELL"
	TypeWeapon    CardType = "WEAPON"
	TypeHeroPower CardType = "HERO_POWER"
)

// ParseCardType converts a raw card type string, accepting any case.
func ParseCardType(s string) CardType {
	switch CardType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeHero:
		return TypeHero
	case TypeMinion:
		return TypeMinion
	case TypeSpell:
		return TypeSpell
	case TypeWeapon:
		return TypeWeapon
	case TypeHeroPower:
		return TypeHeroPower
	default:
		return TypeInvalid
	}
}

// CardClass is the hero class a card belongs to.
type CardClass string

const (
	ClassNeutral CardClass = "NEUTRAL"
	ClassDruid   CardClass = "DRUID"
	ClassHunter  CardClass = "HUNTER"
	ClassMage    CardClass = "MAGE"
	ClassPaladin CardClass = "PALADIN"
	ClassPriest  CardClass = "PRIEST"
	ClassRogue   CardClass = "ROGUE"
	ClassShaman  CardClass = "SHAMAN"
	ClassWarlock CardClass = "WARLOCK"
	ClassWarrior CardClass = "WARRIOR"
)

// ParseCardClass converts a raw class string. Unknown values map to ClassNeutral.
func ParseCardClass(s string) CardClass {
	c := CardClass(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := heroCards[c]; ok {
		return c
	}
	return ClassNeutral
}

// Mechanic keywords understood by the core.
const (
	MechanicTaunt  = "TAUNT"
	MechanicCharge = "CHARGE"
)

// Card is an immutable card definition shared by every entity created from it.
type Card struct {
	ID         string
	Name       string
	Type       CardType
	Class      CardClass
	Rarity     string
	Cost       int
	Attack     int
	Health     int
	Durability int
	Mechanics  []string
	Text       string
}

// HasMechanic reports whether the card carries the given keyword.
func (c *Card) HasMechanic(mechanic string) bool {
	if c == nil {
		return false
	}
	for _, m := range c.Mechanics {
		if strings.EqualFold(m, mechanic) {
			return true
		}
	}
	return false
}

var heroCards = map[CardClass]Card{
	ClassDruid:   {ID: "HERO_06", Name: "Malfurion Stormrage", Type: TypeHero, Class: ClassDruid, Health: 30},
	ClassHunter:  {ID: "HERO_05", Name: "Rexxar", Type: TypeHero, Class: ClassHunter, Health: 30},
	ClassMage:    {ID: "HERO_08", Name: "Jaina Proudmoore", Type: TypeHero, Class: ClassMage, Health: 30},
	ClassPaladin: {ID: "HERO_04", Name: "Uther Lightbringer", Type: TypeHero, Class: ClassPaladin, Health: 30},
	ClassPriest:  {ID: "HERO_09", Name: "Anduin Wrynn", Type: TypeHero, Class: ClassPriest, Health: 30},
	ClassRogue:   {ID: "HERO_03", Name: "Valeera Sanguinar", Type: TypeHero, Class: ClassRogue, Health: 30},
	ClassShaman:  {ID: "HERO_02", Name: "Thrall", Type: TypeHero, Class: ClassShaman, Health: 30},
	ClassWarlock: {ID: "HERO_07", Name: "Gul'dan", Type: TypeHero, Class: ClassWarlock, Health: 30},
	ClassWarrior: {ID: "HERO_01", Name: "Garrosh Hellscream", Type: TypeHero, Class: ClassWarrior, Health: 30},
}

// HeroCard returns the basic hero card for a class. The registry is consulted
// first so a loaded card set can override the built-in heroes.
func HeroCard(reg Registry, class CardClass) *Card {
	base, ok := heroCards[class]
	if !ok {
		base = heroCards[ClassMage]
	}
	if reg != nil {
		if card, found := reg.FindCardByID(base.ID); found && card.Type == TypeHero {
			return card
		}
	}
	card := base
	return &card
}

package game

import "fmt"

// GameTag identifies a numeric runtime attribute of an entity.
type GameTag int

const (
	GameTagInvalid GameTag = iota
	GameTagHealth
	GameTagDamage
	GameTagAtk
	GameTagCost
	GameTagDurability
	GameTagArmor
	GameTagZonePosition
	GameTagLastBoardPos
	GameTagExhausted
	GameTagNumAttacksThisTurn
	GameTagTaunt
	GameTagCharge
)

var gameTagNames = map[GameTag]string{
	GameTagInvalid:            "INVALID",
	GameTagHealth:             "HEALTH",
	GameTagDamage:             "DAMAGE",
	GameTagAtk:                "ATK",
	GameTagCost:               "COST",
	GameTagDurability:         "DURABILITY",
	GameTagArmor:              "ARMOR",
	GameTagZonePosition:       "ZONE_POSITION",
	GameTagLastBoardPos:       "LAST_BOARD_POSITION",
	GameTagExhausted:          "EXHAUSTED",
	GameTagNumAttacksThisTurn: "NUM_ATTACKS_THIS_TURN",
	GameTagTaunt:              "TAUNT",
	GameTagCharge:             "CHARGE",
}

func (t GameTag) String() string {
	if name, ok := gameTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TAG_%d", int(t))
}

// placementTags survive Reset so a reset minion can be put back where it was.
var placementTags = []GameTag{GameTagZonePosition, GameTagLastBoardPos}

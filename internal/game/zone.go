package game

import "fmt"

// ZoneType identifies a player zone.
type ZoneType int

const (
	ZoneInvalid ZoneType = iota
	ZoneDeck
	ZoneHand
	ZoneField
	ZoneGraveyard
)

var zoneNames = map[ZoneType]string{
	ZoneInvalid:   "INVALID",
	ZoneDeck:      "DECK",
	ZoneHand:      "HAND",
	ZoneField:     "PLAY",
	ZoneGraveyard: "GRAVEYARD",
}

func (z ZoneType) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// Zone is an ordered sequence of entities owned by one player. The last
// element is the top of the zone. A capacity of 0 means unbounded.
type Zone struct {
	kind     ZoneType
	owner    *Player
	capacity int
	entities []*Entity
}

func newZone(kind ZoneType, owner *Player, capacity int) *Zone {
	return &Zone{kind: kind, owner: owner, capacity: capacity}
}

// Type returns the zone type.
func (z *Zone) Type() ZoneType { return z.kind }

// Owner returns the player owning the zone.
func (z *Zone) Owner() *Player { return z.owner }

// Capacity returns the maximum size, 0 when unbounded.
func (z *Zone) Capacity() int { return z.capacity }

// Len returns the number of entities in the zone.
func (z *Zone) Len() int { return len(z.entities) }

// IsEmpty reports whether the zone holds no entity.
func (z *Zone) IsEmpty() bool { return len(z.entities) == 0 }

// IsFull reports whether no further entity fits.
func (z *Zone) IsFull() bool {
	return z.capacity > 0 && len(z.entities) >= z.capacity
}

// FreeSpace returns how many entities still fit, or -1 when unbounded.
func (z *Zone) FreeSpace() int {
	if z.capacity <= 0 {
		return -1
	}
	return max(z.capacity-len(z.entities), 0)
}

// At returns the entity at index i, or nil when out of range.
func (z *Zone) At(i int) *Entity {
	if i < 0 || i >= len(z.entities) {
		return nil
	}
	return z.entities[i]
}

// All returns a copy of the zone contents in order.
func (z *Zone) All() []*Entity {
	out := make([]*Entity, len(z.entities))
	copy(out, z.entities)
	return out
}

// Top returns the last entity without removing it.
func (z *Zone) Top() *Entity {
	if len(z.entities) == 0 {
		return nil
	}
	return z.entities[len(z.entities)-1]
}

// PopTop removes and returns the last entity.
func (z *Zone) PopTop() *Entity {
	top := z.Top()
	if top == nil {
		return nil
	}
	z.entities = z.entities[:len(z.entities)-1]
	top.zone = nil
	top.tags[GameTagZonePosition] = 0
	return top
}

// Add appends e to the top of the zone. It returns false when the zone is
// full.
func (z *Zone) Add(e *Entity) bool {
	return z.Insert(e, len(z.entities))
}

// Insert places e at index pos (0..Len). It returns false when the zone is
// full or pos is out of range.
func (z *Zone) Insert(e *Entity, pos int) bool {
	if e == nil {
		return false
	}
	if e.zone != nil {
		invariantViolation("%s is already in %s", e, e.zone.kind)
	}
	if z.IsFull() || pos < 0 || pos > len(z.entities) {
		return false
	}
	z.entities = append(z.entities, nil)
	copy(z.entities[pos+1:], z.entities[pos:])
	z.entities[pos] = e
	e.zone = z
	z.reindex(pos)
	return true
}

// Remove takes e out of the zone. It returns false when e is not in it.
func (z *Zone) Remove(e *Entity) bool {
	i := z.IndexOf(e)
	if i < 0 {
		return false
	}
	z.entities = append(z.entities[:i], z.entities[i+1:]...)
	e.zone = nil
	e.tags[GameTagZonePosition] = 0
	z.reindex(i)
	return true
}

// IndexOf returns the index of e, or -1.
func (z *Zone) IndexOf(e *Entity) int {
	if e == nil || e.zone != z {
		return -1
	}
	for i, candidate := range z.entities {
		if candidate == e {
			return i
		}
	}
	return -1
}

// Contains reports whether e is in the zone.
func (z *Zone) Contains(e *Entity) bool {
	return z.IndexOf(e) >= 0
}

// FindTopByCardID returns the entity nearest the top with the given card id.
func (z *Zone) FindTopByCardID(cardID string) *Entity {
	for i := len(z.entities) - 1; i >= 0; i-- {
		if z.entities[i].CardID() == cardID {
			return z.entities[i]
		}
	}
	return nil
}

// reindex keeps GameTagZonePosition (1-based) in sync from index from onward.
func (z *Zone) reindex(from int) {
	for i := from; i < len(z.entities); i++ {
		z.entities[i].tags[GameTagZonePosition] = i + 1
	}
}

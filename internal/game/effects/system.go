package effects

import (
	"sync"

	"github.com/google/uuid"
)

// Snapshot is the mutable view of a character's stats while on-going effects
// are evaluated.
type Snapshot struct {
	EntityID   int
	PlayerID   string
	IsMinion   bool
	BaseAttack int
	BaseHealth int
	Attack     int
	Health     int
}

// NewSnapshot constructs a snapshot with derived stats set to the base values.
func NewSnapshot(entityID int, playerID string, isMinion bool, baseAttack, baseHealth int) *Snapshot {
	s := &Snapshot{
		EntityID:   entityID,
		PlayerID:   playerID,
		IsMinion:   isMinion,
		BaseAttack: baseAttack,
		BaseHealth: baseHealth,
	}
	s.Reset()
	return s
}

// Reset restores derived stats to their base values.
func (s *Snapshot) Reset() {
	s.Attack = s.BaseAttack
	s.Health = s.BaseHealth
}

// OngoingEffect modifies the stats of the characters it applies to for as
// long as it is registered.
type OngoingEffect interface {
	ID() string
	SourceID() int
	AppliesTo(*Snapshot) bool
	Apply(*Snapshot)
}

// System holds the active on-going effects of one game. Effects apply in
// registration order.
type System struct {
	mu      sync.RWMutex
	effects []OngoingEffect
}

// NewSystem constructs an empty effect system.
func NewSystem() *System {
	return &System{}
}

// Attach registers an effect and returns the handle its source owns.
func (s *System) Attach(effect OngoingEffect) *Attached {
	if effect == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = append(s.effects, effect)
	return &Attached{system: s, effect: effect}
}

func (s *System) remove(effect OngoingEffect) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.effects {
		if e == effect {
			s.effects = append(s.effects[:i], s.effects[i+1:]...)
			return true
		}
	}
	return false
}

// Apply evaluates every active effect against the snapshot.
func (s *System) Apply(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot.Reset()
	for _, effect := range s.effects {
		if effect.AppliesTo(snapshot) {
			effect.Apply(snapshot)
		}
	}
}

// Len returns the number of active effects.
func (s *System) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.effects)
}

// FromSource returns the active effects registered by a source entity.
func (s *System) FromSource(sourceID int) []OngoingEffect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []OngoingEffect
	for _, e := range s.effects {
		if e.SourceID() == sourceID {
			result = append(result, e)
		}
	}
	return result
}

// Attached is an effect registered on behalf of a source entity. The source
// owns it and releases it with Remove.
type Attached struct {
	system  *System
	effect  OngoingEffect
	removed bool
}

// Effect returns the underlying effect.
func (a *Attached) Effect() OngoingEffect {
	return a.effect
}

// Active reports whether the effect is still registered.
func (a *Attached) Active() bool {
	return a != nil && !a.removed
}

// Remove unregisters the effect. Calling it again is a no-op.
func (a *Attached) Remove() {
	if a == nil || a.removed {
		return
	}
	a.removed = true
	a.system.remove(a.effect)
}

func newEffectID() string {
	return uuid.NewString()
}

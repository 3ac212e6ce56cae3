package effects

import (
	"fmt"

	"github.com/google/uuid"
)

// StatAura grants attack/health to the other minions controlled by the
// source's owner, e.g. "Your other minions have +1 Attack".
type StatAura struct {
	id          string
	sourceID    int
	playerID    string
	attackDelta int
	healthDelta int
	includeSelf bool
}

// NewStatAura creates an aura whose id is derived from its parameters, so the
// same source registering the same aura twice yields the same id.
func NewStatAura(sourceID int, playerID string, attackDelta, healthDelta int, includeSelf bool) *StatAura {
	seed := fmt.Sprintf("%d|%s|%d|%d|%t", sourceID, playerID, attackDelta, healthDelta, includeSelf)
	return &StatAura{
		id:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		sourceID:    sourceID,
		playerID:    playerID,
		attackDelta: attackDelta,
		healthDelta: healthDelta,
		includeSelf: includeSelf,
	}
}

// ID returns the unique identifier.
func (a *StatAura) ID() string {
	return a.id
}

// SourceID returns the entity that owns the aura.
func (a *StatAura) SourceID() int {
	return a.sourceID
}

// AppliesTo determines whether the snapshot should receive the modification.
func (a *StatAura) AppliesTo(snapshot *Snapshot) bool {
	if snapshot == nil || !snapshot.IsMinion {
		return false
	}
	if snapshot.PlayerID != a.playerID {
		return false
	}
	return a.includeSelf || snapshot.EntityID != a.sourceID
}

// Apply mutates the snapshot.
func (a *StatAura) Apply(snapshot *Snapshot) {
	snapshot.Attack += a.attackDelta
	snapshot.Health += a.healthDelta
}

// FuncEffect adapts plain functions to OngoingEffect, for effects that do
// not warrant their own type.
type FuncEffect struct {
	id       string
	sourceID int
	applies  func(*Snapshot) bool
	apply    func(*Snapshot)
}

// NewFuncEffect creates an effect with a random id.
func NewFuncEffect(sourceID int, applies func(*Snapshot) bool, apply func(*Snapshot)) *FuncEffect {
	return &FuncEffect{id: newEffectID(), sourceID: sourceID, applies: applies, apply: apply}
}

func (f *FuncEffect) ID() string    { return f.id }
func (f *FuncEffect) SourceID() int { return f.sourceID }

func (f *FuncEffect) AppliesTo(s *Snapshot) bool {
	return f.applies != nil && f.applies(s)
}

func (f *FuncEffect) Apply(s *Snapshot) {
	if f.apply != nil {
		f.apply(s)
	}
}

package tasks

import (
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/hspp/hspp-server-go/internal/game/rules"
)

// PlayMinionTask moves a minion card from the hand onto the field.
type PlayMinionTask struct {
	source   *game.Entity
	position int
}

// NewPlayMinionTask creates a task playing source at field index position,
// where position ranges from 0 (leftmost) to the current field size.
func NewPlayMinionTask(source *game.Entity, position int) *PlayMinionTask {
	return &PlayMinionTask{source: source, position: position}
}

func (t *PlayMinionTask) TaskID() game.TaskID { return game.TaskPlayMinion }

func (t *PlayMinionTask) Run(p *game.Player) game.TaskStatus {
	return t.RunMeta(p).Status
}

func (t *PlayMinionTask) RunMeta(p *game.Player) game.TaskMeta {
	status := t.play(p)
	if status != game.PlayMinionSuccess {
		return game.NewTaskMeta(t.TaskID(), status, p.ID())
	}
	return game.NewTaskMeta(t.TaskID(), status, p.ID(), t.source)
}

func (t *PlayMinionTask) play(p *game.Player) game.TaskStatus {
	if t.source == nil || t.source.Zone() != p.Hand() {
		return game.PlayCardNotInHand
	}
	if !t.source.IsMinion() {
		return game.PlayInvalidCard
	}
	field := p.Field()
	if field.IsFull() {
		return game.PlayFieldFull
	}
	if t.position < 0 || t.position > field.Len() {
		return game.PlayInvalidPosition
	}
	if !p.MoveToPosition(t.source, field, t.position) {
		return game.PlayInvalidPosition
	}

	if !t.source.HasCharge() {
		t.source.SetTag(game.GameTagExhausted, 1)
	}
	publishEntity(p, rules.EventMinionPlay, t.source)
	return game.PlayMinionSuccess
}

// PlayWeaponTask equips a weapon card from the hand. A weapon already in the
// slot is destroyed first.
type PlayWeaponTask struct {
	source *game.Entity
}

// NewPlayWeaponTask creates a task equipping source.
func NewPlayWeaponTask(source *game.Entity) *PlayWeaponTask {
	return &PlayWeaponTask{source: source}
}

func (t *PlayWeaponTask) TaskID() game.TaskID { return game.TaskPlayWeapon }

func (t *PlayWeaponTask) Run(p *game.Player) game.TaskStatus {
	return t.RunMeta(p).Status
}

func (t *PlayWeaponTask) RunMeta(p *game.Player) game.TaskMeta {
	if t.source == nil || t.source.Zone() != p.Hand() {
		return game.NewTaskMeta(t.TaskID(), game.PlayCardNotInHand, p.ID())
	}
	if !t.source.IsWeapon() {
		return game.NewTaskMeta(t.TaskID(), game.PlayInvalidCard, p.ID())
	}

	NewDestroyWeaponTask().Run(p)
	p.EquipWeapon(t.source)
	return game.NewTaskMeta(t.TaskID(), game.PlayWeaponSuccess, p.ID(), t.source)
}

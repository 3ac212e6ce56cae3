package tasks

import (
	"github.com/hspp/hspp-server-go/internal/game"
)

// DestroyWeaponTask destroys the weapon in the hero's slot. Without a weapon
// it does nothing and still succeeds.
type DestroyWeaponTask struct{}

// NewDestroyWeaponTask creates a weapon destruction task.
func NewDestroyWeaponTask() *DestroyWeaponTask {
	return &DestroyWeaponTask{}
}

func (t *DestroyWeaponTask) TaskID() game.TaskID { return game.TaskDestroy }

func (t *DestroyWeaponTask) Run(p *game.Player) game.TaskStatus {
	return t.RunMeta(p).Status
}

// RunMeta reports the destroyed weapon, if there was one.
func (t *DestroyWeaponTask) RunMeta(p *game.Player) game.TaskMeta {
	if weapon := p.DestroyWeapon(); weapon != nil {
		return game.NewTaskMeta(t.TaskID(), game.DestroyWeaponSuccess, p.ID(), weapon)
	}
	return game.NewTaskMeta(t.TaskID(), game.DestroyWeaponSuccess, p.ID())
}

// DestroyMinionTask marks one of the player's minions destroyed. The minion
// leaves the board in the cleanup pass that follows the task.
type DestroyMinionTask struct {
	target *game.Entity
}

// NewDestroyMinionTask creates a task destroying target.
func NewDestroyMinionTask(target *game.Entity) *DestroyMinionTask {
	return &DestroyMinionTask{target: target}
}

func (t *DestroyMinionTask) TaskID() game.TaskID { return game.TaskDestroyMinion }

func (t *DestroyMinionTask) Run(p *game.Player) game.TaskStatus {
	if t.target == nil || !t.target.IsMinion() || t.target.Owner() != p {
		return game.DestroyMinionInvalid
	}
	t.target.Destroy()
	return game.DestroyMinionSuccess
}

package tasks

import (
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/hspp/hspp-server-go/internal/game/rules"
)

// CombatTask makes one of the player's characters attack an enemy character.
// This is the one task that mutates the opponent's entities.
type CombatTask struct {
	source *game.Entity
	target *game.Entity
}

// NewCombatTask creates an attack of source on target.
func NewCombatTask(source, target *game.Entity) *CombatTask {
	return &CombatTask{source: source, target: target}
}

func (t *CombatTask) TaskID() game.TaskID { return game.TaskCombat }

func (t *CombatTask) Run(p *game.Player) game.TaskStatus {
	return t.RunMeta(p).Status
}

// RunMeta reports the source and target after a successful attack.
func (t *CombatTask) RunMeta(p *game.Player) game.TaskMeta {
	if status := t.validate(p); status != game.CombatSuccess {
		return game.NewTaskMeta(t.TaskID(), status, p.ID())
	}

	source, target := t.source, t.target
	sourceAtk := source.Attack()
	// Heroes never strike back.
	targetAtk := 0
	if target.IsMinion() {
		targetAtk = target.Attack()
	}

	evt := rules.NewEventWithAmount(rules.EventAttack, p.ID(), int(source.ID()), sourceAtk)
	evt.CardID = source.CardID()
	evt.Metadata["target"] = target.String()
	p.Game().Publish(evt)

	target.TakeDamage(sourceAtk)
	source.TakeDamage(targetAtk)

	source.SetTag(game.GameTagNumAttacksThisTurn, source.GetTag(game.GameTagNumAttacksThisTurn)+1)
	source.SetTag(game.GameTagExhausted, 1)

	if source.IsHero() {
		if weapon := p.Weapon(); weapon != nil {
			weapon.SetTag(game.GameTagDurability, weapon.Durability()-1)
			if weapon.Durability() <= 0 {
				NewDestroyWeaponTask().Run(p)
			}
		}
	}

	for _, c := range []*game.Entity{source, target} {
		if c.IsMinion() && c.IsDead() {
			c.Destroy()
		}
	}
	return game.NewTaskMeta(t.TaskID(), game.CombatSuccess, p.ID(), source, target)
}

func (t *CombatTask) validate(p *game.Player) game.TaskStatus {
	if !isCharacterOf(t.source, p) {
		return game.CombatSourceNoAttack
	}
	if t.source.IsExhausted() {
		return game.CombatSourceExhausted
	}
	if t.source.Attack() <= 0 {
		return game.CombatSourceNoAttack
	}

	opponent := p.Opponent()
	if !isCharacterOf(t.target, opponent) {
		return game.CombatTargetInvalid
	}
	if !t.target.HasTaunt() {
		for _, m := range opponent.Field().All() {
			if m.HasTaunt() {
				return game.CombatTargetTaunt
			}
		}
	}
	return game.CombatSuccess
}

// isCharacterOf reports whether e is p's hero or one of p's field minions.
func isCharacterOf(e *game.Entity, p *game.Player) bool {
	if e == nil || e.Owner() != p {
		return false
	}
	if e.IsHero() {
		return e == p.Hero()
	}
	return e.IsMinion() && e.Zone() == p.Field() && !e.IsDestroyed()
}

// DamageTask deals a fixed amount of damage to one of the player's
// characters.
type DamageTask struct {
	target *game.Entity
	amount int
}

// NewDamageTask creates a task dealing amount damage to target.
func NewDamageTask(target *game.Entity, amount int) *DamageTask {
	return &DamageTask{target: target, amount: amount}
}

func (t *DamageTask) TaskID() game.TaskID { return game.TaskDamage }

func (t *DamageTask) Run(p *game.Player) game.TaskStatus {
	target := t.target
	if t.amount < 0 || !isCharacterOf(target, p) {
		return game.DamageInvalidTarget
	}

	target.TakeDamage(t.amount)
	if target.IsMinion() && target.IsDead() {
		target.Destroy()
	}
	return game.DamageSuccess
}

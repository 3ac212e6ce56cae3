package game

import (
	"encoding/json"
	"fmt"
)

// TaskID identifies the category of a task.
type TaskID int

const (
	TaskInvalid TaskID = iota
	TaskDraw
	TaskOverdraw
	TaskDestroy
	TaskDestroyMinion
	TaskPlayMinion
	TaskPlayWeapon
	TaskCombat
	TaskDamage
	TaskGameEnd
)

var taskIDNames = map[TaskID]string{
	TaskInvalid:       "INVALID",
	TaskDraw:          "DRAW",
	TaskOverdraw:      "OVERDRAW",
	TaskDestroy:       "DESTROY",
	TaskDestroyMinion: "DESTROY_MINION",
	TaskPlayMinion:    "PLAY_MINION",
	TaskPlayWeapon:    "PLAY_WEAPON",
	TaskCombat:        "COMBAT",
	TaskDamage:        "DAMAGE",
	TaskGameEnd:       "GAME_END",
}

func (id TaskID) String() string {
	if name, ok := taskIDNames[id]; ok {
		return name
	}
	return fmt.Sprintf("TASK_%d", int(id))
}

// TaskStatus is the outcome of running a task. Expected game conditions such
// as an empty deck or a full hand are statuses, never errors.
type TaskStatus int

const (
	StatusInvalid TaskStatus = iota

	DrawSuccess
	DrawExhaust
	DrawOverdraw
	DrawExhaustOverdraw
	DrawNotFound

	DestroyWeaponSuccess
	DestroyMinionSuccess
	DestroyMinionInvalid

	PlayMinionSuccess
	PlayFieldFull
	PlayInvalidPosition
	PlayCardNotInHand
	PlayInvalidCard
	PlayWeaponSuccess

	CombatSuccess
	CombatSourceExhausted
	CombatSourceNoAttack
	CombatTargetInvalid
	CombatTargetTaunt

	DamageSuccess
	DamageInvalidTarget

	StatusGameOver
)

var taskStatusNames = map[TaskStatus]string{
	StatusInvalid:         "INVALID",
	DrawSuccess:           "DRAW_SUCCESS",
	DrawExhaust:           "DRAW_EXHAUST",
	DrawOverdraw:          "DRAW_OVERDRAW",
	DrawExhaustOverdraw:   "DRAW_EXHAUST_OVERDRAW",
	DrawNotFound:          "DRAW_NOT_FOUND",
	DestroyWeaponSuccess:  "DESTROY_WEAPON_SUCCESS",
	DestroyMinionSuccess:  "DESTROY_MINION_SUCCESS",
	DestroyMinionInvalid:  "DESTROY_MINION_INVALID",
	PlayMinionSuccess:     "PLAY_MINION_SUCCESS",
	PlayFieldFull:         "PLAY_FIELD_FULL",
	PlayInvalidPosition:   "PLAY_INVALID_POSITION",
	PlayCardNotInHand:     "PLAY_CARD_NOT_IN_HAND",
	PlayInvalidCard:       "PLAY_INVALID_CARD",
	PlayWeaponSuccess:     "PLAY_WEAPON_SUCCESS",
	CombatSuccess:         "COMBAT_SUCCESS",
	CombatSourceExhausted: "COMBAT_SOURCE_EXHAUSTED",
	CombatSourceNoAttack:  "COMBAT_SOURCE_NO_ATTACK",
	CombatTargetInvalid:   "COMBAT_TARGET_INVALID",
	CombatTargetTaunt:     "COMBAT_TARGET_TAUNT",
	DamageSuccess:         "DAMAGE_SUCCESS",
	DamageInvalidTarget:   "DAMAGE_INVALID_TARGET",
	StatusGameOver:        "GAME_OVER",
}

func (s TaskStatus) String() string {
	if name, ok := taskStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", int(s))
}

// Task is a single game action executed against a player. Tasks are built
// per invocation and hold no state between runs.
type Task interface {
	TaskID() TaskID
	Run(p *Player) TaskStatus
}

// MetaTask is implemented by tasks that report the entities they affected.
type MetaTask interface {
	Task
	RunMeta(p *Player) TaskMeta
}

// TaskMeta is the structured result of a task run.
type TaskMeta struct {
	ID      TaskID
	Status  TaskStatus
	UserID  string
	Objects []*Entity
}

// NewTaskMeta builds a result bundle.
func NewTaskMeta(id TaskID, status TaskStatus, userID string, objects ...*Entity) TaskMeta {
	return TaskMeta{ID: id, Status: status, UserID: userID, Objects: objects}
}

// HasObjects reports whether the bundle carries affected entities.
func (m TaskMeta) HasObjects() bool {
	return len(m.Objects) > 0
}

// TaskMetaView is the wire form of TaskMeta.
type TaskMetaView struct {
	Task    string       `json:"task"`
	Status  string       `json:"status"`
	UserID  string       `json:"user_id"`
	Objects []EntityView `json:"objects,omitempty"`
}

// View converts the bundle to its wire form.
func (m TaskMeta) View() TaskMetaView {
	view := TaskMetaView{
		Task:   m.ID.String(),
		Status: m.Status.String(),
		UserID: m.UserID,
	}
	for _, e := range m.Objects {
		view.Objects = append(view.Objects, NewEntityView(e))
	}
	return view
}

// MarshalJSON encodes the wire form.
func (m TaskMeta) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.View())
}

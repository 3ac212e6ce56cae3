package rules

import (
	"fmt"
	"strings"
)

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMain
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseStart: "START",
	PhaseMain:  "MAIN",
	PhaseEnd:   "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step represents the individual steps that comprise a turn.
type Step int

const (
	StepReady Step = iota
	StepDraw
	StepAction
	StepEndTurn
	StepCleanup
)

var stepNames = map[Step]string{
	StepReady:   "READY",
	StepDraw:    "DRAW",
	StepAction:  "ACTION",
	StepEndTurn: "END_TURN",
	StepCleanup: "CLEANUP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

type turnEntry struct {
	phase Phase
	step  Step
}

var turnSequence = []turnEntry{
	{PhaseStart, StepReady},
	{PhaseStart, StepDraw},
	{PhaseMain, StepAction},
	{PhaseEnd, StepEndTurn},
	{PhaseEnd, StepCleanup},
}

// TurnManager tracks the active player and turn progression.
type TurnManager struct {
	orderIndex   int
	turnNumber   int
	activePlayer string
}

// NewTurnManager creates a new turn manager initialized at turn 1, ready step.
func NewTurnManager(activePlayer string) *TurnManager {
	return &TurnManager{
		turnNumber:   1,
		activePlayer: strings.TrimSpace(activePlayer),
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex].phase
}

// CurrentStep returns the step currently in progress.
func (tm *TurnManager) CurrentStep() Step {
	return turnSequence[tm.orderIndex].step
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.activePlayer
}

// AdvanceStep advances to the next step in the turn structure.
// When the end of the structure is reached, the turn number is incremented
// and the active player is rotated to nextActivePlayer if provided.
func (tm *TurnManager) AdvanceStep(nextActivePlayer string) (Phase, Step) {
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		if next := strings.TrimSpace(nextActivePlayer); next != "" {
			tm.activePlayer = next
		}
	}
	return tm.CurrentPhase(), tm.CurrentStep()
}

// AdvanceTo moves forward until the given step is reached, wrapping into the
// next turn if needed.
func (tm *TurnManager) AdvanceTo(step Step, nextActivePlayer string) {
	for {
		if _, s := tm.AdvanceStep(nextActivePlayer); s == step {
			return
		}
	}
}

// PassTurn finishes the current turn and starts the next one at the ready
// step with nextActivePlayer active.
func (tm *TurnManager) PassTurn(nextActivePlayer string) {
	tm.AdvanceTo(StepReady, nextActivePlayer)
}

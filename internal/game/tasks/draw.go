package tasks

import (
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/hspp/hspp-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// DrawTask draws a number of cards from the top of the player's deck.
//
// Each missing card costs fatigue. Cards that find the hand full are burned:
// they go to the graveyard and the player's policy is told about all of them
// at once.
type DrawTask struct {
	num int
}

// NewDrawTask creates a task drawing num cards.
func NewDrawTask(num int) *DrawTask {
	return &DrawTask{num: num}
}

// Num returns the number of cards the task draws.
func (t *DrawTask) Num() int { return t.num }

func (t *DrawTask) TaskID() game.TaskID { return game.TaskDraw }

func (t *DrawTask) Run(p *game.Player) game.TaskStatus {
	return t.RunMeta(p).Status
}

// RunMeta draws and reports the entities that reached the hand, in draw
// order.
func (t *DrawTask) RunMeta(p *game.Player) game.TaskMeta {
	var (
		drawn     []*game.Entity
		overdrawn []*game.Entity
		exhausted bool
	)

	for i := 0; i < t.num; i++ {
		card := p.Deck().Top()
		if card == nil {
			exhausted = true
			p.TakeFatigue()
			continue
		}

		if p.Hand().IsFull() {
			p.MoveTo(card, p.Graveyard())
			overdrawn = append(overdrawn, card)
			publishEntity(p, rules.EventOverdraw, card)
			continue
		}

		p.MoveTo(card, p.Hand())
		drawn = append(drawn, card)
		publishEntity(p, rules.EventCardDrawn, card)
	}

	if len(overdrawn) > 0 {
		notifyOverdraw(p, overdrawn)
	}

	return game.NewTaskMeta(t.TaskID(), drawStatus(exhausted, len(overdrawn) > 0), p.ID(), drawn...)
}

func drawStatus(exhausted, overdrawn bool) game.TaskStatus {
	switch {
	case exhausted && overdrawn:
		return game.DrawExhaustOverdraw
	case exhausted:
		return game.DrawExhaust
	case overdrawn:
		return game.DrawOverdraw
	default:
		return game.DrawSuccess
	}
}

func notifyOverdraw(p *game.Player, bundle []*game.Entity) {
	p.Game().Logger().Debug("overdraw",
		zap.String("game_id", p.Game().ID()),
		zap.String("player_id", p.ID()),
		zap.Int("burned", len(bundle)),
	)
	p.Policy().NotifyOverDraw(game.NewTaskMeta(game.TaskOverdraw, game.DrawOverdraw, p.ID(), bundle...))
}

func publishEntity(p *game.Player, eventType rules.EventType, e *game.Entity) {
	evt := rules.NewEvent(eventType, p.ID(), int(e.ID()))
	evt.CardID = e.CardID()
	if z := e.Zone(); z != nil {
		evt.Zone = z.Type().String()
	}
	p.Game().Publish(evt)
}

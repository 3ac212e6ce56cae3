package tasks

import (
	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/hspp/hspp-server-go/internal/game/rules"
)

// DrawCardTask draws a specific card out of the deck. When the deck holds
// several copies the one nearest the top is taken.
type DrawCardTask struct {
	card *cards.Card
}

// NewDrawCardTask creates a task drawing card.
func NewDrawCardTask(card *cards.Card) *DrawCardTask {
	return &DrawCardTask{card: card}
}

func (t *DrawCardTask) TaskID() game.TaskID { return game.TaskDraw }

func (t *DrawCardTask) Run(p *game.Player) game.TaskStatus {
	return t.RunMeta(p).Status
}

// RunMeta returns DrawNotFound when the deck has no copy of the card and
// DrawOverdraw when the copy had to be burned.
func (t *DrawCardTask) RunMeta(p *game.Player) game.TaskMeta {
	if t.card == nil {
		return game.NewTaskMeta(t.TaskID(), game.DrawNotFound, p.ID())
	}
	e := p.Deck().FindTopByCardID(t.card.ID)
	if e == nil {
		return game.NewTaskMeta(t.TaskID(), game.DrawNotFound, p.ID())
	}

	if p.Hand().IsFull() {
		p.MoveTo(e, p.Graveyard())
		publishEntity(p, rules.EventOverdraw, e)
		notifyOverdraw(p, []*game.Entity{e})
		return game.NewTaskMeta(t.TaskID(), game.DrawOverdraw, p.ID())
	}

	p.MoveTo(e, p.Hand())
	publishEntity(p, rules.EventCardDrawn, e)
	return game.NewTaskMeta(t.TaskID(), game.DrawSuccess, p.ID(), e)
}

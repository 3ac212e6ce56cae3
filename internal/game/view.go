package game

// EntityView is the public wire form of an entity.
type EntityView struct {
	ID         int    `json:"id"`
	CardID     string `json:"card_id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Zone       string `json:"zone,omitempty"`
	Position   int    `json:"position,omitempty"`
	Cost       int    `json:"cost"`
	Attack     int    `json:"attack,omitempty"`
	Health     int    `json:"health,omitempty"`
	MaxHealth  int    `json:"max_health,omitempty"`
	Durability int    `json:"durability,omitempty"`
	Armor      int    `json:"armor,omitempty"`
	Exhausted  bool   `json:"exhausted,omitempty"`
	Taunt      bool   `json:"taunt,omitempty"`
	Destroyed  bool   `json:"destroyed,omitempty"`
}

// NewEntityView builds the wire form of e.
func NewEntityView(e *Entity) EntityView {
	if e == nil {
		return EntityView{}
	}
	v := EntityView{
		ID:        int(e.id),
		CardID:    e.CardID(),
		Kind:      e.kind.String(),
		Position:  e.GetTag(GameTagZonePosition),
		Cost:      e.GetTag(GameTagCost),
		Exhausted: e.IsExhausted(),
		Taunt:     e.HasTaunt(),
		Destroyed: e.destroyed,
	}
	if e.card != nil {
		v.Name = e.card.Name
	}
	if e.zone != nil {
		v.Zone = e.zone.kind.String()
	}
	if e.Has(CapHealth) || e.IsWeapon() {
		v.Attack = e.Attack()
	}
	if e.Has(CapHealth) {
		v.Health = e.Health()
		v.MaxHealth = e.MaxHealth()
		v.Armor = e.Armor()
	}
	if e.Has(CapDurability) {
		v.Durability = e.Durability()
	}
	return v
}

// hiddenView shows only that a card exists.
func hiddenView(e *Entity) EntityView {
	return EntityView{ID: int(e.id), Kind: KindCard.String(), Zone: ZoneHand.String(), Position: e.GetTag(GameTagZonePosition)}
}

// PlayerView is a player as seen by a viewer.
type PlayerView struct {
	ID        string       `json:"id"`
	Nickname  string       `json:"nickname"`
	Hero      EntityView   `json:"hero"`
	Weapon    *EntityView  `json:"weapon,omitempty"`
	DeckCount int          `json:"deck_count"`
	HandCount int          `json:"hand_count"`
	Hand      []EntityView `json:"hand"`
	Field     []EntityView `json:"field"`
	Graveyard []EntityView `json:"graveyard"`
	Fatigue   int          `json:"fatigue"`
}

// GameView is the game as seen by one player. Cards in the opponent's hand
// are hidden.
type GameView struct {
	GameID        string       `json:"game_id"`
	State         string       `json:"state"`
	Turn          int          `json:"turn"`
	Phase         string       `json:"phase"`
	Step          string       `json:"step"`
	CurrentPlayer string       `json:"current_player"`
	Winner        string       `json:"winner,omitempty"`
	Players       []PlayerView `json:"players"`
}

// View builds the game as seen by viewerID. An empty viewerID hides both
// hands.
func (g *Game) View(viewerID string) GameView {
	view := GameView{
		GameID:        g.id,
		State:         g.state.String(),
		Turn:          g.Turn(),
		Phase:         g.Phase().String(),
		Step:          g.Step().String(),
		CurrentPlayer: g.CurrentPlayer().id,
		Winner:        g.winner,
	}
	for _, p := range g.players {
		view.Players = append(view.Players, p.view(p.id == viewerID))
	}
	return view
}

func (p *Player) view(revealHand bool) PlayerView {
	pv := PlayerView{
		ID:        p.id,
		Nickname:  p.nickname,
		Hero:      NewEntityView(p.hero),
		DeckCount: p.deck.Len(),
		HandCount: p.hand.Len(),
		Hand:      make([]EntityView, 0, p.hand.Len()),
		Field:     make([]EntityView, 0, p.field.Len()),
		Graveyard: make([]EntityView, 0, p.graveyard.Len()),
		Fatigue:   p.numCardAfterExhaust,
	}
	if w := p.Weapon(); w != nil {
		wv := NewEntityView(w)
		pv.Weapon = &wv
	}
	for _, e := range p.hand.entities {
		if revealHand {
			pv.Hand = append(pv.Hand, NewEntityView(e))
		} else {
			pv.Hand = append(pv.Hand, hiddenView(e))
		}
	}
	for _, e := range p.field.entities {
		pv.Field = append(pv.Field, NewEntityView(e))
	}
	for _, e := range p.graveyard.entities {
		pv.Graveyard = append(pv.Graveyard, NewEntityView(e))
	}
	return pv
}

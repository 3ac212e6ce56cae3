package watchers

import (
	"github.com/hspp/hspp-server-go/internal/game/rules"
)

// CardsDrawnWatcher counts the cards each player drew this turn.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	drawn map[string]int // playerID -> count
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	w := &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		drawn:       make(map[string]int),
	}
	w.SetKey("CardsDrawnWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardDrawn || event.PlayerID == "" {
		return
	}
	w.drawn[event.PlayerID]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.drawn = make(map[string]int)
}

// GetCount returns the number of cards a player drew.
func (w *CardsDrawnWatcher) GetCount(playerID string) int {
	return w.drawn[playerID]
}

// FatigueWatcher tracks fatigue damage taken by each player this turn.
type FatigueWatcher struct {
	*rules.BaseWatcher
	damage map[string]int
	hits   map[string]int
}

// NewFatigueWatcher creates a new fatigue watcher.
func NewFatigueWatcher() *FatigueWatcher {
	w := &FatigueWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		damage:      make(map[string]int),
		hits:        make(map[string]int),
	}
	w.SetKey("FatigueWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *FatigueWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventFatigue || event.PlayerID == "" {
		return
	}
	w.damage[event.PlayerID] += event.Amount
	w.hits[event.PlayerID]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *FatigueWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.damage = make(map[string]int)
	w.hits = make(map[string]int)
}

// GetDamage returns the total fatigue damage a player took.
func (w *FatigueWatcher) GetDamage(playerID string) int {
	return w.damage[playerID]
}

// GetHits returns how many draws hit an empty deck.
func (w *FatigueWatcher) GetHits(playerID string) int {
	return w.hits[playerID]
}

// OverdrawWatcher records the entities each player burned this turn.
type OverdrawWatcher struct {
	*rules.BaseWatcher
	burned map[string][]int // playerID -> entity ids in draw order
}

// NewOverdrawWatcher creates a new overdraw watcher.
func NewOverdrawWatcher() *OverdrawWatcher {
	w := &OverdrawWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		burned:      make(map[string][]int),
	}
	w.SetKey("OverdrawWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *OverdrawWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventOverdraw || event.PlayerID == "" {
		return
	}
	w.burned[event.PlayerID] = append(w.burned[event.PlayerID], event.EntityID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *OverdrawWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.burned = make(map[string][]int)
}

// GetBurned returns the entity ids a player burned, in draw order.
func (w *OverdrawWatcher) GetBurned(playerID string) []int {
	return append([]int(nil), w.burned[playerID]...)
}

// GetCount returns the number of cards a player burned.
func (w *OverdrawWatcher) GetCount(playerID string) int {
	return len(w.burned[playerID])
}

// MinionsDiedWatcher tracks minions that left the board through the cleanup
// pass, per owner.
type MinionsDiedWatcher struct {
	*rules.BaseWatcher
	died map[string][]string // ownerID -> card ids in death order
}

// NewMinionsDiedWatcher creates a new minions died watcher.
func NewMinionsDiedWatcher() *MinionsDiedWatcher {
	w := &MinionsDiedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		died:        make(map[string][]string),
	}
	w.SetKey("MinionsDiedWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *MinionsDiedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventMinionDied || event.PlayerID == "" {
		return
	}
	w.died[event.PlayerID] = append(w.died[event.PlayerID], event.CardID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *MinionsDiedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.died = make(map[string][]string)
}

// GetCount returns the number of a player's minions that died.
func (w *MinionsDiedWatcher) GetCount(playerID string) int {
	return len(w.died[playerID])
}

// GetTotal returns the number of minions that died on both sides.
func (w *MinionsDiedWatcher) GetTotal() int {
	total := 0
	for _, ids := range w.died {
		total += len(ids)
	}
	return total
}

// GetCardIDs returns the card ids of a player's dead minions in death order.
func (w *MinionsDiedWatcher) GetCardIDs(playerID string) []string {
	return append([]string(nil), w.died[playerID]...)
}

// RegisterDefaults adds every watcher in this package to registry.
func RegisterDefaults(registry *rules.WatcherRegistry) {
	registry.AddWatcher(NewCardsDrawnWatcher())
	registry.AddWatcher(NewFatigueWatcher())
	registry.AddWatcher(NewOverdrawWatcher())
	registry.AddWatcher(NewMinionsDiedWatcher())
}

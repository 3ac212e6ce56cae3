package rules

import (
	"sync"
)

// WatcherScope selects which events reach a watcher.
type WatcherScope int

const (
	// WatcherScopeGame watchers see every event of the game.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopePlayer watchers only see events whose PlayerID is the
	// followed player.
	WatcherScopePlayer
)

func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeGame:
		return "GAME"
	case WatcherScopePlayer:
		return "PLAYER"
	default:
		return "UNKNOWN"
	}
}

// Watcher accumulates facts about the events of one turn.
type Watcher interface {
	Watch(event Event)
	// Reset is called at the end of every turn.
	Reset()
	ConditionMet() bool
	GetScope() WatcherScope
	// GetKey identifies the watcher in its registry.
	GetKey() string
}

// playerScoped is implemented by watchers following a single player.
type playerScoped interface {
	GetPlayerID() string
}

// BaseWatcher carries the bookkeeping shared by all watchers. Embed it and
// implement Watch.
type BaseWatcher struct {
	scope     WatcherScope
	playerID  string
	condition bool
	key       string
}

// NewBaseWatcher creates a base watcher with the given scope.
func NewBaseWatcher(scope WatcherScope) *BaseWatcher {
	return &BaseWatcher{scope: scope}
}

func (bw *BaseWatcher) GetScope() WatcherScope { return bw.scope }

// SetPlayerID sets the player a PLAYER scope watcher follows.
func (bw *BaseWatcher) SetPlayerID(id string) { bw.playerID = id }

func (bw *BaseWatcher) GetPlayerID() string { return bw.playerID }

func (bw *BaseWatcher) ConditionMet() bool { return bw.condition }

func (bw *BaseWatcher) SetCondition(condition bool) { bw.condition = condition }

// Reset clears the condition flag.
func (bw *BaseWatcher) Reset() { bw.condition = false }

func (bw *BaseWatcher) GetKey() string { return bw.key }

func (bw *BaseWatcher) SetKey(key string) { bw.key = key }

// WatcherRegistry holds the watchers of one game. Watchers are notified in
// the order they were first added; re-adding a key replaces the watcher in
// place.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers []Watcher
	index    map[string]int
}

// NewWatcherRegistry creates an empty registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{index: make(map[string]int)}
}

// AddWatcher registers watcher under its key.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if i, ok := wr.index[watcher.GetKey()]; ok {
		wr.watchers[i] = watcher
		return
	}
	wr.index[watcher.GetKey()] = len(wr.watchers)
	wr.watchers = append(wr.watchers, watcher)
}

// RemoveWatcher drops the watcher registered under key.
func (wr *WatcherRegistry) RemoveWatcher(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	i, ok := wr.index[key]
	if !ok {
		return
	}
	wr.watchers = append(wr.watchers[:i], wr.watchers[i+1:]...)
	delete(wr.index, key)
	for j := i; j < len(wr.watchers); j++ {
		wr.index[wr.watchers[j].GetKey()] = j
	}
}

// GetWatcher returns the watcher registered under key, or nil.
func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	if i, ok := wr.index[key]; ok {
		return wr.watchers[i]
	}
	return nil
}

// GetWatchersByScope returns the watchers of scope in notification order.
func (wr *WatcherRegistry) GetWatchersByScope(scope WatcherScope) []Watcher {
	var result []Watcher
	for _, w := range wr.snapshot() {
		if w.GetScope() == scope {
			result = append(result, w)
		}
	}
	return result
}

// Len returns the number of registered watchers.
func (wr *WatcherRegistry) Len() int {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return len(wr.watchers)
}

// ResetWatchers resets every watcher.
func (wr *WatcherRegistry) ResetWatchers() {
	for _, w := range wr.snapshot() {
		w.Reset()
	}
}

// NotifyWatchers hands event to every watcher whose scope covers it.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	for _, w := range wr.snapshot() {
		if w.GetScope() == WatcherScopePlayer {
			if ps, ok := w.(playerScoped); ok && ps.GetPlayerID() != event.PlayerID {
				continue
			}
		}
		w.Watch(event)
	}
}

// snapshot lets watchers publish or register while being notified.
func (wr *WatcherRegistry) snapshot() []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return append([]Watcher(nil), wr.watchers...)
}

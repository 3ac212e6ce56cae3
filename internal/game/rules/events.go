package rules

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Turn events
	EventGameStarted EventType = "GAME_STARTED"
	EventTurnBegan   EventType = "TURN_BEGAN"
	EventTurnEnded   EventType = "TURN_ENDED"
	EventGameOver    EventType = "GAME_OVER"

	// Task events
	EventTaskRun EventType = "TASK_RUN"

	// Card events
	EventCardDrawn   EventType = "CARD_DRAWN"
	EventOverdraw    EventType = "OVERDRAW"
	EventFatigue     EventType = "FATIGUE"
	EventZoneChange  EventType = "ZONE_CHANGE"
	EventMinionPlay  EventType = "MINION_PLAYED"
	EventWeaponEquip EventType = "WEAPON_EQUIPPED"

	// Combat and damage events
	EventAttack         EventType = "ATTACK"
	EventDamageDealt    EventType = "DAMAGE_DEALT"
	EventHeroArmorLost  EventType = "HERO_ARMOR_LOST"
	EventWeaponDestroy  EventType = "WEAPON_DESTROYED"
	EventMinionDestroy  EventType = "MINION_DESTROYED"
	EventMinionDied     EventType = "MINION_DIED"
	EventEntityReset    EventType = "ENTITY_RESET"
	EventEffectAttached EventType = "EFFECT_ATTACHED"
	EventEffectRemoved  EventType = "EFFECT_REMOVED"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	ID          string            // Unique event ID
	PlayerID    string            // Acting or affected player
	EntityID    int               // Affected entity handle (0 = none)
	CardID      string            // Card definition of the affected entity
	Amount      int               // Numeric value (damage, count, fatigue, ...)
	Zone        string            // Zone the event relates to ("" = none)
	Timestamp   time.Time         // When the event occurred
	Metadata    map[string]string // Additional metadata
	Description string            // Human-readable description
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type registeredListener struct {
	handle    int
	eventType EventType // "" = all events
	callback  Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Listeners are invoked in subscription order.
type EventBus struct {
	mu         sync.RWMutex
	listeners  []registeredListener
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{nextHandle: 1}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.subscribe("", listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if eventType == "" {
		return -1
	}
	return bus.subscribe(eventType, listener)
}

func (bus *EventBus) subscribe(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners = append(bus.listeners, registeredListener{
		handle:    handle,
		eventType: eventType,
		callback:  listener,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	i := sort.Search(len(bus.listeners), func(i int) bool { return bus.listeners[i].handle >= handle })
	if i < len(bus.listeners) && bus.listeners[i].handle == handle {
		bus.listeners = append(bus.listeners[:i], bus.listeners[i+1:]...)
	}
}

// Len returns the number of registered listeners.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.listeners)
}

// Publish delivers the event to all matching listeners synchronously.
// Listeners may publish further events; they observe the listener set as it
// was when Publish was called.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	listeners := make([]registeredListener, len(bus.listeners))
	copy(listeners, bus.listeners)
	bus.mu.RUnlock()

	for _, l := range listeners {
		if l.eventType == "" || l.eventType == event.Type {
			l.callback(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, playerID string, entityID int) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		EntityID:  entityID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, playerID string, entityID int, amount int) Event {
	evt := NewEvent(eventType, playerID, entityID)
	evt.Amount = amount
	return evt
}

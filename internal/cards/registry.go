package cards

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrCardNotFound is returned when a card id is not present in a registry.
	ErrCardNotFound = errors.New("card not found")
	// ErrDuplicateCard is returned when a card id is registered twice.
	ErrDuplicateCard = errors.New("duplicate card id")
)

// Registry is the read-only card lookup the engine depends on.
type Registry interface {
	FindCardByID(id string) (*Card, bool)
}

// MemoryRegistry is a Registry backed by a map. It is populated once at
// startup and safe for concurrent readers afterwards.
type MemoryRegistry struct {
	mu    sync.RWMutex
	cards map[string]*Card
}

// NewMemoryRegistry creates a registry containing the given cards.
func NewMemoryRegistry(cards ...*Card) (*MemoryRegistry, error) {
	r := &MemoryRegistry{cards: make(map[string]*Card, len(cards))}
	for _, c := range cards {
		if err := r.Add(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a card definition.
func (r *MemoryRegistry) Add(card *Card) error {
	if card == nil {
		return fmt.Errorf("card is nil")
	}
	id := strings.TrimSpace(card.ID)
	if id == "" {
		return fmt.Errorf("card %q has no id", card.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cards[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCard, id)
	}
	r.cards[id] = card
	return nil
}

// FindCardByID implements Registry.
func (r *MemoryRegistry) FindCardByID(id string) (*Card, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.cards[id]
	return card, ok
}

// Lookup returns the card or ErrCardNotFound.
func (r *MemoryRegistry) Lookup(id string) (*Card, error) {
	card, ok := r.FindCardByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return card, nil
}

// Len returns the number of registered cards.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cards)
}

// All returns every card sorted by id.
func (r *MemoryRegistry) All() []*Card {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Card, 0, len(r.cards))
	for _, c := range r.cards {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

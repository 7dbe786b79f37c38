package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
)

// ItemChange is one change notification pushed to live view subscribers
type ItemChange struct {
	Event      string    `json:"event"`
	ItemID     uuid.UUID `json:"item_id"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LiveItemFeed fans item domain events out to connected stream subscribers.
// Slow subscribers drop notifications rather than blocking the event bus;
// clients are expected to refetch the list on reconnect anyway.
type LiveItemFeed struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan ItemChange
	closed      bool
}

// NewLiveItemFeed creates a new LiveItemFeed
func NewLiveItemFeed() *LiveItemFeed {
	return &LiveItemFeed{
		subscribers: make(map[uuid.UUID]chan ItemChange),
	}
}

// EventTypes returns the item lifecycle events the feed forwards
func (f *LiveItemFeed) EventTypes() []string {
	return []string{
		inventory.EventTypeItemCreated,
		inventory.EventTypeItemQuantityChanged,
		inventory.EventTypeItemEdited,
		inventory.EventTypeItemDeleted,
		inventory.EventTypeItemRestored,
	}
}

// Handle converts a domain event into a change notification and fans it out
func (f *LiveItemFeed) Handle(_ context.Context, event shared.DomainEvent) error {
	change := ItemChange{
		Event:      event.EventType(),
		ItemID:     event.AggregateID(),
		OccurredAt: event.OccurredAt(),
	}
	switch e := event.(type) {
	case *inventory.ItemCreatedEvent:
		change.Name = e.Name
	case *inventory.ItemQuantityChangedEvent:
		change.Name = e.Name
	case *inventory.ItemEditedEvent:
		change.Name = e.Name
	case *inventory.ItemDeletedEvent:
		change.Name = e.Name
	case *inventory.ItemRestoredEvent:
		change.Name = e.Name
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil
	}
	for _, ch := range f.subscribers {
		select {
		case ch <- change:
		default:
			// Subscriber is not keeping up; drop
		}
	}
	return nil
}

// Subscribe registers a new stream subscriber and returns its id and channel
func (f *LiveItemFeed) Subscribe() (uuid.UUID, <-chan ItemChange) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New()
	ch := make(chan ItemChange, 16)
	if !f.closed {
		f.subscribers[id] = ch
	} else {
		close(ch)
	}
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (f *LiveItemFeed) Unsubscribe(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.subscribers[id]; ok {
		delete(f.subscribers, id)
		close(ch)
	}
}

// Close disconnects all subscribers
func (f *LiveItemFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subscribers {
		delete(f.subscribers, id)
		close(ch)
	}
}

// SubscriberCount returns the number of connected subscribers
func (f *LiveItemFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

var _ shared.EventHandler = (*LiveItemFeed)(nil)

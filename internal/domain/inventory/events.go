package inventory

import (
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeItem = "Item"

// Event type constants
const (
	EventTypeItemCreated         = "ItemCreated"
	EventTypeItemQuantityChanged = "ItemQuantityChanged"
	EventTypeItemEdited          = "ItemEdited"
	EventTypeItemDeleted         = "ItemDeleted"
	EventTypeItemRestored        = "ItemRestored"
	EventTypeItemStockLow        = "ItemStockLow"
)

// ItemCreatedEvent is raised when a new item enters the store
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Section  string    `json:"section"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Name:            item.Name,
		Quantity:        item.Quantity,
		Section:         item.Section,
	}
}

// EventType returns the event type name
func (e *ItemCreatedEvent) EventType() string {
	return EventTypeItemCreated
}

// ItemQuantityChangedEvent is raised on consume and quick-receive
type ItemQuantityChangedEvent struct {
	shared.BaseDomainEvent
	ItemID      uuid.UUID `json:"item_id"`
	Name        string    `json:"name"`
	Change      int       `json:"change"`
	NewQuantity int       `json:"new_quantity"`
}

// NewItemQuantityChangedEvent creates a new ItemQuantityChangedEvent
func NewItemQuantityChangedEvent(item *Item, change int) *ItemQuantityChangedEvent {
	return &ItemQuantityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemQuantityChanged, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Name:            item.Name,
		Change:          change,
		NewQuantity:     item.Quantity,
	}
}

// EventType returns the event type name
func (e *ItemQuantityChangedEvent) EventType() string {
	return EventTypeItemQuantityChanged
}

// ItemEditedEvent is raised when a confirmed edit changes at least one field
type ItemEditedEvent struct {
	shared.BaseDomainEvent
	ItemID  uuid.UUID `json:"item_id"`
	Name    string    `json:"name"`
	Changes EditDiff  `json:"changes"`
}

// NewItemEditedEvent creates a new ItemEditedEvent
func NewItemEditedEvent(item *Item, diff EditDiff) *ItemEditedEvent {
	return &ItemEditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemEdited, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Name:            item.Name,
		Changes:         diff,
	}
}

// EventType returns the event type name
func (e *ItemEditedEvent) EventType() string {
	return EventTypeItemEdited
}

// ItemDeletedEvent is raised on soft delete
type ItemDeletedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
}

// NewItemDeletedEvent creates a new ItemDeletedEvent
func NewItemDeletedEvent(item *Item) *ItemDeletedEvent {
	return &ItemDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemDeleted, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Name:            item.Name,
	}
}

// EventType returns the event type name
func (e *ItemDeletedEvent) EventType() string {
	return EventTypeItemDeleted
}

// ItemRestoredEvent is raised when a soft-deleted item returns to the store
type ItemRestoredEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
}

// NewItemRestoredEvent creates a new ItemRestoredEvent
func NewItemRestoredEvent(item *Item) *ItemRestoredEvent {
	return &ItemRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemRestored, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Name:            item.Name,
	}
}

// EventType returns the event type name
func (e *ItemRestoredEvent) EventType() string {
	return EventTypeItemRestored
}

// ItemStockLowEvent is raised when a consume drops an item to or below its
// minimum threshold while the low-stock flag is still clear
type ItemStockLowEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	MinStock int       `json:"min_stock"`
}

// NewItemStockLowEvent creates a new ItemStockLowEvent
func NewItemStockLowEvent(item *Item) *ItemStockLowEvent {
	return &ItemStockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemStockLow, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Name:            item.Name,
		Quantity:        item.Quantity,
		MinStock:        item.MinStock,
	}
}

// EventType returns the event type name
func (e *ItemStockLowEvent) EventType() string {
	return EventTypeItemStockLow
}

package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/labstock/backend/internal/domain/inventory"
)

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	Quantity              int        `json:"quantity"`
	MinStock              int        `json:"min_stock"`
	ExpiryDate            *time.Time `json:"expiry_date,omitempty"`
	LotNumber             string     `json:"lot_number,omitempty"`
	PackagingType         string     `json:"packaging_type,omitempty"`
	Code                  string     `json:"code,omitempty"`
	Temperature           string     `json:"temperature,omitempty"`
	Section               string     `json:"section,omitempty"`
	IsLowStock            bool       `json:"is_low_stock"`
	IsExpiring            bool       `json:"is_expiring"`
	LowStockNotified      bool       `json:"low_stock_notified"`
	ExpiryWarningNotified bool       `json:"expiry_warning_notified"`
	CreatedBy             string     `json:"created_by"`
	UpdatedBy             string     `json:"updated_by"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Version               int        `json:"version"`
}

// ToItemResponse converts a domain item to an API response
func ToItemResponse(item *inventory.Item, now time.Time) ItemResponse {
	return ItemResponse{
		ID:                    item.ID,
		Name:                  item.Name,
		Quantity:              item.Quantity,
		MinStock:              item.MinStock,
		ExpiryDate:            item.ExpiryDate,
		LotNumber:             item.LotNumber,
		PackagingType:         item.PackagingType,
		Code:                  item.Code,
		Temperature:           item.Temperature,
		Section:               item.Section,
		IsLowStock:            item.IsLowStock(),
		IsExpiring:            item.IsExpiringOrExpired(now),
		LowStockNotified:      item.LowStockNotified,
		ExpiryWarningNotified: item.ExpiryWarningNotified,
		CreatedBy:             item.CreatedBy.Label(),
		UpdatedBy:             item.UpdatedBy.Label(),
		CreatedAt:             item.CreatedAt,
		UpdatedAt:             item.UpdatedAt,
		Version:               item.Version,
	}
}

// ToItemResponses converts a slice of domain items
func ToItemResponses(items []inventory.Item, now time.Time) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for idx := range items {
		out[idx] = ToItemResponse(&items[idx], now)
	}
	return out
}

// ListItemsQuery represents filter and sort options for the item list
type ListItemsQuery struct {
	Search      string `form:"search"`
	Temperature string `form:"temperature"`
	Section     string `form:"section"`
	Status      string `form:"status" binding:"omitempty,oneof=low-stock expiring"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=name expiry_date quantity lot_number"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemFieldsRequest carries the full attribute set for create and edit
type ItemFieldsRequest struct {
	Name          string     `json:"name" binding:"required,min=1,max=255"`
	Quantity      int        `json:"quantity"`
	MinStock      int        `json:"min_stock"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	LotNumber     string     `json:"lot_number" binding:"max=128"`
	PackagingType string     `json:"packaging_type" binding:"max=128"`
	Code          string     `json:"code" binding:"max=128"`
	Temperature   string     `json:"temperature" binding:"max=64"`
	Section       string     `json:"section" binding:"max=128"`
}

// ToFields converts the request to domain item fields
func (r ItemFieldsRequest) ToFields() inventory.ItemFields {
	return inventory.ItemFields{
		Name:          r.Name,
		Quantity:      r.Quantity,
		MinStock:      r.MinStock,
		ExpiryDate:    r.ExpiryDate,
		LotNumber:     r.LotNumber,
		PackagingType: r.PackagingType,
		Code:          r.Code,
		Temperature:   r.Temperature,
		Section:       r.Section,
	}
}

// CreateItemRequest represents a request to create an item. Force bypasses
// the duplicate check after the client has confirmed the conflict.
type CreateItemRequest struct {
	ItemFieldsRequest
	Force bool `json:"force"`
}

// DuplicateConflictResponse reports the existing item a create collided with
type DuplicateConflictResponse struct {
	Match string       `json:"match"`
	Item  ItemResponse `json:"item"`
}

// ConsumeRequest represents a stock consumption
type ConsumeRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"max=255"`
}

// AdjustRequest represents a quick-receive quantity adjustment
type AdjustRequest struct {
	Change int `json:"change" binding:"required,min=1"`
}

// EditPreviewResponse carries the diff a pending edit would apply
type EditPreviewResponse struct {
	Changes inventory.EditDiff `json:"changes"`
	NoOp    bool               `json:"no_op"`
}

// ActivityLogEntryResponse represents one audit record
type ActivityLogEntryResponse struct {
	ID        uuid.UUID            `json:"id"`
	ItemID    uuid.UUID            `json:"item_id"`
	Timestamp time.Time            `json:"timestamp"`
	Actor     string               `json:"actor"`
	Type      inventory.LogType    `json:"type"`
	Details   inventory.LogDetails `json:"details"`
}

// ToActivityLogEntryResponse converts a domain log entry
func ToActivityLogEntryResponse(entry *inventory.ActivityLogEntry) ActivityLogEntryResponse {
	return ActivityLogEntryResponse{
		ID:        entry.ID,
		ItemID:    entry.ItemID,
		Timestamp: entry.Timestamp,
		Actor:     entry.Actor.Label(),
		Type:      entry.Type,
		Details:   entry.Details,
	}
}

// ToActivityLogEntryResponses converts a slice of log entries
func ToActivityLogEntryResponses(entries []inventory.ActivityLogEntry) []ActivityLogEntryResponse {
	out := make([]ActivityLogEntryResponse, len(entries))
	for idx := range entries {
		out[idx] = ToActivityLogEntryResponse(&entries[idx])
	}
	return out
}

// TrashItemResponse represents a soft-deleted item in API responses
type TrashItemResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Quantity      int        `json:"quantity"`
	MinStock      int        `json:"min_stock"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	LotNumber     string     `json:"lot_number,omitempty"`
	Code          string     `json:"code,omitempty"`
	Section       string     `json:"section,omitempty"`
	DeletedAt     time.Time  `json:"deleted_at"`
	DeletedBy     string     `json:"deleted_by"`
	CreatedAt     time.Time  `json:"created_at"`
	PackagingType string     `json:"packaging_type,omitempty"`
	Temperature   string     `json:"temperature,omitempty"`
}

// ToTrashItemResponse converts a trash snapshot
func ToTrashItemResponse(item *inventory.DeletedItem) TrashItemResponse {
	return TrashItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Quantity:      item.Quantity,
		MinStock:      item.MinStock,
		ExpiryDate:    item.ExpiryDate,
		LotNumber:     item.LotNumber,
		Code:          item.Code,
		Section:       item.Section,
		DeletedAt:     item.DeletedAt,
		DeletedBy:     item.DeletedBy.Label(),
		CreatedAt:     item.CreatedAt,
		PackagingType: item.PackagingType,
		Temperature:   item.Temperature,
	}
}

// ToTrashItemResponses converts a slice of trash snapshots
func ToTrashItemResponses(items []inventory.DeletedItem) []TrashItemResponse {
	out := make([]TrashItemResponse, len(items))
	for idx := range items {
		out[idx] = ToTrashItemResponse(&items[idx])
	}
	return out
}

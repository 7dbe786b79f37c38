package inventory

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LogType identifies the kind of activity recorded against an item
type LogType string

const (
	LogTypeCreate         LogType = "CREATE"
	LogTypeConsume        LogType = "CONSUME"
	LogTypeQuantityAdjust LogType = "QUANTITY_ADJUST"
	LogTypeEdit           LogType = "EDIT"
	LogTypeDelete         LogType = "DELETE"
	LogTypeRestore        LogType = "RESTORE"
)

// DefaultConsumeReason is recorded when a consume request carries no reason
const DefaultConsumeReason = "N/A"

// ConsumeDetails records a stock consumption
type ConsumeDetails struct {
	ConsumedQuantity int    `json:"consumed_quantity"`
	Reason           string `json:"reason"`
	NewQuantity      int    `json:"new_quantity"`
}

// AdjustDetails records a quick-receive quantity adjustment
type AdjustDetails struct {
	Change      int `json:"change"`
	NewQuantity int `json:"new_quantity"`
}

// FieldChange captures one field of an edit diff
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// EditDiff maps changed field names to their old and new values
type EditDiff map[string]FieldChange

// EditDetails records the diff applied by an edit
type EditDetails struct {
	Changes EditDiff `json:"changes"`
}

// MarkerDetails records lifecycle transitions that carry no payload beyond
// the item name at the time of the action
type MarkerDetails struct {
	ItemName string `json:"item_name"`
}

// LogDetails is a tagged union keyed by the entry type. Exactly one variant
// matching the entry's type is populated.
type LogDetails struct {
	Kind    LogType         `json:"kind"`
	Consume *ConsumeDetails `json:"consume,omitempty"`
	Adjust  *AdjustDetails  `json:"adjust,omitempty"`
	Edit    *EditDetails    `json:"edit,omitempty"`
	Marker  *MarkerDetails  `json:"marker,omitempty"`
}

// Validate checks that the populated variant matches the kind
func (d LogDetails) Validate() error {
	switch d.Kind {
	case LogTypeConsume:
		if d.Consume == nil {
			return shared.NewDomainError("VALIDATION_ERROR", "consume details missing")
		}
	case LogTypeQuantityAdjust:
		if d.Adjust == nil {
			return shared.NewDomainError("VALIDATION_ERROR", "adjust details missing")
		}
	case LogTypeEdit:
		if d.Edit == nil {
			return shared.NewDomainError("VALIDATION_ERROR", "edit details missing")
		}
	case LogTypeCreate, LogTypeDelete, LogTypeRestore:
		if d.Marker == nil {
			return shared.NewDomainError("VALIDATION_ERROR", "marker details missing")
		}
	default:
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("unknown log type %q", d.Kind))
	}
	return nil
}

// Value implements driver.Valuer so details persist as a JSON column
func (d LogDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner
func (d *LogDetails) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for log details", value)
	}
	return json.Unmarshal(raw, d)
}

// ActivityLogEntry is one append-only audit record scoped to a single item.
// Entries are never mutated or deleted by the application; they are purged
// only when the owning item is permanently deleted.
type ActivityLogEntry struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID  `json:"item_id" gorm:"type:uuid;not null;index"`
	Timestamp time.Time  `json:"timestamp" gorm:"not null;index"`
	Actor     UserRef    `json:"actor" gorm:"embedded;embeddedPrefix:actor_"`
	Type      LogType    `json:"type" gorm:"type:varchar(32);not null"`
	Details   LogDetails `json:"details" gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (ActivityLogEntry) TableName() string {
	return "activity_log_entries"
}

func newLogEntry(itemID uuid.UUID, actor UserRef, logType LogType, details LogDetails) *ActivityLogEntry {
	return &ActivityLogEntry{
		ID:        uuid.New(),
		ItemID:    itemID,
		Timestamp: time.Now(),
		Actor:     actor,
		Type:      logType,
		Details:   details,
	}
}

// NewConsumeEntry records a consumption against an item
func NewConsumeEntry(itemID uuid.UUID, actor UserRef, consumed int, reason string, newQuantity int) *ActivityLogEntry {
	if reason == "" {
		reason = DefaultConsumeReason
	}
	return newLogEntry(itemID, actor, LogTypeConsume, LogDetails{
		Kind:    LogTypeConsume,
		Consume: &ConsumeDetails{ConsumedQuantity: consumed, Reason: reason, NewQuantity: newQuantity},
	})
}

// NewAdjustEntry records a quick-receive adjustment
func NewAdjustEntry(itemID uuid.UUID, actor UserRef, change, newQuantity int) *ActivityLogEntry {
	return newLogEntry(itemID, actor, LogTypeQuantityAdjust, LogDetails{
		Kind:   LogTypeQuantityAdjust,
		Adjust: &AdjustDetails{Change: change, NewQuantity: newQuantity},
	})
}

// NewEditEntry records an applied edit diff
func NewEditEntry(itemID uuid.UUID, actor UserRef, diff EditDiff) *ActivityLogEntry {
	return newLogEntry(itemID, actor, LogTypeEdit, LogDetails{
		Kind: LogTypeEdit,
		Edit: &EditDetails{Changes: diff},
	})
}

// NewMarkerEntry records a CREATE, DELETE or RESTORE transition
func NewMarkerEntry(itemID uuid.UUID, actor UserRef, logType LogType, itemName string) *ActivityLogEntry {
	return newLogEntry(itemID, actor, logType, LogDetails{
		Kind:   logType,
		Marker: &MarkerDetails{ItemName: itemName},
	})
}

package inventory

import (
	"strings"
	"time"

	"github.com/labstock/backend/internal/domain/shared"
)

// DefaultMinStock is the canonical minimum-stock threshold applied when a
// request does not specify one.
const DefaultMinStock = 1

// ExpiryWarningWindow is how far ahead an expiry date counts as "expiring soon".
// The boundary is inclusive: an item expiring exactly at now+window is expiring.
const ExpiryWarningWindow = 7 * 24 * time.Hour

// Item is one inventory-tracked lot/product entry. It is the aggregate root
// for all inventory state transitions; every successful mutation pairs one
// item write with exactly one activity log entry.
type Item struct {
	shared.BaseAggregateRoot
	Name                  string     `gorm:"type:varchar(255);not null;index"`
	Quantity              int        `gorm:"not null;default:0"`
	MinStock              int        `gorm:"not null;default:1"`
	ExpiryDate            *time.Time `gorm:"index"`
	LotNumber             string     `gorm:"type:varchar(128);index"`
	PackagingType         string     `gorm:"type:varchar(128)"`
	Code                  string     `gorm:"type:varchar(128);index"`
	Temperature           string     `gorm:"type:varchar(64)"`
	Section               string     `gorm:"type:varchar(128);index"`
	CreatedBy             UserRef    `gorm:"embedded;embeddedPrefix:created_by_"`
	UpdatedBy             UserRef    `gorm:"embedded;embeddedPrefix:updated_by_"`
	LowStockNotified      bool       `gorm:"not null;default:false"`
	ExpiryWarningNotified bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// ItemFields carries the caller-supplied attributes for create and edit.
// Edit applies the full set; a zero-value field replaces the stored one.
type ItemFields struct {
	Name          string
	Quantity      int
	MinStock      int
	ExpiryDate    *time.Time
	LotNumber     string
	PackagingType string
	Code          string
	Temperature   string
	Section       string
}

func (f *ItemFields) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.LotNumber = strings.TrimSpace(f.LotNumber)
	f.Code = strings.TrimSpace(f.Code)
	if f.MinStock <= 0 {
		f.MinStock = DefaultMinStock
	}
}

func (f *ItemFields) validate(requirePositiveQuantity bool) error {
	if f.Name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Item name cannot be empty")
	}
	if requirePositiveQuantity && f.Quantity <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if f.Quantity < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity cannot be negative")
	}
	return nil
}

// NewItem creates a new item together with its CREATE log entry.
// Duplicate detection is the caller's responsibility and runs before this.
func NewItem(fields ItemFields, actor UserRef) (*Item, *ActivityLogEntry, error) {
	fields.normalize()
	if err := fields.validate(true); err != nil {
		return nil, nil, err
	}

	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              fields.Name,
		Quantity:          fields.Quantity,
		MinStock:          fields.MinStock,
		ExpiryDate:        fields.ExpiryDate,
		LotNumber:         fields.LotNumber,
		PackagingType:     fields.PackagingType,
		Code:              fields.Code,
		Temperature:       fields.Temperature,
		Section:           fields.Section,
		CreatedBy:         actor,
		UpdatedBy:         actor,
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))
	entry := NewMarkerEntry(item.ID, actor, LogTypeCreate, item.Name)
	return item, entry, nil
}

// Consume removes stock. Amounts exceeding the current quantity are rejected,
// never clamped.
func (i *Item) Consume(amount int, reason string, actor UserRef) (*ActivityLogEntry, error) {
	if amount <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Consume amount must be positive")
	}
	if amount > i.Quantity {
		return nil, shared.ErrInsufficientStock
	}

	i.Quantity -= amount
	i.touch(actor)

	i.AddDomainEvent(NewItemQuantityChangedEvent(i, -amount))
	if i.Quantity <= i.MinStock && !i.LowStockNotified {
		i.AddDomainEvent(NewItemStockLowEvent(i))
	}
	return NewConsumeEntry(i.ID, actor, amount, reason, i.Quantity), nil
}

// AdjustQuantity is the quick-receive path: delta must be positive. A restock
// re-arms the low-stock alert by clearing the dedup flag.
func (i *Item) AdjustQuantity(delta int, actor UserRef) (*ActivityLogEntry, error) {
	if delta <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Adjustment must be positive")
	}

	i.Quantity += delta
	if i.LowStockNotified {
		i.LowStockNotified = false
	}
	i.touch(actor)

	i.AddDomainEvent(NewItemQuantityChangedEvent(i, delta))
	return NewAdjustEntry(i.ID, actor, delta, i.Quantity), nil
}

// PreviewEdit computes the field-by-field diff an edit would apply, without
// mutating the item. An empty diff means the edit would be a no-op.
func (i *Item) PreviewEdit(fields ItemFields) (EditDiff, error) {
	fields.normalize()
	if err := fields.validate(false); err != nil {
		return nil, err
	}

	diff := EditDiff{}
	if fields.Name != i.Name {
		diff["name"] = FieldChange{Old: i.Name, New: fields.Name}
	}
	if fields.Quantity != i.Quantity {
		diff["quantity"] = FieldChange{Old: i.Quantity, New: fields.Quantity}
	}
	if fields.MinStock != i.MinStock {
		diff["min_stock"] = FieldChange{Old: i.MinStock, New: fields.MinStock}
	}
	if !equalDates(fields.ExpiryDate, i.ExpiryDate) {
		diff["expiry_date"] = FieldChange{Old: formatDate(i.ExpiryDate), New: formatDate(fields.ExpiryDate)}
	}
	if fields.LotNumber != i.LotNumber {
		diff["lot_number"] = FieldChange{Old: i.LotNumber, New: fields.LotNumber}
	}
	if fields.PackagingType != i.PackagingType {
		diff["packaging_type"] = FieldChange{Old: i.PackagingType, New: fields.PackagingType}
	}
	if fields.Code != i.Code {
		diff["code"] = FieldChange{Old: i.Code, New: fields.Code}
	}
	if fields.Temperature != i.Temperature {
		diff["temperature"] = FieldChange{Old: i.Temperature, New: fields.Temperature}
	}
	if fields.Section != i.Section {
		diff["section"] = FieldChange{Old: i.Section, New: fields.Section}
	}
	return diff, nil
}

// ApplyEdit applies a confirmed edit. When nothing differs it performs no
// mutation and returns a nil log entry.
func (i *Item) ApplyEdit(fields ItemFields, actor UserRef) (*ActivityLogEntry, error) {
	diff, err := i.PreviewEdit(fields)
	if err != nil {
		return nil, err
	}
	if len(diff) == 0 {
		return nil, nil
	}

	fields.normalize()
	i.Name = fields.Name
	i.Quantity = fields.Quantity
	i.MinStock = fields.MinStock
	i.ExpiryDate = fields.ExpiryDate
	i.LotNumber = fields.LotNumber
	i.PackagingType = fields.PackagingType
	i.Code = fields.Code
	i.Temperature = fields.Temperature
	i.Section = fields.Section
	i.touch(actor)

	i.AddDomainEvent(NewItemEditedEvent(i, diff))
	return NewEditEntry(i.ID, actor, diff), nil
}

// MarkLowStockNotified sets the low-stock dedup flag. The flag stays set
// until a restock clears it, so an item alerts at most once per episode.
func (i *Item) MarkLowStockNotified() {
	i.LowStockNotified = true
	i.UpdatedAt = time.Now()
}

// MarkExpiryWarningNotified sets the expiry dedup flag
func (i *Item) MarkExpiryWarningNotified() {
	i.ExpiryWarningNotified = true
	i.UpdatedAt = time.Now()
}

// ResetNotificationFlags clears both dedup flags so suppressed alerts can
// re-fire, used on restore.
func (i *Item) ResetNotificationFlags() {
	i.LowStockNotified = false
	i.ExpiryWarningNotified = false
}

// IsLowStock reports whether the item is at or below its threshold
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.MinStock
}

// IsExpiringOrExpired reports whether the item is expired or expires within
// the warning window of now. The window boundary counts as expiring.
func (i *Item) IsExpiringOrExpired(now time.Time) bool {
	if i.ExpiryDate == nil {
		return false
	}
	return !i.ExpiryDate.After(now.Add(ExpiryWarningWindow))
}

func (i *Item) touch(actor UserRef) {
	i.UpdatedBy = actor
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

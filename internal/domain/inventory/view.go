package inventory

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StatusFilter narrows a view to items in a derived condition
type StatusFilter string

const (
	StatusAny      StatusFilter = ""
	StatusLowStock StatusFilter = "low-stock"
	StatusExpiring StatusFilter = "expiring"
)

// SortField selects the view ordering key
type SortField string

const (
	SortByName     SortField = "name"
	SortByExpiry   SortField = "expiry_date"
	SortByQuantity SortField = "quantity"
	SortByLot      SortField = "lot_number"
)

// ViewQuery describes one filtered, sorted view over the item set.
// All filter predicates are conjunctive.
type ViewQuery struct {
	Search      string
	Temperature string
	Section     string
	Status      StatusFilter
	SortBy      SortField
	Descending  bool
}

// Metrics are the dashboard aggregates over the full item set
type Metrics struct {
	TotalItems    int `json:"total_items"`
	TotalQuantity int `json:"total_quantity"`
	LowStockCount int `json:"low_stock_count"`
	ExpiringCount int `json:"expiring_count"`
}

var caseInsensitive = collate.New(language.Und, collate.IgnoreCase)

// ComputeMetrics derives the aggregate counts. Expired and soon-expiring
// items share one bucket and are never double-counted.
func ComputeMetrics(items []Item, now time.Time) Metrics {
	m := Metrics{TotalItems: len(items)}
	for idx := range items {
		m.TotalQuantity += items[idx].Quantity
		if items[idx].IsLowStock() {
			m.LowStockCount++
		}
		if items[idx].IsExpiringOrExpired(now) {
			m.ExpiringCount++
		}
	}
	return m
}

// ApplyView filters and sorts a point-in-time copy of the item set.
// The input slice is not modified.
func ApplyView(items []Item, query ViewQuery, now time.Time) []Item {
	out := make([]Item, 0, len(items))
	for idx := range items {
		if matchesQuery(&items[idx], query, now) {
			out = append(out, items[idx])
		}
	}
	sortItems(out, query.SortBy, query.Descending)
	return out
}

func matchesQuery(item *Item, query ViewQuery, now time.Time) bool {
	if query.Search != "" {
		needle := strings.ToLower(query.Search)
		if !strings.Contains(strings.ToLower(item.Name), needle) &&
			!strings.Contains(strings.ToLower(item.Code), needle) &&
			!strings.Contains(strings.ToLower(item.LotNumber), needle) &&
			!strings.Contains(strings.ToLower(item.Section), needle) {
			return false
		}
	}
	if query.Temperature != "" && item.Temperature != query.Temperature {
		return false
	}
	if query.Section != "" && item.Section != query.Section {
		return false
	}
	switch query.Status {
	case StatusLowStock:
		if !item.IsLowStock() {
			return false
		}
	case StatusExpiring:
		if !item.IsExpiringOrExpired(now) {
			return false
		}
	}
	return true
}

// sortItems orders in place. Missing expiry dates sort as infinitely far in
// the future; missing lot numbers sort as the empty string.
func sortItems(items []Item, field SortField, descending bool) {
	less := func(a, b *Item) bool { return caseInsensitive.CompareString(a.Name, b.Name) < 0 }
	switch field {
	case SortByQuantity:
		less = func(a, b *Item) bool { return a.Quantity < b.Quantity }
	case SortByLot:
		less = func(a, b *Item) bool { return caseInsensitive.CompareString(a.LotNumber, b.LotNumber) < 0 }
	case SortByExpiry:
		less = func(a, b *Item) bool {
			switch {
			case a.ExpiryDate == nil && b.ExpiryDate == nil:
				return false
			case a.ExpiryDate == nil:
				return false
			case b.ExpiryDate == nil:
				return true
			default:
				return a.ExpiryDate.Before(*b.ExpiryDate)
			}
		}
	}

	sort.SliceStable(items, func(x, y int) bool {
		if descending {
			return less(&items[y], &items[x])
		}
		return less(&items[x], &items[y])
	})
}

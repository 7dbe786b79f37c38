package inventory

import "strings"

// MatchKind tags how a duplicate conflict was found
type MatchKind string

const (
	MatchByLot  MatchKind = "lot"
	MatchByName MatchKind = "name"
)

// DuplicateItemInfo references a conflicting existing item. Transient; never
// persisted.
type DuplicateItemInfo struct {
	Item  *Item     `json:"item"`
	Match MatchKind `json:"match"`
}

// FindDuplicate decides create-vs-edit-existing for a candidate new item.
//
// A non-empty lot number is the more specific identifier: two different lots
// of the same reagent are legitimately distinct items, so the lot is matched
// first. Bare-name matching applies only to lot-less items, avoiding false
// positives across lots.
func FindDuplicate(existing []Item, name, lotNumber string) *DuplicateItemInfo {
	name = strings.TrimSpace(name)
	lotNumber = strings.TrimSpace(lotNumber)

	if lotNumber != "" {
		for idx := range existing {
			if strings.EqualFold(existing[idx].LotNumber, lotNumber) {
				return &DuplicateItemInfo{Item: &existing[idx], Match: MatchByLot}
			}
		}
		return nil
	}

	for idx := range existing {
		if existing[idx].LotNumber == "" && strings.EqualFold(existing[idx].Name, name) {
			return &DuplicateItemInfo{Item: &existing[idx], Match: MatchByName}
		}
	}
	return nil
}

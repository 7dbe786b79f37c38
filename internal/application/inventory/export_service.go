package inventory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	domain "github.com/labstock/backend/internal/domain/inventory"
)

// exportHeader is the fixed column order of the CSV export
var exportHeader = []string{
	"ID", "Name", "Quantity", "Min Stock", "Code", "Lot Number",
	"Packaging Type", "Temperature", "Section", "Expiry Date",
	"Created By", "Last Modified By", "Created At", "Updated At",
}

// ExportService writes the full item set as CSV
type ExportService struct {
	itemRepo domain.ItemRepository
}

// NewExportService creates a new ExportService
func NewExportService(itemRepo domain.ItemRepository) *ExportService {
	return &ExportService{itemRepo: itemRepo}
}

// WriteCSV streams all live items to w in name order
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) error {
	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for idx := range items {
		if err := writer.Write(exportRow(&items[idx])); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func exportRow(item *domain.Item) []string {
	expiry := ""
	if item.ExpiryDate != nil {
		expiry = item.ExpiryDate.Format("2006-01-02")
	}
	return []string{
		item.ID.String(),
		item.Name,
		strconv.Itoa(item.Quantity),
		strconv.Itoa(item.MinStock),
		item.Code,
		item.LotNumber,
		item.PackagingType,
		item.Temperature,
		item.Section,
		expiry,
		item.CreatedBy.Label(),
		item.UpdatedBy.Label(),
		item.CreatedAt.Format("2006-01-02 15:04:05"),
		item.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

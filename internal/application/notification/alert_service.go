// Package notification runs the periodic low-stock and expiry scans and
// delivers alert emails.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/infrastructure/mailer"
	"github.com/labstock/backend/internal/infrastructure/scheduler"
	"github.com/labstock/backend/internal/infrastructure/telemetry"
)

// AlertService scans the item store for alert conditions and sends one email
// per triggering item. The per-item dedup flag is set only after the mail was
// accepted for delivery, so a failed send is retried on the next cycle.
type AlertService struct {
	itemRepo inventory.ItemRepository
	mailer   mailer.Mailer
	logger   *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(itemRepo inventory.ItemRepository, m mailer.Mailer, logger *zap.Logger) *AlertService {
	return &AlertService{
		itemRepo: itemRepo,
		mailer:   m,
		logger:   logger,
	}
}

// Execute runs one alert scan job
func (s *AlertService) Execute(ctx context.Context, job *scheduler.Job) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "alert", "scan",
		telemetry.WithAttribute(telemetry.SpanAttrScanType, string(job.ScanType)))
	defer span.End()

	var err error
	switch job.ScanType {
	case scheduler.ScanTypeLowStock:
		err = s.scanLowStock(ctx)
	case scheduler.ScanTypeExpiry:
		err = s.scanExpiry(ctx)
	default:
		err = fmt.Errorf("unknown scan type %q", job.ScanType)
	}
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// scanLowStock alerts on items at or below their threshold that have not
// alerted in the current episode.
func (s *AlertService) scanLowStock(ctx context.Context) error {
	items, err := s.itemRepo.FindLowStockUnnotified(ctx)
	if err != nil {
		return fmt.Errorf("low stock scan query failed: %w", err)
	}

	var failed int
	for idx := range items {
		item := &items[idx]

		// Re-check against the freshly loaded row; the queue may run well
		// after the query.
		if !item.IsLowStock() || item.LowStockNotified {
			continue
		}

		msg := mailer.Message{
			Subject: fmt.Sprintf("Low stock: %s", item.Name),
			Body:    lowStockBody(item),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			failed++
			s.logger.Error("Failed to send low stock alert",
				zap.String("item_id", item.ID.String()),
				zap.String("item_name", item.Name),
				zap.Error(err),
			)
			continue
		}

		item.MarkLowStockNotified()
		if err := s.itemRepo.Save(ctx, item); err != nil {
			s.logger.Error("Failed to persist low stock flag",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Low stock alert sent",
			zap.String("item_id", item.ID.String()),
			zap.String("item_name", item.Name),
			zap.Int("quantity", item.Quantity),
			zap.Int("min_stock", item.MinStock),
		)
	}

	if failed > 0 {
		return fmt.Errorf("low stock scan: %d of %d alerts failed", failed, len(items))
	}
	return nil
}

// scanExpiry alerts on items expired or expiring within the warning window
func (s *AlertService) scanExpiry(ctx context.Context) error {
	deadline := time.Now().Add(inventory.ExpiryWarningWindow)
	items, err := s.itemRepo.FindExpiringUnnotified(ctx, deadline)
	if err != nil {
		return fmt.Errorf("expiry scan query failed: %w", err)
	}

	var failed int
	for idx := range items {
		item := &items[idx]
		if item.ExpiryWarningNotified || !item.IsExpiringOrExpired(time.Now()) {
			continue
		}

		msg := mailer.Message{
			Subject: fmt.Sprintf("Expiry warning: %s", item.Name),
			Body:    expiryBody(item),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			failed++
			s.logger.Error("Failed to send expiry alert",
				zap.String("item_id", item.ID.String()),
				zap.String("item_name", item.Name),
				zap.Error(err),
			)
			continue
		}

		item.MarkExpiryWarningNotified()
		if err := s.itemRepo.Save(ctx, item); err != nil {
			s.logger.Error("Failed to persist expiry flag",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Expiry alert sent",
			zap.String("item_id", item.ID.String()),
			zap.String("item_name", item.Name),
		)
	}

	if failed > 0 {
		return fmt.Errorf("expiry scan: %d of %d alerts failed", failed, len(items))
	}
	return nil
}

func lowStockBody(item *inventory.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Item %q is low on stock.\n\n", item.Name)
	fmt.Fprintf(&b, "Current quantity: %d\n", item.Quantity)
	fmt.Fprintf(&b, "Minimum stock:    %d\n", item.MinStock)
	if item.LotNumber != "" {
		fmt.Fprintf(&b, "Lot number:       %s\n", item.LotNumber)
	}
	if item.Section != "" {
		fmt.Fprintf(&b, "Section:          %s\n", item.Section)
	}
	return b.String()
}

func expiryBody(item *inventory.Item) string {
	var b strings.Builder
	expiry := item.ExpiryDate.Format("2006-01-02")
	if item.ExpiryDate.Before(time.Now()) {
		fmt.Fprintf(&b, "Item %q expired on %s.\n\n", item.Name, expiry)
	} else {
		fmt.Fprintf(&b, "Item %q expires on %s.\n\n", item.Name, expiry)
	}
	fmt.Fprintf(&b, "Current quantity: %d\n", item.Quantity)
	if item.LotNumber != "" {
		fmt.Fprintf(&b, "Lot number:       %s\n", item.LotNumber)
	}
	if item.Section != "" {
		fmt.Fprintf(&b, "Section:          %s\n", item.Section)
	}
	return b.String()
}

var _ scheduler.JobExecutor = (*AlertService)(nil)

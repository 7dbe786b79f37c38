package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/labstock/backend/internal/domain/inventory"
)

type txKey struct{}

// GormTransactionManager runs functions inside one GORM transaction. The
// transaction handle travels through the context so repositories used inside
// the callback share it transparently.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new transaction manager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction executes fn inside a transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

var _ inventory.TransactionManager = (*GormTransactionManager)(nil)

// dbFromContext returns the transaction carried by ctx, or fallback when the
// caller is not inside a transaction.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

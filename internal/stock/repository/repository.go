package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/stock/domain"
	"github.com/tair/retail-core/pkg/metrics"
)

// ApplyMovement mutates a product's on-hand quantity and records the ledger
// row, inside the caller's transaction. The guarded UPDATE keeps stock from
// going negative even without a prior row lock.
func ApplyMovement(ctx context.Context, db *gorm.DB, m domain.Movement) (*domain.StockTransaction, error) {
	result := db.WithContext(ctx).
		Model(&productdomain.Product{}).
		Where("id = ? AND stock_qty + ? >= 0", m.ProductID, m.Quantity).
		Update("stock_qty", gorm.Expr("stock_qty + ?", m.Quantity))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var product productdomain.Product
		err := db.WithContext(ctx).First(&product, m.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, productdomain.ErrNotFound
			}
			return nil, fmt.Errorf("failed to find product: %w", err)
		}
		return nil, &domain.InsufficientStockError{
			ProductID: m.ProductID,
			Available: product.StockQty,
			Requested: -m.Quantity,
		}
	}

	transaction := &domain.StockTransaction{
		ProductID: m.ProductID,
		UserID:    m.ActorID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Reason:    m.Reason,
	}
	if err := db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to record stock transaction: %w", err)
	}

	metrics.StockMovements.WithLabelValues(m.Type).Inc()
	return transaction, nil
}

// GormLedger implements domain.Ledger using Gorm
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger creates a new stock ledger
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

// Transact runs fn inside a database transaction
func (l *GormLedger) Transact(ctx context.Context, fn func(domain.Ledger) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormLedger{db: tx})
	})
}

// Product finds a product by ID
func (l *GormLedger) Product(ctx context.Context, id uint) (*productdomain.Product, error) {
	var product productdomain.Product
	err := l.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productdomain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// ProductForUpdate finds a product and takes a row lock on it
func (l *GormLedger) ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error) {
	var product productdomain.Product
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productdomain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return &product, nil
}

// Apply mutates stock and records the ledger row
func (l *GormLedger) Apply(ctx context.Context, movement domain.Movement) (*domain.StockTransaction, error) {
	return ApplyMovement(ctx, l.db, movement)
}

// MovementsByProduct returns a product's ledger rows, newest first
func (l *GormLedger) MovementsByProduct(ctx context.Context, productID uint, limit, offset int) ([]domain.StockTransaction, error) {
	var transactions []domain.StockTransaction
	err := l.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stock transactions: %w", err)
	}
	return transactions, nil
}

// SumByProduct returns the signed sum of a product's ledger rows
func (l *GormLedger) SumByProduct(ctx context.Context, productID uint) (int64, error) {
	var sum int64
	err := l.db.WithContext(ctx).
		Model(&domain.StockTransaction{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum stock transactions: %w", err)
	}
	return sum, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	stockrepository "github.com/tair/retail-core/internal/stock/repository"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

// GormStore implements domain.Store using Gorm
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new sale store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// InTransaction runs fn inside a database transaction
func (s *GormStore) InTransaction(ctx context.Context, fn func(domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// ProductForUpdate finds a product and takes a row lock on it
func (s *GormStore) ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error) {
	var product productdomain.Product
	err := s.db.WithContext(ctx).
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

// CountSalesSince counts a tenant's sales created at or after the given time
func (s *GormStore) CountSalesSince(ctx context.Context, tenantID uint, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("tenant_id = ? AND created_at >= ?", tenantID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return count, nil
}

// ReferenceExists reports whether a sale already holds the reference
func (s *GormStore) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("reference = ?", reference).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return count > 0, nil
}

// CreateSale inserts a sale together with its items. A unique index on the
// reference column backstops the in-transaction uniqueness check.
func (s *GormStore) CreateSale(ctx context.Context, sale *domain.Sale) error {
	if err := s.db.WithContext(ctx).Create(sale).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrReferenceCollision
		}
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

// FindByID finds a sale with its items
func (s *GormStore) FindByID(ctx context.Context, id uint) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.WithContext(ctx).
		Preload("Items").
		First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}
	return &sale, nil
}

// List returns sales visible to the scope, newest first
func (s *GormStore) List(ctx context.Context, scope tenantdomain.Scope, limit, offset int) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := scope.Apply(s.db.WithContext(ctx)).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// UpdateStatus transitions a sale to the given status. The update is guarded
// so two concurrent transitions to the same status cannot both succeed; the
// loser sees ErrInvalidState and must not apply compensating movements.
func (s *GormStore) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := s.db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ? AND status <> ?", id, status).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update sale status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&domain.Sale{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check sale: %w", err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: sale %d is already %s", domain.ErrInvalidState, id, status)
	}
	return nil
}

// ApplyMovement mutates stock and records the ledger row
func (s *GormStore) ApplyMovement(ctx context.Context, movement stockdomain.Movement) (*stockdomain.StockTransaction, error) {
	return stockrepository.ApplyMovement(ctx, s.db, movement)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/retail-core/internal/product/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

// GormProductRepository implements domain.ProductRepository using Gorm
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// List returns products visible to the scope, newest first
func (r *GormProductRepository) List(ctx context.Context, scope tenantdomain.Scope, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := scope.Apply(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListLowStock returns products at or below their reorder threshold
func (r *GormProductRepository) ListLowStock(ctx context.Context, scope tenantdomain.Scope) ([]domain.Product, error) {
	var products []domain.Product
	err := scope.Apply(r.db.WithContext(ctx)).
		Where("stock_qty <= min_stock").
		Order("stock_qty ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

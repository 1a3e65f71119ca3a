package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/retail-core/internal/tenant/domain"
)

// GormTenantRepository implements domain.TenantRepository using Gorm
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new tenant repository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uint) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).First(&tenant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}
	return &tenant, nil
}

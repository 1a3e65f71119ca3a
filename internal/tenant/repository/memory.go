package repository

import (
	"context"
	"sync"

	"github.com/tair/retail-core/internal/tenant/domain"
)

// MemoryTenantRepository is an in-memory domain.TenantRepository for tests
type MemoryTenantRepository struct {
	mu      sync.RWMutex
	tenants map[uint]domain.Tenant
}

// NewMemoryTenantRepository creates an empty in-memory tenant repository
func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{tenants: make(map[uint]domain.Tenant)}
}

// Seed stores a tenant, overwriting any existing entry with the same ID
func (r *MemoryTenantRepository) Seed(tenant domain.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[tenant.ID] = tenant
}

// FindByID finds a tenant by ID
func (r *MemoryTenantRepository) FindByID(ctx context.Context, id uint) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, ok := r.tenants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := tenant
	return &copied, nil
}

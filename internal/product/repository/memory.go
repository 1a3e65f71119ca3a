package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/tair/retail-core/internal/product/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

// MemoryProductRepository is an in-memory domain.ProductRepository for tests
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[uint]domain.Product
	nextID   uint
}

// NewMemoryProductRepository creates an empty in-memory product repository
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]domain.Product),
		nextID:   1,
	}
}

// Create inserts a new product, assigning an ID if unset
func (r *MemoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
	} else if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	r.products[product.ID] = *product
	return nil
}

// FindByID finds a product by ID
func (r *MemoryProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := product
	return &copied, nil
}

// List returns products visible to the scope
func (r *MemoryProductRepository) List(ctx context.Context, scope tenantdomain.Scope, limit, offset int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []domain.Product
	for _, p := range r.products {
		if scope.Allows(p.TenantID) {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	if offset >= len(products) {
		return nil, nil
	}
	products = products[offset:]
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	return products, nil
}

// ListLowStock returns products at or below their reorder threshold
func (r *MemoryProductRepository) ListLowStock(ctx context.Context, scope tenantdomain.Scope) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []domain.Product
	for _, p := range r.products {
		if scope.Allows(p.TenantID) && p.IsLowStock() {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].StockQty < products[j].StockQty })
	return products, nil
}

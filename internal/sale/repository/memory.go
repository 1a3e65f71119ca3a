package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

// MemoryStore is an in-memory domain.Store for tests. InTransaction works on
// a deep copy of the state and commits it only if fn succeeds, mirroring the
// rollback behavior of the database-backed store.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	products   map[uint]productdomain.Product
	sales      map[uint]domain.Sale
	movements  []stockdomain.StockTransaction
	references map[string]bool
	nextSaleID uint
	nextItemID uint
	nextTxID   uint
}

func (s *memoryState) clone() *memoryState {
	products := make(map[uint]productdomain.Product, len(s.products))
	for id, p := range s.products {
		products[id] = p
	}
	sales := make(map[uint]domain.Sale, len(s.sales))
	for id, sale := range s.sales {
		items := make([]domain.SaleItem, len(sale.Items))
		copy(items, sale.Items)
		sale.Items = items
		sales[id] = sale
	}
	movements := make([]stockdomain.StockTransaction, len(s.movements))
	copy(movements, s.movements)
	references := make(map[string]bool, len(s.references))
	for ref := range s.references {
		references[ref] = true
	}
	return &memoryState{
		products:   products,
		sales:      sales,
		movements:  movements,
		references: references,
		nextSaleID: s.nextSaleID,
		nextItemID: s.nextItemID,
		nextTxID:   s.nextTxID,
	}
}

// NewMemoryStore creates an empty in-memory sale store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			products:   make(map[uint]productdomain.Product),
			sales:      make(map[uint]domain.Sale),
			references: make(map[string]bool),
			nextSaleID: 1,
			nextItemID: 1,
			nextTxID:   1,
		},
	}
}

// SeedProduct stores a product, overwriting any existing entry with the same ID
func (s *MemoryStore) SeedProduct(product productdomain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[product.ID] = product
}

// ProductByID returns a copy of a stored product, or nil if absent
func (s *MemoryStore) ProductByID(id uint) *productdomain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.state.products[id]
	if !ok {
		return nil
	}
	return &product
}

// MovementsByProduct returns copies of a product's ledger rows in insert order
func (s *MemoryStore) MovementsByProduct(productID uint) []stockdomain.StockTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []stockdomain.StockTransaction
	for _, m := range s.state.movements {
		if m.ProductID == productID {
			result = append(result, m)
		}
	}
	return result
}

// SumMovements returns the signed sum of a product's ledger rows
func (s *MemoryStore) SumMovements(productID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, m := range s.state.movements {
		if m.ProductID == productID {
			sum += m.Quantity
		}
	}
	return sum
}

// SaleCount returns the number of stored sales
func (s *MemoryStore) SaleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.sales)
}

// InTransaction runs fn against a snapshot and commits it only on success
func (s *MemoryStore) InTransaction(ctx context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&memoryTx{state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// ProductForUpdate finds a product by ID
func (s *MemoryStore) ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memoryTx{state: s.state}).ProductForUpdate(ctx, id)
}

// CountSalesSince counts a tenant's sales created at or after the given time
func (s *MemoryStore) CountSalesSince(ctx context.Context, tenantID uint, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memoryTx{state: s.state}).CountSalesSince(ctx, tenantID, since)
}

// ReferenceExists reports whether a sale already holds the reference
func (s *MemoryStore) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memoryTx{state: s.state}).ReferenceExists(ctx, reference)
}

// CreateSale inserts a sale together with its items
func (s *MemoryStore) CreateSale(ctx context.Context, sale *domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memoryTx{state: s.state}).CreateSale(ctx, sale)
}

// FindByID finds a sale with its items
func (s *MemoryStore) FindByID(ctx context.Context, id uint) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memoryTx{state: s.state}).FindByID(ctx, id)
}

// List returns sales visible to the scope
func (s *MemoryStore) List(ctx context.Context, scope tenantdomain.Scope, limit, offset int) ([]domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memoryTx{state: s.state}).List(ctx, scope, limit, offset)
}

// UpdateStatus sets a sale's status
func (s *MemoryStore) UpdateStatus(ctx context.Context, id uint, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memoryTx{state: s.state}).UpdateStatus(ctx, id, status)
}

// ApplyMovement mutates stock and records the ledger row
func (s *MemoryStore) ApplyMovement(ctx context.Context, movement stockdomain.Movement) (*stockdomain.StockTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memoryTx{state: s.state}).ApplyMovement(ctx, movement)
}

type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) InTransaction(ctx context.Context, fn func(domain.Store) error) error {
	return fn(t)
}

func (t *memoryTx) ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error) {
	product, ok := t.state.products[id]
	if !ok {
		return nil, productdomain.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (t *memoryTx) CountSalesSince(ctx context.Context, tenantID uint, since time.Time) (int64, error) {
	var count int64
	for _, sale := range t.state.sales {
		if sale.TenantID == tenantID && !sale.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (t *memoryTx) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	return t.state.references[reference], nil
}

func (t *memoryTx) CreateSale(ctx context.Context, sale *domain.Sale) error {
	if t.state.references[sale.Reference] {
		return domain.ErrReferenceCollision
	}
	sale.ID = t.state.nextSaleID
	t.state.nextSaleID++
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	for i := range sale.Items {
		sale.Items[i].ID = t.state.nextItemID
		sale.Items[i].SaleID = sale.ID
		t.state.nextItemID++
	}

	stored := *sale
	stored.Items = make([]domain.SaleItem, len(sale.Items))
	copy(stored.Items, sale.Items)
	t.state.sales[sale.ID] = stored
	t.state.references[sale.Reference] = true
	return nil
}

func (t *memoryTx) FindByID(ctx context.Context, id uint) (*domain.Sale, error) {
	sale, ok := t.state.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	items := make([]domain.SaleItem, len(sale.Items))
	copy(items, sale.Items)
	sale.Items = items
	return &sale, nil
}

func (t *memoryTx) List(ctx context.Context, scope tenantdomain.Scope, limit, offset int) ([]domain.Sale, error) {
	var sales []domain.Sale
	for _, sale := range t.state.sales {
		if scope.Allows(sale.TenantID) {
			sales = append(sales, sale)
		}
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].ID > sales[j].ID })

	if offset >= len(sales) {
		return nil, nil
	}
	sales = sales[offset:]
	if limit > 0 && limit < len(sales) {
		sales = sales[:limit]
	}
	return sales, nil
}

func (t *memoryTx) UpdateStatus(ctx context.Context, id uint, status string) error {
	sale, ok := t.state.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	if sale.Status == status {
		return fmt.Errorf("%w: sale %d is already %s", domain.ErrInvalidState, id, status)
	}
	sale.Status = status
	t.state.sales[id] = sale
	return nil
}

func (t *memoryTx) ApplyMovement(ctx context.Context, movement stockdomain.Movement) (*stockdomain.StockTransaction, error) {
	product, ok := t.state.products[movement.ProductID]
	if !ok {
		return nil, productdomain.ErrNotFound
	}
	if product.StockQty+movement.Quantity < 0 {
		return nil, &stockdomain.InsufficientStockError{
			ProductID: movement.ProductID,
			Available: product.StockQty,
			Requested: -movement.Quantity,
		}
	}
	product.StockQty += movement.Quantity
	t.state.products[movement.ProductID] = product

	transaction := stockdomain.StockTransaction{
		ID:        t.state.nextTxID,
		ProductID: movement.ProductID,
		UserID:    movement.ActorID,
		Type:      movement.Type,
		Quantity:  movement.Quantity,
		Reason:    movement.Reason,
	}
	t.state.nextTxID++
	t.state.movements = append(t.state.movements, transaction)
	return &transaction, nil
}

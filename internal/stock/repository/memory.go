package repository

import (
	"context"
	"sync"

	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/stock/domain"
)

// MemoryLedger is an in-memory domain.Ledger for tests. Transact snapshots
// state so a failing fn leaves nothing behind.
type MemoryLedger struct {
	mu    sync.Mutex
	state *ledgerState
}

type ledgerState struct {
	products  map[uint]productdomain.Product
	movements []domain.StockTransaction
	nextTxID  uint
}

func (s *ledgerState) clone() *ledgerState {
	products := make(map[uint]productdomain.Product, len(s.products))
	for id, p := range s.products {
		products[id] = p
	}
	movements := make([]domain.StockTransaction, len(s.movements))
	copy(movements, s.movements)
	return &ledgerState{
		products:  products,
		movements: movements,
		nextTxID:  s.nextTxID,
	}
}

// NewMemoryLedger creates an empty in-memory stock ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		state: &ledgerState{
			products: make(map[uint]productdomain.Product),
			nextTxID: 1,
		},
	}
}

// SeedProduct stores a product, overwriting any existing entry with the same ID
func (l *MemoryLedger) SeedProduct(product productdomain.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.products[product.ID] = product
}

// Transact runs fn against a snapshot and commits it only on success
func (l *MemoryLedger) Transact(ctx context.Context, fn func(domain.Ledger) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	work := l.state.clone()
	if err := fn(&memoryLedgerTx{state: work}); err != nil {
		return err
	}
	l.state = work
	return nil
}

// Product finds a product by ID
func (l *MemoryLedger) Product(ctx context.Context, id uint) (*productdomain.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return (&memoryLedgerTx{state: l.state}).Product(ctx, id)
}

// ProductForUpdate finds a product by ID
func (l *MemoryLedger) ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error) {
	return l.Product(ctx, id)
}

// Apply mutates stock and records the ledger row
func (l *MemoryLedger) Apply(ctx context.Context, movement domain.Movement) (*domain.StockTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return (&memoryLedgerTx{state: l.state}).Apply(ctx, movement)
}

// MovementsByProduct returns a product's ledger rows, newest first
func (l *MemoryLedger) MovementsByProduct(ctx context.Context, productID uint, limit, offset int) ([]domain.StockTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return (&memoryLedgerTx{state: l.state}).MovementsByProduct(ctx, productID, limit, offset)
}

// SumByProduct returns the signed sum of a product's ledger rows
func (l *MemoryLedger) SumByProduct(ctx context.Context, productID uint) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return (&memoryLedgerTx{state: l.state}).SumByProduct(ctx, productID)
}

type memoryLedgerTx struct {
	state *ledgerState
}

func (t *memoryLedgerTx) Transact(ctx context.Context, fn func(domain.Ledger) error) error {
	return fn(t)
}

func (t *memoryLedgerTx) Product(ctx context.Context, id uint) (*productdomain.Product, error) {
	product, ok := t.state.products[id]
	if !ok {
		return nil, productdomain.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (t *memoryLedgerTx) ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error) {
	return t.Product(ctx, id)
}

func (t *memoryLedgerTx) Apply(ctx context.Context, movement domain.Movement) (*domain.StockTransaction, error) {
	product, ok := t.state.products[movement.ProductID]
	if !ok {
		return nil, productdomain.ErrNotFound
	}
	if product.StockQty+movement.Quantity < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: movement.ProductID,
			Available: product.StockQty,
			Requested: -movement.Quantity,
		}
	}
	product.StockQty += movement.Quantity
	t.state.products[movement.ProductID] = product

	transaction := domain.StockTransaction{
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

func (t *memoryLedgerTx) MovementsByProduct(ctx context.Context, productID uint, limit, offset int) ([]domain.StockTransaction, error) {
	var result []domain.StockTransaction
	for i := len(t.state.movements) - 1; i >= 0; i-- {
		if t.state.movements[i].ProductID == productID {
			result = append(result, t.state.movements[i])
		}
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (t *memoryLedgerTx) SumByProduct(ctx context.Context, productID uint) (int64, error) {
	var sum int64
	for _, m := range t.state.movements {
		if m.ProductID == productID {
			sum += int64(m.Quantity)
		}
	}
	return sum, nil
}

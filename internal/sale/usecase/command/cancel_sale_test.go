package command

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	"github.com/tair/retail-core/internal/sale/repository"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

func committedSale(t *testing.T, store *repository.MemoryStore, events EventPublisher) *domain.Sale {
	t.Helper()
	seedProduct(store, 1, 1, "10.00", 5, 0)
	handler := NewCreateSaleHandler(store, newTestPolicy(), events)

	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}
	sale, err := handler.Handle(context.Background(), CreateSaleCommand{
		Actor: seller,
		Items: []SaleItemInput{{ProductID: 1, Quantity: 3}},
	})
	require.NoError(t, err)
	return sale
}

func TestCancelSale(t *testing.T) {
	store := repository.NewMemoryStore()
	events := &capturedEvents{}
	sale := committedSale(t, store, events)
	handler := NewCancelSaleHandler(store, events)

	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}
	cancelled, err := handler.Handle(context.Background(), CancelSaleCommand{
		Actor:  seller,
		SaleID: sale.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	// Stock restored through a compensating RETURN movement
	assert.Equal(t, 5, store.ProductByID(1).StockQty)
	movements := store.MovementsByProduct(1)
	require.Len(t, movements, 2)
	assert.Equal(t, stockdomain.MovementReturn, movements[1].Type)
	assert.Equal(t, 3, movements[1].Quantity)

	// The ledger sums to zero over the sale's lifecycle
	assert.Equal(t, 0, store.SumMovements(1))

	require.Len(t, events.cancelled, 1)
	assert.Equal(t, sale.ID, events.cancelled[0].SaleID)
}

func TestCancelSaleTwice(t *testing.T) {
	store := repository.NewMemoryStore()
	sale := committedSale(t, store, nil)
	handler := NewCancelSaleHandler(store, nil)

	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}
	_, err := handler.Handle(context.Background(), CancelSaleCommand{Actor: seller, SaleID: sale.ID})
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), CancelSaleCommand{Actor: seller, SaleID: sale.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Stock restored exactly once
	assert.Equal(t, 5, store.ProductByID(1).StockQty)
}

func TestCancelSaleAccess(t *testing.T) {
	store := repository.NewMemoryStore()
	sale := committedSale(t, store, nil)
	handler := NewCancelSaleHandler(store, nil)

	t.Run("foreign tenant", func(t *testing.T) {
		outsider := identity.Actor{ID: 8, Role: identity.RoleSeller, TenantID: uintPtr(2)}
		_, err := handler.Handle(context.Background(), CancelSaleCommand{Actor: outsider, SaleID: sale.ID})
		assert.ErrorIs(t, err, tenantdomain.ErrAccessDenied)
	})

	t.Run("platform actor", func(t *testing.T) {
		platform := identity.Actor{ID: 9, Role: identity.RoleSuperAdmin}
		cancelled, err := handler.Handle(context.Background(), CancelSaleCommand{Actor: platform, SaleID: sale.ID})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	})

	t.Run("role without capability", func(t *testing.T) {
		viewer := identity.Actor{ID: 10, Role: "viewer", TenantID: uintPtr(1)}
		_, err := handler.Handle(context.Background(), CancelSaleCommand{Actor: viewer, SaleID: sale.ID})
		assert.ErrorIs(t, err, identity.ErrUnauthorized)
	})
}

// readCommittedStore runs transaction callbacks directly against the shared
// state instead of a serialized snapshot, so two cancels can interleave the
// way concurrent database transactions do under READ COMMITTED. afterRead
// fires after FindByID, letting the test hold both cancels at the point where
// each has seen the sale as COMPLETED.
type readCommittedStore struct {
	domain.Store
	afterRead func()
}

func (s *readCommittedStore) InTransaction(ctx context.Context, fn func(domain.Store) error) error {
	return fn(s)
}

func (s *readCommittedStore) FindByID(ctx context.Context, id uint) (*domain.Sale, error) {
	sale, err := s.Store.FindByID(ctx, id)
	if err == nil && s.afterRead != nil {
		s.afterRead()
	}
	return sale, err
}

func TestCancelSaleConcurrentCancellations(t *testing.T) {
	store := repository.NewMemoryStore()
	sale := committedSale(t, store, nil)

	var barrier sync.WaitGroup
	barrier.Add(2)
	raced := &readCommittedStore{
		Store: store,
		afterRead: func() {
			barrier.Done()
			barrier.Wait()
		},
	}
	handler := NewCancelSaleHandler(raced, nil)
	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = handler.Handle(context.Background(), CancelSaleCommand{
				Actor:  seller,
				SaleID: sale.ID,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidState)
		}
	}
	assert.Equal(t, 1, succeeded)

	// Stock restored exactly once, with a single RETURN row
	assert.Equal(t, 5, store.ProductByID(1).StockQty)
	require.Len(t, store.MovementsByProduct(1), 2)
	assert.Equal(t, 0, store.SumMovements(1))
}

func TestCancelSaleNotFound(t *testing.T) {
	store := repository.NewMemoryStore()
	handler := NewCancelSaleHandler(store, nil)

	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}
	_, err := handler.Handle(context.Background(), CancelSaleCommand{Actor: seller, SaleID: 42})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

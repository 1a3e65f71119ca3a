package command

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/tair/retail-core/internal/identity/domain"
	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/stock/domain"
	"github.com/tair/retail-core/internal/stock/repository"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

func uintPtr(v uint) *uint { return &v }

func newLedger(qty int) *repository.MemoryLedger {
	ledger := repository.NewMemoryLedger()
	ledger.SeedProduct(productdomain.Product{
		ID:       1,
		TenantID: 1,
		Name:     "Product",
		SKU:      "SKU-1",
		Price:    decimal.RequireFromString("10.00"),
		StockQty: qty,
	})
	return ledger
}

func TestRestock(t *testing.T) {
	ledger := newLedger(2)
	handler := NewRestockHandler(ledger)
	admin := identity.Actor{ID: 5, Role: identity.RoleAdmin, TenantID: uintPtr(1)}

	transaction, err := handler.Handle(context.Background(), RestockCommand{
		Actor:     admin,
		ProductID: 1,
		Quantity:  10,
		Reason:    "weekly delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MovementRestock, transaction.Type)
	assert.Equal(t, 10, transaction.Quantity)

	product, err := ledger.Product(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 12, product.StockQty)
}

func TestRestockValidation(t *testing.T) {
	ledger := newLedger(2)
	handler := NewRestockHandler(ledger)
	admin := identity.Actor{ID: 5, Role: identity.RoleAdmin, TenantID: uintPtr(1)}

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), RestockCommand{Actor: admin, ProductID: 1, Quantity: 0})
		assert.Error(t, err)
	})

	t.Run("seller lacks capability", func(t *testing.T) {
		seller := identity.Actor{ID: 6, Role: identity.RoleSeller, TenantID: uintPtr(1)}
		_, err := handler.Handle(context.Background(), RestockCommand{Actor: seller, ProductID: 1, Quantity: 5})
		assert.ErrorIs(t, err, identity.ErrUnauthorized)
	})

	t.Run("foreign tenant product", func(t *testing.T) {
		outsider := identity.Actor{ID: 7, Role: identity.RoleAdmin, TenantID: uintPtr(2)}
		_, err := handler.Handle(context.Background(), RestockCommand{Actor: outsider, ProductID: 1, Quantity: 5})
		assert.ErrorIs(t, err, tenantdomain.ErrAccessDenied)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), RestockCommand{Actor: admin, ProductID: 42, Quantity: 5})
		assert.ErrorIs(t, err, productdomain.ErrNotFound)
	})
}

func TestAdjustStock(t *testing.T) {
	ledger := newLedger(10)
	handler := NewAdjustStockHandler(ledger)
	admin := identity.Actor{ID: 5, Role: identity.RoleAdmin, TenantID: uintPtr(1)}

	t.Run("write-off", func(t *testing.T) {
		transaction, err := handler.Handle(context.Background(), AdjustStockCommand{
			Actor:     admin,
			ProductID: 1,
			Quantity:  -4,
			Reason:    "damaged in storage",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.MovementAdjustment, transaction.Type)
		assert.Equal(t, -4, transaction.Quantity)

		product, err := ledger.Product(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 6, product.StockQty)
	})

	t.Run("cannot drive stock negative", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), AdjustStockCommand{
			Actor:     admin,
			ProductID: 1,
			Quantity:  -100,
			Reason:    "bad count",
		})
		require.ErrorIs(t, err, domain.ErrInsufficientStock)

		// Failed adjustment leaves the quantity untouched
		product, perr := ledger.Product(context.Background(), 1)
		require.NoError(t, perr)
		assert.Equal(t, 6, product.StockQty)
	})

	t.Run("reason required", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), AdjustStockCommand{
			Actor:     admin,
			ProductID: 1,
			Quantity:  -1,
		})
		assert.Error(t, err)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), AdjustStockCommand{
			Actor:     admin,
			ProductID: 1,
			Quantity:  0,
			Reason:    "noop",
		})
		assert.Error(t, err)
	})
}

func TestLedgerRecordsEveryMovement(t *testing.T) {
	ledger := newLedger(0)
	restock := NewRestockHandler(ledger)
	adjust := NewAdjustStockHandler(ledger)
	admin := identity.Actor{ID: 5, Role: identity.RoleAdmin, TenantID: uintPtr(1)}

	_, err := restock.Handle(context.Background(), RestockCommand{Actor: admin, ProductID: 1, Quantity: 20})
	require.NoError(t, err)
	_, err = adjust.Handle(context.Background(), AdjustStockCommand{Actor: admin, ProductID: 1, Quantity: -3, Reason: "count"})
	require.NoError(t, err)

	sum, err := ledger.SumByProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(17), sum)

	product, err := ledger.Product(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 17, product.StockQty)

	movements, err := ledger.MovementsByProduct(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

package command

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/product/repository"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	tenantrepository "github.com/tair/retail-core/internal/tenant/repository"
)

func uintPtr(v uint) *uint { return &v }

func newHandler() (*CreateProductHandler, *repository.MemoryProductRepository) {
	products := repository.NewMemoryProductRepository()
	tenants := tenantrepository.NewMemoryTenantRepository()
	tenants.Seed(tenantdomain.Tenant{ID: 1, Name: "Acme Retail", Status: tenantdomain.StatusActive})
	tenants.Seed(tenantdomain.Tenant{ID: 2, Name: "Dormant Shop", Status: tenantdomain.StatusSuspended})
	return NewCreateProductHandler(products, tenantdomain.NewPolicy(tenants)), products
}

func TestCreateProduct(t *testing.T) {
	handler, products := newHandler()
	admin := identity.Actor{ID: 5, Role: identity.RoleAdmin, TenantID: uintPtr(1)}

	product, err := handler.Handle(context.Background(), CreateProductCommand{
		Actor:    admin,
		Name:     "Espresso Beans 1kg",
		SKU:      "BEAN-1KG",
		Price:    decimal.RequireFromString("24.90"),
		StockQty: 40,
		MinStock: 5,
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.Equal(t, uint(1), product.TenantID)

	stored, err := products.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "BEAN-1KG", stored.SKU)
	assert.Equal(t, 40, stored.StockQty)
}

func TestCreateProductValidation(t *testing.T) {
	handler, _ := newHandler()
	admin := identity.Actor{ID: 5, Role: identity.RoleAdmin, TenantID: uintPtr(1)}

	tests := []struct {
		name string
		cmd  CreateProductCommand
	}{
		{"missing name", CreateProductCommand{Actor: admin, SKU: "X", Price: decimal.New(1, 0)}},
		{"missing sku", CreateProductCommand{Actor: admin, Name: "X", Price: decimal.New(1, 0)}},
		{"negative price", CreateProductCommand{Actor: admin, Name: "X", SKU: "X", Price: decimal.New(-1, 0)}},
		{"negative stock", CreateProductCommand{Actor: admin, Name: "X", SKU: "X", Price: decimal.New(1, 0), StockQty: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tt.cmd)
			assert.Error(t, err)
		})
	}
}

func TestCreateProductAccess(t *testing.T) {
	handler, _ := newHandler()

	t.Run("seller lacks capability", func(t *testing.T) {
		seller := identity.Actor{ID: 6, Role: identity.RoleSeller, TenantID: uintPtr(1)}
		_, err := handler.Handle(context.Background(), CreateProductCommand{
			Actor: seller, Name: "X", SKU: "X", Price: decimal.New(1, 0),
		})
		assert.ErrorIs(t, err, identity.ErrUnauthorized)
	})

	t.Run("foreign tenant", func(t *testing.T) {
		admin := identity.Actor{ID: 5, Role: identity.RoleAdmin, TenantID: uintPtr(1)}
		_, err := handler.Handle(context.Background(), CreateProductCommand{
			Actor: admin, TenantID: 2, Name: "X", SKU: "X", Price: decimal.New(1, 0),
		})
		assert.ErrorIs(t, err, tenantdomain.ErrAccessDenied)
	})

	t.Run("suspended tenant", func(t *testing.T) {
		platform := identity.Actor{ID: 9, Role: identity.RoleSuperAdmin}
		_, err := handler.Handle(context.Background(), CreateProductCommand{
			Actor: platform, TenantID: 2, Name: "X", SKU: "X", Price: decimal.New(1, 0),
		})
		assert.ErrorIs(t, err, tenantdomain.ErrSuspended)
	})
}

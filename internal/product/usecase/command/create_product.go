package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/product/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	"github.com/tair/retail-core/pkg/logger"
)

// CreateProductCommand registers a new product for a tenant
type CreateProductCommand struct {
	Actor    identity.Actor
	TenantID uint
	Name     string
	SKU      string
	Price    decimal.Decimal
	StockQty int
	MinStock int
}

// CreateProductHandler handles product creation
type CreateProductHandler struct {
	repo   domain.ProductRepository
	policy *tenantdomain.Policy
}

// NewCreateProductHandler creates a new CreateProductHandler
func NewCreateProductHandler(repo domain.ProductRepository, policy *tenantdomain.Policy) *CreateProductHandler {
	return &CreateProductHandler{repo: repo, policy: policy}
}

// Handle executes the command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	tenantID := cmd.TenantID
	if tenantID == 0 {
		if cmd.Actor.TenantID == nil {
			return nil, fmt.Errorf("%w: tenant is required", domain.ErrInvalidRequest)
		}
		tenantID = *cmd.Actor.TenantID
	}

	if err := h.policy.ValidateTenantAccess(ctx, cmd.Actor, tenantID); err != nil {
		return nil, err
	}
	if !cmd.Actor.Can(identity.CapabilityManageProducts) {
		return nil, identity.ErrUnauthorized
	}

	if cmd.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidRequest)
	}
	if cmd.SKU == "" {
		return nil, fmt.Errorf("%w: product SKU is required", domain.ErrInvalidRequest)
	}
	if cmd.Price.IsNegative() {
		return nil, fmt.Errorf("%w: product price cannot be negative", domain.ErrInvalidRequest)
	}
	if cmd.StockQty < 0 {
		return nil, fmt.Errorf("%w: initial stock cannot be negative", domain.ErrInvalidRequest)
	}
	if cmd.MinStock < 0 {
		return nil, fmt.Errorf("%w: minimum stock cannot be negative", domain.ErrInvalidRequest)
	}

	product := &domain.Product{
		TenantID: tenantID,
		Name:     cmd.Name,
		SKU:      cmd.SKU,
		Price:    cmd.Price,
		StockQty: cmd.StockQty,
		MinStock: cmd.MinStock,
	}
	if err := h.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("product_id", product.ID).
		Uint("tenant_id", product.TenantID).
		Str("sku", product.SKU).
		Msg("Product created")
	return product, nil
}

package query

import (
	"context"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/product/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

// GetProductQuery fetches a single product
type GetProductQuery struct {
	Actor     identity.Actor
	ProductID uint
}

// GetProductHandler handles single product lookups
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new GetProductHandler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle executes the query
func (h *GetProductHandler) Handle(ctx context.Context, q GetProductQuery) (*domain.Product, error) {
	product, err := h.repo.FindByID(ctx, q.ProductID)
	if err != nil {
		return nil, err
	}
	if !tenantdomain.ScopeFor(q.Actor).Allows(product.TenantID) {
		return nil, tenantdomain.ErrAccessDenied
	}
	return product, nil
}

package query

import (
	"context"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

// GetSaleQuery fetches a single sale
type GetSaleQuery struct {
	Actor  identity.Actor
	SaleID uint
}

// GetSaleHandler handles single sale lookups
type GetSaleHandler struct {
	store domain.Store
}

// NewGetSaleHandler creates a new GetSaleHandler
func NewGetSaleHandler(store domain.Store) *GetSaleHandler {
	return &GetSaleHandler{store: store}
}

// Handle executes the query
func (h *GetSaleHandler) Handle(ctx context.Context, q GetSaleQuery) (*domain.Sale, error) {
	if !q.Actor.Can(identity.CapabilityReadSales) {
		return nil, identity.ErrUnauthorized
	}

	sale, err := h.store.FindByID(ctx, q.SaleID)
	if err != nil {
		return nil, err
	}
	if !tenantdomain.CanAccessTenant(q.Actor, sale.TenantID) {
		return nil, tenantdomain.ErrAccessDenied
	}
	return sale, nil
}

package query

import (
	"context"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

const defaultPageSize = 50

// ListSalesQuery lists sales visible to the actor
type ListSalesQuery struct {
	Actor  identity.Actor
	Limit  int
	Offset int
}

// ListSalesHandler handles sale listing
type ListSalesHandler struct {
	store domain.Store
}

// NewListSalesHandler creates a new ListSalesHandler
func NewListSalesHandler(store domain.Store) *ListSalesHandler {
	return &ListSalesHandler{store: store}
}

// Handle executes the query
func (h *ListSalesHandler) Handle(ctx context.Context, q ListSalesQuery) ([]domain.Sale, error) {
	if !q.Actor.Can(identity.CapabilityReadSales) {
		return nil, identity.ErrUnauthorized
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	return h.store.List(ctx, tenantdomain.ScopeFor(q.Actor), limit, offset)
}

package query

import (
	"context"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

const defaultPageSize = 50

// ListMovementsQuery lists a product's stock ledger rows
type ListMovementsQuery struct {
	Actor     identity.Actor
	ProductID uint
	Limit     int
	Offset    int
}

// ListMovementsHandler handles ledger history lookups
type ListMovementsHandler struct {
	ledger domain.Ledger
}

// NewListMovementsHandler creates a new ListMovementsHandler
func NewListMovementsHandler(ledger domain.Ledger) *ListMovementsHandler {
	return &ListMovementsHandler{ledger: ledger}
}

// Handle executes the query
func (h *ListMovementsHandler) Handle(ctx context.Context, q ListMovementsQuery) ([]domain.StockTransaction, error) {
	if !q.Actor.Can(identity.CapabilityManageStock) {
		return nil, identity.ErrUnauthorized
	}

	product, err := h.ledger.Product(ctx, q.ProductID)
	if err != nil {
		return nil, err
	}
	if !tenantdomain.ScopeFor(q.Actor).Allows(product.TenantID) {
		return nil, tenantdomain.ErrAccessDenied
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	return h.ledger.MovementsByProduct(ctx, q.ProductID, limit, offset)
}

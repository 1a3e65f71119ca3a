package query

import (
	"context"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/product/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

const defaultPageSize = 50

// ListProductsQuery lists products visible to the actor
type ListProductsQuery struct {
	Actor    identity.Actor
	LowStock bool
	Limit    int
	Offset   int
}

// ListProductsHandler handles product listing
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new ListProductsHandler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the query
func (h *ListProductsHandler) Handle(ctx context.Context, q ListProductsQuery) ([]domain.Product, error) {
	scope := tenantdomain.ScopeFor(q.Actor)

	if q.LowStock {
		return h.repo.ListLowStock(ctx, scope)
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return h.repo.List(ctx, scope, limit, offset)
}

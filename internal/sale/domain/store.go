package domain

import (
	"context"
	"time"

	productdomain "github.com/tair/retail-core/internal/product/domain"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

// Store is the persistence surface of the sale module. InTransaction hands
// the callback a Store bound to the open transaction; every write the sale
// orchestrator performs goes through that bound Store so a failure rolls
// back the sale row, its items and the stock movements together.
type Store interface {
	InTransaction(ctx context.Context, fn func(Store) error) error

	ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error)

	CountSalesSince(ctx context.Context, tenantID uint, since time.Time) (int64, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	CreateSale(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id uint) (*Sale, error)
	List(ctx context.Context, scope tenantdomain.Scope, limit, offset int) ([]Sale, error)

	// UpdateStatus transitions a sale to the given status. It returns
	// ErrInvalidState when the sale already holds that status, so two
	// concurrent cancellations cannot both restore stock.
	UpdateStatus(ctx context.Context, id uint, status string) error

	ApplyMovement(ctx context.Context, movement stockdomain.Movement) (*stockdomain.StockTransaction, error)
}

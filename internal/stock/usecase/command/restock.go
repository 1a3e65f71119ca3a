package command

import (
	"context"
	"fmt"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	"github.com/tair/retail-core/pkg/logger"
)

// RestockCommand adds inbound stock to a product
type RestockCommand struct {
	Actor     identity.Actor
	ProductID uint
	Quantity  int
	Reason    string
}

// RestockHandler handles inbound stock
type RestockHandler struct {
	ledger domain.Ledger
}

// NewRestockHandler creates a new RestockHandler
func NewRestockHandler(ledger domain.Ledger) *RestockHandler {
	return &RestockHandler{ledger: ledger}
}

// Handle executes the command
func (h *RestockHandler) Handle(ctx context.Context, cmd RestockCommand) (*domain.StockTransaction, error) {
	if !cmd.Actor.Can(identity.CapabilityManageStock) {
		return nil, identity.ErrUnauthorized
	}
	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("%w: restock quantity must be positive, got %d", domain.ErrInvalidRequest, cmd.Quantity)
	}

	var transaction *domain.StockTransaction
	err := h.ledger.Transact(ctx, func(tx domain.Ledger) error {
		product, err := tx.ProductForUpdate(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		if !tenantdomain.ScopeFor(cmd.Actor).Allows(product.TenantID) {
			return tenantdomain.ErrAccessDenied
		}

		transaction, err = tx.Apply(ctx, domain.Movement{
			ProductID: cmd.ProductID,
			ActorID:   cmd.Actor.ID,
			Type:      domain.MovementRestock,
			Quantity:  cmd.Quantity,
			Reason:    cmd.Reason,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("product_id", cmd.ProductID).
		Int("quantity", cmd.Quantity).
		Msg("Product restocked")
	return transaction, nil
}

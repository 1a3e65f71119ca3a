package command

import (
	"context"
	"fmt"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	"github.com/tair/retail-core/pkg/logger"
)

// AdjustStockCommand corrects a product's stock by a signed quantity,
// e.g. after a physical count or damage write-off
type AdjustStockCommand struct {
	Actor     identity.Actor
	ProductID uint
	Quantity  int
	Reason    string
}

// AdjustStockHandler handles manual stock corrections
type AdjustStockHandler struct {
	ledger domain.Ledger
}

// NewAdjustStockHandler creates a new AdjustStockHandler
func NewAdjustStockHandler(ledger domain.Ledger) *AdjustStockHandler {
	return &AdjustStockHandler{ledger: ledger}
}

// Handle executes the command
func (h *AdjustStockHandler) Handle(ctx context.Context, cmd AdjustStockCommand) (*domain.StockTransaction, error) {
	if !cmd.Actor.Can(identity.CapabilityManageStock) {
		return nil, identity.ErrUnauthorized
	}
	if cmd.Quantity == 0 {
		return nil, fmt.Errorf("%w: adjustment quantity must be non-zero", domain.ErrInvalidRequest)
	}
	if cmd.Reason == "" {
		return nil, fmt.Errorf("%w: adjustment reason is required", domain.ErrInvalidRequest)
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
			Type:      domain.MovementAdjustment,
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
		Str("reason", cmd.Reason).
		Msg("Stock adjusted")
	return transaction, nil
}

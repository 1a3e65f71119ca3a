package command

import (
	"context"
	"fmt"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	"github.com/tair/retail-core/kafka"
	"github.com/tair/retail-core/pkg/logger"
	"github.com/tair/retail-core/pkg/metrics"
)

// CancelSaleCommand cancels a committed sale and restores its stock
type CancelSaleCommand struct {
	Actor  identity.Actor
	SaleID uint
}

// CancelSaleHandler handles sale cancellation. The status flip and the
// compensating RETURN movements commit in one transaction.
type CancelSaleHandler struct {
	store  domain.Store
	events EventPublisher
}

// NewCancelSaleHandler creates a new CancelSaleHandler
func NewCancelSaleHandler(store domain.Store, events EventPublisher) *CancelSaleHandler {
	return &CancelSaleHandler{store: store, events: events}
}

// Handle executes the command
func (h *CancelSaleHandler) Handle(ctx context.Context, cmd CancelSaleCommand) (*domain.Sale, error) {
	if !cmd.Actor.Can(identity.CapabilityCancelSale) {
		return nil, identity.ErrUnauthorized
	}

	var sale *domain.Sale
	err := h.store.InTransaction(ctx, func(tx domain.Store) error {
		found, err := tx.FindByID(ctx, cmd.SaleID)
		if err != nil {
			return err
		}
		if !tenantdomain.CanAccessTenant(cmd.Actor, found.TenantID) {
			return tenantdomain.ErrAccessDenied
		}
		if found.Status == domain.StatusCancelled {
			return fmt.Errorf("%w: sale %s is already cancelled", domain.ErrInvalidState, found.Reference)
		}

		if err := tx.UpdateStatus(ctx, found.ID, domain.StatusCancelled); err != nil {
			return err
		}
		for _, item := range found.Items {
			_, err := tx.ApplyMovement(ctx, stockdomain.Movement{
				ProductID: item.ProductID,
				ActorID:   cmd.Actor.ID,
				Type:      stockdomain.MovementReturn,
				Quantity:  item.Quantity,
				Reason:    "return " + found.Reference,
			})
			if err != nil {
				return err
			}
		}

		found.Status = domain.StatusCancelled
		sale = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SalesCancelled.Inc()
	logger.Info(ctx).
		Uint("sale_id", sale.ID).
		Str("reference", sale.Reference).
		Uint("tenant_id", sale.TenantID).
		Msg("Sale cancelled")

	if h.events != nil {
		err := h.events.PublishSaleCancelled(ctx, kafka.SaleCancelledEvent{
			SaleID:    sale.ID,
			Reference: sale.Reference,
			TenantID:  sale.TenantID,
			ActorID:   cmd.Actor.ID,
		})
		if err != nil {
			logger.Warn(ctx).Err(err).Uint("sale_id", sale.ID).Msg("Failed to publish sale cancelled event")
		}
	}
	return sale, nil
}

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	identity "github.com/tair/retail-core/internal/identity/domain"
	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	"github.com/tair/retail-core/kafka"
	"github.com/tair/retail-core/pkg/logger"
	"github.com/tair/retail-core/pkg/metrics"
)

const (
	// In-transaction recomputes of the reference before the whole
	// transaction is retried.
	maxReferenceAttempts = 3
	// Whole-transaction retries on a reference collision surfaced by the
	// unique index at insert time.
	maxTransactionAttempts = 5
)

// EventPublisher publishes domain events after a sale commits. A nil
// publisher disables events.
type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, event kafka.SaleCompletedEvent) error
	PublishSaleCancelled(ctx context.Context, event kafka.SaleCancelledEvent) error
	PublishLowStock(ctx context.Context, event kafka.LowStockEvent) error
}

// SaleItemInput is one requested sale line
type SaleItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateSaleCommand commits a sale for a tenant. TenantID may be zero for
// tenant-bound actors, in which case the actor's own tenant is used.
type CreateSaleCommand struct {
	Actor    identity.Actor
	TenantID uint
	Items    []SaleItemInput
}

// CreateSaleHandler handles sale creation. Stock deduction, the ledger rows
// and the sale row commit in one transaction; any failure rolls back all of
// them.
type CreateSaleHandler struct {
	store  domain.Store
	policy *tenantdomain.Policy
	events EventPublisher
	now    func() time.Time
}

// NewCreateSaleHandler creates a new CreateSaleHandler
func NewCreateSaleHandler(store domain.Store, policy *tenantdomain.Policy, events EventPublisher) *CreateSaleHandler {
	return &CreateSaleHandler{
		store:  store,
		policy: policy,
		events: events,
		now:    time.Now,
	}
}

// Handle executes the command
func (h *CreateSaleHandler) Handle(ctx context.Context, cmd CreateSaleCommand) (*domain.Sale, error) {
	tenantID := cmd.TenantID
	if tenantID == 0 {
		if cmd.Actor.TenantID == nil {
			return nil, fmt.Errorf("%w: tenant is required", domain.ErrInvalidRequest)
		}
		tenantID = *cmd.Actor.TenantID
	}

	if err := h.policy.ValidateTenantAccess(ctx, cmd.Actor, tenantID); err != nil {
		h.countFailure(err)
		return nil, err
	}
	if !cmd.Actor.Can(identity.CapabilityCreateSale) {
		metrics.SaleFailures.WithLabelValues("unauthorized").Inc()
		return nil, identity.ErrUnauthorized
	}

	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrInvalidRequest)
	}
	for i, item := range cmd.Items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("%w: item %d has no product", domain.ErrInvalidRequest, i)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be positive", domain.ErrInvalidRequest, i)
		}
	}

	var (
		sale     *domain.Sale
		lowStock []productdomain.Product
	)
	var err error
	for attempt := 0; attempt < maxTransactionAttempts; attempt++ {
		err = h.store.InTransaction(ctx, func(tx domain.Store) error {
			sale, lowStock, err = h.createInTx(ctx, tx, cmd.Actor, tenantID, cmd.Items)
			return err
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrReferenceCollision) {
			continue
		}
		h.countFailure(err)
		return nil, err
	}
	if err != nil {
		metrics.SaleFailures.WithLabelValues("reference_exhausted").Inc()
		return nil, domain.ErrReferenceExhausted
	}

	metrics.SalesCreated.Inc()
	logger.Info(ctx).
		Uint("sale_id", sale.ID).
		Str("reference", sale.Reference).
		Uint("tenant_id", sale.TenantID).
		Str("total_amount", sale.TotalAmount.String()).
		Int("items", len(sale.Items)).
		Msg("Sale committed")

	h.publishCompleted(ctx, sale, lowStock)
	return sale, nil
}

// createInTx builds and persists the sale inside one transaction. Products
// are locked in the order the caller listed them.
func (h *CreateSaleHandler) createInTx(ctx context.Context, tx domain.Store, actor identity.Actor, tenantID uint, items []SaleItemInput) (*domain.Sale, []productdomain.Product, error) {
	total := decimal.Zero
	saleItems := make([]domain.SaleItem, 0, len(items))
	var lowStock []productdomain.Product
	lowStockIdx := make(map[uint]int)

	// Quantity already claimed per product in this sale, so repeated lines
	// for the same product cannot oversell a single locked read.
	seen := make(map[uint]int)

	for _, item := range items {
		product, err := tx.ProductForUpdate(ctx, item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if product.TenantID != tenantID {
			return nil, nil, tenantdomain.ErrAccessDenied
		}

		effective := product.StockQty - seen[item.ProductID]
		if effective < item.Quantity {
			return nil, nil, &stockdomain.InsufficientStockError{
				ProductID: item.ProductID,
				Available: effective,
				Requested: item.Quantity,
			}
		}
		seen[item.ProductID] += item.Quantity

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		saleItems = append(saleItems, domain.SaleItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: lineTotal,
		})

		if remaining := product.StockQty - seen[item.ProductID]; remaining <= product.MinStock {
			alert := *product
			alert.StockQty = remaining
			if i, ok := lowStockIdx[product.ID]; ok {
				lowStock[i] = alert
			} else {
				lowStockIdx[product.ID] = len(lowStock)
				lowStock = append(lowStock, alert)
			}
		}
	}

	reference, err := h.nextReference(ctx, tx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	sale := &domain.Sale{
		Reference:   reference,
		TenantID:    tenantID,
		SellerID:    actor.ID,
		TotalAmount: total,
		Status:      domain.StatusCompleted,
		Items:       saleItems,
	}
	if err := tx.CreateSale(ctx, sale); err != nil {
		return nil, nil, err
	}

	for _, item := range sale.Items {
		_, err := tx.ApplyMovement(ctx, stockdomain.Movement{
			ProductID: item.ProductID,
			ActorID:   actor.ID,
			Type:      stockdomain.MovementSale,
			Quantity:  -item.Quantity,
			Reason:    "sale " + reference,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	return sale, lowStock, nil
}

// nextReference derives the tenant's next daily sequence number and checks
// the resulting reference is still free. Collisions under concurrency are
// recomputed a few times here; the unique index catches the rest.
func (h *CreateSaleHandler) nextReference(ctx context.Context, tx domain.Store, tenantID uint) (string, error) {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		now := h.now()
		count, err := tx.CountSalesSince(ctx, tenantID, domain.DayStart(now))
		if err != nil {
			return "", err
		}
		reference := domain.FormatReference(now, count+1+int64(attempt))
		taken, err := tx.ReferenceExists(ctx, reference)
		if err != nil {
			return "", err
		}
		if !taken {
			return reference, nil
		}
	}
	return "", domain.ErrReferenceCollision
}

func (h *CreateSaleHandler) countFailure(err error) {
	switch {
	case errors.Is(err, stockdomain.ErrInsufficientStock):
		metrics.SaleFailures.WithLabelValues("insufficient_stock").Inc()
	case errors.Is(err, tenantdomain.ErrAccessDenied):
		metrics.SaleFailures.WithLabelValues("access_denied").Inc()
	case errors.Is(err, tenantdomain.ErrSuspended):
		metrics.SaleFailures.WithLabelValues("tenant_suspended").Inc()
	case errors.Is(err, tenantdomain.ErrNotFound):
		metrics.SaleFailures.WithLabelValues("tenant_not_found").Inc()
	case errors.Is(err, productdomain.ErrNotFound):
		metrics.SaleFailures.WithLabelValues("product_not_found").Inc()
	default:
		metrics.SaleFailures.WithLabelValues("storage").Inc()
	}
}

// publishCompleted emits the post-commit events. Failures are logged, never
// surfaced; the sale is already committed.
func (h *CreateSaleHandler) publishCompleted(ctx context.Context, sale *domain.Sale, lowStock []productdomain.Product) {
	if h.events == nil {
		return
	}

	err := h.events.PublishSaleCompleted(ctx, kafka.SaleCompletedEvent{
		SaleID:      sale.ID,
		Reference:   sale.Reference,
		TenantID:    sale.TenantID,
		SellerID:    sale.SellerID,
		TotalAmount: sale.TotalAmount.String(),
		ItemCount:   len(sale.Items),
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("sale_id", sale.ID).Msg("Failed to publish sale completed event")
	}

	for _, product := range lowStock {
		err := h.events.PublishLowStock(ctx, kafka.LowStockEvent{
			ProductID: product.ID,
			TenantID:  product.TenantID,
			SKU:       product.SKU,
			StockQty:  product.StockQty,
			MinStock:  product.MinStock,
		})
		if err != nil {
			logger.Warn(ctx).Err(err).Uint("product_id", product.ID).Msg("Failed to publish low stock event")
		}
	}
}

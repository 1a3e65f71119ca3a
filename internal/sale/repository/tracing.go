package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
)

var tracer = otel.Tracer("sale-store")

// TracedStore wraps a domain.Store with OpenTelemetry spans around the
// operations that touch the hot path of committing a sale.
type TracedStore struct {
	domain.Store
}

// NewTracedStore wraps the given store with tracing
func NewTracedStore(store domain.Store) *TracedStore {
	return &TracedStore{Store: store}
}

// InTransaction traces the whole transaction and hands fn a traced inner store
func (s *TracedStore) InTransaction(ctx context.Context, fn func(domain.Store) error) error {
	ctx, span := tracer.Start(ctx, "sale.transaction")
	defer span.End()

	err := s.Store.InTransaction(ctx, func(tx domain.Store) error {
		return fn(&TracedStore{Store: tx})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// ProductForUpdate traces the row lock acquisition
func (s *TracedStore) ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error) {
	ctx, span := tracer.Start(ctx, "sale.lock_product",
		trace.WithAttributes(attribute.Int64("product.id", int64(id))))
	defer span.End()

	product, err := s.Store.ProductForUpdate(ctx, id)
	if err != nil {
		span.RecordError(err)
	}
	return product, err
}

// CreateSale traces the sale insert
func (s *TracedStore) CreateSale(ctx context.Context, sale *domain.Sale) error {
	ctx, span := tracer.Start(ctx, "sale.create",
		trace.WithAttributes(
			attribute.String("sale.reference", sale.Reference),
			attribute.Int("sale.items", len(sale.Items)),
		))
	defer span.End()

	err := s.Store.CreateSale(ctx, sale)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// ApplyMovement traces the stock mutation
func (s *TracedStore) ApplyMovement(ctx context.Context, movement stockdomain.Movement) (*stockdomain.StockTransaction, error) {
	ctx, span := tracer.Start(ctx, "stock.apply",
		trace.WithAttributes(
			attribute.Int64("product.id", int64(movement.ProductID)),
			attribute.String("movement.type", movement.Type),
			attribute.Int("movement.quantity", movement.Quantity),
		))
	defer span.End()

	transaction, err := s.Store.ApplyMovement(ctx, movement)
	if err != nil {
		span.RecordError(err)
	}
	return transaction, err
}

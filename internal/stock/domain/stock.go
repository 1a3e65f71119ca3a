package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	productdomain "github.com/tair/retail-core/internal/product/domain"
)

// Movement types recorded in the stock ledger
const (
	MovementRestock    = "RESTOCK"
	MovementAdjustment = "ADJUSTMENT"
	MovementSale       = "SALE"
	MovementReturn     = "RETURN"
)

var (
	// ErrInsufficientStock is returned when a deduction would drive stock negative
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidRequest is returned when movement input fails validation
	ErrInvalidRequest = errors.New("invalid request")
)

// InsufficientStockError carries the shortfall detail for a rejected deduction
type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// StockTransaction is one immutable row of the stock ledger. Quantity is
// signed: positive for inbound movements, negative for outbound.
type StockTransaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null"`
	Type      string    `json:"type" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// Movement describes a requested change to a product's stock
type Movement struct {
	ProductID uint
	ActorID   uint
	Type      string
	Quantity  int
	Reason    string
}

// Ledger is the stock write model. Apply atomically changes the on-hand
// quantity and records a ledger row; it never lets stock go negative.
type Ledger interface {
	Transact(ctx context.Context, fn func(Ledger) error) error
	Product(ctx context.Context, id uint) (*productdomain.Product, error)
	ProductForUpdate(ctx context.Context, id uint) (*productdomain.Product, error)
	Apply(ctx context.Context, movement Movement) (*StockTransaction, error)
	MovementsByProduct(ctx context.Context, productID uint, limit, offset int) ([]StockTransaction, error)
	SumByProduct(ctx context.Context, productID uint) (int64, error)
}

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

var (
	// ErrNotFound is returned when a product does not exist
	ErrNotFound = errors.New("product not found")
	// ErrInvalidRequest is returned when product input fails validation
	ErrInvalidRequest = errors.New("invalid request")
)

// Product represents a sellable item owned by a tenant. StockQty is the
// current on-hand quantity; the stock ledger records how it got there.
type Product struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	TenantID  uint            `json:"tenant_id" gorm:"not null;index"`
	Name      string          `json:"name" gorm:"not null"`
	SKU       string          `json:"sku" gorm:"uniqueIndex;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	StockQty  int             `json:"stock_qty" gorm:"not null;default:0"`
	MinStock  int             `json:"min_stock" gorm:"not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether on-hand quantity has reached the reorder threshold
func (p *Product) IsLowStock() bool {
	return p.StockQty <= p.MinStock
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, scope tenantdomain.Scope, limit, offset int) ([]Product, error)
	ListLowStock(ctx context.Context, scope tenantdomain.Scope) ([]Product, error)
}

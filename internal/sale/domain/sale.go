package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale status
const (
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Sale is one committed sale. Prices and totals are snapshots taken at
// commit time; later product price changes never touch past sales.
type Sale struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Reference   string          `json:"reference" gorm:"uniqueIndex;not null"`
	TenantID    uint            `json:"tenant_id" gorm:"not null;index"`
	SellerID    uint            `json:"seller_id" gorm:"not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Status      string          `json:"status" gorm:"not null"`
	Items       []SaleItem      `json:"items" gorm:"foreignKey:SaleID"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a sale
type SaleItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	SaleID     uint            `json:"sale_id" gorm:"not null;index"`
	ProductID  uint            `json:"product_id" gorm:"not null"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:numeric(12,2);not null"`
}

// TableName specifies the table name
func (SaleItem) TableName() string {
	return "sale_items"
}

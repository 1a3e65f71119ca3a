package kafka

import "time"

// Topics
const (
	TopicSaleEvents  = "sale-events"
	TopicStockAlerts = "stock-alerts"
)

// Event types
const (
	EventSaleCompleted = "sale.completed"
	EventSaleCancelled = "sale.cancelled"
	EventStockLow      = "stock.low"
)

// SaleCompletedEvent is published after a sale commits
type SaleCompletedEvent struct {
	EventType   string    `json:"event_type"`
	SaleID      uint      `json:"sale_id"`
	Reference   string    `json:"reference"`
	TenantID    uint      `json:"tenant_id"`
	SellerID    uint      `json:"seller_id"`
	TotalAmount string    `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// SaleCancelledEvent is published after a sale is cancelled and its stock
// restored
type SaleCancelledEvent struct {
	EventType string    `json:"event_type"`
	SaleID    uint      `json:"sale_id"`
	Reference string    `json:"reference"`
	TenantID  uint      `json:"tenant_id"`
	ActorID   uint      `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}

// LowStockEvent is published when a sale drives a product to or below its
// reorder threshold
type LowStockEvent struct {
	EventType string    `json:"event_type"`
	ProductID uint      `json:"product_id"`
	TenantID  uint      `json:"tenant_id"`
	SKU       string    `json:"sku"`
	StockQty  int       `json:"stock_qty"`
	MinStock  int       `json:"min_stock"`
	Timestamp time.Time `json:"timestamp"`
}

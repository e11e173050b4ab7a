package events

import (
	"time"

	"github.com/retail-dashboard/ledger-service/internal/domain"
)

// OrderPlacedEvent is published after a checkout has been persisted.
type OrderPlacedEvent struct {
	EventID     string             `json:"event_id"`
	OrderID     string             `json:"order_id"`
	TotalAmount float64            `json:"total_amount"`
	Items       []domain.OrderItem `json:"items"`
	TotalItems  int                `json:"total_items"`
	Timestamp   time.Time          `json:"timestamp"`
}

// StockLowEvent is published when a persisted mutation leaves a
// product under the low-stock threshold.
type StockLowEvent struct {
	EventID   string    `json:"event_id"`
	ProductID int       `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

// RestockRequestedEvent is consumed from the warehouse topic; each
// event carries absolute stock values to overwrite.
type RestockRequestedEvent struct {
	EventID   string               `json:"event_id"`
	Updates   []domain.StockUpdate `json:"updates"`
	Timestamp time.Time            `json:"timestamp"`
	RequestID string               `json:"request_id"`
}

package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderCreated       = `snackbar.order-created`
	TopicTransactionCreated = `snackbar.transaction-created`
)

// OrderCreatedEvent is published when a draft is committed as an order.
type OrderCreatedEvent struct {
	OrderID    int             `json:"order_id"`
	CustomerID int             `json:"customer_id"`
	Cost       decimal.Decimal `json:"cost"`
	Products   int             `json:"products"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TransactionCreatedEvent is published when an order is checked out.
type TransactionCreatedEvent struct {
	TransactionID int             `json:"transaction_id"`
	OrderID       int             `json:"order_id"`
	CustomerID    int             `json:"customer_id"`
	Cost          decimal.Decimal `json:"cost"`
	Discount      int             `json:"discount"`
	CreatedAt     time.Time       `json:"created_at"`
}

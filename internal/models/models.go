package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusNotOrdered is the status a freshly assembled order carries until it
// is checked out into a transaction.
const StatusNotOrdered = "Not Ordered"

// Product is read-only reference data from the snackbar API's point of view
// of this service: the draft workflow never mutates one.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Discount    int             `json:"discount" validate:"min=0"`
	Stock       int             `json:"stock" validate:"min=0"`
	ImgPath     string          `json:"imgPath"`
	Description string          `json:"description"`
}

// Order holds a customer's order. Products carries quantity by repetition:
// two entries for the same product mean quantity two. Cost is derived from
// the product prices, never entered directly.
type Order struct {
	ID          int             `json:"id"`
	Cost        decimal.Decimal `json:"cost"`
	DateOfOrder time.Time       `json:"dateOfOrder"`
	IsFavorited bool            `json:"isFavorited"`
	Status      string          `json:"status"`
	CustomerID  int             `json:"customerId"`
	Products    []Product       `json:"products,omitempty"`
}

// OrderProduct is the association row between an order and a product as the
// remote API stores it, with an explicit amount.
type OrderProduct struct {
	OrderID   int `json:"orderId"`
	ProductID int `json:"productId"`
	Amount    int `json:"amount"`
}

// Transaction is the checkout record derived from an order.
type Transaction struct {
	ID                int             `json:"id"`
	Cost              decimal.Decimal `json:"cost"`
	Discount          int             `json:"discount"`
	DateOfTransaction time.Time       `json:"dateOfTransaction"`
	CustomerID        int             `json:"customerId"`
	OrderID           int             `json:"orderId"`
}

// Customer correlates a logged-in principal to the remote API's customer
// record via AuthenticationID.
type Customer struct {
	ID               int    `json:"id"`
	AuthenticationID string `json:"authenticationId"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone"`
}

// Owner is a snackbar owner/operator account.
type Owner struct {
	ID    int    `json:"id"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

package draft

import (
	"context"
	"errors"
	"fmt"

	"time"

	"github.com/shopspring/decimal"

	"snackbar-web/internal/gateway"
	"snackbar-web/internal/models"
)

// Workflow composes the draft store with the remote data gateway: it is the
// build-then-commit lifecycle of an order. Every mutation verifies the
// product against the remote API first, so a draft can only ever hold
// products that exist.
type Workflow struct {
	store *Store
	gw    *gateway.Client
	now   func() time.Time
}

func NewWorkflow(store *Store, gw *gateway.Client) *Workflow {
	return &Workflow{
		store: store,
		gw:    gw,
		now:   time.Now,
	}
}

// Draft returns a copy of the session's current draft.
func (w *Workflow) Draft(sessionID string) Draft {
	return w.store.Get(sessionID)
}

// AddProduct fetches the product and appends it to the session's draft. A
// product the remote API does not know surfaces as gateway.ErrNotFound.
func (w *Workflow) AddProduct(ctx context.Context, sessionID string, productID int) (models.Product, error) {
	product, err := w.gw.Product(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	w.store.Append(sessionID, product)
	return product, nil
}

// RemoveProduct fetches the product, then removes its first entry from the
// draft. An unknown product id is an error; a known product that simply is
// not in the draft is a no-op.
func (w *Workflow) RemoveProduct(ctx context.Context, sessionID string, productID int) error {
	if _, err := w.gw.Product(ctx, productID); err != nil {
		return err
	}
	w.store.RemoveFirst(sessionID, productID)
	return nil
}

// StartEdit loads the order's current products and replaces the session's
// draft wholesale, turning it into an edit session targeting that order.
func (w *Workflow) StartEdit(ctx context.Context, sessionID string, orderID int) error {
	order, err := w.gw.Order(ctx, orderID)
	if err != nil {
		return err
	}
	w.store.Replace(sessionID, order.Products, orderID)
	return nil
}

// Cancel discards the session's draft, whatever state it is in.
func (w *Workflow) Cancel(sessionID string) {
	w.store.Clear(sessionID)
}

// SaveNew commits the draft as a new order: cost is the sum of the draft's
// product prices, and when authID identifies a logged-in principal the
// matching customer is attached. The draft is cleared on success. The
// returned order keeps its product list even if the remote API strips it
// when persisting, so checkout can run directly on the result.
func (w *Workflow) SaveNew(ctx context.Context, sessionID, authID string) (models.Order, error) {
	d := w.store.Get(sessionID)

	order := models.Order{
		Cost:        Cost(d.Products),
		DateOfOrder: w.now(),
		IsFavorited: false,
		Status:      models.StatusNotOrdered,
		Products:    d.Products,
	}

	if authID != "" {
		customer, err := w.gw.CustomerByAuthID(ctx, authID)
		switch {
		case err == nil:
			order.CustomerID = customer.ID
		case errors.Is(err, gateway.ErrNotFound):
			// A principal without a customer record orders anonymously.
		default:
			return models.Order{}, fmt.Errorf("resolving customer: %w", err)
		}
	}

	created, err := w.gw.CreateOrder(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	if len(created.Products) == 0 {
		created.Products = d.Products
	}

	w.store.Clear(sessionID)
	return created, nil
}

// SaveEdit commits the draft into an existing order. Status, favorite flag
// and owning customer are carried over from the stored order; cost is
// recomputed from the draft. The draft is cleared on success.
func (w *Workflow) SaveEdit(ctx context.Context, sessionID string, orderID int) (models.Order, error) {
	prior, err := w.gw.Order(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	d := w.store.Get(sessionID)
	edited := models.Order{
		ID:          orderID,
		Cost:        Cost(d.Products),
		DateOfOrder: w.now(),
		IsFavorited: prior.IsFavorited,
		Status:      prior.Status,
		CustomerID:  prior.CustomerID,
		Products:    d.Products,
	}

	updated, err := w.gw.UpdateOrder(ctx, edited, orderID)
	if err != nil {
		return models.Order{}, err
	}

	w.store.Clear(sessionID)
	return updated, nil
}

// Promote turns a saved order into a transaction shell for the confirmation
// page: cost is copied from the order, discount is the sum of the product
// discounts, and the timestamp is the promotion instant. Nothing is
// persisted until SaveTransaction.
func (w *Workflow) Promote(ctx context.Context, orderID int) (models.Transaction, models.Order, error) {
	order, err := w.gw.Order(ctx, orderID)
	if err != nil {
		return models.Transaction{}, models.Order{}, err
	}

	transaction := models.Transaction{
		Cost:              order.Cost,
		Discount:          TotalDiscount(order.Products),
		DateOfTransaction: w.now(),
		CustomerID:        order.CustomerID,
		OrderID:           order.ID,
	}
	return transaction, order, nil
}

// SaveTransaction persists a confirmed transaction against its order. The
// order reference and timestamp are taken fresh here rather than trusted
// from the form.
func (w *Workflow) SaveTransaction(ctx context.Context, orderID int, transaction models.Transaction) (models.Transaction, error) {
	order, err := w.gw.Order(ctx, orderID)
	if err != nil {
		return models.Transaction{}, err
	}

	transaction.OrderID = order.ID
	if transaction.CustomerID == 0 {
		transaction.CustomerID = order.CustomerID
	}
	transaction.DateOfTransaction = w.now()

	return w.gw.CreateTransaction(ctx, transaction)
}

// Cost sums the product prices; duplicates count once per entry.
func Cost(products []models.Product) decimal.Decimal {
	cost := decimal.Zero
	for _, p := range products {
		cost = cost.Add(p.Price)
	}
	return cost
}

// TotalDiscount sums the product discount values; duplicates count once per
// entry.
func TotalDiscount(products []models.Product) int {
	discount := 0
	for _, p := range products {
		discount += p.Discount
	}
	return discount
}

package gateway

import (
	"context"
	"fmt"
	"net/http"

	"snackbar-web/internal/models"
)

// Orders lists every order.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.get(ctx, "/api/Orders/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CustomerOrders lists the orders belonging to one customer.
func (c *Client) CustomerOrders(ctx context.Context, customerID int) ([]models.Order, error) {
	var orders []models.Order
	if err := c.get(ctx, fmt.Sprintf("/api/Orders/CustomerOrders/%d", customerID), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches one order and materializes its product list from the
// association rows. Each distinct product is fetched once; the amount on the
// row expands it into repeated entries, since the rest of the service models
// quantity by repetition.
func (c *Client) Order(ctx context.Context, id int) (models.Order, error) {
	var order models.Order
	if err := c.get(ctx, fmt.Sprintf("/api/Orders/SpecificOrder/%d", id), &order); err != nil {
		return models.Order{}, err
	}

	orderProducts, err := c.OrderProducts(ctx, order.ID)
	if err != nil {
		return models.Order{}, fmt.Errorf("loading products of order %d: %w", id, err)
	}

	fetched := make(map[int]models.Product)
	var products []models.Product
	for _, op := range orderProducts {
		product, ok := fetched[op.ProductID]
		if !ok {
			product, err = c.Product(ctx, op.ProductID)
			if err != nil {
				return models.Order{}, fmt.Errorf("loading product %d of order %d: %w", op.ProductID, id, err)
			}
			fetched[op.ProductID] = product
		}
		for i := 0; i < op.Amount; i++ {
			products = append(products, product)
		}
	}
	order.Products = products

	return order, nil
}

// CreateOrder posts a new order, products included, and returns the created
// record.
func (c *Client) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	var created models.Order
	if err := c.send(ctx, http.MethodPost, "/api/Orders", order, &created); err != nil {
		return models.Order{}, err
	}
	return created, nil
}

// UpdateOrder puts the order, then reads back the canonical version with its
// product list materialized.
func (c *Client) UpdateOrder(ctx context.Context, order models.Order, id int) (models.Order, error) {
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/api/Orders/%d", id), order, nil); err != nil {
		return models.Order{}, err
	}
	return c.Order(ctx, id)
}

// DeleteOrder removes an order by id.
func (c *Client) DeleteOrder(ctx context.Context, id int) error {
	return c.del(ctx, fmt.Sprintf("/api/Orders/%d", id))
}

// OrderExists reports whether the order is present remotely.
func (c *Client) OrderExists(ctx context.Context, id int) (bool, error) {
	var order models.Order
	err := c.get(ctx, fmt.Sprintf("/api/Orders/SpecificOrder/%d", id), &order)
	return exists(err)
}

// OrderProducts lists the association rows of one order.
func (c *Client) OrderProducts(ctx context.Context, orderID int) ([]models.OrderProduct, error) {
	var orderProducts []models.OrderProduct
	if err := c.get(ctx, fmt.Sprintf("/api/OrderProducts/%d", orderID), &orderProducts); err != nil {
		return nil, err
	}
	return orderProducts, nil
}

// CreateOrderProducts posts a batch of association rows.
func (c *Client) CreateOrderProducts(ctx context.Context, orderProducts []models.OrderProduct) error {
	return c.send(ctx, http.MethodPost, "/api/OrderProducts/", orderProducts, nil)
}

// ReplaceOrderProducts swaps out every association row of an order in one
// call.
func (c *Client) ReplaceOrderProducts(ctx context.Context, orderID int, orderProducts []models.OrderProduct) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/api/OrderProducts/AllOrderProducts/%d", orderID), orderProducts, nil)
}

// DeleteOrderProduct removes a single association row.
func (c *Client) DeleteOrderProduct(ctx context.Context, orderID, productID int) error {
	return c.del(ctx, fmt.Sprintf("/api/OrderProducts/%d/%d", orderID, productID))
}

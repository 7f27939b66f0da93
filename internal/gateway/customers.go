package gateway

import (
	"context"
	"fmt"
	"net/http"

	"snackbar-web/internal/models"
)

// Customers lists every customer.
func (c *Client) Customers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.get(ctx, "/api/Customers/", &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// Customer fetches one customer by id.
func (c *Client) Customer(ctx context.Context, id int) (models.Customer, error) {
	var customer models.Customer
	if err := c.get(ctx, fmt.Sprintf("/api/Customers/%d", id), &customer); err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

// CustomerByAuthID resolves the customer record correlated to an external
// authentication id, i.e. a logged-in principal's subject.
func (c *Client) CustomerByAuthID(ctx context.Context, authID string) (models.Customer, error) {
	var customer models.Customer
	if err := c.get(ctx, "/api/Customers/Authentication/"+authID, &customer); err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

// CreateCustomer posts a new customer and returns the created record.
func (c *Client) CreateCustomer(ctx context.Context, customer models.Customer) (models.Customer, error) {
	var created models.Customer
	if err := c.send(ctx, http.MethodPost, "/api/Customers/", customer, &created); err != nil {
		return models.Customer{}, err
	}
	return created, nil
}

// UpdateCustomer puts the customer, then reads back the canonical version.
func (c *Client) UpdateCustomer(ctx context.Context, customer models.Customer, id int) (models.Customer, error) {
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/api/Customers/%d", id), customer, nil); err != nil {
		return models.Customer{}, err
	}
	return c.Customer(ctx, id)
}

// DeleteCustomer removes a customer by id.
func (c *Client) DeleteCustomer(ctx context.Context, id int) error {
	return c.del(ctx, fmt.Sprintf("/api/Customers/%d", id))
}

// DeleteCustomerByAuthID removes the customer correlated to an external
// authentication id.
func (c *Client) DeleteCustomerByAuthID(ctx context.Context, authID string) error {
	return c.del(ctx, "/api/Customers/Authentication/"+authID)
}

// CustomerExists reports whether the customer is present remotely.
func (c *Client) CustomerExists(ctx context.Context, id int) (bool, error) {
	_, err := c.Customer(ctx, id)
	return exists(err)
}

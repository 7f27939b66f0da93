package gateway

import (
	"context"
	"fmt"
	"net/http"

	"snackbar-web/internal/models"
)

// Products lists the full product catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.get(ctx, "/api/Products/", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product by id.
func (c *Client) Product(ctx context.Context, id int) (models.Product, error) {
	var product models.Product
	if err := c.get(ctx, fmt.Sprintf("/api/Products/%d", id), &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// CreateProduct posts a new product and returns the created record.
func (c *Client) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	var created models.Product
	if err := c.send(ctx, http.MethodPost, "/api/Products/", product, &created); err != nil {
		return models.Product{}, err
	}
	return created, nil
}

// UpdateProduct puts the product, then reads back the server's canonical
// version so the caller never works from a stale local copy.
func (c *Client) UpdateProduct(ctx context.Context, product models.Product, id int) (models.Product, error) {
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/api/Products/%d", id), product, nil); err != nil {
		return models.Product{}, err
	}
	return c.Product(ctx, id)
}

// DeleteProduct removes a product by id.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.del(ctx, fmt.Sprintf("/api/Products/%d", id))
}

// ProductExists reports whether the product is present remotely.
func (c *Client) ProductExists(ctx context.Context, id int) (bool, error) {
	_, err := c.Product(ctx, id)
	return exists(err)
}

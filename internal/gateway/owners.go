package gateway

import (
	"context"
	"fmt"
	"net/http"

	"snackbar-web/internal/models"
)

// Owners lists every owner account.
func (c *Client) Owners(ctx context.Context) ([]models.Owner, error) {
	var owners []models.Owner
	if err := c.get(ctx, "/api/Owners/", &owners); err != nil {
		return nil, err
	}
	return owners, nil
}

// Owner fetches one owner by id.
func (c *Client) Owner(ctx context.Context, id int) (models.Owner, error) {
	var owner models.Owner
	if err := c.get(ctx, fmt.Sprintf("/api/Owners/%d", id), &owner); err != nil {
		return models.Owner{}, err
	}
	return owner, nil
}

// CreateOwner posts a new owner and returns the created record.
func (c *Client) CreateOwner(ctx context.Context, owner models.Owner) (models.Owner, error) {
	var created models.Owner
	if err := c.send(ctx, http.MethodPost, "/api/Owners/", owner, &created); err != nil {
		return models.Owner{}, err
	}
	return created, nil
}

// UpdateOwner puts the owner, then reads back the canonical version.
func (c *Client) UpdateOwner(ctx context.Context, owner models.Owner, id int) (models.Owner, error) {
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/api/Owners/%d", id), owner, nil); err != nil {
		return models.Owner{}, err
	}
	return c.Owner(ctx, id)
}

// DeleteOwner removes an owner by id.
func (c *Client) DeleteOwner(ctx context.Context, id int) error {
	return c.del(ctx, fmt.Sprintf("/api/Owners/%d", id))
}

// OwnerExists reports whether the owner is present remotely.
func (c *Client) OwnerExists(ctx context.Context, id int) (bool, error) {
	_, err := c.Owner(ctx, id)
	return exists(err)
}

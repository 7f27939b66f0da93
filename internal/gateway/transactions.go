package gateway

import (
	"context"
	"fmt"
	"net/http"

	"snackbar-web/internal/models"
)

// Transactions lists every transaction.
func (c *Client) Transactions(ctx context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := c.get(ctx, "/api/Transactions/", &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Transaction fetches one transaction by id.
func (c *Client) Transaction(ctx context.Context, id int) (models.Transaction, error) {
	var transaction models.Transaction
	if err := c.get(ctx, fmt.Sprintf("/api/Transactions/%d", id), &transaction); err != nil {
		return models.Transaction{}, err
	}
	return transaction, nil
}

// CreateTransaction posts a new transaction and returns the created record.
func (c *Client) CreateTransaction(ctx context.Context, transaction models.Transaction) (models.Transaction, error) {
	var created models.Transaction
	if err := c.send(ctx, http.MethodPost, "/api/Transactions", transaction, &created); err != nil {
		return models.Transaction{}, err
	}
	return created, nil
}

// UpdateTransaction puts the transaction, then reads back the canonical
// version.
func (c *Client) UpdateTransaction(ctx context.Context, transaction models.Transaction, id int) (models.Transaction, error) {
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/api/Transactions/%d", id), transaction, nil); err != nil {
		return models.Transaction{}, err
	}
	return c.Transaction(ctx, id)
}

// DeleteTransaction removes a transaction by id.
func (c *Client) DeleteTransaction(ctx context.Context, id int) error {
	return c.del(ctx, fmt.Sprintf("/api/Transactions/%d", id))
}

// TransactionExists reports whether the transaction is present remotely.
func (c *Client) TransactionExists(ctx context.Context, id int) (bool, error) {
	_, err := c.Transaction(ctx, id)
	return exists(err)
}

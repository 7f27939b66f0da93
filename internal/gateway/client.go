// Package gateway is the HTTP client for the remote snackbar data API. All
// persistence lives behind that API; this service only composes calls to it.
//
// Lookups distinguish three outcomes instead of papering over failures with
// default-valued entities: a found entity, ErrNotFound for a 404, and a
// wrapped transport error for everything else. Callers dispatch with
// errors.Is(err, ErrNotFound).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound reports that the remote API answered 404 for a lookup.
var ErrNotFound = errors.New("not found")

// Client wraps an http.Client with the API's base address. The base address
// is resolved per call so consul-discovered instances can move between
// requests.
type Client struct {
	base   func() (string, error)
	client *http.Client
}

// NewClient builds a gateway client. base returns the API's base URL, e.g.
// "http://10.0.0.5:5001"; timeout bounds every outbound call.
func NewClient(base func() (string, error), timeout time.Duration) *Client {
	return &Client{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

// StaticBase returns a base resolver for a fixed API address, used when
// consul discovery is bypassed.
func StaticBase(rawURL string) func() (string, error) {
	trimmed := strings.TrimSuffix(rawURL, "/")
	return func() (string, error) { return trimmed, nil }
}

func (c *Client) url(path string) (string, error) {
	base, err := c.base()
	if err != nil {
		return "", fmt.Errorf("resolving api address: %w", err)
	}
	return base + path, nil
}

// get issues a GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	u, err := c.url(path)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}

// send issues a POST or PUT with a JSON body. When out is non-nil the
// response body is decoded into it.
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	u, err := c.url(path)
	if err != nil {
		return err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s %s: encoding body: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

// del issues a DELETE and, unlike the usual fire-and-forget treatment of
// deletes, surfaces a non-success status to the caller.
func (c *Client) del(ctx context.Context, path string) error {
	u, err := c.url(path)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("DELETE %s: %w", path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("DELETE %s: unexpected status %s", path, resp.Status)
	}
	return nil
}

// exists folds a lookup error into a boolean. Only a 404 means "absent";
// transport errors stay errors so callers never mistake an outage for a
// missing entity.
func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

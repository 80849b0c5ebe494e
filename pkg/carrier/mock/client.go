// Package mock provides a mock quote provider for testing.
package mock

import (
	"context"

	"github.com/nizaesteves/backoffice/pkg/carrier"
)

// Client is a mock quote provider for testing.
type Client struct {
	name string

	// Quotes is returned by GetQuotes when Err is nil.
	Quotes []carrier.Quote

	// Err, when set, is returned by GetQuotes.
	Err error
}

// New creates a new mock provider.
func New(name string) *Client {
	return &Client{name: name}
}

// WithQuotes sets the quotes the mock returns.
func (c *Client) WithQuotes(quotes ...carrier.Quote) *Client {
	c.Quotes = quotes
	return c
}

// WithError makes the mock fail with err.
func (c *Client) WithError(err error) *Client {
	c.Err = err
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// GetQuotes returns the configured quotes or error.
func (c *Client) GetQuotes(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.Quote, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Quotes, nil
}

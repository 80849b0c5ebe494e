// Package carrier provides an abstraction layer for freight quote providers.
package carrier

import (
	"context"
)

// QuoteProvider defines the interface that all quote providers must implement.
type QuoteProvider interface {
	// Name returns the provider identifier (e.g., "correios", "melhorenvio").
	Name() string

	// GetQuotes returns normalized freight quotes for a shipment request.
	GetQuotes(ctx context.Context, req *QuoteRequest) ([]Quote, error)
}

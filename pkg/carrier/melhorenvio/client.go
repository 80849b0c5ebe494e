package melhorenvio

import (
	"context"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/pkg/carrier"
)

const (
	carrierName = "melhorenvio"

	// SourceName tags quotes and shipments produced by this provider.
	SourceName = "Melhor Envio"
)

// Config holds Melhor Envio account configuration.
type Config struct {
	Token     string
	BaseURL   string
	UserAgent string
	UseMock   bool
}

// Client adapts the Melhor Envio aggregator API to the QuoteProvider
// interface and exposes the label purchase lifecycle.
type Client struct {
	api    APIClient
	logger *otelzap.Logger
	tracer trace.Tracer
}

// New creates a Melhor Envio client. When cfg.UseMock is set the client
// talks to a canned in-process API instead of the real service.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var api APIClient
	if cfg.UseMock {
		api = NewMockAPIClient()
	} else {
		api = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:   cfg.BaseURL,
			Token:     cfg.Token,
			UserAgent: cfg.UserAgent,
		})
	}
	return NewWithAPIClient(api, logger, tracer)
}

// NewWithAPIClient creates a client with a specific API client implementation.
// Useful for testing with mocks.
func NewWithAPIClient(api APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		api:    api,
		logger: logger,
		tracer: tracer,
	}
}

// Name returns the provider identifier used for registration.
func (c *Client) Name() string {
	return carrierName
}

// GetQuotes fetches quotes from the aggregator and normalizes them.
// Services the aggregator reports as unavailable for the route are
// dropped rather than surfaced as errors.
func (c *Client) GetQuotes(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	apiReq := &CalculateRequest{
		From: Endpoint{PostalCode: req.From.PostalCode},
		To:   Endpoint{PostalCode: req.To.PostalCode},
		Package: PackageInfo{
			Weight: req.Package.Weight,
			Length: req.Package.Length,
			Width:  req.Package.Width,
			Height: req.Package.Height,
		},
	}

	raw, err := c.api.Calculate(ctx, apiReq)
	if err != nil {
		return nil, c.wrapAPIError("CALCULATE", err)
	}

	quotes := make([]carrier.Quote, 0, len(raw))
	for _, q := range raw {
		if q.Error != "" {
			c.logger.Debug("Skipping unavailable service",
				zap.String("carrier", carrierName),
				zap.String("service", q.Name),
				zap.String("reason", q.Error))
			continue
		}
		quotes = append(quotes, carrier.Quote{
			ID:           q.ID.String(),
			Name:         q.Name,
			Price:        q.Price,
			DeliveryTime: q.DeliveryTime.String(),
			Company: carrier.Company{
				Name:    q.Company.Name,
				Picture: q.Company.Picture,
			},
			Source: SourceName,
		})
	}

	return quotes, nil
}

// CreateLabel purchases a single label and returns it.
func (c *Client) CreateLabel(ctx context.Context, order *LabelOrder) (*CheckoutLabel, error) {
	labels, err := c.api.Checkout(ctx, &CheckoutRequest{Shipments: []LabelOrder{*order}})
	if err != nil {
		return nil, c.wrapAPIError("CHECKOUT", err)
	}
	if len(labels) == 0 {
		return nil, carrier.NewError(carrierName, "CHECKOUT", "checkout returned no labels")
	}
	return &labels[0], nil
}

// PreviewLabel renders a draft PDF for one label.
func (c *Client) PreviewLabel(ctx context.Context, id string) ([]byte, error) {
	doc, err := c.api.Preview(ctx, []string{id})
	if err != nil {
		return nil, c.wrapAPIError("PREVIEW", err)
	}
	return doc, nil
}

// PayLabel pays for one label.
func (c *Client) PayLabel(ctx context.Context, id string) error {
	if err := c.api.Pay(ctx, []string{id}); err != nil {
		return c.wrapAPIError("PAY", err)
	}
	return nil
}

// PrintLabel renders the final PDF for one label.
func (c *Client) PrintLabel(ctx context.Context, id string) ([]byte, error) {
	doc, err := c.api.Print(ctx, []string{id})
	if err != nil {
		return nil, c.wrapAPIError("PRINT", err)
	}
	return doc, nil
}

// wrapAPIError converts API errors into carrier errors with context.
func (c *Client) wrapAPIError(code string, err error) error {
	if apiErr, ok := err.(*APIError); ok {
		cerr := carrier.NewError(carrierName, code, apiErr.Message).
			WithCause(err).
			WithStatusCode(apiErr.StatusCode).
			WithDetails(apiErr.Raw)
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			cerr = cerr.WithSentinel(carrier.ErrAuthenticationFailed)
		}
		return cerr
	}
	return carrier.NewError(carrierName, code, fmt.Sprintf("request failed: %v", err)).WithCause(err)
}

// Ensure Client implements the QuoteProvider interface
var _ carrier.QuoteProvider = (*Client)(nil)

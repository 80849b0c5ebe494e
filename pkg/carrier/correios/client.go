// Package correios provides integration with the Correios contract API:
// token authentication, national price and deadline batches, and object
// tracking.
package correios

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/pkg/carrier"
)

const carrierName = "correios"

// SourceName tags quotes produced by this provider.
const SourceName = "Correios"

// Contract product codes quoted on every request.
const (
	ProductSEDEX = "03220"
	ProductPAC   = "03298"
)

var products = []string{ProductSEDEX, ProductPAC}

var correiosCompany = carrier.Company{
	Name:    "Correios (Contrato)",
	Picture: "https://www.melhorenvio.com.br/images/shipping-companies/correios.png",
}

// Config holds Correios configuration.
type Config struct {
	User        string
	Password    string
	Contract    string // contract number
	PostingCard string // posting card number
	BaseURL     string
	UseMock     bool // When true, uses mock API client
}

// Client is the Correios quote provider. It implements
// carrier.QuoteProvider and delegates API calls to the underlying
// APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	auth      *Authenticator
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Correios client. If cfg.UseMock is true, it uses a
// mock API client for testing. Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:  cfg.BaseURL,
			User:     cfg.User,
			Password: cfg.Password,
			Timeout:  15 * time.Second,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Correios client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		auth:      NewAuthenticator(apiClient, cfg.Contract, cfg.PostingCard, logger),
		logger:    logger,
		tracer:    tracer,
	}
}

// Authenticator exposes the token cache, mainly for tests and for
// callers that need a token outside the quoting path.
func (c *Client) Authenticator() *Authenticator {
	return c.auth
}

// Name returns the provider name.
func (c *Client) Name() string {
	return carrierName
}

// GetQuotes returns normalized PAC and SEDEX contract quotes. Prices and
// deadlines come from two batched calls covering the same product codes
// and are correlated by product code.
func (c *Client) GetQuotes(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.Quote, error) {
	token, err := c.auth.PreferredToken(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Getting Correios quotes",
		zap.String("origin", req.From.PostalCode),
		zap.String("destination", req.To.PostalCode),
	)

	priceBatch, deadlineBatch := buildBatches(req)

	prices, err := c.apiClient.GetPrices(ctx, token, priceBatch)
	if err != nil {
		c.logger.Error("Correios price API error", zap.Error(err))
		return nil, wrapAPIError("PRICE", err)
	}

	// Deadlines enrich the quotes but are not required for them: a
	// failed deadline batch degrades delivery_time to "N/A".
	deadlines, err := c.apiClient.GetDeadlines(ctx, token, deadlineBatch)
	if err != nil {
		c.logger.Warn("Correios deadline API error, delivery times unavailable", zap.Error(err))
		deadlines = nil
	}

	return normalizeQuotes(prices, deadlines), nil
}

// Track returns the tracking history of one object. Objects unknown to
// Correios surface as carrier.ErrObjectNotFound carrying the carrier's
// message.
func (c *Client) Track(ctx context.Context, code string) (*TrackedObject, error) {
	token, err := c.auth.PreferredToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.apiClient.Track(ctx, token, code)
	if err != nil {
		c.logger.Error("Correios tracking API error", zap.Error(err))
		return nil, wrapAPIError("TRACKING", err)
	}

	if len(resp.Objetos) == 0 {
		return nil, carrier.NewError(carrierName, "TRACKING", "empty tracking response").
			WithSentinel(carrier.ErrObjectNotFound)
	}

	obj := resp.Objetos[0]
	if obj.Mensagem != "" {
		return nil, carrier.NewError(carrierName, "TRACKING", obj.Mensagem).
			WithSentinel(carrier.ErrObjectNotFound)
	}
	return &obj, nil
}

// ============================================================================
// Conversion helpers: carrier models -> API models
// ============================================================================

func buildBatches(req *carrier.QuoteRequest) ([]PriceRequestItem, []DeadlineRequestItem) {
	origin := digitsOnly(req.From.PostalCode)
	destination := digitsOnly(req.To.PostalCode)
	grams := int(math.Round(req.Package.Weight * 1000))

	priceBatch := make([]PriceRequestItem, len(products))
	deadlineBatch := make([]DeadlineRequestItem, len(products))
	for i, product := range products {
		priceBatch[i] = PriceRequestItem{
			CoProduto:    product,
			NuCepOrigem:  origin,
			NuCepDestino: destination,
			PsObjeto:     grams,
			TpObjeto:     "2",
			Comprimento:  req.Package.Length,
			Largura:      req.Package.Width,
			Altura:       req.Package.Height,
		}
		deadlineBatch[i] = DeadlineRequestItem{
			CoProduto:    product,
			NuCepOrigem:  origin,
			NuCepDestino: destination,
		}
	}
	return priceBatch, deadlineBatch
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ============================================================================
// Conversion helpers: API models -> carrier models
// ============================================================================

func normalizeQuotes(prices []PriceItem, deadlines []DeadlineItem) []carrier.Quote {
	deadlineByProduct := make(map[string]string, len(deadlines))
	for _, d := range deadlines {
		if d.MsgErro != "" {
			continue
		}
		deadlineByProduct[d.CoProduto] = strconv.Itoa(d.PrazoEntrega)
	}

	quotes := make([]carrier.Quote, 0, len(prices))
	for _, p := range prices {
		if p.MsgErro != "" {
			continue
		}

		name := "SEDEX Contrato"
		if p.CoProduto == ProductPAC {
			name = "PAC Contrato"
		}

		deliveryTime, ok := deadlineByProduct[p.CoProduto]
		if !ok {
			deliveryTime = "N/A"
		}

		quotes = append(quotes, carrier.Quote{
			ID:           p.CoProduto,
			Name:         name,
			Price:        strings.ReplaceAll(p.PcFinal, ",", "."),
			DeliveryTime: deliveryTime,
			Company:      correiosCompany,
			Source:       SourceName,
		})
	}
	return quotes
}

func wrapAPIError(code string, err error) error {
	if apiErr, ok := err.(*APIError); ok {
		return carrier.NewError(carrierName, code, apiErr.Error()).
			WithCause(apiErr).
			WithDetails(apiErr.Raw)
	}
	return carrier.NewError(carrierName, code, "request failed").WithCause(err)
}

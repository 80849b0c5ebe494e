package melhorenvio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL   string
	Token     string
	UserAgent string // Melhor Envio requires an identifiable User-Agent
	Timeout   time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Niza Logistica/1.0"
	}

	return &HTTPAPIClient{
		baseURL:   cfg.BaseURL,
		token:     cfg.Token,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Calculate fetches freight quotes.
// POST /api/v2/me/shipment/calculate
func (c *HTTPAPIClient) Calculate(ctx context.Context, req *CalculateRequest) ([]CalculateQuote, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v2/me/shipment/calculate", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result []CalculateQuote
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode calculate response: %w", err)
	}
	return result, nil
}

// Checkout purchases labels.
// POST /api/v2/me/shipment/checkout
func (c *HTTPAPIClient) Checkout(ctx context.Context, req *CheckoutRequest) ([]CheckoutLabel, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v2/me/shipment/checkout", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.parseError(resp)
	}

	var result []CheckoutLabel
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	return result, nil
}

// Preview renders a draft PDF for the given label ids.
// POST /api/v2/me/shipment/preview
func (c *HTTPAPIClient) Preview(ctx context.Context, ids []string) ([]byte, error) {
	return c.fetchDocument(ctx, "/api/v2/me/shipment/preview", ids)
}

// Pay pays for the given label ids.
// POST /api/v2/me/shipment/pay
func (c *HTTPAPIClient) Pay(ctx context.Context, ids []string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v2/me/shipment/pay", BatchRequest{Shipments: ids})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// Print renders the final PDF for the given label ids.
// POST /api/v2/me/shipment/print
func (c *HTTPAPIClient) Print(ctx context.Context, ids []string) ([]byte, error) {
	return c.fetchDocument(ctx, "/api/v2/me/shipment/print", ids)
}

// fetchDocument posts a label-id batch and returns the raw binary body.
func (c *HTTPAPIClient) fetchDocument(ctx context.Context, path string, ids []string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, BatchRequest{Shipments: ids})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	return body, nil
}

// doRequest performs an HTTP request with proper headers and authentication.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	return c.httpClient.Do(req)
}

// parseError extracts error information from an HTTP response.
func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		apiErr.StatusCode = resp.StatusCode
		apiErr.Raw = body
		return &apiErr
	}

	return &APIError{
		Message:    string(body),
		StatusCode: resp.StatusCode,
		Raw:        body,
	}
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)

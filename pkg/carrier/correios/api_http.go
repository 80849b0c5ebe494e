package correios

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
	user       string
	password   string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL  string
	User     string
	Password string
	Timeout  time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		// Bounds the degraded-result path when Correios hangs.
		timeout = 15 * time.Second
	}

	return &HTTPAPIClient{
		baseURL:  cfg.BaseURL,
		user:     cfg.User,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Authenticate obtains a bearer token from the Correios token endpoint.
// POST /token/v1/autentica/contrato or /token/v1/autentica/cartaopostagem,
// authenticated with Basic credentials.
func (c *HTTPAPIClient) Authenticate(ctx context.Context, mode CredentialMode, number string) (*TokenResponse, error) {
	path := fmt.Sprintf("/token/v1/autentica/%s", mode)

	body, err := json.Marshal(TokenRequest{Numero: number})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.parseError(resp)
	}

	var result TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &result, nil
}

// GetPrices submits a batched national price request.
// POST /preco/v1/nacional with a bearer token.
func (c *HTTPAPIClient) GetPrices(ctx context.Context, token string, batch []PriceRequestItem) ([]PriceItem, error) {
	resp, err := c.doBearer(ctx, http.MethodPost, "/preco/v1/nacional", token, batch)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result []PriceItem
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}
	return result, nil
}

// GetDeadlines submits a batched national deadline request.
// POST /prazo/v1/nacional with a bearer token.
func (c *HTTPAPIClient) GetDeadlines(ctx context.Context, token string, batch []DeadlineRequestItem) ([]DeadlineItem, error) {
	resp, err := c.doBearer(ctx, http.MethodPost, "/prazo/v1/nacional", token, batch)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result []DeadlineItem
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode deadline response: %w", err)
	}
	return result, nil
}

// Track retrieves the tracking history of an object.
// GET /srorastro/v1/objetos/{code}
func (c *HTTPAPIClient) Track(ctx context.Context, token, code string) (*TrackingResponse, error) {
	path := fmt.Sprintf("/srorastro/v1/objetos/%s", code)

	resp, err := c.doBearer(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result TrackingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode tracking response: %w", err)
	}
	return &result, nil
}

// doBearer performs an HTTP request authenticated with a bearer token.
func (c *HTTPAPIClient) doBearer(ctx context.Context, method, path, token string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return c.httpClient.Do(req)
}

// parseError extracts error information from an HTTP response.
func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Message != "" || len(apiErr.Msgs) > 0) {
		if apiErr.Code == "" {
			apiErr.Code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		}
		apiErr.Raw = body
		return &apiErr
	}

	return &APIError{
		Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Message: string(body),
		Raw:     body,
	}
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)

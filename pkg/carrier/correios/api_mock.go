package correios

import (
	"context"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnAuthenticate func(ctx context.Context, mode CredentialMode, number string) (*TokenResponse, error)
	OnGetPrices    func(ctx context.Context, token string, batch []PriceRequestItem) ([]PriceItem, error)
	OnGetDeadlines func(ctx context.Context, token string, batch []DeadlineRequestItem) ([]DeadlineItem, error)
	OnTrack        func(ctx context.Context, token, code string) (*TrackingResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Authenticate returns a mock token valid for 24 hours.
func (m *MockAPIClient) Authenticate(ctx context.Context, mode CredentialMode, number string) (*TokenResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated authentication error"}
	}

	if m.OnAuthenticate != nil {
		return m.OnAuthenticate(ctx, mode, number)
	}

	return &TokenResponse{
		Token:    "mock-token-" + string(mode),
		Issue:    time.Now().Format(time.RFC3339),
		ExpiraEm: "86400000",
	}, nil
}

// GetPrices returns mock prices for every requested product.
func (m *MockAPIClient) GetPrices(ctx context.Context, token string, batch []PriceRequestItem) ([]PriceItem, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnGetPrices != nil {
		return m.OnGetPrices(ctx, token, batch)
	}

	result := make([]PriceItem, len(batch))
	for i, item := range batch {
		price := "25,40"
		if item.CoProduto == ProductSEDEX {
			price = "42,10"
		}
		result[i] = PriceItem{CoProduto: item.CoProduto, PcFinal: price}
	}
	return result, nil
}

// GetDeadlines returns mock deadlines for every requested product.
func (m *MockAPIClient) GetDeadlines(ctx context.Context, token string, batch []DeadlineRequestItem) ([]DeadlineItem, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnGetDeadlines != nil {
		return m.OnGetDeadlines(ctx, token, batch)
	}

	result := make([]DeadlineItem, len(batch))
	for i, item := range batch {
		days := 8
		if item.CoProduto == ProductSEDEX {
			days = 3
		}
		result[i] = DeadlineItem{CoProduto: item.CoProduto, PrazoEntrega: days}
	}
	return result, nil
}

// Track returns a mock in-transit object.
func (m *MockAPIClient) Track(ctx context.Context, token, code string) (*TrackingResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnTrack != nil {
		return m.OnTrack(ctx, token, code)
	}

	return &TrackingResponse{
		Objetos: []TrackedObject{
			{
				CodObjeto: code,
				Eventos: []TrackingEvent{
					{
						Codigo:     "RO",
						Descricao:  "Objeto em trânsito - por favor aguarde",
						DtHrCriado: time.Now().Format("2006-01-02T15:04:05"),
					},
				},
			},
		},
	}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)

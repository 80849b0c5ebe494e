package melhorenvio

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCalculate func(ctx context.Context, req *CalculateRequest) ([]CalculateQuote, error)
	OnCheckout  func(ctx context.Context, req *CheckoutRequest) ([]CheckoutLabel, error)
	OnPreview   func(ctx context.Context, ids []string) ([]byte, error)
	OnPay       func(ctx context.Context, ids []string) error
	OnPrint     func(ctx context.Context, ids []string) ([]byte, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return &APIError{Message: "Simulated API error", StatusCode: 500}
	}
	return nil
}

// Calculate returns mock quotes for two services plus one unavailable entry.
func (m *MockAPIClient) Calculate(ctx context.Context, req *CalculateRequest) ([]CalculateQuote, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnCalculate != nil {
		return m.OnCalculate(ctx, req)
	}

	return []CalculateQuote{
		{
			ID:           "1",
			Name:         "PAC",
			Price:        "30.00",
			DeliveryTime: "8",
			Company: QuoteCompany{
				ID:      1,
				Name:    "Correios",
				Picture: "https://www.melhorenvio.com.br/images/shipping-companies/correios.png",
			},
		},
		{
			ID:           "3",
			Name:         ".Package",
			Price:        "27.90",
			DeliveryTime: "5",
			Company: QuoteCompany{
				ID:      2,
				Name:    "Jadlog",
				Picture: "https://www.melhorenvio.com.br/images/shipping-companies/jadlog.png",
			},
		},
		{
			ID:    "17",
			Name:  "Mini Envios",
			Error: "O peso do objeto está acima do limite do serviço.",
			Company: QuoteCompany{
				ID:      1,
				Name:    "Correios",
				Picture: "https://www.melhorenvio.com.br/images/shipping-companies/correios.png",
			},
		},
	}, nil
}

// Checkout returns one purchased label per requested shipment.
func (m *MockAPIClient) Checkout(ctx context.Context, req *CheckoutRequest) ([]CheckoutLabel, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnCheckout != nil {
		return m.OnCheckout(ctx, req)
	}

	labels := make([]CheckoutLabel, len(req.Shipments))
	for i, order := range req.Shipments {
		labels[i] = CheckoutLabel{
			ID:       uuid.New().String(),
			Protocol: "ORD-" + uuid.New().String()[:8],
			Price:    "27.90",
			Status:   "pending",
			Service:  LabelService{ID: order.Service, Name: "Jadlog .Package"},
		}
	}
	return labels, nil
}

// Preview returns a placeholder PDF document.
func (m *MockAPIClient) Preview(ctx context.Context, ids []string) ([]byte, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnPreview != nil {
		return m.OnPreview(ctx, ids)
	}

	return []byte("%PDF-1.4 mock preview"), nil
}

// Pay succeeds for any label ids.
func (m *MockAPIClient) Pay(ctx context.Context, ids []string) error {
	if err := m.simulate(); err != nil {
		return err
	}

	if m.OnPay != nil {
		return m.OnPay(ctx, ids)
	}
	return nil
}

// Print returns a placeholder PDF document.
func (m *MockAPIClient) Print(ctx context.Context, ids []string) ([]byte, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnPrint != nil {
		return m.OnPrint(ctx, ids)
	}

	return []byte("%PDF-1.4 mock label"), nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)

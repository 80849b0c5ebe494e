package melhorenvio

import (
	"context"
	"encoding/json"
	"fmt"
)

// APIClient defines the interface for Melhor Envio API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Calculate fetches freight quotes.
	Calculate(ctx context.Context, req *CalculateRequest) ([]CalculateQuote, error)

	// Checkout purchases one or more labels from the cart.
	Checkout(ctx context.Context, req *CheckoutRequest) ([]CheckoutLabel, error)

	// Preview renders a draft PDF for the given label ids.
	Preview(ctx context.Context, ids []string) ([]byte, error)

	// Pay pays for the given label ids.
	Pay(ctx context.Context, ids []string) error

	// Print renders the final PDF for the given label ids.
	Print(ctx context.Context, ids []string) ([]byte, error)
}

// ============================================================================
// API Request/Response Types (match Melhor Envio REST API v2 structure)
// ============================================================================

// Endpoint identifies one end of a quote request by postal code.
type Endpoint struct {
	PostalCode string `json:"postal_code"`
}

// PackageInfo describes the parcel. Weight in kilograms, dimensions in
// centimeters.
type PackageInfo struct {
	Weight float64 `json:"weight"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CalculateRequest is the body of POST /api/v2/me/shipment/calculate.
type CalculateRequest struct {
	From    Endpoint    `json:"from"`
	To      Endpoint    `json:"to"`
	Package PackageInfo `json:"package"`
}

// QuoteCompany is the carrier behind one calculated service.
type QuoteCompany struct {
	ID      int    `json:"id,omitempty"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// CalculateQuote is one service entry of the calculate response.
// Services unavailable for the route carry Error instead of a price.
type CalculateQuote struct {
	ID           json.Number  `json:"id"`
	Name         string       `json:"name"`
	Price        string       `json:"price"`
	DeliveryTime json.Number  `json:"delivery_time"`
	Company      QuoteCompany `json:"company"`
	Error        string       `json:"error,omitempty"`
}

// LabelParty is the sender or recipient of a label.
type LabelParty struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Document   string `json:"document,omitempty"`
	Address    string `json:"address,omitempty"`
	Number     string `json:"number,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	StateAbbr  string `json:"state_abbr,omitempty"`
	PostalCode string `json:"postal_code"`
}

// LabelOptions carries declared value and receipt/own-hand flags.
type LabelOptions struct {
	InsuranceValue float64 `json:"insurance_value,omitempty"`
	Receipt        bool    `json:"receipt"`
	OwnHand        bool    `json:"own_hand"`
}

// LabelOrder is one shipment of a checkout request.
type LabelOrder struct {
	Service int           `json:"service"`
	Agency  int           `json:"agency,omitempty"`
	From    LabelParty    `json:"from"`
	To      LabelParty    `json:"to"`
	Package PackageInfo   `json:"package"`
	Options *LabelOptions `json:"options,omitempty"`
}

// CheckoutRequest is the body of POST /api/v2/me/shipment/checkout.
type CheckoutRequest struct {
	Shipments []LabelOrder `json:"shipments"`
}

// LabelService identifies the purchased shipping service.
type LabelService struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CheckoutLabel is one purchased label. The checkout endpoint returns a
// JSON array of these; this is the single canonical response contract.
type CheckoutLabel struct {
	ID       string       `json:"id"`
	Protocol string       `json:"protocol,omitempty"`
	Price    json.Number  `json:"price"`
	Status   string       `json:"status,omitempty"`
	Service  LabelService `json:"service"`
}

// BatchRequest is the body of the preview/pay/print endpoints: a list of
// label ids.
type BatchRequest struct {
	Shipments []string `json:"shipments"`
}

// APIError represents an error from the Melhor Envio API.
type APIError struct {
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
	StatusCode int                 `json:"-"`
	Raw        json.RawMessage     `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP_%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP_%d", e.StatusCode)
}

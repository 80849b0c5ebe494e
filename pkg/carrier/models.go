package carrier

import (
	"math"
	"strconv"
)

// Endpoint identifies one end of a shipment by postal code.
type Endpoint struct {
	PostalCode string `json:"postal_code"`
}

// Package describes the parcel being quoted. Weight is in kilograms,
// dimensions in centimeters.
type Package struct {
	Weight float64 `json:"weight"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// QuoteRequest is the request for freight quotes.
type QuoteRequest struct {
	From    Endpoint `json:"from"`
	To      Endpoint `json:"to"`
	Package Package  `json:"package"`
}

// Validate checks that every field a provider needs is present.
// Zero dimensions are rejected: no carrier can price a dimensionless parcel.
func (r *QuoteRequest) Validate() error {
	switch {
	case r.From.PostalCode == "":
		return NewError("", "VALIDATION", "origin postal_code is required").WithSentinel(ErrInvalidRequest)
	case r.To.PostalCode == "":
		return NewError("", "VALIDATION", "destination postal_code is required").WithSentinel(ErrInvalidRequest)
	case r.Package.Weight <= 0:
		return NewError("", "VALIDATION", "package weight is required").WithSentinel(ErrInvalidRequest)
	case r.Package.Length <= 0 || r.Package.Width <= 0 || r.Package.Height <= 0:
		return NewError("", "VALIDATION", "package dimensions are required").WithSentinel(ErrInvalidRequest)
	}
	return nil
}

// Company identifies the carrier behind a quote.
type Company struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Quote is a normalized freight quote. Price is a dot-decimal string
// (e.g. "25.40"); DeliveryTime is the transit time in days, or "N/A"
// when the provider did not report one.
type Quote struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        string  `json:"price"`
	DeliveryTime string  `json:"delivery_time"`
	Company      Company `json:"company"`
	Source       string  `json:"source"`
}

// PriceValue returns the numeric price for sorting. Unparsable prices
// sort last.
func (q Quote) PriceValue() float64 {
	v, err := strconv.ParseFloat(q.Price, 64)
	if err != nil {
		return math.MaxFloat64
	}
	return v
}

package correios

import (
	"context"
	"encoding/json"
	"fmt"
)

// APIClient defines the interface for Correios API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Authenticate obtains a bearer token for one credential mode.
	Authenticate(ctx context.Context, mode CredentialMode, number string) (*TokenResponse, error)

	// GetPrices submits one batched price request and returns per-product results.
	GetPrices(ctx context.Context, token string, batch []PriceRequestItem) ([]PriceItem, error)

	// GetDeadlines submits one batched delivery-deadline request.
	GetDeadlines(ctx context.Context, token string, batch []DeadlineRequestItem) ([]DeadlineItem, error)

	// Track retrieves tracking events for an object code.
	Track(ctx context.Context, token, code string) (*TrackingResponse, error)
}

// CredentialMode selects which Correios credential is presented to the
// token endpoint.
type CredentialMode string

const (
	// ModeContract authenticates with the contract number.
	ModeContract CredentialMode = "contrato"

	// ModeCard authenticates with the posting card number.
	ModeCard CredentialMode = "cartaopostagem"
)

// ============================================================================
// API Request/Response Types (match Correios CWS API structure)
// ============================================================================

// TokenRequest is the body of POST /token/v1/autentica/{mode}.
type TokenRequest struct {
	Numero string `json:"numero"`
}

// TokenResponse is returned by the token endpoints. ExpiraEm is the
// token lifetime in milliseconds counted from Issue.
type TokenResponse struct {
	Token    string      `json:"token"`
	Issue    string      `json:"issue"`
	ExpiraEm json.Number `json:"expiraEm"`
}

// PriceRequestItem is one entry of the batched price request.
// POST /preco/v1/nacional
type PriceRequestItem struct {
	CoProduto    string  `json:"coProduto"`
	NuCepOrigem  string  `json:"nuCepOrigem"`
	NuCepDestino string  `json:"nuCepDestino"`
	PsObjeto     int     `json:"psObjeto"` // grams
	TpObjeto     string  `json:"tpObjeto"` // "2" = parcel/box
	Comprimento  float64 `json:"comprimento"`
	Largura      float64 `json:"largura"`
	Altura       float64 `json:"altura"`
}

// PriceItem is one entry of the batched price response. Entries that
// could not be priced carry MsgErro instead of a price.
type PriceItem struct {
	CoProduto string `json:"coProduto"`
	PcFinal   string `json:"pcFinal"` // comma-decimal, e.g. "25,40"
	MsgErro   string `json:"msgErro,omitempty"`
}

// DeadlineRequestItem is one entry of the batched deadline request.
// POST /prazo/v1/nacional
type DeadlineRequestItem struct {
	CoProduto    string `json:"coProduto"`
	NuCepOrigem  string `json:"nuCepOrigem"`
	NuCepDestino string `json:"nuCepDestino"`
}

// DeadlineItem is one entry of the batched deadline response.
type DeadlineItem struct {
	CoProduto    string `json:"coProduto"`
	PrazoEntrega int    `json:"prazoEntrega"` // business days
	MsgErro      string `json:"msgErro,omitempty"`
}

// TrackingResponse is returned by GET /srorastro/v1/objetos/{code}.
type TrackingResponse struct {
	Objetos []TrackedObject `json:"objetos"`
}

// TrackedObject holds the tracking history of one object. Unknown
// objects carry Mensagem instead of events.
type TrackedObject struct {
	CodObjeto string          `json:"codObjeto"`
	Mensagem  string          `json:"mensagem,omitempty"`
	TipoPostal *PostalType    `json:"tipoPostal,omitempty"`
	Eventos   []TrackingEvent `json:"eventos,omitempty"`
}

// PostalType describes the postal product of a tracked object.
type PostalType struct {
	Sigla     string `json:"sigla"`
	Descricao string `json:"descricao"`
}

// TrackingEvent is a single tracking event, newest first.
type TrackingEvent struct {
	Codigo     string `json:"codigo"`
	Descricao  string `json:"descricao"`
	DtHrCriado string `json:"dtHrCriado"`
	Unidade    *Unit  `json:"unidade,omitempty"`
}

// Unit is the postal unit where an event was recorded.
type Unit struct {
	Tipo     string `json:"tipo"`
	Endereco *struct {
		Cidade string `json:"cidade"`
		UF     string `json:"uf"`
	} `json:"endereco,omitempty"`
}

// APIError represents an error payload from the Correios API.
type APIError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Msgs    []string        `json:"msgs,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

func (e *APIError) Error() string {
	if len(e.Msgs) > 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Msgs[0])
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

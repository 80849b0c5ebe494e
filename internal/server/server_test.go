package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/internal/labels"
	"github.com/nizaesteves/backoffice/internal/server"
	"github.com/nizaesteves/backoffice/internal/storage"
	"github.com/nizaesteves/backoffice/internal/telemetry"
	"github.com/nizaesteves/backoffice/pkg/carrier"
	"github.com/nizaesteves/backoffice/pkg/carrier/correios"
	"github.com/nizaesteves/backoffice/pkg/carrier/melhorenvio"
)

// Prometheus metrics register globally, so all test servers share one
// instance.
var testMetrics = telemetry.NewMetrics()

type fakeRegistry struct {
	quotes   []carrier.Quote
	failures []carrier.Failure
}

func (f *fakeRegistry) GetAllQuotes(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.Quote, []carrier.Failure) {
	return f.quotes, f.failures
}

type fakeLabels struct {
	created   *labels.CreatedLabel
	createErr error
	payErr    error
	doc       []byte
}

func (f *fakeLabels) CreateLabel(ctx context.Context, order *melhorenvio.LabelOrder) (*labels.CreatedLabel, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeLabels) Preview(ctx context.Context, id string) ([]byte, error) {
	return f.doc, nil
}

func (f *fakeLabels) Pay(ctx context.Context, id string) error {
	return f.payErr
}

func (f *fakeLabels) Print(ctx context.Context, id string) ([]byte, error) {
	return f.doc, nil
}

type fakeTracker struct {
	obj *correios.TrackedObject
	err error
}

func (f *fakeTracker) Track(ctx context.Context, code string) (*correios.TrackedObject, error) {
	return f.obj, f.err
}

type fakeShipments struct {
	created []storage.Shipment
	page    *storage.ShipmentPage
	updated *storage.Shipment
	err     error
}

func (f *fakeShipments) Create(ctx context.Context, s *storage.Shipment) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeShipments) CreateBatch(ctx context.Context, shipments []storage.Shipment) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, shipments...)
	return nil
}

func (f *fakeShipments) List(ctx context.Context, filter storage.ShipmentFilter) (*storage.ShipmentPage, error) {
	return f.page, f.err
}

func (f *fakeShipments) UpdateStatus(ctx context.Context, id uuid.UUID, status storage.ShipmentStatus) (*storage.Shipment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.updated, nil
}

func (f *fakeShipments) Delete(ctx context.Context, id uuid.UUID) error {
	return f.err
}

type fakeClients struct {
	clients []storage.Client
	err     error
}

func (f *fakeClients) Create(ctx context.Context, c *storage.Client) error {
	if f.err != nil {
		return f.err
	}
	f.clients = append(f.clients, *c)
	return nil
}

func (f *fakeClients) Get(ctx context.Context, id uuid.UUID) (*storage.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.clients {
		if f.clients[i].ID == id {
			return &f.clients[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeClients) List(ctx context.Context) ([]storage.Client, error) {
	return f.clients, f.err
}

func (f *fakeClients) Update(ctx context.Context, c *storage.Client) error {
	return f.err
}

func (f *fakeClients) Delete(ctx context.Context, id uuid.UUID) error {
	return f.err
}

type fakeSettings struct {
	settings *storage.Settings
}

func (f *fakeSettings) Get(ctx context.Context) (*storage.Settings, error) {
	return f.settings, nil
}

func (f *fakeSettings) Save(ctx context.Context, s *storage.Settings) error {
	f.settings = s
	return nil
}

func newTestServer(t *testing.T, deps server.Deps) http.Handler {
	t.Helper()

	deps.Logger = otelzap.New(zap.NewNop())
	deps.Metrics = testMetrics
	return server.New(server.Config{Port: 0}, deps).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	h := newTestServer(t, server.Deps{})

	rec := doJSON(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Quote_ReturnsMergedQuotes(t *testing.T) {
	h := newTestServer(t, server.Deps{
		Registry: &fakeRegistry{
			quotes: []carrier.Quote{
				{ID: "1", Name: "PAC", Price: "25.40", DeliveryTime: "8", Source: "Melhor Envio"},
				{ID: "03220", Name: "SEDEX", Price: "42.10", DeliveryTime: "3", Source: "Correios"},
			},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/cotacao",
		`{"from":{"postal_code":"01001-000"},"to":{"postal_code":"20040-000"},"package":{"weight":1.5,"length":20,"width":15,"height":10}}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var quotes []carrier.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quotes))
	require.Len(t, quotes, 2)
	assert.Equal(t, "PAC", quotes[0].Name)
}

func TestServer_Quote_ValidationError(t *testing.T) {
	h := newTestServer(t, server.Deps{Registry: &fakeRegistry{}})

	rec := doJSON(t, h, http.MethodPost, "/cotacao", `{"from":{"postal_code":"01001-000"}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "obrigatórios")
}

func TestServer_Quote_PartialFailureStillOK(t *testing.T) {
	h := newTestServer(t, server.Deps{
		Registry: &fakeRegistry{
			quotes: []carrier.Quote{
				{ID: "1", Name: "PAC", Price: "25.40", Source: "Melhor Envio"},
			},
			failures: []carrier.Failure{
				{Provider: "correios", Err: errors.New("timeout")},
			},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/cotacao",
		`{"from":{"postal_code":"01001-000"},"to":{"postal_code":"20040-000"},"package":{"weight":1,"length":20,"width":15,"height":10}}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var quotes []carrier.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quotes))
	assert.Len(t, quotes, 1)
}

func TestServer_CreateLabel_ReturnsShipmentWithRemoteID(t *testing.T) {
	shipment := &storage.Shipment{
		NomeCliente:    "Maria Silva",
		Transportadora: "Jadlog .Package",
		CodigoRastreio: "ORD-1",
		Preco:          "27.90",
		Status:         storage.StatusAwaitingPayment,
		Origem:         "Melhor Envio",
	}
	h := newTestServer(t, server.Deps{
		Labels: &fakeLabels{created: &labels.CreatedLabel{Shipment: shipment, RemoteID: "me-123"}},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/melhorenvio/labels",
		`{"service":3,"to":{"name":"Maria Silva","postal_code":"20040-000"},"from":{"name":"Loja","postal_code":"01001-000"},"package":{"weight":1.5,"length":20,"width":15,"height":10}}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "me-123", body["melhorEnvioId"])
	assert.Equal(t, "Maria Silva", body["nomeCliente"])
	assert.Equal(t, "aguardando_pagamento", body["status"])
}

func TestServer_CreateLabel_IncompleteOrder(t *testing.T) {
	h := newTestServer(t, server.Deps{
		Labels: &fakeLabels{
			createErr: carrier.NewError("Melhor Envio", "VALIDATION", "recipient name is required").
				WithSentinel(carrier.ErrInvalidRequest),
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/melhorenvio/labels",
		`{"service":3,"to":{"postal_code":"20040-000"}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["message"])
}

func TestServer_LabelRoutes_DisabledIntegration(t *testing.T) {
	h := newTestServer(t, server.Deps{})

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/melhorenvio/labels"},
		{http.MethodGet, "/api/melhorenvio/labels/me-123/preview"},
		{http.MethodPost, "/api/melhorenvio/labels/me-123/pay"},
		{http.MethodGet, "/api/melhorenvio/labels/me-123/print"},
	} {
		rec := doJSON(t, h, route.method, route.path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, route.path)
	}
}

func TestServer_CreateLabel_DuplicateTrackingCode(t *testing.T) {
	h := newTestServer(t, server.Deps{
		Labels: &fakeLabels{createErr: storage.ErrDuplicate},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/melhorenvio/labels", `{"service":3,"to":{"name":"X","postal_code":"20040-000"}}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_CreateLabel_UpstreamFailure(t *testing.T) {
	h := newTestServer(t, server.Deps{
		Labels: &fakeLabels{createErr: errors.New("insufficient balance")},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/melhorenvio/labels", `{"service":3,"to":{"name":"X","postal_code":"20040-000"}}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["details"])
}

func TestServer_PayLabel(t *testing.T) {
	h := newTestServer(t, server.Deps{Labels: &fakeLabels{}})

	rec := doJSON(t, h, http.MethodPost, "/api/melhorenvio/labels/me-123/pay", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Etiqueta paga com sucesso!", body["message"])
}

func TestServer_PreviewAndPrint_ServePDF(t *testing.T) {
	h := newTestServer(t, server.Deps{Labels: &fakeLabels{doc: []byte("%PDF-1.4")}})

	for _, path := range []string{
		"/api/melhorenvio/labels/me-123/preview",
		"/api/melhorenvio/labels/me-123/print",
	} {
		rec := doJSON(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4", rec.Body.String())
	}
}

func TestServer_Settings_EmptyThenSaved(t *testing.T) {
	store := &fakeSettings{}
	h := newTestServer(t, server.Deps{Settings: store})

	rec := doJSON(t, h, http.MethodGet, "/api/settings", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/settings",
		`{"nomeLoja":"Loja Niza","address":{"cep":"01001-000","cidade":"São Paulo","uf":"SP"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Loja Niza", body["nomeLoja"])

	// PUT stays as an alias of the POST upsert.
	rec = doJSON(t, h, http.MethodPut, "/api/settings", `{"nomeLoja":"Loja Niza 2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CreateShipments_SingleAndBatch(t *testing.T) {
	store := &fakeShipments{}
	h := newTestServer(t, server.Deps{Shipments: store})

	rec := doJSON(t, h, http.MethodPost, "/api/shipments",
		`{"nomeCliente":"Maria","transportadora":"Correios","codigoRastreio":"BR1","preco":"10.00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.created, 1)

	rec = doJSON(t, h, http.MethodPost, "/api/shipments",
		`[{"nomeCliente":"A","transportadora":"Correios","codigoRastreio":"BR2","preco":"1.00"},
		  {"nomeCliente":"B","transportadora":"Correios","codigoRastreio":"BR3","preco":"2.00"}]`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, store.created, 3)
}

func TestServer_CreateShipments_EmptyBatch(t *testing.T) {
	h := newTestServer(t, server.Deps{Shipments: &fakeShipments{}})

	rec := doJSON(t, h, http.MethodPost, "/api/shipments", `[]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UpdateShipmentStatus(t *testing.T) {
	id := uuid.New()
	store := &fakeShipments{updated: &storage.Shipment{ID: id, Status: storage.StatusShipped}}
	h := newTestServer(t, server.Deps{Shipments: store})

	rec := doJSON(t, h, http.MethodPatch, "/api/shipments/"+id.String()+"/status",
		`{"status":"enviado"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/api/shipments/"+id.String()+"/status",
		`{"status":"entregue"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_DeleteShipment_NotFound(t *testing.T) {
	h := newTestServer(t, server.Deps{Shipments: &fakeShipments{err: storage.ErrNotFound}})

	rec := doJSON(t, h, http.MethodDelete, "/api/shipments/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Clients_CreateAndList(t *testing.T) {
	store := &fakeClients{}
	h := newTestServer(t, server.Deps{Clients: store})

	rec := doJSON(t, h, http.MethodPost, "/api/clients",
		`{"nome":"Maria Silva","email":"maria@example.com","address":{"cep":"20040-000"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/clients", `{"email":"sem-nome@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var clients []storage.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	assert.Len(t, clients, 1)
}

func TestServer_Tracking_Found(t *testing.T) {
	h := newTestServer(t, server.Deps{
		Tracker: &fakeTracker{obj: &correios.TrackedObject{CodObjeto: "BR123456789BR"}},
	})

	rec := doJSON(t, h, http.MethodGet, "/api/tracking/BR123456789BR", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var obj correios.TrackedObject
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj))
	assert.Equal(t, "BR123456789BR", obj.CodObjeto)
}

func TestServer_Tracking_Unknown(t *testing.T) {
	err := carrier.NewError("correios", "TRACK", "Objeto não encontrado na base de dados dos Correios.").
		WithSentinel(carrier.ErrObjectNotFound)
	h := newTestServer(t, server.Deps{Tracker: &fakeTracker{err: err}})

	rec := doJSON(t, h, http.MethodGet, "/api/tracking/XX000000000XX", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

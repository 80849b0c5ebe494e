package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/internal/labels"
	"github.com/nizaesteves/backoffice/internal/storage"
	"github.com/nizaesteves/backoffice/internal/telemetry"
	"github.com/nizaesteves/backoffice/pkg/carrier"
	"github.com/nizaesteves/backoffice/pkg/carrier/correios"
	"github.com/nizaesteves/backoffice/pkg/carrier/melhorenvio"
)

// QuoteService is the multi-provider quote fan-out the server exposes.
type QuoteService interface {
	GetAllQuotes(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.Quote, []carrier.Failure)
}

// LabelManager drives the Melhor Envio label lifecycle.
type LabelManager interface {
	CreateLabel(ctx context.Context, order *melhorenvio.LabelOrder) (*labels.CreatedLabel, error)
	Preview(ctx context.Context, id string) ([]byte, error)
	Pay(ctx context.Context, id string) error
	Print(ctx context.Context, id string) ([]byte, error)
}

// Tracker resolves tracking codes against the Correios tracking API.
type Tracker interface {
	Track(ctx context.Context, code string) (*correios.TrackedObject, error)
}

// ShipmentStore is the shipment repository surface the handlers use.
type ShipmentStore interface {
	Create(ctx context.Context, s *storage.Shipment) error
	CreateBatch(ctx context.Context, shipments []storage.Shipment) error
	List(ctx context.Context, filter storage.ShipmentFilter) (*storage.ShipmentPage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status storage.ShipmentStatus) (*storage.Shipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientStore is the client repository surface the handlers use.
type ClientStore interface {
	Create(ctx context.Context, c *storage.Client) error
	Get(ctx context.Context, id uuid.UUID) (*storage.Client, error)
	List(ctx context.Context) ([]storage.Client, error)
	Update(ctx context.Context, c *storage.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PackageStore is the package repository surface the handlers use.
type PackageStore interface {
	Create(ctx context.Context, p *storage.Package) error
	Get(ctx context.Context, id uuid.UUID) (*storage.Package, error)
	List(ctx context.Context) ([]storage.Package, error)
	Update(ctx context.Context, p *storage.Package) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsStore is the settings repository surface the handlers use.
type SettingsStore interface {
	Get(ctx context.Context) (*storage.Settings, error)
	Save(ctx context.Context, s *storage.Settings) error
}

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Registry  QuoteService
	Labels    LabelManager
	Tracker   Tracker
	Shipments ShipmentStore
	Clients   ClientStore
	Packages  PackageStore
	Settings  SettingsStore
	Logger    *otelzap.Logger
	Metrics   *telemetry.Metrics
}

// Server is the HTTP server for the back office.
type Server struct {
	port int
	deps Deps
	echo *echo.Echo
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NewMetrics()
	}

	s := &Server{
		port: cfg.Port,
		deps: deps,
		echo: echo.New(),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())

	s.routes()
	return s
}

// Handler exposes the underlying HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/cotacao", s.handleQuote)

	api := e.Group("/api")

	me := api.Group("/melhorenvio")
	me.POST("/labels", s.handleCreateLabel)
	me.GET("/labels/:id/preview", s.handlePreviewLabel)
	me.POST("/labels/:id/pay", s.handlePayLabel)
	me.GET("/labels/:id/print", s.handlePrintLabel)

	api.POST("/clients", s.handleCreateClient)
	api.GET("/clients", s.handleListClients)
	api.GET("/clients/:id", s.handleGetClient)
	api.PUT("/clients/:id", s.handleUpdateClient)
	api.DELETE("/clients/:id", s.handleDeleteClient)

	api.POST("/packages", s.handleCreatePackage)
	api.GET("/packages", s.handleListPackages)
	api.GET("/packages/:id", s.handleGetPackage)
	api.PUT("/packages/:id", s.handleUpdatePackage)
	api.DELETE("/packages/:id", s.handleDeletePackage)

	api.GET("/settings", s.handleGetSettings)
	api.POST("/settings", s.handleSaveSettings)
	api.PUT("/settings", s.handleSaveSettings)

	api.POST("/shipments", s.handleCreateShipments)
	api.GET("/shipments", s.handleListShipments)
	api.PATCH("/shipments/:id/status", s.handleUpdateShipmentStatus)
	api.DELETE("/shipments/:id", s.handleDeleteShipment)

	api.GET("/tracking/:code", s.handleTracking)
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("Starting server", zap.Int("port", s.port))
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.deps.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// errorBody is the uniform error payload of the JSON API.
type errorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

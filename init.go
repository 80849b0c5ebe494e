package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"

	"github.com/nizaesteves/backoffice/internal/config"
	"github.com/nizaesteves/backoffice/internal/labels"
	"github.com/nizaesteves/backoffice/internal/server"
	"github.com/nizaesteves/backoffice/internal/storage"
	"github.com/nizaesteves/backoffice/internal/telemetry"
	"github.com/nizaesteves/backoffice/pkg/carrier"
	"github.com/nizaesteves/backoffice/pkg/carrier/correios"
	"github.com/nizaesteves/backoffice/pkg/carrier/melhorenvio"
)

func loadConfig() (*config.Config, error) {
	// A missing .env file is fine, the environment wins anyway.
	_ = godotenv.Load()
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Attributes())
}

func initStorage(cfg *config.Config) (*storage.Store, error) {
	return storage.Open(cfg.DSN())
}

// buildServerDeps wires the enabled providers into the quote registry
// and the server dependencies. Melhor Envio registers first so its
// quotes win price ties.
func buildServerDeps(cfg *config.Config, store *storage.Store, logger *otelzap.Logger) server.Deps {
	registry := carrier.NewRegistry()
	deps := server.Deps{
		Registry:  registry,
		Shipments: store.Shipments,
		Clients:   store.Clients,
		Packages:  store.Packages,
		Settings:  store.Settings,
		Logger:    logger,
	}

	tracer := otel.GetTracerProvider().Tracer(cfg.ServiceName)

	if cfg.MelhorEnvioEnabled {
		me := melhorenvio.New(melhorenvio.Config{
			Token:     cfg.MelhorEnvioToken,
			BaseURL:   cfg.MelhorEnvioBaseURL,
			UserAgent: cfg.MelhorEnvioUserAgent,
			UseMock:   cfg.MelhorEnvioUseMock,
		}, logger, tracer)
		registry.Register(me)
		deps.Labels = labels.NewManager(me, store.Shipments, logger)
	}

	if cfg.CorreiosEnabled {
		co := correios.New(correios.Config{
			User:        cfg.CorreiosUser,
			Password:    cfg.CorreiosPassword,
			Contract:    cfg.CorreiosContrato,
			PostingCard: cfg.CorreiosCartaoPostagem,
			BaseURL:     cfg.CorreiosBaseURL,
			UseMock:     cfg.CorreiosUseMock,
		}, logger, tracer)
		registry.Register(co)
		deps.Tracker = co
	}

	return deps
}

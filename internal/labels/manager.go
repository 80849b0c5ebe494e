// Package labels drives the Melhor Envio label lifecycle and keeps the
// local shipment table in sync with it.
package labels

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/internal/storage"
	"github.com/nizaesteves/backoffice/pkg/carrier"
	"github.com/nizaesteves/backoffice/pkg/carrier/melhorenvio"
)

// LabelPartner is the slice of the Melhor Envio client the manager needs.
type LabelPartner interface {
	CreateLabel(ctx context.Context, order *melhorenvio.LabelOrder) (*melhorenvio.CheckoutLabel, error)
	PreviewLabel(ctx context.Context, id string) ([]byte, error)
	PayLabel(ctx context.Context, id string) error
	PrintLabel(ctx context.Context, id string) ([]byte, error)
}

// ShipmentStore is the slice of the shipment repository the manager needs.
type ShipmentStore interface {
	Create(ctx context.Context, s *storage.Shipment) error
	SetStatusByTrackingCode(ctx context.Context, code string, status storage.ShipmentStatus) error
}

// Manager purchases labels and mirrors each one as a local shipment.
type Manager struct {
	partner LabelPartner
	store   ShipmentStore
	logger  *otelzap.Logger
}

// NewManager creates a label manager.
func NewManager(partner LabelPartner, store ShipmentStore, logger *otelzap.Logger) *Manager {
	return &Manager{
		partner: partner,
		store:   store,
		logger:  logger,
	}
}

// CreatedLabel is the result of a successful purchase.
type CreatedLabel struct {
	Shipment *storage.Shipment
	RemoteID string
}

// CreateLabel purchases a label and records it as a shipment awaiting
// payment. The remote purchase is the source of truth: when persistence
// fails the error still carries the remote id so the label is not lost.
func (m *Manager) CreateLabel(ctx context.Context, order *melhorenvio.LabelOrder) (*CreatedLabel, error) {
	if order.To.Name == "" {
		return nil, carrier.NewError(melhorenvio.SourceName, "VALIDATION", "recipient name is required").
			WithSentinel(carrier.ErrInvalidRequest)
	}
	if order.Service == 0 {
		return nil, carrier.NewError(melhorenvio.SourceName, "VALIDATION", "service id is required").
			WithSentinel(carrier.ErrInvalidRequest)
	}

	label, err := m.partner.CreateLabel(ctx, order)
	if err != nil {
		return nil, err
	}

	shipment := &storage.Shipment{
		NomeCliente:    order.To.Name,
		Transportadora: label.Service.Name,
		CodigoRastreio: label.ID,
		Preco:          label.Price.String(),
		Status:         storage.StatusAwaitingPayment,
		Origem:         melhorenvio.SourceName,
	}

	if err := m.store.Create(ctx, shipment); err != nil {
		m.logger.Error("Label purchased but shipment not persisted",
			zap.String("label_id", label.ID),
			zap.Error(err))
		return nil, fmt.Errorf("label %s purchased but not persisted: %w", label.ID, err)
	}

	m.logger.Info("Label created",
		zap.String("label_id", label.ID),
		zap.String("service", label.Service.Name),
		zap.String("price", label.Price.String()))

	return &CreatedLabel{Shipment: shipment, RemoteID: label.ID}, nil
}

// Preview renders the draft PDF for one label.
func (m *Manager) Preview(ctx context.Context, id string) ([]byte, error) {
	return m.partner.PreviewLabel(ctx, id)
}

// Pay pays for one label and marks the mirrored shipment as paid.
// The upstream payment drives the state change: an upstream failure
// mutates nothing locally, while a missing local mirror is tolerated
// and only logged.
func (m *Manager) Pay(ctx context.Context, id string) error {
	if err := m.partner.PayLabel(ctx, id); err != nil {
		return err
	}

	err := m.store.SetStatusByTrackingCode(ctx, id, storage.StatusPaid)
	if errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn("Paid label has no local shipment",
			zap.String("label_id", id))
		return nil
	}
	if err != nil {
		return err
	}

	m.logger.Info("Label paid", zap.String("label_id", id))
	return nil
}

// Print renders the final PDF for one label.
func (m *Manager) Print(ctx context.Context, id string) ([]byte, error) {
	return m.partner.PrintLabel(ctx, id)
}

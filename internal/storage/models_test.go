package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentStatus_Valid(t *testing.T) {
	valid := []ShipmentStatus{
		StatusAwaitingPayment,
		StatusPaid,
		StatusAwaitingPickup,
		StatusShipped,
		StatusError,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, ShipmentStatus("entregue").Valid())
	assert.False(t, ShipmentStatus("").Valid())
}

func TestShipment_BeforeCreate_NormalizesTrackingCode(t *testing.T) {
	s := &Shipment{
		NomeCliente:    "Maria Silva",
		Transportadora: "Jadlog",
		CodigoRastreio: "  ord-abc123  ",
		Preco:          "27.90",
	}

	require.NoError(t, s.BeforeCreate(nil))

	assert.Equal(t, "ORD-ABC123", s.CodigoRastreio)
	assert.Equal(t, StatusAwaitingPayment, s.Status)
	assert.NotEqual(t, uuid.Nil, s.ID)
}

func TestShipment_BeforeCreate_KeepsExplicitValues(t *testing.T) {
	id := uuid.New()
	s := &Shipment{
		ID:             id,
		CodigoRastreio: "ORD-1",
		Status:         StatusPaid,
	}

	require.NoError(t, s.BeforeCreate(nil))

	assert.Equal(t, id, s.ID)
	assert.Equal(t, StatusPaid, s.Status)
}

func TestShipmentFilter_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		in        ShipmentFilter
		wantPage  int
		wantLimit int
	}{
		{"defaults", ShipmentFilter{}, 1, 50},
		{"negative page", ShipmentFilter{Page: -3, Limit: 10}, 1, 10},
		{"limit capped", ShipmentFilter{Page: 2, Limit: 500}, 2, 100},
		{"kept as is", ShipmentFilter{Page: 4, Limit: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.normalize()
			assert.Equal(t, tt.wantPage, tt.in.Page)
			assert.Equal(t, tt.wantLimit, tt.in.Limit)
		})
	}
}

package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusAwaitingPayment ShipmentStatus = "aguardando_pagamento"
	StatusPaid            ShipmentStatus = "pago"
	StatusAwaitingPickup  ShipmentStatus = "aguardando_envio"
	StatusShipped         ShipmentStatus = "enviado"
	StatusError           ShipmentStatus = "erro"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusAwaitingPayment, StatusPaid, StatusAwaitingPickup, StatusShipped, StatusError:
		return true
	}
	return false
}

// Shipment is one tracked outbound shipment.
type Shipment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	NomeCliente    string         `gorm:"not null" json:"nomeCliente"`
	Transportadora string         `gorm:"not null" json:"transportadora"`
	CodigoRastreio string         `gorm:"uniqueIndex;not null" json:"codigoRastreio"`
	Preco          string         `gorm:"not null" json:"preco"`
	Status         ShipmentStatus `gorm:"not null" json:"status"`
	Origem         string         `json:"origem"`
	CriadoEm       time.Time      `gorm:"autoCreateTime" json:"criadoEm"`
	AtualizadoEm   time.Time      `gorm:"autoUpdateTime" json:"atualizadoEm"`
}

// BeforeCreate normalizes the tracking code and fills defaults.
func (s *Shipment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CodigoRastreio = strings.ToUpper(strings.TrimSpace(s.CodigoRastreio))
	if s.Status == "" {
		s.Status = StatusAwaitingPayment
	}
	return nil
}

// Address is a Brazilian street address embedded in Client.
type Address struct {
	Logradouro string `json:"logradouro"`
	Numero     string `json:"numero"`
	Bairro     string `json:"bairro"`
	Cidade     string `json:"cidade"`
	UF         string `gorm:"column:uf" json:"uf"`
	CEP        string `gorm:"column:cep" json:"cep"`
}

// Client is a registered customer of the back office.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Nome      string    `gorm:"not null" json:"nome"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Telefone  string    `json:"telefone"`
	Documento string    `json:"documento"`
	Address   Address   `gorm:"embedded;embeddedPrefix:endereco_" json:"address"`
	CriadoEm  time.Time `gorm:"autoCreateTime" json:"criadoEm"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Dimensions are parcel dimensions in centimeters.
type Dimensions struct {
	Comprimento float64 `json:"comprimento"`
	Largura     float64 `json:"largura"`
	Altura      float64 `json:"altura"`
}

// Package is a reusable parcel preset. Weight in kilograms.
type Package struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Nome       string     `gorm:"not null" json:"nome"`
	Peso       float64    `gorm:"not null" json:"peso"`
	Dimensions Dimensions `gorm:"embedded" json:"dimensions"`
	CriadoEm   time.Time  `gorm:"autoCreateTime" json:"criadoEm"`
}

func (p *Package) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Settings is the single-row store defaults record: the origin address
// used as sender on quotes and labels.
type Settings struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NomeLoja     string    `json:"nomeLoja"`
	Documento    string    `json:"documento"`
	Telefone     string    `json:"telefone"`
	Email        string    `json:"email"`
	Address      Address   `gorm:"embedded;embeddedPrefix:endereco_" json:"address"`
	AtualizadoEm time.Time `gorm:"autoUpdateTime" json:"atualizadoEm"`
}

func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

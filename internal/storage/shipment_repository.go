package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// ShipmentFilter narrows and paginates shipment listings.
type ShipmentFilter struct {
	Status ShipmentStatus
	Query  string // matches client name or tracking code
	Page   int
	Limit  int
}

func (f *ShipmentFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
}

// ShipmentPage is one page of shipment listing results.
type ShipmentPage struct {
	Items []Shipment `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Pages int64      `json:"pages"`
}

// ShipmentRepository persists shipments.
type ShipmentRepository struct {
	db *gorm.DB
}

// Create inserts one shipment. Returns ErrDuplicate when the tracking
// code is already registered.
func (r *ShipmentRepository) Create(ctx context.Context, s *Shipment) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

// CreateBatch inserts several shipments in one transaction. All or
// nothing: a duplicate anywhere rolls back the whole batch.
func (r *ShipmentRepository) CreateBatch(ctx context.Context, shipments []Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&shipments).Error)
}

// Get fetches one shipment by id.
func (r *ShipmentRepository) Get(ctx context.Context, id uuid.UUID) (*Shipment, error) {
	var s Shipment
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// List returns shipments matching the filter, most recent first.
func (r *ShipmentRepository) List(ctx context.Context, filter ShipmentFilter) (*ShipmentPage, error) {
	filter.normalize()

	q := r.db.WithContext(ctx).Model(&Shipment{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("nome_cliente ILIKE ? OR codigo_rastreio ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, translate(err)
	}

	var items []Shipment
	err := q.Order("criado_em DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}

	pages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		pages++
	}

	return &ShipmentPage{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
		Pages: pages,
	}, nil
}

// UpdateStatus sets the status of one shipment by id.
func (r *ShipmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ShipmentStatus) (*Shipment, error) {
	res := r.db.WithContext(ctx).Model(&Shipment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// SetStatusByTrackingCode sets the status of the shipment carrying the
// given tracking code. The code is upper-normalized before matching.
func (r *ShipmentRepository) SetStatusByTrackingCode(ctx context.Context, code string, status ShipmentStatus) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	res := r.db.WithContext(ctx).Model(&Shipment{}).
		Where("codigo_rastreio = ?", code).
		Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one shipment by id.
func (r *ShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Shipment{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// SettingsRepository persists the single store defaults record.
type SettingsRepository struct {
	db *gorm.DB
}

// Get returns the settings record, or nil when none was saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (*Settings, error) {
	var s Settings
	err := r.db.WithContext(ctx).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Save creates or overwrites the settings record.
func (r *SettingsRepository) Save(ctx context.Context, s *Settings) error {
	existing, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		s.ID = existing.ID
		return translate(r.db.WithContext(ctx).Save(s).Error)
	}
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

package storage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PackageRepository persists parcel presets.
type PackageRepository struct {
	db *gorm.DB
}

func (r *PackageRepository) Create(ctx context.Context, p *Package) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PackageRepository) Get(ctx context.Context, id uuid.UUID) (*Package, error) {
	var p Package
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// List returns all presets ordered by name.
func (r *PackageRepository) List(ctx context.Context) ([]Package, error) {
	var packages []Package
	if err := r.db.WithContext(ctx).Order("nome ASC").Find(&packages).Error; err != nil {
		return nil, translate(err)
	}
	return packages, nil
}

// Update overwrites the mutable fields of one preset.
func (r *PackageRepository) Update(ctx context.Context, p *Package) error {
	res := r.db.WithContext(ctx).Model(&Package{}).Where("id = ?", p.ID).
		Select("nome", "peso", "comprimento", "largura", "altura").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PackageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Package{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

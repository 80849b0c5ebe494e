package storage

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Sentinel errors returned by the repositories. GORM's translated errors
// are mapped onto these so handlers never import gorm.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store bundles the repositories over one database handle.
type Store struct {
	DB        *gorm.DB
	Shipments *ShipmentRepository
	Clients   *ClientRepository
	Packages  *PackageRepository
	Settings  *SettingsRepository
}

// Open connects to Postgres, runs migrations, and returns the store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&Shipment{}, &Client{}, &Package{}, &Settings{}); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return NewStore(db), nil
}

// NewStore wraps an existing database handle. Used by tests with an
// in-memory or containerized database.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		DB:        db,
		Shipments: &ShipmentRepository{db: db},
		Clients:   &ClientRepository{db: db},
		Packages:  &PackageRepository{db: db},
		Settings:  &SettingsRepository{db: db},
	}
}

// translate maps gorm errors to the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

package storage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientRepository persists customers.
type ClientRepository struct {
	db *gorm.DB
}

func (r *ClientRepository) Create(ctx context.Context, c *Client) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *ClientRepository) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	var c Client
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// List returns all clients ordered by name.
func (r *ClientRepository) List(ctx context.Context) ([]Client, error) {
	var clients []Client
	if err := r.db.WithContext(ctx).Order("nome ASC").Find(&clients).Error; err != nil {
		return nil, translate(err)
	}
	return clients, nil
}

// Update overwrites the mutable fields of one client.
func (r *ClientRepository) Update(ctx context.Context, c *Client) error {
	res := r.db.WithContext(ctx).Model(&Client{}).Where("id = ?", c.ID).
		Select("nome", "email", "telefone", "documento",
			"endereco_logradouro", "endereco_numero", "endereco_bairro",
			"endereco_cidade", "endereco_uf", "endereco_cep").
		Updates(c)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Client{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

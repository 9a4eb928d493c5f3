package productRepo

import (
	"context"
	"errors"

	"wetech/models"
)

// ErrNotFound is returned when no product matches the id.
var ErrNotFound = errors.New("product not found")

// ProductRepository defines methods for marketplace product access.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update replaces the editable fields of an existing product.
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	// List returns the newest products first.
	List(ctx context.Context, limit int64) ([]models.Product, error)
}

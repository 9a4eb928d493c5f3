package clientRepo

import (
	"context"
	"errors"

	"wetech/models"
)

// ErrNotFound is returned when no client matches the id.
var ErrNotFound = errors.New("client not found")

// ClientRepository defines methods for lead data access.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
}

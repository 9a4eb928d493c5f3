package clientRepo

import (
	"context"
	"sync"

	"wetech/models"
)

// MemoryClientRepo is an in-process ClientRepository for tests and local runs.
type MemoryClientRepo struct {
	mu      sync.Mutex
	clients map[string]models.Client
}

func NewMemoryClientRepo() *MemoryClientRepo {
	return &MemoryClientRepo{clients: make(map[string]models.Client)}
}

func (r *MemoryClientRepo) Create(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.ID] = *client
	return nil
}

func (r *MemoryClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// Snapshot copies the current contents; pair with Restore to roll back.
func (r *MemoryClientRepo) Snapshot() map[string]models.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]models.Client, len(r.clients))
	for k, v := range r.clients {
		out[k] = v
	}
	return out
}

// Restore replaces the contents with a Snapshot.
func (r *MemoryClientRepo) Restore(snap map[string]models.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = snap
}

// Len reports how many clients are stored.
func (r *MemoryClientRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

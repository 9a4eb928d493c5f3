package productRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"wetech/models"
)

// MemoryProductRepo is an in-process ProductRepository for tests and local runs.
type MemoryProductRepo struct {
	mu       sync.Mutex
	products map[string]models.Product
}

func NewMemoryProductRepo(products ...models.Product) *MemoryProductRepo {
	r := &MemoryProductRepo{products: make(map[string]models.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *MemoryProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepo) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryProductRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[product.ID]
	if !ok {
		return nil, ErrNotFound
	}
	p.Title = product.Title
	p.Category = product.Category
	p.Price = product.Price
	p.Description = product.Description
	p.DemoLink = product.DemoLink
	p.UpdatedAt = time.Now().UTC()
	r.products[p.ID] = p
	return &p, nil
}

func (r *MemoryProductRepo) List(ctx context.Context, limit int64) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

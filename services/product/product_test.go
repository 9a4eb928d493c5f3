package product

import (
	"context"
	"testing"
	"time"

	clientRepo "wetech/database/repository/client"
	invoiceRepo "wetech/database/repository/invoice"
	productRepo "wetech/database/repository/product"
	"wetech/models"
	"wetech/services/invoice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreate(t *testing.T) {
	repo := productRepo.NewMemoryProductRepo()
	svc := NewService(repo, zap.NewNop())

	p, err := svc.Create(context.Background(), models.ProductInput{
		Title:    "  School ERP ",
		Category: "SaaS",
		Price:    "150000",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "School ERP", p.Title)
	assert.Equal(t, models.CategorySaaS, p.Category)
	assert.Equal(t, "150000", p.Price.String())

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, stored.Title)
}

func TestCreateDefaultsCategoryToWeb(t *testing.T) {
	svc := NewService(productRepo.NewMemoryProductRepo(), zap.NewNop())

	p, err := svc.Create(context.Background(), models.ProductInput{Title: "Landing page", Price: "20000"})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryWeb, p.Category)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      models.ProductInput
		wantErr error
	}{
		{name: "blank title", in: models.ProductInput{Title: " ", Price: "1000"}, wantErr: ErrTitleRequired},
		{name: "bad price", in: models.ProductInput{Title: "POS", Price: "cheap"}, wantErr: ErrInvalidPrice},
		{name: "zero price", in: models.ProductInput{Title: "POS", Price: "0"}, wantErr: ErrInvalidPrice},
		{name: "unknown category", in: models.ProductInput{Title: "POS", Price: "1000", Category: "games"}, wantErr: ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := productRepo.NewMemoryProductRepo()
			_, err := NewService(repo, zap.NewNop()).Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)

			products, err := repo.List(context.Background(), 10)
			require.NoError(t, err)
			assert.Empty(t, products)
		})
	}
}

func TestUpdate(t *testing.T) {
	repo := productRepo.NewMemoryProductRepo(models.Product{
		ID: "prod-1", Title: "POS", Category: models.CategorySaaS, Price: models.MustMoney("120000"),
	})
	svc := NewService(repo, zap.NewNop())

	p, err := svc.Update(context.Background(), "prod-1", models.ProductInput{
		Title: "POS Pro", Category: "saas", Price: "180000", DemoLink: "https://demo.example/pos",
	})
	require.NoError(t, err)
	assert.Equal(t, "POS Pro", p.Title)
	assert.Equal(t, "180000", p.Price.String())
	assert.Equal(t, "https://demo.example/pos", p.DemoLink)

	_, err = svc.Update(context.Background(), "nope", models.ProductInput{Title: "X", Price: "1"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetAndList(t *testing.T) {
	now := time.Now()
	repo := productRepo.NewMemoryProductRepo(
		models.Product{ID: "old", Title: "Old", Price: models.MustMoney("1"), CreatedAt: now.Add(-time.Hour)},
		models.Product{ID: "new", Title: "New", Price: models.MustMoney("2"), CreatedAt: now},
	)
	svc := NewService(repo, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	products, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "new", products[0].ID)

	products, err = svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCreatedProductCanBeInvoiced(t *testing.T) {
	products := productRepo.NewMemoryProductRepo()
	clients := clientRepo.NewMemoryClientRepo()
	require.NoError(t, clients.Create(context.Background(), &models.Client{ID: "client-1", Name: "Asha"}))

	p, err := NewService(products, zap.NewNop()).Create(context.Background(), models.ProductInput{Title: "School ERP", Price: "150000"})
	require.NoError(t, err)

	inv, err := invoice.NewService(invoiceRepo.NewMemoryInvoiceRepo(), clients, products, zap.NewNop()).
		Issue(context.Background(), models.InvoiceInput{ClientID: "client-1", ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, "School ERP", inv.ProductName)
	assert.Equal(t, "150000", inv.Amount.String())
}

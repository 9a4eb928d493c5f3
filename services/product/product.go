package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	productRepo "wetech/database/repository/product"
	"wetech/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPrice    = errors.New("price must be a positive number")
	ErrInvalidCategory = errors.New("category must be saas, mobile or web")
)

// ProductService covers marketplace product administration.
type ProductService interface {
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, productID string, in models.ProductInput) (*models.Product, error)
	Get(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context, limit int64) ([]models.Product, error)
}

// Service implements ProductService.
type Service struct {
	products productRepo.ProductRepository
	logger   *zap.Logger
}

func NewService(products productRepo.ProductRepository, logger *zap.Logger) *Service {
	return &Service{products: products, logger: logger}
}

// validate normalizes the input into the editable product fields.
func validate(in models.ProductInput) (*models.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	price, err := models.MoneyFromString(strings.TrimSpace(in.Price))
	if err != nil || !price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = models.CategoryWeb
	}
	if !models.IsProductCategory(category) {
		return nil, ErrInvalidCategory
	}
	return &models.Product{
		Title:       title,
		Category:    category,
		Price:       price,
		Description: strings.TrimSpace(in.Description),
		DemoLink:    strings.TrimSpace(in.DemoLink),
	}, nil
}

// Create adds a product to the marketplace.
func (s *Service) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	p, err := validate(in)
	if err != nil {
		return nil, err
	}
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info("Product created",
		zap.String("product_id", p.ID),
		zap.String("title", p.Title),
		zap.String("price", p.Price.String()))
	return p, nil
}

// Update edits an existing product. Invoices keep the name and price they were issued with.
func (s *Service) Update(ctx context.Context, productID string, in models.ProductInput) (*models.Product, error) {
	p, err := validate(in)
	if err != nil {
		return nil, err
	}
	p.ID = productID

	updated, err := s.products.Update(ctx, p)
	if err != nil {
		if errors.Is(err, productRepo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.logger.Info("Product updated", zap.String("product_id", productID))
	return updated, nil
}

func (s *Service) Get(ctx context.Context, productID string) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, productRepo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit int64) ([]models.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	products, err := s.products.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

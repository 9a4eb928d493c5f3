package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	clientRepo "wetech/database/repository/client"
	invoiceRepo "wetech/database/repository/invoice"
	productRepo "wetech/database/repository/product"
	"wetech/models"

	"go.uber.org/zap"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidStatus   = errors.New("status must be Paid or Unpaid")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
)

// InvoiceService covers invoice administration and the public invoice view.
type InvoiceService interface {
	Issue(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error)
	Get(ctx context.Context, invoiceID string) (*models.Invoice, error)
	SetStatus(ctx context.Context, invoiceID, status string) (*models.Invoice, error)
	List(ctx context.Context, limit int64) ([]models.Invoice, error)
}

// Service implements InvoiceService.
type Service struct {
	invoices     invoiceRepo.InvoiceRepository
	clients      clientRepo.ClientRepository
	products     productRepo.ProductRepository
	logger       *zap.Logger
	newInvoiceID func() string
}

func NewService(invoices invoiceRepo.InvoiceRepository, clients clientRepo.ClientRepository,
	products productRepo.ProductRepository, logger *zap.Logger) *Service {
	return &Service{
		invoices:     invoices,
		clients:      clients,
		products:     products,
		logger:       logger,
		newInvoiceID: models.NewInvoiceID,
	}
}

// Issue bills an existing client for a product. Amount defaults to the product price.
func (s *Service) Issue(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error) {
	if _, err := s.clients.GetByID(ctx, in.ClientID); err != nil {
		if errors.Is(err, clientRepo.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, productRepo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	amount := product.Price
	if strings.TrimSpace(in.Amount) != "" {
		amount, err = models.MoneyFromString(in.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
	}

	now := time.Now().UTC()
	inv := &models.Invoice{
		ClientID:     in.ClientID,
		ProductID:    product.ID,
		ProductName:  product.Title,
		ProductPrice: product.Price,
		Amount:       amount,
		Currency:     models.DefaultCurrency,
		Status:       models.InvoiceUnpaid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for attempt := 1; ; attempt++ {
		inv.InvoiceID = s.newInvoiceID()
		err = s.invoices.Create(ctx, inv)
		if err == nil || !errors.Is(err, invoiceRepo.ErrDuplicateID) || attempt == 3 {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.logger.Info("Invoice generated",
		zap.String("invoice_id", inv.InvoiceID),
		zap.String("client_id", inv.ClientID),
		zap.String("amount", inv.Amount.String()))
	return inv, nil
}

// Get returns one invoice by its public id.
func (s *Service) Get(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv, err := s.invoices.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, invoiceRepo.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

// SetStatus is the admin override. Unlike gateway reconciliation it may move
// an invoice back to Unpaid.
func (s *Service) SetStatus(ctx context.Context, invoiceID, status string) (*models.Invoice, error) {
	var normalized string
	switch {
	case strings.EqualFold(status, models.InvoicePaid):
		normalized = models.InvoicePaid
	case strings.EqualFold(status, models.InvoiceUnpaid):
		normalized = models.InvoiceUnpaid
	default:
		return nil, ErrInvalidStatus
	}

	inv, err := s.invoices.SetStatus(ctx, invoiceID, normalized)
	if err != nil {
		if errors.Is(err, invoiceRepo.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	s.logger.Info("Invoice status overridden",
		zap.String("invoice_id", invoiceID),
		zap.String("status", normalized))
	return inv, nil
}

func (s *Service) List(ctx context.Context, limit int64) ([]models.Invoice, error) {
	return s.invoices.List(ctx, limit)
}

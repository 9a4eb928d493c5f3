package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wetech/database"
	clientRepo "wetech/database/repository/client"
	invoiceRepo "wetech/database/repository/invoice"
	productRepo "wetech/database/repository/product"
	"wetech/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNameRequired    = errors.New("name is required")
)

// maxIDAttempts bounds retries of the whole unit on invoice id collisions.
const maxIDAttempts = 3

// Outcome is what a captured lead produced. Invoice is nil for plain enquiries.
type Outcome struct {
	Client  *models.Client
	Invoice *models.Invoice
}

// LeadService captures website leads.
type LeadService interface {
	Capture(ctx context.Context, in models.LeadInput) (*Outcome, error)
}

// Service implements LeadService.
type Service struct {
	tx           database.Transactor
	clients      clientRepo.ClientRepository
	products     productRepo.ProductRepository
	invoices     invoiceRepo.InvoiceRepository
	logger       *zap.Logger
	newInvoiceID func() string
}

// NewService wires a lead Service.
func NewService(tx database.Transactor, clients clientRepo.ClientRepository, products productRepo.ProductRepository,
	invoices invoiceRepo.InvoiceRepository, logger *zap.Logger) *Service {
	return &Service{
		tx:           tx,
		clients:      clients,
		products:     products,
		invoices:     invoices,
		logger:       logger,
		newInvoiceID: models.NewInvoiceID,
	}
}

// Capture stores the lead and, for Pesapal or AzamPay sources, an Unpaid
// invoice for the chosen product. Both writes commit together or not at all.
func (s *Service) Capture(ctx context.Context, in models.LeadInput) (*Outcome, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(in.Source) == "" {
		in.Source = models.SourceWebsite
	}
	s.logger.Info("Lead submission started",
		zap.String("source", in.Source),
		zap.String("product_id", in.ProductID))

	var (
		out *Outcome
		err error
	)
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		out, err = s.captureOnce(ctx, in)
		if !errors.Is(err, invoiceRepo.ErrDuplicateID) {
			break
		}
		s.logger.Warn("Invoice id collision, retrying lead capture", zap.Int("attempt", attempt))
	}
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			s.logger.Error("Product not found", zap.String("product_id", in.ProductID))
		} else {
			s.logger.Error("Lead submission failed", zap.Error(err))
		}
		return nil, err
	}

	fields := []zap.Field{zap.String("client_id", out.Client.ID)}
	if out.Invoice != nil {
		fields = append(fields, zap.String("invoice_id", out.Invoice.InvoiceID), zap.String("amount", out.Invoice.Amount.String()))
	}
	s.logger.Info("Lead submission completed", fields...)
	return out, nil
}

func (s *Service) captureOnce(ctx context.Context, in models.LeadInput) (*Outcome, error) {
	var out *Outcome
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var product *models.Product
		if models.IsPaymentSource(in.Source) {
			p, err := s.products.GetByID(ctx, in.ProductID)
			if err != nil {
				if errors.Is(err, productRepo.ErrNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("load product: %w", err)
			}
			product = p
		}

		now := time.Now().UTC()
		client := &models.Client{
			ID:                uuid.New().String(),
			Name:              in.Name,
			ContactInfo:       strings.TrimSpace(in.Contact),
			ProductInterested: in.Product,
			Source:            in.Source,
			Status:            "New",
			CreatedAt:         now,
		}
		if err := s.clients.Create(ctx, client); err != nil {
			return err
		}
		out = &Outcome{Client: client}

		if product == nil {
			return nil
		}
		inv := &models.Invoice{
			InvoiceID:    s.newInvoiceID(),
			ClientID:     client.ID,
			ProductID:    product.ID,
			ProductName:  product.Title,
			ProductPrice: product.Price,
			Amount:       product.Price,
			Currency:     models.DefaultCurrency,
			Status:       models.InvoiceUnpaid,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.invoices.Create(ctx, inv); err != nil {
			return err
		}
		out.Invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

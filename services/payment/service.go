package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	invoiceRepo "wetech/database/repository/invoice"
	"wetech/models"
	"wetech/utils"

	"go.uber.org/zap"
)

// Options tune reconciliation policy.
type Options struct {
	// RespectManualOverride stops gateway successes from re-paying an invoice
	// an admin moved back to Unpaid.
	RespectManualOverride bool
}

// Service implements PaymentService. Either gateway may be nil when its
// credentials are not configured.
type Service struct {
	invoices  invoiceRepo.InvoiceRepository
	clients   ClientLookup
	pesapal   PesapalGateway
	azampay   AzamPayGateway
	scheduler VerificationScheduler
	metrics   *utils.Metrics
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// ClientLookup fetches the payer shown on the hosted checkout page.
type ClientLookup interface {
	GetByID(ctx context.Context, id string) (*models.Client, error)
}

// Deps groups the collaborators of Service.
type Deps struct {
	Invoices  invoiceRepo.InvoiceRepository
	Clients   ClientLookup
	Pesapal   PesapalGateway
	AzamPay   AzamPayGateway
	Scheduler VerificationScheduler
	Metrics   *utils.Metrics
	Logger    *zap.Logger
}

// NewService wires a payment Service.
func NewService(deps Deps, opts Options) *Service {
	return &Service{
		invoices:  deps.Invoices,
		clients:   deps.Clients,
		pesapal:   deps.Pesapal,
		azampay:   deps.AzamPay,
		scheduler: deps.Scheduler,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *Service) loadInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv, err := s.invoices.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, invoiceRepo.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("load invoice %s: %w", invoiceID, err)
	}
	return inv, nil
}

// applyPayment performs the Unpaid to Paid transition. Unknown invoices are
// logged and reported as ErrInvoiceNotFound without any write.
func (s *Service) applyPayment(ctx context.Context, invoiceID, via, reference string) (*Reconciliation, error) {
	changed, err := s.invoices.MarkPaid(ctx, invoiceID, invoiceRepo.PaymentConfirmation{
		Via:             via,
		Reference:       reference,
		At:              s.now(),
		RespectOverride: s.opts.RespectManualOverride,
	})
	if err != nil {
		if errors.Is(err, invoiceRepo.ErrNotFound) {
			s.logger.Error("Payment for unknown invoice dropped",
				zap.String("merchant_reference", invoiceID),
				zap.String("vendor", via),
				zap.String("reference", reference))
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("mark invoice %s paid: %w", invoiceID, err)
	}

	if changed {
		s.metrics.InvoicePaid(via)
		s.logger.Info("Invoice marked as paid",
			zap.String("invoice_id", invoiceID),
			zap.String("vendor", via),
			zap.String("reference", reference))
		return &Reconciliation{InvoiceID: invoiceID, Result: ResultPaid, Message: MessageVerified}, nil
	}

	if s.opts.RespectManualOverride {
		inv, err := s.loadInvoice(ctx, invoiceID)
		if err != nil {
			return nil, err
		}
		if !inv.IsPaid() && inv.ManualOverride {
			s.logger.Warn("Gateway success ignored for manually overridden invoice",
				zap.String("invoice_id", invoiceID),
				zap.String("vendor", via))
			return &Reconciliation{InvoiceID: invoiceID, Result: ResultOverridden, Message: MessageOverridden}, nil
		}
	}

	s.logger.Debug("Duplicate payment notification ignored",
		zap.String("invoice_id", invoiceID),
		zap.String("vendor", via))
	return &Reconciliation{InvoiceID: invoiceID, Result: ResultAlreadyPaid, Message: MessageVerified}, nil
}

// User facing outcome messages.
const (
	MessageVerified   = "Payment Verified! Download unlocked."
	MessageFailed     = "Payment Failed."
	MessageOverridden = "Payment received. This invoice is under review by our team."
)

func statusMessage(status string) string {
	return "Payment Status: " + status
}

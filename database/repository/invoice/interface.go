package invoiceRepo

import (
	"context"
	"errors"
	"time"

	"wetech/models"
)

var (
	// ErrNotFound is returned when no invoice carries the requested invoice_id.
	ErrNotFound = errors.New("invoice not found")
	// ErrDuplicateID is returned when a generated invoice_id collides.
	ErrDuplicateID = errors.New("invoice id already exists")
)

// PaymentConfirmation describes the payment that settled an invoice.
type PaymentConfirmation struct {
	Via       string // gateway name or "manual"
	Reference string // vendor tracking id, when known
	At        time.Time
	// RespectOverride leaves invoices an admin set by hand untouched.
	RespectOverride bool
}

// InvoiceRepository defines methods for invoice data access.
type InvoiceRepository interface {
	// Create inserts a new invoice.
	Create(ctx context.Context, inv *models.Invoice) error
	// GetByInvoiceID retrieves an invoice by its public id.
	GetByInvoiceID(ctx context.Context, invoiceID string) (*models.Invoice, error)
	// MarkPaid atomically moves an Unpaid invoice to Paid. It reports false
	// without error when the invoice was already Paid or is protected by a
	// manual override.
	MarkPaid(ctx context.Context, invoiceID string, pc PaymentConfirmation) (bool, error)
	// SetStatus overrides the status by hand and flags the invoice as overridden.
	SetStatus(ctx context.Context, invoiceID, status string) (*models.Invoice, error)
	// List returns the newest invoices first.
	List(ctx context.Context, limit int64) ([]models.Invoice, error)
}

package invoiceRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"wetech/models"
)

// MemoryInvoiceRepo is an in-process InvoiceRepository for tests and local runs.
type MemoryInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]models.Invoice
}

// NewMemoryInvoiceRepo returns an empty in-memory repository.
func NewMemoryInvoiceRepo() *MemoryInvoiceRepo {
	return &MemoryInvoiceRepo{invoices: make(map[string]models.Invoice)}
}

func (r *MemoryInvoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.invoices[inv.InvoiceID]; exists {
		return ErrDuplicateID
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	r.invoices[inv.InvoiceID] = *inv
	return nil
}

func (r *MemoryInvoiceRepo) GetByInvoiceID(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (r *MemoryInvoiceRepo) MarkPaid(ctx context.Context, invoiceID string, pc PaymentConfirmation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return false, ErrNotFound
	}
	if inv.Status != models.InvoiceUnpaid || (pc.RespectOverride && inv.ManualOverride) {
		return false, nil
	}
	paidAt := pc.At.UTC()
	inv.Status = models.InvoicePaid
	inv.PaidVia = pc.Via
	inv.PaymentReference = pc.Reference
	inv.PaidAt = &paidAt
	inv.UpdatedAt = time.Now().UTC()
	r.invoices[invoiceID] = inv
	return true, nil
}

func (r *MemoryInvoiceRepo) SetStatus(ctx context.Context, invoiceID, status string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	inv.Status = status
	inv.ManualOverride = true
	inv.UpdatedAt = now
	if status == models.InvoicePaid {
		inv.PaidVia = "manual"
		inv.PaidAt = &now
	} else {
		inv.PaidVia, inv.PaymentReference, inv.PaidAt = "", "", nil
	}
	r.invoices[invoiceID] = inv
	return &inv, nil
}

func (r *MemoryInvoiceRepo) List(ctx context.Context, limit int64) ([]models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports how many invoices are stored.
func (r *MemoryInvoiceRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invoices)
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invoice statuses. Gateways only ever move an invoice from Unpaid to Paid.
const (
	InvoiceUnpaid = "Unpaid"
	InvoicePaid   = "Paid"
)

// DefaultCurrency is what both gateways settle in.
const DefaultCurrency = "TZS"

// Invoice is a bill issued to a client, usually for a marketplace product.
type Invoice struct {
	InvoiceID    string `bson:"invoice_id" json:"invoice_id"`
	ClientID     string `bson:"client_id" json:"client_id"`
	ProductID    string `bson:"product_id,omitempty" json:"product_id,omitempty"`
	ProductName  string `bson:"product_name" json:"product_name"`
	ProductPrice Money  `bson:"product_price" json:"product_price"`
	Amount       Money  `bson:"amount" json:"amount"`
	Currency     string `bson:"currency" json:"currency"`
	Status       string `bson:"status" json:"status"`

	PaidVia          string     `bson:"paid_via,omitempty" json:"paid_via,omitempty"`
	PaymentReference string     `bson:"payment_reference,omitempty" json:"payment_reference,omitempty"`
	PaidAt           *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	ManualOverride   bool       `bson:"manual_override" json:"manual_override"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsPaid reports whether the invoice has been settled.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoicePaid
}

const invoiceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewInvoiceID returns a short human-readable id such as INV-7Q2KX9M4.
func NewInvoiceID() string {
	id := uuid.New()
	var b strings.Builder
	b.WriteString("INV-")
	// Bytes 6 and 8 carry the uuid version and variant bits.
	for _, idx := range []int{0, 1, 2, 3, 10, 11, 12, 13} {
		b.WriteByte(invoiceAlphabet[int(id[idx])%len(invoiceAlphabet)])
	}
	return b.String()
}

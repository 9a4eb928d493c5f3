package payment

import (
	"context"
	"errors"

	"wetech/models"
	"wetech/services/gateway/azampay"
	"wetech/services/gateway/pesapal"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceAlreadyPaid = errors.New("invoice is already paid")
	ErrGatewayDisabled    = errors.New("payment gateway is not configured")
	ErrMissingReference   = errors.New("callback carries no invoice reference")
	ErrReferenceMismatch  = errors.New("gateway reports a different merchant reference")
)

// PesapalGateway is the subset of the Pesapal client used here.
type PesapalGateway interface {
	Authenticate(ctx context.Context) (string, error)
	RegisterIPN(ctx context.Context, token, callbackURL string) (string, error)
	SubmitOrder(ctx context.Context, token string, order pesapal.OrderRequest) (*pesapal.OrderResponse, error)
	TransactionStatus(ctx context.Context, token, orderTrackingID string) (*pesapal.TransactionStatus, error)
}

// AzamPayGateway is the subset of the AzamPay client used here.
type AzamPayGateway interface {
	Authenticate(ctx context.Context) (string, error)
	MobileCheckout(ctx context.Context, token string, req azampay.CheckoutRequest) (*azampay.CheckoutResponse, error)
}

// VerificationScheduler queues a delayed server-side status check for an
// order whose vendor will not notify us.
type VerificationScheduler interface {
	ScheduleVerification(ctx context.Context, orderTrackingID, merchantReference string) error
}

// PaymentService drives gateway checkouts and reconciles their outcomes.
type PaymentService interface {
	StartPesapalCheckout(ctx context.Context, invoiceID, callbackURL string) (string, error)
	ReconcilePesapal(ctx context.Context, orderTrackingID, merchantReference string) (*Reconciliation, error)
	StartAzamPayCheckout(ctx context.Context, invoiceID string, input models.AzamPayCheckoutInput) (*PushResult, error)
	ReconcileAzamPay(ctx context.Context, cb models.AzamPayCallback) (*Reconciliation, error)
}

// Result is what reconciliation did with an outcome.
type Result string

const (
	ResultPaid        Result = "paid"
	ResultAlreadyPaid Result = "already_paid"
	ResultFailed      Result = "failed"
	ResultPending     Result = "pending"
	// ResultOverridden means a success was ignored because an admin set the
	// invoice status by hand.
	ResultOverridden Result = "overridden"
)

// Reconciliation reports the effect of one vendor outcome on an invoice.
type Reconciliation struct {
	InvoiceID string
	Result    Result
	Message   string
}

// Settled reports whether the invoice ends up Paid.
func (r *Reconciliation) Settled() bool {
	return r.Result == ResultPaid || r.Result == ResultAlreadyPaid
}

// PushResult is the outcome of an AzamPay USSD push.
type PushResult struct {
	Phone         string
	TransactionID string
	Message       string
}

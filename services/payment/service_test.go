package payment

import (
	"context"
	"errors"
	"testing"

	invoiceRepo "wetech/database/repository/invoice"
	"wetech/models"
	"wetech/services/gateway"
	"wetech/services/gateway/azampay"
	"wetech/services/gateway/pesapal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePesapal struct {
	authErr   error
	ipnErr    error
	submitErr error
	status    *pesapal.TransactionStatus

	submitted []pesapal.OrderRequest
}

func (f *fakePesapal) Authenticate(ctx context.Context) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return "tok", nil
}

func (f *fakePesapal) RegisterIPN(ctx context.Context, token, callbackURL string) (string, error) {
	if f.ipnErr != nil {
		return "", f.ipnErr
	}
	return "ipn-1", nil
}

func (f *fakePesapal) SubmitOrder(ctx context.Context, token string, order pesapal.OrderRequest) (*pesapal.OrderResponse, error) {
	f.submitted = append(f.submitted, order)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &pesapal.OrderResponse{
		OrderTrackingID:   "trk-1",
		MerchantReference: order.ID,
		RedirectURL:       "https://pay.example/trk-1",
	}, nil
}

func (f *fakePesapal) TransactionStatus(ctx context.Context, token, orderTrackingID string) (*pesapal.TransactionStatus, error) {
	return f.status, nil
}

type fakeAzamPay struct {
	checkoutErr error
	requests    []azampay.CheckoutRequest
}

func (f *fakeAzamPay) Authenticate(ctx context.Context) (string, error) { return "tok", nil }

func (f *fakeAzamPay) MobileCheckout(ctx context.Context, token string, req azampay.CheckoutRequest) (*azampay.CheckoutResponse, error) {
	f.requests = append(f.requests, req)
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &azampay.CheckoutResponse{Success: true, TransactionID: "tx-1"}, nil
}

type fakeScheduler struct {
	scheduled [][2]string
}

func (f *fakeScheduler) ScheduleVerification(ctx context.Context, orderTrackingID, merchantReference string) error {
	f.scheduled = append(f.scheduled, [2]string{orderTrackingID, merchantReference})
	return nil
}

type fixture struct {
	svc       *Service
	invoices  *invoiceRepo.MemoryInvoiceRepo
	pesapal   *fakePesapal
	azampay   *fakeAzamPay
	scheduler *fakeScheduler
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		invoices:  invoiceRepo.NewMemoryInvoiceRepo(),
		pesapal:   &fakePesapal{},
		azampay:   &fakeAzamPay{},
		scheduler: &fakeScheduler{},
	}
	require.NoError(t, f.invoices.Create(context.Background(), &models.Invoice{
		InvoiceID:   "INV-1234",
		ClientID:    "client-1",
		ProductName: "School ERP",
		Amount:      models.MustMoney("50000"),
		Currency:    models.DefaultCurrency,
		Status:      models.InvoiceUnpaid,
	}))
	f.svc = NewService(Deps{
		Invoices:  f.invoices,
		Pesapal:   f.pesapal,
		AzamPay:   f.azampay,
		Scheduler: f.scheduler,
		Logger:    zap.NewNop(),
	}, opts)
	return f
}

func (f *fixture) status(t *testing.T, id string) string {
	t.Helper()
	inv, err := f.invoices.GetByInvoiceID(context.Background(), id)
	require.NoError(t, err)
	return inv.Status
}

func TestAzamPaySuccessMarksInvoicePaid(t *testing.T) {
	f := newFixture(t, Options{})

	rec, err := f.svc.ReconcileAzamPay(context.Background(), models.AzamPayCallback{
		UtilityRef:        "INV-1234",
		TransactionStatus: "success",
		Reference:         "az-ref-1",
	})
	require.NoError(t, err)
	assert.Equal(t, ResultPaid, rec.Result)
	assert.Equal(t, models.InvoicePaid, f.status(t, "INV-1234"))

	inv, _ := f.invoices.GetByInvoiceID(context.Background(), "INV-1234")
	assert.Equal(t, gateway.VendorAzamPay, inv.PaidVia)
	assert.Equal(t, "az-ref-1", inv.PaymentReference)
	assert.NotNil(t, inv.PaidAt)
}

func TestAzamPayRedeliveryIsNoop(t *testing.T) {
	f := newFixture(t, Options{})
	cb := models.AzamPayCallback{UtilityRef: "INV-1234", TransactionStatus: "Success"}

	first, err := f.svc.ReconcileAzamPay(context.Background(), cb)
	require.NoError(t, err)
	inv, _ := f.invoices.GetByInvoiceID(context.Background(), "INV-1234")
	paidAt := *inv.PaidAt

	for i := 0; i < 3; i++ {
		again, err := f.svc.ReconcileAzamPay(context.Background(), cb)
		require.NoError(t, err)
		assert.Equal(t, ResultAlreadyPaid, again.Result)
		assert.True(t, again.Settled())
	}

	assert.Equal(t, ResultPaid, first.Result)
	inv, _ = f.invoices.GetByInvoiceID(context.Background(), "INV-1234")
	assert.Equal(t, paidAt, *inv.PaidAt)
}

func TestAzamPayUnknownInvoice(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.ReconcileAzamPay(context.Background(), models.AzamPayCallback{
		UtilityRef:        "INV-9999",
		TransactionStatus: "success",
	})
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.Equal(t, 1, f.invoices.Len())
	assert.Equal(t, models.InvoiceUnpaid, f.status(t, "INV-1234"))
}

func TestAzamPayFailureLeavesInvoiceUnpaid(t *testing.T) {
	f := newFixture(t, Options{})

	rec, err := f.svc.ReconcileAzamPay(context.Background(), models.AzamPayCallback{
		UtilityRef:        "INV-1234",
		TransactionStatus: "failure",
	})
	require.NoError(t, err)
	assert.Equal(t, ResultFailed, rec.Result)
	assert.Equal(t, "Payment Status: failure", rec.Message)
	assert.Equal(t, models.InvoiceUnpaid, f.status(t, "INV-1234"))
}

func TestCallbacksNeverUnpayAnInvoice(t *testing.T) {
	f := newFixture(t, Options{})
	_, err := f.svc.ReconcileAzamPay(context.Background(), models.AzamPayCallback{UtilityRef: "INV-1234", TransactionStatus: "success"})
	require.NoError(t, err)

	_, err = f.svc.ReconcileAzamPay(context.Background(), models.AzamPayCallback{UtilityRef: "INV-1234", TransactionStatus: "failed"})
	require.NoError(t, err)

	f.pesapal.status = &pesapal.TransactionStatus{PaymentStatusDescription: "Reversed", StatusCode: pesapal.StatusReversed}
	_, err = f.svc.ReconcilePesapal(context.Background(), "trk-1", "INV-1234")
	require.NoError(t, err)

	assert.Equal(t, models.InvoicePaid, f.status(t, "INV-1234"))
}

func TestManualOverridePolicy(t *testing.T) {
	cb := models.AzamPayCallback{UtilityRef: "INV-1234", TransactionStatus: "success"}

	t.Run("re-flip by default", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.invoices.SetStatus(context.Background(), "INV-1234", models.InvoiceUnpaid)
		require.NoError(t, err)

		rec, err := f.svc.ReconcileAzamPay(context.Background(), cb)
		require.NoError(t, err)
		assert.Equal(t, ResultPaid, rec.Result)
		assert.Equal(t, models.InvoicePaid, f.status(t, "INV-1234"))
	})

	t.Run("respected when enabled", func(t *testing.T) {
		f := newFixture(t, Options{RespectManualOverride: true})
		_, err := f.invoices.SetStatus(context.Background(), "INV-1234", models.InvoiceUnpaid)
		require.NoError(t, err)

		rec, err := f.svc.ReconcileAzamPay(context.Background(), cb)
		require.NoError(t, err)
		assert.Equal(t, ResultOverridden, rec.Result)
		assert.Equal(t, models.InvoiceUnpaid, f.status(t, "INV-1234"))
	})

	t.Run("untouched invoices still settle when enabled", func(t *testing.T) {
		f := newFixture(t, Options{RespectManualOverride: true})
		rec, err := f.svc.ReconcileAzamPay(context.Background(), cb)
		require.NoError(t, err)
		assert.Equal(t, ResultPaid, rec.Result)
	})
}

func TestStartPesapalCheckout(t *testing.T) {
	f := newFixture(t, Options{})

	redirect, err := f.svc.StartPesapalCheckout(context.Background(), "INV-1234", "https://shop.example/payment/pesapal/callback/")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/trk-1", redirect)

	require.Len(t, f.pesapal.submitted, 1)
	order := f.pesapal.submitted[0]
	assert.Equal(t, "INV-1234", order.ID)
	assert.Equal(t, "TZS", order.Currency)
	assert.Equal(t, 50000.0, order.Amount)
	assert.Equal(t, "Payment for School ERP", order.Description)
	assert.Equal(t, "ipn-1", order.NotificationID)
	assert.Empty(t, f.scheduler.scheduled)
}

func TestStartPesapalCheckoutWithoutIPNSchedulesVerification(t *testing.T) {
	f := newFixture(t, Options{})
	f.pesapal.ipnErr = gateway.Rejected(gateway.VendorPesapal, "register_ipn", 500, "nope")

	_, err := f.svc.StartPesapalCheckout(context.Background(), "INV-1234", "https://shop.example/cb/")
	require.NoError(t, err)
	assert.Empty(t, f.pesapal.submitted[0].NotificationID)
	assert.Equal(t, [][2]string{{"trk-1", "INV-1234"}}, f.scheduler.scheduled)
}

func TestStartPesapalCheckoutErrors(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.StartPesapalCheckout(context.Background(), "INV-9999", "cb")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	f.pesapal.authErr = gateway.AuthFailed(gateway.VendorPesapal, "authenticate", 401, "bad key")
	_, err = f.svc.StartPesapalCheckout(context.Background(), "INV-1234", "cb")
	assert.Equal(t, gateway.KindAuthFailed, gateway.KindOf(err))
	assert.Empty(t, f.pesapal.submitted)

	svc := NewService(Deps{Invoices: f.invoices, Logger: zap.NewNop()}, Options{})
	_, err = svc.StartPesapalCheckout(context.Background(), "INV-1234", "cb")
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestReconcilePesapal(t *testing.T) {
	cases := []struct {
		name    string
		status  pesapal.TransactionStatus
		result  Result
		message string
		invoice string
	}{
		{"completed", pesapal.TransactionStatus{PaymentStatusDescription: "Completed", StatusCode: 1}, ResultPaid, MessageVerified, models.InvoicePaid},
		{"failed", pesapal.TransactionStatus{PaymentStatusDescription: "Failed", StatusCode: 2}, ResultFailed, MessageFailed, models.InvoiceUnpaid},
		{"pending", pesapal.TransactionStatus{PaymentStatusDescription: "Pending"}, ResultPending, "Payment Status: Pending", models.InvoiceUnpaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			status := tc.status
			f.pesapal.status = &status

			rec, err := f.svc.ReconcilePesapal(context.Background(), "trk-1", "INV-1234")
			require.NoError(t, err)
			assert.Equal(t, tc.result, rec.Result)
			assert.Equal(t, tc.message, rec.Message)
			assert.Equal(t, tc.invoice, f.status(t, "INV-1234"))
		})
	}
}

func TestReconcilePesapalRejectsOtherReference(t *testing.T) {
	f := newFixture(t, Options{})
	f.pesapal.status = &pesapal.TransactionStatus{PaymentStatusDescription: "Completed", StatusCode: 1, MerchantReference: "INV-OTHER"}

	_, err := f.svc.ReconcilePesapal(context.Background(), "trk-1", "INV-1234")
	assert.ErrorIs(t, err, ErrReferenceMismatch)
	assert.Equal(t, models.InvoiceUnpaid, f.status(t, "INV-1234"))
}

func TestReconcilePesapalUnknownInvoice(t *testing.T) {
	f := newFixture(t, Options{})
	f.pesapal.status = &pesapal.TransactionStatus{PaymentStatusDescription: "Completed", StatusCode: 1}

	_, err := f.svc.ReconcilePesapal(context.Background(), "trk-1", "INV-9999")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.Equal(t, 1, f.invoices.Len())
}

func TestStartAzamPayCheckout(t *testing.T) {
	f := newFixture(t, Options{})

	push, err := f.svc.StartAzamPayCheckout(context.Background(), "INV-1234", models.AzamPayCheckoutInput{
		PhoneNumber: "0712 345 678",
		Provider:    "Airtel",
	})
	require.NoError(t, err)
	assert.Equal(t, "255712345678", push.Phone)
	assert.Contains(t, push.Message, "Payment Request sent to 255712345678")

	require.Len(t, f.azampay.requests, 1)
	assert.Equal(t, "INV-1234", f.azampay.requests[0].ExternalID)
	assert.True(t, f.azampay.requests[0].Amount.Equal(models.MustMoney("50000").Decimal))
	assert.Equal(t, models.InvoiceUnpaid, f.status(t, "INV-1234"), "a push alone never settles the invoice")
}

func TestStartAzamPayCheckoutRejected(t *testing.T) {
	f := newFixture(t, Options{})
	f.azampay.checkoutErr = gateway.Rejected(gateway.VendorAzamPay, "mobile_checkout", 200, "Invalid msisdn")

	_, err := f.svc.StartAzamPayCheckout(context.Background(), "INV-1234", models.AzamPayCheckoutInput{PhoneNumber: "0712345678"})
	require.Error(t, err)
	var gErr *gateway.Error
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, "Invalid msisdn", gErr.Message)
}

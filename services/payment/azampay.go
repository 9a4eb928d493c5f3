package payment

import (
	"context"
	"fmt"
	"strings"

	"wetech/models"
	"wetech/services/gateway"
	"wetech/services/gateway/azampay"

	"go.uber.org/zap"
)

// StartAzamPayCheckout sends a USSD push for the invoice amount to the payer's phone.
func (s *Service) StartAzamPayCheckout(ctx context.Context, invoiceID string, input models.AzamPayCheckoutInput) (*PushResult, error) {
	if s.azampay == nil {
		return nil, ErrGatewayDisabled
	}
	inv, err := s.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsPaid() {
		return nil, ErrInvoiceAlreadyPaid
	}

	phone := azampay.NormalizePhone(input.PhoneNumber)
	if phone == "" {
		return nil, gateway.Rejected(gateway.VendorAzamPay, "mobile_checkout", 0, "A phone number is required.")
	}

	token, err := s.azampay.Authenticate(ctx)
	if err != nil {
		s.logger.Error("AzamPay authentication failed", zap.String("invoice_id", inv.InvoiceID), zap.Error(err))
		return nil, err
	}

	resp, err := s.azampay.MobileCheckout(ctx, token, azampay.CheckoutRequest{
		AccountNumber: phone,
		Amount:        inv.Amount.Decimal,
		ExternalID:    inv.InvoiceID,
		Provider:      input.Provider,
	})
	if err != nil {
		s.logger.Error("AzamPay checkout failed", zap.String("invoice_id", inv.InvoiceID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("AzamPay push sent",
		zap.String("invoice_id", inv.InvoiceID),
		zap.String("transaction_id", resp.TransactionID))
	return &PushResult{
		Phone:         phone,
		TransactionID: resp.TransactionID,
		Message:       fmt.Sprintf("Payment Request sent to %s. Check your phone for the PIN popup.", phone),
	}, nil
}

// ReconcileAzamPay applies an AzamPay webhook. Only a "success" status
// touches the invoice.
func (s *Service) ReconcileAzamPay(ctx context.Context, cb models.AzamPayCallback) (*Reconciliation, error) {
	invoiceID := strings.TrimSpace(cb.UtilityRef)
	if invoiceID == "" {
		return nil, ErrMissingReference
	}
	s.logger.Info("AzamPay callback received",
		zap.String("merchant_reference", invoiceID),
		zap.String("transaction_status", cb.TransactionStatus),
		zap.String("reference", cb.Reference))

	if !strings.EqualFold(strings.TrimSpace(cb.TransactionStatus), "success") {
		return &Reconciliation{
			InvoiceID: invoiceID,
			Result:    ResultFailed,
			Message:   statusMessage(cb.TransactionStatus),
		}, nil
	}
	return s.applyPayment(ctx, invoiceID, gateway.VendorAzamPay, cb.Reference)
}

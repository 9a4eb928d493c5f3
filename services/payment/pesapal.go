package payment

import (
	"context"
	"errors"
	"fmt"

	"wetech/models"
	"wetech/services/gateway"
	"wetech/services/gateway/pesapal"

	"go.uber.org/zap"
)

// StartPesapalCheckout submits the invoice as a Pesapal order and returns the
// hosted checkout URL the payer should be sent to.
func (s *Service) StartPesapalCheckout(ctx context.Context, invoiceID, callbackURL string) (string, error) {
	if s.pesapal == nil {
		return "", ErrGatewayDisabled
	}
	inv, err := s.loadInvoice(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if inv.IsPaid() {
		return "", ErrInvoiceAlreadyPaid
	}

	s.logger.Info("Pesapal payment initiated",
		zap.String("invoice_id", inv.InvoiceID),
		zap.String("amount", inv.Amount.String()),
		zap.String("client_id", inv.ClientID))

	token, err := s.pesapal.Authenticate(ctx)
	if err != nil {
		s.logger.Error("Pesapal authentication failed", zap.String("invoice_id", inv.InvoiceID), zap.Error(err))
		return "", err
	}
	session := gateway.CheckoutSession{Vendor: gateway.VendorPesapal, Token: token}

	ipnID, err := s.pesapal.RegisterIPN(ctx, session.Token, callbackURL)
	if err != nil {
		s.logger.Warn("IPN registration failed, proceeding without notifications",
			zap.String("invoice_id", inv.InvoiceID), zap.Error(err))
	} else {
		session.CallbackRegistered = true
		session.NotificationID = ipnID
	}

	order, err := s.pesapal.SubmitOrder(ctx, session.Token, s.buildOrder(ctx, inv, callbackURL, session))
	if err != nil {
		s.logger.Error("Pesapal order submission failed", zap.String("invoice_id", inv.InvoiceID), zap.Error(err))
		return "", err
	}

	if !session.CallbackRegistered && s.scheduler != nil {
		if err := s.scheduler.ScheduleVerification(ctx, order.OrderTrackingID, inv.InvoiceID); err != nil {
			s.logger.Warn("Could not schedule payment verification",
				zap.String("invoice_id", inv.InvoiceID),
				zap.String("order_tracking_id", order.OrderTrackingID),
				zap.Error(err))
		}
	}

	s.logger.Info("Pesapal payment redirect generated",
		zap.String("invoice_id", inv.InvoiceID),
		zap.String("order_tracking_id", order.OrderTrackingID),
		zap.Bool("callback_registered", session.CallbackRegistered))
	return order.RedirectURL, nil
}

func (s *Service) buildOrder(ctx context.Context, inv *models.Invoice, callbackURL string, session gateway.CheckoutSession) pesapal.OrderRequest {
	billing := pesapal.BillingAddress{EmailAddress: "tech@we-tech.com", CountryCode: "TZ"}
	if s.clients != nil && inv.ClientID != "" {
		if client, err := s.clients.GetByID(ctx, inv.ClientID); err == nil {
			billing.FirstName = client.Name
			billing.PhoneNumber = client.ContactInfo
		} else {
			s.logger.Warn("Invoice client not found for billing details",
				zap.String("invoice_id", inv.InvoiceID), zap.Error(err))
		}
	}

	currency := inv.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return pesapal.OrderRequest{
		ID:             inv.InvoiceID,
		Currency:       currency,
		Amount:         inv.Amount.InexactFloat64(),
		Description:    fmt.Sprintf("Payment for %s", inv.ProductName),
		CallbackURL:    callbackURL,
		NotificationID: session.NotificationID,
		BillingAddress: billing,
	}
}

// ReconcilePesapal corroborates a Pesapal redirect or IPN with a status query
// and applies a completed payment to the invoice.
func (s *Service) ReconcilePesapal(ctx context.Context, orderTrackingID, merchantReference string) (*Reconciliation, error) {
	if orderTrackingID == "" || merchantReference == "" {
		return nil, ErrMissingReference
	}
	if s.pesapal == nil {
		return nil, ErrGatewayDisabled
	}
	log := s.logger.With(
		zap.String("order_tracking_id", orderTrackingID),
		zap.String("merchant_reference", merchantReference))

	if _, err := s.loadInvoice(ctx, merchantReference); err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			log.Error("Invoice not found in Pesapal callback")
		}
		return nil, err
	}

	token, err := s.pesapal.Authenticate(ctx)
	if err != nil {
		log.Error("Pesapal callback authentication failed", zap.Error(err))
		return nil, err
	}
	status, err := s.pesapal.TransactionStatus(ctx, token, orderTrackingID)
	if err != nil {
		log.Error("Pesapal status query failed", zap.Error(err))
		return nil, err
	}
	if status.MerchantReference != "" && status.MerchantReference != merchantReference {
		log.Error("Pesapal status belongs to another invoice", zap.String("reported_reference", status.MerchantReference))
		return nil, ErrReferenceMismatch
	}

	switch {
	case status.IsCompleted():
		return s.applyPayment(ctx, merchantReference, gateway.VendorPesapal, orderTrackingID)
	case status.IsFailed():
		log.Warn("Payment failed", zap.String("description", status.Description))
		return &Reconciliation{InvoiceID: merchantReference, Result: ResultFailed, Message: MessageFailed}, nil
	default:
		log.Info("Payment not completed", zap.String("status", status.Describe()))
		return &Reconciliation{
			InvoiceID: merchantReference,
			Result:    ResultPending,
			Message:   statusMessage(status.Describe()),
		}, nil
	}
}

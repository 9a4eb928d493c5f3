package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wetech/services/gateway"
	"wetech/services/payment"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Reconciler applies a Pesapal outcome to an invoice.
type Reconciler interface {
	ReconcilePesapal(ctx context.Context, orderTrackingID, merchantReference string) (*payment.Reconciliation, error)
}

// ErrStillPending makes asynq retry a verification later.
var ErrStillPending = errors.New("payment still pending")

// HandleVerifyPayment returns the asynq handler for TypeVerifyPayment.
func HandleVerifyPayment(rec Reconciler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p VerifyPaymentPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid verification payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		log := logger.With(
			zap.String("order_tracking_id", p.OrderTrackingID),
			zap.String("merchant_reference", p.MerchantReference))

		result, err := rec.ReconcilePesapal(ctx, p.OrderTrackingID, p.MerchantReference)
		if err != nil {
			if permanent(err) {
				log.Error("Payment verification abandoned", zap.Error(err))
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			log.Warn("Payment verification failed, will retry", zap.Error(err))
			return err
		}

		if result.Result == payment.ResultPending {
			log.Info("Payment still pending", zap.String("message", result.Message))
			return ErrStillPending
		}
		log.Info("Payment verified", zap.String("result", string(result.Result)))
		return nil
	}
}

func permanent(err error) bool {
	switch {
	case errors.Is(err, payment.ErrInvoiceNotFound),
		errors.Is(err, payment.ErrReferenceMismatch),
		errors.Is(err, payment.ErrMissingReference),
		errors.Is(err, payment.ErrGatewayDisabled):
		return true
	}
	switch gateway.KindOf(err) {
	case gateway.KindAuthFailed, gateway.KindVendorRejected:
		return true
	}
	return false
}

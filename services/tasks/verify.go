package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeVerifyPayment = "payment:verify"

// VerifyPaymentPayload identifies a Pesapal order to re-check.
type VerifyPaymentPayload struct {
	OrderTrackingID   string `json:"order_tracking_id"`
	MerchantReference string `json:"merchant_reference"`
}

// NewVerifyPaymentTask builds a verification task that fires after delay.
// The task id is derived from the tracking id so a checkout is queued once.
func NewVerifyPaymentTask(payload VerifyPaymentPayload, delay time.Duration, maxRetry int) (*asynq.Task, []asynq.Option, error) {
	if payload.OrderTrackingID == "" || payload.MerchantReference == "" {
		return nil, nil, errors.New("verify task needs a tracking id and a merchant reference")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeVerifyPayment, b)
	opts := []asynq.Option{
		asynq.ProcessIn(delay),
		asynq.MaxRetry(maxRetry),
		asynq.TaskID("verify:" + payload.OrderTrackingID),
	}
	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler queues delayed payment verifications.
type Scheduler struct {
	client   Enqueuer
	delay    time.Duration
	maxRetry int
	logger   *zap.Logger
}

// NewScheduler creates a Scheduler. Pending payments are re-checked up to
// maxRetry more times using asynq's retry backoff.
func NewScheduler(client Enqueuer, delay time.Duration, maxRetry int, logger *zap.Logger) *Scheduler {
	return &Scheduler{client: client, delay: delay, maxRetry: maxRetry, logger: logger}
}

// ScheduleVerification enqueues a status check for the order.
func (s *Scheduler) ScheduleVerification(ctx context.Context, orderTrackingID, merchantReference string) error {
	task, opts, err := NewVerifyPaymentTask(VerifyPaymentPayload{
		OrderTrackingID:   orderTrackingID,
		MerchantReference: merchantReference,
	}, s.delay, s.maxRetry)
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue payment verification: %w", err)
	}
	s.logger.Info("Payment verification scheduled",
		zap.String("task_id", info.ID),
		zap.String("order_tracking_id", orderTrackingID),
		zap.String("merchant_reference", merchantReference),
		zap.Time("process_at", info.NextProcessAt))
	return nil
}

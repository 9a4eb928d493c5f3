package cron

import (
	"time"

	"wetech/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// VerificationWorker runs queued payment verifications in the background.
type VerificationWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewVerificationWorker builds a worker against the queue Redis database.
func NewVerificationWorker(redisOpts asynq.RedisClientOpt, concurrency int, rec tasks.Reconciler, logger *zap.Logger) *VerificationWorker {
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
			// Pending payments are polled again on a gentle schedule.
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n+1) * 2 * time.Minute
			},
			Logger: newAsynqLogger(logger),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeVerifyPayment, tasks.HandleVerifyPayment(rec, logger))

	return &VerificationWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background, retrying startup a few times.
func (w *VerificationWorker) Start() {
	go func() {
		w.logger.Info("Starting payment verification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("Verification worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Error("Verification worker disabled; payments rely on gateway callbacks only")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// Shutdown stops fetching new tasks and waits for active ones.
func (w *VerificationWorker) Shutdown() {
	w.srv.Shutdown()
	w.logger.Info("Payment verification worker stopped")
}

// asynqLogger adapts zap to asynq.Logger.
type asynqLogger struct {
	s *zap.SugaredLogger
}

func newAsynqLogger(logger *zap.Logger) asynqLogger {
	return asynqLogger{s: logger.Named("asynq").Sugar()}
}

func (l asynqLogger) Debug(args ...interface{}) { l.s.Debug(args...) }
func (l asynqLogger) Info(args ...interface{})  { l.s.Info(args...) }
func (l asynqLogger) Warn(args ...interface{})  { l.s.Warn(args...) }
func (l asynqLogger) Error(args ...interface{}) { l.s.Error(args...) }
func (l asynqLogger) Fatal(args ...interface{}) { l.s.Fatal(args...) }

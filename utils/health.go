package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// MongoPinger checks the primary of a Mongo deployment.
func MongoPinger(client *mongo.Client) Pinger {
	return PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) })
}

// RedisPinger checks a Redis connection.
func RedisPinger(client *redis.Client) Pinger {
	return PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
}

// DependencyStatus is the outcome of a single dependency check.
type DependencyStatus struct {
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Healthy   bool                        `json:"-"`
	Status    string                      `json:"status"`
	Checks    map[string]DependencyStatus `json:"checks"`
	CheckedAt time.Time                   `json:"checkedAt"`
}

// HealthMonitor pings named dependencies on demand and on a schedule.
type HealthMonitor struct {
	deps map[string]Pinger

	mu      sync.RWMutex
	current HealthStatus
}

// NewHealthMonitor creates a monitor over the named dependencies.
func NewHealthMonitor(deps map[string]Pinger) *HealthMonitor {
	return &HealthMonitor{deps: deps}
}

// Check pings every dependency now and stores the snapshot.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy:   true,
		Status:    "healthy",
		Checks:    make(map[string]DependencyStatus, len(m.deps)),
		CheckedAt: time.Now(),
	}

	for name, dep := range m.deps {
		start := time.Now()
		err := dep.Ping(ctx)
		ds := DependencyStatus{Status: "ok", ResponseTimeMS: time.Since(start).Milliseconds()}
		if err != nil {
			ds.Status = "error"
			ds.Error = err.Error()
			status.Healthy = false
			status.Status = "unhealthy"
		}
		status.Checks[name] = ds
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// CheckOne pings a single named dependency.
func (m *HealthMonitor) CheckOne(ctx context.Context, name string) error {
	dep, ok := m.deps[name]
	if !ok {
		return nil
	}
	return dep.Ping(ctx)
}

// Latest returns the most recent stored snapshot.
func (m *HealthMonitor) Latest() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Start performs periodic health checks until ctx is cancelled.
func (m *HealthMonitor) Start(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				m.Check(checkCtx)
				cancel()
			}
		}
	}()
}

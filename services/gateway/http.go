package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"wetech/utils"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every outbound vendor request.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a vendor reply is read.
const maxBodyBytes = 1 << 20

// Response is a raw vendor reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// Snippet returns the start of the body for log and error messages.
func (r *Response) Snippet() string {
	if len(r.Body) > 200 {
		return string(r.Body[:200])
	}
	return string(r.Body)
}

// Requester performs JSON calls against one vendor and classifies transport failures.
type Requester struct {
	vendor  string
	client  *http.Client
	logger  *zap.Logger
	metrics *utils.Metrics
}

// NewRequester creates a Requester. A zero timeout falls back to DefaultTimeout.
func NewRequester(vendor string, timeout time.Duration, logger *zap.Logger, metrics *utils.Metrics) *Requester {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Requester{
		vendor:  vendor,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// Vendor returns the vendor name this requester reports errors under.
func (r *Requester) Vendor() string { return r.vendor }

// Do sends body (if non-nil) as JSON and returns the raw reply. Only transport
// failures are returned as errors; status handling belongs to the caller.
func (r *Requester) Do(ctx context.Context, op, method, url, token string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, newError(KindInvalidResponse, r.vendor, op, "could not encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, newError(KindConnection, r.vendor, op, "could not build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		gErr := r.classify(op, err)
		r.metrics.ObserveGatewayCall(r.vendor, op, string(gErr.Kind), time.Since(start))
		r.logger.Debug("gateway transport failure",
			zap.String("vendor", r.vendor), zap.String("op", op), zap.Error(err))
		return nil, gErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		gErr := r.classify(op, err)
		r.metrics.ObserveGatewayCall(r.vendor, op, string(gErr.Kind), time.Since(start))
		return nil, gErr
	}

	r.metrics.ObserveGatewayCall(r.vendor, op, fmt.Sprintf("%dxx", resp.StatusCode/100), time.Since(start))
	r.logger.Debug("gateway replied",
		zap.String("vendor", r.vendor),
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

func (r *Requester) classify(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, r.vendor, op, "the gateway did not respond in time", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindTimeout, r.vendor, op, "the gateway did not respond in time", err)
	}
	if errors.Is(err, context.Canceled) {
		return fromContext(r.vendor, op, err)
	}
	return newError(KindConnection, r.vendor, op, "cannot reach the gateway", err)
}

// DecodeJSON unmarshals a reply into v, mapping failures to InvalidResponse.
func DecodeJSON(vendor, op string, resp *Response, v any) error {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return InvalidResponse(vendor, op, resp.StatusCode, "empty response body", nil)
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return InvalidResponse(vendor, op, resp.StatusCode, "invalid JSON response: "+resp.Snippet(), err)
	}
	return nil
}

package pesapal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"wetech/services/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:        baseURL,
		ConsumerKey:    " key\n",
		ConsumerSecret: "secret",
		Timeout:        100 * time.Millisecond,
		Retry:          gateway.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	}, zap.NewNop(), nil)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{ConsumerKey: "  ", ConsumerSecret: "x"}, zap.NewNop(), nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAuthenticateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Auth/RequestToken", r.URL.Path)
		var req tokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "key", req.ConsumerKey)
		w.Write([]byte(`{"token":"abc","expiryDate":"2030-01-01T00:00:00Z","error":null,"status":"200"}`))
	}))
	defer srv.Close()

	token, err := newTestClient(t, srv.URL).Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestAuthenticateErrorObjectOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":null,"error":{"error_type":"api_error","code":"invalid_consumer_key_or_secret_provided","message":""},"status":"500"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, gateway.KindAuthFailed, gateway.KindOf(err))
	assert.Contains(t, gateway.UserMessage(err), "Invalid Pesapal API credentials")
}

func TestAuthenticate401IsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"unauthorized","message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	gErr, ok := gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, gateway.KindAuthFailed, gErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, gErr.StatusCode)
	assert.Contains(t, gErr.Message, "bad key")
}

func TestAuthenticateRetriesTimeouts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			time.Sleep(300 * time.Millisecond)
		}
		w.Write([]byte(`{"token":"late"}`))
	}))
	defer srv.Close()

	token, err := newTestClient(t, srv.URL).Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", token)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAuthenticateGivesUpAfterThreeTimeouts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, gateway.KindTimeout, gateway.KindOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAuthenticateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, gateway.KindConnection, gateway.KindOf(err))
}

func TestSubmitOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var order OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		if order.ID == "INV-BAD" {
			w.Write([]byte(`{"error":{"code":"invalid_amount","message":"Amount is invalid"},"status":"500"}`))
			return
		}
		assert.Equal(t, 50000.0, order.Amount)
		w.Write([]byte(`{"order_tracking_id":"trk-1","merchant_reference":"INV-1234","redirect_url":"https://pay.example/trk-1","status":"200"}`))
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	resp, err := c.SubmitOrder(context.Background(), "tok", OrderRequest{ID: "INV-1234", Currency: "TZS", Amount: 50000})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/trk-1", resp.RedirectURL)
	assert.Equal(t, "trk-1", resp.OrderTrackingID)

	_, err = c.SubmitOrder(context.Background(), "tok", OrderRequest{ID: "INV-BAD"})
	require.Error(t, err)
	assert.Equal(t, gateway.KindVendorRejected, gateway.KindOf(err))
	assert.Equal(t, "Amount is invalid", gateway.UserMessage(err))
}

func TestSubmitOrderInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway down</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).SubmitOrder(context.Background(), "tok", OrderRequest{ID: "INV-1"})
	require.Error(t, err)
	assert.Equal(t, gateway.KindInvalidResponse, gateway.KindOf(err))
}

func TestRegisterIPN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ipnRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "GET", req.IPNNotificationType)
		w.Write([]byte(`{"ipn_id":"ipn-42","url":"` + req.URL + `"}`))
	}))
	defer srv.Close()

	id, err := newTestClient(t, srv.URL).RegisterIPN(context.Background(), "tok", "https://shop.example/payment/pesapal/callback/")
	require.NoError(t, err)
	assert.Equal(t, "ipn-42", id)
}

func TestTransactionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trk-1", r.URL.Query().Get("orderTrackingId"))
		w.Write([]byte(`{"payment_status_description":"Completed","status_code":1,"merchant_reference":"INV-1234","confirmation_code":"C1","amount":50000,"currency":"TZS"}`))
	}))
	defer srv.Close()

	status, err := newTestClient(t, srv.URL).TransactionStatus(context.Background(), "tok", "trk-1")
	require.NoError(t, err)
	assert.True(t, status.IsCompleted())
	assert.Equal(t, "INV-1234", status.MerchantReference)
}

func TestTransactionStatusOutcomes(t *testing.T) {
	assert.True(t, (&TransactionStatus{StatusCode: StatusCompleted}).IsCompleted())
	assert.False(t, (&TransactionStatus{PaymentStatusDescription: "Reversed", StatusCode: StatusReversed}).IsCompleted())
	assert.True(t, (&TransactionStatus{PaymentStatusDescription: "Failed"}).IsFailed())
	assert.Equal(t, "Pending", (&TransactionStatus{}).Describe())
}

func TestTransactionStatusUnpaidOrderIsPending(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"payment_status_description":"","status_code":0,"error":{"error_type":"api_error","code":"payment_details_not_found","message":"Pending Payment"},"status":"500"}`))
	}))
	defer srv.Close()

	status, err := newTestClient(t, srv.URL).TransactionStatus(context.Background(), "tok", "trk-1")
	require.NoError(t, err)
	assert.False(t, status.IsCompleted())
	assert.False(t, status.IsFailed())
	assert.Equal(t, "Pending", status.Describe())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestTransactionStatusErrorWithStatusCodeIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payment_status_description":"","status_code":3,"error":{"code":"order_locked","message":"Order locked"},"status":"500"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).TransactionStatus(context.Background(), "tok", "trk-1")
	require.Error(t, err)
	assert.Equal(t, gateway.KindVendorRejected, gateway.KindOf(err))
	assert.Contains(t, gateway.UserMessage(err), "order_locked")
}

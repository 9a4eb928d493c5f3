package pesapal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wetech/services/gateway"
	"wetech/utils"

	"go.uber.org/zap"
)

// DefaultBaseURL is the live v3 API.
const DefaultBaseURL = "https://pay.pesapal.com/v3"

const vendor = gateway.VendorPesapal

// ErrMissingCredentials is returned by NewClient when keys are not configured.
var ErrMissingCredentials = errors.New("pesapal: consumer key and secret must be configured")

// Config holds the Pesapal client settings.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
	Retry          gateway.RetryPolicy
}

// Client talks to the Pesapal v3 REST API.
type Client struct {
	baseURL string
	key     string
	secret  string
	http    *gateway.Requester
	retrier gateway.Retrier
	logger  *zap.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config, logger *zap.Logger, metrics *utils.Metrics) (*Client, error) {
	key := strings.TrimSpace(cfg.ConsumerKey)
	secret := strings.TrimSpace(cfg.ConsumerSecret)
	if key == "" || secret == "" {
		return nil, ErrMissingCredentials
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		baseURL: base,
		key:     key,
		secret:  secret,
		http:    gateway.NewRequester(vendor, cfg.Timeout, logger, metrics),
		retrier: gateway.Retrier{Policy: cfg.Retry, Logger: logger, Vendor: vendor},
		logger:  logger,
	}, nil
}

// Authenticate exchanges the consumer key and secret for a bearer token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	return gateway.Retry(ctx, c.retrier, "authenticate", c.requestToken)
}

func (c *Client) requestToken(ctx context.Context) (string, error) {
	const op = "authenticate"
	resp, err := c.http.Do(ctx, op, http.MethodPost, c.baseURL+"/api/Auth/RequestToken", "",
		tokenRequest{ConsumerKey: c.key, ConsumerSecret: c.secret})
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var body tokenResponse
		if gateway.DecodeJSON(vendor, op, resp, &body) == nil && body.Error.present() {
			return "", gateway.AuthFailed(vendor, op, resp.StatusCode, describeError(body.Error))
		}
		return "", gateway.AuthFailed(vendor, op, resp.StatusCode,
			fmt.Sprintf("Auth Failed (Status %d). Response: %s", resp.StatusCode, resp.Snippet()))
	}

	var body tokenResponse
	if err := gateway.DecodeJSON(vendor, op, resp, &body); err != nil {
		return "", err
	}
	// A token wins over an accompanying error object.
	if body.Token != "" {
		return body.Token, nil
	}
	if body.Error.present() {
		return "", gateway.AuthFailed(vendor, op, resp.StatusCode, describeError(body.Error))
	}
	return "", gateway.InvalidResponse(vendor, op, resp.StatusCode,
		"response 200 but no token found: "+resp.Snippet(), nil)
}

func describeError(e *apiError) string {
	if strings.Contains(strings.ToLower(e.Code), "invalid_consumer_key_or_secret") {
		return "Invalid Pesapal API credentials. Please check your Consumer Key and Consumer Secret."
	}
	if e.Code == "" {
		return "Pesapal API Error: " + e.Message
	}
	msg := "Pesapal API Error: " + e.Code
	if e.Message != "" {
		msg += " - " + e.Message
	}
	return msg
}

// RegisterIPN registers callbackURL for GET notifications and returns the ipn id.
// It is not retried; callers treat failure as a missing capability.
func (c *Client) RegisterIPN(ctx context.Context, token, callbackURL string) (string, error) {
	const op = "register_ipn"
	resp, err := c.http.Do(ctx, op, http.MethodPost, c.baseURL+"/api/URLSetup/RegisterIPN", token,
		ipnRequest{URL: callbackURL, IPNNotificationType: "GET"})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", gateway.Rejected(vendor, op, resp.StatusCode, "IPN registration failed: "+resp.Snippet())
	}

	var body ipnResponse
	if err := gateway.DecodeJSON(vendor, op, resp, &body); err != nil {
		return "", err
	}
	if body.Error.present() {
		return "", gateway.Rejected(vendor, op, resp.StatusCode, describeError(body.Error))
	}
	if body.IPNID == "" {
		return "", gateway.InvalidResponse(vendor, op, resp.StatusCode, "no ipn_id in response", nil)
	}
	return body.IPNID, nil
}

// SubmitOrder creates the hosted checkout for an order.
func (c *Client) SubmitOrder(ctx context.Context, token string, order OrderRequest) (*OrderResponse, error) {
	return gateway.Retry(ctx, c.retrier, "submit_order", func(ctx context.Context) (*OrderResponse, error) {
		const op = "submit_order"
		resp, err := c.http.Do(ctx, op, http.MethodPost, c.baseURL+"/api/Transactions/SubmitOrderRequest", token, order)
		if err != nil {
			return nil, err
		}

		var body OrderResponse
		if err := gateway.DecodeJSON(vendor, op, resp, &body); err != nil {
			return nil, err
		}
		if body.RedirectURL != "" {
			return &body, nil
		}
		msg := "Unknown Error"
		if body.Error.present() {
			msg = body.Error.Message
			if msg == "" {
				msg = body.Error.Code
			}
		}
		return nil, gateway.Rejected(vendor, op, resp.StatusCode, msg)
	})
}

// TransactionStatus polls the state of an order by its tracking id.
func (c *Client) TransactionStatus(ctx context.Context, token, orderTrackingID string) (*TransactionStatus, error) {
	return gateway.Retry(ctx, c.retrier, "transaction_status", func(ctx context.Context) (*TransactionStatus, error) {
		const op = "transaction_status"
		endpoint := c.baseURL + "/api/Transactions/GetTransactionStatus?orderTrackingId=" + url.QueryEscape(orderTrackingID)
		resp, err := c.http.Do(ctx, op, http.MethodGet, endpoint, token, nil)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, gateway.AuthFailed(vendor, op, resp.StatusCode, "token rejected")
		}

		var body TransactionStatus
		if err := gateway.DecodeJSON(vendor, op, resp, &body); err != nil {
			return nil, err
		}
		if body.Error.present() && body.PaymentStatusDescription == "" && !body.awaitingPayment() {
			return nil, gateway.Rejected(vendor, op, resp.StatusCode, describeError(body.Error))
		}
		return &body, nil
	})
}

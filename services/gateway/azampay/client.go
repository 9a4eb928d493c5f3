package azampay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wetech/services/gateway"
	"wetech/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	SandboxAuthURL     = "https://authenticator-sandbox.azampay.co.tz/App/Login"
	SandboxCheckoutURL = "https://sandbox.azampay.co.tz/azampay/mno/checkout"
	LiveAuthURL        = "https://authenticator.azampay.co.tz/App/Login"
	LiveCheckoutURL    = "https://checkout.azampay.co.tz/azampay/mno/checkout"
)

const vendor = gateway.VendorAzamPay

// ErrMissingCredentials is returned by NewClient when client id or secret is empty.
var ErrMissingCredentials = errors.New("azampay: client id and secret must be configured")

// Config holds the AzamPay client settings. AuthURL and CheckoutURL override
// the URLs picked by Sandbox.
type Config struct {
	AppName      string
	ClientID     string
	ClientSecret string
	Sandbox      bool
	AuthURL      string
	CheckoutURL  string
	Timeout      time.Duration
	Retry        gateway.RetryPolicy
}

// Client triggers mobile money USSD pushes through AzamPay.
type Client struct {
	appName      string
	clientID     string
	clientSecret string
	authURL      string
	checkoutURL  string
	http         *gateway.Requester
	retrier      gateway.Retrier
	logger       *zap.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config, logger *zap.Logger, metrics *utils.Metrics) (*Client, error) {
	c := &Client{
		appName:      cleanCredential(cfg.AppName),
		clientID:     cleanCredential(cfg.ClientID),
		clientSecret: cleanCredential(cfg.ClientSecret),
		authURL:      LiveAuthURL,
		checkoutURL:  LiveCheckoutURL,
		http:         gateway.NewRequester(vendor, cfg.Timeout, logger, metrics),
		retrier:      gateway.Retrier{Policy: cfg.Retry, Logger: logger, Vendor: vendor},
		logger:       logger,
	}
	if c.clientID == "" || c.clientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if c.appName == "" {
		c.appName = "We-Tech"
	}
	if cfg.Sandbox {
		c.authURL, c.checkoutURL = SandboxAuthURL, SandboxCheckoutURL
	}
	if cfg.AuthURL != "" {
		c.authURL = cfg.AuthURL
	}
	if cfg.CheckoutURL != "" {
		c.checkoutURL = cfg.CheckoutURL
	}

	logger.Info("AzamPay client configured",
		zap.String("app", c.appName),
		zap.Bool("sandbox", cfg.Sandbox),
		zap.Int("secret_length", len(c.clientSecret)))
	return c, nil
}

func cleanCredential(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(s)
}

type authRequest struct {
	AppName      string `json:"appName"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type authResponse struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
	Msg     json.RawMessage `json:"msg"`
	Error   json.RawMessage `json:"error"`
	Data    struct {
		AccessToken string `json:"accessToken"`
		Expire      string `json:"expire"`
	} `json:"data"`
}

// CheckoutRequest describes one USSD push.
type CheckoutRequest struct {
	AccountNumber string
	Amount        decimal.Decimal
	ExternalID    string
	Provider      string
}

type checkoutPayload struct {
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	ExternalID    string `json:"externalId"`
	Provider      string `json:"provider"`
}

// CheckoutResponse is the vendor acknowledgement of a push.
type CheckoutResponse struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transactionId"`
	Message       string          `json:"-"`
	RawMessage    json.RawMessage `json:"message"`
	Msg           json.RawMessage `json:"msg"`
	Error         json.RawMessage `json:"error"`
}

// Authenticate obtains a session token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	return gateway.Retry(ctx, c.retrier, "authenticate", c.login)
}

func (c *Client) login(ctx context.Context) (string, error) {
	const op = "authenticate"
	resp, err := c.http.Do(ctx, op, http.MethodPost, c.authURL, "",
		authRequest{AppName: c.appName, ClientID: c.clientID, ClientSecret: c.clientSecret})
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		apiMsg := resp.Snippet()
		var body authResponse
		if json.Unmarshal(resp.Body, &body) == nil {
			if m := firstMessage(body.Message, body.Msg, body.Error); m != "" {
				apiMsg = m
			}
		}
		if apiMsg == "" {
			apiMsg = "Unauthorized"
		}
		return "", gateway.AuthFailed(vendor, op, resp.StatusCode,
			"Invalid credentials (401 Unauthorized). API says: "+apiMsg)
	}

	var body authResponse
	if err := gateway.DecodeJSON(vendor, op, resp, &body); err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		msg := firstMessage(body.Message, body.Msg, body.Error)
		if msg == "" {
			msg = fmt.Sprintf("Authentication failed with status %d. Response: %s", resp.StatusCode, resp.Snippet())
		}
		return "", gateway.AuthFailed(vendor, op, resp.StatusCode, msg)
	}
	if !body.Success {
		msg := firstMessage(body.Message, body.Msg, body.Error)
		if msg == "" {
			msg = "Unknown error from AzamPay API"
		}
		return "", gateway.AuthFailed(vendor, op, resp.StatusCode, msg)
	}
	if body.Data.AccessToken == "" {
		return "", gateway.InvalidResponse(vendor, op, resp.StatusCode,
			"response success=true but no accessToken found", nil)
	}
	return body.Data.AccessToken, nil
}

// MobileCheckout sends a USSD push to the payer's handset.
func (c *Client) MobileCheckout(ctx context.Context, token string, req CheckoutRequest) (*CheckoutResponse, error) {
	payload := checkoutPayload{
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount.Truncate(0).String(),
		Currency:      "TZS",
		ExternalID:    req.ExternalID,
		Provider:      NormalizeProvider(req.Provider),
	}
	c.logger.Info("Sending AzamPay push",
		zap.String("account", payload.AccountNumber),
		zap.String("provider", payload.Provider),
		zap.String("external_id", payload.ExternalID))

	// A push is not idempotent: a late reply may still have reached the
	// handset, so it is sent once and never retried.
	const op = "mobile_checkout"
	resp, err := c.http.Do(ctx, op, http.MethodPost, c.checkoutURL, token, payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, gateway.AuthFailed(vendor, op, resp.StatusCode, "token rejected by checkout")
	}

	var body CheckoutResponse
	if err := gateway.DecodeJSON(vendor, op, resp, &body); err != nil {
		return nil, err
	}
	body.Message = firstMessage(body.RawMessage, body.Msg, body.Error)
	if !body.Success {
		msg := body.Message
		if msg == "" {
			msg = "Unknown error from AzamPay"
		}
		return nil, gateway.Rejected(vendor, op, resp.StatusCode, msg)
	}
	if body.Message == "" {
		body.Message = "Payment request sent successfully"
	}
	return &body, nil
}

// firstMessage returns the first non-empty field, rendering objects as raw JSON.
func firstMessage(fields ...json.RawMessage) string {
	for _, raw := range fields {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		return string(raw)
	}
	return ""
}

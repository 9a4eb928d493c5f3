package gateway

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies every failure a gateway client can report.
type Kind string

const (
	KindAuthFailed      Kind = "auth_failed"
	KindTimeout         Kind = "timeout"
	KindConnection      Kind = "connection_error"
	KindInvalidResponse Kind = "invalid_response"
	KindVendorRejected  Kind = "vendor_rejected"
)

// Vendor names, also used as invoice paid_via values.
const (
	VendorPesapal = "Pesapal"
	VendorAzamPay = "AzamPay"
)

// Error is the single error shape returned by gateway clients.
type Error struct {
	Kind       Kind
	Vendor     string
	Op         string
	StatusCode int
	// Message is the vendor's own wording when one was supplied.
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Vendor, e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind, e.g. errors.Is(err, &gateway.Error{Kind: gateway.KindTimeout}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Vendor == "" || t.Vendor == e.Vendor)
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" if err is not a gateway error.
func KindOf(err error) Kind {
	if gErr, ok := AsError(err); ok {
		return gErr.Kind
	}
	return ""
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindConnection:
		return true
	}
	return false
}

// UserMessage renders err for display to a paying customer. Vendor wording is
// shown for credential and rejection errors only.
func UserMessage(err error) string {
	gErr, ok := AsError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}
	switch gErr.Kind {
	case KindAuthFailed, KindVendorRejected:
		if gErr.Message != "" {
			return gErr.Message
		}
		return "The payment provider declined the request."
	case KindTimeout:
		return "The payment provider did not respond in time. Please try again."
	case KindConnection:
		return "Could not reach the payment provider. Please try again."
	default:
		return "The payment provider returned an unexpected response."
	}
}

func newError(kind Kind, vendor, op, message string, err error) *Error {
	return &Error{Kind: kind, Vendor: vendor, Op: op, Message: message, Err: err}
}

// AuthFailed builds a credential error carrying the vendor message.
func AuthFailed(vendor, op string, status int, message string) *Error {
	e := newError(KindAuthFailed, vendor, op, message, nil)
	e.StatusCode = status
	return e
}

// Rejected builds a vendor-level refusal.
func Rejected(vendor, op string, status int, message string) *Error {
	e := newError(KindVendorRejected, vendor, op, message, nil)
	e.StatusCode = status
	return e
}

// InvalidResponse builds a decode or shape error.
func InvalidResponse(vendor, op string, status int, message string, err error) *Error {
	e := newError(KindInvalidResponse, vendor, op, message, err)
	e.StatusCode = status
	return e
}

// fromContext maps a bare context error onto the taxonomy.
func fromContext(vendor, op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, vendor, op, "request deadline exceeded", err)
	}
	return newError(KindConnection, vendor, op, "request cancelled", err)
}

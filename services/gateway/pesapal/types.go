package pesapal

import "strings"

// Pesapal status codes returned by GetTransactionStatus.
const (
	StatusInvalid   = 0
	StatusCompleted = 1
	StatusFailed    = 2
	StatusReversed  = 3
)

// ErrCodePaymentDetailsNotFound is sent while an order is still unpaid.
const ErrCodePaymentDetailsNotFound = "payment_details_not_found"

type apiError struct {
	ErrorType string `json:"error_type"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (e *apiError) present() bool {
	return e != nil && (e.Code != "" || e.Message != "")
}

type tokenRequest struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

type tokenResponse struct {
	Token      string    `json:"token"`
	ExpiryDate string    `json:"expiryDate"`
	Error      *apiError `json:"error"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
}

type ipnRequest struct {
	URL                 string `json:"url"`
	IPNNotificationType string `json:"ipn_notification_type"`
}

type ipnResponse struct {
	IPNID string    `json:"ipn_id"`
	URL   string    `json:"url"`
	Error *apiError `json:"error"`
}

// BillingAddress identifies the payer on the hosted checkout page.
type BillingAddress struct {
	EmailAddress string `json:"email_address"`
	PhoneNumber  string `json:"phone_number"`
	CountryCode  string `json:"country_code"`
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name"`
	LastName     string `json:"last_name"`
}

// OrderRequest is the SubmitOrderRequest payload.
type OrderRequest struct {
	ID             string         `json:"id"`
	Currency       string         `json:"currency"`
	Amount         float64        `json:"amount"`
	Description    string         `json:"description"`
	CallbackURL    string         `json:"callback_url"`
	NotificationID string         `json:"notification_id,omitempty"`
	BillingAddress BillingAddress `json:"billing_address"`
}

// OrderResponse carries the hosted checkout redirect.
type OrderResponse struct {
	OrderTrackingID   string    `json:"order_tracking_id"`
	MerchantReference string    `json:"merchant_reference"`
	RedirectURL       string    `json:"redirect_url"`
	Status            string    `json:"status"`
	Error             *apiError `json:"error"`
}

// TransactionStatus is the GetTransactionStatus reply.
type TransactionStatus struct {
	PaymentMethod            string    `json:"payment_method"`
	Amount                   float64   `json:"amount"`
	CreatedDate              string    `json:"created_date"`
	ConfirmationCode         string    `json:"confirmation_code"`
	PaymentStatusDescription string    `json:"payment_status_description"`
	Description              string    `json:"description"`
	Message                  string    `json:"message"`
	PaymentAccount           string    `json:"payment_account"`
	StatusCode               int       `json:"status_code"`
	MerchantReference        string    `json:"merchant_reference"`
	Currency                 string    `json:"currency"`
	Error                    *apiError `json:"error"`
	Status                   string    `json:"status"`
}

// IsCompleted reports whether the payment went through.
func (s *TransactionStatus) IsCompleted() bool {
	return s.PaymentStatusDescription == "Completed" || s.StatusCode == StatusCompleted
}

// IsFailed reports a definitive failure.
func (s *TransactionStatus) IsFailed() bool {
	return strings.EqualFold(s.PaymentStatusDescription, "Failed") || s.StatusCode == StatusFailed
}

// awaitingPayment reports the error reply Pesapal gives for an order the
// payer has not finished yet.
func (s *TransactionStatus) awaitingPayment() bool {
	return s.StatusCode == StatusInvalid || (s.Error != nil && s.Error.Code == ErrCodePaymentDetailsNotFound)
}

// Describe returns a human status, "Pending" when the vendor gave none.
func (s *TransactionStatus) Describe() string {
	if s.PaymentStatusDescription != "" {
		return s.PaymentStatusDescription
	}
	return "Pending"
}

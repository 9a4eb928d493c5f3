package models

// LeadInput is the body posted by the marketplace and contact forms.
type LeadInput struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Product   string `json:"product"`
	ProductID string `json:"product_id"`
	Source    string `json:"source"`
}

// AzamPayCallback is the webhook body AzamPay posts after a push payment.
// Field matching is case-insensitive, so "utilityref" also binds.
type AzamPayCallback struct {
	UtilityRef        string `json:"utilityRef"`
	TransactionStatus string `json:"transactionStatus"`
	Reference         string `json:"reference"`
	Amount            string `json:"amount"`
	Msisdn            string `json:"msisdn"`
	Operator          string `json:"operator"`
	Message           string `json:"message"`
	FspReferenceID    string `json:"fspReferenceId"`
}

// PesapalCallback carries the query parameters of the Pesapal redirect and IPN.
type PesapalCallback struct {
	OrderTrackingID        string `form:"OrderTrackingId"`
	OrderMerchantReference string `form:"OrderMerchantReference"`
	OrderNotificationType  string `form:"OrderNotificationType"`
}

// IsIPN reports whether Pesapal sent this as a server-to-server notification.
func (p PesapalCallback) IsIPN() bool {
	return p.OrderNotificationType != ""
}

// AzamPayCheckoutInput is the form posted from the invoice page.
type AzamPayCheckoutInput struct {
	PhoneNumber string `form:"phone_number" json:"phone_number"`
	Provider    string `form:"provider" json:"provider"`
}

// InvoiceInput is what an admin submits to issue an invoice.
type InvoiceInput struct {
	ClientID  string `json:"client_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Amount    string `json:"amount"`
}

// InvoiceStatusInput is a manual status override.
type InvoiceStatusInput struct {
	Status string `json:"status" binding:"required"`
}

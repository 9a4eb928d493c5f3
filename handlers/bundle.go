package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	// Lead capture and invoice view
	SaveLeadHandler    gin.HandlerFunc
	ViewInvoiceHandler gin.HandlerFunc

	// Gateway checkout and callbacks
	PesapalPayHandler      gin.HandlerFunc
	PesapalCallbackHandler gin.HandlerFunc
	AzamPayPayHandler      gin.HandlerFunc
	AzamPayCallbackHandler gin.HandlerFunc

	// Admin endpoints
	AdminLoginHandler          gin.HandlerFunc
	IssueInvoiceHandler        gin.HandlerFunc
	ListInvoicesHandler        gin.HandlerFunc
	UpdateInvoiceStatusHandler gin.HandlerFunc
	CreateProductHandler       gin.HandlerFunc
	UpdateProductHandler       gin.HandlerFunc
	ListProductsHandler        gin.HandlerFunc

	// Probes
	HealthHandler gin.HandlerFunc
	ReadyHandler  gin.HandlerFunc
	LiveHandler   gin.HandlerFunc
}

// NewHandlerBundle collects the handler methods into a bundle.
func NewHandlerBundle(pay *PaymentHandler, leads *LeadHandler, invoices *InvoiceHandler, products *ProductHandler,
	admin *AdminHandler, health *HealthHandler) *HandlerBundle {
	return &HandlerBundle{
		SaveLeadHandler:    leads.SaveLead,
		ViewInvoiceHandler: invoices.ViewInvoice,

		PesapalPayHandler:      pay.PesapalPay,
		PesapalCallbackHandler: pay.PesapalCallback,
		AzamPayPayHandler:      pay.AzamPayPay,
		AzamPayCallbackHandler: pay.AzamPayCallback,

		AdminLoginHandler:          admin.Login,
		IssueInvoiceHandler:        invoices.IssueInvoice,
		ListInvoicesHandler:        invoices.ListInvoices,
		UpdateInvoiceStatusHandler: invoices.UpdateInvoiceStatus,
		CreateProductHandler:       products.CreateProduct,
		UpdateProductHandler:       products.UpdateProduct,
		ListProductsHandler:        products.ListProducts,

		HealthHandler: health.Health,
		ReadyHandler:  health.Ready,
		LiveHandler:   health.Live,
	}
}

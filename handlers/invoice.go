package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wetech/models"
	"wetech/services/invoice"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InvoiceHandler serves the public invoice view and invoice administration.
type InvoiceHandler struct {
	svc    invoice.InvoiceService
	flash  *Flasher
	logger *zap.Logger
}

func NewInvoiceHandler(svc invoice.InvoiceService, flash *Flasher, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, flash: flash, logger: logger}
}

// ViewInvoice returns the invoice together with any pending flash messages.
func (h *InvoiceHandler) ViewInvoice(c *gin.Context) {
	inv, err := h.svc.Get(c.Request.Context(), c.Param("invoice_id"))
	if err != nil {
		if errors.Is(err, invoice.ErrInvoiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
			return
		}
		getLogger(c, h.logger).Error("Failed to load invoice", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoice"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv, "messages": h.flash.Pop(c)})
}

// IssueInvoice creates an invoice for an existing client.
func (h *InvoiceHandler) IssueInvoice(c *gin.Context) {
	var input models.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	inv, err := h.svc.Issue(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// ListInvoices returns the newest invoices, 50 by default.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 {
		limit = 50
	}
	invoices, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// UpdateInvoiceStatus is the admin manual override.
func (h *InvoiceHandler) UpdateInvoiceStatus(c *gin.Context) {
	var input models.InvoiceStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status"})
		return
	}

	inv, err := h.svc.SetStatus(c.Request.Context(), c.Param("invoice_id"), input.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": inv})
}

func (h *InvoiceHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Invoice not found"})
	case errors.Is(err, invoice.ErrClientNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Client not found"})
	case errors.Is(err, invoice.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
	case errors.Is(err, invoice.ErrInvalidStatus), errors.Is(err, invoice.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		getLogger(c, h.logger).Error("Invoice operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
	}
}

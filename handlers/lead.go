package handlers

import (
	"errors"
	"net/http"

	"wetech/models"
	"wetech/services/lead"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LeadHandler serves the marketplace and contact form endpoint.
type LeadHandler struct {
	svc    lead.LeadService
	urls   URLBuilder
	logger *zap.Logger
}

func NewLeadHandler(svc lead.LeadService, urls URLBuilder, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{svc: svc, urls: urls, logger: logger}
}

// SaveLead captures a lead and points paying visitors at the right checkout.
func (h *LeadHandler) SaveLead(c *gin.Context) {
	logger := getLogger(c, h.logger)
	var input models.LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Error("Invalid JSON in lead submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid JSON data"})
		return
	}

	out, err := h.svc.Capture(c.Request.Context(), input)
	switch {
	case errors.Is(err, lead.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Name is required"})
		return
	case errors.Is(err, lead.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Product not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not save your request. Please try again."})
		return
	}

	if out.Invoice == nil {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}

	path := invoicePath(out.Invoice.InvoiceID)
	if out.Client.Source == models.SourcePesapal {
		path = pesapalPayPath(out.Invoice.InvoiceID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "redirect", "url": h.urls.Absolute(c, path)})
}

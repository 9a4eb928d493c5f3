package handlers

import (
	"errors"
	"net/http"

	"wetech/models"
	"wetech/services/gateway"
	"wetech/services/payment"
	"wetech/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler serves checkout starts and gateway callbacks.
type PaymentHandler struct {
	svc    payment.PaymentService
	flash  *Flasher
	urls   URLBuilder
	logger *zap.Logger
}

func NewPaymentHandler(svc payment.PaymentService, flash *Flasher, urls URLBuilder, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, flash: flash, urls: urls, logger: logger}
}

// checkoutFailed flashes a start-of-checkout error and reports whether the
// invoice page can be shown.
func (h *PaymentHandler) checkoutFailed(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, payment.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return false
	case errors.Is(err, payment.ErrInvoiceAlreadyPaid):
		h.flash.Add(c, utils.FlashInfo, "This invoice is already paid.")
	case errors.Is(err, payment.ErrGatewayDisabled):
		h.flash.Add(c, utils.FlashError, "Payment Failed: this payment method is not available right now.")
	default:
		h.flash.Add(c, utils.FlashError, "Payment Failed: "+gateway.UserMessage(err))
	}
	return true
}

// PesapalPay starts a Pesapal checkout and redirects to the hosted page.
func (h *PaymentHandler) PesapalPay(c *gin.Context) {
	invoiceID := c.Param("invoice_id")
	callbackURL := h.urls.Absolute(c, pesapalCallbackPath())

	redirectURL, err := h.svc.StartPesapalCheckout(c.Request.Context(), invoiceID, callbackURL)
	if err != nil {
		getLogger(c, h.logger).Warn("Pesapal checkout not started", zap.String("invoice_id", invoiceID), zap.Error(err))
		if h.checkoutFailed(c, err) {
			c.Redirect(http.StatusFound, invoicePath(invoiceID))
		}
		return
	}
	c.Redirect(http.StatusFound, redirectURL)
}

// PesapalCallback handles both the browser redirect and the GET IPN.
func (h *PaymentHandler) PesapalCallback(c *gin.Context) {
	logger := getLogger(c, h.logger)
	var cb models.PesapalCallback
	if err := c.ShouldBindQuery(&cb); err != nil || cb.OrderTrackingID == "" || cb.OrderMerchantReference == "" {
		logger.Warn("Pesapal callback missing required parameters")
		if cb.IsIPN() {
			c.JSON(http.StatusBadRequest, ipnAck(cb, http.StatusInternalServerError))
			return
		}
		c.Redirect(http.StatusFound, "/")
		return
	}
	logger.Info("Pesapal callback received",
		zap.String("order_tracking_id", cb.OrderTrackingID),
		zap.String("merchant_reference", cb.OrderMerchantReference),
		zap.Bool("ipn", cb.IsIPN()))

	rec, err := h.svc.ReconcilePesapal(c.Request.Context(), cb.OrderTrackingID, cb.OrderMerchantReference)

	if cb.IsIPN() {
		c.JSON(http.StatusOK, ipnAck(cb, ipnStatus(err)))
		return
	}

	if err != nil {
		if errors.Is(err, payment.ErrInvoiceNotFound) {
			c.Redirect(http.StatusFound, "/")
			return
		}
		h.flash.Add(c, utils.FlashError, "Payment verification failed: "+gateway.UserMessage(err))
		c.Redirect(http.StatusFound, invoicePath(cb.OrderMerchantReference))
		return
	}

	h.flash.Add(c, flashLevel(rec.Result), rec.Message)
	c.Redirect(http.StatusFound, invoicePath(rec.InvoiceID))
}

// ipnAck is the acknowledgement body Pesapal expects from an IPN listener.
func ipnAck(cb models.PesapalCallback, status int) gin.H {
	return gin.H{
		"orderNotificationType":  cb.OrderNotificationType,
		"orderTrackingId":        cb.OrderTrackingID,
		"orderMerchantReference": cb.OrderMerchantReference,
		"status":                 status,
	}
}

// ipnStatus asks Pesapal to redeliver only when a later attempt could succeed.
// Unknown or mismatched references are dropped.
func ipnStatus(err error) int {
	if err == nil || errors.Is(err, payment.ErrInvoiceNotFound) || errors.Is(err, payment.ErrReferenceMismatch) {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

func flashLevel(r payment.Result) string {
	switch r {
	case payment.ResultPaid, payment.ResultAlreadyPaid:
		return utils.FlashSuccess
	case payment.ResultFailed:
		return utils.FlashError
	case payment.ResultOverridden:
		return utils.FlashWarning
	default:
		return utils.FlashInfo
	}
}

// AzamPayPay sends a USSD push for the invoice and returns to the invoice page.
func (h *PaymentHandler) AzamPayPay(c *gin.Context) {
	invoiceID := c.Param("invoice_id")
	var input models.AzamPayCheckoutInput
	if err := c.ShouldBind(&input); err != nil || input.PhoneNumber == "" {
		h.flash.Add(c, utils.FlashError, "Payment Failed: a phone number is required.")
		c.Redirect(http.StatusFound, invoicePath(invoiceID))
		return
	}

	push, err := h.svc.StartAzamPayCheckout(c.Request.Context(), invoiceID, input)
	if err != nil {
		getLogger(c, h.logger).Warn("AzamPay push not sent", zap.String("invoice_id", invoiceID), zap.Error(err))
		if h.checkoutFailed(c, err) {
			c.Redirect(http.StatusFound, invoicePath(invoiceID))
		}
		return
	}

	h.flash.Add(c, utils.FlashSuccess, push.Message)
	c.Redirect(http.StatusFound, invoicePath(invoiceID))
}

// AzamPayCallback is the AzamPay webhook. Business failures answer 200 with
// success=false; storage errors answer 500 so the vendor redelivers.
func (h *PaymentHandler) AzamPayCallback(c *gin.Context) {
	logger := getLogger(c, h.logger)
	var cb models.AzamPayCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		logger.Error("AzamPay callback: invalid JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON"})
		return
	}

	rec, err := h.svc.ReconcileAzamPay(c.Request.Context(), cb)
	switch {
	case errors.Is(err, payment.ErrInvoiceNotFound):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invoice not found"})
	case errors.Is(err, payment.ErrMissingReference):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Missing utilityRef"})
	case err != nil:
		logger.Error("AzamPay callback error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "result": rec.Result})
	}
}

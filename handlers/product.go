package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wetech/models"
	"wetech/services/product"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductHandler serves marketplace product administration.
type ProductHandler struct {
	svc    product.ProductService
	logger *zap.Logger
}

func NewProductHandler(svc product.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, logger: logger}
}

// CreateProduct adds a product that leads and invoices can reference.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}
	p, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("product_id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

// ListProducts returns the newest products, 50 by default.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 {
		limit = 50
	}
	products, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
	case errors.Is(err, product.ErrTitleRequired), errors.Is(err, product.ErrInvalidPrice), errors.Is(err, product.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		getLogger(c, h.logger).Error("Product operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
	}
}

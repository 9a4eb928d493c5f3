package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// URLBuilder produces absolute URLs for redirects and vendor callbacks.
// With an empty site URL the request's own scheme and host are used.
type URLBuilder struct {
	siteURL string
}

func NewURLBuilder(siteURL string) URLBuilder {
	return URLBuilder{siteURL: strings.TrimRight(siteURL, "/")}
}

func (u URLBuilder) Absolute(c *gin.Context, path string) string {
	if u.siteURL != "" {
		return u.siteURL + path
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + c.Request.Host + path
}

func invoicePath(invoiceID string) string { return "/invoice/" + invoiceID + "/" }
func pesapalPayPath(invoiceID string) string { return "/payment/pesapal/pay/" + invoiceID + "/" }
func pesapalCallbackPath() string { return "/payment/pesapal/callback/" }

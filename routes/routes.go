package routes

import (
	"net/http"
	"time"

	"wetech/handlers"
	"wetech/middleware"
	"wetech/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options carries the cross-cutting settings routes need.
type Options struct {
	// AllowedOrigins for CORS; empty allows any origin without credentials.
	AllowedOrigins    []string
	MaxRequestsPerMin int
	TokenIssuer       *utils.TokenIssuer
	MetricsHandler    http.Handler
	Logger            *zap.Logger
}

// RegisterPublicRoutes registers the lead form and invoice view.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	public := r.Group("")
	public.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin, opts.Logger))
	{
		public.POST("/save-lead/", hb.SaveLeadHandler)
		public.GET("/invoice/:invoice_id/", hb.ViewInvoiceHandler)
	}
}

// RegisterPaymentRoutes registers checkout starts and vendor callbacks.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	pay := r.Group("/payment")
	{
		checkout := pay.Group("")
		checkout.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin, opts.Logger))
		checkout.GET("/pesapal/pay/:invoice_id/", hb.PesapalPayHandler)
		checkout.POST("/pesapal/pay/:invoice_id/", hb.PesapalPayHandler)
		checkout.POST("/azampay/pay/:invoice_id/", hb.AzamPayPayHandler)

		// Vendor callbacks are not rate limited.
		pay.GET("/pesapal/callback/", hb.PesapalCallbackHandler)
		pay.POST("/azampay/callback/", hb.AzamPayCallbackHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for invoice and product administration.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.POST("/login", middleware.RateLimitMiddleware(opts.MaxRequestsPerMin, opts.Logger), hb.AdminLoginHandler)

		protected := adminGroup.Group("")
		protected.Use(middleware.JWTAuthAdminMiddleware(opts.TokenIssuer, opts.Logger))
		protected.GET("/invoices", hb.ListInvoicesHandler)
		protected.POST("/invoices", hb.IssueInvoiceHandler)
		protected.PUT("/invoices/:invoice_id/status", hb.UpdateInvoiceStatusHandler)
		protected.GET("/products", hb.ListProductsHandler)
		protected.POST("/products", hb.CreateProductHandler)
		protected.PUT("/products/:product_id", hb.UpdateProductHandler)
	}
}

// RegisterHealthRoutes registers probes and the Prometheus endpoint.
func RegisterHealthRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.GET("/health/", hb.HealthHandler)
	r.GET("/health/ready/", hb.ReadyHandler)
	r.GET("/health/live/", hb.LiveHandler)
	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	RegisterPublicRoutes(r, hb, opts)
	RegisterPaymentRoutes(r, hb, opts)
	RegisterAdminRoutes(r, hb, opts)
	RegisterHealthRoutes(r, hb, opts)
}

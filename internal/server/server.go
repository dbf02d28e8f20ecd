package server

import (
	"context"
	"log/slog"
	"net/http"

	"donation-service/internal/config"
	"donation-service/internal/consent"
	"donation-service/internal/metrics"
	"donation-service/internal/mpesa"
	"donation-service/internal/search"
	"github.com/gin-gonic/gin"
)

type PaymentGateway interface {
	InitiateSTKPush(ctx context.Context, req mpesa.PaymentRequest) mpesa.InitiateResult
	QueryStatus(ctx context.Context, checkoutRequestID string) mpesa.StatusResult
}

type CallbackProcessor interface {
	Handle(ctx context.Context, payload []byte) mpesa.CallbackOutcome
}

type Deps struct {
	Gateway   PaymentGateway
	Callbacks CallbackProcessor
	Search    *search.Index
	Consent   *consent.Banner
	Logger    *slog.Logger

	Mpesa     config.Mpesa
	Site      config.Site
	RateLimit config.RateLimit
}

type handlers struct {
	Deps
}

func NewRouter(d Deps) *gin.Engine {
	h := &handlers{Deps: d}

	r := gin.New()
	r.Use(recovery(d.Logger))
	r.Use(requestLogger(d.Logger))
	r.Use(corsMiddleware(d.Site.CORSOrigins))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
	})

	r.GET("/liveness", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", func(c *gin.Context) {
		metrics.Write(c.Writer)
	})

	limiter := NewRateLimiter(d.RateLimit)

	api := r.Group("/api")
	{
		api.POST("/donations", limiter.Middleware(), h.initiatePayment)
		api.POST("/donations/status", h.checkPaymentStatus)
		api.POST("/mpesa/callback", h.mpesaCallback)

		api.GET("/search", h.search)
		api.GET("/consent", h.getConsent)
		api.POST("/consent", h.acceptConsent)
		api.GET("/breadcrumb", h.breadcrumb)
		api.GET("/carousel", h.carouselSettings)
	}

	return r
}

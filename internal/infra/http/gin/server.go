package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"kase/internal/infra/config"
	"kase/internal/infra/obs"
)

type CheckoutHTTP interface {
	Start(c *gin.Context)
	Get(c *gin.Context)
	UpdateDates(c *gin.Context)
	UpdateGuests(c *gin.Context)
	UpdateIdentity(c *gin.Context)
	Continue(c *gin.Context)
	Back(c *gin.Context)
	Submit(c *gin.Context)
	Reset(c *gin.Context)
	Close(c *gin.Context)
}

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
}

type Handlers struct {
	Checkout       CheckoutHTTP
	Listing        ListingHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Get)
	}
	if h.Checkout != nil {
		api.POST("/checkout", h.Checkout.Start)
		api.GET("/checkout/:id", h.Checkout.Get)
		api.PATCH("/checkout/:id/dates", h.Checkout.UpdateDates)
		api.PATCH("/checkout/:id/guests", h.Checkout.UpdateGuests)
		api.PATCH("/checkout/:id/identity", h.Checkout.UpdateIdentity)
		api.POST("/checkout/:id/continue", h.Checkout.Continue)
		api.POST("/checkout/:id/back", h.Checkout.Back)
		api.POST("/checkout/:id/submit", h.Checkout.Submit)
		api.POST("/checkout/:id/reset", h.Checkout.Reset)
		api.DELETE("/checkout/:id", h.Checkout.Close)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

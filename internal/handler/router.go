package handler

import (
	"log/slog"
	"net/http"
	"time"

	"toolhub/internal/middleware"
	"toolhub/internal/service"
	"toolhub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps is everything NewRouter wires into the engine.
type RouterDeps struct {
	AuthService    service.AuthService
	CatalogService service.CatalogService
	JWTUtil        *utils.JWTUtil
	Logger         *slog.Logger
	DB             Pinger

	// Limiter may be nil, which disables rate limiting.
	Limiter     middleware.RateLimiter
	SignupLimit int
	LoginLimit  int

	// Metrics and Gatherer are optional; /metrics is only mounted with a Gatherer.
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer

	CORSAllowedOrigin string
}

// NewRouter builds the HTTP engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(deps.CORSAllowedOrigin))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	router.NoMethod(func(c *gin.Context) {
		respondError(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})
	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, msgNotFound)
	})

	authHandler := NewAuthHandler(deps.AuthService, log)
	catalogHandler := NewCatalogHandler(deps.CatalogService, log)

	authHandler.RegisterRoutes(router,
		middleware.RateLimit(deps.Limiter, "signup", deps.SignupLimit, time.Minute, deps.Metrics),
		middleware.RateLimit(deps.Limiter, "login", deps.LoginLimit, time.Minute, deps.Metrics),
	)
	catalogHandler.RegisterRoutes(router, middleware.JWTAuthMiddleware(deps.JWTUtil, log))

	router.GET("/health", Health(deps.DB))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

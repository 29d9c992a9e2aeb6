package handler

import (
	"log/slog"
	"net/http"

	"toolhub/internal/middleware"
	"toolhub/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgDashboardFailed = "Server error fetching dashboard data."
	msgToolsFailed     = "Server error fetching tools list."
)

// CatalogHandler serves the tool listings
type CatalogHandler struct {
	service service.CatalogService
	log     *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(s service.CatalogService, log *slog.Logger) *CatalogHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CatalogHandler{service: s, log: log}
}

// Dashboard returns the caller identity and every listed tool.
// The identity comes from the verified token only.
func (h *CatalogHandler) Dashboard(c *gin.Context) {
	user, ok := middleware.AuthUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, middleware.UnauthorizedMessage)
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), user)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "dashboard query failed", "error", err, "email", user.Email)
		respondError(c, http.StatusInternalServerError, msgDashboardFailed)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *CatalogHandler) PublicTools(c *gin.Context) {
	groups, err := h.service.PublicCatalog(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "public catalog query failed", "error", err)
		respondError(c, http.StatusInternalServerError, msgToolsFailed)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// RegisterRoutes registers catalog routes; authMW guards the dashboard.
func (h *CatalogHandler) RegisterRoutes(r gin.IRoutes, authMW gin.HandlerFunc) {
	r.GET("/user/dashboard", authMW, h.Dashboard)
	r.GET("/public-tools", h.PublicTools)
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"catalog-picker/internal/models"
	"catalog-picker/internal/service"
	"catalog-picker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	sessions *service.Manager
	checks   map[string]Pinger
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *service.Manager, checks map[string]Pinger) *Handler {
	return &Handler{
		sessions: sessions,
		checks:   checks,
		logger:   util.Named("api"),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(h.requestLogger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/distributors", h.listDistributors)
		v1.POST("/sessions", h.createSession)

		s := v1.Group("/sessions/:id", h.loadSession)
		{
			s.GET("", h.getSession)
			s.DELETE("", h.closeSession)

			s.POST("/host/started", h.hostStarted)
			s.POST("/host/ready", h.hostReady)

			s.GET("/manufacturers", h.manufacturerSuggestions)
			s.POST("/manufacturers/search", h.searchManufacturers)
			s.PUT("/manufacturer", h.selectManufacturer)
			s.PUT("/filters/:dimension", h.setFilter)
			s.POST("/keyword", h.searchKeyword)
			s.GET("/options/:dimension", h.dimensionOptions)

			s.GET("/products", h.loadPage)
			s.POST("/products/next", h.nextPage)
			s.POST("/products/previous", h.previousPage)

			s.POST("/selection", h.toggleSelection)
			s.POST("/selection/all", h.toggleAll)

			s.GET("/queue", h.getQueue)
			s.POST("/queue", h.commitSelection)
			s.DELETE("/queue", h.clearQueue)
			s.DELETE("/queue/:identity", h.removeFromQueue)
			s.PUT("/queue/order", h.reorderQueue)
			s.PUT("/queue/groups", h.reorderGroups)
			s.PUT("/queue/grouping", h.setGrouping)

			s.GET("/details/:identity", h.inspectProduct)
			s.DELETE("/details", h.closeDetails)

			s.PUT("/distributor", h.selectDistributor)
			s.POST("/submit", h.submit)
			s.POST("/cancel", h.cancel)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"details": failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"sessions": h.sessions.Len(),
		"time":     time.Now().Unix(),
	})
}

// respondError maps domain errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case models.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrSessionNotFound):
		status = http.StatusNotFound
	case models.IsInvariant(err):
		status = http.StatusConflict
	case models.IsTransport(err):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		h.logger.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vqdung71104/student-management-sub000/internal/service"
)

type dbPinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// MetricsHandler serves the operational endpoints: liveness, readiness and
// the Prometheus scrape target.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      dbPinger
	redis   redisPinger
}

// NewMetricsHandler constructs the handler. Either pinger may be nil, in
// which case that dependency is skipped by the readiness probe.
func NewMetricsHandler(metrics *service.MetricsService, db dbPinger, redis redisPinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db, redis: redis}
}

// Prometheus serves the metrics scrape endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health is the liveness probe: the process is up.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether Postgres and Redis are reachable.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

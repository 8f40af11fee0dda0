package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"paydash/pkg/logger"
)

// SystemHandler serves liveness and readiness probes.
type SystemHandler struct {
	db          *sqlx.DB
	redisClient *redis.Client
	logger      logger.Logger
	startTime   time.Time
}

func NewSystemHandler(db *sqlx.DB, redisClient *redis.Client, log logger.Logger) *SystemHandler {
	return &SystemHandler{
		db:          db,
		redisClient: redisClient,
		logger:      log,
		startTime:   time.Now(),
	}
}

// Health serves GET /health. It reports the process is up without touching
// dependencies.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready serves GET /ready. It pings Postgres and Redis and reports 503 when
// either is unreachable.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"postgres": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	} else {
		checks["redis"] = "disabled"
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unavailable"
		h.logger.Warn("readiness check failed", map[string]interface{}{
			"checks": checks,
		})
	}

	respondJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}

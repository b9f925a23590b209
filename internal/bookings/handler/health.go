package handler

import (
	"context"
	"net/http"
	"time"

	httputil "guesthouse/pkg/http"
	kafka_middleware "guesthouse/pkg/kafka/middleware"
	"guesthouse/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const readinessTimeout = 2 * time.Second

type HealthResponse struct {
	Status   string                            `json:"status"`
	Database string                            `json:"database,omitempty"`
	Events   *kafka_middleware.MetricsSnapshot `json:"events,omitempty"`
}

// Pinger is satisfied by *client.MongoClient.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EventStats is implemented by publishers that count deliveries.
type EventStats interface {
	Stats() kafka_middleware.MetricsSnapshot
}

type HealthHandler struct {
	db     Pinger
	events EventStats
	log    *logger.Logger
}

// NewHealthHandler builds the liveness and readiness endpoints. events may be nil.
func NewHealthHandler(db Pinger, events EventStats, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		events: events,
		log:    log,
	}
}

func (h *HealthHandler) eventStats() *kafka_middleware.MetricsSnapshot {
	if h.events == nil {
		return nil
	}
	stats := h.events.Stats()
	return &stats
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Events: h.eventStats(),
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unavailable",
			Database: "error",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	resp := HealthResponse{
		Status:   "ready",
		Database: "ok",
		Events:   h.eventStats(),
	}
	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

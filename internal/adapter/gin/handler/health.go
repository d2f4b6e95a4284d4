package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"menu-service/internal/adapter/db/provider"
)

// DatabaseStatus reports pool readiness.
type DatabaseStatus interface {
	State() provider.State
	Target() string
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Target   string `json:"target,omitempty"`
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	db DatabaseStatus
}

func NewHealthHandler(db DatabaseStatus) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health returns 200 when the pool is ready and answers a ping, 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: h.db.State().String(),
		Target:   h.db.Target(),
	}

	if h.db.State() != provider.StateReady {
		resp.Status = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	if err := h.db.Ping(c.Request.Context()); err != nil {
		resp.Status = "unavailable"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

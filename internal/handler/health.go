package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/db"
	"github.com/meddispatch/backend/internal/model"
)

type HealthHandler struct {
	pg *db.Postgres
}

func NewHealthHandler(pg *db.Postgres) *HealthHandler {
	return &HealthHandler{pg: pg}
}

// Healthz reports liveness plus database reachability.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pg.Pool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.StatusResponse{Status: "degraded"})
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "ok"})
}

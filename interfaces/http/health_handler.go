package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type HealthHandler struct{}

func NewHealthHandler() IHealthHandler {
	return &HealthHandler{}
}

// Healthz returns OK for health checks. The best-effort cache is not
// checked here.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

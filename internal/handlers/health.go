package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/store"
)

type HealthHandler struct {
	Store *store.Store
}

func NewHealthHandler(s *store.Store) *HealthHandler {
	return &HealthHandler{Store: s}
}

func (h *HealthHandler) Check(ctx *gin.Context) {
	if err := h.Store.Ping(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unavailable",
			"message":   "Database unreachable",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "TaskHive is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func Home(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message": "TaskHive API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"auth":          "/auth/register, /auth/login, /auth/refresh, /auth/me",
			"projects":      "/projects (GET, POST), /projects/:id (GET, PATCH, DELETE)",
			"members":       "/projects/:id/members (GET, POST, PATCH, DELETE)",
			"tasks":         "/projects/:id/tasks (GET, POST), /tasks/:id (GET, PATCH, DELETE), /tasks/my",
			"notifications": "/api/notifications",
		},
	})
}

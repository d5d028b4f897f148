// Package v1 provides the HTTP handlers for the agent gateway.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agentgate/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Conversation API
	e.POST("/chat/:session_id", h.SendMessage)
	e.GET("/chat/:session_id/history", h.GetHistory)
	e.DELETE("/chat/:session_id", h.DeleteSession)

	// Tool registry API
	e.POST("/tools", h.RegisterTool)
	e.GET("/tools", h.ListTools)
	e.GET("/tools/:tool_id", h.GetTool)
	e.POST("/tools/:tool_id/activate", h.ActivateTool)
	e.DELETE("/tools/:tool_id", h.RemoveTool)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

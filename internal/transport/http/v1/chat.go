package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agentgate/internal/domain"
)

// SendMessage runs one conversation turn and returns the assistant reply.
// POST /chat/:session_id
func (h *Handler) SendMessage(c echo.Context) error {
	sessionID := c.Param("session_id")

	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	reply, err := h.service.SendMessage(ctx, sessionID, req.Text)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, reply)
}

// GetHistory retrieves the session's message history in insertion order.
// GET /chat/:session_id/history
func (h *Handler) GetHistory(c echo.Context) error {
	sessionID := c.Param("session_id")

	ctx := c.Request().Context()

	messages, err := h.service.GetHistory(ctx, sessionID)
	if err != nil {
		return jsonError(c, err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	return c.JSON(http.StatusOK, messages)
}

// DeleteSession removes the session's history. Deleting an unseen session
// succeeds.
// DELETE /chat/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("session_id")

	ctx := c.Request().Context()

	if err := h.service.DeleteSession(ctx, sessionID); err != nil {
		return jsonError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

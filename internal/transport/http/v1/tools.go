package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agentgate/internal/domain"
)

// RegisterTool fetches an OpenAPI descriptor and registers it as a tool.
// POST /tools
func (h *Handler) RegisterTool(c echo.Context) error {
	var req domain.RegisterToolRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SpecLocation == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "spec_location is required"})
	}

	ctx := c.Request().Context()

	tool, err := h.service.RegisterTool(ctx, req.SpecLocation, req.Name, req.Description)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusCreated, tool)
}

// ListTools returns every registered tool in registration order.
// GET /tools
func (h *Handler) ListTools(c echo.Context) error {
	ctx := c.Request().Context()

	tools, err := h.service.ListTools(ctx)
	if err != nil {
		return jsonError(c, err)
	}
	if tools == nil {
		tools = []domain.Tool{}
	}

	return c.JSON(http.StatusOK, tools)
}

// GetTool retrieves a single tool by id.
// GET /tools/:tool_id
func (h *Handler) GetTool(c echo.Context) error {
	toolID := c.Param("tool_id")

	ctx := c.Request().Context()

	tool, err := h.service.GetTool(ctx, toolID)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, tool)
}

// ActivateTool exposes a registered tool to subsequent conversation turns.
// POST /tools/:tool_id/activate
func (h *Handler) ActivateTool(c echo.Context) error {
	toolID := c.Param("tool_id")

	ctx := c.Request().Context()

	tool, err := h.service.ActivateTool(ctx, toolID)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, tool)
}

// RemoveTool deletes a tool in any state. Removing an absent id succeeds.
// DELETE /tools/:tool_id
func (h *Handler) RemoveTool(c echo.Context) error {
	toolID := c.Param("tool_id")

	ctx := c.Request().Context()

	if err := h.service.RemoveTool(ctx, toolID); err != nil {
		return jsonError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"agentgate/internal/domain"
	"agentgate/internal/provider"
)

// Tool names are exposed to LLM function calling, which only accepts
// letters, numbers, and underscores.
var toolNameRegex = regexp.MustCompile(`^[0-9A-Za-z_]+$`)

var nameSanitizeRegex = regexp.MustCompile(`[^0-9A-Za-z_]+`)

// defaultToolName derives a valid tool name from the descriptor title.
func defaultToolName(title string) string {
	name := strings.Trim(nameSanitizeRegex.ReplaceAllString(title, "_"), "_")
	if name == "" {
		return "tool"
	}
	return name
}

// RegisterTool fetches and parses the OpenAPI descriptor at specLocation and
// stores the resulting tool in state registered. Name and description default
// to the descriptor's info block when empty.
func (s *Service) RegisterTool(ctx context.Context, specLocation, name, description string) (*domain.Tool, error) {
	doc, err := s.specs.Fetch(ctx, specLocation)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = defaultToolName(doc.Title)
	}
	if !toolNameRegex.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidToolName, name)
	}
	if description == "" {
		description = doc.Description
	}

	tool := &domain.Tool{
		ToolID:       "tool_" + uuid.NewString(),
		Name:         name,
		Description:  description,
		SpecLocation: specLocation,
		BaseURL:      doc.BaseURL,
		State:        domain.ToolStateRegistered,
		Operations:   doc.Operations,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateTool(ctx, tool); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	return tool, nil
}

// ListTools returns all registered tools in registration order.
func (s *Service) ListTools(ctx context.Context) ([]domain.Tool, error) {
	tools, err := s.store.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return tools, nil
}

// GetTool retrieves a tool by id.
func (s *Service) GetTool(ctx context.Context, toolID string) (*domain.Tool, error) {
	tool, err := s.store.GetTool(ctx, toolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	if tool == nil {
		return nil, domain.ErrToolNotFound
	}
	return tool, nil
}

// ActivateTool transitions a tool from registered to active, exposing it to
// subsequent conversation turns. Idempotent when already active; there is no
// transition back to registered.
func (s *Service) ActivateTool(ctx context.Context, toolID string) (*domain.Tool, error) {
	tool, err := s.GetTool(ctx, toolID)
	if err != nil {
		return nil, err
	}
	if tool.State == domain.ToolStateActive {
		return tool, nil
	}

	if err := s.store.UpdateToolState(ctx, toolID, domain.ToolStateActive); err != nil {
		if errors.Is(err, domain.ErrToolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	tool.State = domain.ToolStateActive
	return tool, nil
}

// RemoveTool deletes a tool regardless of state. Removing an absent id is
// not an error.
func (s *Service) RemoveTool(ctx context.Context, toolID string) error {
	if err := s.store.DeleteTool(ctx, toolID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return nil
}

// boundOperation ties an exposed function name back to its tool and
// operation for execution.
type boundOperation struct {
	tool domain.Tool
	op   domain.Operation
}

// activeToolDefinitions re-reads the registry and builds the function
// definitions for every operation of every active tool. Function names are
// namespaced as <tool name>_<operation id>.
func (s *Service) activeToolDefinitions(ctx context.Context) ([]provider.ToolDefinition, map[string]boundOperation, error) {
	tools, err := s.store.ListTools(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	definitions := []provider.ToolDefinition{}
	bound := map[string]boundOperation{}
	for _, tool := range tools {
		if tool.State != domain.ToolStateActive {
			continue
		}
		for _, op := range tool.Operations {
			name := tool.Name + "_" + op.OperationID
			var parameters map[string]any
			if len(op.InputSchema) > 0 {
				if err := json.Unmarshal(op.InputSchema, &parameters); err != nil {
					parameters = nil
				}
			}
			definitions = append(definitions, provider.ToolDefinition{
				Name:        name,
				Description: op.Description,
				Parameters:  parameters,
			})
			bound[name] = boundOperation{tool: tool, op: op}
		}
	}

	return definitions, bound, nil
}

// toolExecutor runs a model-requested tool call: policy check first, then
// the HTTP invocation described by the operation.
func (s *Service) toolExecutor(bound map[string]boundOperation) provider.Executor {
	return func(ctx context.Context, name string, args map[string]any) (string, error) {
		b, ok := bound[name]
		if !ok {
			return "", fmt.Errorf("unknown tool function %q", name)
		}

		if s.policy != nil {
			decision, reason, err := s.policy.Evaluate(ctx, map[string]any{
				"tool":      b.tool.Name,
				"tool_id":   b.tool.ToolID,
				"operation": b.op.OperationID,
				"method":    b.op.Method,
				"path":      b.op.Path,
				"args":      args,
			})
			if err != nil {
				return "", err
			}
			if decision == "block" {
				if reason == "" {
					reason = "blocked by policy"
				}
				return "", fmt.Errorf("operation %s blocked: %s", b.op.OperationID, reason)
			}
		}

		return s.specs.Invoke(ctx, b.tool.BaseURL, b.op, args)
	}
}

package provider

import (
	"context"
	"fmt"

	"agentgate/internal/config"
	"agentgate/internal/domain"
)

// Mock is a deterministic Provider for tests and offline runs.
type Mock struct {
	// CompleteFunc overrides the default behavior when set.
	CompleteFunc func(ctx context.Context, history []domain.Message, tools []ToolDefinition, exec Executor) (string, error)
}

var _ Provider = (*Mock)(nil)

// NewMock creates a mock provider with the default echo behavior.
func NewMock() *Mock {
	return &Mock{}
}

// Complete echoes the last user message, noting how many tools were visible.
func (m *Mock) Complete(ctx context.Context, history []domain.Message, tools []ToolDefinition, exec Executor) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, history, tools, exec)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	last := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleUser {
			last = history[i].Content
			break
		}
	}
	return fmt.Sprintf("mock reply to %q (%d tools available)", last, len(tools)), nil
}

func init() {
	Register("mock", func(ctx context.Context, cfg *config.Config) (Provider, error) {
		return NewMock(), nil
	})
}

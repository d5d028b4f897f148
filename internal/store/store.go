// Package store defines the persistence interface and implementations.
package store

import (
	"context"

	"agentgate/internal/domain"
)

// Store is the persistence contract for the conversation store and the tool
// registry. Backends are interchangeable and selected at process start; the
// orchestration layer never caches results across calls.
type Store interface {
	// Conversation store: key = session id, value = ordered message history.

	// GetMessages returns the session's history in insertion order, or an
	// empty slice for an unseen session id.
	GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
	// ReplaceMessages atomically replaces the session's full history,
	// creating the session if it does not exist.
	ReplaceMessages(ctx context.Context, sessionID string, messages []domain.Message) error
	// DeleteSession removes the session and all its messages. Deleting a
	// non-existent session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error

	// Tool registry: key = server-generated tool id.

	CreateTool(ctx context.Context, tool *domain.Tool) error
	// GetTool returns nil without error when the id is absent.
	GetTool(ctx context.Context, toolID string) (*domain.Tool, error)
	// ListTools returns all tools in registration order.
	ListTools(ctx context.Context) ([]domain.Tool, error)
	UpdateToolState(ctx context.Context, toolID string, state domain.ToolState) error
	// DeleteTool is idempotent; removing an absent id is not an error.
	DeleteTool(ctx context.Context, toolID string) error

	// Lifecycle
	Close() error
}

package store

import (
	"context"
	"sync"

	"agentgate/internal/domain"
)

// MemoryStore implements Store with in-process maps. Useful for tests and for
// running without durable storage.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string][]domain.Message
	tools     map[string]*domain.Tool
	toolOrder []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]domain.Message),
		tools:    make(map[string]*domain.Tool),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// GetMessages returns a copy of the session's history.
func (s *MemoryStore) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]domain.Message, len(s.sessions[sessionID]))
	copy(messages, s.sessions[sessionID])
	return messages, nil
}

// ReplaceMessages swaps in the full new history.
func (s *MemoryStore) ReplaceMessages(ctx context.Context, sessionID string, messages []domain.Message) error {
	cp := make([]domain.Message, len(messages))
	copy(cp, messages)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = cp
	return nil
}

// DeleteSession removes the session. Idempotent.
func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// CreateTool inserts a new tool.
func (s *MemoryStore) CreateTool(ctx context.Context, tool *domain.Tool) error {
	cp := *tool
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[tool.ToolID] = &cp
	s.toolOrder = append(s.toolOrder, tool.ToolID)
	return nil
}

// GetTool retrieves a tool by id, or nil when absent.
func (s *MemoryStore) GetTool(ctx context.Context, toolID string) (*domain.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tool, ok := s.tools[toolID]
	if !ok {
		return nil, nil
	}
	cp := *tool
	return &cp, nil
}

// ListTools returns all tools in registration order.
func (s *MemoryStore) ListTools(ctx context.Context) ([]domain.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tools := make([]domain.Tool, 0, len(s.toolOrder))
	for _, id := range s.toolOrder {
		if tool, ok := s.tools[id]; ok {
			tools = append(tools, *tool)
		}
	}
	return tools, nil
}

// UpdateToolState transitions a tool's activation state.
func (s *MemoryStore) UpdateToolState(ctx context.Context, toolID string, state domain.ToolState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tool, ok := s.tools[toolID]
	if !ok {
		return domain.ErrToolNotFound
	}
	tool.State = state
	return nil
}

// DeleteTool removes a tool. Idempotent.
func (s *MemoryStore) DeleteTool(ctx context.Context, toolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tools[toolID]; !ok {
		return nil
	}
	delete(s.tools, toolID)
	for i, id := range s.toolOrder {
		if id == toolID {
			s.toolOrder = append(s.toolOrder[:i], s.toolOrder[i+1:]...)
			break
		}
	}
	return nil
}

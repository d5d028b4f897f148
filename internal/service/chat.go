package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"agentgate/internal/domain"
)

// SendMessage runs one conversation turn: append the user message, invoke
// the completion provider with the current active tool set, append the reply,
// and persist the updated history atomically.
//
// Nothing is persisted when the provider fails, so a retry of the whole call
// is idempotent from the caller's perspective. The read-append-append-write
// sequence is serialized per session id.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (*domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	unlock := s.sessions.lock(sessionID)
	defer unlock()

	history, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	userMessage := domain.Message{
		MessageID: uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}
	turn := append(history, userMessage)

	definitions, bound, err := s.activeToolDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := s.provider.Complete(ctx, turn, definitions, s.toolExecutor(bound))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	assistantMessage := domain.Message{
		MessageID: uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.ReplaceMessages(ctx, sessionID, append(turn, assistantMessage)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	return &assistantMessage, nil
}

// GetHistory returns the session's history in insertion order. An unseen
// session id yields an empty slice, not an error.
func (s *Service) GetHistory(ctx context.Context, sessionID string) ([]domain.Message, error) {
	messages, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return messages, nil
}

// DeleteSession removes the session's history irrecoverably. Idempotent.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := s.sessions.lock(sessionID)
	defer unlock()

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return nil
}

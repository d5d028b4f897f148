package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"agentgate/internal/domain"
)

func newTestStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func testMessage(sessionID, id string, role domain.Role, content string) domain.Message {
	return domain.Message{
		MessageID: id,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func TestStoreMessages(t *testing.T) {
	ctx := context.Background()
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			messages, err := store.GetMessages(ctx, "unseen")
			if err != nil {
				t.Fatalf("GetMessages failed: %v", err)
			}
			if len(messages) != 0 {
				t.Fatalf("expected no messages for unseen session, got %d", len(messages))
			}

			turn := []domain.Message{
				testMessage("s1", "m1", domain.RoleUser, "hello"),
				testMessage("s1", "m2", domain.RoleAssistant, "hi there"),
			}
			if err := store.ReplaceMessages(ctx, "s1", turn); err != nil {
				t.Fatalf("ReplaceMessages failed: %v", err)
			}

			messages, err = store.GetMessages(ctx, "s1")
			if err != nil {
				t.Fatalf("GetMessages failed: %v", err)
			}
			if len(messages) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(messages))
			}
			if messages[0].Content != "hello" || messages[1].Content != "hi there" {
				t.Fatalf("messages out of order: %+v", messages)
			}

			// Replace is a full overwrite, not an append.
			turn = append(turn,
				testMessage("s1", "m3", domain.RoleUser, "how are you"),
				testMessage("s1", "m4", domain.RoleAssistant, "fine"),
			)
			if err := store.ReplaceMessages(ctx, "s1", turn); err != nil {
				t.Fatalf("ReplaceMessages failed: %v", err)
			}
			messages, err = store.GetMessages(ctx, "s1")
			if err != nil {
				t.Fatalf("GetMessages failed: %v", err)
			}
			if len(messages) != 4 {
				t.Fatalf("expected 4 messages, got %d", len(messages))
			}
			if messages[3].Content != "fine" {
				t.Fatalf("unexpected last message: %+v", messages[3])
			}
		})
	}
}

func TestStoreSessionIsolation(t *testing.T) {
	ctx := context.Background()
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.ReplaceMessages(ctx, "a", []domain.Message{
				testMessage("a", "a1", domain.RoleUser, "session a"),
			}); err != nil {
				t.Fatalf("ReplaceMessages failed: %v", err)
			}
			if err := store.ReplaceMessages(ctx, "b", []domain.Message{
				testMessage("b", "b1", domain.RoleUser, "session b"),
				testMessage("b", "b2", domain.RoleAssistant, "reply b"),
			}); err != nil {
				t.Fatalf("ReplaceMessages failed: %v", err)
			}

			a, _ := store.GetMessages(ctx, "a")
			b, _ := store.GetMessages(ctx, "b")
			if len(a) != 1 || len(b) != 2 {
				t.Fatalf("sessions bled into each other: a=%d b=%d", len(a), len(b))
			}
		})
	}
}

func TestStoreDeleteSession(t *testing.T) {
	ctx := context.Background()
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.ReplaceMessages(ctx, "s1", []domain.Message{
				testMessage("s1", "m1", domain.RoleUser, "hello"),
			}); err != nil {
				t.Fatalf("ReplaceMessages failed: %v", err)
			}

			if err := store.DeleteSession(ctx, "s1"); err != nil {
				t.Fatalf("DeleteSession failed: %v", err)
			}
			messages, err := store.GetMessages(ctx, "s1")
			if err != nil {
				t.Fatalf("GetMessages failed: %v", err)
			}
			if len(messages) != 0 {
				t.Fatalf("expected empty history after delete, got %d", len(messages))
			}

			// Deleting again, or deleting an unseen session, is not an error.
			if err := store.DeleteSession(ctx, "s1"); err != nil {
				t.Fatalf("second DeleteSession failed: %v", err)
			}
			if err := store.DeleteSession(ctx, "never-seen"); err != nil {
				t.Fatalf("DeleteSession on unseen session failed: %v", err)
			}
		})
	}
}

func testTool(id, name string) *domain.Tool {
	return &domain.Tool{
		ToolID:       id,
		Name:         name,
		Description:  "test tool",
		SpecLocation: "http://example.com/openapi.json",
		BaseURL:      "http://example.com",
		State:        domain.ToolStateRegistered,
		Operations: []domain.Operation{
			{
				OperationID: "get_status",
				Method:      "GET",
				Path:        "/status",
				Summary:     "Get status",
				InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestStoreTools(t *testing.T) {
	ctx := context.Background()
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.CreateTool(ctx, testTool("tool_1", "alpha")); err != nil {
				t.Fatalf("CreateTool failed: %v", err)
			}
			if err := store.CreateTool(ctx, testTool("tool_2", "beta")); err != nil {
				t.Fatalf("CreateTool failed: %v", err)
			}

			tool, err := store.GetTool(ctx, "tool_1")
			if err != nil {
				t.Fatalf("GetTool failed: %v", err)
			}
			if tool == nil || tool.Name != "alpha" {
				t.Fatalf("unexpected tool: %+v", tool)
			}
			if tool.State != domain.ToolStateRegistered {
				t.Fatalf("expected registered state, got %s", tool.State)
			}
			if len(tool.Operations) != 1 || tool.Operations[0].OperationID != "get_status" {
				t.Fatalf("operations not round-tripped: %+v", tool.Operations)
			}

			missing, err := store.GetTool(ctx, "tool_nope")
			if err != nil {
				t.Fatalf("GetTool failed: %v", err)
			}
			if missing != nil {
				t.Fatalf("expected nil for missing tool, got %+v", missing)
			}

			tools, err := store.ListTools(ctx)
			if err != nil {
				t.Fatalf("ListTools failed: %v", err)
			}
			if len(tools) != 2 {
				t.Fatalf("expected 2 tools, got %d", len(tools))
			}
			if tools[0].Name != "alpha" || tools[1].Name != "beta" {
				t.Fatalf("tools not in registration order: %+v", tools)
			}
		})
	}
}

func TestStoreUpdateToolState(t *testing.T) {
	ctx := context.Background()
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.CreateTool(ctx, testTool("tool_1", "alpha")); err != nil {
				t.Fatalf("CreateTool failed: %v", err)
			}

			if err := store.UpdateToolState(ctx, "tool_1", domain.ToolStateActive); err != nil {
				t.Fatalf("UpdateToolState failed: %v", err)
			}
			tool, _ := store.GetTool(ctx, "tool_1")
			if tool.State != domain.ToolStateActive {
				t.Fatalf("expected active state, got %s", tool.State)
			}

			err := store.UpdateToolState(ctx, "tool_nope", domain.ToolStateActive)
			if err != domain.ErrToolNotFound {
				t.Fatalf("expected ErrToolNotFound, got %v", err)
			}
		})
	}
}

func TestStoreDeleteTool(t *testing.T) {
	ctx := context.Background()
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.CreateTool(ctx, testTool("tool_1", "alpha")); err != nil {
				t.Fatalf("CreateTool failed: %v", err)
			}

			if err := store.DeleteTool(ctx, "tool_1"); err != nil {
				t.Fatalf("DeleteTool failed: %v", err)
			}
			tool, err := store.GetTool(ctx, "tool_1")
			if err != nil {
				t.Fatalf("GetTool failed: %v", err)
			}
			if tool != nil {
				t.Fatalf("tool survived delete: %+v", tool)
			}

			// Idempotent.
			if err := store.DeleteTool(ctx, "tool_1"); err != nil {
				t.Fatalf("second DeleteTool failed: %v", err)
			}
		})
	}
}

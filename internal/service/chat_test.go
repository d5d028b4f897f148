package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentgate/internal/config"
	"agentgate/internal/domain"
	"agentgate/internal/openapi"
	"agentgate/internal/policy"
	"agentgate/internal/provider"
	"agentgate/internal/store"
)

func newTestService(t *testing.T, mock *provider.Mock) *Service {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)
	cfg := &config.Config{
		Model:         "mock-model",
		Instructions:  "You are a helpful AI assistant.",
		HTTPTimeoutMs: 5000,
	}
	return New(store.NewMemoryStore(), mock, openapi.NewClient(cfg.HTTPTimeout()), engine, cfg)
}

func TestSendMessageAppendsTurn(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, provider.NewMock())

	reply, err := svc.SendMessage(ctx, "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Contains(t, reply.Content, "hello")

	history, err := svc.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
}

func TestSendMessageHistoryGrowsByTwo(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, provider.NewMock())

	for i := 0; i < 5; i++ {
		_, err := svc.SendMessage(ctx, "s1", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	history, err := svc.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 10)
	for i, m := range history {
		if i%2 == 0 {
			assert.Equal(t, domain.RoleUser, m.Role)
		} else {
			assert.Equal(t, domain.RoleAssistant, m.Role)
		}
	}
}

func TestSendMessageEmptyText(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, provider.NewMock())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.SendMessage(ctx, "s1", text)
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	}

	history, err := svc.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSendMessageProviderFailurePersistsNothing(t *testing.T) {
	ctx := context.Background()
	mock := provider.NewMock()
	failing := true
	mock.CompleteFunc = func(ctx context.Context, history []domain.Message, tools []provider.ToolDefinition, exec provider.Executor) (string, error) {
		if failing {
			return "", fmt.Errorf("model overloaded")
		}
		return "recovered", nil
	}
	svc := newTestService(t, mock)

	_, err := svc.SendMessage(ctx, "s1", "hello")
	assert.ErrorIs(t, err, domain.ErrProvider)

	history, err := svc.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// The failed turn left no trace, so the retry is a clean first turn.
	failing = false
	reply, err := svc.SendMessage(ctx, "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply.Content)

	history, err = svc.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSendMessageSerializedPerSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, provider.NewMock())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SendMessage(ctx, "s1", fmt.Sprintf("concurrent %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := svc.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	// Turns never interleave: user and assistant messages strictly alternate.
	for i, m := range history {
		if i%2 == 0 {
			assert.Equal(t, domain.RoleUser, m.Role)
		} else {
			assert.Equal(t, domain.RoleAssistant, m.Role)
		}
	}
}

func TestGetHistoryUnseenSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, provider.NewMock())

	history, err := svc.GetHistory(ctx, "never-seen")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, provider.NewMock())

	_, err := svc.SendMessage(ctx, "s1", "hello")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, "s1"))
	history, err := svc.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// Idempotent, including for sessions that never existed.
	require.NoError(t, svc.DeleteSession(ctx, "s1"))
	require.NoError(t, svc.DeleteSession(ctx, "never-seen"))
}

func TestSendMessageHistoryOrderStable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, provider.NewMock())

	_, err := svc.SendMessage(ctx, "s1", "first")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.SendMessage(ctx, "s1", "second")
	require.NoError(t, err)

	history, err := svc.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[2].Content)
	assert.False(t, history[0].CreatedAt.After(history[2].CreatedAt))
}

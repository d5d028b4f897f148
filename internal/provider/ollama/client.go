// Package ollama implements the completion provider on a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"github.com/ollama/ollama/api"

	"agentgate/internal/config"
	"agentgate/internal/domain"
	"agentgate/internal/provider"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client wraps the Ollama chat API.
type Client struct {
	client       *api.Client
	model        string
	instructions string
}

var _ provider.Provider = (*Client)(nil)

// NewClient creates an Ollama-backed provider. With an empty baseURL the
// client falls back to the OLLAMA_HOST environment convention.
func NewClient(baseURL, model, instructions string) (*Client, error) {
	var client *api.Client
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		client = api.NewClient(u, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		client:       client,
		model:        model,
		instructions: instructions,
	}, nil
}

// Complete runs the chat loop, executing requested tool calls until the
// model returns a plain assistant message.
func (c *Client) Complete(ctx context.Context, history []domain.Message, tools []provider.ToolDefinition, exec provider.Executor) (string, error) {
	msgs := make([]api.Message, 0, len(history)+1)
	if c.instructions != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: c.instructions})
	}
	for _, m := range history {
		msgs = append(msgs, api.Message{Role: string(m.Role), Content: m.Content})
	}

	apiTools, err := convertTools(tools)
	if err != nil {
		return "", err
	}

	stream := false
	for round := 0; round < provider.MaxToolRounds; round++ {
		req := &api.ChatRequest{
			Model:    c.model,
			Messages: msgs,
			Stream:   &stream,
			Tools:    apiTools,
		}

		var final api.ChatResponse
		if err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			final = resp
			return nil
		}); err != nil {
			return "", err
		}

		calls := final.Message.ToolCalls
		if len(calls) == 0 || exec == nil {
			return final.Message.Content, nil
		}

		msgs = append(msgs, final.Message)
		for _, call := range calls {
			var args map[string]any
			if data, err := json.Marshal(call.Function.Arguments); err == nil {
				json.Unmarshal(data, &args)
			}
			out, err := exec(ctx, call.Function.Name, args)
			if err != nil {
				out = "tool error: " + err.Error()
			}
			msgs = append(msgs, api.Message{Role: "tool", Content: out})
		}
	}

	return "", fmt.Errorf("tool call limit reached after %d rounds", provider.MaxToolRounds)
}

// convertTools round-trips definitions through JSON to sidestep the SDK's
// nested parameter struct types.
func convertTools(tools []provider.ToolDefinition) (api.Tools, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	raw := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		raw = append(raw, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var apiTools api.Tools
	if err := json.Unmarshal(data, &apiTools); err != nil {
		return nil, err
	}
	return apiTools, nil
}

func init() {
	provider.Register("ollama", func(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
		return NewClient(cfg.BaseURL, cfg.Model, cfg.Instructions)
	})
}

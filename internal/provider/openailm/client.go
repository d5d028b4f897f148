// Package openailm implements the completion provider on the official
// OpenAI Go SDK.
package openailm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"agentgate/internal/config"
	"agentgate/internal/domain"
	"agentgate/internal/provider"
)

// Client wraps the OpenAI chat completions API.
type Client struct {
	client       *openai.Client
	model        string
	instructions string
}

var _ provider.Provider = (*Client)(nil)

// NewClient creates an OpenAI-backed provider.
func NewClient(apiKey, model, baseURL, instructions string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &Client{
		client:       &client,
		model:        model,
		instructions: instructions,
	}, nil
}

// Complete runs the chat completion loop, executing requested tool calls
// until the model returns a plain assistant message.
func (c *Client) Complete(ctx context.Context, history []domain.Message, tools []provider.ToolDefinition, exec provider.Executor) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if c.instructions != "" {
		msgs = append(msgs, openai.SystemMessage(c.instructions))
	}
	for _, m := range history {
		switch m.Role {
		case domain.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	toolParams := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		toolParams = append(toolParams, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  shared.FunctionParameters(t.Parameters),
		}))
	}

	for round := 0; round < provider.MaxToolRounds; round++ {
		params := openai.ChatCompletionNewParams{
			Model:    shared.ChatModel(c.model),
			Messages: msgs,
		}
		if len(toolParams) > 0 {
			params.Tools = toolParams
		}

		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("completion returned no choices")
		}

		message := resp.Choices[0].Message
		if len(message.ToolCalls) == 0 || exec == nil {
			return message.Content, nil
		}

		msgs = append(msgs, message.ToParam())
		for _, call := range message.ToolCalls {
			var args map[string]any
			if raw := call.Function.Arguments; raw != "" {
				if err := json.Unmarshal([]byte(raw), &args); err != nil {
					args = nil
				}
			}
			out, err := exec(ctx, call.Function.Name, args)
			if err != nil {
				out = "tool error: " + err.Error()
			}
			msgs = append(msgs, openai.ToolMessage(out, call.ID))
		}
	}

	return "", fmt.Errorf("tool call limit reached after %d rounds", provider.MaxToolRounds)
}

func init() {
	provider.Register("openai", func(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
		return NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Instructions)
	})
}

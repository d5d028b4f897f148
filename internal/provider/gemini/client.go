// Package gemini implements the completion provider on the Google GenAI SDK.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"agentgate/internal/config"
	"agentgate/internal/domain"
	"agentgate/internal/provider"
)

// Client wraps the Gemini generate-content API.
type Client struct {
	client       *genai.Client
	model        string
	instructions string
}

var _ provider.Provider = (*Client)(nil)

// NewClient creates a Gemini-backed provider.
func NewClient(ctx context.Context, apiKey, model, instructions string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider requires an API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		client:       client,
		model:        model,
		instructions: instructions,
	}, nil
}

// Complete runs the generate-content loop, answering function calls until
// the model returns plain text.
func (c *Client) Complete(ctx context.Context, history []domain.Message, tools []provider.ToolDefinition, exec provider.Executor) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	systemText := c.instructions
	for _, m := range history {
		switch m.Role {
		case domain.RoleSystem:
			systemText = m.Content
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{}
	if systemText != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}
	if len(tools) > 0 {
		declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decl := &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
			}
			if t.Parameters != nil {
				// The SDK schema type round-trips cleanly through JSON.
				data, err := json.Marshal(t.Parameters)
				if err == nil {
					var schema genai.Schema
					if err := json.Unmarshal(data, &schema); err == nil {
						decl.Parameters = &schema
					}
				}
			}
			declarations = append(declarations, decl)
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	for round := 0; round < provider.MaxToolRounds; round++ {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err != nil {
			return "", err
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 || exec == nil {
			return resp.Text(), nil
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}
		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			out, err := exec(ctx, call.Name, call.Args)
			if err != nil {
				out = "tool error: " + err.Error()
			}
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{"output": out}))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return "", fmt.Errorf("tool call limit reached after %d rounds", provider.MaxToolRounds)
}

func init() {
	provider.Register("gemini", func(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
		return NewClient(ctx, cfg.APIKey, cfg.Model, cfg.Instructions)
	})
}

// Package provider abstracts the completion capability: given a message
// history and the active tool definitions, produce the next assistant
// message, invoking tools zero or more times along the way.
package provider

import (
	"context"

	"agentgate/internal/domain"
)

// ToolDefinition describes one callable operation in the form LLM APIs
// expect: a function name, a description, and a JSON schema for arguments.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Executor runs a tool call requested by the model and returns the result
// text. An error result is fed back to the model as tool output; it never
// fails the turn.
type Executor func(ctx context.Context, name string, args map[string]any) (string, error)

// Provider turns a message history plus tool definitions into one assistant
// reply. Implementations may loop internally on tool calls but must return
// exactly one final message.
type Provider interface {
	Complete(ctx context.Context, history []domain.Message, tools []ToolDefinition, exec Executor) (string, error)
}

// MaxToolRounds bounds the tool-call loop of every implementation.
const MaxToolRounds = 8

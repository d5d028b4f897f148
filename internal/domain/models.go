// Package domain defines the core domain models for the agent gateway.
package domain

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is a single entry in a session's conversation history.
// Messages are append-only; position within a session is the insertion order.
type Message struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ToolState is the activation state of a registered tool.
type ToolState string

const (
	// ToolStateRegistered means the tool is known but not exposed to the agent.
	ToolStateRegistered ToolState = "registered"
	// ToolStateActive means the tool is included in agent invocations.
	ToolStateActive ToolState = "active"
)

// Operation is a single callable operation derived from an OpenAPI descriptor.
type Operation struct {
	OperationID string          `json:"operation_id"`
	Method      string          `json:"method"`
	Path        string          `json:"path"`
	Summary     string          `json:"summary,omitempty"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// Tool is an externally described service registered with the gateway.
// Operations are derived once at registration time; the state machine is
// registered -> active, with no transition back.
type Tool struct {
	ToolID       string      `json:"tool_id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	SpecLocation string      `json:"spec_location"`
	BaseURL      string      `json:"base_url,omitempty"`
	State        ToolState   `json:"state"`
	Operations   []Operation `json:"operations"`
	CreatedAt    time.Time   `json:"created_at"`
}

package domain

import "errors"

// Error kinds surfaced by the orchestration layer. The transport maps each
// kind to a status code with errors.Is; none of them is retried internally.
var (
	// ErrEmptyMessage rejects a chat request with blank text.
	ErrEmptyMessage = errors.New("message text must not be empty")

	// ErrToolNotFound means the tool id is not present in the registry.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolSpecInvalid means the OpenAPI descriptor could not be parsed
	// into at least one operation.
	ErrToolSpecInvalid = errors.New("tool spec invalid")

	// ErrInvalidToolName rejects tool names outside [0-9A-Za-z_].
	ErrInvalidToolName = errors.New("tool name must contain only letters, numbers, and underscores")

	// ErrToolFetch means the spec location was unreachable.
	ErrToolFetch = errors.New("tool spec unreachable")

	// ErrProvider means the completion provider failed; nothing is persisted
	// for the turn, so the caller may retry the whole request.
	ErrProvider = errors.New("completion provider failed")

	// ErrStore means the persistence layer failed.
	ErrStore = errors.New("session history unavailable")
)

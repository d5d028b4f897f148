// Package policy gates tool invocations through OPA.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine. It is consulted before every tool
// operation execution within a conversation turn.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine from rego source.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.agentgate.tools.decision"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile loads rego source from path.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Evaluate checks the tool policy. Input carries tool, operation, and args.
// Returns: decision (allow or block), reason (optional), error.
func (e *Engine) Evaluate(ctx context.Context, input any) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "allow", "default", nil
	}

	val := results[0].Expressions[0].Value
	switch v := val.(type) {
	case string:
		return v, "", nil
	case map[string]any:
		decision, _ := v["decision"].(string)
		reason, _ := v["reason"].(string)
		if decision == "" {
			decision = "allow"
		}
		return decision, reason, nil
	}

	return "allow", "unexpected policy return type", nil
}

// DefaultPolicy allows every tool operation. Operators can replace it with a
// custom policy via the policy_path configuration option.
const DefaultPolicy = `
package agentgate.tools

default decision = "allow"
`

// Package openapi derives callable operations from OpenAPI descriptors and
// executes them over HTTP.
package openapi

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"agentgate/internal/domain"
)

var jsonit = jsoniter.ConfigCompatibleWithStandardLibrary

// methods recognized as operations under a path item.
var methods = []string{"get", "post", "put", "delete", "patch"}

var nameSafeRegex = regexp.MustCompile(`[^0-9A-Za-z_]+`)

// Document is the minimal parse result of an OpenAPI descriptor: the base URL
// plus the set of named operations with invocation schemas.
type Document struct {
	Title       string
	Description string
	BaseURL     string
	Operations  []domain.Operation
}

type rawSpec struct {
	Info struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"info"`
	// OpenAPI 3.x
	Servers []struct {
		URL string `json:"url"`
	} `json:"servers"`
	// OpenAPI 2.x (Swagger)
	Host     string   `json:"host"`
	Schemes  []string `json:"schemes"`
	BasePath string   `json:"basePath"`

	Paths map[string]map[string]json.RawMessage `json:"paths"`
}

type rawOperation struct {
	OperationID string         `json:"operationId"`
	Summary     string         `json:"summary"`
	Description string         `json:"description"`
	Parameters  []rawParameter `json:"parameters"`
	RequestBody *struct {
		Description string `json:"description"`
		Content     map[string]struct {
			Schema json.RawMessage `json:"schema"`
		} `json:"content"`
	} `json:"requestBody"`
}

type rawParameter struct {
	Name        string          `json:"name"`
	In          string          `json:"in"`
	Description string          `json:"description"`
	Required    bool            `json:"required"`
	Schema      json.RawMessage `json:"schema"`
}

// Parse extracts the base URL and operations from a descriptor. It fails with
// domain.ErrToolSpecInvalid when the descriptor cannot be parsed into at
// least one operation.
func Parse(data []byte) (*Document, error) {
	var spec rawSpec
	if err := jsonit.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrToolSpecInvalid, err)
	}

	doc := &Document{
		Title:       spec.Info.Title,
		Description: spec.Info.Description,
		BaseURL:     baseURL(&spec),
	}

	for path, item := range spec.Paths {
		for _, method := range methods {
			raw, ok := item[method]
			if !ok {
				continue
			}
			var op rawOperation
			if err := jsonit.Unmarshal(raw, &op); err != nil {
				continue
			}
			operationID := op.OperationID
			if operationID == "" {
				operationID = method + "_" + strings.ReplaceAll(path, "/", "_")
			}
			operationID = nameSafeRegex.ReplaceAllString(operationID, "_")

			schema, err := inputSchema(&op)
			if err != nil {
				continue
			}
			doc.Operations = append(doc.Operations, domain.Operation{
				OperationID: operationID,
				Method:      strings.ToUpper(method),
				Path:        path,
				Summary:     op.Summary,
				Description: firstNonEmpty(op.Description, op.Summary, "Call "+operationID),
				InputSchema: schema,
			})
		}
	}

	if len(doc.Operations) == 0 {
		return nil, fmt.Errorf("%w: descriptor defines no operations", domain.ErrToolSpecInvalid)
	}

	// Path maps iterate in random order; keep the operation list stable.
	sort.Slice(doc.Operations, func(i, j int) bool {
		return doc.Operations[i].OperationID < doc.Operations[j].OperationID
	})

	return doc, nil
}

func baseURL(spec *rawSpec) string {
	// OpenAPI 3.x
	if len(spec.Servers) > 0 {
		return strings.TrimRight(spec.Servers[0].URL, "/")
	}
	// OpenAPI 2.x
	if spec.Host != "" {
		scheme := "https"
		if len(spec.Schemes) > 0 {
			scheme = spec.Schemes[0]
		}
		return strings.TrimRight(scheme+"://"+spec.Host+spec.BasePath, "/")
	}
	return ""
}

// inputSchema builds a JSON schema object for the operation's arguments:
// one property per declared parameter, plus a "body" property when the
// operation accepts a request body.
func inputSchema(op *rawOperation) (json.RawMessage, error) {
	properties := map[string]any{}
	required := []string{}

	for _, p := range op.Parameters {
		if p.Name == "" {
			continue
		}
		var schema map[string]any
		if len(p.Schema) > 0 {
			if err := jsonit.Unmarshal(p.Schema, &schema); err != nil {
				schema = nil
			}
		}
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		if p.Description != "" {
			schema["description"] = p.Description
		}
		properties[p.Name] = schema
		if p.Required || p.In == "path" {
			required = append(required, p.Name)
		}
	}

	if op.RequestBody != nil {
		body := map[string]any{"type": "object"}
		if content, ok := op.RequestBody.Content["application/json"]; ok && len(content.Schema) > 0 {
			var schema map[string]any
			if err := jsonit.Unmarshal(content.Schema, &schema); err == nil && schema != nil {
				body = schema
			}
		}
		if op.RequestBody.Description != "" {
			body["description"] = op.RequestBody.Description
		}
		properties["body"] = body
	}

	return jsonit.Marshal(map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package openapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agentgate/internal/domain"
)

// Client fetches OpenAPI descriptors and invokes the operations they define.
type Client struct {
	http *http.Client
}

// NewClient creates a client with the given timeout for spec fetches and
// operation invocations.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses the descriptor at location. Unreachable
// locations fail with domain.ErrToolFetch; unparsable descriptors with
// domain.ErrToolSpecInvalid.
func (c *Client) Fetch(ctx context.Context, location string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrToolFetch, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrToolFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrToolFetch, location, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrToolFetch, err)
	}

	return Parse(data)
}

// Invoke executes one operation against its API. Arguments matching {name}
// segments are substituted into the path; a "body" argument (or, for
// body-carrying methods, the remaining arguments) becomes the JSON request
// body; everything else is sent as query parameters.
func (c *Client) Invoke(ctx context.Context, baseURL string, op domain.Operation, args map[string]any) (string, error) {
	path := op.Path
	remaining := map[string]any{}
	for name, value := range args {
		placeholder := "{" + name + "}"
		if strings.Contains(path, placeholder) {
			path = strings.ReplaceAll(path, placeholder, fmt.Sprintf("%v", value))
			continue
		}
		remaining[name] = value
	}

	var body io.Reader
	hasBody := op.Method == http.MethodPost || op.Method == http.MethodPut || op.Method == http.MethodPatch
	if hasBody {
		payload := remaining["body"]
		if payload == nil {
			payload = remaining
		}
		data, err := jsonit.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, baseURL+path, body)
	if err != nil {
		return "", err
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	} else if len(remaining) > 0 {
		query := url.Values{}
		for name, value := range remaining {
			query.Set(name, fmt.Sprintf("%v", value))
		}
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("operation %s returned %d: %s", op.OperationID, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return string(data), nil
}

// Package platform translates the bridge's common issue operations into
// each supported tracker's native API calls. Every adapter owns its own
// request and response shapes; nothing here normalizes results across
// platforms.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Adapter is one tracker backend. Params arrive as the raw JSON params
// object of a bridge request; each adapter decodes the request shape its
// platform uses (Jira names the update key issueKey, GitLab issueId, and so
// on). Results are the platform's native response decoded as generic JSON
// and returned unchanged.
type Adapter interface {
	Name() string
	CreateIssue(ctx context.Context, params json.RawMessage) (any, error)
	UpdateIssue(ctx context.Context, params json.RawMessage) (any, error)
	SearchIssues(ctx context.Context, params json.RawMessage) (any, error)

	// HasRequiredConfig reports whether every mandatory configuration
	// value for this platform is present. Pure predicate, no network call.
	HasRequiredConfig() bool
}

// readBody drains and closes an HTTP response body.
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// decodeAny parses a platform response body into generic JSON. An empty
// body decodes to nil.
func decodeAny(body []byte) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to parse platform response: %w", err)
	}
	return v, nil
}

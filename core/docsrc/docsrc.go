// Package docsrc loads planning documents that feed the issue workflows.
// A reference is either a local file path or an http(s) URL; github.com
// file URLs are rewritten to their raw content form before fetching.
package docsrc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Loader resolves document references to their text content.
type Loader struct {
	client *http.Client
}

// NewLoader returns a Loader using the given HTTP client, or
// http.DefaultClient when nil.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client}
}

// Load returns the content of the referenced document. URLs are fetched
// over HTTP, anything else is read from the local filesystem.
func (l *Loader) Load(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("document reference cannot be empty")
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return l.fetch(ctx, ref)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", ref, err)
	}
	return string(data), nil
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	raw, err := RawContentURL(url)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("document fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// RawContentURL converts a github.com file URL to raw.githubusercontent.com
// form. It handles /blob/ and /tree/ paths as well as the short
// owner/repo/file form, which defaults to the main branch. Non-GitHub URLs
// and already-raw URLs pass through unchanged.
func RawContentURL(url string) (string, error) {
	if strings.Contains(url, "raw.githubusercontent.com") || !strings.Contains(url, "github.com") {
		return url, nil
	}

	path := strings.TrimPrefix(url, "https://")
	path = strings.TrimPrefix(path, "http://")
	path = strings.TrimPrefix(path, "github.com/")

	parts := strings.SplitN(path, "/", 5)

	var owner, repo, ref, filePath string

	if len(parts) >= 4 && (parts[2] == "blob" || parts[2] == "tree") {
		// Format: owner/repo/blob|tree/ref/file.md
		if len(parts) < 5 {
			return "", fmt.Errorf("invalid github path format: %s", path)
		}
		owner, repo, ref, filePath = parts[0], parts[1], parts[3], parts[4]
	} else if len(parts) >= 3 {
		// Format: owner/repo/file.md
		owner, repo = parts[0], parts[1]
		ref = "main"
		filePath = strings.Join(parts[2:], "/")
	} else {
		return "", fmt.Errorf("invalid github path format: %s", path)
	}

	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", owner, repo, ref, filePath), nil
}

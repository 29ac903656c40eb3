package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultHistoryDir is where proposal drafts are kept, relative to the
// working directory.
const DefaultHistoryDir = ".bridge/history"

// WriteDraft persists a proposal list as a YAML file under dir and returns
// the written path. The name is sanitized and resolved strictly inside dir;
// a name that would escape it is rejected.
func WriteDraft(dir, name string, proposals []ProposedIssue) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("history directory cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("draft-%s", time.Now().Format("20060102-150405"))
	}
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}

	dir = filepath.Clean(dir)

	rel := filepath.Clean(name)
	if filepath.IsAbs(rel) {
		rel = strings.TrimPrefix(rel, string(os.PathSeparator))
	}
	full := filepath.Clean(filepath.Join(dir, rel))
	if !isPathWithinDir(dir, full) {
		return "", fmt.Errorf("draft name escapes history directory: %s", name)
	}

	data, err := yaml.Marshal(proposals)
	if err != nil {
		return "", fmt.Errorf("failed to encode draft: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write draft %s: %w", full, err)
	}
	return full, nil
}

// ReadDraft loads a previously written draft.
func ReadDraft(path string) ([]ProposedIssue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft %s: %w", path, err)
	}
	var proposals []ProposedIssue
	if err := yaml.Unmarshal(data, &proposals); err != nil {
		return nil, fmt.Errorf("failed to parse draft %s: %w", path, err)
	}
	return proposals, nil
}

// isPathWithinDir checks whether target stays inside dir.
func isPathWithinDir(dir, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(target))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}

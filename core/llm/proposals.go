package llm

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProposedIssue is one entry of the YAML issue list the prompts ask the
// model to produce. Dependency names the index of an earlier proposal this
// one builds on, or -1 for none.
type ProposedIssue struct {
	Index       int    `yaml:"index"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Dependency  int    `yaml:"dependency"`
}

// UnmarshalYAML defaults an omitted dependency key to -1 so a bare entry
// means "no dependency" rather than a dependency on index 0.
func (p *ProposedIssue) UnmarshalYAML(value *yaml.Node) error {
	type plain ProposedIssue
	raw := plain{Dependency: -1}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = ProposedIssue(raw)
	return nil
}

// ParseProposals extracts the YAML proposal list from model output. The
// model often wraps the document in a markdown code fence; fences are
// stripped before unmarshaling.
func ParseProposals(text string) ([]ProposedIssue, error) {
	doc := stripFences(text)
	if strings.TrimSpace(doc) == "" {
		return nil, fmt.Errorf("model output contains no proposals")
	}

	var proposals []ProposedIssue
	if err := yaml.Unmarshal([]byte(doc), &proposals); err != nil {
		return nil, fmt.Errorf("failed to parse proposals: %w", err)
	}
	if len(proposals) == 0 {
		return nil, fmt.Errorf("model output contains no proposals")
	}
	return proposals, nil
}

// ValidateProposals checks the structural rules of a proposal list: every
// title non-empty, every index unique, every dependency either -1 or the
// index of an earlier proposal.
func ValidateProposals(proposals []ProposedIssue) error {
	seen := make(map[int]bool, len(proposals))
	for i, p := range proposals {
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("proposal %d: title cannot be empty", i)
		}
		if seen[p.Index] {
			return fmt.Errorf("proposal %d: duplicate index %d", i, p.Index)
		}
		if p.Dependency != -1 {
			if !seen[p.Dependency] {
				return fmt.Errorf("proposal %d: dependency %d does not refer to an earlier proposal", i, p.Dependency)
			}
		}
		seen[p.Index] = true
	}
	return nil
}

// stripFences removes a wrapping markdown code fence, with or without a
// language tag, leaving inner fences intact.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	lines = lines[1:]
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "```" {
		if strings.TrimSpace(lines[len(lines)-1]) == "" {
			lines = lines[:len(lines)-1]
			continue
		}
		break
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// BuildParsePrompt asks the model to turn a planning document into a
// proposal list.
func BuildParsePrompt(document string) string {
	var sb strings.Builder
	sb.WriteString("Read the planning document below and break it into concrete, actionable issues.\n")
	sb.WriteString("Respond with ONLY a YAML list, no prose, where each entry has exactly these keys:\n")
	sb.WriteString("  index: integer, starting at 0, unique\n")
	sb.WriteString("  title: short imperative summary\n")
	sb.WriteString("  description: full context a developer needs, markdown allowed\n")
	sb.WriteString("  dependency: index of an earlier entry this one depends on, or -1\n")
	sb.WriteString("\n--- DOCUMENT ---\n")
	sb.WriteString(document)
	sb.WriteString("\n--- END DOCUMENT ---\n")
	return sb.String()
}

// BuildExpandPrompt asks the model to decompose one issue into subtask
// proposals.
func BuildExpandPrompt(title, description string) string {
	var sb strings.Builder
	sb.WriteString("Break the issue below into smaller subtasks that can each be completed independently.\n")
	sb.WriteString("Respond with ONLY a YAML list, no prose, where each entry has exactly these keys:\n")
	sb.WriteString("  index: integer, starting at 0, unique\n")
	sb.WriteString("  title: short imperative summary\n")
	sb.WriteString("  description: what to do and how to verify it\n")
	sb.WriteString("  dependency: index of an earlier entry this one depends on, or -1\n")
	sb.WriteString("\n--- ISSUE ---\n")
	sb.WriteString("Title: " + title + "\n")
	if strings.TrimSpace(description) != "" {
		sb.WriteString("Description:\n" + description + "\n")
	}
	sb.WriteString("--- END ISSUE ---\n")
	return sb.String()
}

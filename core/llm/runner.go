// Package llm drives a local model CLI for the issue-generation workflows:
// it feeds a prompt to the claude binary, captures its stream-json output
// and extracts the final result message, then parses the YAML issue
// proposals the prompts ask for.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultBinary is the model CLI executable looked up on PATH.
const DefaultBinary = "claude"

// defaultArgs runs the CLI in non-interactive print mode with machine
// readable output.
var defaultArgs = []string{
	"--dangerously-skip-permissions",
	"-p",
	"--verbose",
	"--output-format", "stream-json",
}

// Result is the outcome of one model invocation.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Runner executes model prompts through an external CLI process.
type Runner struct {
	// Binary is the executable to run. Defaults to DefaultBinary.
	Binary string

	// Args overrides the CLI arguments. Defaults to defaultArgs.
	Args []string

	// Stderr receives the CLI's diagnostic output. Defaults to os.Stderr.
	Stderr io.Writer
}

// NewRunner returns a Runner with the default CLI setup.
func NewRunner() *Runner {
	return &Runner{}
}

// Run sends the prompt on stdin and returns the final result message. The
// stream-json output ends with a "type":"result" line carrying the result
// text and token usage.
func (r *Runner) Run(ctx context.Context, prompt string) (Result, error) {
	binary := r.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	args := r.Args
	if args == nil {
		args = defaultArgs
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("running %s: %w", binary, err)
	}

	result, ok := parseStream(stdout.Bytes())
	if !ok {
		return Result{}, fmt.Errorf("no result message in %s output", binary)
	}
	return result, nil
}

// parseStream scans stream-json output from the end for the result message.
func parseStream(output []byte) (Result, bool) {
	lines := bytes.Split(bytes.TrimSpace(output), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		var msg struct {
			Type   string `json:"type"`
			Result string `json:"result"`
			Usage  struct {
				InputTokens  int `json:"input_tokens"`
				OutputTokens int `json:"output_tokens"`
			} `json:"usage"`
		}
		if err := json.Unmarshal(lines[i], &msg); err != nil {
			continue
		}
		if msg.Type == "result" {
			return Result{
				Text:         msg.Result,
				InputTokens:  msg.Usage.InputTokens,
				OutputTokens: msg.Usage.OutputTokens,
			}, true
		}
	}
	return Result{}, false
}

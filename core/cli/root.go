// Package cli implements the bridgectl command tree. Every subcommand
// spawns the bridge executable for a single request and renders the result,
// so the CLI shares one code path with any other bridge caller.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/issuebridge/bridge-core/core/transport"
)

// bridgeCaller is the one-shot request interface the subcommands use.
type bridgeCaller interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// newCaller is swapped out in tests.
var newCaller = func(path string) bridgeCaller {
	return transport.NewClient(path)
}

var (
	platformFlag string
	bridgeFlag   string
	timeoutFlag  time.Duration
)

// NewRootCommand builds the bridgectl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bridgectl",
		Short:         "Manage issues on Jira and GitLab through the issue bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&platformFlag, "platform", "", "target platform (jira or gitlab, default from bridge config)")
	root.PersistentFlags().StringVar(&bridgeFlag, "bridge", "", "path to the bridge executable (default: next to bridgectl, then PATH)")
	root.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 60*time.Second, "per-request timeout")

	root.AddCommand(
		newSearchCommand(),
		newCreateCommand(),
		newUpdateCommand(),
		newCheckCommand(),
		newParseCommand(),
		newExpandCommand(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// call sends one request through a freshly spawned bridge process.
func call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	path, err := resolveBridgePath()
	if err != nil {
		return nil, err
	}

	if platformFlag != "" {
		params["platform"] = platformFlag
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutFlag)
	defer cancel()

	return newCaller(path).Call(ctx, method, params)
}

// resolveBridgePath finds the bridge executable: the --bridge flag, then a
// sibling of the running binary, then PATH.
func resolveBridgePath() (string, error) {
	if bridgeFlag != "" {
		return bridgeFlag, nil
	}

	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), "bridge")
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
			return sibling, nil
		}
	}

	if path, err := exec.LookPath("bridge"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("bridge executable not found; use --bridge to point at it")
}

// printResult renders a raw result payload as indented JSON.
func printResult(cmd *cobra.Command, result json.RawMessage) error {
	var buf any
	if err := json.Unmarshal(result, &buf); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(result))
		return nil
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	return nil
}

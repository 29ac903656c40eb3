package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/issuebridge/bridge-core/core/docsrc"
	"github.com/issuebridge/bridge-core/core/llm"
	"github.com/issuebridge/bridge-core/core/protocol"
)

// promptRunner is the model interface the workflow commands use.
type promptRunner interface {
	Run(ctx context.Context, prompt string) (llm.Result, error)
}

// newPromptRunner is swapped out in tests.
var newPromptRunner = func() promptRunner {
	return llm.NewRunner()
}

func newParseCommand() *cobra.Command {
	var (
		dryRun     bool
		historyDir string
		draftName  string
	)

	cmd := &cobra.Command{
		Use:   "parse <document>",
		Short: "Turn a planning document into issues via the model",
		Long: `Reads a planning document from a local path or a GitHub URL, asks the
model to break it into issue proposals, saves the proposals as a draft and
creates one issue per proposal on the target platform.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			document, err := docsrc.NewLoader(nil).Load(ctx, args[0])
			if err != nil {
				return err
			}

			result, err := newPromptRunner().Run(ctx, llm.BuildParsePrompt(document))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "model used %d input and %d output tokens\n",
				result.InputTokens, result.OutputTokens)

			proposals, err := llm.ParseProposals(result.Text)
			if err != nil {
				return err
			}
			if err := llm.ValidateProposals(proposals); err != nil {
				return err
			}

			draft, err := llm.WriteDraft(historyDir, draftName, proposals)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved %d proposals to %s\n", len(proposals), draft)

			if dryRun {
				return nil
			}
			return createProposals(cmd, proposals, nil)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "save the draft without creating issues")
	cmd.Flags().StringVar(&historyDir, "history-dir", llm.DefaultHistoryDir, "directory for proposal drafts")
	cmd.Flags().StringVar(&draftName, "draft-name", "", "draft file name (timestamped when empty)")
	return cmd
}

func newExpandCommand() *cobra.Command {
	var (
		key         string
		id          int
		title       string
		description string
		dryRun      bool
		historyDir  string
	)

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Break an issue into subtasks via the model",
		Long: `Asks the model to decompose an issue into subtasks and creates them on
the target platform. On Jira the subtasks are created under the parent key;
on GitLab they become issues labelled with the parent iid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" && id == 0 {
				return fmt.Errorf("--key (Jira) or --id (GitLab) is required")
			}
			if title == "" {
				return fmt.Errorf("--title is required")
			}
			ctx := cmd.Context()

			result, err := newPromptRunner().Run(ctx, llm.BuildExpandPrompt(title, description))
			if err != nil {
				return err
			}

			proposals, err := llm.ParseProposals(result.Text)
			if err != nil {
				return err
			}
			if err := llm.ValidateProposals(proposals); err != nil {
				return err
			}

			draft, err := llm.WriteDraft(historyDir, "", proposals)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved %d subtask proposals to %s\n", len(proposals), draft)

			if dryRun {
				return nil
			}
			return createProposals(cmd, proposals, subtaskExtras(key, id))
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Jira parent issue key")
	cmd.Flags().IntVar(&id, "id", 0, "GitLab parent issue iid")
	cmd.Flags().StringVar(&title, "title", "", "parent issue title")
	cmd.Flags().StringVar(&description, "description", "", "parent issue description")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "propose subtasks without creating them")
	cmd.Flags().StringVar(&historyDir, "history-dir", llm.DefaultHistoryDir, "directory for proposal drafts")
	return cmd
}

// subtaskExtras returns the creation fields that tie a subtask to its
// parent on each platform.
func subtaskExtras(key string, id int) map[string]any {
	extras := map[string]any{}
	if key != "" {
		extras["parentKey"] = key
	}
	if id != 0 {
		extras["labels"] = []string{"parent:" + strconv.Itoa(id)}
	}
	return extras
}

// createProposals issues one create request per proposal, in order, and
// reports each created issue on stdout.
func createProposals(cmd *cobra.Command, proposals []llm.ProposedIssue, extras map[string]any) error {
	for _, p := range proposals {
		params := proposalParams(p, extras)
		result, err := call(cmd.Context(), protocol.MethodCreateIssue, params)
		if err != nil {
			return fmt.Errorf("creating %q: %w", p.Title, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %q: %s\n", p.Title, string(result))
	}
	return nil
}

func proposalParams(p llm.ProposedIssue, extras map[string]any) map[string]any {
	params := map[string]any{
		"summary": p.Title,
		"title":   p.Title,
	}
	if p.Description != "" {
		params["description"] = p.Description
	}
	for k, v := range extras {
		params[k] = v
	}
	return params
}

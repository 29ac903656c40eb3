package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/issuebridge/bridge-core/core/protocol"
)

func newSearchCommand() *cobra.Command {
	var (
		jql        string
		maxResults int
		startAt    int
		state      string
		labels     []string
		author     string
		assignee   string
		text       string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search issues on the target platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := buildSearchParams(jql, maxResults, startAt, state, labels, author, assignee, text)
			result, err := call(cmd.Context(), protocol.MethodSearchIssues, params)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&jql, "jql", "", "Jira JQL query")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "maximum results per page (platform default when 0)")
	cmd.Flags().IntVar(&startAt, "start-at", 0, "Jira pagination offset")
	cmd.Flags().StringVar(&state, "state", "", "GitLab issue state filter")
	cmd.Flags().StringSliceVar(&labels, "labels", nil, "label filter")
	cmd.Flags().StringVar(&author, "author", "", "GitLab author username filter")
	cmd.Flags().StringVar(&assignee, "assignee", "", "GitLab assignee username filter")
	cmd.Flags().StringVar(&text, "search", "", "GitLab full-text filter")
	return cmd
}

// buildSearchParams keeps the payload sparse so each platform applies its
// own defaults for anything unset.
func buildSearchParams(jql string, maxResults, startAt int, state string, labels []string, author, assignee, text string) map[string]any {
	params := map[string]any{}
	if jql != "" {
		params["jql"] = jql
	}

	options := map[string]any{}
	if maxResults > 0 {
		options["maxResults"] = maxResults
	}
	if startAt > 0 {
		options["startAt"] = startAt
	}
	if len(options) > 0 {
		params["options"] = options
	}

	if maxResults > 0 {
		params["maxResults"] = maxResults
	}
	if state != "" {
		params["state"] = state
	}
	if len(labels) > 0 {
		params["labels"] = labels
	}
	if author != "" {
		params["author"] = author
	}
	if assignee != "" {
		params["assignee"] = assignee
	}
	if text != "" {
		params["search"] = text
	}
	return params
}

func newCreateCommand() *cobra.Command {
	var (
		title       string
		description string
		labels      []string
		project     string
		issueType   string
		parent      string
		assignee    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue on the target platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("--title is required")
			}
			params := buildCreateParams(title, description, labels, project, issueType, parent, assignee)
			result, err := call(cmd.Context(), protocol.MethodCreateIssue, params)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "issue title (Jira summary)")
	cmd.Flags().StringVar(&description, "description", "", "issue description")
	cmd.Flags().StringSliceVar(&labels, "labels", nil, "labels to attach")
	cmd.Flags().StringVar(&project, "project", "", "Jira project key override")
	cmd.Flags().StringVar(&issueType, "type", "", "Jira issue type")
	cmd.Flags().StringVar(&parent, "parent", "", "Jira parent issue key (creates a subtask)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Jira assignee account id")
	return cmd
}

// buildCreateParams sends the title under both names so either platform
// adapter finds its required field.
func buildCreateParams(title, description string, labels []string, project, issueType, parent, assignee string) map[string]any {
	params := map[string]any{
		"summary": title,
		"title":   title,
	}
	if description != "" {
		params["description"] = description
	}
	if len(labels) > 0 {
		params["labels"] = labels
	}
	if project != "" {
		params["projectKey"] = project
	}
	if issueType != "" {
		params["issueType"] = issueType
	}
	if parent != "" {
		params["parentKey"] = parent
	}
	if assignee != "" {
		params["assignee"] = assignee
	}
	return params
}

func newUpdateCommand() *cobra.Command {
	var (
		key         string
		id          int
		title       string
		description string
		labels      []string
		state       string
		assignee    string
		dueDate     string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update fields of an existing issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" && id == 0 {
				return fmt.Errorf("--key (Jira) or --id (GitLab) is required")
			}
			params, err := buildUpdateParams(key, id, title, description, labels, state, assignee, dueDate)
			if err != nil {
				return err
			}
			result, err := call(cmd.Context(), protocol.MethodUpdateIssue, params)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Jira issue key")
	cmd.Flags().IntVar(&id, "id", 0, "GitLab issue iid")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringSliceVar(&labels, "labels", nil, "replacement labels")
	cmd.Flags().StringVar(&state, "state", "", "new state (GitLab: closed or opened)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "new assignee")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "GitLab due date (YYYY-MM-DD)")
	return cmd
}

// buildUpdateParams produces a sparse updateData map holding only the
// fields the user set.
func buildUpdateParams(key string, id int, title, description string, labels []string, state, assignee, dueDate string) (map[string]any, error) {
	update := map[string]any{}
	if title != "" {
		update["title"] = title
	}
	if description != "" {
		update["description"] = description
	}
	if len(labels) > 0 {
		update["labels"] = labels
	}
	if state != "" {
		update["state"] = state
	}
	if assignee != "" {
		update["assignee"] = assignee
	}
	if dueDate != "" {
		update["dueDate"] = dueDate
	}
	if len(update) == 0 {
		return nil, fmt.Errorf("no fields to update; set at least one field flag")
	}

	params := map[string]any{"updateData": update}
	if key != "" {
		params["issueKey"] = key
	}
	if id != 0 {
		params["issueId"] = id
	}
	return params, nil
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether the target platform is fully configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := call(cmd.Context(), protocol.MethodHasRequiredConfig, map[string]any{})
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
}

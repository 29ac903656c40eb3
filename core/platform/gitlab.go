package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/issuebridge/bridge-core/core/config"
)

const (
	gitlabDefaultPageSize = 20
	gitlabDefaultState    = "opened"
)

// GitLab adapts the bridge operations to the GitLab REST API (v4). GitLab
// is the structured-filter platform: searches take a flat filter object and
// issues are addressed by numeric iid within a project.
type GitLab struct {
	cfg    config.GitLabConfig
	client *http.Client
}

// NewGitLab returns a GitLab adapter bound to the given configuration.
func NewGitLab(cfg config.GitLabConfig) *GitLab {
	return &GitLab{cfg: cfg, client: &http.Client{}}
}

func (g *GitLab) Name() string { return "gitlab" }

// HasRequiredConfig reports whether base URL, token and numeric project id
// are all set.
func (g *GitLab) HasRequiredConfig() bool {
	return strings.TrimSpace(g.cfg.BaseURL) != "" &&
		strings.TrimSpace(g.cfg.Token) != "" &&
		strings.TrimSpace(g.cfg.ProjectID) != ""
}

// gitlabCreateParams is the create_issue request shape for GitLab.
type gitlabCreateParams struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	AssigneeIDs []int    `json:"assigneeIds"`
	Weight      int      `json:"weight"`
	DueDate     string   `json:"dueDate"`
}

// gitlabUpdateParams is the update_issue request shape for GitLab. The key
// field is the issue iid, named issueId on the wire.
type gitlabUpdateParams struct {
	IssueID    int            `json:"issueId"`
	UpdateData map[string]any `json:"updateData"`
}

// gitlabSearchParams is the structured search filter for GitLab.
type gitlabSearchParams struct {
	State      string   `json:"state"`
	Labels     []string `json:"labels"`
	Author     string   `json:"author"`
	Assignee   string   `json:"assignee"`
	Search     string   `json:"search"`
	MaxResults int      `json:"maxResults"`
	Page       int      `json:"page"`
}

// CreateIssue POSTs a new issue to the configured project. The title field
// is mandatory; validation happens before any network call.
func (g *GitLab) CreateIssue(ctx context.Context, params json.RawMessage) (any, error) {
	var p gitlabCreateParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse gitlab create params: %w", err)
		}
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("title is required to create a gitlab issue")
	}
	if err := g.requireConfig(); err != nil {
		return nil, err
	}

	body := map[string]any{"title": p.Title}
	if p.Description != "" {
		body["description"] = p.Description
	}
	if len(p.Labels) > 0 {
		body["labels"] = strings.Join(p.Labels, ",")
	}
	if len(p.AssigneeIDs) > 0 {
		body["assignee_ids"] = p.AssigneeIDs
	}
	if p.Weight > 0 {
		body["weight"] = p.Weight
	}
	if p.DueDate != "" {
		body["due_date"] = p.DueDate
	}

	slog.Debug("Creating GitLab issue", "project", g.cfg.ProjectID)
	return g.do(ctx, http.MethodPost, g.issuesPath(), body, http.StatusCreated)
}

// UpdateIssue PUTs a sparse payload to the issue's iid: only keys present
// in updateData are sent, so omitted fields keep their remote values.
// Returns the updated issue as GitLab represents it.
func (g *GitLab) UpdateIssue(ctx context.Context, params json.RawMessage) (any, error) {
	var p gitlabUpdateParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse gitlab update params: %w", err)
		}
	}
	if p.IssueID <= 0 {
		return nil, fmt.Errorf("issueId is required to update a gitlab issue")
	}
	if err := g.requireConfig(); err != nil {
		return nil, err
	}

	body := gitlabUpdateFields(p.UpdateData)
	slog.Debug("Updating GitLab issue", "iid", p.IssueID, "fields", len(body))
	return g.do(ctx, http.MethodPut, g.issuesPath()+"/"+strconv.Itoa(p.IssueID), body, http.StatusOK)
}

// gitlabUpdateFields maps the common update vocabulary onto GitLab
// parameter names. A state of opened/closed becomes the state_event GitLab
// expects; label lists are joined to its comma form.
func gitlabUpdateFields(update map[string]any) map[string]any {
	body := make(map[string]any, len(update))
	for key, value := range update {
		switch key {
		case "state":
			switch value {
			case "closed":
				body["state_event"] = "close"
			case "opened":
				body["state_event"] = "reopen"
			default:
				body["state_event"] = value
			}
		case "labels":
			body["labels"] = joinLabels(value)
		case "dueDate":
			body["due_date"] = value
		case "assigneeIds":
			body["assignee_ids"] = value
		default:
			body[key] = value
		}
	}
	return body
}

func joinLabels(value any) any {
	items, ok := value.([]any)
	if !ok {
		return value
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprint(item))
	}
	return strings.Join(parts, ",")
}

// SearchIssues GETs the project issue list with the structured filter.
// Unset options get platform-sensible defaults: state opened, page size 20.
// The result is GitLab's plain issue array, returned unchanged.
func (g *GitLab) SearchIssues(ctx context.Context, params json.RawMessage) (any, error) {
	var p gitlabSearchParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse gitlab search params: %w", err)
		}
	}
	if err := g.requireConfig(); err != nil {
		return nil, err
	}

	state := p.State
	if state == "" {
		state = gitlabDefaultState
	}
	perPage := p.MaxResults
	if perPage <= 0 {
		perPage = gitlabDefaultPageSize
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}

	query := url.Values{}
	query.Set("state", state)
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	if len(p.Labels) > 0 {
		query.Set("labels", strings.Join(p.Labels, ","))
	}
	if p.Author != "" {
		query.Set("author_username", p.Author)
	}
	if p.Assignee != "" {
		query.Set("assignee_username", p.Assignee)
	}
	if p.Search != "" {
		query.Set("search", p.Search)
	}

	slog.Debug("Searching GitLab issues", "state", state, "perPage", perPage, "page", page)
	return g.do(ctx, http.MethodGet, g.issuesPath()+"?"+query.Encode(), nil, http.StatusOK)
}

func (g *GitLab) issuesPath() string {
	return "/api/v4/projects/" + url.PathEscape(g.cfg.ProjectID) + "/issues"
}

func (g *GitLab) requireConfig() error {
	if !g.HasRequiredConfig() {
		return fmt.Errorf("gitlab configuration incomplete: GITLAB_URL, GITLAB_TOKEN and GITLAB_PROJECT_ID must be set")
	}
	return nil
}

// do performs one GitLab API call and decodes the response as generic JSON.
// Upstream failures carry the status and raw body text through verbatim.
func (g *GitLab) do(ctx context.Context, method, path string, payload any, wantStatus int) (any, error) {
	var reqBody *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal gitlab request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PRIVATE-TOKEN", g.cfg.Token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach gitlab: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("gitlab API returned status %d: %s", resp.StatusCode, string(body))
	}
	return decodeAny(body)
}

package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/issuebridge/bridge-core/core/config"
)

const jiraDefaultMaxResults = 50

// jiraDefaultFields is requested when a search does not name its own field
// set.
var jiraDefaultFields = []string{"summary", "description", "status", "assignee", "created", "updated", "issuetype", "priority", "labels"}

// Jira adapts the bridge operations to the Jira Cloud REST API. Jira is the
// query-language platform: searches take a JQL string plus paging options,
// and issue payloads live under fields.*.
type Jira struct {
	cfg    config.JiraConfig
	client *http.Client
}

// NewJira returns a Jira adapter bound to the given configuration.
func NewJira(cfg config.JiraConfig) *Jira {
	return &Jira{cfg: cfg, client: &http.Client{}}
}

func (j *Jira) Name() string { return "jira" }

// HasRequiredConfig reports whether base URL, account email and API token
// are all set.
func (j *Jira) HasRequiredConfig() bool {
	return strings.TrimSpace(j.cfg.BaseURL) != "" &&
		strings.TrimSpace(j.cfg.Email) != "" &&
		strings.TrimSpace(j.cfg.APIToken) != ""
}

// jiraCreateParams is the create_issue request shape for Jira.
type jiraCreateParams struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	ProjectKey  string   `json:"projectKey"`
	IssueType   string   `json:"issueType"`
	ParentKey   string   `json:"parentKey"`
	Assignee    string   `json:"assignee"`
}

// jiraUpdateParams is the update_issue request shape for Jira. UpdateData
// is kept as a map so only keys the caller actually sent reach the payload.
type jiraUpdateParams struct {
	IssueKey   string         `json:"issueKey"`
	UpdateData map[string]any `json:"updateData"`
}

// jiraSearchParams is the search_issues request shape for Jira.
type jiraSearchParams struct {
	JQL     string `json:"jql"`
	Options struct {
		MaxResults int      `json:"maxResults"`
		StartAt    int      `json:"startAt"`
		Fields     []string `json:"fields"`
	} `json:"options"`
}

// CreateIssue builds the fields.* payload and POSTs it to Jira. The summary
// field is mandatory; validation happens before any network call.
func (j *Jira) CreateIssue(ctx context.Context, params json.RawMessage) (any, error) {
	var p jiraCreateParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse jira create params: %w", err)
		}
	}
	if strings.TrimSpace(p.Summary) == "" {
		return nil, fmt.Errorf("summary is required to create a jira issue")
	}
	if err := j.requireConfig(); err != nil {
		return nil, err
	}

	projectKey := p.ProjectKey
	if projectKey == "" {
		projectKey = j.cfg.ProjectKey
	}
	issueType := p.IssueType
	if issueType == "" {
		issueType = "Task"
	}
	if p.ParentKey != "" && p.IssueType == "" {
		issueType = "Sub-task"
	}

	fields := map[string]any{
		"summary":   p.Summary,
		"project":   map[string]string{"key": projectKey},
		"issuetype": map[string]string{"name": issueType},
	}
	if p.Description != "" {
		fields["description"] = p.Description
	}
	if len(p.Labels) > 0 {
		fields["labels"] = p.Labels
	}
	if p.ParentKey != "" {
		fields["parent"] = map[string]string{"key": p.ParentKey}
	}
	if p.Assignee != "" {
		fields["assignee"] = map[string]string{"accountId": p.Assignee}
	}

	slog.Debug("Creating Jira issue", "project", projectKey, "issueType", issueType)
	return j.do(ctx, http.MethodPost, "/rest/api/2/issue", map[string]any{"fields": fields}, http.StatusCreated)
}

// UpdateIssue PUTs a sparse fields payload: only keys present in updateData
// are included, so fields omitted by the caller are left untouched on the
// remote issue. Returns the updated issue as Jira represents it.
func (j *Jira) UpdateIssue(ctx context.Context, params json.RawMessage) (any, error) {
	var p jiraUpdateParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse jira update params: %w", err)
		}
	}
	if strings.TrimSpace(p.IssueKey) == "" {
		return nil, fmt.Errorf("issueKey is required to update a jira issue")
	}
	if err := j.requireConfig(); err != nil {
		return nil, err
	}

	fields := jiraUpdateFields(p.UpdateData)
	slog.Debug("Updating Jira issue", "issueKey", p.IssueKey, "fields", len(fields))

	path := "/rest/api/2/issue/" + url.PathEscape(p.IssueKey)
	if _, err := j.do(ctx, http.MethodPut, path, map[string]any{"fields": fields}, http.StatusNoContent); err != nil {
		return nil, err
	}
	// Jira's update endpoint returns no body; fetch the updated issue so the
	// caller gets the platform's native representation back.
	return j.do(ctx, http.MethodGet, path, nil, http.StatusOK)
}

// jiraUpdateFields maps the common update vocabulary onto Jira field names,
// passing unrecognized keys through untouched (custom fields).
func jiraUpdateFields(update map[string]any) map[string]any {
	fields := make(map[string]any, len(update))
	for key, value := range update {
		switch key {
		case "title", "summary":
			fields["summary"] = value
		case "assignee":
			if s, ok := value.(string); ok {
				fields["assignee"] = map[string]string{"accountId": s}
			} else {
				fields["assignee"] = value
			}
		default:
			fields[key] = value
		}
	}
	return fields
}

// SearchIssues POSTs a JQL search. An empty JQL defaults to recent issues
// because Jira Cloud rejects unbounded queries.
func (j *Jira) SearchIssues(ctx context.Context, params json.RawMessage) (any, error) {
	var p jiraSearchParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse jira search params: %w", err)
		}
	}
	if err := j.requireConfig(); err != nil {
		return nil, err
	}

	jql := strings.TrimSpace(p.JQL)
	if jql == "" {
		jql = "created >= -30d ORDER BY created DESC"
	}
	maxResults := p.Options.MaxResults
	if maxResults <= 0 {
		maxResults = jiraDefaultMaxResults
	}
	fields := p.Options.Fields
	if len(fields) == 0 {
		fields = jiraDefaultFields
	}

	body := map[string]any{
		"jql":        jql,
		"maxResults": maxResults,
		"startAt":    p.Options.StartAt,
		"fields":     fields,
	}
	slog.Debug("Searching Jira issues", "jql", jql, "maxResults", maxResults)
	return j.do(ctx, http.MethodPost, "/rest/api/2/search", body, http.StatusOK)
}

func (j *Jira) requireConfig() error {
	if !j.HasRequiredConfig() {
		return fmt.Errorf("jira configuration incomplete: JIRA_URL, JIRA_EMAIL and JIRA_API_TOKEN must be set")
	}
	return nil
}

// do performs one Jira API call and decodes the response as generic JSON.
// Upstream failures carry the status and raw body text through verbatim.
func (j *Jira) do(ctx context.Context, method, path string, payload any, wantStatus int) (any, error) {
	var reqBody *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal jira request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, j.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(j.cfg.Email, j.cfg.APIToken)

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach jira: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("jira API returned status %d: %s", resp.StatusCode, string(body))
	}
	return decodeAny(body)
}

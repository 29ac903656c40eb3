package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuebridge/bridge-core/core/config"
)

func jiraConfig(baseURL string) config.JiraConfig {
	return config.JiraConfig{
		BaseURL:    baseURL,
		Email:      "bot@acme.example",
		APIToken:   "api-token-123",
		ProjectKey: "ACME",
	}
}

func TestJiraCreateIssue_MissingSummary(t *testing.T) {
	t.Parallel()
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	j := NewJira(jiraConfig(server.URL))
	_, err := j.CreateIssue(context.Background(), json.RawMessage(`{"projectKey":"TEST"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary is required")
	assert.False(t, called, "create call must not reach the platform")
}

func TestJiraCreateIssue_Success(t *testing.T) {
	t.Parallel()
	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"10001","key":"TEST-123","self":"https://acme.atlassian.net/rest/api/2/issue/10001"}`))
	}))
	defer server.Close()

	j := NewJira(jiraConfig(server.URL))
	result, err := j.CreateIssue(context.Background(), json.RawMessage(`{"summary":"Test","projectKey":"TEST","labels":["bug"]}`))
	require.NoError(t, err)

	assert.Equal(t, "POST /rest/api/2/issue", gotPath)
	assert.NotEmpty(t, gotAuth)

	fields := gotBody["fields"].(map[string]any)
	assert.Equal(t, "Test", fields["summary"])
	assert.Equal(t, map[string]any{"key": "TEST"}, fields["project"])
	assert.Equal(t, map[string]any{"name": "Task"}, fields["issuetype"])
	assert.Equal(t, []any{"bug"}, fields["labels"])
	assert.NotContains(t, fields, "description")

	created := result.(map[string]any)
	assert.Equal(t, "TEST-123", created["key"])
}

func TestJiraCreateIssue_ProjectKeyFallsBackToConfig(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"key":"ACME-1"}`))
	}))
	defer server.Close()

	j := NewJira(jiraConfig(server.URL))
	_, err := j.CreateIssue(context.Background(), json.RawMessage(`{"summary":"No project given"}`))
	require.NoError(t, err)

	fields := gotBody["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"key": "ACME"}, fields["project"])
}

func TestJiraCreateIssue_SubtaskParent(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"key":"ACME-2"}`))
	}))
	defer server.Close()

	j := NewJira(jiraConfig(server.URL))
	_, err := j.CreateIssue(context.Background(), json.RawMessage(`{"summary":"Child","parentKey":"ACME-1"}`))
	require.NoError(t, err)

	fields := gotBody["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"key": "ACME-1"}, fields["parent"])
	assert.Equal(t, map[string]any{"name": "Sub-task"}, fields["issuetype"])
}

func TestJiraCreateIssue_IncompleteConfig(t *testing.T) {
	t.Parallel()
	j := NewJira(config.JiraConfig{BaseURL: "https://acme.atlassian.net"})
	_, err := j.CreateIssue(context.Background(), json.RawMessage(`{"summary":"S"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jira configuration incomplete")
}

func TestJiraUpdateIssue_MissingKey(t *testing.T) {
	t.Parallel()
	j := NewJira(jiraConfig("https://unused.example"))
	_, err := j.UpdateIssue(context.Background(), json.RawMessage(`{"updateData":{"summary":"S"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issueKey is required")
}

func TestJiraUpdateIssue_SparsePayload(t *testing.T) {
	t.Parallel()
	var putBodies []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			putBodies = append(putBodies, body)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"key":"ACME-7","fields":{"summary":"Updated"}}`))
		}
	}))
	defer server.Close()

	j := NewJira(jiraConfig(server.URL))
	params := json.RawMessage(`{"issueKey":"ACME-7","updateData":{"summary":"Updated","labels":["infra"]}}`)

	result, err := j.UpdateIssue(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "ACME-7", result.(map[string]any)["key"])

	// Updating twice with the same partial payload must build the same
	// payload both times; omitted fields are never reset.
	_, err = j.UpdateIssue(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, putBodies, 2)
	for _, body := range putBodies {
		fields := body["fields"].(map[string]any)
		assert.Equal(t, map[string]any{"summary": "Updated", "labels": []any{"infra"}}, fields)
	}
}

func TestJiraUpdateFields_Aliases(t *testing.T) {
	t.Parallel()
	fields := jiraUpdateFields(map[string]any{
		"title":             "Renamed",
		"assignee":          "acct-1",
		"customfield_10016": 5,
	})
	assert.Equal(t, "Renamed", fields["summary"])
	assert.Equal(t, map[string]string{"accountId": "acct-1"}, fields["assignee"])
	assert.Equal(t, 5, fields["customfield_10016"])
	assert.NotContains(t, fields, "title")
}

func TestJiraSearchIssues_Defaults(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"issues":[],"total":0}`))
	}))
	defer server.Close()

	j := NewJira(jiraConfig(server.URL))
	result, err := j.SearchIssues(context.Background(), nil)
	require.NoError(t, err)

	assert.Contains(t, gotBody["jql"], "created >= -30d")
	assert.Equal(t, float64(50), gotBody["maxResults"])
	assert.Equal(t, float64(0), gotBody["startAt"])
	assert.NotEmpty(t, gotBody["fields"])
	assert.Equal(t, float64(0), result.(map[string]any)["total"])
}

func TestJiraSearchIssues_PassesJQLAndOptions(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"issues":[{"key":"ACME-1"}],"total":1}`))
	}))
	defer server.Close()

	j := NewJira(jiraConfig(server.URL))
	_, err := j.SearchIssues(context.Background(), json.RawMessage(
		`{"jql":"project = ACME","options":{"maxResults":5,"startAt":10,"fields":["summary"]}}`))
	require.NoError(t, err)

	assert.Equal(t, "project = ACME", gotBody["jql"])
	assert.Equal(t, float64(5), gotBody["maxResults"])
	assert.Equal(t, float64(10), gotBody["startAt"])
	assert.Equal(t, []any{"summary"}, gotBody["fields"])
}

func TestJiraSearchIssues_UpstreamError(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorMessages":["not authorized"]}`))
	}))
	defer server.Close()

	j := NewJira(jiraConfig(server.URL))
	_, err := j.SearchIssues(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jira API returned status 401")
	assert.Contains(t, err.Error(), "not authorized")
}

func TestJiraHasRequiredConfig(t *testing.T) {
	t.Parallel()
	full := jiraConfig("https://acme.atlassian.net")
	assert.True(t, NewJira(full).HasRequiredConfig())

	for name, mutate := range map[string]func(*config.JiraConfig){
		"no url":   func(c *config.JiraConfig) { c.BaseURL = "" },
		"no email": func(c *config.JiraConfig) { c.Email = "" },
		"no token": func(c *config.JiraConfig) { c.APIToken = "" },
	} {
		cfg := full
		mutate(&cfg)
		assert.False(t, NewJira(cfg).HasRequiredConfig(), name)
	}
}

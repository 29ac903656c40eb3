package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearBridgeEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT_KEY",
		"GITLAB_URL", "GITLAB_TOKEN", "GITLAB_PROJECT_ID",
		"DEFAULT_PLATFORM", "LOG_LEVEL", "DEV_MODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearBridgeEnv(t)

	cfg := Load()
	assert.Equal(t, "jira", cfg.DefaultPlatform)
	assert.Equal(t, "https://gitlab.com", cfg.GitLab.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Empty(t, cfg.Jira.BaseURL)
	assert.Empty(t, cfg.GitLab.Token)
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	clearBridgeEnv(t)
	t.Setenv("JIRA_URL", "https://acme.atlassian.net/")
	t.Setenv("GITLAB_URL", "https://gitlab.example.com/")

	cfg := Load()
	assert.Equal(t, "https://acme.atlassian.net", cfg.Jira.BaseURL)
	assert.Equal(t, "https://gitlab.example.com", cfg.GitLab.BaseURL)
}

func TestLoad_PlatformAndLevelLowercased(t *testing.T) {
	clearBridgeEnv(t)
	t.Setenv("DEFAULT_PLATFORM", "GitLab")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()
	assert.Equal(t, "gitlab", cfg.DefaultPlatform)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DevMode(t *testing.T) {
	clearBridgeEnv(t)
	t.Setenv("DEV_MODE", "true")
	assert.True(t, Load().DevMode)

	t.Setenv("DEV_MODE", "not-a-bool")
	assert.False(t, Load().DevMode)
}

func TestLoad_FullEnvironment(t *testing.T) {
	clearBridgeEnv(t)
	t.Setenv("JIRA_URL", "https://acme.atlassian.net")
	t.Setenv("JIRA_EMAIL", "bot@acme.example")
	t.Setenv("JIRA_API_TOKEN", "tok")
	t.Setenv("JIRA_PROJECT_KEY", "ACME")
	t.Setenv("GITLAB_TOKEN", "glpat-x")
	t.Setenv("GITLAB_PROJECT_ID", "1234")

	cfg := Load()
	assert.Equal(t, "bot@acme.example", cfg.Jira.Email)
	assert.Equal(t, "ACME", cfg.Jira.ProjectKey)
	assert.Equal(t, "1234", cfg.GitLab.ProjectID)
}

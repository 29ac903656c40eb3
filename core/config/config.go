// Package config builds the process-wide bridge configuration from the
// environment. The configuration is constructed once at startup and passed
// into each adapter's constructor; nothing reads ambient state after that.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default values applied when the corresponding variable is unset.
const (
	DefaultPlatform  = "jira"
	DefaultGitLabURL = "https://gitlab.com"
	DefaultLogLevel  = "info"
)

// JiraConfig holds the Jira Cloud connection settings.
type JiraConfig struct {
	BaseURL    string
	Email      string
	APIToken   string
	ProjectKey string
}

// GitLabConfig holds the GitLab connection settings. ProjectID is the
// numeric project identifier GitLab uses in its REST paths.
type GitLabConfig struct {
	BaseURL   string
	Token     string
	ProjectID string
}

// Config is the full bridge configuration.
type Config struct {
	Jira   JiraConfig
	GitLab GitLabConfig

	// DefaultPlatform is used when a request carries no platform key.
	DefaultPlatform string

	LogLevel string
	DevMode  bool
}

// Load reads a .env file if present, then the process environment, applying
// documented defaults for optional values. It never fails: missing values
// surface later, when an adapter is asked to make a call.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Jira: JiraConfig{
			BaseURL:    strings.TrimRight(os.Getenv("JIRA_URL"), "/"),
			Email:      os.Getenv("JIRA_EMAIL"),
			APIToken:   os.Getenv("JIRA_API_TOKEN"),
			ProjectKey: os.Getenv("JIRA_PROJECT_KEY"),
		},
		GitLab: GitLabConfig{
			BaseURL:   strings.TrimRight(getEnv("GITLAB_URL", DefaultGitLabURL), "/"),
			Token:     os.Getenv("GITLAB_TOKEN"),
			ProjectID: os.Getenv("GITLAB_PROJECT_ID"),
		},
		DefaultPlatform: strings.ToLower(getEnv("DEFAULT_PLATFORM", DefaultPlatform)),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		DevMode:         getEnvBool("DEV_MODE"),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvBool(key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return false
	}
	return value
}

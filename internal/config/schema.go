// Package config provides configuration management for pr-label-tag.
package config

import (
	"github.com/projectsyn/pr-label-tag-action/internal/domain/bump"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/release"
)

// Tag backends.
const (
	// TagBackendAPI creates tags through the GitHub references API.
	TagBackendAPI = "api"
	// TagBackendGit creates tags in the local checkout and pushes them.
	TagBackendGit = "git"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the root configuration for pr-label-tag. Keys match the action
// inputs so that INPUT_<KEY> environment variables map onto them directly.
type Config struct {
	// PatchLabel is the pull request label requesting a patch bump.
	PatchLabel string `mapstructure:"patch-label" json:"patch-label" yaml:"patch-label"`
	// MinorLabel is the pull request label requesting a minor bump.
	MinorLabel string `mapstructure:"minor-label" json:"minor-label" yaml:"minor-label"`
	// MajorLabel is the pull request label requesting a major bump.
	MajorLabel string `mapstructure:"major-label" json:"major-label" yaml:"major-label"`

	// GitHubToken authenticates every GitHub API call and git push.
	GitHubToken string `mapstructure:"github-token" json:"-" yaml:"-"`

	ReleaseComment  string `mapstructure:"release-comment" json:"release-comment" yaml:"release-comment"`
	ReleasedComment string `mapstructure:"released-comment" json:"released-comment" yaml:"released-comment"`
	UnmergedComment string `mapstructure:"unmerged-comment" json:"unmerged-comment" yaml:"unmerged-comment"`

	// Trigger lists the names of workflows dispatched after a tag is created.
	Trigger []string `mapstructure:"-" json:"trigger,omitempty" yaml:"trigger,omitempty"`

	// TagBackend selects how tags are created: "api" or "git".
	TagBackend string `mapstructure:"tag-backend" json:"tag-backend" yaml:"tag-backend"`
	// RepoPath is the checkout used by the git tag backend.
	RepoPath string `mapstructure:"repo-path" json:"repo-path" yaml:"repo-path"`
	// Remote is the remote the git tag backend pushes to.
	Remote string `mapstructure:"remote" json:"remote" yaml:"remote"`

	// BotLogin is the account the action comments as.
	BotLogin string `mapstructure:"bot-login" json:"bot-login" yaml:"bot-login"`

	LogLevel  string `mapstructure:"log-level" json:"log-level" yaml:"log-level"`
	LogFormat string `mapstructure:"log-format" json:"log-format" yaml:"log-format"`

	// MetricsFile, when set, receives the run metrics in the Prometheus
	// text exposition format.
	MetricsFile string `mapstructure:"metrics-file" json:"metrics-file,omitempty" yaml:"metrics-file,omitempty"`

	// CacheDir, when set, keeps GitHub API responses on disk so a rerun
	// for the same pull request revalidates them with ETags.
	CacheDir string `mapstructure:"cache-dir" json:"cache-dir,omitempty" yaml:"cache-dir,omitempty"`
}

// BumpLabels returns the configured bump labels.
func (c *Config) BumpLabels() bump.Labels {
	return bump.Labels{
		Patch: c.PatchLabel,
		Minor: c.MinorLabel,
		Major: c.MajorLabel,
	}
}

// Templates returns the configured status comment templates.
func (c *Config) Templates() release.Templates {
	return release.Templates{
		Release:  c.ReleaseComment,
		Released: c.ReleasedComment,
		Unmerged: c.UnmergedComment,
	}
}

// DefaultConfig returns the default configuration. The bump labels and the
// token have no default.
func DefaultConfig() *Config {
	templates := release.DefaultTemplates()
	return &Config{
		ReleaseComment:  templates.Release,
		ReleasedComment: templates.Released,
		UnmergedComment: templates.Unmerged,
		Trigger:         []string{},
		TagBackend:      TagBackendAPI,
		RepoPath:        ".",
		Remote:          "origin",
		BotLogin:        "github-actions[bot]",
		LogLevel:        "info",
		LogFormat:       LogFormatText,
	}
}

// ConfigFileNames to search for.
var ConfigFileNames = []string{
	".pr-label-tag",
}

// ConfigFileExtensions supported by Viper.
var ConfigFileExtensions = []string{
	"yaml",
	"yml",
	"json",
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/release"
	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// ValidationError contains all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if len(e.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Errors:\n  - %s", strings.Join(e.Errors, "\n  - ")))
	}

	if len(e.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("Warnings:\n  - %s", strings.Join(e.Warnings, "\n  - ")))
	}

	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(parts, "\n"))
}

// HasErrors returns true if there are validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (e *ValidationError) HasWarnings() bool {
	return len(e.Warnings) > 0
}

// Addf adds a formatted error to the validation error.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Warnf adds a formatted warning to the validation error.
func (e *ValidationError) Warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Validator validates configuration.
type Validator struct {
	errors *ValidationError
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: &ValidationError{},
	}
}

// Validate validates the configuration. Warnings never fail validation;
// read them with Warnings afterwards.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLabels(cfg)
	v.validateToken(cfg)
	v.validateTemplates(cfg)
	v.validateTrigger(cfg.Trigger)
	v.validateBackend(cfg)
	v.validateOutput(cfg)

	if v.errors.HasErrors() {
		return rperrors.Config("config.Validate", strings.Join(v.errors.Errors, "; "))
	}

	return nil
}

// Warnings returns the warnings collected by the last Validate call.
func (v *Validator) Warnings() []string {
	return v.errors.Warnings
}

func (v *Validator) validateLabels(cfg *Config) {
	err := cfg.BumpLabels().Validate()
	if err == nil {
		return
	}

	var rpErr *rperrors.Error
	if errors.As(err, &rpErr) {
		v.errors.Addf("%s", rpErr.Summary())
		return
	}
	v.errors.Addf("%v", err)
}

func (v *Validator) validateToken(cfg *Config) {
	if cfg.GitHubToken == "" {
		v.errors.Addf("github-token: required")
	}
}

func (v *Validator) validateTemplates(cfg *Config) {
	templates := []struct{ key, body string }{
		{"release-comment", cfg.ReleaseComment},
		{"released-comment", cfg.ReleasedComment},
		{"unmerged-comment", cfg.UnmergedComment},
	}
	for _, tmpl := range templates {
		if strings.TrimSpace(tmpl.body) == "" {
			v.errors.Addf("%s: must not be empty", tmpl.key)
		}
	}
	if cfg.UnmergedComment != "" && strings.Contains(cfg.UnmergedComment, release.PlaceholderRepoURL) {
		v.errors.Warnf("unmerged-comment: %s links to a release that is never created", release.PlaceholderRepoURL)
	}
}

func (v *Validator) validateTrigger(names []string) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			v.errors.Warnf("trigger: workflow %q is listed more than once and will be dispatched repeatedly", name)
		}
		seen[name] = true
	}
}

func (v *Validator) validateBackend(cfg *Config) {
	validBackends := []string{TagBackendAPI, TagBackendGit}
	if !slices.Contains(validBackends, cfg.TagBackend) {
		v.errors.Addf("tag-backend: must be one of %v, got %q", validBackends, cfg.TagBackend)
		return
	}

	if cfg.TagBackend != TagBackendGit {
		return
	}
	if cfg.RepoPath == "" {
		v.errors.Addf("repo-path: required when tag-backend is %q", TagBackendGit)
	}
	if cfg.Remote == "" {
		v.errors.Addf("remote: required when tag-backend is %q", TagBackendGit)
	}
}

func (v *Validator) validateOutput(cfg *Config) {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		v.errors.Addf("log-level: must be one of %v, got %q", validLogLevels, cfg.LogLevel)
	}

	validFormats := []string{LogFormatText, LogFormatJSON}
	if !slices.Contains(validFormats, cfg.LogFormat) {
		v.errors.Addf("log-format: must be one of %v, got %q", validFormats, cfg.LogFormat)
	}

	if cfg.MetricsFile != "" {
		dir := filepath.Dir(cfg.MetricsFile)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				v.errors.Addf("metrics-file: directory does not exist: %s", dir)
			}
		}
	}

	if cfg.CacheDir != "" {
		if info, err := os.Stat(cfg.CacheDir); err == nil && !info.IsDir() {
			v.errors.Addf("cache-dir: not a directory: %s", cfg.CacheDir)
		}
	}

	if cfg.BotLogin == "" {
		v.errors.Addf("bot-login: must not be empty")
	}
}

// Validate is a convenience function to validate configuration.
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

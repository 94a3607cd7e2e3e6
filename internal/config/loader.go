package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// EnvPrefix is the prefix GitHub Actions puts in front of step inputs.
const EnvPrefix = "INPUT"

// Pre-compiled regex patterns for environment variable expansion.
var (
	// envVarPattern matches ${VAR} or ${VAR:-default} syntax
	envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)
	// simpleEnvVarPattern matches $VAR syntax
	simpleEnvVarPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// Loader handles configuration loading and merging.
//
// Precedence, highest first: values set with Set, INPUT_<KEY> environment
// variables, the config file, defaults. Keys keep their hyphens in the
// environment, e.g. INPUT_PATCH-LABEL.
type Loader struct {
	v           *viper.Viper
	configPath  string
	envFile     string
	searchPaths []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return &Loader{
		v:           v,
		searchPaths: []string{"."},
	}
}

// WithConfigPath sets an explicit config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvFile loads a dotenv file into the process environment before
// reading the configuration. Variables already set are not overridden.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// WithSearchPaths adds directories to search for config files.
func (l *Loader) WithSearchPaths(paths ...string) *Loader {
	l.searchPaths = append(l.searchPaths, paths...)
	return l
}

// Set overrides a key, typically from a command line flag.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load loads the configuration.
func (l *Loader) Load() (*Config, error) {
	const op = "config.Load"

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil {
			return nil, rperrors.ConfigWrap(err, op, fmt.Sprintf("failed to load env file %s", l.envFile))
		}
	}

	l.setDefaults()

	if err := l.loadConfigFile(); err != nil {
		return nil, rperrors.ConfigWrap(err, op, "failed to load config file")
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, rperrors.ConfigWrap(err, op, "failed to unmarshal config")
	}
	cfg.Trigger = parseTrigger(l.v.Get("trigger"))

	l.expandEnvVars(cfg)

	return cfg, nil
}

// setDefaults registers every key with Viper. AutomaticEnv only resolves
// keys Viper knows about, so required keys get an empty default too.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("patch-label", defaults.PatchLabel)
	l.v.SetDefault("minor-label", defaults.MinorLabel)
	l.v.SetDefault("major-label", defaults.MajorLabel)
	l.v.SetDefault("github-token", defaults.GitHubToken)

	l.v.SetDefault("release-comment", defaults.ReleaseComment)
	l.v.SetDefault("released-comment", defaults.ReleasedComment)
	l.v.SetDefault("unmerged-comment", defaults.UnmergedComment)
	l.v.SetDefault("trigger", "")

	l.v.SetDefault("tag-backend", defaults.TagBackend)
	l.v.SetDefault("repo-path", defaults.RepoPath)
	l.v.SetDefault("remote", defaults.Remote)
	l.v.SetDefault("bot-login", defaults.BotLogin)

	l.v.SetDefault("log-level", defaults.LogLevel)
	l.v.SetDefault("log-format", defaults.LogFormat)
	l.v.SetDefault("metrics-file", defaults.MetricsFile)
	l.v.SetDefault("cache-dir", defaults.CacheDir)
}

// loadConfigFile loads the configuration file.
func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
		if err := l.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", l.configPath, err)
		}
		return nil
	}

	configFile, ok := findConfigFile(l.searchPaths)
	if !ok {
		// No config file found - this is OK, we use defaults
		return nil
	}
	l.v.SetConfigFile(configFile)
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", configFile, err)
	}
	return nil
}

// GetConfigPath returns the path to the loaded config file, if any.
func (l *Loader) GetConfigPath() string {
	return l.v.ConfigFileUsed()
}

func findConfigFile(searchPaths []string) (string, bool) {
	for _, searchPath := range searchPaths {
		for _, name := range ConfigFileNames {
			for _, ext := range ConfigFileExtensions {
				configFile := filepath.Join(searchPath, name+"."+ext)
				if _, err := os.Stat(configFile); err == nil {
					return configFile, true
				}
			}
		}
	}
	return "", false
}

// parseTrigger accepts the multi-line string form of the action input as
// well as a list from a config file. Blank entries are dropped; names may
// contain spaces.
func parseTrigger(raw any) []string {
	names := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}

	switch v := raw.(type) {
	case string:
		for _, line := range strings.Split(v, "\n") {
			add(line)
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	case []any:
		for _, item := range v {
			add(fmt.Sprint(item))
		}
	}
	return names
}

// expandEnvVars expands environment variables in sensitive configuration fields.
func (l *Loader) expandEnvVars(cfg *Config) {
	cfg.GitHubToken = expandEnvVar(cfg.GitHubToken)
	cfg.RepoPath = expandEnvVar(cfg.RepoPath)
	cfg.MetricsFile = expandEnvVar(cfg.MetricsFile)
	cfg.CacheDir = expandEnvVar(cfg.CacheDir)
}

// expandEnvVar expands environment variables in a string.
// Supports both ${VAR} and $VAR syntax.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		varName := submatch[1]
		defaultValue := ""
		if len(submatch) > 2 {
			defaultValue = submatch[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})

	result = simpleEnvVarPattern.ReplaceAllStringFunc(result, func(match string) string {
		varName := match[1:]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})

	return result
}

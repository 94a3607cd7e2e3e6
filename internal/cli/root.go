// Package cli provides the command-line interface for pr-label-tag.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/projectsyn/pr-label-tag-action/internal/config"
	"github.com/projectsyn/pr-label-tag-action/internal/container"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/event"
	"github.com/projectsyn/pr-label-tag-action/internal/security"
)

var (
	// Version information set by main.
	versionInfo struct {
		Version string
		Commit  string
		Date    string
	}

	// Global flags
	cfgFile  string
	envFile  string
	logLevel string
	noColor  bool

	// getenv reads the process environment. Tests replace it.
	getenv = os.Getenv

	// Styles
	styles = struct {
		Title   lipgloss.Style
		Success lipgloss.Style
		Error   lipgloss.Style
		Warning lipgloss.Style
		Info    lipgloss.Style
		Subtle  lipgloss.Style
		Bold    lipgloss.Style
	}{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
)

// SetVersionInfo sets the version information from main.
func SetVersionInfo(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pr-label-tag",
	Short: "Tag releases from pull request labels",
	Long: `pr-label-tag creates semantic version tags driven by pull request labels.

On every pull_request event it looks for exactly one bump label, computes the
next version from the latest tag and keeps a status comment on the pull
request up to date. When the pull request is merged, the tag is created and
the configured workflows are dispatched.

Inputs are read from INPUT_<NAME> environment variables as set by the
GitHub Actions runner, from an optional config file and from flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a context for graceful shutdown.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: .pr-label-tag.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading inputs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
}

// session holds what a command needs after the configuration is loaded.
type session struct {
	cfg       *config.Config
	logger    *log.Logger
	container *container.Container
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.WithConfigPath(cfgFile)
	}
	if envFile != "" {
		loader.WithEnvFile(envFile)
	}
	if logLevel != "" {
		loader.Set("log-level", logLevel)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	validator := config.NewValidator()
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	for _, warning := range validator.Warnings() {
		logger.Warn(warning)
	}
	if path := loader.GetConfigPath(); path != "" {
		logger.Debug("loaded config file", "path", path)
	}

	return cfg, nil
}

// newLogger creates the run logger writing to w through masker.
func newLogger(w io.Writer, masker *security.Masker) *log.Logger {
	return log.NewWithOptions(security.NewMaskedWriter(w, masker), log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	})
}

// configureLogger applies the level and format settings.
func configureLogger(logger *log.Logger, cfg *config.Config) {
	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	// The runner enables step debug logging with RUNNER_DEBUG.
	if getenv("RUNNER_DEBUG") == "1" {
		logger.SetLevel(log.DebugLevel)
	}

	if cfg.LogFormat == config.LogFormatJSON {
		logger.SetFormatter(log.JSONFormatter)
	} else {
		logger.SetFormatter(log.TextFormatter)
	}
}

// applyColorFlag disables styling when requested or when NO_COLOR is set.
func applyColorFlag() {
	if noColor || getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// setup loads the configuration and event and wires the container.
func setup(cmd *cobra.Command, dryRun bool) (*session, error) {
	applyColorFlag()

	masker := security.NewMasker()
	masker.EnableInCI(getenv)
	logger := newLogger(cmd.ErrOrStderr(), masker)

	cfg, err := loadAndValidateConfig(logger)
	if err != nil {
		return nil, err
	}
	masker.AddSecret(cfg.GitHubToken)
	if isGitHubActions() {
		if err := security.AddMask(cmd.OutOrStdout(), cfg.GitHubToken); err != nil {
			return nil, fmt.Errorf("masking token: %w", err)
		}
	}
	configureLogger(logger, cfg)

	ev, err := event.Load(getenv)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded event", "event", ev.EventName(), "action", ev.Action(), "repository", ev.Repository())

	c, err := container.New(cfg, ev, container.Options{
		Logger:  slog.New(logger),
		Version: versionInfo.Version,
		DryRun:  dryRun,
	})
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, container: c}, nil
}

// isGitHubActions reports whether the process runs as an Actions step.
func isGitHubActions() bool {
	return getenv("GITHUB_ACTIONS") == "true"
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pr-label-tag %s\n", versionInfo.Version)
		fmt.Fprintf(out, "  commit: %s\n", versionInfo.Commit)
		fmt.Fprintf(out, "  built:  %s\n", versionInfo.Date)
	},
}

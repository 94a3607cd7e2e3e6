package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apprelease "github.com/projectsyn/pr-label-tag-action/internal/application/release"
	"github.com/projectsyn/pr-label-tag-action/internal/fileutil"
)

// EnvGitHubOutput names the file step outputs are appended to.
const EnvGitHubOutput = "GITHUB_OUTPUT"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the pull request event of the current workflow run",
	Long: `Process the pull request event of the current workflow run.

Reads the bump labels of the pull request, computes the next version and
updates the status comment. When the pull request was merged, the tag is
created and the configured workflows are dispatched.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

// runRun implements the run command.
func runRun(cmd *cobra.Command, args []string) error {
	start := time.Now()

	s, err := setup(cmd, false)
	if err != nil {
		return err
	}

	result, runErr := s.container.Orchestrator().Run(cmd.Context(), s.container.Event(), "")
	if result != nil {
		s.logger.Info("run finished",
			"run_id", result.RunID,
			"outcome", result.Outcome,
			"decision", result.Decision,
			"next_version", result.Next,
			"tagged", result.Tagged,
		)
	}

	metrics := s.container.Metrics()
	metrics.ObserveRunDuration(time.Since(start))
	if s.cfg.MetricsFile != "" {
		if err := metrics.WriteToTextfile(s.cfg.MetricsFile); err != nil {
			s.logger.Warn("failed to write metrics", "error", err)
		}
	}

	if result != nil {
		if err := writeStepOutputs(getenv(EnvGitHubOutput), result); err != nil {
			s.logger.Warn("failed to write step outputs", "error", err)
		}
	}

	return runErr
}

// stepOutputs returns the step outputs describing result, in a fixed order.
func stepOutputs(result *apprelease.Result) [][2]string {
	return [][2]string{
		{"outcome", string(result.Outcome)},
		{"bump", result.Decision},
		{"current-version", result.Current},
		{"next-version", result.Next},
		{"tagged", strconv.FormatBool(result.Tagged)},
	}
}

// writeStepOutputs appends result to the step output file at path. An
// empty path is a no-op.
func writeStepOutputs(path string, result *apprelease.Result) error {
	if path == "" {
		return nil
	}

	var sb strings.Builder
	for _, kv := range stepOutputs(result) {
		fmt.Fprintf(&sb, "%s=%s\n", kv[0], kv[1])
	}
	return fileutil.AppendFile(path, []byte(sb.String()), 0o600)
}

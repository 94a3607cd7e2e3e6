package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	apprelease "github.com/projectsyn/pr-label-tag-action/internal/application/release"
	"github.com/projectsyn/pr-label-tag-action/internal/config"
)

// Output formats of the plan command.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var planOutput string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what run would do without changing anything",
	Long: `Show what run would do for the current event without creating tags,
dispatching workflows or writing comments.

The pull request labels, tags, comments and workflows are still read from
GitHub, so a token is required.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planOutput, "output", "o", outputText, "output format (text, json, yaml)")
}

// runPlan implements the plan command.
func runPlan(cmd *cobra.Command, args []string) error {
	if !slices.Contains([]string{outputText, outputJSON, outputYAML}, planOutput) {
		return fmt.Errorf("unsupported output format %q, use one of text, json, yaml", planOutput)
	}

	s, err := setup(cmd, true)
	if err != nil {
		return err
	}

	result, runErr := s.container.Orchestrator().Run(cmd.Context(), s.container.Event(), "")
	if result == nil {
		return runErr
	}

	if err := writePlan(cmd.OutOrStdout(), planOutput, result, s.cfg); err != nil {
		return err
	}
	return runErr
}

// writePlan renders result in format.
func writePlan(w io.Writer, format string, result *apprelease.Result, cfg *config.Config) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, renderPlanText(result, cfg))
		return err
	}
}

func renderPlanText(result *apprelease.Result, cfg *config.Config) string {
	var sb strings.Builder
	row := func(key, value string) {
		fmt.Fprintf(&sb, "  %s %s\n", styles.Bold.Render(fmt.Sprintf("%-10s", key+":")), value)
	}

	sb.WriteString(styles.Title.Render("Tagging Plan"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtle.Render("run " + result.RunID + ", nothing will be changed"))
	sb.WriteString("\n\n")

	row("Outcome", outcomeDisplay(result.Outcome))
	row("Labels", strings.Join(cfg.BumpLabels().Names(), ", "))

	switch {
	case result.Label != "":
		row("Decision", fmt.Sprintf("%s (label %s)", result.Decision, result.Label))
	case len(result.Matched) > 1:
		row("Decision", fmt.Sprintf("%s (labels %s)", result.Decision, strings.Join(result.Matched, ", ")))
	case result.Decision != "":
		row("Decision", result.Decision)
	}

	if result.Next != "" {
		row("Version", fmt.Sprintf("%s → %s", result.Current, styles.Success.Render(result.Next)))
	}
	if result.Phase != "" {
		row("Phase", string(result.Phase))
	}
	if result.Outcome == apprelease.OutcomeApply {
		row("Tag", "would create "+result.Next)
		for _, t := range result.Triggered {
			row("Dispatch", fmt.Sprintf("%s (%d)", t.Name, t.ID))
		}
	}
	if result.CommentMutation != "" {
		mode := string(result.CommentMutation)
		if result.UpdateOnly {
			mode += " (update only)"
		}
		row("Comment", mode)
	}
	if result.Error != "" {
		row("Error", styles.Error.Render(result.Error))
	}

	if result.Comment != "" {
		sb.WriteString("\n")
		for _, line := range strings.Split(result.Comment, "\n") {
			sb.WriteString(styles.Subtle.Render("  │ "))
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func outcomeDisplay(o apprelease.Outcome) string {
	switch o {
	case apprelease.OutcomeApply, apprelease.OutcomePreview:
		return styles.Success.Render(string(o))
	case apprelease.OutcomeAmbiguous, apprelease.OutcomeSuppress:
		return styles.Warning.Render(string(o))
	case apprelease.OutcomeFailed:
		return styles.Error.Render(string(o))
	default:
		return styles.Info.Render(string(o))
	}
}

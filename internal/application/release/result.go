package release

import (
	"github.com/projectsyn/pr-label-tag-action/internal/application/comment"
	"github.com/projectsyn/pr-label-tag-action/internal/application/dispatch"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/release"
)

// Outcome summarizes how a run ended.
type Outcome string

const (
	OutcomeNoDecision Outcome = "no_decision"
	OutcomeAmbiguous  Outcome = "ambiguous"
	OutcomePreview    Outcome = "preview"
	OutcomeApply      Outcome = "apply"
	OutcomeSuppress   Outcome = "suppress"
	OutcomeFailed     Outcome = "failed"
)

// Result describes what a run did, or would have done in dry-run mode.
type Result struct {
	RunID    string           `json:"run_id" yaml:"run_id"`
	DryRun   bool             `json:"dry_run" yaml:"dry_run"`
	Outcome  Outcome          `json:"outcome" yaml:"outcome"`
	State    release.RunState `json:"state" yaml:"state"`
	Phase    release.Phase    `json:"phase,omitempty" yaml:"phase,omitempty"`
	Decision string           `json:"decision,omitempty" yaml:"decision,omitempty"`
	Matched  []string         `json:"matched_labels,omitempty" yaml:"matched_labels,omitempty"`
	Label    string           `json:"label,omitempty" yaml:"label,omitempty"`
	Current  string           `json:"current_version,omitempty" yaml:"current_version,omitempty"`
	Next     string           `json:"next_version,omitempty" yaml:"next_version,omitempty"`

	Comment         string           `json:"comment,omitempty" yaml:"comment,omitempty"`
	UpdateOnly      bool             `json:"update_only,omitempty" yaml:"update_only,omitempty"`
	CommentMutation comment.Mutation `json:"comment_mutation,omitempty" yaml:"comment_mutation,omitempty"`

	Tagged    bool                 `json:"tagged" yaml:"tagged"`
	Workflows []string             `json:"workflows,omitempty" yaml:"workflows,omitempty"`
	Triggered []dispatch.Triggered `json:"triggered,omitempty" yaml:"triggered,omitempty"`

	History []release.RunState `json:"history" yaml:"history"`
	Error   string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Recorder receives run measurements. The observability package provides
// the Prometheus implementation.
type Recorder interface {
	RecordRun(outcome string)
	RecordDecision(decision string)
	RecordTagPublished()
	RecordWorkflowsDispatched(n int)
	RecordCommentMutation(op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRun(string)              {}
func (nopRecorder) RecordDecision(string)         {}
func (nopRecorder) RecordTagPublished()           {}
func (nopRecorder) RecordWorkflowsDispatched(int) {}
func (nopRecorder) RecordCommentMutation(string)  {}

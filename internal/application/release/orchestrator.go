// Package release provides the use case that drives one tagging run from the
// triggering pull request event to the final status comment.
package release

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"

	"github.com/projectsyn/pr-label-tag-action/internal/application/comment"
	"github.com/projectsyn/pr-label-tag-action/internal/application/dispatch"
	"github.com/projectsyn/pr-label-tag-action/internal/application/versioning"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/bump"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/event"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/release"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// Dependencies holds the collaborators of an Orchestrator.
type Dependencies struct {
	PullRequests sourcecontrol.PullRequestReader
	Comments     sourcecontrol.CommentStore
	Publisher    sourcecontrol.TagPublisher
	Versions     *versioning.CalculateVersionUseCase
	Dispatcher   *dispatch.Dispatcher
	Recorder     Recorder
	Logger       *slog.Logger
}

// Options configures the behavior of an Orchestrator.
type Options struct {
	Labels    bump.Labels
	Templates release.Templates
	BotLogin  string
	// DryRun resolves every decision but skips tag creation, workflow
	// dispatch and comment mutation.
	DryRun bool
}

// Orchestrator runs the tagging workflow for a pull request event.
type Orchestrator struct {
	deps   Dependencies
	opts   Options
	logger *slog.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(deps Dependencies, opts Options) *Orchestrator {
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Orchestrator{
		deps:   deps,
		opts:   opts,
		logger: deps.Logger.With("usecase", "orchestrate"),
	}
}

// run carries the per-run state through the phases.
type run struct {
	ev       *event.Context
	machine  *release.RunMachine
	comments *comment.Manager
	logger   *slog.Logger
	result   *Result
}

func (r *run) fire(ev statekit.EventType, want release.RunState) error {
	return r.machine.Fire(ev, want)
}

// Run executes one run for ev. runID tags logs and the result; an empty
// runID gets a fresh UUID. The returned Result is populated as far as the
// run got, also when an error is returned.
func (o *Orchestrator) Run(ctx context.Context, ev *event.Context, runID string) (*Result, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	machine, err := release.NewRunMachine()
	if err != nil {
		return nil, rperrors.Wrap(err, rperrors.KindInternal, "release.Run", "failed to create run state machine")
	}
	machine.Start()

	logger := o.logger.With("run_id", runID)
	r := &run{
		ev:       ev,
		machine:  machine,
		comments: comment.NewManager(o.deps.Comments, ev, o.opts.BotLogin, logger),
		logger:   logger,
		result:   &Result{RunID: runID, DryRun: o.opts.DryRun},
	}

	err = o.execute(ctx, r)
	if err != nil {
		machine.Fail()
		r.result.Outcome = OutcomeFailed
		r.result.Error = rperrors.RedactSensitive(err.Error())
	}
	r.result.State = machine.State()
	r.result.History = machine.History()
	o.deps.Recorder.RecordRun(string(r.result.Outcome))

	logger.Debug("run finished", "state", r.result.State, "outcome", r.result.Outcome)
	return r.result, err
}

func (o *Orchestrator) execute(ctx context.Context, r *run) error {
	const op = "release.Run"

	// VALIDATE_EVENT
	if !r.ev.IsPullRequest() {
		return r.ev.UnsupportedError(op)
	}
	if err := r.fire(release.EventValidate, release.StateValidated); err != nil {
		return err
	}

	labels := o.opts.Labels
	r.logger.Debug(fmt.Sprintf("Using %s, %s, %s to determine SemVer bump ...", labels.Patch, labels.Minor, labels.Major))

	// CLASSIFY
	pr, _ := r.ev.PullRequest()
	current, err := o.deps.PullRequests.Labels(ctx, pr.Number)
	if err != nil {
		return rperrors.UpstreamWrap(err, op, "failed to read pull request labels")
	}

	decision, err := bump.Classify(labels, current)
	if err != nil {
		return err
	}
	r.result.Decision = decision.String()
	r.result.Matched = decision.Matched()
	o.deps.Recorder.RecordDecision(decision.String())

	switch d := decision.(type) {
	case bump.NoneFound:
		return o.noDecision(ctx, r)
	case bump.Ambiguous:
		return o.ambiguous(ctx, r, d)
	case bump.Decided:
		return o.decided(ctx, r, d)
	default:
		return rperrors.Internal(op, fmt.Sprintf("unhandled bump decision %T", decision))
	}
}

func (o *Orchestrator) noDecision(ctx context.Context, r *run) error {
	r.logger.Info("No bump labels found")
	r.result.Outcome = OutcomeNoDecision
	if err := r.fire(release.EventNoLabels, release.StateNoDecision); err != nil {
		return err
	}

	if r.ev.Action() == release.ActionUnlabeled {
		body := release.NoLabelsBody(o.opts.Labels.Names())
		if err := o.comment(ctx, r, body, true); err != nil {
			return err
		}
	}
	return r.fire(release.EventFinish, release.StateDone)
}

func (o *Orchestrator) ambiguous(ctx context.Context, r *run, d bump.Ambiguous) error {
	r.logger.Warn("Multiple bump labels found: " + d.Quoted())
	r.result.Outcome = OutcomeAmbiguous
	if err := r.fire(release.EventAmbiguous, release.StateAmbiguous); err != nil {
		return err
	}

	if err := o.comment(ctx, r, release.AmbiguousBody(d.Labels), false); err != nil {
		return err
	}
	return r.fire(release.EventFinish, release.StateDone)
}

func (o *Orchestrator) decided(ctx context.Context, r *run, d bump.Decided) error {
	const op = "release.Run"

	r.result.Label = d.Label
	if err := r.fire(release.EventDecided, release.StateDecided); err != nil {
		return err
	}

	// COMPUTE_VERSION
	calc, err := o.deps.Versions.Execute(ctx, d.Kind)
	if err != nil {
		return err
	}
	next := calc.NextVersion
	r.result.Current = calc.CurrentVersion.String()
	r.result.Next = next
	if err := r.fire(release.EventVersioned, release.StateVersioned); err != nil {
		return err
	}

	// BRANCH_ON_PHASE
	phase := release.PhaseOf(r.ev.Action(), r.ev.Merged())
	r.result.Phase = phase
	repoURL := release.ReleaseURL(r.ev.ServerURL(), r.ev.Owner(), r.ev.Repo(), next)
	workflows := o.deps.Dispatcher.Preview()
	r.result.Workflows = workflows

	var body string
	switch phase {
	case release.PhaseOpen:
		r.result.Outcome = OutcomePreview
		if err := r.fire(release.EventPreview, release.StatePreview); err != nil {
			return err
		}
		body = release.PreviewBody(o.opts.Templates, next, repoURL, d.Label, workflows)

	case release.PhaseMerged:
		r.result.Outcome = OutcomeApply
		if err := r.fire(release.EventApply, release.StateApply); err != nil {
			return err
		}
		if err := o.apply(ctx, r, next); err != nil {
			return err
		}
		r.result.Workflows = dispatch.Names(r.result.Triggered)
		body = release.ReleasedBody(o.opts.Templates, next, repoURL, d.Label, r.result.Workflows)

	case release.PhaseClosedUnmerged:
		r.result.Outcome = OutcomeSuppress
		if err := r.fire(release.EventSuppress, release.StateSuppress); err != nil {
			return err
		}
		body = release.UnmergedBody(o.opts.Templates, next, repoURL)

	default:
		return rperrors.Internal(op, fmt.Sprintf("unhandled pull request phase %q", phase))
	}

	if err := o.comment(ctx, r, body, false); err != nil {
		return err
	}
	return r.fire(release.EventFinish, release.StateDone)
}

// apply publishes the tag, then triggers the downstream workflows. Nothing
// is rolled back when a later step fails.
func (o *Orchestrator) apply(ctx context.Context, r *run, next string) error {
	const op = "release.Apply"

	if o.opts.DryRun {
		targets, err := o.deps.Dispatcher.Resolve(ctx)
		if err != nil {
			return err
		}
		r.result.Triggered = targets
		r.logger.Info("dry run, not creating tag", "tag", next)
		return nil
	}

	target := r.ev.MergeCommitSHA()
	r.logger.Info("creating tag", "tag", next, "commit", target)
	if err := o.deps.Publisher.CreateTag(ctx, next, target); err != nil {
		if rperrors.GetKind(err) == rperrors.KindUnknown {
			err = rperrors.PublishWrap(err, op, fmt.Sprintf("failed to create tag %s", next))
		}
		return err
	}
	r.result.Tagged = true
	o.deps.Recorder.RecordTagPublished()

	triggered, err := o.deps.Dispatcher.Trigger(ctx, next)
	r.result.Triggered = triggered
	o.deps.Recorder.RecordWorkflowsDispatched(len(triggered))
	return err
}

// comment writes body through the status comment manager and records the
// COMMENT transition.
func (o *Orchestrator) comment(ctx context.Context, r *run, body string, updateOnly bool) error {
	r.result.Comment = body
	r.result.UpdateOnly = updateOnly

	if o.opts.DryRun {
		plan, err := r.comments.Plan(ctx, updateOnly)
		if err != nil {
			return err
		}
		r.result.CommentMutation = plan.Mutation
	} else {
		mutation, err := r.comments.Upsert(ctx, body, updateOnly)
		if err != nil {
			return err
		}
		r.result.CommentMutation = mutation
		if mutation != comment.MutationSkip {
			o.deps.Recorder.RecordCommentMutation(string(mutation))
		}
	}

	return r.fire(release.EventComment, release.StateCommented)
}

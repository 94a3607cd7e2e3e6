package release

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectsyn/pr-label-tag-action/internal/application/comment"
	"github.com/projectsyn/pr-label-tag-action/internal/application/dispatch"
	"github.com/projectsyn/pr-label-tag-action/internal/application/versioning"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/bump"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/event"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/release"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

const mergeSHA = "0123456789abcdef0123456789abcdef01234567"

var testLabels = bump.Labels{Patch: "bump:patch", Minor: "bump:minor", Major: "bump:major"}

// fakeHost implements every sourcecontrol port in memory.
type fakeHost struct {
	labels    []string
	tags      sourcecontrol.TagList
	comments  []sourcecontrol.Comment
	workflows []sourcecontrol.Workflow

	labelsErr   error
	tagsErr     error
	createErr   error
	commentErr  error
	dispatchErr error

	createdTags []string
	tagTargets  []string
	created     []string
	updated     map[int64]string
	dispatched  []string
	calls       []string
}

func (f *fakeHost) Labels(ctx context.Context, number int) ([]string, error) {
	f.calls = append(f.calls, "labels")
	return f.labels, f.labelsErr
}

func (f *fakeHost) ListTags(ctx context.Context) (sourcecontrol.TagList, error) {
	f.calls = append(f.calls, "list-tags")
	return f.tags, f.tagsErr
}

func (f *fakeHost) CreateTag(ctx context.Context, name, target string) error {
	f.calls = append(f.calls, "create-tag")
	if f.createErr != nil {
		return f.createErr
	}
	f.createdTags = append(f.createdTags, name)
	f.tagTargets = append(f.tagTargets, target)
	return nil
}

func (f *fakeHost) ListComments(ctx context.Context, number int) ([]sourcecontrol.Comment, error) {
	f.calls = append(f.calls, "list-comments")
	return f.comments, nil
}

func (f *fakeHost) CreateComment(ctx context.Context, number int, body string) error {
	f.calls = append(f.calls, "create-comment")
	if f.commentErr != nil {
		return f.commentErr
	}
	f.created = append(f.created, body)
	return nil
}

func (f *fakeHost) UpdateComment(ctx context.Context, id int64, body string) error {
	f.calls = append(f.calls, "update-comment")
	if f.commentErr != nil {
		return f.commentErr
	}
	if f.updated == nil {
		f.updated = map[int64]string{}
	}
	f.updated[id] = body
	return nil
}

func (f *fakeHost) ListWorkflows(ctx context.Context) ([]sourcecontrol.Workflow, error) {
	f.calls = append(f.calls, "list-workflows")
	return f.workflows, nil
}

func (f *fakeHost) DispatchWorkflow(ctx context.Context, id int64, ref string) error {
	f.calls = append(f.calls, "dispatch")
	if f.dispatchErr != nil {
		return f.dispatchErr
	}
	f.dispatched = append(f.dispatched, ref)
	return nil
}

// mutations lists the calls that change state on the host.
func (f *fakeHost) mutations() []string {
	var out []string
	for _, c := range f.calls {
		switch c {
		case "create-tag", "create-comment", "update-comment", "dispatch":
			out = append(out, c)
		}
	}
	return out
}

type fakeRecorder struct {
	runs      []string
	decisions []string
	tags      int
	workflows int
	mutations []string
}

func (r *fakeRecorder) RecordRun(outcome string)        { r.runs = append(r.runs, outcome) }
func (r *fakeRecorder) RecordDecision(decision string)  { r.decisions = append(r.decisions, decision) }
func (r *fakeRecorder) RecordTagPublished()             { r.tags++ }
func (r *fakeRecorder) RecordWorkflowsDispatched(n int) { r.workflows += n }
func (r *fakeRecorder) RecordCommentMutation(op string) { r.mutations = append(r.mutations, op) }

func newOrchestrator(host *fakeHost, rec Recorder, triggers []string, dryRun bool) *Orchestrator {
	history := versioning.NewTagHistory(host, nil)
	return NewOrchestrator(Dependencies{
		PullRequests: host,
		Comments:     host,
		Publisher:    host,
		Versions:     versioning.NewCalculateVersionUseCase(history, nil),
		Dispatcher:   dispatch.NewDispatcher(host, triggers, nil),
		Recorder:     rec,
	}, Options{
		Labels:    testLabels,
		Templates: release.DefaultTemplates(),
		DryRun:    dryRun,
	})
}

func prEvent(t *testing.T, action string, merged bool) *event.Context {
	t.Helper()
	ev, err := event.New(event.Options{
		EventName:  "pull_request",
		Action:     action,
		Repository: "projectsyn/pr-label-tag-action",
		ServerURL:  "https://github.com",
		PullRequest: &event.PullRequestRef{
			Number:         17,
			Merged:         merged,
			MergeCommitSHA: mergeSHA,
		},
	})
	require.NoError(t, err)
	return ev
}

func TestOrchestrator_OpenPullRequest(t *testing.T) {
	host := &fakeHost{
		labels: []string{"dependency", "bump:patch"},
		tags:   sourcecontrol.TagList{"v1.2.3", "v1.2.2", "bar"},
	}
	rec := &fakeRecorder{}

	res, err := newOrchestrator(host, rec, nil, false).Run(context.Background(), prEvent(t, "labeled", false), "run-1")
	require.NoError(t, err)

	assert.Equal(t, "🚀 Merging this PR will release `v1.2.4`\n\n"+
		"🛠️ _Auto tagging enabled_ with label `bump:patch`", res.Comment)
	assert.Equal(t, []string{res.Comment}, host.created)
	assert.Empty(t, host.createdTags)
	assert.Empty(t, host.dispatched)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, OutcomePreview, res.Outcome)
	assert.Equal(t, release.StateDone, res.State)
	assert.Equal(t, release.PhaseOpen, res.Phase)
	assert.Equal(t, "v1.2.3", res.Current)
	assert.Equal(t, "v1.2.4", res.Next)
	assert.Equal(t, "bump:patch", res.Label)
	assert.Equal(t, comment.MutationCreate, res.CommentMutation)
	assert.Equal(t, []release.RunState{
		release.StateStart, release.StateValidated, release.StateDecided, release.StateVersioned,
		release.StatePreview, release.StateCommented, release.StateDone,
	}, res.History)

	assert.Equal(t, []string{"preview"}, rec.runs)
	assert.Equal(t, []string{"patch"}, rec.decisions)
	assert.Equal(t, []string{"create"}, rec.mutations)
}

func TestOrchestrator_OpenPullRequestListsWorkflows(t *testing.T) {
	host := &fakeHost{labels: []string{"bump:patch"}, tags: sourcecontrol.TagList{"v1.2.3"}}

	res, err := newOrchestrator(host, nil, []string{"Foo", "bar"}, false).Run(context.Background(), prEvent(t, "opened", false), "")
	require.NoError(t, err)

	assert.Equal(t, "🚀 Merging this PR will release `v1.2.4`\n\n"+
		"Merging will trigger workflows `Foo`, `bar`\n\n"+
		"🛠️ _Auto tagging enabled_ with label `bump:patch`", res.Comment)
	assert.NotEmpty(t, res.RunID)
	assert.NotContains(t, host.calls, "list-workflows")
}

func TestOrchestrator_MergedPullRequest(t *testing.T) {
	host := &fakeHost{
		labels:    []string{"bump:patch"},
		tags:      sourcecontrol.TagList{"v1.2.3"},
		workflows: []sourcecontrol.Workflow{{ID: 1, Name: "Foo"}, {ID: 2, Name: "bar"}},
		comments: []sourcecontrol.Comment{{
			ID:        99,
			Author:    comment.DefaultBotLogin,
			Body:      "🚀 Merging this PR will release `v1.2.4`\n\n🛠️ _Auto tagging enabled_ with label `bump:patch`",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	rec := &fakeRecorder{}

	res, err := newOrchestrator(host, rec, []string{"Foo", "bar"}, false).Run(context.Background(), prEvent(t, "closed", true), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"v1.2.4"}, host.createdTags)
	assert.Equal(t, []string{mergeSHA}, host.tagTargets)
	assert.Equal(t, []string{"refs/tags/v1.2.4", "refs/tags/v1.2.4"}, host.dispatched)
	assert.Equal(t, []string{"create-tag", "dispatch", "dispatch", "update-comment"}, host.mutations())

	want := "🚀 This PR has been released as [`v1.2.4`](https://github.com/projectsyn/pr-label-tag-action/releases/tag/v1.2.4)\n\n" +
		"Triggering workflows `Foo`, `bar`\n\n" +
		"🛠️ _Auto tagging enabled_ with label `bump:patch`"
	assert.Equal(t, map[int64]string{99: want}, host.updated)
	assert.Empty(t, host.created)

	assert.Equal(t, OutcomeApply, res.Outcome)
	assert.True(t, res.Tagged)
	assert.Equal(t, []dispatch.Triggered{{Name: "Foo", ID: 1}, {Name: "bar", ID: 2}}, res.Triggered)
	assert.Equal(t, 1, rec.tags)
	assert.Equal(t, 2, rec.workflows)
	assert.Equal(t, []string{"update"}, rec.mutations)
}

func TestOrchestrator_MergedMinorBump(t *testing.T) {
	host := &fakeHost{
		labels:    []string{"bump:minor"},
		tags:      sourcecontrol.TagList{"v1.2.3", "v1.2.2"},
		workflows: []sourcecontrol.Workflow{{ID: 5, Name: "Release"}},
	}

	res, err := newOrchestrator(host, nil, []string{"Release"}, false).Run(context.Background(), prEvent(t, "closed", true), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"v1.3.0"}, host.createdTags)
	assert.Equal(t, []string{mergeSHA}, host.tagTargets)
	assert.Equal(t, []string{"refs/tags/v1.3.0"}, host.dispatched)
	assert.Equal(t, "v1.2.3", res.Current)
	assert.Equal(t, "v1.3.0", res.Next)
	assert.Equal(t, []string{"create-tag", "dispatch", "create-comment"}, host.mutations())
	assert.Equal(t, []string{"🚀 This PR has been released as [`v1.3.0`](https://github.com/projectsyn/pr-label-tag-action/releases/tag/v1.3.0)\n\n" +
		"Triggering workflows `Release`\n\n" +
		"🛠️ _Auto tagging enabled_ with label `bump:minor`"}, host.created)
}

func TestOrchestrator_MergedAnnouncesOnlyDispatchedWorkflows(t *testing.T) {
	host := &fakeHost{
		labels:    []string{"bump:patch"},
		tags:      sourcecontrol.TagList{"v1.2.3"},
		workflows: []sourcecontrol.Workflow{{ID: 1, Name: "Foo"}, {ID: 4, Name: "Foo"}},
	}

	res, err := newOrchestrator(host, nil, []string{"Foo", "Missing"}, false).Run(context.Background(), prEvent(t, "closed", true), "")
	require.NoError(t, err)

	assert.Equal(t, []dispatch.Triggered{{Name: "Foo", ID: 1}, {Name: "Foo", ID: 4}}, res.Triggered)
	assert.Equal(t, []string{"Foo"}, res.Workflows)
	assert.Contains(t, res.Comment, "Triggering workflows `Foo`\n\n")
	assert.NotContains(t, res.Comment, "Missing")
}

func TestOrchestrator_MergedWithoutMatchingWorkflows(t *testing.T) {
	host := &fakeHost{labels: []string{"bump:patch"}, tags: sourcecontrol.TagList{"v1.2.3"}}

	res, err := newOrchestrator(host, nil, []string{"Missing"}, false).Run(context.Background(), prEvent(t, "closed", true), "")
	require.NoError(t, err)

	assert.Empty(t, res.Triggered)
	assert.NotContains(t, res.Comment, "Triggering workflows")
}

func TestOrchestrator_ClosedUnmerged(t *testing.T) {
	host := &fakeHost{labels: []string{"bump:minor"}, tags: sourcecontrol.TagList{"v1.2.3"}}

	res, err := newOrchestrator(host, nil, []string{"Foo"}, false).Run(context.Background(), prEvent(t, "closed", false), "")
	require.NoError(t, err)

	assert.Equal(t, "🚀 This PR has been closed unmerged. No new release will be created for these changes\n\n"+
		"🛠️ _Auto tagging disabled_", res.Comment)
	assert.Equal(t, []string{"create-comment"}, host.mutations())
	assert.Equal(t, OutcomeSuppress, res.Outcome)
	assert.Equal(t, release.PhaseClosedUnmerged, res.Phase)
	assert.Equal(t, "v1.3.0", res.Next)
	assert.False(t, res.Tagged)
}

func TestOrchestrator_MultipleLabels(t *testing.T) {
	host := &fakeHost{labels: []string{"bump:patch", "bump:minor"}, tags: sourcecontrol.TagList{"v1.2.3"}}
	rec := &fakeRecorder{}

	res, err := newOrchestrator(host, rec, nil, false).Run(context.Background(), prEvent(t, "labeled", false), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Found 2 bump labels (`bump:patch`, `bump:minor`), please make sure you only add one bump label.\n\n" +
		"🛠️ _Auto tagging disabled_"}, host.created)
	assert.NotContains(t, host.calls, "list-tags", "version state is not touched")
	assert.Equal(t, OutcomeAmbiguous, res.Outcome)
	assert.Equal(t, []string{"bump:patch", "bump:minor"}, res.Matched)
	assert.Equal(t, release.StateDone, res.State)
	assert.Equal(t, []string{"ambiguous"}, rec.decisions)
}

func TestOrchestrator_NoLabels(t *testing.T) {
	host := &fakeHost{labels: []string{"dependency"}}

	res, err := newOrchestrator(host, nil, nil, false).Run(context.Background(), prEvent(t, "labeled", false), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"labels"}, host.calls)
	assert.Equal(t, OutcomeNoDecision, res.Outcome)
	assert.Empty(t, res.Comment)
	assert.Equal(t, []release.RunState{
		release.StateStart, release.StateValidated, release.StateNoDecision, release.StateDone,
	}, res.History)
}

func TestOrchestrator_NoLabelsOnUnlabeled(t *testing.T) {
	t.Run("updates existing comment", func(t *testing.T) {
		host := &fakeHost{comments: []sourcecontrol.Comment{{
			ID:     5,
			Author: comment.DefaultBotLogin,
			Body:   "🚀 Merging this PR will release `v1.2.4`\n\n🛠️ _Auto tagging enabled_ with label `bump:patch`",
		}}}

		res, err := newOrchestrator(host, nil, nil, false).Run(context.Background(), prEvent(t, "unlabeled", false), "")
		require.NoError(t, err)

		assert.True(t, res.UpdateOnly)
		assert.Equal(t, comment.MutationUpdate, res.CommentMutation)
		require.Contains(t, host.updated, int64(5))
		assert.Contains(t, host.updated[5], "🛠️ _Auto tagging disabled_")
	})

	t.Run("never creates a comment", func(t *testing.T) {
		host := &fakeHost{}

		res, err := newOrchestrator(host, nil, nil, false).Run(context.Background(), prEvent(t, "unlabeled", false), "")
		require.NoError(t, err)

		assert.Empty(t, host.mutations())
		assert.Equal(t, comment.MutationSkip, res.CommentMutation)
		assert.Equal(t, release.StateDone, res.State)
	})
}

func TestOrchestrator_WrongEvent(t *testing.T) {
	host := &fakeHost{labels: []string{"bump:patch"}}
	ev, err := event.New(event.Options{EventName: "push", Repository: "o/r"})
	require.NoError(t, err)
	rec := &fakeRecorder{}

	res, err := newOrchestrator(host, rec, nil, false).Run(context.Background(), ev, "")
	require.Error(t, err)
	assert.True(t, rperrors.IsKind(err, rperrors.KindContext))
	assert.Contains(t, err.Error(), "running for a 'push' event, only 'pull_request' events are supported")
	assert.Empty(t, host.calls, "no I/O before the event is validated")
	assert.Equal(t, release.StateFailed, res.State)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, []string{"failed"}, rec.runs)
}

func TestOrchestrator_CollaboratorFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name          string
		host          *fakeHost
		ev            func(t *testing.T) *event.Context
		kind          rperrors.Kind
		wantMutations []string
	}{
		{
			name: "labels",
			host: &fakeHost{labelsErr: boom},
			ev:   func(t *testing.T) *event.Context { return prEvent(t, "labeled", false) },
			kind: rperrors.KindUpstream,
		},
		{
			name: "tags",
			host: &fakeHost{labels: []string{"bump:patch"}, tagsErr: boom},
			ev:   func(t *testing.T) *event.Context { return prEvent(t, "closed", true) },
			kind: rperrors.KindUpstream,
		},
		{
			name: "create tag",
			host: &fakeHost{labels: []string{"bump:patch"}, createErr: boom},
			ev:   func(t *testing.T) *event.Context { return prEvent(t, "closed", true) },
			kind: rperrors.KindPublish,
		},
		{
			name: "dispatch keeps the tag",
			host: &fakeHost{
				labels:      []string{"bump:patch"},
				workflows:   []sourcecontrol.Workflow{{ID: 1, Name: "Foo"}},
				dispatchErr: boom,
			},
			ev:            func(t *testing.T) *event.Context { return prEvent(t, "closed", true) },
			kind:          rperrors.KindPublish,
			wantMutations: []string{"create-tag", "dispatch"},
		},
		{
			name: "comment",
			host: &fakeHost{labels: []string{"bump:major"}, commentErr: boom},
			ev:   func(t *testing.T) *event.Context { return prEvent(t, "opened", false) },
			kind: rperrors.KindPublish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newOrchestrator(tt.host, nil, []string{"Foo"}, false).Run(context.Background(), tt.ev(t), "")
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.kind, rperrors.GetKind(err))
			assert.Equal(t, release.StateFailed, res.State)
			assert.NotEmpty(t, res.Error)
			if tt.wantMutations != nil {
				assert.Equal(t, tt.wantMutations, tt.host.mutations())
			}
		})
	}
}

func TestOrchestrator_DryRun(t *testing.T) {
	host := &fakeHost{
		labels:    []string{"bump:major"},
		tags:      sourcecontrol.TagList{"v0.1.2"},
		workflows: []sourcecontrol.Workflow{{ID: 3, Name: "Foo"}},
	}
	rec := &fakeRecorder{}

	res, err := newOrchestrator(host, rec, []string{"Foo"}, true).Run(context.Background(), prEvent(t, "closed", true), "")
	require.NoError(t, err)

	assert.Empty(t, host.mutations())
	assert.True(t, res.DryRun)
	assert.False(t, res.Tagged)
	assert.Equal(t, "v1.0.0", res.Next)
	assert.Equal(t, comment.MutationCreate, res.CommentMutation)
	assert.Equal(t, []dispatch.Triggered{{Name: "Foo", ID: 3}}, res.Triggered)
	assert.Contains(t, res.Comment, "released as [`v1.0.0`]")
	assert.Zero(t, rec.tags)
	assert.Empty(t, rec.mutations)
}

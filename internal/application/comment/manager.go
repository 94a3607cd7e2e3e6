// Package comment maintains the single status comment the action keeps on a
// pull request.
package comment

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/event"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/release"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// DefaultBotLogin is the login comments created with the workflow token
// are attributed to.
const DefaultBotLogin = "github-actions[bot]"

// Mutation describes what an upsert did, or would do.
type Mutation string

const (
	// MutationCreate creates a new status comment.
	MutationCreate Mutation = "create"
	// MutationUpdate edits the existing status comment.
	MutationUpdate Mutation = "update"
	// MutationSkip leaves the pull request untouched.
	MutationSkip Mutation = "skip"
)

// Plan is the resolved upsert target.
type Plan struct {
	Mutation Mutation
	// CommentID is the comment that gets edited for MutationUpdate.
	CommentID int64
	// Owned is the number of comments recognized as status comments.
	Owned int
}

// Manager creates or edits the status comment of the current pull request.
type Manager struct {
	store    sourcecontrol.CommentStore
	ev       *event.Context
	botLogin string
	logger   *slog.Logger
}

// NewManager creates a new Manager. An empty botLogin selects DefaultBotLogin.
func NewManager(store sourcecontrol.CommentStore, ev *event.Context, botLogin string, logger *slog.Logger) *Manager {
	if botLogin == "" {
		botLogin = DefaultBotLogin
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		ev:       ev,
		botLogin: botLogin,
		logger:   logger.With("component", "comment"),
	}
}

// Owns reports whether c is a status comment written by this action.
func (m *Manager) Owns(c sourcecontrol.Comment) bool {
	return c.Author == m.botLogin && strings.Contains(c.Body, release.Marker)
}

// Plan resolves which comment an upsert would touch without mutating anything.
func (m *Manager) Plan(ctx context.Context, updateOnly bool) (Plan, error) {
	const op = "comment.Plan"

	pr, ok := m.ev.PullRequest()
	if !ok {
		return Plan{}, m.ev.UnsupportedError(op)
	}

	comments, err := m.store.ListComments(ctx, pr.Number)
	if err != nil {
		return Plan{}, rperrors.UpstreamWrap(err, op, "failed to list pull request comments")
	}

	owned := make([]sourcecontrol.Comment, 0, 1)
	for _, c := range comments {
		if m.Owns(c) {
			owned = append(owned, c)
		}
	}
	slices.SortStableFunc(owned, func(a, b sourcecontrol.Comment) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	switch {
	case len(owned) > 0:
		if len(owned) > 1 {
			m.logger.Warn("Multiple potential comments owned by this action found, editing oldest",
				"count", len(owned))
		}
		return Plan{Mutation: MutationUpdate, CommentID: owned[0].ID, Owned: len(owned)}, nil
	case updateOnly:
		m.logger.Debug("No comment exists, and updateOnly=true, do nothing")
		return Plan{Mutation: MutationSkip}, nil
	default:
		return Plan{Mutation: MutationCreate}, nil
	}
}

// Upsert writes body to the status comment. It edits the oldest owned
// comment if one exists, otherwise creates one unless updateOnly is set.
func (m *Manager) Upsert(ctx context.Context, body string, updateOnly bool) (Mutation, error) {
	const op = "comment.Upsert"

	plan, err := m.Plan(ctx, updateOnly)
	if err != nil {
		return MutationSkip, err
	}

	pr, _ := m.ev.PullRequest()
	switch plan.Mutation {
	case MutationUpdate:
		if err := m.store.UpdateComment(ctx, plan.CommentID, body); err != nil {
			return MutationSkip, rperrors.PublishWrap(err, op, "failed to update status comment")
		}
		m.logger.Debug("updated status comment", "comment_id", plan.CommentID, "pr", pr.Number)
	case MutationCreate:
		if err := m.store.CreateComment(ctx, pr.Number, body); err != nil {
			return MutationSkip, rperrors.PublishWrap(err, op, "failed to create status comment")
		}
		m.logger.Debug("created status comment", "pr", pr.Number)
	}
	return plan.Mutation, nil
}

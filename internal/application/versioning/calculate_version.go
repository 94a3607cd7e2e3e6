// Package versioning provides application use cases for version management.
package versioning

import (
	"context"
	"log/slog"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/bump"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/version"
	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// TagHistory reads the release history of a repository from its tags.
type TagHistory struct {
	tags   sourcecontrol.TagLister
	logger *slog.Logger
}

// NewTagHistory creates a new TagHistory.
func NewTagHistory(tags sourcecontrol.TagLister, logger *slog.Logger) *TagHistory {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagHistory{
		tags:   tags,
		logger: logger.With("usecase", "tag_history"),
	}
}

// LatestVersion returns the highest release tag of the repository, or
// version.Floor when there is none. Tags that are not release tags are
// ignored.
func (h *TagHistory) LatestVersion(ctx context.Context) (version.Version, error) {
	tags, err := h.tags.ListTags(ctx)
	if err != nil {
		return version.Version{}, rperrors.UpstreamWrap(err, "versioning.LatestVersion", "failed to list tags")
	}

	versions, skipped := tags.VersionTags()
	for _, name := range skipped {
		h.logger.Debug("ignoring tag that is not a release tag", "tag", name)
	}

	latest := version.Max(versions...)
	h.logger.Debug("latest release tag",
		"version", latest.String(),
		"tags", len(tags),
		"release_tags", len(versions))
	return latest, nil
}

// CalculateVersionOutput represents output of the CalculateVersion use case.
type CalculateVersionOutput struct {
	CurrentVersion version.Version
	NextVersion    string
	Kind           bump.Kind
}

// CalculateVersionUseCase computes the version a bump would release.
type CalculateVersionUseCase struct {
	history *TagHistory
	logger  *slog.Logger
}

// NewCalculateVersionUseCase creates a new CalculateVersionUseCase.
func NewCalculateVersionUseCase(history *TagHistory, logger *slog.Logger) *CalculateVersionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalculateVersionUseCase{
		history: history,
		logger:  logger.With("usecase", "calculate_version"),
	}
}

// Execute executes the calculate version use case.
func (uc *CalculateVersionUseCase) Execute(ctx context.Context, kind bump.Kind) (*CalculateVersionOutput, error) {
	current, err := uc.history.LatestVersion(ctx)
	if err != nil {
		return nil, err
	}

	next, err := version.Bump(current.String(), kind)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("bumping version", "current", current.String(), "next", next, "bump", kind)

	return &CalculateVersionOutput{
		CurrentVersion: current,
		NextVersion:    next,
		Kind:           kind,
	}, nil
}

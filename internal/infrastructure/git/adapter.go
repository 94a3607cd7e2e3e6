// Package git provides a tag backend that creates tags in a local clone with
// go-git and pushes them to the remote.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
)

// DefaultRemote is the remote tags are pushed to.
const DefaultRemote = "origin"

// tokenUsername is the user name GitHub expects with an installation token.
const tokenUsername = "x-access-token"

var (
	_ sourcecontrol.TagLister    = (*Adapter)(nil)
	_ sourcecontrol.TagPublisher = (*Adapter)(nil)
)

// Options configures an Adapter.
type Options struct {
	// RepoPath is the path of the checked out repository.
	RepoPath string
	// Remote names the remote to push tags to. Defaults to DefaultRemote.
	Remote string
	// Token authenticates the push over HTTPS. Empty disables authentication.
	Token  string
	Logger *slog.Logger
}

// Adapter lists and publishes tags through a local clone.
type Adapter struct {
	repo   *git.Repository
	remote string
	auth   transport.AuthMethod
	logger *slog.Logger
}

// NewAdapter opens the repository at opts.RepoPath.
func NewAdapter(opts Options) (*Adapter, error) {
	path := opts.RepoPath
	if path == "" {
		path = "."
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving repository path %q: %w", path, err)
	}

	repo, err := git.PlainOpen(absPath)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("opening %s: %w", absPath, sourcecontrol.ErrNotARepository)
		}
		return nil, fmt.Errorf("opening %s: %w", absPath, err)
	}

	return newAdapter(repo, opts), nil
}

func newAdapter(repo *git.Repository, opts Options) *Adapter {
	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemote
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		repo:   repo,
		remote: remote,
		logger: logger.With("component", "git"),
	}
	if opts.Token != "" {
		a.auth = &githttp.BasicAuth{Username: tokenUsername, Password: opts.Token}
	}
	return a
}

// ListTags returns the names of every tag in the local repository. The
// checkout must have fetched tags for the result to be complete. Only ctx
// bounds the call.
func (a *Adapter) ListTags(ctx context.Context) (sourcecontrol.TagList, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	iter, err := a.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	tags := sourcecontrol.TagList{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

// CreateTag creates the lightweight tag name at target and pushes it to the
// remote. An empty target tags HEAD.
func (a *Adapter) CreateTag(ctx context.Context, name, target string) error {
	if _, err := a.repo.Tag(name); err == nil {
		return fmt.Errorf("creating tag %s: %w", name, sourcecontrol.ErrTagAlreadyExists)
	} else if !errors.Is(err, git.ErrTagNotFound) {
		return fmt.Errorf("looking up tag %s: %w", name, err)
	}

	hash, err := a.resolveRef(target)
	if err != nil {
		return fmt.Errorf("creating tag %s: %w: %w", name, sourcecontrol.ErrCommitNotFound, err)
	}

	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), hash)
	if err := a.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	a.logger.Debug("created local tag", "tag", name, "commit", hash.String())

	return a.push(ctx, name)
}

func (a *Adapter) push(ctx context.Context, name string) error {
	if _, err := a.repo.Remote(a.remote); err != nil {
		return fmt.Errorf("pushing tag %s: %w: %s", name, sourcecontrol.ErrRemoteNotFound, a.remote)
	}

	ref := sourcecontrol.TagRef(name)
	err := a.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: a.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
		Auth:       a.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
			return fmt.Errorf("pushing tag %s to %s: %w: %w", name, a.remote, sourcecontrol.ErrAuthenticationRequired, err)
		}
		return fmt.Errorf("pushing tag %s to %s: %w: %w", name, a.remote, sourcecontrol.ErrPushFailed, err)
	}

	a.logger.Debug("pushed tag", "tag", name, "remote", a.remote)
	return nil
}

// resolveRef resolves a reference (tag, branch, or commit hash) to a hash.
func (a *Adapter) resolveRef(ref string) (plumbing.Hash, error) {
	if ref == "" {
		ref = "HEAD"
	}
	if plumbing.IsHash(ref) {
		hash := plumbing.NewHash(ref)
		if _, err := a.repo.CommitObject(hash); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("commit %s: %w", ref, err)
		}
		return hash, nil
	}

	resolved, err := a.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to resolve reference %s: %w", ref, err)
	}
	return *resolved, nil
}

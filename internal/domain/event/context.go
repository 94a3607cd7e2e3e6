// Package event describes the workflow event a run was triggered by.
package event

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"

	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
	"github.com/projectsyn/pr-label-tag-action/internal/fileutil"
)

// Environment variables set by the Actions runner.
const (
	EnvEventName  = "GITHUB_EVENT_NAME"
	EnvEventPath  = "GITHUB_EVENT_PATH"
	EnvRepository = "GITHUB_REPOSITORY"
	EnvServerURL  = "GITHUB_SERVER_URL"
	EnvAPIURL     = "GITHUB_API_URL"
)

const (
	// PullRequestEvent is the only event name the action acts on.
	PullRequestEvent = "pull_request"

	// DefaultServerURL is used when GITHUB_SERVER_URL is unset.
	DefaultServerURL = "https://github.com"

	// MaxPayloadSize caps the event payload read from GITHUB_EVENT_PATH.
	MaxPayloadSize = 25 << 20
)

// PullRequestRef identifies the pull request of a pull_request event.
type PullRequestRef struct {
	Number         int
	Merged         bool
	MergeCommitSHA string
}

// Context is the immutable description of the triggering event. It is built
// once per run and passed explicitly to every component that needs it.
type Context struct {
	name      string
	action    string
	owner     string
	repo      string
	serverURL string
	apiURL    string
	pr        *PullRequestRef
}

// Options configures a Context built with New.
type Options struct {
	EventName  string
	Action     string
	Repository string // "owner/repo"
	ServerURL  string
	APIURL     string
	// PullRequest is nil for events that carry no pull request.
	PullRequest *PullRequestRef
}

// New builds a Context from explicit values.
func New(opts Options) (*Context, error) {
	const op = "event.New"

	owner, repo, err := splitRepository(opts.Repository)
	if err != nil {
		return nil, rperrors.Context(op, err.Error())
	}

	c := &Context{
		name:      opts.EventName,
		action:    opts.Action,
		owner:     owner,
		repo:      repo,
		serverURL: strings.TrimSuffix(opts.ServerURL, "/"),
		apiURL:    opts.APIURL,
	}
	if c.serverURL == "" {
		c.serverURL = DefaultServerURL
	}
	if opts.PullRequest != nil {
		ref := *opts.PullRequest
		c.pr = &ref
	}
	return c, nil
}

// FromPayload builds a Context from an event name and its JSON payload.
// The repository may be empty, in which case it is read from the payload.
func FromPayload(name string, payload []byte, repository, serverURL, apiURL string) (*Context, error) {
	const op = "event.FromPayload"

	opts := Options{
		EventName:  name,
		Repository: repository,
		ServerURL:  serverURL,
		APIURL:     apiURL,
	}

	if len(payload) > 0 {
		var ev github.PullRequestEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, rperrors.Wrap(err, rperrors.KindContext, op, "failed to decode event payload")
		}
		opts.Action = ev.GetAction()
		if opts.Repository == "" {
			opts.Repository = ev.GetRepo().GetFullName()
		}
		if pr := ev.GetPullRequest(); pr != nil {
			number := pr.GetNumber()
			if number == 0 {
				number = ev.GetNumber()
			}
			opts.PullRequest = &PullRequestRef{
				Number:         number,
				Merged:         pr.GetMerged(),
				MergeCommitSHA: pr.GetMergeCommitSHA(),
			}
		}
	}

	return New(opts)
}

// Load builds a Context from the Actions runner environment.
func Load(getenv func(string) string) (*Context, error) {
	const op = "event.Load"

	var payload []byte
	if path := getenv(EnvEventPath); path != "" {
		data, err := fileutil.ReadFileLimited(path, MaxPayloadSize)
		if err != nil {
			return nil, rperrors.Wrap(err, rperrors.KindContext, op, "failed to read event payload")
		}
		payload = data
	}

	return FromPayload(getenv(EnvEventName), payload, getenv(EnvRepository), getenv(EnvServerURL), getenv(EnvAPIURL))
}

func splitRepository(full string) (string, string, error) {
	owner, repo, ok := strings.Cut(full, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", full)
	}
	return owner, repo, nil
}

// EventName returns the name of the triggering event.
func (c *Context) EventName() string { return c.name }

// Action returns the event action, e.g. "labeled" or "closed".
func (c *Context) Action() string { return c.action }

// Owner returns the repository owner.
func (c *Context) Owner() string { return c.owner }

// Repo returns the repository name.
func (c *Context) Repo() string { return c.repo }

// Repository returns "owner/repo".
func (c *Context) Repository() string { return c.owner + "/" + c.repo }

// ServerURL returns the web URL of the hosting server.
func (c *Context) ServerURL() string { return c.serverURL }

// APIURL returns the REST API base URL, empty for the public API.
func (c *Context) APIURL() string { return c.apiURL }

// IsPullRequest reports whether the event carries a pull request.
func (c *Context) IsPullRequest() bool { return c.pr != nil }

// PullRequest returns a copy of the pull request reference.
func (c *Context) PullRequest() (PullRequestRef, bool) {
	if c.pr == nil {
		return PullRequestRef{}, false
	}
	return *c.pr, true
}

// Merged reports whether the pull request was merged.
func (c *Context) Merged() bool { return c.pr != nil && c.pr.Merged }

// MergeCommitSHA returns the merge commit of the pull request, if any.
func (c *Context) MergeCommitSHA() string {
	if c.pr == nil {
		return ""
	}
	return c.pr.MergeCommitSHA
}

// UnsupportedError returns the error reported when the run was not triggered
// by a pull request event.
func (c *Context) UnsupportedError(op string) error {
	return rperrors.Context(op, fmt.Sprintf(
		"running for a '%s' event, only '%s' events are supported", c.name, PullRequestEvent))
}

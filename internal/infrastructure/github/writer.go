package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v60/github"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
)

// CreateTag creates the lightweight tag name at commit target through the
// Git references API.
func (c *Client) CreateTag(ctx context.Context, name, target string) error {
	if target == "" {
		return fmt.Errorf("creating tag %s on %s: %w", name, c.fullName(), sourcecontrol.ErrCommitNotFound)
	}

	ref := &gh.Reference{
		Ref:    gh.String(sourcecontrol.TagRef(name)),
		Object: &gh.GitObject{SHA: gh.String(target)},
	}
	_, _, err := c.gh.Git.CreateRef(ctx, c.owner, c.repo, ref)
	if err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("creating tag %s on %s: %w: %w", name, c.fullName(), sourcecontrol.ErrTagAlreadyExists, err)
		}
		return fmt.Errorf("creating tag %s on %s: %w", name, c.fullName(), err)
	}

	c.logger.Debug("created tag", "tag", name, "commit", target)
	return nil
}

// CreateComment adds a conversation comment to pull request number.
func (c *Client) CreateComment(ctx context.Context, number int, body string) error {
	_, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		return fmt.Errorf("creating comment on %s#%d: %w", c.fullName(), number, err)
	}
	return nil
}

// UpdateComment replaces the body of comment id.
func (c *Client) UpdateComment(ctx context.Context, id int64, body string) error {
	_, _, err := c.gh.Issues.EditComment(ctx, c.owner, c.repo, id, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		return fmt.Errorf("editing comment %d on %s: %w", id, c.fullName(), err)
	}
	return nil
}

// DispatchWorkflow fires a workflow_dispatch event for workflow id on ref.
// The API only acknowledges the request; it does not report whether a run
// was started.
func (c *Client) DispatchWorkflow(ctx context.Context, id int64, ref string) error {
	_, err := c.gh.Actions.CreateWorkflowDispatchEventByID(ctx, c.owner, c.repo, id, gh.CreateWorkflowDispatchEventRequest{Ref: ref})
	if err != nil {
		return fmt.Errorf("dispatching workflow %d on %s: %w", id, c.fullName(), err)
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var ghErr *gh.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return false
	}
	return ghErr.Response.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(ghErr.Message), "already exists")
}

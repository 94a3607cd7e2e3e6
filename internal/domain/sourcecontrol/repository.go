// Package sourcecontrol defines the ports through which the tagging workflow
// talks to the hosting platform and the git repository.
package sourcecontrol

import (
	"context"
	"time"
)

// PullRequestReader provides read access to pull request metadata.
type PullRequestReader interface {
	// Labels returns the names of the labels currently attached to the pull
	// request, in the order the platform reports them.
	Labels(ctx context.Context, number int) ([]string, error)
}

// TagLister lists every tag of the repository. Implementations must drain
// all pages before returning.
type TagLister interface {
	ListTags(ctx context.Context) (TagList, error)
}

// TagPublisher creates a tag on the remote repository.
type TagPublisher interface {
	// CreateTag creates the lightweight tag name pointing at the commit
	// target. An empty target means the current HEAD where the backend
	// supports it.
	CreateTag(ctx context.Context, name, target string) error
}

// CommentStore provides access to the conversation comments of a pull request.
type CommentStore interface {
	// ListComments returns every comment of the pull request, in the order
	// the platform reports them.
	ListComments(ctx context.Context, number int) ([]Comment, error)
	CreateComment(ctx context.Context, number int, body string) error
	UpdateComment(ctx context.Context, id int64, body string) error
}

// WorkflowStore provides access to the CI workflows defined in the repository.
type WorkflowStore interface {
	ListWorkflows(ctx context.Context) ([]Workflow, error)
	// DispatchWorkflow fires a workflow_dispatch event for the workflow id on ref.
	DispatchWorkflow(ctx context.Context, id int64, ref string) error
}

// Comment is a pull request conversation comment.
type Comment struct {
	ID        int64
	Body      string
	Author    string
	CreatedAt time.Time
}

// Workflow is a CI workflow definition.
type Workflow struct {
	ID    int64
	Name  string
	Path  string
	State string
}

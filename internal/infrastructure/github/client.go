// Package github implements the source control ports on top of the GitHub
// REST API using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v60/github"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"golang.org/x/oauth2"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
)

// DefaultAPIURL is the REST endpoint of github.com.
const DefaultAPIURL = "https://api.github.com/"

const perPage = 100

// Compile-time interface satisfaction checks.
var (
	_ sourcecontrol.PullRequestReader = (*Client)(nil)
	_ sourcecontrol.TagLister         = (*Client)(nil)
	_ sourcecontrol.TagPublisher      = (*Client)(nil)
	_ sourcecontrol.CommentStore      = (*Client)(nil)
	_ sourcecontrol.WorkflowStore     = (*Client)(nil)
)

// Client implements the source control ports for a single repository.
type Client struct {
	gh     *gh.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// Options configures a Client.
type Options struct {
	Token string
	Owner string
	Repo  string
	// APIURL selects a GitHub Enterprise Server API. Empty means github.com.
	APIURL string
	// CacheDir stores GET responses on disk so later runs revalidate them
	// with ETags. Empty disables caching.
	CacheDir string
	Logger   *slog.Logger
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache over a disk cache, when opts.CacheDir is set
//  2. oauth2 (token authentication)
//  3. http.DefaultTransport
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	var transport http.RoundTripper = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		Base:   http.DefaultTransport,
	}
	if opts.CacheDir != "" {
		cacheTransport := httpcache.NewTransport(diskcache.New(opts.CacheDir))
		cacheTransport.Transport = transport
		cacheTransport.MarkCachedResponses = true
		transport = cacheTransport
	}
	client := gh.NewClient(&http.Client{Transport: transport})

	if opts.APIURL != "" && strings.TrimSuffix(opts.APIURL, "/") != strings.TrimSuffix(DefaultAPIURL, "/") {
		var err error
		client, err = client.WithEnterpriseURLs(opts.APIURL, opts.APIURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise API URL %q: %w", opts.APIURL, err)
		}
	}

	return newClient(client, opts.Owner, opts.Repo, opts.Logger), nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, owner, repo string) (*Client, error) {
	client := gh.NewClient(httpClient)

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return newClient(client, owner, repo, nil), nil
}

func newClient(client *gh.Client, owner, repo string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		gh:     client,
		owner:  owner,
		repo:   repo,
		logger: logger.With("component", "github"),
	}
}

func (c *Client) fullName() string {
	return c.owner + "/" + c.repo
}

// Labels returns the names of the labels on pull request number.
func (c *Client) Labels(ctx context.Context, number int) ([]string, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	names := []string{}

	for {
		labels, resp, err := c.gh.Issues.ListLabelsByIssue(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing labels for %s#%d (page %d): %w", c.fullName(), number, opts.Page, err)
		}
		c.logRateLimit(resp, "labels", opts.Page, len(labels))

		for _, l := range labels {
			names = append(names, l.GetName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

// ListTags returns the names of every tag in the repository.
func (c *Client) ListTags(ctx context.Context) (sourcecontrol.TagList, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	tags := sourcecontrol.TagList{}

	for {
		page, resp, err := c.gh.Repositories.ListTags(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing tags for %s (page %d): %w", c.fullName(), opts.Page, err)
		}
		c.logRateLimit(resp, "tags", opts.Page, len(page))

		for _, t := range page {
			tags = append(tags, t.GetName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return tags, nil
}

// ListComments returns every conversation comment of pull request number.
func (c *Client) ListComments(ctx context.Context, number int) ([]sourcecontrol.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	comments := []sourcecontrol.Comment{}

	for {
		page, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments for %s#%d (page %d): %w", c.fullName(), number, opts.Page, err)
		}
		c.logRateLimit(resp, "comments", opts.Page, len(page))

		for _, ic := range page {
			comments = append(comments, mapComment(ic))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// ListWorkflows returns every workflow defined in the repository.
func (c *Client) ListWorkflows(ctx context.Context) ([]sourcecontrol.Workflow, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	workflows := []sourcecontrol.Workflow{}

	for {
		page, resp, err := c.gh.Actions.ListWorkflows(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing workflows for %s (page %d): %w", c.fullName(), opts.Page, err)
		}
		c.logRateLimit(resp, "workflows", opts.Page, len(page.Workflows))

		for _, wf := range page.Workflows {
			workflows = append(workflows, sourcecontrol.Workflow{
				ID:    wf.GetID(),
				Name:  wf.GetName(),
				Path:  wf.GetPath(),
				State: wf.GetState(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return workflows, nil
}

func mapComment(ic *gh.IssueComment) sourcecontrol.Comment {
	return sourcecontrol.Comment{
		ID:        ic.GetID(),
		Body:      ic.GetBody(),
		Author:    ic.GetUser().GetLogin(),
		CreatedAt: ic.GetCreatedAt().Time,
	}
}

func (c *Client) logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	c.logger.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
		"from_cache", resp.Header.Get(httpcache.XFromCache) != "",
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		c.logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// Package container wires the adapters and use cases of a run together.
package container

import (
	"fmt"
	"log/slog"

	"github.com/projectsyn/pr-label-tag-action/internal/application/dispatch"
	"github.com/projectsyn/pr-label-tag-action/internal/application/release"
	"github.com/projectsyn/pr-label-tag-action/internal/application/versioning"
	"github.com/projectsyn/pr-label-tag-action/internal/config"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/event"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
	"github.com/projectsyn/pr-label-tag-action/internal/errors"
	gitadapter "github.com/projectsyn/pr-label-tag-action/internal/infrastructure/git"
	ghadapter "github.com/projectsyn/pr-label-tag-action/internal/infrastructure/github"
	"github.com/projectsyn/pr-label-tag-action/internal/observability"
)

// Options configures the container beyond the loaded configuration.
type Options struct {
	Logger  *slog.Logger
	Version string
	// DryRun builds an orchestrator that only plans.
	DryRun bool
}

// Container holds the components of one run.
type Container struct {
	config *config.Config
	event  *event.Context
	logger *slog.Logger

	// Infrastructure layer
	github    *ghadapter.Client
	tags      sourcecontrol.TagLister
	publisher sourcecontrol.TagPublisher
	metrics   *observability.Metrics

	// Application layer
	calculateVersionUC *versioning.CalculateVersionUseCase
	dispatcher         *dispatch.Dispatcher
	orchestrator       *release.Orchestrator
}

// New creates and initializes a container for cfg and ev.
func New(cfg *config.Config, ev *event.Context, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, errors.Config("container.New", "configuration is required")
	}
	if ev == nil {
		return nil, errors.Context("container.New", "event context is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		config: cfg,
		event:  ev,
		logger: logger,
	}

	if err := c.initInfrastructure(opts); err != nil {
		return nil, err
	}
	c.initApplicationLayer(opts)

	return c, nil
}

// initInfrastructure initializes infrastructure layer components.
func (c *Container) initInfrastructure(opts Options) error {
	const op = "container.initInfrastructure"

	client, err := ghadapter.NewClient(ghadapter.Options{
		Token:    c.config.GitHubToken,
		Owner:    c.event.Owner(),
		Repo:     c.event.Repo(),
		APIURL:   c.event.APIURL(),
		Logger:   c.logger,
		CacheDir: c.config.CacheDir,
	})
	if err != nil {
		return errors.ConfigWrap(err, op, "failed to create GitHub client")
	}
	c.github = client

	switch c.config.TagBackend {
	case config.TagBackendAPI, "":
		c.tags = client
		c.publisher = client
	case config.TagBackendGit:
		adapter, err := gitadapter.NewAdapter(gitadapter.Options{
			RepoPath: c.config.RepoPath,
			Remote:   c.config.Remote,
			Token:    c.config.GitHubToken,
			Logger:   c.logger,
		})
		if err != nil {
			return errors.ConfigWrap(err, op, "failed to open repository for the git tag backend")
		}
		c.tags = adapter
		c.publisher = adapter
	default:
		return errors.Config(op, fmt.Sprintf("unknown tag backend %q", c.config.TagBackend))
	}

	c.metrics = observability.NewMetrics(opts.Version)
	return nil
}

// initApplicationLayer initializes application layer use cases.
func (c *Container) initApplicationLayer(opts Options) {
	history := versioning.NewTagHistory(c.tags, c.logger)
	c.calculateVersionUC = versioning.NewCalculateVersionUseCase(history, c.logger)
	c.dispatcher = dispatch.NewDispatcher(c.github, c.config.Trigger, c.logger)

	c.orchestrator = release.NewOrchestrator(release.Dependencies{
		PullRequests: c.github,
		Comments:     c.github,
		Publisher:    c.publisher,
		Versions:     c.calculateVersionUC,
		Dispatcher:   c.dispatcher,
		Recorder:     c.metrics,
		Logger:       c.logger,
	}, release.Options{
		Labels:    c.config.BumpLabels(),
		Templates: c.config.Templates(),
		BotLogin:  c.config.BotLogin,
		DryRun:    opts.DryRun,
	})
}

// Orchestrator returns the run orchestrator.
func (c *Container) Orchestrator() *release.Orchestrator {
	return c.orchestrator
}

// CalculateVersion returns the CalculateVersionUseCase.
func (c *Container) CalculateVersion() *versioning.CalculateVersionUseCase {
	return c.calculateVersionUC
}

// TagPublisher returns the adapter selected by the tag-backend setting.
func (c *Container) TagPublisher() sourcecontrol.TagPublisher {
	return c.publisher
}

// Metrics returns the run metrics.
func (c *Container) Metrics() *observability.Metrics {
	return c.metrics
}

// Event returns the event context of the run.
func (c *Container) Event() *event.Context {
	return c.event
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

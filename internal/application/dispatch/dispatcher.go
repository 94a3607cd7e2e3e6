// Package dispatch triggers downstream workflows for a freshly created tag.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// Triggered records a dispatched workflow.
type Triggered struct {
	Name string `json:"name" yaml:"name"`
	ID   int64  `json:"id" yaml:"id"`
}

// Names returns the distinct workflow names of triggered in order.
func Names(triggered []Triggered) []string {
	var names []string
	seen := make(map[string]bool, len(triggered))
	for _, t := range triggered {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		names = append(names, t.Name)
	}
	return names
}

// Dispatcher fires workflow_dispatch events for the configured workflow names.
type Dispatcher struct {
	store  sourcecontrol.WorkflowStore
	names  []string
	logger *slog.Logger
}

// NewDispatcher creates a new Dispatcher for the given workflow names.
func NewDispatcher(store sourcecontrol.WorkflowStore, names []string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:  store,
		names:  append([]string(nil), names...),
		logger: logger.With("component", "dispatch"),
	}
}

// Preview returns the configured workflow names in configuration order.
func (d *Dispatcher) Preview() []string {
	return append([]string(nil), d.names...)
}

// Resolve matches the configured names against the repository's workflows
// without dispatching anything. Names without a matching workflow are
// logged and skipped.
func (d *Dispatcher) Resolve(ctx context.Context) ([]Triggered, error) {
	if len(d.names) == 0 {
		return nil, nil
	}

	workflows, err := d.store.ListWorkflows(ctx)
	if err != nil {
		return nil, rperrors.UpstreamWrap(err, "dispatch.Resolve", "failed to list workflows")
	}

	var targets []Triggered
	for _, name := range d.names {
		var matches []sourcecontrol.Workflow
		for _, wf := range workflows {
			if wf.Name == name {
				matches = append(matches, wf)
			}
		}
		switch {
		case len(matches) == 0:
			d.logger.Warn(fmt.Sprintf("No workflow with name %s found, skipping", name))
		case len(matches) > 1:
			d.logger.Debug(fmt.Sprintf("Multiple workflows with name %s, triggering all of them", name))
		}
		for _, wf := range matches {
			targets = append(targets, Triggered{Name: name, ID: wf.ID})
		}
	}
	return targets, nil
}

// Trigger dispatches every matching workflow on refs/tags/<tag>, in
// configuration order. The first failing dispatch aborts the remaining ones;
// workflows dispatched before it stay dispatched.
func (d *Dispatcher) Trigger(ctx context.Context, tag string) ([]Triggered, error) {
	targets, err := d.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	ref := sourcecontrol.TagRef(tag)
	triggered := make([]Triggered, 0, len(targets))
	for _, target := range targets {
		d.logger.Info(fmt.Sprintf("Triggering workflow %s (%d). "+
			"If the workflow doesn't run, please make sure that it's configured with the `workflow_dispatch` event",
			target.Name, target.ID))
		if err := d.store.DispatchWorkflow(ctx, target.ID, ref); err != nil {
			return triggered, rperrors.PublishWrap(err, "dispatch.Trigger",
				fmt.Sprintf("failed to trigger workflow %s (%d)", target.Name, target.ID))
		}
		triggered = append(triggered, target)
	}
	return triggered, nil
}

// Package bump classifies pull request labels into a version bump decision.
package bump

import (
	"encoding/json"
	"fmt"

	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// Kind is the semantic version component a bump label increments.
type Kind string

const (
	// Patch increments the patch component.
	Patch Kind = "patch"
	// Minor increments the minor component and resets patch.
	Minor Kind = "minor"
	// Major increments the major component and resets minor and patch.
	Major Kind = "major"
)

// IsValid returns true if the kind is one of patch, minor or major.
func (k Kind) IsValid() bool {
	switch k {
	case Patch, Minor, Major:
		return true
	default:
		return false
	}
}

// String returns the string representation of the bump kind.
func (k Kind) String() string {
	return string(k)
}

// Labels maps the three bump kinds to the label names configured for them.
// Label names are opaque and compared case-sensitively.
type Labels struct {
	Patch string
	Minor string
	Major string
}

// Validate checks that every kind has a label and that no label is shared
// between two kinds.
func (l Labels) Validate() error {
	const op = "bump.Labels.Validate"

	if l.Patch == "" || l.Minor == "" || l.Major == "" {
		return rperrors.Config(op, "empty bump labels aren't supported")
	}

	seen := make(map[string]Kind, 3)
	for _, entry := range l.entries() {
		if other, ok := seen[entry.label]; ok {
			return rperrors.Config(op, fmt.Sprintf(
				"label %q is configured for both %s and %s bumps", entry.label, other, entry.kind))
		}
		seen[entry.label] = entry.kind
	}
	return nil
}

// KindOf resolves a bump label back to its kind.
func (l Labels) KindOf(label string) (Kind, error) {
	for _, entry := range l.entries() {
		if entry.label == label {
			return entry.kind, nil
		}
	}
	return "", rperrors.Internal("bump.Labels.KindOf",
		fmt.Sprintf("unknown version bump %q, this shouldn't happen", label))
}

// Names returns the configured label names in patch, minor, major order.
func (l Labels) Names() []string {
	return []string{l.Patch, l.Minor, l.Major}
}

// Contains reports whether label is one of the configured bump labels.
func (l Labels) Contains(label string) bool {
	return label == l.Patch || label == l.Minor || label == l.Major
}

type labelEntry struct {
	kind  Kind
	label string
}

func (l Labels) entries() []labelEntry {
	return []labelEntry{
		{kind: Patch, label: l.Patch},
		{kind: Minor, label: l.Minor},
		{kind: Major, label: l.Major},
	}
}

// Decision is the outcome of classifying a label set. It is one of
// Decided, NoneFound or Ambiguous.
type Decision interface {
	// Matched returns the bump labels found on the pull request, in the
	// order they appeared.
	Matched() []string
	// String returns a short name for the decision.
	String() string

	decision()
}

// Decided is the outcome when exactly one bump label is present.
type Decided struct {
	Kind  Kind
	Label string
}

// NoneFound is the outcome when no bump label is present.
type NoneFound struct{}

// Ambiguous is the outcome when more than one bump label is present.
type Ambiguous struct {
	Labels []string
}

func (Decided) decision()   {}
func (NoneFound) decision() {}
func (Ambiguous) decision() {}

// Matched returns the single matched label.
func (d Decided) Matched() []string { return []string{d.Label} }

// Matched returns an empty slice.
func (NoneFound) Matched() []string { return []string{} }

// Matched returns all matched labels, duplicates included.
func (a Ambiguous) Matched() []string { return append([]string(nil), a.Labels...) }

func (d Decided) String() string { return d.Kind.String() }
func (NoneFound) String() string { return "none" }
func (Ambiguous) String() string { return "ambiguous" }

// Quoted renders the matched labels as a JSON array, e.g. ["a","b"].
func (a Ambiguous) Quoted() string {
	out, err := json.Marshal(a.Labels)
	if err != nil {
		return fmt.Sprintf("%q", a.Labels)
	}
	return string(out)
}

// Classify filters the pull request labels down to the configured bump
// labels and decides which bump, if any, applies. An error is only returned
// when a matched label cannot be resolved back to its kind.
func Classify(labels Labels, set []string) (Decision, error) {
	matched := make([]string, 0, 1)
	for _, l := range set {
		if labels.Contains(l) {
			matched = append(matched, l)
		}
	}

	switch len(matched) {
	case 0:
		return NoneFound{}, nil
	case 1:
		kind, err := labels.KindOf(matched[0])
		if err != nil {
			return nil, err
		}
		return Decided{Kind: kind, Label: matched[0]}, nil
	default:
		return Ambiguous{Labels: matched}, nil
	}
}

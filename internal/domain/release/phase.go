package release

// Phase is the lifecycle phase of a pull request as seen by one run.
type Phase string

const (
	// PhaseOpen covers every action other than "closed".
	PhaseOpen Phase = "open"
	// PhaseMerged is a closed pull request whose changes were merged.
	PhaseMerged Phase = "merged"
	// PhaseClosedUnmerged is a closed pull request that was not merged.
	PhaseClosedUnmerged Phase = "closed_unmerged"
)

// ActionClosed is the pull request event action for closing.
const ActionClosed = "closed"

// ActionUnlabeled is the pull request event action for removing a label.
const ActionUnlabeled = "unlabeled"

// PhaseOf derives the phase from the event action and the merged flag.
func PhaseOf(action string, merged bool) Phase {
	if action != ActionClosed {
		return PhaseOpen
	}
	if merged {
		return PhaseMerged
	}
	return PhaseClosedUnmerged
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

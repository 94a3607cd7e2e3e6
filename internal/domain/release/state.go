// Package release provides the domain model of a single tagging run: the
// pull request phase, the run state machine and the status messages.
package release

// RunState represents the current state of a tagging run.
type RunState string

const (
	// StateStart is the state before the triggering event was validated.
	StateStart RunState = "start"
	// StateValidated indicates the event is a pull request event.
	StateValidated RunState = "validated"
	// StateNoDecision indicates no bump label was found.
	StateNoDecision RunState = "no_decision"
	// StateAmbiguous indicates more than one bump label was found.
	StateAmbiguous RunState = "ambiguous"
	// StateDecided indicates exactly one bump label was found.
	StateDecided RunState = "decided"
	// StateVersioned indicates the next version has been computed.
	StateVersioned RunState = "versioned"
	// StatePreview indicates an open pull request; nothing is published.
	StatePreview RunState = "preview"
	// StateApply indicates a merged pull request; the tag was published.
	StateApply RunState = "apply"
	// StateSuppress indicates a pull request closed without merging.
	StateSuppress RunState = "suppress"
	// StateCommented indicates the status comment was written.
	StateCommented RunState = "commented"
	// StateDone is the terminal state of a successful run.
	StateDone RunState = "done"
	// StateFailed is the terminal state of a failed run.
	StateFailed RunState = "failed"
)

// AllStates returns all run states.
func AllStates() []RunState {
	return []RunState{
		StateStart,
		StateValidated,
		StateNoDecision,
		StateAmbiguous,
		StateDecided,
		StateVersioned,
		StatePreview,
		StateApply,
		StateSuppress,
		StateCommented,
		StateDone,
		StateFailed,
	}
}

// String returns the string representation of the state.
func (s RunState) String() string {
	return string(s)
}

// IsValid returns true if the state is a known run state.
func (s RunState) IsValid() bool {
	for _, known := range AllStates() {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransitionTo returns true if the run may move from s to target.
func (s RunState) CanTransitionTo(target RunState) bool {
	for _, next := range validTransitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// validTransitions mirrors the transitions of the run machine.
func validTransitions() map[RunState][]RunState {
	return map[RunState][]RunState{
		StateStart:      {StateValidated, StateFailed},
		StateValidated:  {StateNoDecision, StateAmbiguous, StateDecided, StateFailed},
		StateNoDecision: {StateCommented, StateDone, StateFailed},
		StateAmbiguous:  {StateCommented, StateFailed},
		StateDecided:    {StateVersioned, StateFailed},
		StateVersioned:  {StatePreview, StateApply, StateSuppress, StateFailed},
		StatePreview:    {StateCommented, StateFailed},
		StateApply:      {StateCommented, StateFailed},
		StateSuppress:   {StateCommented, StateFailed},
		StateCommented:  {StateDone, StateFailed},
		StateDone:       {},
		StateFailed:     {},
	}
}

package release

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// RunContext is the context passed to the state machine. The run keeps its
// data in the orchestrator, so it is empty.
type RunContext struct{}

// Event names for the state machine.
const (
	EventValidate  statekit.EventType = "VALIDATE_EVENT"
	EventNoLabels  statekit.EventType = "NO_LABELS"
	EventAmbiguous statekit.EventType = "AMBIGUOUS"
	EventDecided   statekit.EventType = "DECIDED"
	EventVersioned statekit.EventType = "COMPUTE_VERSION"
	EventPreview   statekit.EventType = "PREVIEW"
	EventApply     statekit.EventType = "APPLY"
	EventSuppress  statekit.EventType = "SUPPRESS"
	EventComment   statekit.EventType = "COMMENT"
	EventFinish    statekit.EventType = "FINISH"
	EventFail      statekit.EventType = "FAIL"
)

// State IDs for the state machine.
var (
	StateIDStart      = statekit.StateID(StateStart)
	StateIDValidated  = statekit.StateID(StateValidated)
	StateIDNoDecision = statekit.StateID(StateNoDecision)
	StateIDAmbiguous  = statekit.StateID(StateAmbiguous)
	StateIDDecided    = statekit.StateID(StateDecided)
	StateIDVersioned  = statekit.StateID(StateVersioned)
	StateIDPreview    = statekit.StateID(StatePreview)
	StateIDApply      = statekit.StateID(StateApply)
	StateIDSuppress   = statekit.StateID(StateSuppress)
	StateIDCommented  = statekit.StateID(StateCommented)
	StateIDDone       = statekit.StateID(StateDone)
	StateIDFailed     = statekit.StateID(StateFailed)
)

// RunMachine wraps the Statekit state machine for a tagging run.
type RunMachine struct {
	interpreter *statekit.Interpreter[RunContext]
	history     []RunState
}

// NewRunMachine creates a new state machine for a tagging run.
func NewRunMachine() (*RunMachine, error) {
	machine, err := statekit.NewMachine[RunContext]("tag-run").
		WithInitial(StateIDStart).
		State(StateIDStart).
		On(EventValidate).Target(StateIDValidated).
		On(EventFail).Target(StateIDFailed).
		Done().
		// Label classification
		State(StateIDValidated).
		On(EventNoLabels).Target(StateIDNoDecision).
		On(EventAmbiguous).Target(StateIDAmbiguous).
		On(EventDecided).Target(StateIDDecided).
		On(EventFail).Target(StateIDFailed).
		Done().
		// No bump label: usually finishes silently, comments on unlabeled events
		State(StateIDNoDecision).
		On(EventComment).Target(StateIDCommented).
		On(EventFinish).Target(StateIDDone).
		On(EventFail).Target(StateIDFailed).
		Done().
		State(StateIDAmbiguous).
		On(EventComment).Target(StateIDCommented).
		On(EventFail).Target(StateIDFailed).
		Done().
		State(StateIDDecided).
		On(EventVersioned).Target(StateIDVersioned).
		On(EventFail).Target(StateIDFailed).
		Done().
		// Branch on pull request phase
		State(StateIDVersioned).
		On(EventPreview).Target(StateIDPreview).
		On(EventApply).Target(StateIDApply).
		On(EventSuppress).Target(StateIDSuppress).
		On(EventFail).Target(StateIDFailed).
		Done().
		State(StateIDPreview).
		On(EventComment).Target(StateIDCommented).
		On(EventFail).Target(StateIDFailed).
		Done().
		State(StateIDApply).
		On(EventComment).Target(StateIDCommented).
		On(EventFail).Target(StateIDFailed).
		Done().
		State(StateIDSuppress).
		On(EventComment).Target(StateIDCommented).
		On(EventFail).Target(StateIDFailed).
		Done().
		State(StateIDCommented).
		On(EventFinish).Target(StateIDDone).
		On(EventFail).Target(StateIDFailed).
		Done().
		State(StateIDDone).
		Final().
		Done().
		State(StateIDFailed).
		Final().
		Done().
		Build()

	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	return &RunMachine{
		interpreter: statekit.NewInterpreter(machine),
	}, nil
}

// Start starts the state machine interpreter.
func (m *RunMachine) Start() {
	m.interpreter.Start()
	m.history = append(m.history[:0], m.State())
}

// Fire sends event and verifies the machine moved to want. A transition the
// run model does not allow, or one the interpreter resolves differently, is
// reported as a state error.
func (m *RunMachine) Fire(event statekit.EventType, want RunState) error {
	const op = "release.RunMachine.Fire"

	from := m.State()
	if !from.CanTransitionTo(want) {
		return rperrors.State(op, fmt.Sprintf("cannot transition from %s to %s via %s", from, want, event))
	}

	m.interpreter.Send(statekit.Event{Type: event})

	got := m.State()
	if got != want {
		return rperrors.State(op, fmt.Sprintf("event %s moved the run from %s to %s, expected %s", event, from, got, want))
	}
	m.history = append(m.history, got)
	return nil
}

// Fail moves the machine to the failed state unless it already finished.
func (m *RunMachine) Fail() {
	if m.IsDone() {
		return
	}
	m.interpreter.Send(statekit.Event{Type: EventFail})
	m.history = append(m.history, m.State())
}

// State returns the current state.
func (m *RunMachine) State() RunState {
	if m.interpreter == nil {
		return ""
	}
	return RunState(m.interpreter.State().Value)
}

// IsDone returns true if the machine is in a final state.
func (m *RunMachine) IsDone() bool {
	if m.interpreter == nil {
		return false
	}
	return m.interpreter.Done()
}

// History returns the states the run went through, in order.
func (m *RunMachine) History() []RunState {
	return append([]RunState(nil), m.history...)
}

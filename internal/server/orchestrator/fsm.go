package orchestrator

import "github.com/dmitrijs2005/authentix/internal/server/models"

// State is one node of the authentication sequence state machine.
type State string

const (
	StateIdle        State = "idle"
	StateStepFace    State = "step_face"
	StateStepVoice   State = "step_voice"
	StateStepGesture State = "step_gesture"
	StateStepCode    State = "step_code"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
	StateLockedOut   State = "locked_out"
	StateCancelled   State = "cancelled"
)

// stepModality maps each biometric step state to the modality it expects.
// The code step is absent: it is driven by code submission, not samples.
var stepModality = map[State]models.Modality{
	StateStepFace:    models.ModalityFace,
	StateStepVoice:   models.ModalityVoice,
	StateStepGesture: models.ModalityGesture,
}

// nextStep is the transition table for a matched step, fixing the sequence
// order face, voice, gesture, code.
var nextStep = map[State]State{
	StateIdle:        StateStepFace,
	StateStepFace:    StateStepVoice,
	StateStepVoice:   StateStepGesture,
	StateStepGesture: StateStepCode,
	StateStepCode:    StateCompleted,
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateLockedOut, StateCancelled:
		return true
	}
	return false
}

// IsStep reports whether the state expects a submission from the caller.
func (s State) IsStep() bool {
	switch s {
	case StateStepFace, StateStepVoice, StateStepGesture, StateStepCode:
		return true
	}
	return false
}

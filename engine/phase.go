package engine

import (
	"context"

	"github.com/looplab/fsm"
)

// Turn phases.
const (
	PhaseStart  = "start"
	PhaseAction = "action"
	PhaseEnd    = "end"
)

// Phase machine events.
const (
	evBegin    = "begin"    // start -> action
	evFinish   = "finish"   // start/action -> end
	evRollover = "rollover" // end -> start of the next player's turn
)

// newPhaseMachine builds the turn phase machine positioned at phase. The
// machine is rebuilt per action from the snapshot, so it never holds state
// of its own between calls.
func newPhaseMachine(phase string) *fsm.FSM {
	return fsm.NewFSM(
		phase,
		fsm.Events{
			{Name: evBegin, Src: []string{PhaseStart}, Dst: PhaseAction},
			{Name: evFinish, Src: []string{PhaseStart, PhaseAction}, Dst: PhaseEnd},
			{Name: evRollover, Src: []string{PhaseEnd}, Dst: PhaseStart},
		},
		fsm.Callbacks{},
	)
}

// advance fires a phase event and returns the resulting phase.
func advance(phase, event string) (string, error) {
	m := newPhaseMachine(phase)
	if err := m.Event(context.Background(), event); err != nil {
		return phase, err
	}
	return m.Current(), nil
}

// canAdvance reports whether event is legal from phase.
func canAdvance(phase, event string) bool {
	return newPhaseMachine(phase).Can(event)
}

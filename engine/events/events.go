// Package events implements single-pass dispatch of battle events to the
// trigger rules. Events raised while rules run are collected but never
// dispatched again, so rules cannot trigger each other in a loop.
package events

import (
	"github.com/nathoo/duelcore/engine/rules"
	"github.com/nathoo/duelcore/types"
)

// Result collects the messages of fired rules and the events their
// effects raised.
type Result struct {
	Messages []string
	Derived  []types.Event
}

// Dispatch runs the rules for each event in order. Single pass, no
// recursion.
func Dispatch(re *rules.Engine, b *types.BattleState, evts []types.Event) Result {
	var res Result
	for _, ev := range evts {
		r := re.CheckTriggers(b, ev)
		res.Messages = append(res.Messages, r.Messages...)
		res.Derived = append(res.Derived, r.Events...)
	}
	return res
}

package rules

import (
	"go.uber.org/zap"

	"github.com/nathoo/duelcore/engine/skills"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/engine/status"
	"github.com/nathoo/duelcore/types"
)

// CheckResult collects what the rules fired for one event did.
type CheckResult struct {
	Success  bool
	Messages []string
	// Events raised by rule effects. They are reported, never re-dispatched.
	Events []types.Event
}

// Engine evaluates the battle's trigger rules. It holds no battle state.
type Engine struct {
	log    *zap.Logger
	status *status.Manager
	skills *skills.Executor
}

// New creates a rule engine. Nil collaborators get defaults sharing log.
func New(log *zap.Logger, st *status.Manager, ex *skills.Executor) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if st == nil {
		st = status.NewManager(log)
	}
	if ex == nil {
		ex = skills.NewExecutor(log, st)
	}
	return &Engine{log: log, status: st, skills: ex}
}

// CheckTriggers runs every registered rule listening for ev.Type, in
// registration order. The rules that fire are picked against the battle
// as it stood when the event arrived: piece binding, limits, and
// conditions are all checked before any effect runs. Each firing counts a
// use and starts its cooldown.
func (e *Engine) CheckTriggers(b *types.BattleState, ev types.Event) CheckResult {
	var res CheckResult

	tc := NewTriggerContext(b, ev)
	var ids []string
	for i := range b.Rules {
		r := &b.Rules[i]
		if r.Trigger.Type != ev.Type || !boundTo(r, ev) || !available(r) {
			continue
		}
		if r.Trigger.Conditions != nil && !EvalCondition(*r.Trigger.Conditions, b, tc) {
			continue
		}
		ids = append(ids, r.ID)
	}

	for _, id := range ids {
		// An earlier effect may have unregistered it (expired status).
		r := state.RuleByID(b, id)
		if r == nil {
			continue
		}
		rule := state.CloneRule(*r)
		ok, msg, evts := e.runEffect(b, &rule, NewTriggerContext(b, ev))
		res.Events = append(res.Events, evts...)
		if !ok {
			continue
		}
		res.Success = true
		if msg != "" {
			res.Messages = append(res.Messages, msg)
		}
		if r := state.RuleByID(b, id); r != nil && r.Limits != nil {
			r.Limits.Uses++
			r.Limits.CurrentCooldown = r.Limits.CooldownTurns
		}
		e.log.Debug("rule fired",
			zap.String("rule", id),
			zap.String("event", ev.Type),
			zap.String("message", msg))
	}
	return res
}

// UpdateCooldowns ticks every rule cooldown down by one, flooring at 0.
func UpdateCooldowns(b *types.BattleState) {
	for i := range b.Rules {
		if l := b.Rules[i].Limits; l != nil && l.CurrentCooldown > 0 {
			l.CurrentCooldown--
		}
	}
}

// boundTo reports whether a piece-bound rule applies to ev. Events that
// name no pieces reach every rule.
func boundTo(r *types.TriggerRule, ev types.Event) bool {
	if r.PieceID == "" {
		return true
	}
	if ev.SourcePieceID == "" && ev.TargetPieceID == "" {
		return true
	}
	return ev.SourcePieceID == r.PieceID || ev.TargetPieceID == r.PieceID
}

func available(r *types.TriggerRule) bool {
	if r.Limits == nil {
		return true
	}
	if r.Limits.CurrentCooldown > 0 {
		return false
	}
	return r.Limits.MaxUses <= 0 || r.Limits.Uses < r.Limits.MaxUses
}

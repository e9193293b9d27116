// Package engine provides the Apply() state machine that wires together
// the status, skill, and rule engines into one deterministic battle
// transition.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/duelcore/engine/events"
	"github.com/nathoo/duelcore/engine/rules"
	"github.com/nathoo/duelcore/engine/skills"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/engine/status"
	"github.com/nathoo/duelcore/types"
)

// Action types.
const (
	ActionBeginPhase        = "beginPhase"
	ActionMove              = "move"
	ActionUseBasicSkill     = "useBasicSkill"
	ActionUseChargeSkill    = "useChargeSkill"
	ActionEndTurn           = "endTurn"
	ActionGrantChargePoints = "grantChargePoints"
	ActionSurrender         = "surrender"
)

// Engine applies battle actions. It holds no battle state, so one Engine
// can serve any number of battles.
type Engine struct {
	log    *zap.Logger
	status *status.Manager
	skills *skills.Executor
	rules  *rules.Engine
}

// New creates an engine. A nil logger disables logging.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	st := status.NewManager(log.Named("status"))
	ex := skills.NewExecutor(log.Named("skills"), st)
	return &Engine{
		log:    log,
		status: st,
		skills: ex,
		rules:  rules.New(log.Named("rules"), st, ex),
	}
}

var std = New(nil)

// Apply runs a on b with a silent engine. See Engine.Apply.
func Apply(b *types.BattleState, a types.BattleAction) (*types.BattleState, error) {
	return std.Apply(b, a)
}

// step accumulates what one action produced.
type step struct {
	messages []string
	events   []types.Event
}

func (s *step) say(format string, args ...any) {
	s.messages = append(s.messages, fmt.Sprintf(format, args...))
}

// Apply validates a against b and returns the resulting snapshot. b is
// never modified. On error the returned state is nil and the error is a
// *RuleError or a *TargetSelectionError.
func (e *Engine) Apply(b *types.BattleState, a types.BattleAction) (*types.BattleState, error) {
	if b == nil {
		return nil, ruleErr(KindInvalidAction, "no battle")
	}

	// 1. Work on a throwaway copy.
	next := state.Clone(b)
	st := &step{}

	// 2. Validate and apply.
	var err error
	switch a.Type {
	case ActionBeginPhase:
		err = e.beginPhase(next, st)
	case ActionMove:
		err = e.move(next, st, a)
	case ActionUseBasicSkill:
		err = e.useSkill(next, st, a, false)
	case ActionUseChargeSkill:
		err = e.useSkill(next, st, a, true)
	case ActionEndTurn:
		err = e.endTurn(next, st, a)
	case ActionGrantChargePoints:
		err = e.grantChargePoints(next, st, a)
	case ActionSurrender:
		err = e.surrender(next, st, a)
	default:
		err = ruleErr(KindInvalidAction, "unknown action type %q", a.Type)
	}
	if err != nil {
		var tse *TargetSelectionError
		if errors.As(err, &tse) {
			e.log.Debug("target selection needed", zap.String("skill", tse.SkillID))
		} else {
			e.log.Debug("action rejected", zap.String("type", a.Type), zap.Error(err))
		}
		return nil, err
	}

	// 3. Remove the dead.
	e.settle(next, st)

	// 4. Log the action.
	playerID := a.PlayerID
	if playerID == "" {
		playerID = b.Turn.CurrentPlayerID
	}
	entry := types.ActionLog{
		TurnNumber: b.Turn.TurnNumber,
		PlayerID:   playerID,
		Type:       a.Type,
		Messages:   st.messages,
	}
	for _, ev := range st.events {
		entry.Events = append(entry.Events, ev.Type)
	}
	next.Actions = append(next.Actions, entry)

	e.log.Debug("action applied",
		zap.String("type", a.Type),
		zap.String("player", playerID),
		zap.Int("turn", next.Turn.TurnNumber),
		zap.String("phase", next.Turn.Phase),
		zap.Int("events", len(st.events)))
	return next, nil
}

// fire records evts and runs the trigger rules for them. Events raised by
// the rules are recorded but not dispatched again.
func (e *Engine) fire(b *types.BattleState, st *step, evts []types.Event) {
	if len(evts) == 0 {
		return
	}
	st.events = append(st.events, evts...)
	res := events.Dispatch(e.rules, b, evts)
	st.messages = append(st.messages, res.Messages...)
	st.events = append(st.events, res.Derived...)
}

// settle moves pieces at 0 HP to the graveyard, clearing their status
// effects and the rules bound to them.
func (e *Engine) settle(b *types.BattleState, st *step) {
	var dead []string
	for _, p := range b.Pieces {
		if p.CurrentHP <= 0 {
			dead = append(dead, p.InstanceID)
		}
	}
	if len(dead) == 0 {
		return
	}

	for _, id := range dead {
		e.status.RemoveAll(b, id)
		var bound []string
		for _, r := range b.Rules {
			if r.PieceID == id {
				bound = append(bound, r.ID)
			}
		}
		for _, rid := range bound {
			state.RemoveRule(b, rid)
		}
	}

	alive := make([]types.PieceInstance, 0, len(b.Pieces)-len(dead))
	for _, p := range b.Pieces {
		if p.CurrentHP > 0 {
			alive = append(alive, p)
			continue
		}
		p.CurrentHP = 0
		p.Rules = []string{}
		b.Graveyard = append(b.Graveyard, p)
		st.say("%s is defeated", p.TemplateID)
		e.log.Debug("piece defeated", zap.String("piece", p.InstanceID))
	}
	b.Pieces = alive
}

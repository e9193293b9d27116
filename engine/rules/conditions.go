// Package rules implements the trigger rule engine: conditions matched
// against battle events and the declarative effects rules run.
package rules

import (
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// TriggerContext is what conditions and rule effects see of an event.
type TriggerContext struct {
	Event  types.Event
	Source *types.PieceInstance
	Target *types.PieceInstance
}

// NewTriggerContext resolves the event's pieces, including pieces already
// in the graveyard.
func NewTriggerContext(b *types.BattleState, ev types.Event) TriggerContext {
	return TriggerContext{
		Event:  ev,
		Source: findPiece(b, ev.SourcePieceID),
		Target: findPiece(b, ev.TargetPieceID),
	}
}

// EvalCondition evaluates a condition tree. Unknown types are false.
func EvalCondition(c types.Condition, b *types.BattleState, tc TriggerContext) bool {
	switch c.Type {
	case "AND":
		for _, sub := range c.Conditions {
			if !EvalCondition(sub, b, tc) {
				return false
			}
		}
		return true

	case "OR":
		for _, sub := range c.Conditions {
			if EvalCondition(sub, b, tc) {
				return true
			}
		}
		return false

	case "NOT":
		for _, sub := range c.Conditions {
			if !EvalCondition(sub, b, tc) {
				return true
			}
		}
		return false

	case "skillId":
		s, _ := c.Value.(string)
		return tc.Event.SkillID == s

	case "minDamage":
		return tc.Event.HasDamage && tc.Event.Damage >= toInt(c.Value)

	case "maxDamage":
		return tc.Event.HasDamage && tc.Event.Damage <= toInt(c.Value)

	case "pieceType":
		s, _ := c.Value.(string)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool { return p.TemplateID == s })

	case "faction":
		s, _ := c.Value.(string)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool { return p.Faction == s })

	case "hasStatus":
		s, _ := c.Value.(string)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool {
			for _, tag := range p.StatusTags {
				if tag == s {
					return true
				}
			}
			return false
		})

	case "minAttack":
		n := toInt(c.Value)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool { return p.Attack >= n })

	case "maxAttack":
		n := toInt(c.Value)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool { return p.Attack <= n })

	case "minHp":
		n := toInt(c.Value)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool { return p.CurrentHP >= n })

	case "maxHp":
		n := toInt(c.Value)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool { return p.CurrentHP <= n })

	case "minDefense":
		n := toInt(c.Value)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool { return p.Defense >= n })

	case "maxDefense":
		n := toInt(c.Value)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool { return p.Defense <= n })

	case "pieceCount":
		count := 0
		for i := range b.Pieces {
			if state.Alive(&b.Pieces[i]) {
				count++
			}
		}
		return count == toInt(c.Value)

	case "turnNumber":
		return tc.Event.TurnNumber == toInt(c.Value)

	case "phase":
		s, _ := c.Value.(string)
		return b.Turn.Phase == s

	case "positionX":
		n := toInt(c.Value)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool {
			x, _, ok := state.Position(p)
			return ok && x == n
		})

	case "positionY":
		n := toInt(c.Value)
		return anyPiece(c, tc, func(p *types.PieceInstance) bool {
			_, y, ok := state.Position(p)
			return ok && y == n
		})

	case "distance":
		sx, sy, ok1 := state.Position(tc.Source)
		tx, ty, ok2 := state.Position(tc.Target)
		if !ok1 || !ok2 {
			return false
		}
		return state.Distance(sx, sy, tx, ty) == toInt(c.Value)

	default:
		return false
	}
}

// anyPiece checks the pieces selected by the condition's target
// ("source", "target", or "all", the default) and passes if any matches.
func anyPiece(c types.Condition, tc TriggerContext, match func(*types.PieceInstance) bool) bool {
	target := c.Target
	if target == "" {
		target = "all"
	}
	if (target == "source" || target == "all") && tc.Source != nil && match(tc.Source) {
		return true
	}
	if (target == "target" || target == "all") && tc.Target != nil && match(tc.Target) {
		return true
	}
	return false
}

func findPiece(b *types.BattleState, id string) *types.PieceInstance {
	if id == "" {
		return nil
	}
	if p := state.PieceByID(b, id); p != nil {
		return p
	}
	for i := range b.Graveyard {
		if b.Graveyard[i].InstanceID == id {
			return &b.Graveyard[i]
		}
	}
	return nil
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

package state

import "github.com/nathoo/duelcore/types"

// Clone returns a deep copy of a battle snapshot. The copy shares no
// slices, maps, or pointers with the original.
func Clone(b *types.BattleState) *types.BattleState {
	if b == nil {
		return nil
	}
	out := &types.BattleState{
		Map:     cloneMap(b.Map),
		Players: append([]types.PlayerTurnMeta(nil), b.Players...),
		Turn:    b.Turn,
		Seq:     b.Seq,
	}

	out.Pieces = clonePieces(b.Pieces)
	out.Graveyard = clonePieces(b.Graveyard)

	if b.PieceStatsByTemplateID != nil {
		out.PieceStatsByTemplateID = make(map[string]types.PieceStats, len(b.PieceStatsByTemplateID))
		for k, v := range b.PieceStatsByTemplateID {
			out.PieceStatsByTemplateID[k] = v
		}
	}
	if b.SkillsByID != nil {
		out.SkillsByID = make(map[string]types.SkillDefinition, len(b.SkillsByID))
		for k, v := range b.SkillsByID {
			out.SkillsByID[k] = CloneSkill(v)
		}
	}
	if b.StatusDefsByID != nil {
		out.StatusDefsByID = make(map[string]types.StatusDefinition, len(b.StatusDefsByID))
		for k, v := range b.StatusDefsByID {
			out.StatusDefsByID[k] = v
		}
	}

	if b.Rules != nil {
		out.Rules = make([]types.TriggerRule, len(b.Rules))
		for i, r := range b.Rules {
			out.Rules[i] = CloneRule(r)
		}
	}
	if b.Actions != nil {
		out.Actions = make([]types.ActionLog, len(b.Actions))
		for i, a := range b.Actions {
			a.Messages = cloneSlice(a.Messages)
			a.Events = cloneSlice(a.Events)
			out.Actions[i] = a
		}
	}
	return out
}

// ClonePiece deep-copies one piece instance.
func ClonePiece(p types.PieceInstance) types.PieceInstance {
	if p.X != nil {
		x := *p.X
		p.X = &x
	}
	if p.Y != nil {
		y := *p.Y
		p.Y = &y
	}
	p.Skills = cloneSlice(p.Skills)
	p.StatusEffects = cloneSlice(p.StatusEffects)
	p.StatusTags = cloneSlice(p.StatusTags)
	p.Rules = cloneSlice(p.Rules)
	return p
}

// CloneSkill deep-copies a skill definition.
func CloneSkill(s types.SkillDefinition) types.SkillDefinition {
	s.Effects = cloneEffects(s.Effects)
	if s.Targeting != nil {
		t := *s.Targeting
		s.Targeting = &t
	}
	return s
}

// CloneRule deep-copies a trigger rule.
func CloneRule(r types.TriggerRule) types.TriggerRule {
	if r.Trigger.Conditions != nil {
		c := cloneCondition(*r.Trigger.Conditions)
		r.Trigger.Conditions = &c
	}
	if r.Limits != nil {
		l := *r.Limits
		r.Limits = &l
	}
	r.Effect.Modifications = cloneSlice(r.Effect.Modifications)
	return r
}

func cloneMap(m types.BoardMap) types.BoardMap {
	m.Tiles = cloneSlice(m.Tiles)
	return m
}

func clonePieces(ps []types.PieceInstance) []types.PieceInstance {
	if ps == nil {
		return nil
	}
	out := make([]types.PieceInstance, len(ps))
	for i, p := range ps {
		out[i] = ClonePiece(p)
	}
	return out
}

func cloneEffects(es []types.SkillEffect) []types.SkillEffect {
	if es == nil {
		return nil
	}
	out := make([]types.SkillEffect, len(es))
	for i, e := range es {
		e.Effects = cloneEffects(e.Effects)
		out[i] = e
	}
	return out
}

func cloneCondition(c types.Condition) types.Condition {
	if c.Conditions != nil {
		inner := make([]types.Condition, len(c.Conditions))
		for i, ic := range c.Conditions {
			inner[i] = cloneCondition(ic)
		}
		c.Conditions = inner
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

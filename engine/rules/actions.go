package rules

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/duelcore/engine/effects"
	"github.com/nathoo/duelcore/engine/skills"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/engine/status"
	"github.com/nathoo/duelcore/types"
)

// runEffect interprets a rule's declarative effect. It reports whether the
// effect took hold, the interpolated message, and any events raised.
func (e *Engine) runEffect(b *types.BattleState, r *types.TriggerRule, tc TriggerContext) (bool, string, []types.Event) {
	eff := r.Effect
	switch eff.Type {
	case "addChargePoints":
		playerID := tc.Event.PlayerID
		if tc.Source != nil {
			playerID = tc.Source.OwnerPlayerID
		}
		out := effects.AddChargePoints(b, playerID, resolveValue(eff.Amount, tc))
		return out.Success, interpolate(eff.Message, tc), nil

	case "modifyStats":
		targets := pick(b, eff.Target, "source", 0, tc)
		for _, t := range targets {
			for _, mod := range eff.Modifications {
				modify(t, mod, tc)
			}
		}
		return len(targets) > 0, interpolate(eff.Message, tc), nil

	case "heal":
		targets := pick(b, eff.Target, "source", 0, tc)
		healed := false
		for _, t := range targets {
			if effects.Heal(t, resolveValue(eff.Amount, tc)).Success {
				healed = true
			}
		}
		return healed, interpolate(eff.Message, tc), nil

	case "damage":
		targets := pick(b, eff.Target, "target", eff.Range, tc)
		amount := resolveValue(eff.Amount, tc)
		sourceID := ""
		if tc.Source != nil {
			sourceID = tc.Source.InstanceID
		}
		var evts []types.Event
		hit := false
		for _, t := range targets {
			out, ev := effects.Damage(b, sourceID, t, amount)
			if out.Success {
				hit = true
			}
			evts = append(evts, ev...)
		}
		return hit, interpolate(eff.Message, tc), evts

	case "applyStatus":
		applied := false
		for _, t := range pick(b, eff.Target, "target", 0, tc) {
			sourceID := ""
			if tc.Source != nil {
				sourceID = tc.Source.InstanceID
			}
			if _, ok := e.status.AddByID(b, t.InstanceID, eff.StatusID, sourceID); ok {
				applied = true
			}
		}
		return applied, interpolate(eff.Message, tc), nil

	case "triggerSkill":
		if !state.Alive(tc.Source) {
			return false, "", nil
		}
		def, ok := b.SkillsByID[eff.SkillID]
		if !ok {
			e.log.Warn("rule references unknown skill",
				zap.String("rule", r.ID), zap.String("skill", eff.SkillID))
			return false, "skill " + eff.SkillID + " not found", nil
		}
		ctx := &skills.Context{Battle: b, Piece: tc.Source, Skill: def}
		if tc.Target != nil && state.Alive(tc.Target) {
			ctx.TargetPieceID = tc.Target.InstanceID
		}
		sr := e.skills.Execute(ctx)
		if !sr.Success {
			return false, "", sr.Events
		}
		msg := sr.Message
		if eff.Message != "" {
			msg = interpolate(eff.Message, tc)
		}
		return true, msg, sr.Events

	case status.RuleEffectTick:
		p := state.PieceByID(b, eff.PieceID)
		if p == nil {
			state.RemoveRule(b, r.ID)
			return false, "", nil
		}
		// Status effects only tick on their owner's turns.
		if tc.Event.PlayerID != "" && p.OwnerPlayerID != tc.Event.PlayerID {
			return false, "", nil
		}
		res, evts := e.status.Tick(b, eff.PieceID, eff.EffectID)
		return res.Fired || res.Expired, res.Message, evts

	default:
		e.log.Warn("unknown rule effect", zap.String("rule", r.ID), zap.String("type", eff.Type))
		return false, "", nil
	}
}

// pick resolves a rule effect's target selector: source, target, all
// (both), or area (enemies of the source within rng).
func pick(b *types.BattleState, sel, def string, rng int, tc TriggerContext) []*types.PieceInstance {
	if sel == "" {
		sel = def
	}
	var out []*types.PieceInstance
	if (sel == "source" || sel == "all") && tc.Source != nil {
		out = append(out, tc.Source)
	}
	if tc.Target != nil && (sel == "target" || (sel == "all" && tc.Target != tc.Source)) {
		out = append(out, tc.Target)
	}
	if sel == "area" && tc.Source != nil && rng > 0 {
		sx, sy, ok := state.Position(tc.Source)
		if !ok {
			return nil
		}
		for i := range b.Pieces {
			p := &b.Pieces[i]
			if p.OwnerPlayerID == tc.Source.OwnerPlayerID || !state.Alive(p) {
				continue
			}
			if x, y, ok := state.Position(p); ok && state.Distance(sx, sy, x, y) <= rng {
				out = append(out, p)
			}
		}
	}
	return out
}

func modify(p *types.PieceInstance, mod types.StatModification, tc TriggerContext) {
	value := resolveValue(mod.Value, tc)
	cur, ok := effects.StatValue(p, mod.Stat)
	if !ok {
		return
	}
	switch mod.Operation {
	case "add":
		effects.ModifyStat(p, mod.Stat, value)
	case "subtract":
		effects.ModifyStat(p, mod.Stat, -value)
	case "multiply":
		effects.SetStat(p, mod.Stat, cur*value)
	case "set":
		effects.SetStat(p, mod.Stat, value)
	}
}

// resolveValue turns a number or a dynamic reference ("target.maxHp",
// "source.attack", "damage") into an int. Unresolvable values are 0.
func resolveValue(v any, tc TriggerContext) int {
	s, ok := v.(string)
	if !ok {
		return toInt(v)
	}
	if s == "damage" {
		return tc.Event.Damage
	}
	if side, stat, found := strings.Cut(s, "."); found {
		var p *types.PieceInstance
		switch side {
		case "source":
			p = tc.Source
		case "target":
			p = tc.Target
		}
		if p == nil {
			return 0
		}
		n, _ := effects.StatValue(p, stat)
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// interpolate fills message placeholders from the trigger context.
func interpolate(msg string, tc TriggerContext) string {
	if msg == "" || !strings.Contains(msg, "${") {
		return msg
	}
	var pairs []string
	if tc.Source != nil {
		pairs = append(pairs,
			"${source.templateId}", tc.Source.TemplateID,
			"${source.name}", tc.Source.TemplateID,
			"${source.maxHp}", strconv.Itoa(tc.Source.MaxHP))
	}
	if tc.Target != nil {
		pairs = append(pairs,
			"${target.templateId}", tc.Target.TemplateID,
			"${target.name}", tc.Target.TemplateID,
			"${target.maxHp}", strconv.Itoa(tc.Target.MaxHP))
	}
	pairs = append(pairs, "${damage}", strconv.Itoa(tc.Event.Damage))
	return strings.NewReplacer(pairs...).Replace(msg)
}

package skills

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/duelcore/engine/effects"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/engine/status"
	"github.com/nathoo/duelcore/types"
)

// DefaultTeleportRange caps teleports that declare no range.
const DefaultTeleportRange = 5

// Result is the outcome of one skill execution.
type Result struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Damage   int               `json:"damage,omitempty"`
	Heal     int               `json:"heal,omitempty"`
	Outcomes []effects.Outcome `json:"outcomes,omitempty"`
	Events   []types.Event     `json:"-"`
}

// Executor evaluates skill effect trees.
type Executor struct {
	log    *zap.Logger
	status *status.Manager
}

// NewExecutor creates an executor. A nil logger disables logging.
func NewExecutor(log *zap.Logger, st *status.Manager) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	if st == nil {
		st = status.NewManager(log)
	}
	return &Executor{log: log, status: st}
}

// Execute runs the skill in ctx against ctx.Battle, mutating it. Faults
// inside the evaluator are reported as an unsuccessful result.
func (e *Executor) Execute(ctx *Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("skill evaluation failed",
				zap.String("skill", ctx.Skill.ID), zap.Any("panic", r))
			res = Result{Success: false, Message: fmt.Sprintf("skill %s failed: %v", ctx.Skill.ID, r)}
		}
	}()

	if !state.Alive(ctx.Piece) {
		return Result{Message: "caster is not alive"}
	}
	if len(ctx.Skill.Effects) == 0 {
		return Result{Message: fmt.Sprintf("skill %s has no effects", ctx.Skill.ID)}
	}

	for _, eff := range ctx.Skill.Effects {
		e.apply(ctx, eff, &res)
	}

	// A skill is used when any outcome lands; failed parts are reported
	// alongside the ones that took effect.
	var failures []string
	for _, o := range res.Outcomes {
		if o.Success {
			res.Success = true
		} else if o.Message != "" {
			failures = append(failures, o.Message)
		}
	}

	name := ctx.Skill.Name
	if name == "" {
		name = ctx.Skill.ID
	}
	if res.Success {
		res.Message = describe(ctx.Piece.TemplateID, name, res)
		if len(failures) > 0 {
			res.Message += " (" + strings.Join(failures, "; ") + ")"
		}
		res.Events = append(res.Events, types.Event{
			Type:          effects.AfterSkillUsed,
			SourcePieceID: ctx.Piece.InstanceID,
			TargetPieceID: targetID(ctx),
			SkillID:       ctx.Skill.ID,
			Damage:        res.Damage,
			HasDamage:     dealtDamage(res.Outcomes),
			TurnNumber:    ctx.Battle.Turn.TurnNumber,
			PlayerID:      ctx.Piece.OwnerPlayerID,
		})
	} else {
		res.Message = fmt.Sprintf("%s failed: %s", name, strings.Join(failures, "; "))
	}

	e.log.Debug("skill executed",
		zap.String("skill", ctx.Skill.ID),
		zap.String("caster", ctx.Piece.InstanceID),
		zap.Bool("success", res.Success),
		zap.Int("damage", res.Damage),
		zap.Int("heal", res.Heal))
	return res
}

func dealtDamage(outs []effects.Outcome) bool {
	for _, o := range outs {
		if o.Type == "damage" && o.Success {
			return true
		}
	}
	return false
}

func (e *Executor) apply(ctx *Context, eff types.SkillEffect, res *Result) {
	if eff.Type == "composite" {
		for _, child := range eff.Effects {
			e.apply(ctx, child, res)
		}
		return
	}
	if eff.Type == "teleport" {
		res.Outcomes = append(res.Outcomes, e.teleport(ctx, eff))
		return
	}

	targets := e.targets(ctx, eff)
	if len(targets) == 0 {
		res.Outcomes = append(res.Outcomes, effects.Outcome{Type: eff.Type, Message: "no valid target"})
		return
	}
	amount := e.amount(ctx, eff)

	for _, t := range targets {
		var out effects.Outcome
		switch eff.Type {
		case "damage":
			var evts []types.Event
			out, evts = effects.Damage(ctx.Battle, ctx.Piece.InstanceID, t, amount)
			res.Damage += out.Value
			res.Events = append(res.Events, evts...)
		case "heal":
			out = effects.Heal(t, amount)
			res.Heal += out.Value
		case "buff":
			out = e.modify(ctx, t, eff, amount, false)
		case "debuff":
			out = e.modify(ctx, t, eff, amount, true)
		case "shield":
			out = effects.Shield(t, amount)
		case "applyStatus":
			_, ok := e.status.AddByID(ctx.Battle, t.InstanceID, eff.StatusID, ctx.Piece.InstanceID)
			out = effects.Outcome{Type: "applyStatus", PieceID: t.InstanceID, Success: ok}
			if !ok {
				out.Message = "cannot apply status " + eff.StatusID
			}
		case "cleanse":
			out = e.cleanse(ctx, t)
		default:
			out = effects.Outcome{Type: eff.Type, PieceID: t.InstanceID, Message: "unknown effect type " + eff.Type}
		}
		res.Outcomes = append(res.Outcomes, out)
	}
}

// amount is the effect's base value plus the scaled caster stat.
func (e *Executor) amount(ctx *Context, eff types.SkillEffect) int {
	n := eff.Value
	if eff.Scaling == "" {
		return n
	}
	stat, ok := effects.StatValue(ctx.Piece, eff.Scaling)
	if !ok {
		return n
	}
	mult := ctx.Skill.PowerMultiplier
	if mult == 0 {
		mult = 1
	}
	return n + int(float64(stat)*mult)
}

// modify applies a buff or debuff. With a duration it becomes a timed
// stat-modifier status; without one the change is permanent.
func (e *Executor) modify(ctx *Context, t *types.PieceInstance, eff types.SkillEffect, amount int, debuff bool) effects.Outcome {
	stat := eff.Stat
	if stat == "" {
		stat = "attack"
	}
	if eff.Duration <= 0 {
		if debuff {
			amount = -amount
		}
		return effects.ModifyStat(t, stat, amount)
	}

	prefix := "buff_"
	if debuff {
		prefix = "debuff_"
	}
	added, ok := e.status.Add(ctx.Battle, t.InstanceID, types.StatusEffect{
		Type:              prefix + stat,
		Name:              ctx.Skill.Name,
		RemainingDuration: eff.Duration,
		Intensity:         amount,
		IsDebuff:          debuff,
		MaxStacks:         1,
		Behavior:          status.BehaviorStatModifier,
		Stat:              stat,
		SourcePieceID:     ctx.Piece.InstanceID,
	})
	return effects.Outcome{Type: eff.Type, PieceID: t.InstanceID, Value: added.Applied, Success: ok}
}

func (e *Executor) cleanse(ctx *Context, t *types.PieceInstance) effects.Outcome {
	var ids []string
	for _, s := range t.StatusEffects {
		if s.IsDebuff {
			ids = append(ids, s.ID)
		}
	}
	for _, id := range ids {
		e.status.Remove(ctx.Battle, t.InstanceID, id)
	}
	return effects.Outcome{Type: "cleanse", PieceID: t.InstanceID, Value: len(ids), Success: true}
}

func (e *Executor) teleport(ctx *Context, eff types.SkillEffect) effects.Outcome {
	x, y, ok := ctx.TargetCell()
	if !ok {
		return effects.Outcome{Type: "teleport", PieceID: ctx.Piece.InstanceID, Message: "teleport needs a destination"}
	}
	limit := eff.Range
	if limit <= 0 && ctx.Skill.Targeting != nil {
		limit = ctx.Skill.Targeting.Range
	}
	if limit <= 0 {
		limit = DefaultTeleportRange
	}
	cx, cy, _ := state.Position(ctx.Piece)
	if state.Distance(cx, cy, x, y) > limit {
		return effects.Outcome{Type: "teleport", PieceID: ctx.Piece.InstanceID, Message: "destination out of range"}
	}
	return effects.Teleport(ctx.Battle, ctx.Piece, x, y)
}

// targets resolves an effect's target selector.
func (e *Executor) targets(ctx *Context, eff types.SkillEffect) []*types.PieceInstance {
	sel := eff.Target
	if sel == "" {
		sel = "self"
		if ctx.TargetPieceID != "" || ctx.TargetX != nil {
			sel = "target"
		}
	}

	one := func(p *types.PieceInstance) []*types.PieceInstance {
		if p == nil || (eff.Range > 0 && !ctx.InRange(p, eff.Range)) {
			return nil
		}
		return []*types.PieceInstance{p}
	}

	switch sel {
	case "self":
		return []*types.PieceInstance{ctx.Piece}
	case "target":
		return one(ctx.Target())
	case "enemy":
		if t := ctx.Target(); t != nil {
			if t.OwnerPlayerID == ctx.Piece.OwnerPlayerID {
				return nil
			}
			return one(t)
		}
		return one(ctx.NearestEnemy())
	case "nearest-enemy":
		return one(ctx.NearestEnemy())
	case "lowest-hp-enemy":
		return one(ctx.LowestHPEnemy())
	case "highest-attack-enemy":
		return one(ctx.HighestAttackEnemy())
	case "lowest-defense-enemy":
		return one(ctx.LowestDefenseEnemy())
	case "all-enemies":
		return ctx.EnemiesInRange(eff.Range)
	case "allies":
		return ctx.AlliesInRange(eff.Range)
	case "all":
		var out []*types.PieceInstance
		for _, p := range append(ctx.AlliesInRange(eff.Range), ctx.EnemiesInRange(eff.Range)...) {
			if p != ctx.Piece {
				out = append(out, p)
			}
		}
		return out
	case "area":
		return e.area(ctx, eff)
	}
	return nil
}

// area returns enemies within the area size of the chosen cell.
func (e *Executor) area(ctx *Context, eff types.SkillEffect) []*types.PieceInstance {
	cx, cy, ok := ctx.TargetCell()
	if !ok {
		cx, cy, _ = state.Position(ctx.Piece)
	}
	size := eff.Range
	if size <= 0 {
		size = ctx.Skill.AreaSize
	}
	var out []*types.PieceInstance
	for _, p := range ctx.EnemiesInRange(0) {
		x, y, _ := state.Position(p)
		if state.Distance(cx, cy, x, y) <= size {
			out = append(out, p)
		}
	}
	return out
}

func targetID(ctx *Context) string {
	if t := ctx.Target(); t != nil {
		return t.InstanceID
	}
	return ctx.TargetPieceID
}

func describe(caster, skill string, res Result) string {
	msg := fmt.Sprintf("%s uses %s", caster, skill)
	switch {
	case res.Damage > 0 && res.Heal > 0:
		msg += fmt.Sprintf(", dealing %d damage and healing %d", res.Damage, res.Heal)
	case res.Damage > 0:
		msg += fmt.Sprintf(", dealing %d damage", res.Damage)
	case res.Heal > 0:
		msg += fmt.Sprintf(", healing %d", res.Heal)
	}
	return msg
}

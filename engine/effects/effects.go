// Package effects implements the atomic battle mutations shared by skills,
// status effects, and trigger rules. Every primitive validates its target,
// mutates the snapshot in place, and reports an Outcome.
package effects

import (
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// Event types emitted by primitives and the turn machine.
const (
	AfterSkillUsed     = "afterSkillUsed"
	AfterDamageDealt   = "afterDamageDealt"
	AfterDamageTaken   = "afterDamageTaken"
	AfterPieceKilled   = "afterPieceKilled"
	AfterPieceSummoned = "afterPieceSummoned"
	BeginTurn          = "beginTurn"
	EndTurn            = "endTurn"
	AfterMove          = "afterMove"
)

// Invulnerable is the status tag that nullifies incoming damage.
const Invulnerable = "invulnerable"

// Outcome reports what a primitive did.
type Outcome struct {
	Type    string `json:"type"`
	PieceID string `json:"pieceId,omitempty"`
	Value   int    `json:"value"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func failed(typ, pieceID, msg string) Outcome {
	return Outcome{Type: typ, PieceID: pieceID, Message: msg}
}

// Damage removes amount from the target, shield first, clamping HP at 0.
// Damage and kill events are emitted only when HP was actually lost.
func Damage(b *types.BattleState, sourceID string, target *types.PieceInstance, amount int) (Outcome, []types.Event) {
	if !state.Alive(target) {
		return failed("damage", pieceID(target), "target is not alive"), nil
	}
	if amount < 0 || hasTag(target, Invulnerable) {
		amount = 0
	}

	// Shield absorbs first.
	absorbed := min(target.Shield, amount)
	target.Shield -= absorbed
	amount -= absorbed

	lost := min(target.CurrentHP, amount)
	target.CurrentHP -= lost

	out := Outcome{Type: "damage", PieceID: target.InstanceID, Value: lost, Success: true}
	if lost == 0 {
		return out, nil
	}

	turn := b.Turn.TurnNumber
	evts := []types.Event{
		{Type: AfterDamageDealt, SourcePieceID: sourceID, TargetPieceID: target.InstanceID, Damage: lost, HasDamage: true, TurnNumber: turn},
		{Type: AfterDamageTaken, SourcePieceID: sourceID, TargetPieceID: target.InstanceID, Damage: lost, HasDamage: true, TurnNumber: turn},
	}
	if target.CurrentHP == 0 {
		evts = append(evts, types.Event{
			Type: AfterPieceKilled, SourcePieceID: sourceID, TargetPieceID: target.InstanceID,
			Damage: lost, HasDamage: true, TurnNumber: turn,
		})
	}
	return out, evts
}

// Heal restores HP up to maxHp. Dead pieces cannot be healed.
func Heal(target *types.PieceInstance, amount int) Outcome {
	if !state.Alive(target) {
		return failed("heal", pieceID(target), "target is not alive")
	}
	if amount < 0 {
		amount = 0
	}
	gained := min(target.MaxHP-target.CurrentHP, amount)
	if gained < 0 {
		gained = 0
	}
	target.CurrentHP += gained
	return Outcome{Type: "heal", PieceID: target.InstanceID, Value: gained, Success: true}
}

// ModifyStat adds delta to one stat and returns the delta actually applied.
// Attack, defense, and moveRange floor at 0; maxHp floors at 1 and drags
// currentHp down with it.
func ModifyStat(target *types.PieceInstance, stat string, delta int) Outcome {
	if target == nil {
		return failed("modifyStat", "", "no target")
	}
	var field *int
	floor := 0
	switch stat {
	case "attack":
		field = &target.Attack
	case "defense":
		field = &target.Defense
	case "moveRange":
		field = &target.MoveRange
	case "maxHp":
		field = &target.MaxHP
		floor = 1
	case "currentHp":
		field = &target.CurrentHP
	default:
		return failed("modifyStat", target.InstanceID, "unknown stat "+stat)
	}

	before := *field
	next := max(before+delta, floor)
	if stat == "currentHp" {
		next = min(next, target.MaxHP)
	}
	*field = next
	if stat == "maxHp" && target.CurrentHP > target.MaxHP {
		target.CurrentHP = target.MaxHP
	}
	return Outcome{Type: "modifyStat", PieceID: target.InstanceID, Value: next - before, Success: true}
}

// SetStat assigns a stat through ModifyStat so the same floors apply.
func SetStat(target *types.PieceInstance, stat string, value int) Outcome {
	if target == nil {
		return failed("modifyStat", "", "no target")
	}
	cur, ok := StatValue(target, stat)
	if !ok {
		return failed("modifyStat", target.InstanceID, "unknown stat "+stat)
	}
	return ModifyStat(target, stat, value-cur)
}

// StatValue reads a stat by name.
func StatValue(p *types.PieceInstance, stat string) (int, bool) {
	switch stat {
	case "attack":
		return p.Attack, true
	case "defense":
		return p.Defense, true
	case "moveRange":
		return p.MoveRange, true
	case "maxHp":
		return p.MaxHP, true
	case "currentHp":
		return p.CurrentHP, true
	case "shield":
		return p.Shield, true
	}
	return 0, false
}

// Shield adds a damage-absorbing shield. Shields accumulate.
func Shield(target *types.PieceInstance, amount int) Outcome {
	if !state.Alive(target) {
		return failed("shield", pieceID(target), "target is not alive")
	}
	if amount < 0 {
		amount = 0
	}
	target.Shield += amount
	return Outcome{Type: "shield", PieceID: target.InstanceID, Value: amount, Success: true}
}

// Teleport moves a piece to (x, y) if the tile is on the map, walkable,
// and free of other living pieces.
func Teleport(b *types.BattleState, p *types.PieceInstance, x, y int) Outcome {
	if !state.Alive(p) {
		return failed("teleport", pieceID(p), "piece is not alive")
	}
	if !state.InBounds(&b.Map, x, y) {
		return failed("teleport", p.InstanceID, "destination out of bounds")
	}
	if !state.IsWalkable(&b.Map, x, y) {
		return failed("teleport", p.InstanceID, "destination is not walkable")
	}
	if other := state.PieceAt(b, x, y); other != nil && other.InstanceID != p.InstanceID {
		return failed("teleport", p.InstanceID, "destination is occupied")
	}
	state.SetPosition(p, x, y)
	return Outcome{Type: "teleport", PieceID: p.InstanceID, Success: true}
}

// AddChargePoints credits a player. Negative amounts are ignored.
func AddChargePoints(b *types.BattleState, playerID string, amount int) Outcome {
	pl := state.Player(b, playerID)
	if pl == nil {
		return failed("addChargePoints", "", "unknown player "+playerID)
	}
	if amount < 0 {
		amount = 0
	}
	pl.ChargePoints += amount
	return Outcome{Type: "addChargePoints", Value: amount, Success: true}
}

func pieceID(p *types.PieceInstance) string {
	if p == nil {
		return ""
	}
	return p.InstanceID
}

func hasTag(p *types.PieceInstance, tag string) bool {
	for _, t := range p.StatusTags {
		if t == tag {
			return true
		}
	}
	return false
}

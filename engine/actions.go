package engine

import (
	"go.uber.org/zap"

	"github.com/nathoo/duelcore/engine/effects"
	"github.com/nathoo/duelcore/engine/rules"
	"github.com/nathoo/duelcore/engine/skills"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/engine/status"
	"github.com/nathoo/duelcore/types"
)

// beginPhase advances start -> action or end -> start of the next
// player's turn. In any other phase it changes nothing.
func (e *Engine) beginPhase(b *types.BattleState, st *step) error {
	phase := b.Turn.Phase
	switch {
	case canAdvance(phase, evBegin):
		next, err := advance(phase, evBegin)
		if err != nil {
			return ruleErr(KindWrongPhase, "cannot begin phase %q: %v", phase, err)
		}
		b.Turn.Phase = next
		e.hazards(b, st)
		e.fire(b, st, []types.Event{{
			Type:       effects.BeginTurn,
			TurnNumber: b.Turn.TurnNumber,
			PlayerID:   b.Turn.CurrentPlayerID,
		}})

	case canAdvance(phase, evRollover):
		next, err := advance(phase, evRollover)
		if err != nil {
			return ruleErr(KindWrongPhase, "cannot begin phase %q: %v", phase, err)
		}
		b.Turn = types.TurnState{
			CurrentPlayerID: nextPlayer(b),
			TurnNumber:      b.Turn.TurnNumber + 1,
			Phase:           next,
		}
		rules.UpdateCooldowns(b)
		st.say("turn %d: %s to act", b.Turn.TurnNumber, b.Turn.CurrentPlayerID)
	}
	return nil
}

// hazards applies tile damage to the current player's pieces.
func (e *Engine) hazards(b *types.BattleState, st *step) {
	for _, p := range state.PiecesOf(b, b.Turn.CurrentPlayerID) {
		x, y, ok := state.Position(p)
		if !ok {
			continue
		}
		tile, ok := state.TileAt(&b.Map, x, y)
		if !ok || tile.Props.DamagePerTurn <= 0 {
			continue
		}
		out, evts := effects.Damage(b, "", p, tile.Props.DamagePerTurn)
		if out.Value > 0 {
			st.say("%s takes %d damage from %s", p.TemplateID, out.Value, tile.Props.Type)
		}
		e.fire(b, st, evts)
	}
}

func nextPlayer(b *types.BattleState) string {
	if len(b.Players) == 0 {
		return b.Turn.CurrentPlayerID
	}
	for i, pl := range b.Players {
		if pl.PlayerID == b.Turn.CurrentPlayerID {
			return b.Players[(i+1)%len(b.Players)].PlayerID
		}
	}
	return b.Players[0].PlayerID
}

// checkActor verifies the acting player may take an action-phase action.
func checkActor(b *types.BattleState, a types.BattleAction) error {
	if state.Player(b, a.PlayerID) == nil {
		return ruleErr(KindPlayerNotFound, "unknown player %q", a.PlayerID)
	}
	if a.PlayerID != b.Turn.CurrentPlayerID {
		return ruleErr(KindNotYourTurn, "it is %s's turn", b.Turn.CurrentPlayerID)
	}
	if b.Turn.Phase != PhaseAction {
		return ruleErr(KindWrongPhase, "actions are only allowed in the action phase (phase is %s)", b.Turn.Phase)
	}
	return nil
}

// ownPiece returns the acting player's living, active piece.
func ownPiece(b *types.BattleState, a types.BattleAction) (*types.PieceInstance, error) {
	p := state.PieceByID(b, a.PieceID)
	if p == nil {
		return nil, ruleErr(KindPieceNotFound, "piece %q not found", a.PieceID)
	}
	if p.OwnerPlayerID != a.PlayerID {
		return nil, ruleErr(KindNotYourPiece, "piece %s belongs to %s", p.InstanceID, p.OwnerPlayerID)
	}
	if !state.Alive(p) {
		return nil, ruleErr(KindPieceNotFound, "piece %s is defeated", p.InstanceID)
	}
	if status.Disabled(p) {
		return nil, ruleErr(KindPieceDisabled, "%s cannot act this turn", p.TemplateID)
	}
	return p, nil
}

func (e *Engine) move(b *types.BattleState, st *step, a types.BattleAction) error {
	if err := checkActor(b, a); err != nil {
		return err
	}
	if b.Turn.Actions.HasMoved {
		return ruleErr(KindActionAlreadyUsed, "already moved this turn")
	}
	p, err := ownPiece(b, a)
	if err != nil {
		return err
	}
	x, y, ok := state.Position(p)
	if !ok {
		return ruleErr(KindNotOnBoard, "%s is not on the board", p.TemplateID)
	}

	tx, ty := a.ToX, a.ToY
	if !state.InBounds(&b.Map, tx, ty) {
		return ruleErr(KindOutOfBounds, "(%d, %d) is out of bounds", tx, ty)
	}
	if (tx == x) == (ty == y) {
		return ruleErr(KindInvalidMove, "must move in a straight line")
	}
	dist := state.Distance(x, y, tx, ty)
	if r := state.MoveRange(b, p); r > 0 && dist > r {
		return ruleErr(KindInvalidMove, "%s can move %d tiles, not %d", p.TemplateID, r, dist)
	}
	if !state.IsWalkable(&b.Map, tx, ty) {
		return ruleErr(KindNotWalkable, "(%d, %d) is not walkable", tx, ty)
	}
	if state.PieceAt(b, tx, ty) != nil {
		return ruleErr(KindOccupied, "(%d, %d) is occupied", tx, ty)
	}

	state.SetPosition(p, tx, ty)
	b.Turn.Actions.HasMoved = true
	st.say("%s moves to (%d, %d)", p.TemplateID, tx, ty)
	e.fire(b, st, []types.Event{{
		Type:          effects.AfterMove,
		SourcePieceID: p.InstanceID,
		TurnNumber:    b.Turn.TurnNumber,
		PlayerID:      a.PlayerID,
	}})
	return nil
}

// useSkill runs a basic or charge skill. Once validation passes the
// action, its cooldown, and any charge cost are spent whether or not the
// skill's effects succeed.
func (e *Engine) useSkill(b *types.BattleState, st *step, a types.BattleAction, charge bool) error {
	if err := checkActor(b, a); err != nil {
		return err
	}
	used := b.Turn.Actions.HasUsedBasicSkill
	if charge {
		used = b.Turn.Actions.HasUsedChargeSkill
	}
	if used {
		if charge {
			return ruleErr(KindActionAlreadyUsed, "already used a charge skill this turn")
		}
		return ruleErr(KindActionAlreadyUsed, "already used a basic skill this turn")
	}

	p, err := ownPiece(b, a)
	if err != nil {
		return err
	}
	def, ok := b.SkillsByID[a.SkillID]
	ss := state.SkillStateOf(p, a.SkillID)
	if !ok || ss == nil {
		return ruleErr(KindSkillNotFound, "%s has no skill %q", p.TemplateID, a.SkillID)
	}
	if err := checkSkill(def, ss, charge); err != nil {
		return err
	}
	meta := state.Player(b, a.PlayerID)
	if charge && meta.ChargePoints < def.ChargeCost {
		return ruleErr(KindInsufficientCharge, "%s needs %d charge points, have %d",
			def.ID, def.ChargeCost, meta.ChargePoints)
	}
	if err := checkTarget(b, p, def, a); err != nil {
		return err
	}
	if charge {
		meta.ChargePoints -= def.ChargeCost
	}

	res := e.skills.Execute(&skills.Context{
		Battle:        b,
		Piece:         p,
		Skill:         def,
		TargetPieceID: a.TargetPieceID,
		TargetX:       a.TargetX,
		TargetY:       a.TargetY,
	})

	// Bookkeeping. Effects may have reallocated the roster.
	if p = state.PieceByID(b, a.PieceID); p != nil {
		if ss = state.SkillStateOf(p, a.SkillID); ss != nil {
			ss.CurrentCooldown = def.CooldownTurns
			if def.MaxCharges > 0 && ss.CurrentCharges > 0 {
				ss.CurrentCharges--
			}
		}
	}
	if charge {
		b.Turn.Actions.HasUsedChargeSkill = true
	} else {
		b.Turn.Actions.HasUsedBasicSkill = true
	}

	st.messages = append(st.messages, res.Message)
	if !res.Success {
		e.log.Debug("skill had no effect", zap.String("skill", def.ID), zap.String("message", res.Message))
	}
	e.fire(b, st, res.Events)
	return nil
}

func checkSkill(def types.SkillDefinition, ss *types.SkillState, charge bool) error {
	switch {
	case charge && def.Type != "super":
		return ruleErr(KindSkillUnavailable, "%s is not a charge skill", def.ID)
	case !charge && def.Type == "super":
		return ruleErr(KindSkillUnavailable, "%s is a charge skill", def.ID)
	case def.Kind == "passive":
		return ruleErr(KindSkillUnavailable, "%s is passive", def.ID)
	case !ss.Unlocked:
		return ruleErr(KindSkillUnavailable, "%s is locked", def.ID)
	case ss.CurrentCooldown > 0:
		return ruleErr(KindSkillUnavailable, "%s is on cooldown for %d more turns", def.ID, ss.CurrentCooldown)
	case def.MaxCharges > 0 && ss.CurrentCharges <= 0:
		return ruleErr(KindSkillUnavailable, "%s has no charges left", def.ID)
	}
	return nil
}

// checkTarget validates the caller's target against the skill's
// targeting. A skill that requires a target and got none asks for one.
func checkTarget(b *types.BattleState, p *types.PieceInstance, def types.SkillDefinition, a types.BattleAction) error {
	tg := def.Targeting
	byPiece := a.TargetPieceID != ""
	byCell := a.TargetX != nil && a.TargetY != nil

	if !byPiece && !byCell {
		if !def.RequiresTarget {
			return nil
		}
		tse := &TargetSelectionError{
			NeedsTargetSelection: true,
			SkillID:              def.ID,
			TargetType:           "piece",
			Filter:               "enemy",
		}
		if tg != nil {
			tse.TargetType = tg.Type
			tse.Filter = tg.Filter
			tse.Range = tg.Range
		}
		return tse
	}
	if tg == nil {
		return nil
	}

	var (
		target *types.PieceInstance
		tx, ty int
	)
	if byPiece {
		target = state.PieceByID(b, a.TargetPieceID)
		if !state.Alive(target) {
			return ruleErr(KindInvalidTarget, "target %q not found", a.TargetPieceID)
		}
		var ok bool
		if tx, ty, ok = state.Position(target); !ok {
			return ruleErr(KindInvalidTarget, "target %s is not on the board", target.InstanceID)
		}
	} else {
		tx, ty = *a.TargetX, *a.TargetY
		if !state.InBounds(&b.Map, tx, ty) {
			return ruleErr(KindOutOfBounds, "(%d, %d) is out of bounds", tx, ty)
		}
		target = state.PieceAt(b, tx, ty)
	}

	if tg.Type == "piece" && target == nil {
		return ruleErr(KindInvalidTarget, "no piece at (%d, %d)", tx, ty)
	}
	switch tg.Filter {
	case "enemy":
		if target == nil || target.OwnerPlayerID == p.OwnerPlayerID {
			return ruleErr(KindInvalidTarget, "%s must target an enemy", def.ID)
		}
	case "ally":
		if target == nil || target.OwnerPlayerID != p.OwnerPlayerID {
			return ruleErr(KindInvalidTarget, "%s must target an ally", def.ID)
		}
	case "empty":
		if target != nil {
			return ruleErr(KindInvalidTarget, "(%d, %d) is occupied", tx, ty)
		}
		if !state.IsWalkable(&b.Map, tx, ty) {
			return ruleErr(KindInvalidTarget, "(%d, %d) is not walkable", tx, ty)
		}
	}

	if tg.Range > 0 {
		px, py, _ := state.Position(p)
		if d := state.Distance(px, py, tx, ty); d > tg.Range {
			return ruleErr(KindInvalidTarget, "target is out of range (%d > %d)", d, tg.Range)
		}
	}
	return nil
}

func (e *Engine) endTurn(b *types.BattleState, st *step, a types.BattleAction) error {
	if state.Player(b, a.PlayerID) == nil {
		return ruleErr(KindPlayerNotFound, "unknown player %q", a.PlayerID)
	}
	if a.PlayerID != b.Turn.CurrentPlayerID {
		return ruleErr(KindNotYourTurn, "it is %s's turn", b.Turn.CurrentPlayerID)
	}
	next, err := advance(b.Turn.Phase, evFinish)
	if err != nil {
		return ruleErr(KindWrongPhase, "cannot end turn in phase %s", b.Turn.Phase)
	}
	b.Turn.Phase = next

	for _, p := range state.PiecesOf(b, a.PlayerID) {
		for i := range p.Skills {
			if p.Skills[i].CurrentCooldown > 0 {
				p.Skills[i].CurrentCooldown--
			}
		}
	}

	st.say("%s ends turn %d", a.PlayerID, b.Turn.TurnNumber)
	e.fire(b, st, []types.Event{{
		Type:       effects.EndTurn,
		TurnNumber: b.Turn.TurnNumber,
		PlayerID:   a.PlayerID,
	}})
	return nil
}

func (e *Engine) grantChargePoints(b *types.BattleState, st *step, a types.BattleAction) error {
	if state.Player(b, a.PlayerID) == nil {
		return ruleErr(KindPlayerNotFound, "unknown player %q", a.PlayerID)
	}
	if a.Amount < 0 {
		return ruleErr(KindInvalidAction, "cannot grant %d charge points", a.Amount)
	}
	effects.AddChargePoints(b, a.PlayerID, a.Amount)
	st.say("%s gains %d charge points", a.PlayerID, a.Amount)
	return nil
}

// surrender drops every piece of the player to 0 HP. Deciding the winner
// is left to the caller.
func (e *Engine) surrender(b *types.BattleState, st *step, a types.BattleAction) error {
	if state.Player(b, a.PlayerID) == nil {
		return ruleErr(KindPlayerNotFound, "unknown player %q", a.PlayerID)
	}
	for _, p := range state.PiecesOf(b, a.PlayerID) {
		p.CurrentHP = 0
	}
	st.say("%s surrenders", a.PlayerID)
	return nil
}

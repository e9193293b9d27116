package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// Default arena used when a setup names no map.
const (
	DefaultMapID     = "arena"
	DefaultMapWidth  = 8
	DefaultMapHeight = 6
)

// NewBattle builds the opening snapshot for setup with a silent engine.
func NewBattle(defs *state.Defs, setup types.Setup) (*types.BattleState, error) {
	return std.NewBattle(defs, setup)
}

// NewBattle builds the opening snapshot: players, pieces spawned from
// their templates, skill states, template rules bound to each instance,
// and the global rules. Pieces without a position are placed on a random
// free walkable tile drawn from the setup seed.
func (e *Engine) NewBattle(defs *state.Defs, setup types.Setup) (*types.BattleState, error) {
	if len(setup.Players) < 2 {
		return nil, fmt.Errorf("battle needs at least two players, got %d", len(setup.Players))
	}

	// 1. Map.
	var m types.BoardMap
	if setup.Map == "" {
		m = state.BorderedMap(DefaultMapID, DefaultMapWidth, DefaultMapHeight)
	} else {
		def, ok := defs.Maps[setup.Map]
		if !ok {
			return nil, fmt.Errorf("unknown map %q", setup.Map)
		}
		m = def
		m.Tiles = append([]types.Tile(nil), def.Tiles...)
	}

	b := &types.BattleState{
		Map:                    m,
		Pieces:                 []types.PieceInstance{},
		Graveyard:              []types.PieceInstance{},
		PieceStatsByTemplateID: map[string]types.PieceStats{},
		SkillsByID:             map[string]types.SkillDefinition{},
		StatusDefsByID:         map[string]types.StatusDefinition{},
		Rules:                  []types.TriggerRule{},
		Actions:                []types.ActionLog{},
	}
	for id, tpl := range defs.Templates {
		b.PieceStatsByTemplateID[id] = tpl.Stats
	}
	for id, sk := range defs.Skills {
		b.SkillsByID[id] = state.CloneSkill(sk)
	}
	for id, sd := range defs.Statuses {
		b.StatusDefsByID[id] = sd
	}

	// 2. Players and pieces.
	rng := NewRNG(setup.Seed)
	referenced := map[string]bool{}
	var bound []types.TriggerRule
	for _, sp := range setup.Players {
		if sp.ID == "" {
			return nil, fmt.Errorf("setup player has no id")
		}
		if state.Player(b, sp.ID) != nil {
			return nil, fmt.Errorf("duplicate player %q", sp.ID)
		}
		b.Players = append(b.Players, types.PlayerTurnMeta{PlayerID: sp.ID, ChargePoints: setup.ChargePoints})

		for i, spec := range sp.Pieces {
			tpl, ok := defs.Templates[spec.TemplateID]
			if !ok {
				return nil, fmt.Errorf("player %s: unknown template %q", sp.ID, spec.TemplateID)
			}
			p, err := spawn(defs, tpl, fmt.Sprintf("%s-%d", sp.ID, i+1), sp.ID)
			if err != nil {
				return nil, err
			}
			if err := place(b, &p, spec, rng); err != nil {
				return nil, fmt.Errorf("player %s: %w", sp.ID, err)
			}

			for _, rid := range tpl.Rules {
				r, ok := defs.Rules[rid]
				if !ok {
					return nil, fmt.Errorf("template %s: unknown rule %q", tpl.ID, rid)
				}
				referenced[rid] = true
				r = state.CloneRule(r)
				r.ID = rid + "@" + p.InstanceID
				r.PieceID = p.InstanceID
				p.Rules = append(p.Rules, r.ID)
				bound = append(bound, r)
			}
			b.Pieces = append(b.Pieces, p)
		}
	}

	// 3. Global rules first, then the piece-bound ones.
	global := setup.Rules
	if len(global) == 0 {
		for _, id := range defs.RuleOrder {
			if !referenced[id] {
				global = append(global, id)
			}
		}
	}
	for _, id := range global {
		r, ok := defs.Rules[id]
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", id)
		}
		state.AddRule(b, state.CloneRule(r))
	}
	for _, r := range bound {
		state.AddRule(b, r)
	}

	// 4. First player opens in the start phase.
	b.Turn = types.TurnState{
		CurrentPlayerID: b.Players[0].PlayerID,
		TurnNumber:      1,
		Phase:           PhaseStart,
	}

	e.log.Info("battle created",
		zap.String("map", b.Map.ID),
		zap.Int("pieces", len(b.Pieces)),
		zap.Int("rules", len(b.Rules)),
		zap.Int64("seed", rng.Seed()),
		zap.Int64("rng_draws", rng.Position()))
	return b, nil
}

// spawn creates a piece instance from its template.
func spawn(defs *state.Defs, tpl types.PieceTemplate, id, owner string) (types.PieceInstance, error) {
	p := types.PieceInstance{
		InstanceID:    id,
		TemplateID:    tpl.ID,
		OwnerPlayerID: owner,
		Faction:       tpl.Faction,
		CurrentHP:     tpl.Stats.MaxHP,
		MaxHP:         tpl.Stats.MaxHP,
		Attack:        tpl.Stats.Attack,
		Defense:       tpl.Stats.Defense,
		MoveRange:     tpl.Stats.MoveRange,
		Skills:        []types.SkillState{},
		StatusEffects: []types.StatusEffect{},
		StatusTags:    []string{},
		Rules:         []string{},
	}
	for _, ref := range tpl.Skills {
		sk, ok := defs.Skills[ref.SkillID]
		if !ok {
			return p, fmt.Errorf("template %s: unknown skill %q", tpl.ID, ref.SkillID)
		}
		p.Skills = append(p.Skills, types.SkillState{
			SkillID:        sk.ID,
			CurrentCharges: sk.MaxCharges,
			Unlocked:       true,
		})
	}
	return p, nil
}

// place puts p on its requested tile or on a random free one.
func place(b *types.BattleState, p *types.PieceInstance, spec types.SetupPiece, rng *RNG) error {
	if (spec.X == nil) != (spec.Y == nil) {
		return fmt.Errorf("%s: position needs both x and y", p.InstanceID)
	}
	if spec.X != nil {
		x, y := *spec.X, *spec.Y
		if !state.IsWalkable(&b.Map, x, y) {
			return fmt.Errorf("%s: (%d, %d) is not a walkable tile", p.InstanceID, x, y)
		}
		if state.PieceAt(b, x, y) != nil {
			return fmt.Errorf("%s: (%d, %d) is occupied", p.InstanceID, x, y)
		}
		state.SetPosition(p, x, y)
		return nil
	}

	var free []types.Tile
	for _, t := range b.Map.Tiles {
		if t.Props.Walkable && t.Props.DamagePerTurn == 0 && state.PieceAt(b, t.X, t.Y) == nil {
			free = append(free, t)
		}
	}
	if len(free) == 0 {
		return fmt.Errorf("%s: no free tile left", p.InstanceID)
	}
	t := free[rng.Pick(len(free))]
	state.SetPosition(p, t.X, t.Y)
	return nil
}

// Package skills resolves skill effect trees against a battle snapshot.
package skills

import (
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// Context is everything a skill sees while it executes: the battle, the
// caster, and the target the player picked, if any.
type Context struct {
	Battle        *types.BattleState
	Piece         *types.PieceInstance
	Skill         types.SkillDefinition
	TargetPieceID string
	TargetX       *int
	TargetY       *int
}

// Distance is the Manhattan distance between two cells.
func (c *Context) Distance(x1, y1, x2, y2 int) int {
	return state.Distance(x1, y1, x2, y2)
}

// PieceAt returns the living piece on (x, y), or nil.
func (c *Context) PieceAt(x, y int) *types.PieceInstance {
	return state.PieceAt(c.Battle, x, y)
}

// InRange reports whether target is within r of the caster. A zero range
// covers the whole board.
func (c *Context) InRange(target *types.PieceInstance, r int) bool {
	tx, ty, ok := state.Position(target)
	if !ok {
		return false
	}
	if r <= 0 {
		return true
	}
	cx, cy, ok := state.Position(c.Piece)
	if !ok {
		return false
	}
	return state.Distance(cx, cy, tx, ty) <= r
}

// EnemiesInRange returns living enemy pieces within r, in roster order.
func (c *Context) EnemiesInRange(r int) []*types.PieceInstance {
	return c.collect(r, func(p *types.PieceInstance) bool {
		return p.OwnerPlayerID != c.Piece.OwnerPlayerID
	})
}

// AlliesInRange returns living allied pieces within r, caster included.
func (c *Context) AlliesInRange(r int) []*types.PieceInstance {
	return c.collect(r, func(p *types.PieceInstance) bool {
		return p.OwnerPlayerID == c.Piece.OwnerPlayerID
	})
}

// NearestEnemy returns the closest living enemy. Ties go to roster order.
func (c *Context) NearestEnemy() *types.PieceInstance {
	cx, cy, _ := state.Position(c.Piece)
	return pick(c.EnemiesInRange(0), func(p *types.PieceInstance) int {
		x, y, _ := state.Position(p)
		return state.Distance(cx, cy, x, y)
	})
}

// LowestHPEnemy returns the living enemy with the least HP.
func (c *Context) LowestHPEnemy() *types.PieceInstance {
	return pick(c.EnemiesInRange(0), func(p *types.PieceInstance) int { return p.CurrentHP })
}

// HighestAttackEnemy returns the living enemy with the most attack.
func (c *Context) HighestAttackEnemy() *types.PieceInstance {
	return pick(c.EnemiesInRange(0), func(p *types.PieceInstance) int { return -p.Attack })
}

// LowestDefenseEnemy returns the living enemy with the least defense.
func (c *Context) LowestDefenseEnemy() *types.PieceInstance {
	return pick(c.EnemiesInRange(0), func(p *types.PieceInstance) int { return p.Defense })
}

// Target returns the explicitly chosen target piece: by ID, or standing
// on the chosen tile.
func (c *Context) Target() *types.PieceInstance {
	if c.TargetPieceID != "" {
		if p := state.PieceByID(c.Battle, c.TargetPieceID); state.Alive(p) {
			return p
		}
		return nil
	}
	if c.TargetX != nil && c.TargetY != nil {
		return state.PieceAt(c.Battle, *c.TargetX, *c.TargetY)
	}
	return nil
}

// TargetCell returns the chosen tile, falling back to the chosen piece's
// position.
func (c *Context) TargetCell() (x, y int, ok bool) {
	if c.TargetX != nil && c.TargetY != nil {
		return *c.TargetX, *c.TargetY, true
	}
	if p := c.Target(); p != nil {
		return state.Position(p)
	}
	return 0, 0, false
}

func (c *Context) collect(r int, keep func(*types.PieceInstance) bool) []*types.PieceInstance {
	var out []*types.PieceInstance
	for i := range c.Battle.Pieces {
		p := &c.Battle.Pieces[i]
		if !state.Alive(p) || !keep(p) || !c.InRange(p, r) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// pick returns the candidate with the smallest score; the first wins ties.
func pick(candidates []*types.PieceInstance, score func(*types.PieceInstance) int) *types.PieceInstance {
	var best *types.PieceInstance
	bestScore := 0
	for _, p := range candidates {
		s := score(p)
		if best == nil || s < bestScore {
			best, bestScore = p, s
		}
	}
	return best
}

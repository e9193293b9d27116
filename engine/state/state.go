// Package state holds the loaded battle definitions and the lookup helpers
// every other engine package reads the battle snapshot through.
package state

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nathoo/duelcore/types"
)

// Defs holds the immutable content loaded from Lua.
type Defs struct {
	Game      types.GameDef
	Maps      map[string]types.BoardMap
	Templates map[string]types.PieceTemplate
	Skills    map[string]types.SkillDefinition
	Statuses  map[string]types.StatusDefinition
	Rules     map[string]types.TriggerRule
	RuleOrder []string // rule IDs in load order
}

// NewDefs returns empty definitions with all maps allocated.
func NewDefs() *Defs {
	return &Defs{
		Maps:      map[string]types.BoardMap{},
		Templates: map[string]types.PieceTemplate{},
		Skills:    map[string]types.SkillDefinition{},
		Statuses:  map[string]types.StatusDefinition{},
		Rules:     map[string]types.TriggerRule{},
	}
}

// PieceByID returns the roster piece with the given instance ID, or nil.
// The returned pointer aliases the battle's slice.
func PieceByID(b *types.BattleState, id string) *types.PieceInstance {
	if id == "" {
		return nil
	}
	for i := range b.Pieces {
		if b.Pieces[i].InstanceID == id {
			return &b.Pieces[i]
		}
	}
	return nil
}

// PieceAt returns the living piece standing on (x, y), or nil.
func PieceAt(b *types.BattleState, x, y int) *types.PieceInstance {
	for i := range b.Pieces {
		p := &b.Pieces[i]
		if !Alive(p) {
			continue
		}
		if px, py, ok := Position(p); ok && px == x && py == y {
			return p
		}
	}
	return nil
}

// Position returns a piece's coordinates. ok is false when the piece is
// off the board.
func Position(p *types.PieceInstance) (x, y int, ok bool) {
	if p == nil || p.X == nil || p.Y == nil {
		return 0, 0, false
	}
	return *p.X, *p.Y, true
}

// SetPosition places a piece on (x, y).
func SetPosition(p *types.PieceInstance, x, y int) {
	p.X = &x
	p.Y = &y
}

// Alive reports whether the piece has HP left.
func Alive(p *types.PieceInstance) bool {
	return p != nil && p.CurrentHP > 0
}

// Player returns the turn metadata for a player, or nil.
func Player(b *types.BattleState, playerID string) *types.PlayerTurnMeta {
	for i := range b.Players {
		if b.Players[i].PlayerID == playerID {
			return &b.Players[i]
		}
	}
	return nil
}

// SkillStateOf returns the piece's runtime state for a skill, or nil.
func SkillStateOf(p *types.PieceInstance, skillID string) *types.SkillState {
	for i := range p.Skills {
		if p.Skills[i].SkillID == skillID {
			return &p.Skills[i]
		}
	}
	return nil
}

// PiecesOf returns pointers to the living pieces owned by a player, in
// roster order.
func PiecesOf(b *types.BattleState, playerID string) []*types.PieceInstance {
	var out []*types.PieceInstance
	for i := range b.Pieces {
		p := &b.Pieces[i]
		if p.OwnerPlayerID == playerID && Alive(p) {
			out = append(out, p)
		}
	}
	return out
}

// MoveRange returns a piece's effective move range: the instance value,
// falling back to the template stats. Zero means unlimited.
func MoveRange(b *types.BattleState, p *types.PieceInstance) int {
	if p.MoveRange > 0 {
		return p.MoveRange
	}
	if stats, ok := b.PieceStatsByTemplateID[p.TemplateID]; ok {
		return stats.MoveRange
	}
	return 0
}

// NextID derives a deterministic ID from the battle sequence counter and
// the given parts, then advances the counter.
func NextID(b *types.BattleState, prefix string, parts ...string) string {
	b.Seq++
	name := fmt.Sprintf("%s:%d:%v", prefix, b.Seq, parts)
	return prefix + "-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()[:8]
}

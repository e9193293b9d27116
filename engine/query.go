package engine

import (
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// Cell is a board coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Winner reports the outcome of a battle. over is true once at most one
// player still has living pieces; winner is empty on a draw.
func Winner(b *types.BattleState) (winner string, over bool) {
	var standing []string
	for _, pl := range b.Players {
		if len(state.PiecesOf(b, pl.PlayerID)) > 0 {
			standing = append(standing, pl.PlayerID)
		}
	}
	switch len(standing) {
	case 0:
		return "", true
	case 1:
		return standing[0], true
	}
	return "", false
}

// LegalMoves lists the cells a piece could move to, ignoring whose turn it
// is and whether its player has already moved. Cells are ordered by
// direction (right, left, down, up), then by distance.
func LegalMoves(b *types.BattleState, pieceID string) []Cell {
	p := state.PieceByID(b, pieceID)
	if !state.Alive(p) {
		return nil
	}
	x, y, ok := state.Position(p)
	if !ok {
		return nil
	}
	r := state.MoveRange(b, p)
	if r <= 0 {
		r = max(b.Map.Width, b.Map.Height)
	}

	var out []Cell
	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for _, d := range dirs {
		for step := 1; step <= r; step++ {
			tx, ty := x+d[0]*step, y+d[1]*step
			if !state.InBounds(&b.Map, tx, ty) {
				break
			}
			if !state.IsWalkable(&b.Map, tx, ty) || state.PieceAt(b, tx, ty) != nil {
				continue
			}
			out = append(out, Cell{X: tx, Y: ty})
		}
	}
	return out
}

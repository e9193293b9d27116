package state

import (
	"fmt"

	"github.com/nathoo/duelcore/types"
)

// InBounds reports whether (x, y) lies on the map.
func InBounds(m *types.BoardMap, x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// TileAt returns the tile at (x, y). Out-of-bounds lookups report false.
func TileAt(m *types.BoardMap, x, y int) (types.Tile, bool) {
	if !InBounds(m, x, y) {
		return types.Tile{}, false
	}
	// Row-major fast path, then a scan for maps stored in another order.
	if i := y*m.Width + x; i < len(m.Tiles) && m.Tiles[i].X == x && m.Tiles[i].Y == y {
		return m.Tiles[i], true
	}
	for _, t := range m.Tiles {
		if t.X == x && t.Y == y {
			return t, true
		}
	}
	return types.Tile{}, false
}

// IsWalkable reports whether (x, y) exists and can be stood on.
func IsWalkable(m *types.BoardMap, x, y int) bool {
	t, ok := TileAt(m, x, y)
	return ok && t.Props.Walkable
}

// Distance is the Manhattan distance between two cells.
func Distance(x1, y1, x2, y2 int) int {
	return abs(x1-x2) + abs(y1-y2)
}

// ValidateMap checks the grid invariants: one tile per cell, every tile
// inside the declared bounds. It returns one message per problem.
func ValidateMap(m *types.BoardMap) []string {
	var errs []string
	if m.Width <= 0 || m.Height <= 0 {
		errs = append(errs, fmt.Sprintf("map %q: width and height must be positive", m.ID))
		return errs
	}
	if len(m.Tiles) != m.Width*m.Height {
		errs = append(errs, fmt.Sprintf("map %q: has %d tiles, want %d", m.ID, len(m.Tiles), m.Width*m.Height))
	}
	seen := make(map[[2]int]bool, len(m.Tiles))
	for _, t := range m.Tiles {
		if !InBounds(m, t.X, t.Y) {
			errs = append(errs, fmt.Sprintf("map %q: tile (%d,%d) out of bounds", m.ID, t.X, t.Y))
			continue
		}
		key := [2]int{t.X, t.Y}
		if seen[key] {
			errs = append(errs, fmt.Sprintf("map %q: duplicate tile at (%d,%d)", m.ID, t.X, t.Y))
		}
		seen[key] = true
	}
	return errs
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// BorderedMap builds a width×height map with a wall border and a floor
// interior, stored row-major.
func BorderedMap(id string, width, height int) types.BoardMap {
	m := types.BoardMap{ID: id, Name: id, Width: width, Height: height}
	m.Tiles = make([]types.Tile, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			border := x == 0 || y == 0 || x == width-1 || y == height-1
			props := types.TileProps{Walkable: true, BulletPassable: true, Type: "floor"}
			if border {
				props = types.TileProps{Type: "wall"}
			}
			m.Tiles = append(m.Tiles, types.Tile{
				ID:    fmt.Sprintf("%d-%d", x, y),
				X:     x,
				Y:     y,
				Props: props,
			})
		}
	}
	return m
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/duelcore/cli"
	"github.com/nathoo/duelcore/engine"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// actionFlags renders the used actions of the current turn as "M S C",
// with a dash for each one still available.
func actionFlags(a types.TurnActions) string {
	flag := func(used bool, c string) string {
		if used {
			return c
		}
		return "-"
	}
	return flag(a.HasMoved, "M") + flag(a.HasUsedBasicSkill, "S") + flag(a.HasUsedChargeSkill, "C")
}

// renderStatusBar produces a full-width inverted status line showing the
// turn, the acting player and phase, used actions, and charge points.
func (m Model) renderStatusBar() string {
	b := m.session.State

	left := fmt.Sprintf(" Turn %d | %s | %s | %s", b.Turn.TurnNumber, b.Turn.CurrentPlayerID, b.Turn.Phase, actionFlags(b.Turn.Actions))
	if w, over := engine.Winner(b); over {
		if w == "" {
			left = " Battle over: draw"
		} else {
			left = fmt.Sprintf(" Battle over: %s wins", w)
		}
	}

	var charge []string
	for _, pl := range b.Players {
		charge = append(charge, fmt.Sprintf("%s:%d", pl.PlayerID, pl.ChargePoints))
	}
	right := fmt.Sprintf("CP %s | undo %d ", strings.Join(charge, " "), m.session.CanUndo())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderBoard draws the map with styled tiles next to a roster of the
// living pieces.
func (m Model) renderBoard() string {
	b := m.session.State
	lines := cli.Board(b)

	// Restyle every cell of the plain board; the header stays as is.
	styled := []string{styleAxis.Render(lines[0])}
	for y := 0; y < b.Map.Height; y++ {
		var row strings.Builder
		row.WriteString(styleAxis.Render(fmt.Sprintf("%2d ", y)))
		for x := 0; x < b.Map.Width; x++ {
			if p := state.PieceAt(b, x, y); p != nil {
				row.WriteString(pieceStyle(b, p).Render(cli.PieceGlyph(p)))
				continue
			}
			tile, _ := state.TileAt(&b.Map, x, y)
			glyph := cli.TileGlyph(tile)
			row.WriteString(tileStyle(glyph).Render(string(glyph)))
		}
		styled = append(styled, row.String())
	}

	board := styleBoard.Render(strings.Join(styled, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, board, m.renderRoster())
}

// renderRoster lists each piece with its HP, shield and statuses.
func (m Model) renderRoster() string {
	b := m.session.State
	var lines []string
	for i := range b.Pieces {
		p := &b.Pieces[i]
		line := fmt.Sprintf("%s %s %d/%d", cli.PieceGlyph(p), p.InstanceID, p.CurrentHP, p.MaxHP)
		if x, y, ok := state.Position(p); ok {
			line += fmt.Sprintf(" @%d,%d", x, y)
		}
		if p.Shield > 0 {
			line += fmt.Sprintf(" +%d", p.Shield)
		}
		for _, se := range p.StatusEffects {
			line += fmt.Sprintf(" %s:%d", se.Type, se.RemainingDuration)
		}
		lines = append(lines, pieceStyle(b, p).Render(line))
	}
	for _, p := range b.Graveyard {
		lines = append(lines, styleDead.Render("x "+p.InstanceID))
	}
	return styleRoster.Render(strings.Join(lines, "\n"))
}

// pieceStyle colours a piece by its owner's seat.
func pieceStyle(b *types.BattleState, p *types.PieceInstance) lipgloss.Style {
	for i, pl := range b.Players {
		if pl.PlayerID == p.OwnerPlayerID {
			return playerStyles[i%len(playerStyles)]
		}
	}
	return playerStyles[0]
}

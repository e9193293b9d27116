package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("209"))

	styleHeal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleTurn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true)

	styleOutcome = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleTarget = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Board.
	styleBoard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	styleRoster = lipgloss.NewStyle().
			Padding(1, 2)

	styleAxis  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleFloor = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	styleWall  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	styleWater = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleLava  = lipgloss.NewStyle().Foreground(lipgloss.Color("202"))
	styleHigh  = lipgloss.NewStyle().Foreground(lipgloss.Color("143"))
	styleDead  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)

	playerStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
	}
)

func tileStyle(glyph rune) lipgloss.Style {
	switch glyph {
	case '#':
		return styleWall
	case '~':
		return styleWater
	case '*':
		return styleLava
	case '^':
		return styleHigh
	default:
		return styleFloor
	}
}

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindDamage
	kindHeal
	kindTurn
	kindOutcome
	kindTarget
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of battle log line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasSuffix(line, "wins the battle!"),
		strings.HasSuffix(line, "ends in a draw."),
		strings.HasSuffix(line, " is defeated"),
		strings.HasSuffix(line, " surrenders"):
		return kindOutcome
	case strings.HasPrefix(line, "turn "), strings.Contains(line, " ends turn "):
		return kindTurn
	case strings.Contains(line, " needs a target"):
		return kindTarget
	case strings.Contains(line, "damage"):
		return kindDamage
	case strings.Contains(line, "healing"), strings.Contains(line, "heals"):
		return kindHeal
	default:
		return kindNarration
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindDamage:
		return styleDamage.Render(line)
	case kindHeal:
		return styleHeal.Render(line)
	case kindTurn:
		return styleTurn.Render(line)
	case kindOutcome:
		return styleOutcome.Render(line)
	case kindTarget:
		return styleTarget.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

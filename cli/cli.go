// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the duelcore battle engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/duelcore/engine"
	"github.com/nathoo/duelcore/engine/save"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// CLI handles terminal interaction with both players.
type CLI struct {
	Session   *engine.Session
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat

	pending *types.BattleAction
}

// New creates a CLI wired to the given session.
func New(s *engine.Session) *CLI {
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: DefaultSaveDir(),
	}
}

// DefaultSaveDir is ~/.duelcore/saves.
func DefaultSaveDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".duelcore", "saves")
}

// Run starts the battle loop. It shows the intro and the board, then
// loops: prompt → input → dispatch → output, until the battle ends or
// input runs out.
func (c *CLI) Run() {
	if intro := c.Session.Defs.Game.Intro; intro != "" {
		c.printLine(intro)
		c.printLine("")
	}
	c.printBoard()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print(c.prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		var res engine.Result
		if c.pending != nil {
			pending := *c.pending
			c.pending = nil
			res = c.Session.Target(pending, input)
		} else {
			// "again" / "g" repeats the last battle command.
			lower := strings.ToLower(input)
			if lower == "again" || lower == "g" {
				if c.lastCmd == "" {
					c.printLine("Nothing to repeat.")
					continue
				}
				input = c.lastCmd
			} else {
				c.lastCmd = input
			}
			res = c.Session.Step(input)
		}

		c.printResult(res)
		if c.Trace {
			c.printTrace(res)
		}
		if res.Pending != nil {
			c.pending = res.Pending
		}
		if res.Over {
			return
		}
	}
}

func (c *CLI) prompt() string {
	if c.pending != nil {
		return "target> "
	}
	return c.Session.State.Turn.CurrentPlayerID + "> "
}

// handleMeta dispatches meta-commands. Returns true if the battle should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/undo":
		c.pending = nil
		if c.Session.Undo() {
			c.printSystem(fmt.Sprintf("Undone. Turn %d, %s, %s phase.",
				c.Session.State.Turn.TurnNumber, c.Session.State.Turn.CurrentPlayerID, c.Session.State.Turn.Phase))
		} else {
			c.printSystem("Nothing to undo.")
		}

	case "/cancel":
		if c.pending == nil {
			c.printSystem("Nothing to cancel.")
		} else {
			c.pending = nil
			c.printSystem("Target request cancelled.")
		}

	case "/board":
		c.printBoard()

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Session.State, c.Session.Content, c.Session.Seed)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Battle saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if sd.Content != "" && c.Session.Content != "" && sd.Content != c.Session.Content {
		c.printSystem(fmt.Sprintf("Warning: save was made with %s, running %s.", sd.Content, c.Session.Content))
	}

	c.pending = nil
	c.Session.Reset(sd.Battle)
	c.Session.Seed = sd.Seed
	c.printSystem(fmt.Sprintf("Battle loaded from %s (turn %d).", name, sd.Battle.Turn.TurnNumber))
	c.printBoard()
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  - Save battle (default: quicksave)",
		"  /load [name]  - Load battle (default: quicksave)",
		"  /undo         - Take back the last action",
		"  /cancel       - Drop a pending target request",
		"  /board        - Show the board",
		"  /quit         - Exit",
		"  /help         - Show this help",
		"  /state        - Debug: dump current state",
		"  /trace        - Toggle event trace output",
		"",
		"Battle commands:",
		"  begin (b)                    - Start your turn",
		"  move <piece> <x> <y> (m)     - Move a piece",
		"  skill <piece> <skill> [on <target>] (s)",
		"  super <piece> <skill> [on <target>]",
		"  end (e)                      - End your turn",
		"  grant <n> [to <player>]      - Add charge points",
		"  surrender (ff)               - Give up",
		"  again (g)                    - Repeat your last command",
		"",
		"When a skill needs a target, answer with a piece or x y.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	b := c.Session.State
	c.printSystem(fmt.Sprintf("Turn: %d (%s, %s phase)", b.Turn.TurnNumber, b.Turn.CurrentPlayerID, b.Turn.Phase))
	act := b.Turn.Actions
	c.printSystem(fmt.Sprintf("Used: move=%t basic=%t charge=%t", act.HasMoved, act.HasUsedBasicSkill, act.HasUsedChargeSkill))
	for _, pl := range b.Players {
		c.printSystem(fmt.Sprintf("Player %s: %d charge", pl.PlayerID, pl.ChargePoints))
	}
	for i := range b.Pieces {
		c.printSystem(describePiece(&b.Pieces[i]))
	}
	if len(b.Graveyard) > 0 {
		var dead []string
		for _, p := range b.Graveyard {
			dead = append(dead, p.InstanceID)
		}
		c.printSystem(fmt.Sprintf("Graveyard: %s", strings.Join(dead, ", ")))
	}
	c.printSystem(fmt.Sprintf("Rules: %d, undo depth: %d", len(b.Rules), c.Session.CanUndo()))
}

func describePiece(p *types.PieceInstance) string {
	pos := "off board"
	if x, y, ok := state.Position(p); ok {
		pos = fmt.Sprintf("(%d, %d)", x, y)
	}
	line := fmt.Sprintf("%s [%s] %d/%d hp atk %d def %d mv %d at %s",
		p.InstanceID, p.TemplateID, p.CurrentHP, p.MaxHP, p.Attack, p.Defense, p.MoveRange, pos)
	if p.Shield > 0 {
		line += fmt.Sprintf(" shield %d", p.Shield)
	}
	for _, se := range p.StatusEffects {
		line += fmt.Sprintf(" %s(%d)", se.Type, se.RemainingDuration)
	}
	return line
}

func (c *CLI) printBoard() {
	for _, line := range Board(c.Session.State) {
		c.printLine(line)
	}
}

// Board renders the map as plain text rows: tile glyphs with each piece
// drawn as the first letter of its owner.
func Board(b *types.BattleState) []string {
	m := &b.Map
	var lines []string

	var hdr strings.Builder
	hdr.WriteString("   ")
	for x := 0; x < m.Width; x++ {
		fmt.Fprintf(&hdr, "%d", x%10)
	}
	lines = append(lines, hdr.String())

	for y := 0; y < m.Height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%2d ", y)
		for x := 0; x < m.Width; x++ {
			if p := state.PieceAt(b, x, y); p != nil {
				row.WriteString(PieceGlyph(p))
				continue
			}
			tile, _ := state.TileAt(m, x, y)
			row.WriteRune(TileGlyph(tile))
		}
		lines = append(lines, row.String())
	}
	return lines
}

// TileGlyph is the one-character symbol for a tile.
func TileGlyph(t types.Tile) rune {
	p := t.Props
	switch {
	case p.DamagePerTurn > 0:
		return '*'
	case !p.Walkable && p.BulletPassable:
		return '~'
	case !p.Walkable:
		return '#'
	case p.Height > 0:
		return '^'
	default:
		return '.'
	}
}

// PieceGlyph is the owner's initial, upper-cased.
func PieceGlyph(p *types.PieceInstance) string {
	if p.OwnerPlayerID == "" {
		return "?"
	}
	return strings.ToUpper(p.OwnerPlayerID[:1])
}

func (c *CLI) printTrace(res engine.Result) {
	if len(res.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(res.Events)))
		for _, e := range res.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s", e))
		}
	}
	if res.Err != nil {
		c.printSystem(fmt.Sprintf("[trace] Error: %T", res.Err))
	}
}

func (c *CLI) printResult(res engine.Result) {
	for _, line := range res.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

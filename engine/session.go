package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/duelcore/engine/parser"
	"github.com/nathoo/duelcore/engine/resolve"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// MaxUndo is how many prior snapshots a session keeps.
const MaxUndo = 50

// Session drives one battle from console input. It is the only holder of
// mutable battle state; every step replaces State with the snapshot Apply
// returns.
type Session struct {
	Engine  *Engine
	Defs    *state.Defs
	State   *types.BattleState
	Content string // content directory the battle was built from
	Seed    int64

	history []*types.BattleState
}

// Result is the outcome of one session step.
type Result struct {
	Output []string
	Events []string
	Err    error

	// Pending is set when a skill needs a target; answer it with Target.
	Pending *types.BattleAction
	Need    *TargetSelectionError

	Over   bool
	Winner string
}

// NewSession starts a session on b.
func NewSession(e *Engine, defs *state.Defs, b *types.BattleState) *Session {
	if e == nil {
		e = std
	}
	return &Session{Engine: e, Defs: defs, State: b}
}

// Step parses, resolves and applies one console command for the player
// whose turn it is.
func (s *Session) Step(input string) Result {
	cmd := parser.Parse(input)
	a, err := s.action(cmd)
	if err != nil {
		return fail(err)
	}
	return s.Do(a)
}

// Target answers a pending target request with a coordinate pair or a
// piece reference and applies the completed action.
func (s *Session) Target(pending types.BattleAction, input string) Result {
	ref, x, y := parser.ParseTarget(input)
	a := pending
	switch {
	case x != nil:
		a.TargetX, a.TargetY = x, y
	case ref != "":
		res, err := resolve.Resolve(s.State, s.Defs, a.PlayerID, types.Command{Target: ref})
		if err != nil {
			return fail(err)
		}
		a.TargetPieceID = res.TargetID
	default:
		return fail(errors.New("no target given"))
	}
	return s.Do(a)
}

// Do applies a and records the prior snapshot for Undo.
func (s *Session) Do(a types.BattleAction) Result {
	next, err := s.Engine.Apply(s.State, a)
	if err != nil {
		var tse *TargetSelectionError
		if errors.As(err, &tse) {
			res := fail(err)
			res.Output = []string{describeTarget(tse)}
			res.Pending = &a
			res.Need = tse
			return res
		}
		return fail(err)
	}

	s.history = append(s.history, s.State)
	if len(s.history) > MaxUndo {
		s.history = s.history[len(s.history)-MaxUndo:]
	}
	s.State = next

	var res Result
	if n := len(next.Actions); n > 0 {
		entry := next.Actions[n-1]
		res.Output = append(res.Output, entry.Messages...)
		res.Events = entry.Events
	}
	if w, over := Winner(next); over {
		res.Over, res.Winner = true, w
		if w == "" {
			res.Output = append(res.Output, "The battle ends in a draw.")
		} else {
			res.Output = append(res.Output, fmt.Sprintf("%s wins the battle!", w))
		}
		s.Engine.log.Info("battle over", zap.String("winner", w), zap.Int("turn", next.Turn.TurnNumber))
	}
	return res
}

// Undo restores the snapshot before the last applied action.
func (s *Session) Undo() bool {
	if len(s.history) == 0 {
		return false
	}
	s.State = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return true
}

// Reset replaces the battle, dropping undo history.
func (s *Session) Reset(b *types.BattleState) {
	s.State = b
	s.history = nil
}

// CanUndo reports how many steps can be undone.
func (s *Session) CanUndo() int {
	return len(s.history)
}

// action turns a parsed command into a battle action for the current player.
func (s *Session) action(cmd types.Command) (types.BattleAction, error) {
	actor := s.State.Turn.CurrentPlayerID
	a := types.BattleAction{PlayerID: actor}

	switch cmd.Verb {
	case "":
		return a, errors.New("say something")
	case "begin":
		a.Type = ActionBeginPhase
	case "end":
		a.Type = ActionEndTurn
	case "surrender":
		a.Type = ActionSurrender
	case "grant":
		a.Type = ActionGrantChargePoints
		a.Amount = cmd.Amount
		if cmd.Player != "" {
			a.PlayerID = cmd.Player
		}
	case "move":
		if cmd.X == nil {
			return a, errors.New("move where? try: move <piece> <x> <y>")
		}
		id, err := s.piece(actor, cmd.Piece)
		if err != nil {
			return a, err
		}
		a.Type = ActionMove
		a.PieceID = id
		a.ToX, a.ToY = *cmd.X, *cmd.Y
	case "skill", "super":
		a.Type = ActionUseBasicSkill
		if cmd.Verb == "super" {
			a.Type = ActionUseChargeSkill
		}
		res, err := resolve.Resolve(s.State, s.Defs, actor, cmd)
		if err != nil {
			return a, err
		}
		a.PieceID, a.SkillID, a.TargetPieceID = res.PieceID, res.SkillID, res.TargetID
		a.TargetX, a.TargetY = cmd.X, cmd.Y
	default:
		return a, fmt.Errorf("I don't know how to %q", cmd.Verb)
	}
	return a, nil
}

// piece resolves a piece reference. An empty reference picks the player's
// only living piece.
func (s *Session) piece(playerID, ref string) (string, error) {
	if ref == "" {
		own := state.PiecesOf(s.State, playerID)
		if len(own) == 1 {
			return own[0].InstanceID, nil
		}
		return "", &resolve.NotFoundError{Kind: "piece", Name: ref}
	}
	res, err := resolve.Resolve(s.State, s.Defs, playerID, types.Command{Piece: ref})
	return res.PieceID, err
}

func fail(err error) Result {
	return Result{Output: []string{err.Error()}, Err: err}
}

func describeTarget(tse *TargetSelectionError) string {
	reach := "any range"
	if tse.Range > 0 {
		reach = fmt.Sprintf("range %d", tse.Range)
	}
	what := "a piece"
	if tse.TargetType == "tile" {
		what = "a tile (x y)"
	}
	return fmt.Sprintf("%s needs a target: choose %s, %s, %s", tse.SkillID, what, tse.Filter, reach)
}

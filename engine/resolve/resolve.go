// Package resolve maps piece and skill references from parsed commands to
// instance and skill IDs.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// Result holds the resolved IDs for a command.
type Result struct {
	PieceID  string
	SkillID  string
	TargetID string
}

// AmbiguityError indicates multiple pieces or skills matched a reference.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates nothing matched a reference.
type NotFoundError struct {
	Kind string // "piece" | "skill" | "target"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s matches %q", e.Kind, e.Name)
}

// Resolve maps the piece, skill, and target references of cmd. The piece
// must belong to playerID; the target may be any living piece. defs
// supplies template display names and may be nil.
func Resolve(b *types.BattleState, defs *state.Defs, playerID string, cmd types.Command) (Result, error) {
	var res Result
	var err error

	if cmd.Piece != "" {
		res.PieceID, err = resolvePiece(b, defs, cmd.Piece, "piece", func(p *types.PieceInstance) bool {
			return p.OwnerPlayerID == playerID
		})
		if err != nil {
			return res, err
		}
	}

	if cmd.Skill != "" {
		if res.PieceID == "" {
			return res, &NotFoundError{Kind: "piece", Name: cmd.Piece}
		}
		res.SkillID, err = resolveSkill(b, state.PieceByID(b, res.PieceID), cmd.Skill)
		if err != nil {
			return res, err
		}
	}

	if cmd.Target != "" {
		res.TargetID, err = resolvePiece(b, defs, cmd.Target, "target", func(*types.PieceInstance) bool {
			return true
		})
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// resolvePiece resolves a reference to a living piece accepted by keep.
func resolvePiece(b *types.BattleState, defs *state.Defs, name, kind string, keep func(*types.PieceInstance) bool) (string, error) {
	nameLower := strings.ToLower(name)

	// 1. Exact instance ID match.
	for i := range b.Pieces {
		p := &b.Pieces[i]
		if state.Alive(p) && keep(p) && strings.ToLower(p.InstanceID) == nameLower {
			return p.InstanceID, nil
		}
	}

	// 2. Template ID or display name.
	var matches []string
	for i := range b.Pieces {
		p := &b.Pieces[i]
		if !state.Alive(p) || !keep(p) {
			continue
		}
		display := ""
		if defs != nil {
			display = defs.Templates[p.TemplateID].Name
		}
		if matchesName(p.TemplateID, display, nameLower) {
			matches = append(matches, p.InstanceID)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// resolveSkill resolves a reference to one of the piece's skills.
func resolveSkill(b *types.BattleState, p *types.PieceInstance, name string) (string, error) {
	nameLower := strings.ToLower(name)
	var matches []string
	for _, ss := range p.Skills {
		if strings.ToLower(ss.SkillID) == nameLower {
			return ss.SkillID, nil
		}
		if matchesName(ss.SkillID, b.SkillsByID[ss.SkillID].Name, nameLower) {
			matches = append(matches, ss.SkillID)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: "skill", Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks an ID and display name against the query
// (case-insensitive). Supports exact match, word-based partial match, and
// space-to-hyphen normalization.
func matchesName(id, display, nameLower string) bool {
	if display != "" {
		displayLower := strings.ToLower(display)
		if displayLower == nameLower {
			return true
		}
		// e.g. "reaper" matches "Blue Reaper".
		for _, word := range strings.Fields(displayLower) {
			if word == nameLower {
				return true
			}
		}
	}
	idLower := strings.ToLower(id)
	if idLower == nameLower {
		return true
	}
	// "red warrior" matches "red-warrior".
	if strings.ReplaceAll(nameLower, " ", "-") == idLower {
		return true
	}
	return false
}

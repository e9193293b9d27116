// Package parser converts console lines into Command structs.
// Intentionally dumb: no NLP, just word patterns.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/duelcore/types"
)

var verbAliases = map[string]string{
	// Phase
	"b":     "begin",
	"start": "begin",
	"next":  "begin",

	// Movement
	"m":    "move",
	"go":   "move",
	"walk": "move",

	// Basic skills
	"s":      "skill",
	"use":    "skill",
	"cast":   "skill",
	"attack": "skill",

	// Charge skills
	"ult":    "super",
	"charge": "super",

	// Turn
	"e":    "end",
	"done": "end",
	"pass": "end",

	// Misc
	"give":    "grant",
	"ff":      "surrender",
	"resign":  "surrender",
	"forfeit": "surrender",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true, "onto": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into a Command.
func Parse(input string) types.Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Command{}
	}

	words := strings.Fields(strings.ToLower(input))
	words = splitCoords(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}
	cmd := types.Command{Verb: words[0]}
	rest := stripArticles(words[1:])

	switch cmd.Verb {
	case "move":
		parseMove(&cmd, rest)
	case "skill", "super":
		parseSkill(&cmd, rest)
	case "grant":
		parseGrant(&cmd, rest)
	}
	return cmd
}

// ParseTarget reads a bare target answer: "<x> <y>", "<x>,<y>", or a
// piece reference. A leading preposition is ignored.
func ParseTarget(input string) (target string, x, y *int) {
	words := splitCoords(strings.Fields(strings.ToLower(input)))
	words = dropPrepositions(stripArticles(words))
	if tx, ty, ok := trailingCoords(words); ok && len(words) == 2 {
		return "", &tx, &ty
	}
	return strings.Join(words, " "), nil, nil
}

// parseMove handles "move <piece> [to] <x> <y>".
func parseMove(cmd *types.Command, words []string) {
	words = dropPrepositions(words)
	if x, y, ok := trailingCoords(words); ok {
		cmd.X, cmd.Y = &x, &y
		words = words[:len(words)-2]
	}
	cmd.Piece = strings.Join(words, " ")
}

// parseSkill handles "skill <piece> <skill> [on|at] [<x> <y> | <target>]".
func parseSkill(cmd *types.Command, words []string) {
	head, target := splitOnPreposition(words)
	if target == nil && len(head) > 2 {
		head, target = head[:2], head[2:]
	}
	if len(head) > 0 {
		cmd.Piece = head[0]
	}
	if len(head) > 1 {
		cmd.Skill = strings.Join(head[1:], " ")
	}
	if x, y, ok := trailingCoords(target); ok && len(target) == 2 {
		cmd.X, cmd.Y = &x, &y
		return
	}
	cmd.Target = strings.Join(target, " ")
}

// parseGrant handles "grant <n> [to <player>]".
func parseGrant(cmd *types.Command, words []string) {
	amount, player := splitOnPreposition(words)
	if len(amount) > 0 {
		if n, err := strconv.Atoi(amount[0]); err == nil {
			cmd.Amount = n
		}
	}
	cmd.Player = strings.Join(player, " ")
}

// splitCoords turns "4,1" into "4" "1".
func splitCoords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if a, b, ok := strings.Cut(w, ","); ok && isInt(a) && isInt(b) {
			out = append(out, a, b)
			continue
		}
		out = append(out, w)
	}
	return out
}

// trailingCoords reads the last two words as x and y.
func trailingCoords(words []string) (x, y int, ok bool) {
	if len(words) < 2 {
		return 0, 0, false
	}
	x, errX := strconv.Atoi(words[len(words)-2])
	y, errY := strconv.Atoi(words[len(words)-1])
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

func dropPrepositions(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !prepositions[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition. Words before
// it are the head; words after it are the tail. Without a preposition the
// tail is nil.
func splitOnPreposition(words []string) (head, tail []string) {
	for i, w := range words {
		if prepositions[w] {
			return words[:i], words[i+1:]
		}
	}
	return words, nil
}

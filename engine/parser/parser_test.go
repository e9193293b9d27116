package parser

import (
	"reflect"
	"testing"

	"github.com/nathoo/duelcore/types"
)

func intp(n int) *int { return &n }

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Command
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Command{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Command{},
		},

		// Bare verbs
		{
			name:  "begin",
			input: "begin",
			want:  types.Command{Verb: "begin"},
		},
		{
			name:  "b → begin",
			input: "b",
			want:  types.Command{Verb: "begin"},
		},
		{
			name:  "e → end",
			input: "E",
			want:  types.Command{Verb: "end"},
		},
		{
			name:  "ff → surrender",
			input: "ff",
			want:  types.Command{Verb: "surrender"},
		},

		// Move
		{
			name:  "move with coordinates",
			input: "move red-1 4 1",
			want:  types.Command{Verb: "move", Piece: "red-1", X: intp(4), Y: intp(1)},
		},
		{
			name:  "m alias with to and comma",
			input: "m red-1 to 4,1",
			want:  types.Command{Verb: "move", Piece: "red-1", X: intp(4), Y: intp(1)},
		},
		{
			name:  "move multi-word piece",
			input: "move the Red Warrior 2 3",
			want:  types.Command{Verb: "move", Piece: "red warrior", X: intp(2), Y: intp(3)},
		},
		{
			name:  "move without coordinates",
			input: "move red-1",
			want:  types.Command{Verb: "move", Piece: "red-1"},
		},

		// Skills
		{
			name:  "skill without target",
			input: "skill red-1 strike",
			want:  types.Command{Verb: "skill", Piece: "red-1", Skill: "strike"},
		},
		{
			name:  "skill on piece",
			input: "s red-1 strike blue-1",
			want:  types.Command{Verb: "skill", Piece: "red-1", Skill: "strike", Target: "blue-1"},
		},
		{
			name:  "skill on multi-word target",
			input: "attack red-1 strike on the blue warrior",
			want:  types.Command{Verb: "skill", Piece: "red-1", Skill: "strike", Target: "blue warrior"},
		},
		{
			name:  "skill at tile",
			input: "use red-1 blink at 4,1",
			want:  types.Command{Verb: "skill", Piece: "red-1", Skill: "blink", X: intp(4), Y: intp(1)},
		},
		{
			name:  "skill at tile without preposition",
			input: "skill red-1 blink 4 1",
			want:  types.Command{Verb: "skill", Piece: "red-1", Skill: "blink", X: intp(4), Y: intp(1)},
		},
		{
			name:  "ult alias",
			input: "ult red-1 fireball blue-1",
			want:  types.Command{Verb: "super", Piece: "red-1", Skill: "fireball", Target: "blue-1"},
		},

		// Grant
		{
			name:  "grant amount",
			input: "grant 2",
			want:  types.Command{Verb: "grant", Amount: 2},
		},
		{
			name:  "grant to player",
			input: "give 3 to blue",
			want:  types.Command{Verb: "grant", Amount: 3, Player: "blue"},
		},

		// Unknown verbs pass through.
		{
			name:  "unknown verb",
			input: "dance wildly",
			want:  types.Command{Verb: "dance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitCoords(t *testing.T) {
	got := splitCoords([]string{"move", "4,1", "a,b"})
	want := []string{"move", "4", "1", "a,b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitCoords = %v, want %v", got, want)
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input  string
		target string
		x, y   int
		coords bool
	}{
		{"4 1", "", 4, 1, true},
		{"4,1", "", 4, 1, true},
		{"at 2 3", "", 2, 3, true},
		{"blue-1", "blue-1", 0, 0, false},
		{"on the Reaper", "reaper", 0, 0, false},
		{"", "", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			target, x, y := ParseTarget(tt.input)
			if target != tt.target {
				t.Errorf("target = %q, want %q", target, tt.target)
			}
			if (x != nil) != tt.coords || (y != nil) != tt.coords {
				t.Fatalf("coords = %v,%v, want set=%v", x, y, tt.coords)
			}
			if tt.coords && (*x != tt.x || *y != tt.y) {
				t.Errorf("coords = (%d, %d), want (%d, %d)", *x, *y, tt.x, tt.y)
			}
		})
	}
}

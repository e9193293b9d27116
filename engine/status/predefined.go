package status

import "github.com/nathoo/duelcore/types"

// Predefined is the built-in status catalog. Content packs may override
// any entry by defining a status with the same ID.
var Predefined = map[string]types.StatusDefinition{
	"bleeding": {
		ID: "bleeding", Type: "bleeding", Name: "Bleeding",
		Description: "Takes damage at the start of each turn.",
		Intensity:   5, Duration: 3, IsDebuff: true, CanStack: true, MaxStacks: 5,
		Behavior: BehaviorDamage,
	},
	"poison": {
		ID: "poison", Type: "poison", Name: "Poison",
		Description: "Takes damage at the start of each turn.",
		Intensity:   3, Duration: 4, IsDebuff: true, CanStack: true, MaxStacks: 3,
		Behavior: BehaviorDamage,
	},
	"burn": {
		ID: "burn", Type: "burn", Name: "Burn",
		Description: "Takes heavy damage at the start of each turn.",
		Intensity:   8, Duration: 2, IsDebuff: true, MaxStacks: 1,
		Behavior: BehaviorDamage,
	},
	"freeze": {
		ID: "freeze", Type: "freeze", Name: "Freeze",
		Description: "Cannot act.",
		Intensity:   1, Duration: 1, IsDebuff: true, MaxStacks: 1,
		Behavior: BehaviorNone,
	},
	"stun": {
		ID: "stun", Type: "stun", Name: "Stun",
		Description: "Cannot act.",
		Intensity:   1, Duration: 1, IsDebuff: true, MaxStacks: 1,
		Behavior: BehaviorNone,
	},
	"buff_attack": {
		ID: "buff_attack", Type: "buff_attack", Name: "Might",
		Description: "Attack increased.",
		Intensity:   2, Duration: 3, MaxStacks: 1,
		Behavior: BehaviorStatModifier, Stat: "attack",
	},
	"buff_defense": {
		ID: "buff_defense", Type: "buff_defense", Name: "Guard",
		Description: "Defense increased.",
		Intensity:   2, Duration: 3, MaxStacks: 1,
		Behavior: BehaviorStatModifier, Stat: "defense",
	},
	"debuff_attack": {
		ID: "debuff_attack", Type: "debuff_attack", Name: "Weakness",
		Description: "Attack decreased.",
		Intensity:   2, Duration: 3, IsDebuff: true, MaxStacks: 1,
		Behavior: BehaviorStatModifier, Stat: "attack",
	},
	"debuff_defense": {
		ID: "debuff_defense", Type: "debuff_defense", Name: "Sunder",
		Description: "Defense decreased.",
		Intensity:   2, Duration: 3, IsDebuff: true, MaxStacks: 1,
		Behavior: BehaviorStatModifier, Stat: "defense",
	},
	"invulnerable": {
		ID: "invulnerable", Type: "invulnerable", Name: "Invulnerable",
		Description: "Ignores all damage.",
		Intensity:   1, Duration: 1, MaxStacks: 1,
		Behavior: BehaviorNone,
	},
	"regeneration": {
		ID: "regeneration", Type: "regeneration", Name: "Regeneration",
		Description: "Recovers HP at the start of each turn.",
		Intensity:   4, Duration: 3, CanStack: true, MaxStacks: 3,
		Behavior: BehaviorHeal,
	},
}

// Disabling status types prevent a piece from moving or using skills.
var Disabling = []string{"stun", "freeze"}

// Disabled reports whether a piece carries a disabling status.
func Disabled(p *types.PieceInstance) bool {
	for _, tag := range p.StatusTags {
		for _, d := range Disabling {
			if tag == d {
				return true
			}
		}
	}
	return false
}

package rules

import "github.com/nathoo/duelcore/types"

// Defaults returns the built-in global rules: kills earn a charge point,
// dealing damage heals the attacker a little, and the blue reaper absorbs
// the max HP of what it kills.
func Defaults() []types.TriggerRule {
	return []types.TriggerRule{
		{
			ID:          "kill-charge",
			Name:        "Kill reward",
			Description: "Killing a piece grants its owner one charge point.",
			Trigger:     types.Trigger{Type: "afterPieceKilled"},
			Effect: types.RuleEffect{
				Type:    "addChargePoints",
				Amount:  1,
				Message: "${source.templateId} earns a charge point",
			},
		},
		{
			ID:          "lifesteal",
			Name:        "Lifesteal",
			Description: "Dealing damage heals the attacker for 2.",
			Trigger: types.Trigger{
				Type:       "afterDamageDealt",
				Conditions: &types.Condition{Type: "minDamage", Value: 1},
			},
			Effect: types.RuleEffect{
				Type:    "heal",
				Target:  "source",
				Amount:  2,
				Message: "${source.templateId} drains 2 HP",
			},
		},
		{
			ID:          "soul-harvest",
			Name:        "Soul harvest",
			Description: "The blue reaper gains the max HP of pieces it kills.",
			Trigger: types.Trigger{
				Type:       "afterPieceKilled",
				Conditions: &types.Condition{Type: "pieceType", Value: "blue-reaper", Target: "source"},
			},
			Effect: types.RuleEffect{
				Type:   "modifyStats",
				Target: "source",
				Modifications: []types.StatModification{
					{Stat: "maxHp", Operation: "add", Value: "target.maxHp"},
					{Stat: "currentHp", Operation: "add", Value: "target.maxHp"},
				},
				Message: "${source.templateId} harvests ${target.maxHp} max HP from ${target.templateId}",
			},
		},
	}
}

package state

import "github.com/nathoo/duelcore/types"

// AddRule registers a trigger rule on the battle. A rule with the same ID
// is replaced in place, keeping its registration position.
func AddRule(b *types.BattleState, r types.TriggerRule) {
	for i := range b.Rules {
		if b.Rules[i].ID == r.ID {
			b.Rules[i] = r
			return
		}
	}
	b.Rules = append(b.Rules, r)
}

// RemoveRule unregisters a rule. Reports whether it existed.
func RemoveRule(b *types.BattleState, id string) bool {
	for i := range b.Rules {
		if b.Rules[i].ID == id {
			b.Rules = append(b.Rules[:i], b.Rules[i+1:]...)
			return true
		}
	}
	return false
}

// ClearRules removes every registered rule.
func ClearRules(b *types.BattleState) {
	b.Rules = []types.TriggerRule{}
}

// RuleByID returns the registered rule with the given ID, or nil.
func RuleByID(b *types.BattleState, id string) *types.TriggerRule {
	for i := range b.Rules {
		if b.Rules[i].ID == id {
			return &b.Rules[i]
		}
	}
	return nil
}

package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/duelcore/engine/effects"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/engine/status"
	"github.com/nathoo/duelcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validSkillEffectTypes = map[string]bool{
	"damage":      true,
	"heal":        true,
	"buff":        true,
	"debuff":      true,
	"shield":      true,
	"teleport":    true,
	"applyStatus": true,
	"cleanse":     true,
	"composite":   true,
}

var validRuleEffectTypes = map[string]bool{
	"addChargePoints": true,
	"modifyStats":     true,
	"heal":            true,
	"damage":          true,
	"applyStatus":     true,
	"triggerSkill":    true,
}

var validConditionTypes = map[string]bool{
	"AND": true, "OR": true, "NOT": true,
	"skillId":    true,
	"minDamage":  true,
	"maxDamage":  true,
	"pieceType":  true,
	"faction":    true,
	"hasStatus":  true,
	"minHp":      true,
	"maxHp":      true,
	"minAttack":  true,
	"maxAttack":  true,
	"minDefense": true,
	"maxDefense": true,
	"pieceCount": true,
	"turnNumber": true,
	"phase":      true,
	"positionX":  true,
	"positionY":  true,
	"distance":   true,
}

var validEventTypes = map[string]bool{
	effects.AfterSkillUsed:     true,
	effects.AfterDamageDealt:   true,
	effects.AfterDamageTaken:   true,
	effects.AfterPieceKilled:   true,
	effects.AfterPieceSummoned: true,
	effects.BeginTurn:          true,
	effects.EndTurn:            true,
	effects.AfterMove:          true,
}

var validBehaviors = map[string]bool{
	status.BehaviorNone:         true,
	status.BehaviorDamage:       true,
	status.BehaviorHeal:         true,
	status.BehaviorStatModifier: true,
}

var validStats = map[string]bool{
	"attack": true, "defense": true, "moveRange": true, "maxHp": true, "currentHp": true,
}

// validate checks the compiled defs for referential integrity and
// consistency. The result always carries the warnings; callers check
// Errors to decide whether loading failed.
func validate(defs *state.Defs) *ValidationError {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.Title is required")
	}

	for _, id := range sortedKeys(defs.Maps) {
		m := defs.Maps[id]
		ve.Errors = append(ve.Errors, state.ValidateMap(&m)...)
		walkable := 0
		for _, t := range m.Tiles {
			if t.Props.Walkable {
				walkable++
			}
		}
		if walkable < 2 {
			ve.warnf("map %q has %d walkable tiles", id, walkable)
		}
	}

	for _, id := range sortedKeys(defs.Statuses) {
		sd := defs.Statuses[id]
		if !validBehaviors[sd.Behavior] {
			ve.errorf("status %q has unknown behavior %q", id, sd.Behavior)
		}
		if sd.Behavior == status.BehaviorStatModifier && !validStats[sd.Stat] {
			ve.errorf("status %q modifies unknown stat %q", id, sd.Stat)
		}
	}

	for _, id := range sortedKeys(defs.Skills) {
		validateSkill(defs.Skills[id], defs, ve)
	}

	for _, id := range sortedKeys(defs.Templates) {
		tpl := defs.Templates[id]
		if tpl.Stats.MaxHP <= 0 {
			ve.errorf("piece %q needs a positive max_hp", id)
		}
		if len(tpl.Skills) == 0 {
			ve.warnf("piece %q has no skills", id)
		}
		for _, ref := range tpl.Skills {
			if _, ok := defs.Skills[ref.SkillID]; !ok {
				ve.errorf("piece %q references undefined skill %q", id, ref.SkillID)
			}
		}
		for _, rid := range tpl.Rules {
			if _, ok := defs.Rules[rid]; !ok {
				ve.errorf("piece %q references undefined rule %q", id, rid)
			}
		}
	}

	for _, id := range defs.RuleOrder {
		validateRule(defs.Rules[id], defs, ve)
	}

	return ve
}

func validateSkill(sk types.SkillDefinition, defs *state.Defs, ve *ValidationError) {
	if sk.Kind != "active" && sk.Kind != "passive" {
		ve.errorf("skill %q has unknown kind %q", sk.ID, sk.Kind)
	}
	if sk.Type != "normal" && sk.Type != "super" {
		ve.errorf("skill %q has unknown type %q", sk.ID, sk.Type)
	}
	if sk.Type == "super" && sk.ChargeCost <= 0 {
		ve.warnf("skill %q is a super skill with no charge cost", sk.ID)
	}
	if tg := sk.Targeting; tg != nil {
		if tg.Type != "piece" && tg.Type != "tile" {
			ve.errorf("skill %q has unknown target type %q", sk.ID, tg.Type)
		}
		switch tg.Filter {
		case "", "enemy", "ally", "any", "empty":
		default:
			ve.errorf("skill %q has unknown target filter %q", sk.ID, tg.Filter)
		}
	}
	if len(sk.Effects) == 0 {
		ve.warnf("skill %q has no effects", sk.ID)
	}
	validateSkillEffects(sk.ID, sk.Effects, defs, ve)
}

func validateSkillEffects(skillID string, effs []types.SkillEffect, defs *state.Defs, ve *ValidationError) {
	for _, eff := range effs {
		if !validSkillEffectTypes[eff.Type] {
			ve.errorf("skill %q uses unknown effect type %q", skillID, eff.Type)
			continue
		}
		switch eff.Type {
		case "applyStatus":
			if !knownStatus(defs, eff.StatusID) {
				ve.errorf("skill %q applies undefined status %q", skillID, eff.StatusID)
			}
		case "buff", "debuff":
			if eff.Stat != "" && !validStats[eff.Stat] {
				ve.errorf("skill %q modifies unknown stat %q", skillID, eff.Stat)
			}
		case "composite":
			validateSkillEffects(skillID, eff.Effects, defs, ve)
		}
	}
}

func validateRule(r types.TriggerRule, defs *state.Defs, ve *ValidationError) {
	if !validEventTypes[r.Trigger.Type] {
		ve.errorf("rule %q listens for unknown event %q", r.ID, r.Trigger.Type)
	}
	if r.Trigger.Conditions != nil {
		validateCondition(r.ID, *r.Trigger.Conditions, defs, ve)
	}

	eff := r.Effect
	if !validRuleEffectTypes[eff.Type] {
		ve.errorf("rule %q uses unknown effect type %q", r.ID, eff.Type)
		return
	}
	switch eff.Type {
	case "triggerSkill":
		if _, ok := defs.Skills[eff.SkillID]; !ok {
			ve.errorf("rule %q triggers undefined skill %q", r.ID, eff.SkillID)
		}
	case "applyStatus":
		if !knownStatus(defs, eff.StatusID) {
			ve.errorf("rule %q applies undefined status %q", r.ID, eff.StatusID)
		}
	case "modifyStats":
		if len(eff.Modifications) == 0 {
			ve.warnf("rule %q modifies no stats", r.ID)
		}
		for _, mod := range eff.Modifications {
			if !validStats[mod.Stat] {
				ve.errorf("rule %q modifies unknown stat %q", r.ID, mod.Stat)
			}
			switch mod.Operation {
			case "add", "subtract", "multiply", "set":
			default:
				ve.errorf("rule %q uses unknown operation %q", r.ID, mod.Operation)
			}
		}
	}
}

func validateCondition(ruleID string, c types.Condition, defs *state.Defs, ve *ValidationError) {
	if !validConditionTypes[c.Type] {
		ve.errorf("rule %q uses unknown condition type %q", ruleID, c.Type)
		return
	}
	switch c.Type {
	case "AND", "OR", "NOT":
		if len(c.Conditions) == 0 {
			ve.warnf("rule %q has an empty %s condition", ruleID, c.Type)
		}
		for _, sub := range c.Conditions {
			validateCondition(ruleID, sub, defs, ve)
		}
	case "skillId":
		if id, ok := c.Value.(string); ok {
			if _, ok := defs.Skills[id]; !ok {
				ve.warnf("rule %q matches undefined skill %q", ruleID, id)
			}
		}
	case "pieceType":
		if id, ok := c.Value.(string); ok {
			if _, ok := defs.Templates[id]; !ok {
				ve.warnf("rule %q matches undefined piece %q", ruleID, id)
			}
		}
	}
}

// knownStatus reports whether a status id is defined by content or built in.
func knownStatus(defs *state.Defs, id string) bool {
	if _, ok := defs.Statuses[id]; ok {
		return true
	}
	_, ok := status.Predefined[id]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package rules

import (
	"strings"
	"testing"

	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/engine/status"
	"github.com/nathoo/duelcore/types"
)

func killEvent() types.Event {
	return types.Event{Type: "afterPieceKilled", SourcePieceID: "red-1", TargetPieceID: "blue-2", Damage: 10, HasDamage: true, TurnNumber: 3}
}

func TestCheckTriggers_KillRule(t *testing.T) {
	b := condTestBattle()
	for _, r := range Defaults() {
		state.AddRule(b, r)
	}
	e := New(nil, nil, nil)

	res := e.CheckTriggers(b, killEvent())
	if !res.Success {
		t.Fatal("expected kill rule to fire")
	}
	if got := state.Player(b, "red").ChargePoints; got != 1 {
		t.Errorf("red charge points = %d, want 1", got)
	}
	if len(res.Messages) != 1 || res.Messages[0] != "red-warrior earns a charge point" {
		t.Errorf("messages = %v", res.Messages)
	}

	// Damage events do not trigger the kill rule.
	e.CheckTriggers(b, types.Event{Type: "afterDamageDealt", SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 5, HasDamage: true, TurnNumber: 3})
	if got := state.Player(b, "red").ChargePoints; got != 1 {
		t.Errorf("charge points after damage event = %d, want 1", got)
	}
}

func TestCheckTriggers_Lifesteal(t *testing.T) {
	b := condTestBattle()
	for _, r := range Defaults() {
		state.AddRule(b, r)
	}
	e := New(nil, nil, nil)

	e.CheckTriggers(b, types.Event{Type: "afterDamageDealt", SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 5, HasDamage: true, TurnNumber: 3})
	if hp := state.PieceByID(b, "red-1").CurrentHP; hp != 82 {
		t.Errorf("attacker hp = %d, want 82", hp)
	}
	res := e.CheckTriggers(b, types.Event{Type: "afterDamageDealt", SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 0, HasDamage: true, TurnNumber: 3})
	if res.Success {
		t.Error("zero damage should not trigger lifesteal")
	}
}

func TestCheckTriggers_SoulHarvest(t *testing.T) {
	b := condTestBattle()
	for _, r := range Defaults() {
		state.AddRule(b, r)
	}
	e := New(nil, nil, nil)

	res := e.CheckTriggers(b, types.Event{Type: "afterPieceKilled", SourcePieceID: "blue-1", TargetPieceID: "red-0", TurnNumber: 3})
	reaper := state.PieceByID(b, "blue-1")
	if reaper.MaxHP != 170 || reaper.CurrentHP != 100 {
		t.Errorf("reaper hp = %d/%d, want 100/170", reaper.CurrentHP, reaper.MaxHP)
	}
	if len(res.Messages) != 2 {
		t.Fatalf("expected kill-charge and soul-harvest messages, got %v", res.Messages)
	}
	if res.Messages[1] != "blue-reaper harvests 70 max HP from red-archer" {
		t.Errorf("message = %q", res.Messages[1])
	}
}

func TestCheckTriggers_Limits(t *testing.T) {
	b := condTestBattle()
	state.AddRule(b, types.TriggerRule{
		ID:      "once",
		Trigger: types.Trigger{Type: "afterPieceKilled"},
		Effect:  types.RuleEffect{Type: "addChargePoints", Amount: 2},
		Limits:  &types.RuleLimits{MaxUses: 1},
	})
	state.AddRule(b, types.TriggerRule{
		ID:      "cooldown",
		Trigger: types.Trigger{Type: "afterPieceKilled"},
		Effect:  types.RuleEffect{Type: "addChargePoints", Amount: 1},
		Limits:  &types.RuleLimits{CooldownTurns: 2},
	})
	e := New(nil, nil, nil)
	red := func() int { return state.Player(b, "red").ChargePoints }

	e.CheckTriggers(b, killEvent())
	if red() != 3 {
		t.Fatalf("after first kill = %d, want 3", red())
	}
	e.CheckTriggers(b, killEvent())
	if red() != 3 {
		t.Errorf("both rules should be blocked, got %d", red())
	}

	UpdateCooldowns(b)
	e.CheckTriggers(b, killEvent())
	if red() != 3 {
		t.Errorf("cooldown should still hold after one tick, got %d", red())
	}

	UpdateCooldowns(b)
	e.CheckTriggers(b, killEvent())
	if red() != 4 {
		t.Errorf("cooldown rule should fire again, got %d", red())
	}
	if l := state.RuleByID(b, "once").Limits; l.Uses != 1 {
		t.Errorf("once uses = %d, want 1", l.Uses)
	}
	if l := state.RuleByID(b, "cooldown").Limits; l.Uses != 2 || l.CurrentCooldown != 2 {
		t.Errorf("cooldown limits = %+v", l)
	}
}

func TestUpdateCooldowns_Floor(t *testing.T) {
	b := condTestBattle()
	state.AddRule(b, types.TriggerRule{ID: "r", Limits: &types.RuleLimits{CurrentCooldown: 1}})
	state.AddRule(b, types.TriggerRule{ID: "plain"})
	UpdateCooldowns(b)
	UpdateCooldowns(b)
	if cd := state.RuleByID(b, "r").Limits.CurrentCooldown; cd != 0 {
		t.Errorf("cooldown = %d, want 0", cd)
	}
}

func TestCheckTriggers_RegistrationOrder(t *testing.T) {
	b := condTestBattle()
	for _, id := range []string{"first", "second", "third"} {
		state.AddRule(b, types.TriggerRule{
			ID:      id,
			Trigger: types.Trigger{Type: "endTurn"},
			Effect:  types.RuleEffect{Type: "addChargePoints", Amount: 1, Message: id},
		})
	}
	res := New(nil, nil, nil).CheckTriggers(b, types.Event{Type: "endTurn", PlayerID: "blue", TurnNumber: 3})
	if strings.Join(res.Messages, ",") != "first,second,third" {
		t.Errorf("messages = %v", res.Messages)
	}
	if got := state.Player(b, "blue").ChargePoints; got != 3 {
		t.Errorf("blue charge points = %d, want 3", got)
	}
}

func TestCheckTriggers_ConditionsSeeStateAtEvent(t *testing.T) {
	b := condTestBattle()
	state.AddRule(b, types.TriggerRule{
		ID:      "follow-up",
		Trigger: types.Trigger{Type: "afterDamageDealt"},
		Effect:  types.RuleEffect{Type: "damage", Target: "target", Amount: 10},
	})
	state.AddRule(b, types.TriggerRule{
		ID: "finisher",
		Trigger: types.Trigger{
			Type:       "afterDamageDealt",
			Conditions: &types.Condition{Type: "maxHp", Value: 20, Target: "target"},
		},
		Effect: types.RuleEffect{Type: "addChargePoints", Amount: 1, Message: "finisher"},
	})
	state.AddRule(b, types.TriggerRule{
		ID: "healthy-target",
		Trigger: types.Trigger{
			Type:       "afterDamageDealt",
			Conditions: &types.Condition{Type: "minHp", Value: 30, Target: "target"},
		},
		Effect: types.RuleEffect{Type: "addChargePoints", Amount: 2, Message: "healthy-target"},
	})

	res := New(nil, nil, nil).CheckTriggers(b, types.Event{
		Type: "afterDamageDealt", SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 5, HasDamage: true, TurnNumber: 3,
	})
	if hp := state.PieceByID(b, "blue-1").CurrentHP; hp != 20 {
		t.Errorf("blue-1 hp = %d, want 20", hp)
	}
	if got := state.Player(b, "red").ChargePoints; got != 2 {
		t.Errorf("red charge points = %d, want 2", got)
	}
	if strings.Join(res.Messages, ",") != "healthy-target" {
		t.Errorf("messages = %v, want [healthy-target]", res.Messages)
	}
}

func TestCheckTriggers_PieceBinding(t *testing.T) {
	b := condTestBattle()
	state.AddRule(b, types.TriggerRule{
		ID:      "thorns",
		PieceID: "blue-1",
		Trigger: types.Trigger{Type: "afterDamageTaken"},
		Effect:  types.RuleEffect{Type: "damage", Target: "source", Amount: 3},
	})
	e := New(nil, nil, nil)

	// Hit on another piece: no reflect.
	e.CheckTriggers(b, types.Event{Type: "afterDamageTaken", SourcePieceID: "red-1", TargetPieceID: "red-0", Damage: 5, HasDamage: true})
	if hp := state.PieceByID(b, "red-1").CurrentHP; hp != 80 {
		t.Errorf("unbound hit reflected, hp = %d", hp)
	}

	res := e.CheckTriggers(b, types.Event{Type: "afterDamageTaken", SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 5, HasDamage: true})
	if hp := state.PieceByID(b, "red-1").CurrentHP; hp != 77 {
		t.Errorf("reflected hp = %d, want 77", hp)
	}
	if len(res.Events) != 2 {
		t.Errorf("expected reflect damage events to be reported, got %d", len(res.Events))
	}
}

func TestCheckTriggers_Conditions(t *testing.T) {
	b := condTestBattle()
	state.AddRule(b, types.TriggerRule{
		ID: "late-game",
		Trigger: types.Trigger{
			Type:       "beginTurn",
			Conditions: &types.Condition{Type: "turnNumber", Value: 5},
		},
		Effect: types.RuleEffect{Type: "addChargePoints", Amount: 1},
	})
	e := New(nil, nil, nil)
	if res := e.CheckTriggers(b, types.Event{Type: "beginTurn", PlayerID: "red", TurnNumber: 3}); res.Success {
		t.Error("rule fired on wrong turn")
	}
	if res := e.CheckTriggers(b, types.Event{Type: "beginTurn", PlayerID: "red", TurnNumber: 5}); !res.Success {
		t.Error("rule did not fire on turn 5")
	}
}

func TestRuleEffects(t *testing.T) {
	tests := []struct {
		name   string
		effect types.RuleEffect
		check  func(t *testing.T, b *types.BattleState)
	}{
		{
			name: "modifyStats subtract and multiply",
			effect: types.RuleEffect{Type: "modifyStats", Target: "target", Modifications: []types.StatModification{
				{Stat: "attack", Operation: "multiply", Value: 2},
				{Stat: "defense", Operation: "subtract", Value: "source.defense"},
			}},
			check: func(t *testing.T, b *types.BattleState) {
				p := state.PieceByID(b, "blue-1")
				if p.Attack != 50 || p.Defense != 0 {
					t.Errorf("attack=%d defense=%d, want 50/0", p.Attack, p.Defense)
				}
			},
		},
		{
			name: "modifyStats set from damage",
			effect: types.RuleEffect{Type: "modifyStats", Target: "all", Modifications: []types.StatModification{
				{Stat: "attack", Operation: "set", Value: "damage"},
			}},
			check: func(t *testing.T, b *types.BattleState) {
				if a := state.PieceByID(b, "red-1").Attack; a != 12 {
					t.Errorf("red attack = %d, want 12", a)
				}
				if a := state.PieceByID(b, "blue-1").Attack; a != 12 {
					t.Errorf("blue attack = %d, want 12", a)
				}
			},
		},
		{
			name:   "heal target by string amount",
			effect: types.RuleEffect{Type: "heal", Target: "target", Amount: "15"},
			check: func(t *testing.T, b *types.BattleState) {
				if hp := state.PieceByID(b, "blue-1").CurrentHP; hp != 45 {
					t.Errorf("hp = %d, want 45", hp)
				}
			},
		},
		{
			name:   "area damage hits enemies in range",
			effect: types.RuleEffect{Type: "damage", Target: "area", Range: 4, Amount: 10},
			check: func(t *testing.T, b *types.BattleState) {
				if hp := state.PieceByID(b, "blue-1").CurrentHP; hp != 20 {
					t.Errorf("blue-1 hp = %d, want 20", hp)
				}
				if hp := state.PieceByID(b, "red-1").CurrentHP; hp != 80 {
					t.Errorf("source damaged itself, hp = %d", hp)
				}
			},
		},
		{
			name:   "applyStatus on target",
			effect: types.RuleEffect{Type: "applyStatus", StatusID: "burn"},
			check: func(t *testing.T, b *types.BattleState) {
				if !status.Has(b, "blue-1", "burn") {
					t.Error("expected burn on blue-1")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := condTestBattle()
			state.AddRule(b, types.TriggerRule{ID: "r", Trigger: types.Trigger{Type: "afterSkillUsed"}, Effect: tt.effect})
			res := New(nil, nil, nil).CheckTriggers(b, types.Event{
				Type: "afterSkillUsed", SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 12, HasDamage: true, TurnNumber: 3,
			})
			if !res.Success {
				t.Fatal("rule did not fire")
			}
			tt.check(t, b)
		})
	}
}

func TestRuleEffect_TriggerSkill(t *testing.T) {
	b := condTestBattle()
	b.SkillsByID = map[string]types.SkillDefinition{
		"riposte": {ID: "riposte", Name: "Riposte", Effects: []types.SkillEffect{{Type: "damage", Value: 6, Target: "target"}}},
	}
	state.AddRule(b, types.TriggerRule{
		ID:      "counter",
		Trigger: types.Trigger{Type: "afterMove"},
		Effect:  types.RuleEffect{Type: "triggerSkill", SkillID: "riposte"},
	})
	state.AddRule(b, types.TriggerRule{
		ID:      "missing",
		Trigger: types.Trigger{Type: "afterMove"},
		Effect:  types.RuleEffect{Type: "triggerSkill", SkillID: "nope"},
	})
	res := New(nil, nil, nil).CheckTriggers(b, types.Event{Type: "afterMove", SourcePieceID: "red-1", TargetPieceID: "blue-1"})
	if hp := state.PieceByID(b, "blue-1").CurrentHP; hp != 24 {
		t.Errorf("blue hp = %d, want 24", hp)
	}
	if len(res.Messages) != 1 || !strings.Contains(res.Messages[0], "Riposte") {
		t.Errorf("messages = %v", res.Messages)
	}
}

func TestRuleEffect_StatusTickOwnerOnly(t *testing.T) {
	b := condTestBattle()
	st := status.NewManager(nil)
	e := New(nil, st, nil)
	eff, _ := st.AddByID(b, "blue-1", "poison", "")

	e.CheckTriggers(b, types.Event{Type: "beginTurn", PlayerID: "red", TurnNumber: 3})
	if hp := state.PieceByID(b, "blue-1").CurrentHP; hp != 30 {
		t.Errorf("poison ticked on opponent's turn, hp = %d", hp)
	}

	res := e.CheckTriggers(b, types.Event{Type: "beginTurn", PlayerID: "blue", TurnNumber: 3})
	if hp := state.PieceByID(b, "blue-1").CurrentHP; hp != 27 {
		t.Errorf("hp = %d, want 27 after tick", hp)
	}
	if !res.Success {
		t.Error("tick should count as a firing")
	}
	if effs := status.Effects(b, "blue-1"); len(effs) != 1 || effs[0].RemainingDuration != eff.RemainingDuration-1 {
		t.Errorf("effects after tick = %+v", effs)
	}
}

func TestRuleEffect_StatusTickExpiryRemovesRule(t *testing.T) {
	b := condTestBattle()
	st := status.NewManager(nil)
	e := New(nil, st, nil)
	st.AddByID(b, "blue-1", "stun", "")
	if len(b.Rules) != 1 {
		t.Fatalf("expected backing rule, got %d", len(b.Rules))
	}
	e.CheckTriggers(b, types.Event{Type: "beginTurn", PlayerID: "blue", TurnNumber: 3})
	if !status.Has(b, "blue-1", "stun") {
		t.Fatal("stun should last through its owner's turn")
	}
	e.CheckTriggers(b, types.Event{Type: "endTurn", PlayerID: "blue", TurnNumber: 3})
	if len(b.Rules) != 0 || status.Has(b, "blue-1", "stun") {
		t.Error("stun should expire after one tick along with its rule")
	}
}

func TestRuleEffect_Unknown(t *testing.T) {
	b := condTestBattle()
	state.AddRule(b, types.TriggerRule{ID: "weird", Trigger: types.Trigger{Type: "endTurn"}, Effect: types.RuleEffect{Type: "summonDragon"}})
	if res := New(nil, nil, nil).CheckTriggers(b, types.Event{Type: "endTurn"}); res.Success {
		t.Error("unknown effect should not succeed")
	}
}

func TestInterpolate(t *testing.T) {
	b := condTestBattle()
	tc := NewTriggerContext(b, types.Event{SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 9, HasDamage: true})
	got := interpolate("${source.templateId} hits ${target.templateId} (${target.maxHp}) for ${damage}", tc)
	want := "red-warrior hits blue-reaper (100) for 9"
	if got != want {
		t.Errorf("interpolate = %q, want %q", got, want)
	}
}

func TestResolveValue(t *testing.T) {
	b := condTestBattle()
	tc := NewTriggerContext(b, types.Event{SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 9, HasDamage: true})
	tests := []struct {
		in   any
		want int
	}{
		{4, 4},
		{2.9, 2},
		{"7", 7},
		{"damage", 9},
		{"source.attack", 20},
		{"target.maxHp", 100},
		{"target.luck", 0},
		{"banana", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := resolveValue(tt.in, tc); got != tt.want {
			t.Errorf("resolveValue(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

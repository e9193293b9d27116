package events

import (
	"testing"

	"github.com/nathoo/duelcore/engine/rules"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

func intp(n int) *int { return &n }

func testBattle() *types.BattleState {
	b := &types.BattleState{
		Map: state.BorderedMap("arena", 8, 6),
		Pieces: []types.PieceInstance{
			{InstanceID: "red-1", TemplateID: "red-warrior", OwnerPlayerID: "red", CurrentHP: 50, MaxHP: 100, X: intp(1), Y: intp(1)},
			{InstanceID: "blue-1", TemplateID: "blue-warrior", OwnerPlayerID: "blue", CurrentHP: 5, MaxHP: 100, X: intp(2), Y: intp(1)},
		},
		Players: []types.PlayerTurnMeta{{PlayerID: "red"}, {PlayerID: "blue"}},
		Turn:    types.TurnState{CurrentPlayerID: "red", TurnNumber: 1, Phase: "action"},
	}
	return b
}

func TestDispatch_NoMatchingRules(t *testing.T) {
	b := testBattle()
	res := Dispatch(rules.New(nil, nil, nil), b, []types.Event{{Type: "afterMove", SourcePieceID: "red-1"}})
	if len(res.Messages) != 0 || len(res.Derived) != 0 {
		t.Errorf("expected nothing, got %+v", res)
	}
}

func TestDispatch_MultipleEvents(t *testing.T) {
	b := testBattle()
	state.AddRule(b, types.TriggerRule{
		ID:      "mover",
		Trigger: types.Trigger{Type: "afterMove"},
		Effect:  types.RuleEffect{Type: "addChargePoints", Amount: 1, Message: "${source.templateId} moved"},
	})
	res := Dispatch(rules.New(nil, nil, nil), b, []types.Event{
		{Type: "afterMove", SourcePieceID: "red-1"},
		{Type: "afterMove", SourcePieceID: "blue-1"},
	})
	if len(res.Messages) != 2 || res.Messages[0] != "red-warrior moved" || res.Messages[1] != "blue-warrior moved" {
		t.Errorf("messages = %v", res.Messages)
	}
}

func TestDispatch_SinglePass(t *testing.T) {
	b := testBattle()
	// Reflect damage on every hit: would loop forever if derived events
	// were dispatched again.
	state.AddRule(b, types.TriggerRule{
		ID:      "reflect",
		Trigger: types.Trigger{Type: "afterDamageTaken"},
		Effect:  types.RuleEffect{Type: "damage", Target: "source", Amount: 1},
	})
	state.AddRule(b, types.TriggerRule{
		ID:      "kill-charge",
		Trigger: types.Trigger{Type: "afterPieceKilled"},
		Effect:  types.RuleEffect{Type: "addChargePoints", Amount: 1},
	})

	res := Dispatch(rules.New(nil, nil, nil), b, []types.Event{
		{Type: "afterDamageTaken", SourcePieceID: "red-1", TargetPieceID: "blue-1", Damage: 3, HasDamage: true},
	})
	if hp := state.PieceByID(b, "red-1").CurrentHP; hp != 49 {
		t.Errorf("red hp = %d, want exactly one reflect", hp)
	}
	if len(res.Derived) != 2 {
		t.Errorf("expected the reflect's damage events reported, got %d", len(res.Derived))
	}
	if got := state.Player(b, "red").ChargePoints + state.Player(b, "blue").ChargePoints; got != 0 {
		t.Errorf("derived events must not reach other rules, charge = %d", got)
	}
}

package effects

import (
	"testing"

	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

func intp(n int) *int { return &n }

func testSetup() *types.BattleState {
	return &types.BattleState{
		Map: state.BorderedMap("arena", 8, 6),
		Pieces: []types.PieceInstance{
			{InstanceID: "red-1", OwnerPlayerID: "red", CurrentHP: 50, MaxHP: 100, Attack: 20, Defense: 5, MoveRange: 3, X: intp(1), Y: intp(1)},
			{InstanceID: "blue-1", OwnerPlayerID: "blue", CurrentHP: 20, MaxHP: 100, Attack: 20, Defense: 5, X: intp(4), Y: intp(1)},
			{InstanceID: "blue-dead", OwnerPlayerID: "blue", CurrentHP: 0, MaxHP: 100, X: intp(2), Y: intp(2)},
		},
		Players: []types.PlayerTurnMeta{{PlayerID: "red"}, {PlayerID: "blue"}},
		Turn:    types.TurnState{CurrentPlayerID: "red", TurnNumber: 3, Phase: "action"},
	}
}

func TestDamage_ClampsAtZero(t *testing.T) {
	tests := []struct {
		name       string
		hp, amount int
		wantHP     int
		wantValue  int
		wantEvents int
	}{
		{"partial", 50, 30, 20, 30, 2},
		{"exact kill", 30, 30, 0, 30, 3},
		{"overkill", 10, 30, 0, 10, 3},
		{"zero", 50, 0, 50, 0, 0},
		{"negative", 50, -5, 50, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testSetup()
			target := state.PieceByID(b, "red-1")
			target.CurrentHP = tt.hp
			out, evts := Damage(b, "blue-1", target, tt.amount)
			if target.CurrentHP != tt.wantHP {
				t.Errorf("hp = %d, want %d", target.CurrentHP, tt.wantHP)
			}
			if out.Value != tt.wantValue || !out.Success {
				t.Errorf("outcome = %+v, want value %d success", out, tt.wantValue)
			}
			if len(evts) != tt.wantEvents {
				t.Errorf("events = %d, want %d", len(evts), tt.wantEvents)
			}
		})
	}
}

func TestDamage_Events(t *testing.T) {
	b := testSetup()
	_, evts := Damage(b, "red-1", state.PieceByID(b, "blue-1"), 25)
	want := []string{AfterDamageDealt, AfterDamageTaken, AfterPieceKilled}
	if len(evts) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(evts))
	}
	for i, e := range evts {
		if e.Type != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, e.Type, want[i])
		}
		if e.SourcePieceID != "red-1" || e.TargetPieceID != "blue-1" {
			t.Errorf("event[%d] pieces = %s -> %s", i, e.SourcePieceID, e.TargetPieceID)
		}
		if e.Damage != 20 {
			t.Errorf("event[%d] damage = %d, want 20", i, e.Damage)
		}
		if e.TurnNumber != 3 {
			t.Errorf("event[%d] turn = %d, want 3", i, e.TurnNumber)
		}
	}
}

func TestDamage_ShieldFirst(t *testing.T) {
	b := testSetup()
	target := state.PieceByID(b, "red-1")
	target.Shield = 10

	out, evts := Damage(b, "blue-1", target, 8)
	if target.Shield != 2 || target.CurrentHP != 50 {
		t.Errorf("shield=%d hp=%d, want shield 2 hp 50", target.Shield, target.CurrentHP)
	}
	if out.Value != 0 || len(evts) != 0 {
		t.Errorf("fully absorbed hit should report no HP loss, got %+v, %d events", out, len(evts))
	}

	Damage(b, "blue-1", target, 12)
	if target.Shield != 0 || target.CurrentHP != 40 {
		t.Errorf("shield=%d hp=%d, want shield 0 hp 40", target.Shield, target.CurrentHP)
	}
}

func TestDamage_DeadTarget(t *testing.T) {
	b := testSetup()
	out, evts := Damage(b, "red-1", state.PieceByID(b, "blue-dead"), 10)
	if out.Success || evts != nil {
		t.Errorf("expected failure on dead target, got %+v", out)
	}
	out, _ = Damage(b, "red-1", nil, 10)
	if out.Success {
		t.Error("expected failure on nil target")
	}
}

func TestHeal_ClampsAtMax(t *testing.T) {
	b := testSetup()
	target := state.PieceByID(b, "blue-1") // 20/100
	out := Heal(target, 50)
	if target.CurrentHP != 70 || out.Value != 50 {
		t.Errorf("hp=%d value=%d, want 70/50", target.CurrentHP, out.Value)
	}
	out = Heal(target, 50)
	if target.CurrentHP != 100 || out.Value != 30 {
		t.Errorf("hp=%d value=%d, want 100/30", target.CurrentHP, out.Value)
	}
	if out := Heal(state.PieceByID(b, "blue-dead"), 10); out.Success {
		t.Error("healing a dead piece should fail")
	}
}

func TestModifyStat(t *testing.T) {
	tests := []struct {
		name      string
		stat      string
		delta     int
		wantValue int
		wantOK    bool
	}{
		{"attack up", "attack", 5, 5, true},
		{"defense floor", "defense", -10, -5, true},
		{"maxHp floor", "maxHp", -500, -99, true},
		{"currentHp capped", "currentHp", 80, 50, true},
		{"unknown", "luck", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testSetup()
			p := state.PieceByID(b, "red-1")
			out := ModifyStat(p, tt.stat, tt.delta)
			if out.Success != tt.wantOK {
				t.Fatalf("success = %v, want %v", out.Success, tt.wantOK)
			}
			if out.Value != tt.wantValue {
				t.Errorf("applied = %d, want %d", out.Value, tt.wantValue)
			}
		})
	}
}

func TestModifyStat_MaxHPDragsCurrent(t *testing.T) {
	b := testSetup()
	p := state.PieceByID(b, "red-1")
	ModifyStat(p, "maxHp", -70)
	if p.MaxHP != 30 || p.CurrentHP != 30 {
		t.Errorf("max=%d current=%d, want 30/30", p.MaxHP, p.CurrentHP)
	}
}

func TestSetStat(t *testing.T) {
	b := testSetup()
	p := state.PieceByID(b, "red-1")
	SetStat(p, "attack", 7)
	if p.Attack != 7 {
		t.Errorf("attack = %d, want 7", p.Attack)
	}
	if out := SetStat(p, "luck", 1); out.Success {
		t.Error("expected unknown stat to fail")
	}
}

func TestShield_Accumulates(t *testing.T) {
	b := testSetup()
	p := state.PieceByID(b, "red-1")
	Shield(p, 5)
	Shield(p, 7)
	if p.Shield != 12 {
		t.Errorf("shield = %d, want 12", p.Shield)
	}
}

func TestTeleport(t *testing.T) {
	tests := []struct {
		name    string
		x, y    int
		wantOK  bool
		wantMsg string
	}{
		{"free floor", 3, 3, true, ""},
		{"wall", 0, 3, false, "destination is not walkable"},
		{"out of bounds", 9, 9, false, "destination out of bounds"},
		{"occupied", 4, 1, false, "destination is occupied"},
		{"dead piece tile", 2, 2, true, ""},
		{"own tile", 1, 1, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testSetup()
			p := state.PieceByID(b, "red-1")
			out := Teleport(b, p, tt.x, tt.y)
			if out.Success != tt.wantOK {
				t.Fatalf("success = %v, want %v (%s)", out.Success, tt.wantOK, out.Message)
			}
			if out.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", out.Message, tt.wantMsg)
			}
			x, y, _ := state.Position(p)
			if tt.wantOK && (x != tt.x || y != tt.y) {
				t.Errorf("position = (%d,%d), want (%d,%d)", x, y, tt.x, tt.y)
			}
			if !tt.wantOK && (x != 1 || y != 1) {
				t.Errorf("failed teleport moved piece to (%d,%d)", x, y)
			}
		})
	}
}

func TestAddChargePoints(t *testing.T) {
	b := testSetup()
	AddChargePoints(b, "red", 2)
	AddChargePoints(b, "red", -4)
	if got := state.Player(b, "red").ChargePoints; got != 2 {
		t.Errorf("charge points = %d, want 2", got)
	}
	if out := AddChargePoints(b, "green", 1); out.Success {
		t.Error("expected failure for unknown player")
	}
}

func TestDamage_Invulnerable(t *testing.T) {
	b := testSetup()
	p := state.PieceByID(b, "red-1")
	p.StatusTags = []string{Invulnerable}
	out, evts := Damage(b, "blue-1", p, 40)
	if p.CurrentHP != 50 || out.Value != 0 || len(evts) != 0 {
		t.Errorf("invulnerable piece took damage: hp=%d out=%+v", p.CurrentHP, out)
	}
}

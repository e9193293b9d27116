package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Map "id" { ... }, Piece "id" { ... }, Skill "id" { ... },
	// Status "id" { ... }: curried, the id call returns a function that
	// takes the body table.
	L.SetGlobal("Map", L.NewFunction(curried(&coll.maps)))
	L.SetGlobal("Piece", L.NewFunction(curried(&coll.pieces)))
	L.SetGlobal("Skill", L.NewFunction(curried(&coll.skills)))
	L.SetGlobal("Status", L.NewFunction(curried(&coll.statuses)))

	// Rule "id" { on = "event", when = ..., effect = ... }
	// Returns a marker table so pieces can bind the rule by value.
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.rules = append(coll.rules, rawDef{id: id, table: tbl})
			marker := L.NewTable()
			marker.RawSetString("__rule_id", lua.LString(id))
			L.Push(marker)
			return 1
		}))
		return 1
	}))

	// Target("piece", "enemy", 1)
	L.SetGlobal("Target", L.NewFunction(helper("", "type", "filter", "range")))
}

// curried returns a constructor that appends id + body to dst.
func curried(dst *[]rawDef) lua.LGFunction {
	return func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			*dst = append(*dst, rawDef{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}
}

func registerConditionHelpers(L *lua.LState) {
	// All(c1, c2, ...), Any(...), Not(c)
	L.SetGlobal("All", L.NewFunction(compound("AND")))
	L.SetGlobal("Any", L.NewFunction(compound("OR")))
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		list := L.NewTable()
		list.Append(inner)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("NOT"))
		tbl.RawSetString("conditions", list)
		L.Push(tbl)
		return 1
	}))

	// Single conditions take (value, target); target is source, target
	// or all.
	single := map[string]string{
		"SkillIs":    "skillId",
		"MinDamage":  "minDamage",
		"MaxDamage":  "maxDamage",
		"PieceType":  "pieceType",
		"Faction":    "faction",
		"HasStatus":  "hasStatus",
		"MinHp":      "minHp",
		"MaxHp":      "maxHp",
		"MinAttack":  "minAttack",
		"MaxAttack":  "maxAttack",
		"MinDefense": "minDefense",
		"MaxDefense": "maxDefense",
		"PieceCount": "pieceCount",
		"TurnNumber": "turnNumber",
		"Phase":      "phase",
		"PositionX":  "positionX",
		"PositionY":  "positionY",
		"Distance":   "distance",
	}
	for name, typ := range single {
		L.SetGlobal(name, L.NewFunction(helper(typ, "value", "target")))
	}
}

func registerEffectHelpers(L *lua.LState) {
	// Damage(30, "target", { scaling = "attack" })
	L.SetGlobal("Damage", L.NewFunction(helper("damage", "value", "target")))
	L.SetGlobal("Heal", L.NewFunction(helper("heal", "value", "target")))
	L.SetGlobal("Shield", L.NewFunction(helper("shield", "value", "target")))

	// Buff("attack", 5, 2, "self")
	L.SetGlobal("Buff", L.NewFunction(helper("buff", "stat", "value", "duration", "target")))
	L.SetGlobal("Debuff", L.NewFunction(helper("debuff", "stat", "value", "duration", "target")))

	L.SetGlobal("ApplyStatus", L.NewFunction(helper("applyStatus", "status", "target")))
	L.SetGlobal("Cleanse", L.NewFunction(helper("cleanse", "target")))
	L.SetGlobal("Teleport", L.NewFunction(helper("teleport", "range")))

	// Rule-only effects.
	L.SetGlobal("AddCharge", L.NewFunction(helper("addChargePoints", "value")))
	L.SetGlobal("TriggerSkill", L.NewFunction(helper("triggerSkill", "skill")))
	L.SetGlobal("Mod", L.NewFunction(helper("", "stat", "operation", "value")))

	// ModifyStats("source", Mod(...), Mod(...))
	L.SetGlobal("ModifyStats", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("modifyStats"))
		tbl.RawSetString("target", L.Get(1))
		mods := L.NewTable()
		for i := 2; i <= L.GetTop(); i++ {
			mods.Append(L.CheckTable(i))
		}
		tbl.RawSetString("modifications", mods)
		L.Push(tbl)
		return 1
	}))

	// Composite(e1, e2, ...)
	L.SetGlobal("Composite", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("composite"))
		tbl.RawSetString("effects", varargs(L))
		L.Push(tbl)
		return 1
	}))
}

// helper builds a table of the given type from positional scalar
// arguments. A table argument in any position is merged in as options. An
// empty typ leaves the type field to the options.
func helper(typ string, names ...string) lua.LGFunction {
	return func(L *lua.LState) int {
		tbl := L.NewTable()
		if typ != "" {
			tbl.RawSetString("type", lua.LString(typ))
		}
		for i := 1; i <= L.GetTop(); i++ {
			v := L.Get(i)
			opts, ok := v.(*lua.LTable)
			if !ok {
				if i <= len(names) {
					tbl.RawSetString(names[i-1], v)
				}
				continue
			}
			opts.ForEach(func(k, ov lua.LValue) {
				if ks, ok := k.(lua.LString); ok && (typ == "" || ks != "type") {
					tbl.RawSetString(string(ks), ov)
				}
			})
		}
		L.Push(tbl)
		return 1
	}
}

func compound(typ string) lua.LGFunction {
	return func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(typ))
		tbl.RawSetString("conditions", varargs(L))
		L.Push(tbl)
		return 1
	}
}

// varargs packs the table arguments on the stack into a list.
func varargs(L *lua.LState) *lua.LTable {
	list := L.NewTable()
	for i := 1; i <= L.GetTop(); i++ {
		list.Append(L.CheckTable(i))
	}
	return list
}

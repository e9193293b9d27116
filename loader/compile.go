// Package loader loads Lua content packs into Go structs at startup and
// reads YAML battle setups. The Lua VM is discarded after loading; no Lua
// runs during a battle.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/duelcore/engine/rules"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// tilePresets maps tile type names to their properties.
var tilePresets = map[string]types.TileProps{
	"floor": {Walkable: true, BulletPassable: true, Type: "floor"},
	"wall":  {Type: "wall"},
	"water": {BulletPassable: true, Type: "water"},
	"lava":  {Walkable: true, BulletPassable: true, Type: "lava", DamagePerTurn: 5},
	"high":  {Walkable: true, BulletPassable: true, Type: "high", Height: 1},
}

// defaultLegend maps map-row characters to tile types.
var defaultLegend = map[string]string{
	"#": "wall",
	".": "floor",
	"~": "water",
	"*": "lava",
	"^": "high",
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Sequential integer keys starting at 1 make an array.
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// eachTable calls fn for every table element of a Lua list, in order.
func eachTable(tbl *lua.LTable, fn func(*lua.LTable)) {
	if tbl == nil {
		return
	}
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			fn(t)
		}
	}
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := state.NewDefs()

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	seen := map[string]bool{}
	unique := func(kind, id string) error {
		key := kind + ":" + id
		if seen[key] {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[key] = true
		return nil
	}

	for _, raw := range coll.maps {
		if err := unique("map", raw.id); err != nil {
			return nil, err
		}
		m, err := compileMap(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling map %s: %w", raw.id, err)
		}
		defs.Maps[m.ID] = m
	}

	for _, raw := range coll.statuses {
		if err := unique("status", raw.id); err != nil {
			return nil, err
		}
		defs.Statuses[raw.id] = compileStatus(raw)
	}

	for _, raw := range coll.skills {
		if err := unique("skill", raw.id); err != nil {
			return nil, err
		}
		defs.Skills[raw.id] = compileSkill(raw)
	}

	for _, raw := range coll.pieces {
		if err := unique("piece", raw.id); err != nil {
			return nil, err
		}
		defs.Templates[raw.id] = compilePiece(raw)
	}

	// Built-in rules come first; content may replace one by reusing its id.
	for _, r := range rules.Defaults() {
		defs.Rules[r.ID] = r
		defs.RuleOrder = append(defs.RuleOrder, r.ID)
	}
	for _, raw := range coll.rules {
		if err := unique("rule", raw.id); err != nil {
			return nil, err
		}
		r := compileRule(raw)
		if _, ok := defs.Rules[r.ID]; !ok {
			defs.RuleOrder = append(defs.RuleOrder, r.ID)
		}
		defs.Rules[r.ID] = r
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Intro:   getString(tbl, "intro"),
	}
}

// compileMap builds a board either from ASCII rows or from width/height
// (optionally bordered), then applies per-tile overrides.
func compileMap(raw rawDef) (types.BoardMap, error) {
	tbl := raw.table
	name := getString(tbl, "name")
	if name == "" {
		name = raw.id
	}

	var m types.BoardMap
	if rows := getTable(tbl, "rows"); rows != nil {
		legend := map[string]string{}
		for k, v := range defaultLegend {
			legend[k] = v
		}
		if lt := getTable(tbl, "legend"); lt != nil {
			lt.ForEach(func(k, v lua.LValue) {
				ks, ok1 := k.(lua.LString)
				vs, ok2 := v.(lua.LString)
				if ok1 && ok2 {
					legend[string(ks)] = string(vs)
				}
			})
		}

		m = types.BoardMap{ID: raw.id, Name: name, Height: rows.MaxN()}
		for y := 0; y < m.Height; y++ {
			row, ok := rows.RawGetInt(y + 1).(lua.LString)
			if !ok {
				return m, fmt.Errorf("row %d is not a string", y+1)
			}
			if y == 0 {
				m.Width = len(row)
			} else if len(row) != m.Width {
				return m, fmt.Errorf("row %d has width %d, want %d", y+1, len(row), m.Width)
			}
			for x := 0; x < len(row); x++ {
				typ, ok := legend[string(row[x])]
				if !ok {
					return m, fmt.Errorf("row %d: unknown tile symbol %q", y+1, string(row[x]))
				}
				props, ok := tilePresets[typ]
				if !ok {
					return m, fmt.Errorf("unknown tile type %q", typ)
				}
				m.Tiles = append(m.Tiles, tile(x, y, props))
			}
		}
	} else {
		w, h := getInt(tbl, "width"), getInt(tbl, "height")
		if w <= 0 || h <= 0 {
			return m, fmt.Errorf("needs rows or a positive width and height")
		}
		if getBool(tbl, "bordered", false) {
			m = state.BorderedMap(raw.id, w, h)
		} else {
			m = types.BoardMap{ID: raw.id, Width: w, Height: h}
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					m.Tiles = append(m.Tiles, tile(x, y, tilePresets["floor"]))
				}
			}
		}
		m.Name = name
	}

	var err error
	eachTable(getTable(tbl, "tiles"), func(t *lua.LTable) {
		if err != nil {
			return
		}
		x, y := getInt(t, "x"), getInt(t, "y")
		if !state.InBounds(&m, x, y) {
			err = fmt.Errorf("tile override (%d,%d) out of bounds", x, y)
			return
		}
		i := y*m.Width + x
		props := m.Tiles[i].Props
		if typ := getString(t, "type"); typ != "" {
			p, ok := tilePresets[typ]
			if !ok {
				err = fmt.Errorf("unknown tile type %q", typ)
				return
			}
			props = p
		}
		if v := t.RawGetString("damage"); v != lua.LNil {
			props.DamagePerTurn = getInt(t, "damage")
		}
		if v := t.RawGetString("height"); v != lua.LNil {
			props.Height = getInt(t, "height")
		}
		m.Tiles[i].Props = props
	})
	return m, err
}

func tile(x, y int, props types.TileProps) types.Tile {
	return types.Tile{ID: fmt.Sprintf("%d-%d", x, y), X: x, Y: y, Props: props}
}

func compileStatus(raw rawDef) types.StatusDefinition {
	tbl := raw.table
	sd := types.StatusDefinition{
		ID:          raw.id,
		Type:        getString(tbl, "type"),
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Intensity:   getInt(tbl, "intensity"),
		Duration:    getInt(tbl, "duration"),
		IsDebuff:    getBool(tbl, "debuff", false),
		CanStack:    getBool(tbl, "stack", false),
		MaxStacks:   getInt(tbl, "max_stacks"),
		Behavior:    getString(tbl, "behavior"),
		Stat:        getString(tbl, "stat"),
	}
	if sd.Type == "" {
		sd.Type = raw.id
	}
	if sd.Name == "" {
		sd.Name = raw.id
	}
	if sd.MaxStacks == 0 {
		sd.MaxStacks = 1
	}
	if sd.Behavior == "" {
		sd.Behavior = "none"
	}
	return sd
}

func compileSkill(raw rawDef) types.SkillDefinition {
	tbl := raw.table
	sk := types.SkillDefinition{
		ID:              raw.id,
		Name:            getString(tbl, "name"),
		Description:     getString(tbl, "description"),
		Kind:            getString(tbl, "kind"),
		Type:            getString(tbl, "type"),
		CooldownTurns:   getInt(tbl, "cooldown"),
		MaxCharges:      getInt(tbl, "charges"),
		ChargeCost:      getInt(tbl, "cost"),
		PowerMultiplier: getNumber(tbl, "power"),
		Range:           getString(tbl, "range"),
		AreaSize:        getInt(tbl, "area"),
		Effects:         compileSkillEffects(getTable(tbl, "effects")),
	}
	if sk.Name == "" {
		sk.Name = raw.id
	}
	if sk.Kind == "" {
		sk.Kind = "active"
	}
	if sk.Type == "" {
		sk.Type = "normal"
	}
	if sk.Range == "" {
		sk.Range = "single"
	}
	if sk.PowerMultiplier == 0 {
		sk.PowerMultiplier = 1
	}
	if tg := getTable(tbl, "target"); tg != nil {
		sk.Targeting = &types.Targeting{
			Type:   getString(tg, "type"),
			Filter: getString(tg, "filter"),
			Range:  getInt(tg, "range"),
		}
	}
	sk.RequiresTarget = getBool(tbl, "requires_target", sk.Targeting != nil)
	return sk
}

func compileSkillEffects(tbl *lua.LTable) []types.SkillEffect {
	effects := []types.SkillEffect{}
	eachTable(tbl, func(t *lua.LTable) {
		effects = append(effects, compileSkillEffect(t))
	})
	return effects
}

func compileSkillEffect(tbl *lua.LTable) types.SkillEffect {
	eff := types.SkillEffect{
		Type:        getString(tbl, "type"),
		Value:       getInt(tbl, "value"),
		Duration:    getInt(tbl, "duration"),
		Target:      getString(tbl, "target"),
		Stat:        getString(tbl, "stat"),
		Range:       getInt(tbl, "range"),
		StatusID:    getString(tbl, "status"),
		Scaling:     getString(tbl, "scaling"),
		Description: getString(tbl, "description"),
	}
	if sub := getTable(tbl, "effects"); sub != nil {
		eff.Effects = compileSkillEffects(sub)
	}
	return eff
}

func compilePiece(raw rawDef) types.PieceTemplate {
	tbl := raw.table
	tpl := types.PieceTemplate{
		ID:      raw.id,
		Name:    getString(tbl, "name"),
		Faction: getString(tbl, "faction"),
		Rarity:  getString(tbl, "rarity"),
		Skills:  []types.SkillRef{},
	}
	if tpl.Name == "" {
		tpl.Name = raw.id
	}
	if st := getTable(tbl, "stats"); st != nil {
		tpl.Stats = types.PieceStats{
			MaxHP:     getInt(st, "max_hp"),
			Attack:    getInt(st, "attack"),
			Defense:   getInt(st, "defense"),
			MoveRange: getInt(st, "move_range"),
		}
	}

	// Skills are ids or { id = "...", level = n }.
	if sk := getTable(tbl, "skills"); sk != nil {
		for i := 1; i <= sk.MaxN(); i++ {
			switch v := sk.RawGetInt(i).(type) {
			case lua.LString:
				tpl.Skills = append(tpl.Skills, types.SkillRef{SkillID: string(v), Level: 1})
			case *lua.LTable:
				ref := types.SkillRef{SkillID: getString(v, "id"), Level: getInt(v, "level")}
				if ref.Level == 0 {
					ref.Level = 1
				}
				tpl.Skills = append(tpl.Skills, ref)
			}
		}
	}

	// Rules are ids or markers returned by Rule "id" { ... }.
	if rt := getTable(tbl, "rules"); rt != nil {
		for i := 1; i <= rt.MaxN(); i++ {
			switch v := rt.RawGetInt(i).(type) {
			case lua.LString:
				tpl.Rules = append(tpl.Rules, string(v))
			case *lua.LTable:
				if id := getString(v, "__rule_id"); id != "" {
					tpl.Rules = append(tpl.Rules, id)
				}
			}
		}
	}
	return tpl
}

func compileRule(raw rawDef) types.TriggerRule {
	tbl := raw.table
	r := types.TriggerRule{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Trigger:     types.Trigger{Type: getString(tbl, "on")},
	}
	if r.Name == "" {
		r.Name = raw.id
	}
	if when := getTable(tbl, "when"); when != nil {
		c := compileCondition(when)
		r.Trigger.Conditions = &c
	}
	if eff := getTable(tbl, "effect"); eff != nil {
		r.Effect = compileRuleEffect(eff)
	}
	if msg := getString(tbl, "message"); msg != "" {
		r.Effect.Message = msg
	}
	if lim := getTable(tbl, "limits"); lim != nil {
		r.Limits = &types.RuleLimits{
			MaxUses:       getInt(lim, "max_uses"),
			CooldownTurns: getInt(lim, "cooldown"),
		}
	}
	return r
}

func compileCondition(tbl *lua.LTable) types.Condition {
	c := types.Condition{
		Type:   getString(tbl, "type"),
		Value:  toGoValue(tbl.RawGetString("value")),
		Target: getString(tbl, "target"),
	}
	eachTable(getTable(tbl, "conditions"), func(t *lua.LTable) {
		c.Conditions = append(c.Conditions, compileCondition(t))
	})
	return c
}

func compileRuleEffect(tbl *lua.LTable) types.RuleEffect {
	eff := types.RuleEffect{
		Type:     getString(tbl, "type"),
		Amount:   toGoValue(tbl.RawGetString("value")),
		Target:   getString(tbl, "target"),
		Range:    getInt(tbl, "range"),
		SkillID:  getString(tbl, "skill"),
		StatusID: getString(tbl, "status"),
		Message:  getString(tbl, "message"),
	}
	eachTable(getTable(tbl, "modifications"), func(t *lua.LTable) {
		eff.Modifications = append(eff.Modifications, types.StatModification{
			Stat:      getString(t, "stat"),
			Operation: getString(t, "operation"),
			Value:     toGoValue(t.RawGetString("value")),
		})
	})
	return eff
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}

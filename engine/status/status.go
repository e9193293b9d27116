// Package status manages stacking, ticking status effects on pieces.
// Effects live on the piece instance; each one is backed by a trigger rule
// registered in the battle, so the rule engine drives ticks. Most effects
// tick on their owner's beginTurn; disabling ones tick on its endTurn so
// they last through the owner's next action phase.
package status

import (
	"slices"

	"go.uber.org/zap"

	"github.com/nathoo/duelcore/engine/effects"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// Behaviors a status effect can have.
const (
	BehaviorNone         = "none"
	BehaviorDamage       = "damage"
	BehaviorHeal         = "heal"
	BehaviorStatModifier = "statModifier"
)

// RuleEffectTick is the rule effect type of a status effect's backing rule.
const RuleEffectTick = "statusTick"

// DefaultDuration applies when a status definition has no duration.
const DefaultDuration = 3

// TickResult reports what a tick did.
type TickResult struct {
	Fired   bool
	Expired bool
	Outcome effects.Outcome
	Message string
}

// Manager applies status effects. It holds no battle state.
type Manager struct {
	log *zap.Logger
}

// NewManager creates a manager. A nil logger disables logging.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log}
}

// Add attaches a status effect to a piece. A stackable effect whose type is
// already present gains a stack (up to maxStacks) and has its duration
// reset; anything else is added as a new entry with one stack, a type tag,
// and a backing rule. Reports false when the piece is unknown or dead.
func (m *Manager) Add(b *types.BattleState, pieceID string, eff types.StatusEffect) (types.StatusEffect, bool) {
	p := state.PieceByID(b, pieceID)
	if !state.Alive(p) {
		m.log.Warn("status add on missing piece",
			zap.String("piece", pieceID), zap.String("status", eff.Type))
		return types.StatusEffect{}, false
	}
	normalize(&eff)

	if eff.CanStack {
		for i := range p.StatusEffects {
			existing := &p.StatusEffects[i]
			if existing.Type != eff.Type {
				continue
			}
			existing.CurrentStacks = min(existing.CurrentStacks+1, existing.MaxStacks)
			existing.RemainingDuration = eff.RemainingDuration
			applyModifier(p, existing)
			m.log.Debug("status stacked",
				zap.String("piece", pieceID),
				zap.String("status", existing.Type),
				zap.Int("stacks", existing.CurrentStacks))
			return *existing, true
		}
	}

	eff.ID = state.NextID(b, "status", pieceID, eff.Type)
	eff.CurrentStacks = 1
	eff.RuleID = "status-rule-" + eff.ID
	eff.Applied = 0
	applyModifier(p, &eff)

	p.StatusEffects = append(p.StatusEffects, eff)
	if !hasString(p.StatusTags, eff.Type) {
		p.StatusTags = append(p.StatusTags, eff.Type)
	}
	p.Rules = append(p.Rules, eff.RuleID)

	trigger := TickEvent(eff.Type)
	state.AddRule(b, types.TriggerRule{
		ID:          eff.RuleID,
		Name:        eff.Name + " tick",
		Description: trigger + " tick of " + eff.Name,
		Trigger:     types.Trigger{Type: trigger},
		Effect:      types.RuleEffect{Type: RuleEffectTick, PieceID: pieceID, EffectID: eff.ID},
		PieceID:     pieceID,
		EffectID:    eff.ID,
	})

	m.log.Debug("status added",
		zap.String("piece", pieceID),
		zap.String("status", eff.Type),
		zap.String("id", eff.ID))
	return eff, true
}

// AddByID instantiates a status definition by ID, looking in the battle's
// definitions first and the predefined set second.
func (m *Manager) AddByID(b *types.BattleState, pieceID, statusID, sourceID string) (types.StatusEffect, bool) {
	def, ok := b.StatusDefsByID[statusID]
	if !ok {
		def, ok = Predefined[statusID]
	}
	if !ok {
		m.log.Warn("unknown status definition", zap.String("status", statusID))
		return types.StatusEffect{}, false
	}
	eff := FromDefinition(def)
	eff.SourcePieceID = sourceID
	return m.Add(b, pieceID, eff)
}

// TickEvent returns the event type a status of typ ticks on.
func TickEvent(typ string) string {
	if slices.Contains(Disabling, typ) {
		return effects.EndTurn
	}
	return effects.BeginTurn
}

// FromDefinition builds a fresh effect from a definition.
func FromDefinition(def types.StatusDefinition) types.StatusEffect {
	duration := def.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	typ := def.Type
	if typ == "" {
		typ = def.ID
	}
	return types.StatusEffect{
		Type:              typ,
		Name:              def.Name,
		Description:       def.Description,
		RemainingDuration: duration,
		Intensity:         def.Intensity,
		IsDebuff:          def.IsDebuff,
		CanStack:          def.CanStack,
		MaxStacks:         def.MaxStacks,
		Behavior:          def.Behavior,
		Stat:              def.Stat,
	}
}

// Remove detaches one effect, reverting any stat modifier and unregistering
// its backing rule. Reports whether the effect existed.
func (m *Manager) Remove(b *types.BattleState, pieceID, effectID string) bool {
	p := state.PieceByID(b, pieceID)
	if p == nil {
		m.log.Warn("status remove on missing piece", zap.String("piece", pieceID))
		return false
	}
	idx := -1
	for i := range p.StatusEffects {
		if p.StatusEffects[i].ID == effectID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	eff := p.StatusEffects[idx]
	revertModifier(p, &eff)

	p.StatusEffects = append(p.StatusEffects[:idx], p.StatusEffects[idx+1:]...)
	p.Rules = removeString(p.Rules, eff.RuleID)
	state.RemoveRule(b, eff.RuleID)

	stillTyped := false
	for _, other := range p.StatusEffects {
		if other.Type == eff.Type {
			stillTyped = true
			break
		}
	}
	if !stillTyped {
		p.StatusTags = removeString(p.StatusTags, eff.Type)
	}

	m.log.Debug("status removed",
		zap.String("piece", pieceID), zap.String("status", eff.Type))
	return true
}

// RemoveAll detaches every effect from a piece. Also works on pieces
// already moved to the graveyard.
func (m *Manager) RemoveAll(b *types.BattleState, pieceID string) {
	p := state.PieceByID(b, pieceID)
	if p == nil {
		for i := range b.Graveyard {
			if b.Graveyard[i].InstanceID == pieceID {
				p = &b.Graveyard[i]
				break
			}
		}
	}
	if p == nil {
		m.log.Warn("status clear on missing piece", zap.String("piece", pieceID))
		return
	}
	for i := range p.StatusEffects {
		eff := &p.StatusEffects[i]
		revertModifier(p, eff)
		p.Rules = removeString(p.Rules, eff.RuleID)
		p.StatusTags = removeString(p.StatusTags, eff.Type)
		state.RemoveRule(b, eff.RuleID)
	}
	p.StatusEffects = []types.StatusEffect{}
}

// Has reports whether a piece carries an effect of the given type.
func Has(b *types.BattleState, pieceID, typ string) bool {
	p := state.PieceByID(b, pieceID)
	if p == nil {
		return false
	}
	for _, e := range p.StatusEffects {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// Effects returns a copy of a piece's active effects.
func Effects(b *types.BattleState, pieceID string) []types.StatusEffect {
	p := state.PieceByID(b, pieceID)
	if p == nil {
		return nil
	}
	return append([]types.StatusEffect(nil), p.StatusEffects...)
}

// Tick runs one turn of an effect: its behavior fires while duration
// remains, the duration drops by one, and at zero the effect is removed.
func (m *Manager) Tick(b *types.BattleState, pieceID, effectID string) (TickResult, []types.Event) {
	var res TickResult
	p := state.PieceByID(b, pieceID)
	if p == nil {
		m.log.Warn("status tick on missing piece", zap.String("piece", pieceID))
		return res, nil
	}
	var eff *types.StatusEffect
	for i := range p.StatusEffects {
		if p.StatusEffects[i].ID == effectID {
			eff = &p.StatusEffects[i]
			break
		}
	}
	if eff == nil {
		// Orphaned rule; drop it.
		state.RemoveRule(b, "status-rule-"+effectID)
		return res, nil
	}

	var evts []types.Event
	if eff.RemainingDuration > 0 {
		amount := eff.Intensity * eff.CurrentStacks
		switch eff.Behavior {
		case BehaviorDamage:
			res.Outcome, evts = effects.Damage(b, eff.SourcePieceID, p, amount)
			res.Message = p.TemplateID + " suffers " + eff.Name
		case BehaviorHeal:
			res.Outcome = effects.Heal(p, amount)
			res.Message = p.TemplateID + " recovers from " + eff.Name
		}
		res.Fired = true
		eff.RemainingDuration--
	}

	if eff.RemainingDuration <= 0 {
		name := eff.Name
		m.Remove(b, pieceID, effectID)
		res.Expired = true
		m.log.Debug("status expired", zap.String("piece", pieceID), zap.String("status", name))
	}
	return res, evts
}

func normalize(eff *types.StatusEffect) {
	if eff.MaxStacks < 1 {
		eff.MaxStacks = 1
	}
	if eff.Behavior == "" {
		eff.Behavior = BehaviorNone
	}
	if eff.RemainingDuration < 0 {
		eff.RemainingDuration = 0
	}
	if eff.Name == "" {
		eff.Name = eff.Type
	}
}

// applyModifier brings a stat modifier's applied amount in line with its
// current stacks.
func applyModifier(p *types.PieceInstance, eff *types.StatusEffect) {
	if eff.Behavior != BehaviorStatModifier {
		return
	}
	want := eff.Intensity * eff.CurrentStacks
	if eff.IsDebuff {
		want = -want
	}
	out := effects.ModifyStat(p, eff.Stat, want-eff.Applied)
	eff.Applied += out.Value
}

func revertModifier(p *types.PieceInstance, eff *types.StatusEffect) {
	if eff.Behavior != BehaviorStatModifier || eff.Applied == 0 {
		return
	}
	effects.ModifyStat(p, eff.Stat, -eff.Applied)
	eff.Applied = 0
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

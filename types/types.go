// Package types defines the pure data structures shared by the battle
// engine, loader, and front ends. No logic lives here.
package types

// --- Content ---

// GameDef holds content pack metadata.
type GameDef struct {
	Title   string `json:"title"`
	Author  string `json:"author,omitempty"`
	Version string `json:"version,omitempty"`
	Intro   string `json:"intro,omitempty"`
}

// --- Map ---

// TileProps holds the static properties of a tile.
type TileProps struct {
	Walkable       bool   `json:"walkable"`
	BulletPassable bool   `json:"bulletPassable"`
	Type           string `json:"type"`
	Height         int    `json:"height,omitempty"`
	DamagePerTurn  int    `json:"damagePerTurn,omitempty"`
}

// Tile is one cell of a board map.
type Tile struct {
	ID    string    `json:"id"`
	X     int       `json:"x"`
	Y     int       `json:"y"`
	Props TileProps `json:"props"`
}

// BoardMap is a rectangular grid of tiles. Tiles are stored row-major.
type BoardMap struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`
}

// --- Pieces ---

// PieceStats are the base stats of a piece template.
type PieceStats struct {
	MaxHP     int `json:"maxHp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	MoveRange int `json:"moveRange"`
}

// SkillRef names a skill granted by a template.
type SkillRef struct {
	SkillID string `json:"skillId"`
	Level   int    `json:"level"`
}

// PieceTemplate is the static definition a piece instance is spawned from.
type PieceTemplate struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Faction string     `json:"faction"`
	Rarity  string     `json:"rarity"`
	Stats   PieceStats `json:"stats"`
	Skills  []SkillRef `json:"skills"`
	Rules   []string   `json:"rules,omitempty"`
}

// SkillState is the per-instance runtime state of one skill.
type SkillState struct {
	SkillID         string `json:"skillId"`
	CurrentCooldown int    `json:"currentCooldown"`
	CurrentCharges  int    `json:"currentCharges"`
	Unlocked        bool   `json:"unlocked"`
}

// PieceInstance is a piece taking part in a battle. X and Y are both set
// while the piece is on the board and both nil otherwise.
type PieceInstance struct {
	InstanceID    string         `json:"instanceId"`
	TemplateID    string         `json:"templateId"`
	OwnerPlayerID string         `json:"ownerPlayerId"`
	Faction       string         `json:"faction"`
	CurrentHP     int            `json:"currentHp"`
	MaxHP         int            `json:"maxHp"`
	Attack        int            `json:"attack"`
	Defense       int            `json:"defense"`
	MoveRange     int            `json:"moveRange"`
	X             *int           `json:"x"`
	Y             *int           `json:"y"`
	Shield        int            `json:"shield,omitempty"`
	Skills        []SkillState   `json:"skills"`
	StatusEffects []StatusEffect `json:"statusEffects"`
	StatusTags    []string       `json:"statusTags"`
	Rules         []string       `json:"rules"`
}

// --- Skills ---

// SkillEffect is one node of a skill's effect tree. Type selects the
// operation: damage, heal, buff, debuff, shield, teleport, applyStatus,
// cleanse, or composite (which runs Effects in order).
type SkillEffect struct {
	Type        string        `json:"type"`
	Value       int           `json:"value,omitempty"`
	Duration    int           `json:"duration,omitempty"`
	Target      string        `json:"target,omitempty"`
	Stat        string        `json:"stat,omitempty"`
	Range       int           `json:"range,omitempty"`
	StatusID    string        `json:"statusId,omitempty"`
	Scaling     string        `json:"scaling,omitempty"`
	Effects     []SkillEffect `json:"effects,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Targeting describes the target a skill needs from the caller.
type Targeting struct {
	Type   string `json:"type"`   // "piece" | "tile"
	Filter string `json:"filter"` // "enemy" | "ally" | "any" | "empty"
	Range  int    `json:"range"`
}

// SkillDefinition is the static definition of a skill.
type SkillDefinition struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Kind            string        `json:"kind"` // "active" | "passive"
	Type            string        `json:"type"` // "normal" | "super"
	CooldownTurns   int           `json:"cooldownTurns"`
	MaxCharges      int           `json:"maxCharges"`
	ChargeCost      int           `json:"chargeCost,omitempty"`
	PowerMultiplier float64       `json:"powerMultiplier"`
	Effects         []SkillEffect `json:"effects"`
	Range           string        `json:"range"` // "single" | "area" | "self"
	AreaSize        int           `json:"areaSize,omitempty"`
	RequiresTarget  bool          `json:"requiresTarget"`
	Targeting       *Targeting    `json:"targeting,omitempty"`
}

// --- Status effects ---

// StatusEffect is an active status on a piece.
type StatusEffect struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	RemainingDuration int    `json:"remainingDuration"`
	Intensity         int    `json:"intensity"`
	IsDebuff          bool   `json:"isDebuff"`
	CanStack          bool   `json:"canStack"`
	MaxStacks         int    `json:"maxStacks"`
	CurrentStacks     int    `json:"currentStacks"`
	Behavior          string `json:"behavior"` // "none" | "damage" | "heal" | "statModifier"
	Stat              string `json:"stat,omitempty"`
	Applied           int    `json:"appliedModifier,omitempty"`
	SourcePieceID     string `json:"sourcePieceId,omitempty"`
	RuleID            string `json:"ruleId,omitempty"`
}

// StatusDefinition is a loadable status template.
type StatusDefinition struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Intensity   int    `json:"intensity"`
	IsDebuff    bool   `json:"isDebuff"`
	CanStack    bool   `json:"canStack"`
	MaxStacks   int    `json:"maxStacks"`
	Duration    int    `json:"duration"`
	Behavior    string `json:"behavior"`
	Stat        string `json:"stat,omitempty"`
}

// --- Trigger rules ---

// Condition is a trigger condition. Compound conditions (AND, OR, NOT)
// use Conditions; single conditions use Value and Target.
type Condition struct {
	Type       string      `json:"type"`
	Value      any         `json:"value,omitempty"`
	Target     string      `json:"target,omitempty"` // "source" | "target" | "all"
	Conditions []Condition `json:"conditions,omitempty"`
}

// Trigger selects the event a rule reacts to.
type Trigger struct {
	Type       string     `json:"type"`
	Conditions *Condition `json:"conditions,omitempty"`
}

// StatModification is one stat change of a modifyStats rule effect.
type StatModification struct {
	Stat      string `json:"stat"`
	Operation string `json:"operation"` // "add" | "subtract" | "multiply" | "set"
	Value     any    `json:"value"`     // number or dynamic reference like "target.maxHp"
}

// RuleEffect is the declarative action a rule runs when it fires.
type RuleEffect struct {
	Type          string             `json:"type"`
	Amount        any                `json:"amount,omitempty"`
	Target        string             `json:"target,omitempty"`
	Range         int                `json:"range,omitempty"`
	Modifications []StatModification `json:"modifications,omitempty"`
	SkillID       string             `json:"skillId,omitempty"`
	StatusID      string             `json:"statusId,omitempty"`
	PieceID       string             `json:"pieceId,omitempty"`
	EffectID      string             `json:"effectId,omitempty"`
	Message       string             `json:"message,omitempty"`
}

// RuleLimits caps how often a rule may fire. MaxUses 0 means unlimited.
type RuleLimits struct {
	MaxUses         int `json:"maxUses,omitempty"`
	CooldownTurns   int `json:"cooldownTurns,omitempty"`
	CurrentCooldown int `json:"currentCooldown,omitempty"`
	Uses            int `json:"uses,omitempty"`
}

// TriggerRule reacts to battle events.
type TriggerRule struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Trigger     Trigger     `json:"trigger"`
	Effect      RuleEffect  `json:"effect"`
	Limits      *RuleLimits `json:"limits,omitempty"`
	PieceID     string      `json:"pieceId,omitempty"`
	EffectID    string      `json:"effectId,omitempty"`
}

// --- Turn & battle ---

// PlayerTurnMeta is the per-player bookkeeping.
type PlayerTurnMeta struct {
	PlayerID     string `json:"playerId"`
	ChargePoints int    `json:"chargePoints"`
}

// TurnActions records which actions the current player has used.
type TurnActions struct {
	HasMoved           bool `json:"hasMoved"`
	HasUsedBasicSkill  bool `json:"hasUsedBasicSkill"`
	HasUsedChargeSkill bool `json:"hasUsedChargeSkill"`
}

// TurnState is the current turn.
type TurnState struct {
	CurrentPlayerID string      `json:"currentPlayerId"`
	TurnNumber      int         `json:"turnNumber"`
	Phase           string      `json:"phase"` // "start" | "action" | "end"
	Actions         TurnActions `json:"actions"`
}

// ActionLog is one applied action and the messages it produced.
type ActionLog struct {
	TurnNumber int      `json:"turnNumber"`
	PlayerID   string   `json:"playerId"`
	Type       string   `json:"type"`
	Messages   []string `json:"messages,omitempty"`
	Events     []string `json:"events,omitempty"`
}

// BattleState is a full battle snapshot.
type BattleState struct {
	Map                    BoardMap                    `json:"map"`
	Pieces                 []PieceInstance             `json:"pieces"`
	Graveyard              []PieceInstance             `json:"graveyard"`
	PieceStatsByTemplateID map[string]PieceStats       `json:"pieceStatsByTemplateId"`
	SkillsByID             map[string]SkillDefinition  `json:"skillsById"`
	StatusDefsByID         map[string]StatusDefinition `json:"statusDefsById"`
	Players                []PlayerTurnMeta            `json:"players"`
	Turn                   TurnState                   `json:"turn"`
	Rules                  []TriggerRule               `json:"rules"`
	Actions                []ActionLog                 `json:"actions"`
	Seq                    int                         `json:"seq"`
}

// BattleAction is one request against a battle. Unused fields stay zero.
type BattleAction struct {
	Type          string `json:"type"`
	PlayerID      string `json:"playerId"`
	PieceID       string `json:"pieceId,omitempty"`
	SkillID       string `json:"skillId,omitempty"`
	ToX           int    `json:"toX,omitempty"`
	ToY           int    `json:"toY,omitempty"`
	TargetX       *int   `json:"targetX,omitempty"`
	TargetY       *int   `json:"targetY,omitempty"`
	TargetPieceID string `json:"targetPieceId,omitempty"`
	Amount        int    `json:"amount,omitempty"`
}

// Event is a battle occurrence that trigger rules react to.
type Event struct {
	Type          string `json:"type"`
	SourcePieceID string `json:"sourcePieceId,omitempty"`
	TargetPieceID string `json:"targetPieceId,omitempty"`
	SkillID       string `json:"skillId,omitempty"`
	Damage        int    `json:"damage,omitempty"`
	HasDamage     bool   `json:"hasDamage,omitempty"` // Damage is meaningful
	TurnNumber    int    `json:"turnNumber"`
	PlayerID      string `json:"playerId,omitempty"`
}

// --- Setup ---

// SetupPiece places one piece in a battle setup. Nil X/Y means
// the piece is placed on a random free floor tile.
type SetupPiece struct {
	TemplateID string `yaml:"template" json:"templateId"`
	X          *int   `yaml:"x" json:"x,omitempty"`
	Y          *int   `yaml:"y" json:"y,omitempty"`
}

// SetupPlayer is one side of a battle setup.
type SetupPlayer struct {
	ID     string       `yaml:"id" json:"id"`
	Pieces []SetupPiece `yaml:"pieces" json:"pieces"`
}

// Setup describes the initial roster of a battle.
type Setup struct {
	Map          string        `yaml:"map" json:"map"`
	Seed         int64         `yaml:"seed" json:"seed"`
	Players      []SetupPlayer `yaml:"players" json:"players"`
	Rules        []string      `yaml:"rules" json:"rules"`
	ChargePoints int           `yaml:"charge_points" json:"chargePoints"`
}

// --- Commands ---

// Command is a parsed console command. Front ends resolve its piece and
// skill references into a BattleAction.
type Command struct {
	Verb   string // begin | move | skill | super | end | grant | surrender
	Piece  string // piece reference
	Skill  string // skill reference
	Target string // target piece reference
	X      *int
	Y      *int
	Amount int
	Player string // grant recipient; empty means the current player
}

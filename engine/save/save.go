// Package save implements JSON serialization and deserialization of battle
// snapshots.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/duelcore/types"
)

// FormatVersion is written into every save and checked on load.
const FormatVersion = "1"

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version string             `json:"version"`
	Content string             `json:"content"`
	Seed    int64              `json:"seed"`
	Battle  *types.BattleState `json:"battle"`
}

// Save serializes a battle snapshot to JSON bytes. content names the
// content pack the battle was built from.
func Save(b *types.BattleState, content string, seed int64) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("nothing to save")
	}
	data := SaveData{
		Version: FormatVersion,
		Content: content,
		Seed:    seed,
		Battle:  b,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported save version %q", sd.Version)
	}
	if sd.Battle == nil {
		return nil, fmt.Errorf("save has no battle")
	}
	normalize(sd.Battle)
	return &sd, nil
}

// normalize makes sure collections are never nil after load.
func normalize(b *types.BattleState) {
	if b.Pieces == nil {
		b.Pieces = []types.PieceInstance{}
	}
	if b.Graveyard == nil {
		b.Graveyard = []types.PieceInstance{}
	}
	if b.Rules == nil {
		b.Rules = []types.TriggerRule{}
	}
	if b.Actions == nil {
		b.Actions = []types.ActionLog{}
	}
	if b.PieceStatsByTemplateID == nil {
		b.PieceStatsByTemplateID = map[string]types.PieceStats{}
	}
	if b.SkillsByID == nil {
		b.SkillsByID = map[string]types.SkillDefinition{}
	}
	if b.StatusDefsByID == nil {
		b.StatusDefsByID = map[string]types.StatusDefinition{}
	}
	for _, ps := range [][]types.PieceInstance{b.Pieces, b.Graveyard} {
		for i := range ps {
			p := &ps[i]
			if p.Skills == nil {
				p.Skills = []types.SkillState{}
			}
			if p.StatusEffects == nil {
				p.StatusEffects = []types.StatusEffect{}
			}
			if p.StatusTags == nil {
				p.StatusTags = []string{}
			}
			if p.Rules == nil {
				p.Rules = []string{}
			}
		}
	}
}

package loader

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/duelcore/types"
)

// LoadSetup reads a YAML battle setup file.
func LoadSetup(path string) (types.Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Setup{}, fmt.Errorf("reading setup %s: %w", path, err)
	}
	s, err := ParseSetup(data)
	if err != nil {
		return types.Setup{}, fmt.Errorf("parsing setup %s: %w", path, err)
	}
	return s, nil
}

// ParseSetup decodes a YAML battle setup. Unknown keys are rejected.
func ParseSetup(data []byte) (types.Setup, error) {
	var s types.Setup
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return types.Setup{}, err
	}
	if len(s.Players) < 2 {
		return types.Setup{}, fmt.Errorf("setup needs at least two players, got %d", len(s.Players))
	}
	for i, p := range s.Players {
		if p.ID == "" {
			return types.Setup{}, fmt.Errorf("player %d has no id", i+1)
		}
		if len(p.Pieces) == 0 {
			return types.Setup{}, fmt.Errorf("player %s has no pieces", p.ID)
		}
	}
	return s, nil
}

// Package targets loads the round target patterns. Patterns ship
// embedded in the binary; TARGETS_PATH swaps in an external set without
// a rebuild.
package targets

import (
	_ "embed"
	"fmt"
	"hash/fnv"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/blockparty/build-battle-backend/internal/grid"
)

//go:embed patterns.yaml
var defaultPatterns []byte

type Pattern struct {
	Name string
	Grid grid.Grid
}

type Library struct {
	patterns []Pattern
}

type patternFile struct {
	Patterns []struct {
		Name  string `yaml:"name"`
		Cells []struct {
			Row    int        `yaml:"row"`
			Col    int        `yaml:"col"`
			Height int        `yaml:"height"`
			Block  grid.Block `yaml:"block"`
		} `yaml:"cells"`
	} `yaml:"patterns"`
}

// Load parses the pattern set at path, or the embedded defaults when
// path is empty. A cell outside the grid bounds or with an unknown
// block is a load-time error, never a silent skip.
func Load(path string) (*Library, error) {
	raw := defaultPatterns
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("targets: %w", err)
		}
		raw = b
	}
	var pf patternFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("targets: %w", err)
	}
	if len(pf.Patterns) == 0 {
		return nil, fmt.Errorf("targets: no patterns defined")
	}
	lib := &Library{}
	for _, p := range pf.Patterns {
		g := grid.NewGrid()
		for _, c := range p.Cells {
			a := grid.Action{Row: c.Row, Col: c.Col, Height: c.Height, Block: c.Block}
			if err := a.Validate(); err != nil {
				return nil, fmt.Errorf("targets: pattern %q cell (%d,%d,%d): %w", p.Name, c.Row, c.Col, c.Height, err)
			}
			g.Place(a)
		}
		lib.patterns = append(lib.patterns, Pattern{Name: p.Name, Grid: g})
	}
	return lib, nil
}

// ForRound picks a pattern deterministically from the room code and
// round number, so the same room always sees the same targets and the
// two rounds see different ones.
func (l *Library) ForRound(roomCode string, round int) Pattern {
	h := fnv.New32a()
	h.Write([]byte(roomCode))
	idx := (int(h.Sum32()) + round - 1) % len(l.patterns)
	if idx < 0 {
		idx += len(l.patterns)
	}
	return l.patterns[idx]
}

func (l *Library) Len() int { return len(l.patterns) }

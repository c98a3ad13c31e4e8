package level

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

//go:embed levels.json
var embeddedTable []byte

// ErrEmptyTable is returned when a level document defines no levels.
var ErrEmptyTable = errors.New("level: table has no levels")

// Config describes the enemy population for one level.
type Config struct {
	Level           int     `json:"level"`
	EnemiesRequired int     `json:"enemiesRequired"`
	MaxEnemies      int     `json:"maxEnemies"`
	SpawnDelay      float64 `json:"spawnDelay"`
	AISkill         float64 `json:"aiSkill"`
}

// Table is the ordered list of levels plus the enemy colour palette.
type Table struct {
	levels  []Config
	palette []string
}

type tableDocument struct {
	Palette []string `json:"palette"`
	Levels  []Config `json:"levels"`
}

// DefaultTable returns the bundled five level table.
func DefaultTable() *Table {
	table, err := ParseTable(embeddedTable)
	if err != nil {
		panic(fmt.Errorf("level: load embedded table: %w", err))
	}
	return table
}

// ParseTable decodes a level document. Levels must be numbered 1..N without
// gaps once sorted.
func ParseTable(data []byte) (*Table, error) {
	var doc tableDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("level: decode table: %w", err)
	}
	if len(doc.Levels) == 0 {
		return nil, ErrEmptyTable
	}
	levels := append([]Config(nil), doc.Levels...)
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Level < levels[j].Level
	})
	for i, cfg := range levels {
		if cfg.Level != i+1 {
			return nil, fmt.Errorf("level: expected level %d, found %d", i+1, cfg.Level)
		}
		if cfg.EnemiesRequired <= 0 || cfg.MaxEnemies <= 0 {
			return nil, fmt.Errorf("level: level %d needs positive enemy counts", cfg.Level)
		}
	}
	palette := doc.Palette
	if len(palette) == 0 {
		palette = []string{"blue"}
	}
	return &Table{levels: levels, palette: palette}, nil
}

// Last returns the highest defined level.
func (t *Table) Last() int {
	return len(t.levels)
}

// Config returns the settings for level. Levels beyond the last reuse the
// final entry and levels below one use the first.
func (t *Table) Config(level int) Config {
	switch {
	case level < 1:
		return t.levels[0]
	case level > len(t.levels):
		return t.levels[len(t.levels)-1]
	default:
		return t.levels[level-1]
	}
}

// Color returns the enemy colour for level, cycling through the palette.
func (t *Table) Color(level int) string {
	index := (level - 1) % len(t.palette)
	if index < 0 {
		index += len(t.palette)
	}
	return t.palette[index]
}

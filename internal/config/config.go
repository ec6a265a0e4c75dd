// Package config handles tool configuration loading and management.
package config

import (
	"strings"

	"github.com/Faultbox/tilesmith/pkg/aoinvert"
	"github.com/Faultbox/tilesmith/pkg/edges"
	"github.com/Faultbox/tilesmith/pkg/jsontree"
)

// Config holds all tool settings.
type Config struct {
	Sampler  SamplerConfig  `yaml:"sampler"`
	Inverter InverterConfig `yaml:"inverter"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SamplerConfig holds edge sampler settings.
type SamplerConfig struct {
	Cols           int           `yaml:"cols"`
	Rows           int           `yaml:"rows"`
	TileSize       int           `yaml:"tile_size"`
	BlackThreshold float64       `yaml:"black_threshold"`
	Discard        DiscardConfig `yaml:"discard"`
	Table          TableConfig   `yaml:"table"`
}

// DiscardConfig holds the placeholder tile color thresholds.
type DiscardConfig struct {
	MinRed   uint8 `yaml:"min_red"`
	MaxGreen uint8 `yaml:"max_green"`
	MaxBlue  uint8 `yaml:"max_blue"`
}

// TableConfig names the generated source table.
type TableConfig struct {
	Package string `yaml:"package"`
	Name    string `yaml:"name"`
}

// InverterConfig holds pattern inverter settings.
type InverterConfig struct {
	Target string `yaml:"target"`

	// Indent is the number of spaces per nesting level of the output.
	// Output is always multi-line; 0 or less selects the default of 2.
	Indent int `yaml:"indent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	table := edges.DefaultTableOptions()
	discard := edges.DefaultDiscardKey()
	return &Config{
		Sampler: SamplerConfig{
			Cols:           edges.DefaultCols,
			Rows:           edges.DefaultRows,
			TileSize:       edges.DefaultTileSize,
			BlackThreshold: edges.DefaultBlackThreshold,
			Discard: DiscardConfig{
				MinRed:   discard.MinRed,
				MaxGreen: discard.MaxGreen,
				MaxBlue:  discard.MaxBlue,
			},
			Table: TableConfig{
				Package: table.Package,
				Name:    table.Name,
			},
		},
		Inverter: InverterConfig{
			Target: aoinvert.DefaultTarget,
			Indent: 2,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Grid returns the sampler grid.
func (c SamplerConfig) Grid() edges.Grid {
	return edges.Grid{Cols: c.Cols, Rows: c.Rows, TileSize: c.TileSize}
}

// DiscardKey returns the sampler discard thresholds.
func (c SamplerConfig) DiscardKey() edges.DiscardKey {
	return edges.DiscardKey{MinRed: c.Discard.MinRed, MaxGreen: c.Discard.MaxGreen, MaxBlue: c.Discard.MaxBlue}
}

// TableOptions returns the source table options.
func (c SamplerConfig) TableOptions() edges.TableOptions {
	return edges.TableOptions{Package: c.Table.Package, Name: c.Table.Name}
}

// IndentString returns the configured indentation as spaces, falling back to
// jsontree.DefaultIndent when Indent is not positive.
func (c InverterConfig) IndentString() string {
	if c.Indent <= 0 {
		return jsontree.DefaultIndent
	}
	return strings.Repeat(" ", c.Indent)
}

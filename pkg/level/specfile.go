package level

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/tilesmith/internal/imageio"
)

// SpecFile is the YAML form of a level. Relative paths are resolved
// against the directory holding the file.
type SpecFile struct {
	Layout   string          `yaml:"layout"`
	Tileset  string          `yaml:"tileset"`
	TileSize [2]int          `yaml:"tile_size"`
	Colors   []ColorMapEntry `yaml:"colors"`
	Output   string          `yaml:"output"`
	// Rules optionally names an edge signature JSON file used to report
	// autotile matches for the compiled layer.
	Rules string `yaml:"rules,omitempty"`
	// Terrain is the tile position whose cells are autotiled with Rules.
	Terrain *[2]int `yaml:"terrain,omitempty"`

	dir string
}

// ColorMapEntry maps a "#rrggbb" layout color to a tile position [x, y].
type ColorMapEntry struct {
	Color string `yaml:"color"`
	Tile  [2]int `yaml:"tile"`
}

// LoadSpecFile reads a YAML level file.
func LoadSpecFile(path string) (*SpecFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf SpecFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	sf.dir = filepath.Dir(path)

	if sf.Layout == "" || sf.Tileset == "" {
		return nil, fmt.Errorf("%s: layout and tileset are required", path)
	}
	if sf.TileSize[0] <= 0 || sf.TileSize[1] <= 0 {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrInvalidTileSize, sf.TileSize)
	}
	return &sf, nil
}

// Resolve returns p relative to the level file's directory.
func (sf *SpecFile) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(sf.dir, p)
}

// Spec loads the referenced images and builds the Spec.
func (sf *SpecFile) Spec() (*Spec, error) {
	layout, err := imageio.Load(sf.Resolve(sf.Layout))
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	tileset, err := imageio.Load(sf.Resolve(sf.Tileset))
	if err != nil {
		return nil, fmt.Errorf("loading tileset: %w", err)
	}

	spec := NewSpec(layout, tileset, sf.TileSize[0], sf.TileSize[1])
	for _, e := range sf.Colors {
		c, err := ParseRGB(e.Color)
		if err != nil {
			return nil, err
		}
		if err := spec.Register(c, Pos{X: e.Tile[0], Y: e.Tile[1]}); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

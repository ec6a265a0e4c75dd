package level

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/tilesmith/internal/imageio"
)

// Compile errors.
var (
	ErrDuplicateColor    = errors.New("color already registered")
	ErrUnregisteredColor = errors.New("color not registered in color map")
	ErrUnusedColor       = errors.New("color was not used in the layout")
)

// RGB is an opaque layout color.
type RGB struct {
	R, G, B uint8
}

// String formats the color as #rrggbb.
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB parses a "#rrggbb" hex color.
func ParseRGB(hex string) (RGB, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{}, fmt.Errorf("parsing color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

func rgbOf(c color.NRGBA) RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// ColorEntry binds a layout color to a tile position.
type ColorEntry struct {
	Color RGB
	Tile  Pos
}

// Spec describes a level: a layout image in which every pixel is one cell,
// the tile sheet to draw cells with, and which layout color picks which tile.
type Spec struct {
	Layout   image.Image
	Tileset  image.Image
	TileW    int
	TileH    int
	colorMap []ColorEntry
}

// NewSpec returns a level without color mappings.
func NewSpec(layout, tileset image.Image, tileW, tileH int) *Spec {
	return &Spec{Layout: layout, Tileset: tileset, TileW: tileW, TileH: tileH}
}

// Register maps a layout color to the tile at pos. Colors and positions may
// each be registered once.
func (s *Spec) Register(c RGB, pos Pos) error {
	for _, e := range s.colorMap {
		if e.Color == c {
			return fmt.Errorf("%w: %s", ErrDuplicateColor, c)
		}
		if e.Tile == pos {
			return fmt.Errorf("%w: %v", ErrDuplicatePosition, pos)
		}
	}
	s.colorMap = append(s.colorMap, ColorEntry{Color: c, Tile: pos})
	return nil
}

// ColorMap returns the registered entries in registration order.
func (s *Spec) ColorMap() []ColorEntry {
	return s.colorMap
}

// Compile builds the tile sheet and the layer described by s. Tile
// IDs are allocated in registration order, so the first registered color is
// tile 0. Every layout pixel must use a registered color and every
// registered color must appear in the layout.
func (s *Spec) Compile() (*TileSheet, *Layer, error) {
	sheet, err := NewTileSheetWithTileSize(s.Tileset, s.TileW, s.TileH)
	if err != nil {
		return nil, nil, err
	}

	ids := make(map[RGB]uint32, len(s.colorMap))
	for _, e := range s.colorMap {
		ids[e.Color] = sheet.AllocateTileID(e.Tile)
	}

	layout := imageio.ToNRGBA(s.Layout)
	b := layout.Bounds()
	layer := NewLayer(b.Dx(), b.Dy())
	used := make(map[RGB]bool, len(s.colorMap))

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := rgbOf(layout.NRGBAAt(x, y))
			id, ok := ids[c]
			if !ok {
				return nil, nil, fmt.Errorf("%w: %s at (%d, %d)", ErrUnregisteredColor, c, x, y)
			}
			layer.Set(x, y, id)
			used[c] = true
		}
	}

	for _, e := range s.colorMap {
		if !used[e.Color] {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnusedColor, e.Color)
		}
	}
	return sheet, layer, nil
}

package level

import (
	"errors"
	"fmt"
	"image"
)

// ErrLayerSize is returned when data does not fit a layer.
var ErrLayerSize = errors.New("data length does not match layer size")

// Layer is a grid of tile IDs.
type Layer struct {
	width  int
	height int
	data   []uint32
}

// NewLayer returns a width x height layer filled with tile 0.
func NewLayer(width, height int) *Layer {
	return &Layer{width: width, height: height, data: make([]uint32, width*height)}
}

// Fill replaces the layer contents with data in row-major order.
func (l *Layer) Fill(data []uint32) error {
	if len(data) != len(l.data) {
		return fmt.Errorf("%w: got %d, want %d", ErrLayerSize, len(data), len(l.data))
	}
	copy(l.data, data)
	return nil
}

// Size returns the layer dimensions in tiles.
func (l *Layer) Size() (width, height int) {
	return l.width, l.height
}

// In reports whether (x, y) is inside the layer.
func (l *Layer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.width && y < l.height
}

// At returns the tile ID at (x, y). Out of range cells read as 0.
func (l *Layer) At(x, y int) uint32 {
	if !l.In(x, y) {
		return 0
	}
	return l.data[y*l.width+x]
}

// Set stores id at (x, y). Out of range cells are ignored.
func (l *Layer) Set(x, y int, id uint32) {
	if l.In(x, y) {
		l.data[y*l.width+x] = id
	}
}

// Data returns the tile IDs in row-major order.
func (l *Layer) Data() []uint32 {
	return l.data
}

// OneWhere returns a mask layer holding 1 where pred is true and 0 elsewhere.
func (l *Layer) OneWhere(pred func(uint32) bool) *Layer {
	out := NewLayer(l.width, l.height)
	for i, id := range l.data {
		if pred(id) {
			out.data[i] = 1
		}
	}
	return out
}

// Neighborhood returns the 3x3 block centred on (x, y) in row-major order,
// with pred applied to each cell. Cells outside the layer are false.
func (l *Layer) Neighborhood(x, y int, pred func(uint32) bool) [9]bool {
	var n [9]bool
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			cx, cy := x+dx, y+dy
			if l.In(cx, cy) {
				n[(dy+1)*3+dx+1] = pred(l.data[cy*l.width+cx])
			}
		}
	}
	return n
}

// Render draws every cell of the layer with its tile from sheet.
func (l *Layer) Render(sheet *TileSheet) (*image.NRGBA, error) {
	tw, th := sheet.TileSize()
	out := image.NewNRGBA(image.Rect(0, 0, l.width*tw, l.height*th))

	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			id := l.data[y*l.width+x]
			if err := sheet.drawTile(out, image.Pt(x*tw, y*th), id); err != nil {
				return nil, fmt.Errorf("cell (%d, %d): %w", x, y, err)
			}
		}
	}
	return out, nil
}

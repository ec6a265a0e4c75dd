// Package level compiles colour-coded layout images into tile layers and
// renders them with a tile sheet.
package level

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/Faultbox/tilesmith/internal/imageio"
)

// Level errors.
var (
	ErrDuplicateTileID   = errors.New("tile ID already registered")
	ErrDuplicatePosition = errors.New("tile position already registered")
	ErrUnknownTileID     = errors.New("tile ID not found in tile sheet")
	ErrInvalidTileSize   = errors.New("invalid tile size")
)

// Pos is a tile position in a sheet, in tiles.
type Pos struct {
	X, Y int
}

// TileSheet maps tile IDs to tiles of a sheet image.
type TileSheet struct {
	img       *image.NRGBA
	cols      int
	rows      int
	ids       map[uint32]Pos
	positions map[Pos]uint32
}

// NewTileSheet splits img into cols x rows tiles.
func NewTileSheet(img image.Image, cols, rows int) (*TileSheet, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d tiles", ErrInvalidTileSize, cols, rows)
	}
	return &TileSheet{
		img:       imageio.ToNRGBA(img),
		cols:      cols,
		rows:      rows,
		ids:       make(map[uint32]Pos),
		positions: make(map[Pos]uint32),
	}, nil
}

// NewTileSheetWithTileSize splits img into tiles of the given pixel size.
// Partial tiles at the right and bottom edges are ignored.
func NewTileSheetWithTileSize(img image.Image, tileW, tileH int) (*TileSheet, error) {
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("%w: %dx%d px", ErrInvalidTileSize, tileW, tileH)
	}
	b := img.Bounds()
	return NewTileSheet(img, b.Dx()/tileW, b.Dy()/tileH)
}

// Register binds id to the tile at pos.
func (s *TileSheet) Register(id uint32, pos Pos) error {
	if _, ok := s.ids[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateTileID, id)
	}
	if _, ok := s.positions[pos]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicatePosition, pos)
	}
	s.ids[id] = pos
	s.positions[pos] = id
	return nil
}

// AllocateTileID returns the ID bound to pos, binding the lowest free ID
// first if pos has none.
func (s *TileSheet) AllocateTileID(pos Pos) uint32 {
	if id, ok := s.positions[pos]; ok {
		return id
	}
	id := uint32(len(s.positions))
	for {
		if _, taken := s.ids[id]; !taken {
			break
		}
		id++
	}
	s.ids[id] = pos
	s.positions[pos] = id
	return id
}

// TileID returns the ID bound to pos.
func (s *TileSheet) TileID(pos Pos) (uint32, bool) {
	id, ok := s.positions[pos]
	return id, ok
}

// TileSize returns the pixel size of one tile.
func (s *TileSheet) TileSize() (w, h int) {
	b := s.img.Bounds()
	return b.Dx() / s.cols, b.Dy() / s.rows
}

// Len returns the number of bound tile IDs.
func (s *TileSheet) Len() int {
	return len(s.ids)
}

// Bounds returns the pixel rectangle of tile id within the sheet image.
func (s *TileSheet) Bounds(id uint32) (image.Rectangle, bool) {
	pos, ok := s.ids[id]
	if !ok {
		return image.Rectangle{}, false
	}
	w, h := s.TileSize()
	return image.Rect(pos.X*w, pos.Y*h, pos.X*w+w, pos.Y*h+h), true
}

// Tile returns the image of tile id.
func (s *TileSheet) Tile(id uint32) (image.Image, bool) {
	r, ok := s.Bounds(id)
	if !ok {
		return nil, false
	}
	return s.img.SubImage(r), true
}

// drawTile copies tile id to dst with its top-left corner at dp.
func (s *TileSheet) drawTile(dst draw.Image, dp image.Point, id uint32) error {
	r, ok := s.Bounds(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTileID, id)
	}
	draw.Copy(dst, dp, s.img, r, draw.Src, nil)
	return nil
}

// Package edges samples per-tile edge signatures from an autotile sheet.
//
// A tile sheet is a grid of equally sized tiles. For every tile nine points
// are sampled (the corners, edge midpoints and centre of the tile) and each
// is classified as black or not, giving a 3x3 signature that describes which
// neighbours the tile expects to connect to.
package edges

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"go.uber.org/zap"

	"github.com/Faultbox/tilesmith/internal/imageio"
)

// Sampling errors.
var (
	ErrInvalidGrid     = errors.New("invalid tile grid")
	ErrTileOutOfBounds = errors.New("tile outside image bounds")
)

// Default sheet layout and classification thresholds.
const (
	DefaultCols           = 11
	DefaultRows           = 5
	DefaultTileSize       = 16
	DefaultBlackThreshold = 0.03
)

// Grid describes how tiles are laid out in a sheet.
type Grid struct {
	Cols     int
	Rows     int
	TileSize int
}

// DefaultGrid returns the 11x5 grid of 16 pixel tiles.
func DefaultGrid() Grid {
	return Grid{Cols: DefaultCols, Rows: DefaultRows, TileSize: DefaultTileSize}
}

// Validate checks that the grid has positive dimensions.
func (g Grid) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 || g.TileSize <= 0 {
		return fmt.Errorf("%w: %dx%d tiles of %d px", ErrInvalidGrid, g.Cols, g.Rows, g.TileSize)
	}
	return nil
}

// SampleOffsets returns the pixel offsets sampled on each axis of a tile:
// 0, the midpoint and the last pixel.
func (g Grid) SampleOffsets() [3]int {
	var offs [3]int
	step := g.TileSize / 2
	for i := range offs {
		offs[i] = min(i*step, g.TileSize-1)
	}
	return offs
}

// DiscardKey decides which tiles are placeholders. A tile whose top-left
// pixel has red above MinRed and green and blue below MaxGreen and MaxBlue
// is skipped.
type DiscardKey struct {
	MinRed   uint8
	MaxGreen uint8
	MaxBlue  uint8
}

// DefaultDiscardKey matches approximately pure red.
func DefaultDiscardKey() DiscardKey {
	return DiscardKey{MinRed: 250, MaxGreen: 5, MaxBlue: 5}
}

// Matches reports whether c is a discard marker.
func (k DiscardKey) Matches(c color.NRGBA) bool {
	return c.R > k.MinRed && c.G < k.MaxGreen && c.B < k.MaxBlue
}

// Sampler extracts edge signatures from tile sheets.
type Sampler struct {
	Grid Grid
	// BlackThreshold is compared against the normalized red channel; samples
	// below it are black.
	BlackThreshold float64
	Discard        DiscardKey
	Logger         *zap.Logger
}

// NewSampler returns a sampler with the default grid and thresholds.
func NewSampler(log *zap.Logger) *Sampler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sampler{
		Grid:           DefaultGrid(),
		BlackThreshold: DefaultBlackThreshold,
		Discard:        DefaultDiscardKey(),
		Logger:         log,
	}
}

func (s *Sampler) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// SampleFile loads the image at path and samples it.
func (s *Sampler) SampleFile(path string) (*Sheet, error) {
	img, err := imageio.LoadNRGBA(path)
	if err != nil {
		return nil, err
	}
	return s.Sample(img)
}

// Sample walks the grid column by column, top to bottom within a column, and
// returns the signatures of all kept tiles. Discarded tiles do not consume an
// index, so the returned indices are dense.
func (s *Sampler) Sample(img image.Image) (*Sheet, error) {
	g := s.Grid
	if err := g.Validate(); err != nil {
		return nil, err
	}

	px := imageio.ToNRGBA(img)
	bounds := px.Bounds()
	offs := g.SampleOffsets()
	log := s.log()

	sheet := &Sheet{}
	for col := 0; col < g.Cols; col++ {
		for row := 0; row < g.Rows; row++ {
			x0 := col * g.TileSize
			y0 := row * g.TileSize
			tile := image.Rect(x0, y0, x0+g.TileSize, y0+g.TileSize)
			// Only the top-left pixel decides a discard, so a placeholder may
			// hang off the image.
			if !image.Pt(x0, y0).In(bounds) {
				return nil, fmt.Errorf("%w: tile (%d, %d) starts at (%d, %d), image is %v",
					ErrTileOutOfBounds, col, row, x0, y0, bounds)
			}
			if s.Discard.Matches(px.NRGBAAt(x0, y0)) {
				log.Info("Discarding sprite - red pixel detected", zap.Int("col", col), zap.Int("row", row))
				continue
			}
			if !tile.In(bounds) {
				return nil, fmt.Errorf("%w: tile (%d, %d) spans %v, image is %v",
					ErrTileOutOfBounds, col, row, tile, bounds)
			}

			var sig Signature
			for gy, sy := range offs {
				for gx, sx := range offs {
					r := float64(px.NRGBAAt(x0+sx, y0+sy).R) / 255.0
					if r < s.BlackThreshold {
						sig[gy*3+gx] = 1.0
					}
				}
			}

			sheet.add(Entry{Index: sheet.Len(), Col: col, Row: row, Signature: sig})
			log.Info("Processed sprite", zap.Int("col", col), zap.Int("row", row))
		}
	}

	log.Info("Extracted sprites", zap.Int("count", sheet.Len()))
	return sheet, nil
}

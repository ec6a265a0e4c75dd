package imageio

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

// buildTGA assembles a synthetic TGA file. pixels are RGBA, top row first.
func buildTGA(width, height, bpp int, rle bool, pixels []color.NRGBA) []byte {
	header := make([]byte, tgaHeaderSize)
	header[2] = TGATypeUncompressed
	if rle {
		header[2] = TGATypeRLE
	}
	header[12] = byte(width)
	header[13] = byte(width >> 8)
	header[14] = byte(height)
	header[15] = byte(height >> 8)
	header[16] = byte(bpp)
	header[17] = 0x20 // top-to-bottom

	data := header
	for _, p := range pixels {
		if rle {
			// One raw packet per pixel keeps the builder simple.
			data = append(data, 0x00)
		}
		data = append(data, p.B, p.G, p.R)
		if bpp == 32 {
			data = append(data, p.A)
		}
	}
	return data
}

func TestDecodeTGA(t *testing.T) {
	pixels := []color.NRGBA{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 128},
		{R: 0, G: 0, B: 255, A: 0},
		{R: 10, G: 20, B: 30, A: 255},
	}

	tests := []struct {
		name string
		bpp  int
		rle  bool
	}{
		{"uncompressed 32", 32, false},
		{"uncompressed 24", 24, false},
		{"rle 32", 32, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeTGA(buildTGA(2, 2, tt.bpp, tt.rle, pixels))
			if err != nil {
				t.Fatalf("DecodeTGA: %v", err)
			}
			for i, want := range pixels {
				if tt.bpp == 24 {
					want.A = 255
				}
				got := img.NRGBAAt(i%2, i/2)
				if got != want {
					t.Errorf("pixel %d: got %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestDecodeTGABottomUp(t *testing.T) {
	data := buildTGA(1, 2, 24, false, []color.NRGBA{{R: 1}, {R: 2}})
	data[17] = 0 // bottom-to-top origin

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if img.NRGBAAt(0, 0).R != 2 || img.NRGBAAt(0, 1).R != 1 {
		t.Errorf("rows were not flipped: top=%d bottom=%d", img.NRGBAAt(0, 0).R, img.NRGBAAt(0, 1).R)
	}
}

func TestDecodeTGARunPacket(t *testing.T) {
	header := make([]byte, tgaHeaderSize)
	header[2] = TGATypeRLE
	header[12] = 3
	header[14] = 1
	header[16] = 24
	header[17] = 0x20
	data := append(header, 0x82, 9, 8, 7) // run of 3 pixels B=9 G=8 R=7

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	for x := 0; x < 3; x++ {
		if got := img.NRGBAAt(x, 0); got != (color.NRGBA{R: 7, G: 8, B: 9, A: 255}) {
			t.Errorf("pixel %d: got %v", x, got)
		}
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	if _, err := DecodeTGA([]byte{1, 2, 3}); !errors.Is(err, ErrTGATruncated) {
		t.Errorf("short header: expected ErrTGATruncated, got %v", err)
	}

	data := buildTGA(2, 2, 16, false, nil)
	if _, err := DecodeTGA(data); !errors.Is(err, ErrTGAUnsupported) {
		t.Errorf("16 bpp: expected ErrTGAUnsupported, got %v", err)
	}

	data = buildTGA(2, 2, 32, false, []color.NRGBA{{}})
	if _, err := DecodeTGA(data); !errors.Is(err, ErrTGATruncated) {
		t.Errorf("missing pixels: expected ErrTGATruncated, got %v", err)
	}
}

func TestToNRGBAKeepsStraightAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	if ToNRGBA(src) != src {
		t.Error("expected NRGBA at origin to be returned as-is")
	}

	sub := image.NewRGBA(image.Rect(4, 4, 6, 6))
	sub.SetRGBA(4, 4, color.RGBA{R: 255, A: 255})
	out := ToNRGBA(sub)
	if out.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("expected bounds moved to origin, got %v", out.Bounds())
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("got %v", got)
	}
}

func TestToNRGBAKeepsTransparentColor(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(2, 3, color.NRGBA{R: 255})
	src.SetNRGBA(3, 3, color.NRGBA{G: 80, A: 128})

	out := ToNRGBA(src.SubImage(image.Rect(2, 2, 4, 4)))
	if out.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("expected bounds moved to origin, got %v", out.Bounds())
	}
	if got := out.NRGBAAt(0, 1); got != (color.NRGBA{R: 255}) {
		t.Errorf("transparent pixel lost its color: got %v", got)
	}
	if got := out.NRGBAAt(1, 1); got != (color.NRGBA{G: 80, A: 128}) {
		t.Errorf("translucent pixel changed: got %v", got)
	}

	pal := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{
		color.NRGBA{R: 255},
		color.NRGBA{B: 255, A: 255},
	})
	pal.SetColorIndex(1, 0, 1)
	out = ToNRGBA(pal)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 255}) {
		t.Errorf("transparent palette entry lost its color: got %v", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("got %v", got)
	}
}

func TestToNRGBAConvertsOtherModels(t *testing.T) {
	gray := image.NewGray(image.Rect(1, 1, 3, 2))
	gray.SetGray(2, 1, color.Gray{Y: 7})
	out := ToNRGBA(gray)
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{R: 7, G: 7, B: 7, A: 255}) {
		t.Errorf("got %v", got)
	}
}

func TestSaveAndLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{R: 12, G: 34, B: 56, A: 255})

	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	loaded, err := LoadNRGBA(path)
	if err != nil {
		t.Fatalf("LoadNRGBA: %v", err)
	}
	if loaded.Bounds() != img.Bounds() {
		t.Fatalf("bounds: got %v", loaded.Bounds())
	}
	if got := loaded.NRGBAAt(2, 1); got != (color.NRGBA{R: 12, G: 34, B: 56, A: 255}) {
		t.Errorf("pixel: got %v", got)
	}
}

func TestLoadTGAByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.TGA")
	data := buildTGA(1, 1, 32, false, []color.NRGBA{{R: 1, G: 2, B: 3, A: 4}})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	img, err := LoadNRGBA(path)
	if err != nil {
		t.Fatalf("LoadNRGBA: %v", err)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("got %v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

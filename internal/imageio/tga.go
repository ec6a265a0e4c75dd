package imageio

import (
	"errors"
	"fmt"
	"image"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

// TGA decoding errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA image")
)

const tgaHeaderSize = 18

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) true-color TGA
// image with 24 or 32 bits per pixel. Channel values are stored as-is, so a
// fully transparent pixel keeps its color.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: header", ErrTGATruncated)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: type %d", ErrTGAUnsupported, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: image id", ErrTGATruncated)
	}

	t := &tgaPixels{
		img:         image.NewNRGBA(image.Rect(0, 0, width, height)),
		width:       width,
		height:      height,
		bytesPerPx:  bpp / 8,
		topToBottom: descriptor&0x20 != 0,
	}

	var err error
	if imageType == TGATypeUncompressed {
		err = t.readRaw(data[offset:])
	} else {
		err = t.readRLE(data[offset:])
	}
	if err != nil {
		return nil, err
	}
	return t.img, nil
}

type tgaPixels struct {
	img         *image.NRGBA
	width       int
	height      int
	bytesPerPx  int
	topToBottom bool
}

// put stores the BGR(A) pixel src as the n-th pixel in file order.
func (t *tgaPixels) put(n int, src []byte) {
	x := n % t.width
	y := n / t.width
	if !t.topToBottom {
		y = t.height - 1 - y
	}
	i := t.img.PixOffset(x, y)
	t.img.Pix[i] = src[2]
	t.img.Pix[i+1] = src[1]
	t.img.Pix[i+2] = src[0]
	if t.bytesPerPx == 4 {
		t.img.Pix[i+3] = src[3]
	} else {
		t.img.Pix[i+3] = 0xff
	}
}

func (t *tgaPixels) readRaw(px []byte) error {
	count := t.width * t.height
	if len(px) < count*t.bytesPerPx {
		return fmt.Errorf("%w: pixel data", ErrTGATruncated)
	}
	for n := 0; n < count; n++ {
		t.put(n, px[n*t.bytesPerPx:])
	}
	return nil
}

func (t *tgaPixels) readRLE(px []byte) error {
	total := t.width * t.height
	n, pos := 0, 0

	for n < total {
		if pos >= len(px) {
			return fmt.Errorf("%w: RLE stream ended at pixel %d of %d", ErrTGATruncated, n, total)
		}
		header := px[pos]
		pos++
		run := int(header&0x7f) + 1

		if header&0x80 != 0 {
			if pos+t.bytesPerPx > len(px) {
				return fmt.Errorf("%w: RLE packet", ErrTGATruncated)
			}
			for i := 0; i < run && n < total; i++ {
				t.put(n, px[pos:])
				n++
			}
			pos += t.bytesPerPx
			continue
		}

		for i := 0; i < run && n < total; i++ {
			if pos+t.bytesPerPx > len(px) {
				return fmt.Errorf("%w: raw packet", ErrTGATruncated)
			}
			t.put(n, px[pos:])
			pos += t.bytesPerPx
			n++
		}
	}
	return nil
}

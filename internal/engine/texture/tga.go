// Package texture decodes the image formats found in game data and
// prepares them for baking: BMP, PNG, JPEG, TGA, plus the magenta
// transparency key convention.
package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type tags. Only true-color variants appear in game data.
const (
	tgaUncompressed = 2
	tgaRLE          = 10
)

// tgaHeader is the fixed 18-byte TGA preamble.
type tgaHeader struct {
	idLength      int
	colorMapType  uint8
	imageType     uint8
	width, height int
	bytesPerPixel int
	topToBottom   bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < 18 {
		return tgaHeader{}, fmt.Errorf("TGA header truncated: %d bytes", len(data))
	}
	h := tgaHeader{
		idLength:      int(data[0]),
		colorMapType:  data[1],
		imageType:     data[2],
		width:         int(data[12]) | int(data[13])<<8,
		height:        int(data[14]) | int(data[15])<<8,
		bytesPerPixel: int(data[16]) / 8,
		topToBottom:   data[17]&0x20 != 0,
	}
	if h.colorMapType != 0 {
		return tgaHeader{}, fmt.Errorf("color-mapped TGA not supported")
	}
	if h.imageType != tgaUncompressed && h.imageType != tgaRLE {
		return tgaHeader{}, fmt.Errorf("unsupported TGA type %d", h.imageType)
	}
	if h.bytesPerPixel != 3 && h.bytesPerPixel != 4 {
		return tgaHeader{}, fmt.Errorf("unsupported TGA depth %d bits", h.bytesPerPixel*8)
	}
	return h, nil
}

// DecodeTGA decodes a TGA image. TGA has no magic number, so callers
// should try sniffable formats first and fall back here.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	offset := 18 + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA id field truncated")
	}
	pixels := data[offset:]

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	if h.imageType == tgaUncompressed {
		if err := decodeTGARaw(img, pixels, h); err != nil {
			return nil, err
		}
	} else {
		decodeTGARLE(img, pixels, h)
	}
	return img, nil
}

// setPixel writes one pixel, flipping rows for bottom-up files.
func setPixel(img *image.RGBA, h tgaHeader, index int, c color.RGBA) {
	x := index % h.width
	y := index / h.width
	if !h.topToBottom {
		y = h.height - 1 - y
	}
	img.SetRGBA(x, y, c)
}

// readBGRA interprets one stored pixel. TGA stores channels as BGR(A).
func readBGRA(p []byte, bytesPerPixel int) color.RGBA {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c
}

func decodeTGARaw(img *image.RGBA, pixels []byte, h tgaHeader) error {
	count := h.width * h.height
	if len(pixels) < count*h.bytesPerPixel {
		return fmt.Errorf("TGA pixel data truncated")
	}
	for i := 0; i < count; i++ {
		setPixel(img, h, i, readBGRA(pixels[i*h.bytesPerPixel:], h.bytesPerPixel))
	}
	return nil
}

// decodeTGARLE expands run-length packets. A short buffer stops the
// decode early, leaving the remaining pixels zeroed.
func decodeTGARLE(img *image.RGBA, pixels []byte, h tgaHeader) {
	count := h.width * h.height
	pixel := 0
	pos := 0

	for pixel < count && pos < len(pixels) {
		packet := pixels[pos]
		pos++
		runLength := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// One stored pixel repeated runLength times.
			if pos+h.bytesPerPixel > len(pixels) {
				return
			}
			c := readBGRA(pixels[pos:], h.bytesPerPixel)
			pos += h.bytesPerPixel
			for i := 0; i < runLength && pixel < count; i++ {
				setPixel(img, h, pixel, c)
				pixel++
			}
			continue
		}
		for i := 0; i < runLength && pixel < count; i++ {
			if pos+h.bytesPerPixel > len(pixels) {
				return
			}
			setPixel(img, h, pixel, readBGRA(pixels[pos:], h.bytesPerPixel))
			pos += h.bytesPerPixel
			pixel++
		}
	}
}

// IsMagentaKey reports whether an RGB color matches the magenta
// transparency key. The tolerance absorbs BMP decoder rounding.
func IsMagentaKey(r, g, b uint8) bool {
	return r >= 250 && g <= 10 && b >= 250
}

// ApplyMagentaKey makes keyed pixels transparent in place. RGB is also
// zeroed so filtering does not bleed magenta into neighbors.
func ApplyMagentaKey(img *image.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := img.PixOffset(x, y)
			if IsMagentaKey(img.Pix[i], img.Pix[i+1], img.Pix[i+2]) {
				img.Pix[i] = 0
				img.Pix[i+1] = 0
				img.Pix[i+2] = 0
				img.Pix[i+3] = 0
			}
		}
	}
}

// ImageToRGBA converts any image to RGBA, optionally applying the
// magenta transparency key.
func ImageToRGBA(img image.Image, applyMagentaKey bool) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			r8, g8, b8, a8 := uint8(r16>>8), uint8(g16>>8), uint8(b16>>8), uint8(a16>>8)
			if applyMagentaKey && IsMagentaKey(r8, g8, b8) {
				r8, g8, b8, a8 = 0, 0, 0, 0
			}
			rgba.SetRGBA(x, y, color.RGBA{R: r8, G: g8, B: b8, A: a8})
		}
	}
	return rgba
}

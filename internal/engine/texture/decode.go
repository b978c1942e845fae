package texture

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg" // registered for image.Decode
	_ "image/png"  // registered for image.Decode

	_ "golang.org/x/image/bmp" // ground textures are usually BMP
)

// Decode decodes texture bytes in any of the formats the game data
// ships: BMP, PNG, JPEG via the image registry, then TGA as a
// fallback since TGA carries no magic number to sniff.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	img, tgaErr := DecodeTGA(data)
	if tgaErr == nil {
		return img, nil
	}
	return nil, fmt.Errorf("decoding texture: %w", err)
}

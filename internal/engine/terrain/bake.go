package terrain

import (
	"image"
	stdmath "math"
	"path"
	"strings"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/internal/engine/texture"
	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/formats"
)

// textureExtensions are tried in order when probing path variants.
var textureExtensions = [4]string{".bmp", ".tga", ".png", ".jpg"}

// texturePrefix is the conventional directory prefix for ground
// textures inside the game data tree.
const texturePrefix = "texture/"

// BakeBatchTexture produces the pre-multiplied texture for one batch
// key at the given working resolution. Per pixel:
//
//	out.rgb = clamp(base.rgb * tint.rgb * shadow + lightmapRGB, 0, 1)
//	out.a   = base.a * tint.a
//
// Shadow is multiplicative and lightmap color additive; reordering the
// two changes the visual result materially. The bake reads only the
// batch's own inputs, so distinct batches can bake concurrently.
//
// The second return value is false when no texture could be resolved
// or decoded; the caller should render that batch with a placeholder.
func BakeBatchTexture(gnd *formats.GND, key BatchKey, resolve TextureResolver, size int) (*image.RGBA, bool) {
	if size <= 0 {
		size = 128
	}
	if key.TextureID < 0 || int(key.TextureID) >= len(gnd.Textures) || resolve == nil {
		return nil, false
	}

	data, ok := lookupTexture(resolve, gnd.Textures[key.TextureID].Path)
	if !ok {
		return nil, false
	}
	img, err := texture.Decode(data)
	if err != nil {
		return nil, false
	}
	base := texture.ImageToRGBA(img, true)
	baseW := base.Rect.Dx()
	baseH := base.Rect.Dy()
	if baseW == 0 || baseH == 0 {
		return nil, false
	}

	// Tint is stored B, G, R, A.
	tintB := float32(key.Color[0]) / 255
	tintG := float32(key.Color[1]) / 255
	tintR := float32(key.Color[2]) / 255
	tintA := float32(key.Color[3]) / 255

	shadow := gnd.Lightmaps.Shadow(int(key.LightmapID))
	lmRGB := gnd.Lightmaps.Color(int(key.LightmapID))
	var lmW, lmH int
	if shadow != nil {
		lmW = int(gnd.Lightmaps.CellWidth)
		lmH = int(gnd.Lightmaps.CellHeight)
	}

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			// Nearest sampling; the working resolution already bounds
			// the fidelity.
			bi := base.PixOffset(x*baseW/size, y*baseH/size)
			r := float32(base.Pix[bi]) / 255
			g := float32(base.Pix[bi+1]) / 255
			b := float32(base.Pix[bi+2]) / 255
			a := float32(base.Pix[bi+3]) / 255

			var sh float32 = 1
			var lr, lg, lb float32
			if shadow != nil {
				li := (y*lmH/size)*lmW + x*lmW/size
				sh = float32(shadow[li]) / 255
				lr = float32(lmRGB[li*3]) / 255
				lg = float32(lmRGB[li*3+1]) / 255
				lb = float32(lmRGB[li*3+2]) / 255
			}

			oi := out.PixOffset(x, y)
			out.Pix[oi] = to8(clamp01(r*tintR*sh + lr))
			out.Pix[oi+1] = to8(clamp01(g*tintG*sh + lg))
			out.Pix[oi+2] = to8(clamp01(b*tintB*sh + lb))
			out.Pix[oi+3] = to8(clamp01(a * tintA))
		}
	}
	return out, true
}

// lookupTexture probes the fixed list of path variants and returns the
// first hit: the raw name, the texture directory prefix, and the four
// common image extensions on both.
func lookupTexture(resolve TextureResolver, name string) ([]byte, bool) {
	for _, candidate := range candidatePaths(name) {
		if data, ok := resolve(candidate); ok {
			return data, true
		}
	}
	return nil, false
}

// candidatePaths expands a logical texture name into lookup variants.
func candidatePaths(name string) []string {
	name = strings.ReplaceAll(name, "\\", "/")
	bases := [2]string{name, texturePrefix + name}

	out := make([]string, 0, 10)
	for _, base := range bases {
		out = append(out, base)
		stem := strings.TrimSuffix(base, path.Ext(base))
		for _, ext := range textureExtensions {
			candidate := stem + ext
			if candidate != base {
				out = append(out, candidate)
			}
		}
	}
	return out
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float32) uint8 {
	return uint8(v*255 + 0.5)
}

func sqrt32(v float32) float32 {
	return float32(stdmath.Sqrt(float64(v)))
}

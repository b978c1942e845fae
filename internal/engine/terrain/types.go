// Package terrain reconstructs renderable geometry from decoded map
// files: batched top and wall quads from the GND cell grid, with baked
// per-batch textures combining base texture, lightmap and vertex tint.
package terrain

import "image"

// Vertex is one terrain mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// BatchKey groups faces that share one material: the same base
// texture, the same lightmap cell and the same vertex tint. The tint
// stays in file byte order (B, G, R, A).
type BatchKey struct {
	TextureID  int16
	LightmapID uint16
	Color      [4]uint8
}

// Batch is one draw batch: geometry plus its baked texture. When
// Fallback is set no texture could be resolved and the renderer should
// substitute a conspicuous placeholder color.
type Batch struct {
	Key      BatchKey
	Vertices []Vertex
	Indices  []uint32
	Texture  *image.RGBA
	Fallback bool
}

// Bounds is the axis-aligned bounding box of the terrain.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh is the complete reconstructed terrain: one entry per unique
// batch key, in first-seen order so rebuilds are deterministic.
type Mesh struct {
	Batches []Batch
	Bounds  Bounds
}

// VertexCount returns the total vertex count across batches.
func (m *Mesh) VertexCount() int {
	n := 0
	for i := range m.Batches {
		n += len(m.Batches[i].Vertices)
	}
	return n
}

// TriangleCount returns the total triangle count across batches.
func (m *Mesh) TriangleCount() int {
	n := 0
	for i := range m.Batches {
		n += len(m.Batches[i].Indices) / 3
	}
	return n
}

// TextureResolver maps a logical texture path to raw image bytes. It
// is supplied by the host application (folder tree, archive, cache)
// and may block; run the whole build off the caller's thread when
// non-blocking behavior is needed.
type TextureResolver func(path string) ([]byte, bool)

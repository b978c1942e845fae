package terrain

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/formats"
)

// BuildOptions configures mesh construction and texture baking.
type BuildOptions struct {
	// Resolve supplies texture bytes for a logical path. When nil every
	// batch is marked Fallback.
	Resolve TextureResolver

	// BakeSize is the working resolution of baked textures. The fixed
	// size trades fidelity for bounded bake cost; it need not match the
	// source texture. Defaults to 128.
	BakeSize int

	// Workers caps the bake pool. Defaults to the CPU count.
	Workers int

	// SkipBake builds geometry only, leaving every batch texture nil.
	SkipBake bool
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.BakeSize <= 0 {
		o.BakeSize = 128
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

// builder accumulates per-batch face lists during the cell sweep.
type builder struct {
	gnd     *formats.GND
	batches map[BatchKey]int // key -> index into order
	order   []*Batch
	bounds  Bounds
}

// BuildMesh reconstructs the terrain for a decoded ground file: one
// top quad per cell with a valid top surface, plus vertical wall quads
// closing the height discontinuities between adjacent cells. Faces are
// grouped by (texture, lightmap, tint) and each group's texture is
// baked in parallel.
//
// Cancellation is cooperative and checked between pipeline phases and
// between bakes, never per cell; per-cell checks would dominate cost
// on large maps.
func BuildMesh(ctx context.Context, gnd *formats.GND, opts BuildOptions) (*Mesh, error) {
	opts = opts.withDefaults()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &builder{
		gnd:     gnd,
		batches: make(map[BatchKey]int),
		bounds: Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		},
	}

	width := int(gnd.Width)
	height := int(gnd.Height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cell := gnd.Cell(x, y)
			b.emitTop(cell, x, y)

			// Wall emission is skipped silently at map edges: a missing
			// neighbor is a normal condition, not a gap to report.
			if east := gnd.Cell(x+1, y); east != nil {
				b.emitEastWall(cell, east, x, y)
			}
			if south := gnd.Cell(x, y+1); south != nil {
				b.emitSouthWall(cell, south, x, y)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	smoothNormals(b.order)

	mesh := &Mesh{Bounds: b.bounds}
	for _, batch := range b.order {
		mesh.Batches = append(mesh.Batches, *batch)
	}

	if !opts.SkipBake {
		if err := bakeBatches(ctx, gnd, mesh.Batches, opts); err != nil {
			return nil, err
		}
	}
	return mesh, nil
}

// batch returns the accumulating batch for a key, creating it on first
// use. Creation order is preserved so output is deterministic.
func (b *builder) batch(key BatchKey) *Batch {
	if idx, ok := b.batches[key]; ok {
		return b.order[idx]
	}
	batch := &Batch{Key: key}
	b.batches[key] = len(b.order)
	b.order = append(b.order, batch)
	return batch
}

func (b *builder) keyFor(s *formats.GNDSurface) BatchKey {
	return BatchKey{TextureID: s.TextureID, LightmapID: s.LightmapID, Color: s.Color}
}

// emitTop emits the horizontal quad for a cell's top surface.
func (b *builder) emitTop(cell *formats.GNDCell, x, y int) {
	surface := b.gnd.Surface(cell.TopSurface)
	if surface == nil {
		return
	}

	mapH := int(b.gnd.Height)
	scale := b.gnd.Scale

	// Corner order matches the cell record: BL, BR, TL, TR. Bottom
	// corners sit on row y+1, top corners on row y.
	corners := [4][3]float32{
		GridToWorld(x, cell.Heights[0], y+1, mapH, scale),
		GridToWorld(x+1, cell.Heights[1], y+1, mapH, scale),
		GridToWorld(x, cell.Heights[2], y, mapH, scale),
		GridToWorld(x+1, cell.Heights[3], y, mapH, scale),
	}

	normal := faceNormal(corners[0], corners[1], corners[2])
	batch := b.batch(b.keyFor(surface))
	base := uint32(len(batch.Vertices))
	for i := 0; i < 4; i++ {
		b.grow(corners[i])
		batch.Vertices = append(batch.Vertices, Vertex{
			Position: corners[i],
			Normal:   normal,
			TexCoord: [2]float32{surface.U[i], surface.V[i]},
		})
	}
	batch.Indices = append(batch.Indices,
		base, base+1, base+2,
		base+2, base+1, base+3,
	)
}

// emitEastWall emits the vertical quad between a cell's east edge and
// its x+1 neighbor's west edge. The four vertices take the two cells'
// corner heights exactly; nothing is averaged.
func (b *builder) emitEastWall(cell, east *formats.GNDCell, x, y int) {
	surface := b.gnd.Surface(cell.EastSurface)
	if surface == nil {
		return
	}

	mapH := int(b.gnd.Height)
	scale := b.gnd.Scale

	// Top edge from the current cell's east corners (TR, BR), bottom
	// edge from the neighbor's west corners (TL, BL).
	corners := [4][3]float32{
		GridToWorld(x+1, cell.Heights[3], y, mapH, scale),
		GridToWorld(x+1, cell.Heights[1], y+1, mapH, scale),
		GridToWorld(x+1, east.Heights[2], y, mapH, scale),
		GridToWorld(x+1, east.Heights[0], y+1, mapH, scale),
	}
	b.emitWall(surface, corners, [3]float32{1, 0, 0})
}

// emitSouthWall is the symmetric case against the cell at y+1.
func (b *builder) emitSouthWall(cell, south *formats.GNDCell, x, y int) {
	surface := b.gnd.Surface(cell.SouthSurface)
	if surface == nil {
		return
	}

	mapH := int(b.gnd.Height)
	scale := b.gnd.Scale

	// Top edge from the current cell's south corners (BL, BR), bottom
	// edge from the neighbor's north corners (TL, TR).
	corners := [4][3]float32{
		GridToWorld(x, cell.Heights[0], y+1, mapH, scale),
		GridToWorld(x+1, cell.Heights[1], y+1, mapH, scale),
		GridToWorld(x, south.Heights[2], y+1, mapH, scale),
		GridToWorld(x+1, south.Heights[3], y+1, mapH, scale),
	}
	b.emitWall(surface, corners, [3]float32{0, 0, -1})
}

// emitWall emits one vertical quad. corners are ordered top0, top1,
// bottom0, bottom1; UV corners map top edge to TL/TR and bottom edge
// to BL/BR of the referenced surface.
func (b *builder) emitWall(surface *formats.GNDSurface, corners [4][3]float32, normal [3]float32) {
	uvCorner := [4]int{2, 3, 0, 1}
	batch := b.batch(b.keyFor(surface))
	base := uint32(len(batch.Vertices))
	for i := 0; i < 4; i++ {
		b.grow(corners[i])
		uv := uvCorner[i]
		batch.Vertices = append(batch.Vertices, Vertex{
			Position: corners[i],
			Normal:   normal,
			TexCoord: [2]float32{surface.U[uv], surface.V[uv]},
		})
	}
	batch.Indices = append(batch.Indices,
		base, base+2, base+1,
		base+1, base+2, base+3,
	)
}

func (b *builder) grow(p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.bounds.Min[i] {
			b.bounds.Min[i] = p[i]
		}
		if p[i] > b.bounds.Max[i] {
			b.bounds.Max[i] = p[i]
		}
	}
}

// bakeBatches runs the lightmap baker over every batch, fanned out
// across a bounded worker pool with a join barrier.
func bakeBatches(ctx context.Context, gnd *formats.GND, batches []Batch, opts BuildOptions) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := &batches[i]
		g.Go(func() error {
			tex, ok := BakeBatchTexture(gnd, batch.Key, opts.Resolve, opts.BakeSize)
			batch.Texture = tex
			batch.Fallback = !ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("baking batch textures: %w", err)
	}
	return ctx.Err()
}

// faceNormal returns the unit normal of the triangle (a, b, c).
func faceNormal(a, b, c [3]float32) [3]float32 {
	e1 := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	e2 := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	n := [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	return normalize(n)
}

func normalize(v [3]float32) [3]float32 {
	l := sqrt32(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

// smoothNormals averages normals at shared vertex positions across all
// batches, removing hard edges where tiles meet.
func smoothNormals(batches []*Batch) {
	const epsilon = 0.001

	type ref struct {
		batch int
		index int
	}
	posMap := make(map[[3]int32][]ref)
	for bi, batch := range batches {
		for vi := range batch.Vertices {
			p := batch.Vertices[vi].Position
			key := [3]int32{
				int32(p[0] / epsilon),
				int32(p[1] / epsilon),
				int32(p[2] / epsilon),
			}
			posMap[key] = append(posMap[key], ref{bi, vi})
		}
	}

	for _, refs := range posMap {
		if len(refs) < 2 {
			continue
		}
		var sum [3]float32
		for _, r := range refs {
			n := batches[r.batch].Vertices[r.index].Normal
			sum[0] += n[0]
			sum[1] += n[1]
			sum[2] += n[2]
		}
		avg := normalize(sum)
		for _, r := range refs {
			batches[r.batch].Vertices[r.index].Normal = avg
		}
	}
}

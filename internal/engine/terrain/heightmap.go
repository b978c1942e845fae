package terrain

import (
	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/formats"
)

// gatCellScale is the walkability grid resolution in world units: GAT
// cells are half a GND tile per axis.
const gatCellScale = 5.0

// SampleHeight returns the bilinearly interpolated terrain height at a
// world position, using the walkability grid for sub-tile precision.
// Stored heights are positive-down, so the result is negated into
// world space.
func SampleHeight(gat *formats.GAT, worldX, worldZ float32) float32 {
	if gat == nil {
		return 0
	}

	fx := worldX / gatCellScale
	fz := worldZ / gatCellScale
	cx := clampInt(int(fx), 0, int(gat.Width)-1)
	cz := clampInt(int(fz), 0, int(gat.Height)-1)

	cell := gat.Cell(cx, cz)
	if cell == nil {
		return 0
	}

	tx := clamp01(fx - float32(cx))
	tz := clamp01(fz - float32(cz))

	// Corner order: BL, BR, TL, TR.
	south := cell.Heights[0]*(1-tx) + cell.Heights[1]*tx
	north := cell.Heights[2]*(1-tx) + cell.Heights[3]*tx
	return -(south*(1-tz) + north*tz)
}

// WalkableAt reports whether the walkability grid allows standing at a
// world position. Positions outside the grid are not walkable.
func WalkableAt(gat *formats.GAT, worldX, worldZ float32) bool {
	if gat == nil {
		return false
	}
	cx := int(worldX / gatCellScale)
	cz := int(worldZ / gatCellScale)
	return gat.IsWalkable(cx, cz)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

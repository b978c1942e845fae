package terrain

import (
	stdmath "math"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/math"
)

// GridToWorld maps a grid column x, a stored height and a grid row y to
// a world position. Stored heights are positive-down and are negated;
// the row index is flipped so increasing world Z moves toward the
// map's northern edge.
func GridToWorld(x int, height float32, y int, mapHeight int, tileScale float32) [3]float32 {
	return [3]float32{
		float32(x) * tileScale,
		-height,
		float32(mapHeight-y) * tileScale,
	}
}

// PlacementToWorld converts an object position from the world file
// (stored relative to the map center) to absolute world coordinates.
func PlacementToWorld(local [3]float32, mapWidth, mapHeight int, tileScale float32) [3]float32 {
	return [3]float32{
		local[0] + float32(mapWidth)*tileScale/2,
		-local[1],
		local[2] + float32(mapHeight)*tileScale/2,
	}
}

// EulerDegreesToRotation converts placement rotation angles in degrees
// to a quaternion. The composition applies roll, then pitch, then yaw;
// this order matches the reference renderer and must not be changed
// without visual evidence.
func EulerDegreesToRotation(pitchDeg, yawDeg, rollDeg float32) math.Quat {
	qPitch := math.QuatFromAxisAngle(math.Vec3{X: 1}, radians(pitchDeg))
	qYaw := math.QuatFromAxisAngle(math.Vec3{Y: 1}, radians(yawDeg))
	qRoll := math.QuatFromAxisAngle(math.Vec3{Z: 1}, radians(rollDeg))
	return qYaw.Mul(qPitch).Mul(qRoll)
}

func radians(deg float32) float32 {
	return deg * (stdmath.Pi / 180)
}

package math

import (
	stdmath "math"
	"testing"
)

const eps = 1e-5

func vecNear(a, b Vec3) bool {
	return stdmath.Abs(float64(a.X-b.X)) < eps &&
		stdmath.Abs(float64(a.Y-b.Y)) < eps &&
		stdmath.Abs(float64(a.Z-b.Z)) < eps
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	if got := x.Cross(y); !vecNear(got, Vec3{Z: 1}) {
		t.Errorf("x cross y = %v, want +z", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	n := v.Normalize()
	if stdmath.Abs(float64(n.Length()-1)) > eps {
		t.Errorf("Normalize().Length() = %v, want 1", n.Length())
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Normalize() = %v, want zero", got)
	}
}

func TestQuatRotateAboutY(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, stdmath.Pi/2)
	got := q.Rotate(Vec3{X: 1})
	if !vecNear(got, Vec3{Z: -1}) {
		t.Errorf("Rotate() = %v, want (0,0,-1)", got)
	}
}

func TestQuatMulOrder(t *testing.T) {
	// q1*q2 applies q2 first.
	rotZ := QuatFromAxisAngle(Vec3{Z: 1}, stdmath.Pi/2)
	rotX := QuatFromAxisAngle(Vec3{X: 1}, stdmath.Pi/2)

	// Z then X: (1,0,0) -> (0,1,0) -> (0,0,1).
	got := rotX.Mul(rotZ).Rotate(Vec3{X: 1})
	if !vecNear(got, Vec3{Z: 1}) {
		t.Errorf("rotX*rotZ applied to x = %v, want (0,0,1)", got)
	}
}

func TestQuatNormalizeDegenerate(t *testing.T) {
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero Normalize() = %v, want identity", got)
	}
}

func TestQuatIdentityRotate(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}
	if got := QuatIdentity().Rotate(v); !vecNear(got, v) {
		t.Errorf("identity Rotate(%v) = %v", v, got)
	}
}

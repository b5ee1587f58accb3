package geom

import (
	"math"
	"testing"

	"github.com/tlawson/lumen/pkg/math3d"
)

// Cyclic rotations of the same vertex list describe the same triangle and
// must produce the same hit point and normal.
func TestTriangleWindingRotations(t *testing.T) {
	v := [3]math3d.Vec3{
		math3d.V3(-1, 3, 2.2),
		math3d.V3(-3, 0.2, 2.1),
		math3d.V3(0, 1, 2),
	}

	refl := DefaultReflectance()
	tri1 := NewTriangle([3]math3d.Vec3{v[0], v[1], v[2]}, refl)
	tri2 := NewTriangle([3]math3d.Vec3{v[1], v[2], v[0]}, refl)
	tri3 := NewTriangle([3]math3d.Vec3{v[2], v[0], v[1]}, refl)

	orig := math3d.V3(-1, 2, 5.3)
	dir := math3d.V3(0.1, -0.2, -3).Normalize()

	hit1, ok1 := tri1.Intersect(orig, dir)
	hit2, ok2 := tri2.Intersect(orig, dir)
	hit3, ok3 := tri3.Intersect(orig, dir)

	if !ok1 || !ok2 || !ok3 {
		t.Fatalf("rotations hit = %v %v %v, want all true", ok1, ok2, ok3)
	}

	if d := hit1.Point.Sub(hit2.Point).LenSq(); d > 1e-3 {
		t.Errorf("rotation 2 hit point differs by %v", d)
	}
	if d := hit1.Normal.Sub(hit2.Normal).LenSq(); d > 1e-3 {
		t.Errorf("rotation 2 normal differs by %v", d)
	}
	if d := hit1.Point.Sub(hit3.Point).LenSq(); d > 1e-3 {
		t.Errorf("rotation 3 hit point differs by %v", d)
	}
	if d := hit1.Normal.Sub(hit3.Normal).LenSq(); d > 1e-3 {
		t.Errorf("rotation 3 normal differs by %v", d)
	}

	if d := math.Abs(tri1.Normal().LenSq() - 1); d > 1e-3 {
		t.Errorf("|normal|² = %v, want 1", tri1.Normal().LenSq())
	}
	// The normal faces the incoming ray.
	if tri1.Normal().Dot(dir) >= 0 {
		t.Error("normal does not face the ray")
	}
}

// Reversing the winding order flips the front face: the same ray no longer
// hits.
func TestTriangleBackface(t *testing.T) {
	// Counter-clockwise as seen from +z (the camera side).
	front := NewTriangle([3]math3d.Vec3{
		math3d.V3(-1, -1, -5),
		math3d.V3(1, -1, -5),
		math3d.V3(0, 1, -5),
	}, DefaultReflectance())

	back := NewTriangle([3]math3d.Vec3{
		math3d.V3(0, 1, -5),
		math3d.V3(1, -1, -5),
		math3d.V3(-1, -1, -5),
	}, DefaultReflectance())

	orig := math3d.Zero3()
	dir := math3d.V3(0, 0, -1)

	if _, ok := front.Intersect(orig, dir); !ok {
		t.Error("front-facing triangle missed")
	}
	if _, ok := back.Intersect(orig, dir); ok {
		t.Error("back-facing triangle hit")
	}
}

func TestTriangleParallelRay(t *testing.T) {
	tri := NewTriangle([3]math3d.Vec3{
		math3d.V3(-1, -1, -5),
		math3d.V3(1, -1, -5),
		math3d.V3(0, 1, -5),
	}, DefaultReflectance())

	// The ray runs inside the triangle's plane.
	if _, ok := tri.Intersect(math3d.V3(-10, 0, -5), math3d.V3(1, 0, 0)); ok {
		t.Error("parallel ray reported a hit")
	}
}

func TestTriangleBehindOrigin(t *testing.T) {
	tri := NewTriangle([3]math3d.Vec3{
		math3d.V3(-1, -1, 5),
		math3d.V3(1, -1, 5),
		math3d.V3(0, 1, 5),
	}, DefaultReflectance())

	// The plane lies behind the ray origin along -z.
	if _, ok := tri.Intersect(math3d.Zero3(), math3d.V3(0, 0, -1)); ok {
		t.Error("hit reported for a plane behind the origin")
	}
}

// A tilted triangle must still classify inside/outside correctly; a test
// that only looked at the cross product's z component would misfire here.
func TestTriangleTiltedPlane(t *testing.T) {
	tri := NewTriangle([3]math3d.Vec3{
		math3d.V3(0, -1, -4),
		math3d.V3(2, -1, -6),
		math3d.V3(1, 1, -5),
	}, DefaultReflectance())

	orig := math3d.V3(1, 0, 0)
	dir := math3d.V3(0, -0.1, -1).Normalize()

	hit, ok := tri.Intersect(orig, dir)
	if !ok {
		t.Fatal("centered ray missed the tilted triangle")
	}

	// The hit lies on the triangle's plane.
	if d := math.Abs(hit.Point.Sub(tri.centroid).Dot(tri.Normal())); d > 1e-9 {
		t.Errorf("hit is %v off the plane", d)
	}

	// A ray aimed well wide misses.
	if _, ok := tri.Intersect(orig, math3d.V3(3, 0, -1).Normalize()); ok {
		t.Error("wide ray hit the tilted triangle")
	}
}

func TestTriangleOffsetAndScale(t *testing.T) {
	tri := NewTriangle([3]math3d.Vec3{
		math3d.V3(-1, -1, -5),
		math3d.V3(1, -1, -5),
		math3d.V3(0, 1, -5),
	}, DefaultReflectance())
	normalBefore := tri.Normal()

	tri.Offset(math3d.V3(0, 0, -5))
	hit, ok := tri.Intersect(math3d.Zero3(), math3d.V3(0, 0, -1))
	if !ok {
		t.Fatal("offset triangle missed")
	}
	if math.Abs(hit.Point.Z+10) > 1e-9 {
		t.Errorf("hit.Point.Z = %v, want -10", hit.Point.Z)
	}
	if normalBefore != tri.Normal() {
		t.Error("translation changed the normal")
	}

	tri.Scale(2)
	if _, ok := tri.Intersect(math3d.V3(0.8, 0, 0), math3d.V3(0, 0, -1)); !ok {
		t.Error("scaled triangle missed a ray inside the doubled extent")
	}
}

func TestTriangleRejectsColinearVertices(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for colinear vertices")
		}
	}()
	NewTriangle([3]math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(1, 1, 1),
		math3d.V3(2, 2, 2),
	}, DefaultReflectance())
}

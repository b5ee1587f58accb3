package render

import (
	"math"
	"testing"

	"github.com/tlawson/lumen/pkg/geom"
	"github.com/tlawson/lumen/pkg/math3d"
)

func flatIntersection(point, normal math3d.Vec3) geom.Intersection {
	return geom.Intersection{
		Point:       point,
		Normal:      normal,
		Reflectance: geom.DefaultReflectance(),
	}
}

// Reflection only fires when cos²θ₂ goes non-positive, which for glass
// means an incoming ray past the critical angle from the normal.
func TestReflectRayGrazingIncidence(t *testing.T) {
	is := flatIntersection(math3d.Zero3(), math3d.V3(0, 1, 0))

	// Entering at ~64° from the normal, past the ~42° critical angle.
	incident := math3d.V3(0.9, -0.436, 0).Normalize()

	orig, dir, ok := ReflectRay(incident, is, 1.5)
	if !ok {
		t.Fatal("expected a reflection past the critical angle")
	}

	// The reflected ray has unit length and obeys the reflection law.
	if d := math.Abs(dir.LenSq() - 1); d > 1e-9 {
		t.Errorf("|dir|² = %v, want 1", dir.LenSq())
	}
	if got, want := dir.Dot(is.Normal), -incident.Dot(is.Normal); math.Abs(got-want) > 1e-9 {
		t.Errorf("dir·n = %v, want %v", got, want)
	}

	// The ray bounces back up, and its origin is pushed off the surface on
	// the same side.
	if dir.Y <= 0 {
		t.Errorf("reflected ray does not leave the surface: %v", dir)
	}
	if orig.Y <= 0 {
		t.Errorf("reflection origin not offset off the surface: %v", orig)
	}
}

func TestReflectRayNoneOnExit(t *testing.T) {
	is := flatIntersection(math3d.Zero3(), math3d.V3(0, 1, 0))

	// Exiting rays use the inverse ratio, for which cos²θ₂ stays positive.
	incident := math3d.V3(0.9, 0.1, 0).Normalize()

	if _, _, ok := ReflectRay(incident, is, 1.5); ok {
		t.Error("reflection produced for an exiting ray")
	}
}

func TestReflectRayNoneWhenRefractionSucceeds(t *testing.T) {
	is := flatIntersection(math3d.Zero3(), math3d.V3(0, 1, 0))

	// Entering near-perpendicular: refraction succeeds, so no reflection.
	incident := math3d.V3(0.1, -1, 0).Normalize()

	if _, _, ok := ReflectRay(incident, is, 1.5); ok {
		t.Error("reflection produced in the refraction-succeeds regime")
	}
}

func TestRefractRayBends(t *testing.T) {
	is := flatIntersection(math3d.Zero3(), math3d.V3(0, 1, 0))
	incident := math3d.V3(1, -1, 0).Normalize()

	orig, dir, ok := RefractRay(incident, is, 1.5)
	if !ok {
		t.Fatal("refraction failed at 45 degrees into glass")
	}

	if d := math.Abs(dir.LenSq() - 1); d > 1e-9 {
		t.Errorf("|dir|² = %v, want 1", dir.LenSq())
	}
	// The ray continues downward, bent toward the normal.
	if dir.Y >= 0 {
		t.Errorf("refracted ray does not continue into the surface: %v", dir)
	}
	sinIn := incident.X
	if dir.X >= sinIn {
		t.Errorf("refracted ray not bent toward the normal: sin %v -> %v", sinIn, dir.X)
	}
	// Snell's law: sinθ₁ = η sinθ₂.
	if got, want := dir.X*1.5, sinIn; math.Abs(got-want) > 1e-9 {
		t.Errorf("η·sinθ₂ = %v, want %v", got, want)
	}
	// The origin sits below the surface, on the transmitted side.
	if orig.Y >= 0 {
		t.Errorf("refraction origin on the wrong side: %v", orig)
	}
}

func TestRefractRayTotalInternalReflection(t *testing.T) {
	is := flatIntersection(math3d.Zero3(), math3d.V3(0, 1, 0))

	// Exiting glass past the critical angle (~41.8°): sinθ·1.5 > 1.
	incident := math3d.V3(0.9, 0.436, 0).Normalize()

	if _, _, ok := RefractRay(incident, is, 1.5); ok {
		t.Error("refraction produced past the critical angle")
	}
}

// Refraction reversibility: running the refracted ray backward through the
// inverse index ratio recovers the original direction.
func TestRefractRayReversible(t *testing.T) {
	tests := []struct {
		name     string
		incident math3d.Vec3
		eta      float64
	}{
		{"45 into glass", math3d.V3(1, -1, 0).Normalize(), 1.5},
		{"steep into glass", math3d.V3(0.2, -1, 0.1).Normalize(), 1.5},
		{"into water", math3d.V3(0.5, -0.9, 0.3).Normalize(), 1.33},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			is := flatIntersection(math3d.Zero3(), math3d.V3(0, 1, 0))

			_, refracted, ok := RefractRay(tc.incident, is, tc.eta)
			if !ok {
				t.Fatal("forward refraction failed")
			}

			// The reversed ray sees the interface from the other side: its
			// normal faces the reversed ray's origin and the index ratio
			// inverts.
			reverse := flatIntersection(math3d.Zero3(), math3d.V3(0, -1, 0))

			_, back, ok := RefractRay(refracted.Negate(), reverse, 1/tc.eta)
			if !ok {
				t.Fatal("reverse refraction failed")
			}

			if d := back.Add(tc.incident).LenSq(); d > 1e-3 {
				t.Errorf("reverse direction differs from -incident by %v", d)
			}
		})
	}
}

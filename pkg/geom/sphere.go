package geom

import (
	"math"

	"github.com/tlawson/lumen/pkg/math3d"
)

// Sphere is the simplest primitive: a center, a squared radius, and one
// reflectance over the whole surface. Immutable after construction.
type Sphere struct {
	center      math3d.Vec3
	radius      float64
	radiusSq    float64
	reflectance Reflectance
}

// NewSphere creates a sphere. The radius must be positive.
func NewSphere(center math3d.Vec3, radius float64, reflectance Reflectance) *Sphere {
	if radius <= 0 {
		panic("geom: sphere radius must be positive")
	}
	return &Sphere{
		center:      center,
		radius:      radius,
		radiusSq:    radius * radius,
		reflectance: reflectance,
	}
}

// Center returns the sphere center.
func (s *Sphere) Center() math3d.Vec3 {
	return s.center
}

// Intersect implements Shape with the classic quadratic solve.
func (s *Sphere) Intersect(orig, dir math3d.Vec3) (Intersection, bool) {
	line := s.center.Sub(orig)

	tca := line.Dot(dir)
	d2 := line.Dot(line) - tca*tca
	if d2 > s.radiusSq {
		return Intersection{}, false
	}

	thc := math.Sqrt(s.radiusSq - d2)

	t := tca - thc
	if t <= 0 {
		t = tca + thc
	}
	if t <= 0 {
		return Intersection{}, false
	}

	point := orig.Add(dir.Scale(t))

	return Intersection{
		Point:       point,
		Normal:      point.Sub(s.center).Normalize(),
		Reflectance: s.reflectance,
	}, true
}

// Bounds implements Shape.
func (s *Sphere) Bounds() BoundingBox {
	r := math3d.V3(s.radius, s.radius, s.radius)
	return BoundingBox{
		Min: s.center.Sub(r),
		Max: s.center.Add(r),
	}
}

// Package geom provides the intersectable shape primitives for the lumen ray
// tracer: spheres, triangles, convex polygons, and triangle-mesh aggregates.
package geom

import (
	"github.com/tlawson/lumen/pkg/math3d"
)

// Intersection describes a ray/surface hit. The normal is unit length and
// points outward from the surface at the hit point.
type Intersection struct {
	Point       math3d.Vec3
	Normal      math3d.Vec3
	Reflectance Reflectance
}

// Shape is anything a ray can be tested against.
//
// Intersect returns the nearest hit along the ray with parameter t > 0, or
// ok=false when the ray misses. The ray direction must be unit length.
// Implementations are pure with respect to the shape's state and safe to call
// concurrently from multiple goroutines.
type Shape interface {
	Intersect(orig, dir math3d.Vec3) (Intersection, bool)
	Bounds() BoundingBox
}

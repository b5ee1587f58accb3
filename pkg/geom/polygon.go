package geom

import (
	"github.com/tlawson/lumen/pkg/math3d"
)

// ConvexPolygon generalizes Triangle to n >= 3 coplanar vertices, given
// counter-clockwise as seen from the front face.
type ConvexPolygon struct {
	vertices    []math3d.Vec3
	normal      math3d.Vec3
	centroid    math3d.Vec3
	reflectance Reflectance
}

// NewConvexPolygon creates a polygon from at least three vertices. The plane
// normal is the cross product of the first two edges.
func NewConvexPolygon(vertices []math3d.Vec3, reflectance Reflectance) *ConvexPolygon {
	if len(vertices) < 3 {
		panic("geom: polygon needs at least three vertices")
	}

	centroid := math3d.Zero3()
	for _, v := range vertices {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Scale(1 / float64(len(vertices)))

	edge1 := vertices[1].Sub(vertices[0])
	edge2 := vertices[2].Sub(vertices[1])

	return &ConvexPolygon{
		vertices:    append([]math3d.Vec3(nil), vertices...),
		normal:      edge1.Cross(edge2).Normalize(),
		centroid:    centroid,
		reflectance: reflectance,
	}
}

// Intersect implements Shape with the same single-sided plane-then-edges
// test as Triangle, cycled over all vertex pairs.
func (p *ConvexPolygon) Intersect(orig, dir math3d.Vec3) (Intersection, bool) {
	point, ok := intersectConvex(orig, dir, p.vertices, p.normal, p.centroid)
	if !ok {
		return Intersection{}, false
	}

	return Intersection{
		Point:       point,
		Normal:      p.normal,
		Reflectance: p.reflectance,
	}, true
}

// Bounds implements Shape.
func (p *ConvexPolygon) Bounds() BoundingBox {
	b := NewBoundingBox()
	for _, v := range p.vertices {
		b = b.Extend(v)
	}
	return b
}

package geom

import (
	"math"

	"github.com/tlawson/lumen/pkg/math3d"
)

// Triangle is a single-sided triangle. Vertices are given counter-clockwise
// as seen from the front face; the winding defines the plane normal and
// therefore which side a ray can hit. Triangles may be moved or scaled while
// a mesh is being loaded, and are immutable during rendering.
type Triangle struct {
	vertices    [3]math3d.Vec3
	normal      math3d.Vec3
	centroid    math3d.Vec3
	reflectance Reflectance
}

// Rays closer to parallel with the triangle plane than this are treated as
// misses.
const parallelEpsilon = 1e-6

// NewTriangle creates a triangle from three non-colinear vertices.
func NewTriangle(vertices [3]math3d.Vec3, reflectance Reflectance) *Triangle {
	t := &Triangle{vertices: vertices, reflectance: reflectance}
	t.recompute()
	if t.normal.LenSq() == 0 {
		panic("geom: triangle vertices are colinear")
	}
	return t
}

func (t *Triangle) recompute() {
	edge1 := t.vertices[1].Sub(t.vertices[0])
	edge2 := t.vertices[2].Sub(t.vertices[1])
	t.normal = edge1.Cross(edge2).Normalize()
	t.centroid = t.vertices[0].Add(t.vertices[1]).Add(t.vertices[2]).Scale(1.0 / 3.0)
}

// Normal returns the precomputed unit plane normal.
func (t *Triangle) Normal() math3d.Vec3 {
	return t.normal
}

// Vertices returns the triangle vertices.
func (t *Triangle) Vertices() [3]math3d.Vec3 {
	return t.vertices
}

// Offset translates the triangle.
func (t *Triangle) Offset(off math3d.Vec3) {
	for i := range t.vertices {
		t.vertices[i] = t.vertices[i].Add(off)
	}
	t.centroid = t.centroid.Add(off)
}

// Scale scales the triangle's vertices about the origin.
func (t *Triangle) Scale(s float64) {
	for i := range t.vertices {
		t.vertices[i] = t.vertices[i].Scale(s)
	}
	t.recompute()
}

// inside reports whether q lies on the interior side of the directed edge
// p1 -> p2. The signed component of the in-plane cross product along the
// plane normal is positive for every edge when q is inside a
// counter-clockwise polygon.
func inside(q, p1, p2, normal math3d.Vec3) bool {
	return p1.Sub(q).Cross(p2.Sub(q)).Dot(normal) > 0
}

// Intersect implements Shape: plane intersection followed by the edge-cycle
// inside test.
func (t *Triangle) Intersect(orig, dir math3d.Vec3) (Intersection, bool) {
	point, ok := intersectConvex(orig, dir, t.vertices[:], t.normal, t.centroid)
	if !ok {
		return Intersection{}, false
	}

	return Intersection{
		Point:       point,
		Normal:      t.normal,
		Reflectance: t.reflectance,
	}, true
}

// intersectConvex finds where a ray pierces the plane of a counter-clockwise
// convex polygon and checks the hit against every edge. Polygons are
// single-sided: a ray striking the back of the plane is culled, so the
// winding order decides which side is visible. Shared by Triangle,
// ConvexPolygon and Mesh.
func intersectConvex(orig, dir math3d.Vec3, vertices []math3d.Vec3, normal, centroid math3d.Vec3) (math3d.Vec3, bool) {
	dotProduct := dir.Dot(normal)
	if math.Abs(dotProduct) < parallelEpsilon {
		return math3d.Vec3{}, false
	}
	// Back face.
	if dotProduct >= 0 {
		return math3d.Vec3{}, false
	}

	t := centroid.Sub(orig).Dot(normal) / dotProduct
	if t <= 0 {
		return math3d.Vec3{}, false
	}

	point := orig.Add(dir.Scale(t))

	for i := range vertices {
		if !inside(point, vertices[i], vertices[(i+1)%len(vertices)], normal) {
			return math3d.Vec3{}, false
		}
	}

	return point, true
}

// Bounds implements Shape.
func (t *Triangle) Bounds() BoundingBox {
	b := NewBoundingBox()
	for _, v := range t.vertices {
		b = b.Extend(v)
	}
	return b
}

package geom

import (
	"github.com/tlawson/lumen/pkg/math3d"
)

// Mesh aggregates triangles with per-triangle reflectances and a cached
// bounding box. It satisfies the same Shape contract as a primitive by
// delegating to its triangles. A mesh may be offset or scaled while loading
// and is immutable during rendering.
type Mesh struct {
	name         string
	triangles    []Triangle
	reflectances []Reflectance
	bounds       BoundingBox
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		name:   name,
		bounds: NewBoundingBox(),
	}
}

// Name returns the mesh name, usually derived from the file it was loaded
// from.
func (m *Mesh) Name() string {
	return m.name
}

// AddTriangle appends a triangle with its surface reflectance and extends
// the cached bounds.
func (m *Mesh) AddTriangle(t Triangle, reflectance Reflectance) {
	m.triangles = append(m.triangles, t)
	m.reflectances = append(m.reflectances, reflectance)
	m.bounds = m.bounds.Union(t.Bounds())
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// Offset translates every triangle.
func (m *Mesh) Offset(off math3d.Vec3) {
	for i := range m.triangles {
		m.triangles[i].Offset(off)
	}
	m.recalculateBounds()
}

// Scale scales every triangle about the origin.
func (m *Mesh) Scale(s float64) {
	for i := range m.triangles {
		m.triangles[i].Scale(s)
	}
	m.recalculateBounds()
}

func (m *Mesh) recalculateBounds() {
	m.bounds = NewBoundingBox()
	for i := range m.triangles {
		m.bounds = m.bounds.Union(m.triangles[i].Bounds())
	}
}

// Intersect implements Shape: after a bounding-box early reject, every
// triangle is tested and the hit nearest the ray origin (by squared
// distance) wins. The winning triangle's reflectance is reported.
func (m *Mesh) Intersect(orig, dir math3d.Vec3) (Intersection, bool) {
	if len(m.triangles) == 0 || !m.bounds.HitBy(orig, dir) {
		return Intersection{}, false
	}

	var (
		best     Intersection
		bestDist float64
		found    bool
	)

	for i := range m.triangles {
		hit, ok := m.triangles[i].Intersect(orig, dir)
		if !ok {
			continue
		}
		dist := hit.Point.Sub(orig).LenSq()
		if !found || dist < bestDist {
			hit.Reflectance = m.reflectances[i]
			best = hit
			bestDist = dist
			found = true
		}
	}

	return best, found
}

// Bounds implements Shape, returning the cached box.
func (m *Mesh) Bounds() BoundingBox {
	return m.bounds
}

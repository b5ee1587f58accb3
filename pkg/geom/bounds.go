package geom

import (
	"math"

	"github.com/tlawson/lumen/pkg/math3d"
)

// BoundingBox is an axis-aligned box with Min.i <= Max.i for each axis.
type BoundingBox struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewBoundingBox returns a degenerate box positioned for extension: any call
// to Extend will snap it onto the extended point.
func NewBoundingBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		Min: math3d.V3(inf, inf, inf),
		Max: math3d.V3(-inf, -inf, -inf),
	}
}

// Extend grows the box to enclose p.
func (b BoundingBox) Extend(p math3d.Vec3) BoundingBox {
	return BoundingBox{
		Min: b.Min.Min(p),
		Max: b.Max.Max(p),
	}
}

// Union grows the box to enclose another box.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: b.Min.Min(o.Min),
		Max: b.Max.Max(o.Max),
	}
}

// HitBy reports whether a ray can intersect the box. Standard slab test; a
// zero direction component divides to ±Inf, which the interval comparison
// handles without special cases.
func (b BoundingBox) HitBy(orig, dir math3d.Vec3) bool {
	tmin, tmax := math.Inf(-1), math.Inf(1)

	for _, axis := range [3]struct{ o, d, lo, hi float64 }{
		{orig.X, dir.X, b.Min.X, b.Max.X},
		{orig.Y, dir.Y, b.Min.Y, b.Max.Y},
		{orig.Z, dir.Z, b.Min.Z, b.Max.Z},
	} {
		t0 := (axis.lo - axis.o) / axis.d
		t1 := (axis.hi - axis.o) / axis.d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmax < tmin {
			return false
		}
	}

	return tmax > 0
}

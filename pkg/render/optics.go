// Package render implements the rendering pipeline: optics, the recursive
// shading kernel, the pinhole back-projection, the patch-parallel renderer
// and the framebuffer.
package render

import (
	"math"

	"github.com/tlawson/lumen/pkg/geom"
	"github.com/tlawson/lumen/pkg/math3d"
)

// Secondary-ray origins are pushed off the originating surface by this much
// to avoid re-intersecting it. Shadow rays use the larger shadowEpsilon.
const (
	surfaceEpsilon = 1e-4
	shadowEpsilon  = 1e-3
)

// ReflectRay computes the mirror-reflected ray at an intersection, for a
// unit incident direction and the surface's refractive index. The normal is
// flipped when the ray meets the outward face (n·d < 0). Reflection is only
// produced in the total-internal-reflection regime (cos²θ₂ ≤ 0); when
// refraction succeeds no reflection ray is emitted. The returned origin is
// offset off the surface along the intersection normal.
func ReflectRay(incident math3d.Vec3, is geom.Intersection, refractiveIndex float64) (orig, dir math3d.Vec3, ok bool) {
	normal := is.Normal
	c := normal.Dot(incident)

	r := refractiveIndex
	if c >= 0 {
		r = 1 / refractiveIndex
	}
	if c < 0 {
		c = -c
		normal = normal.Negate()
	}

	cosTheta2 := 1 - r*r*(1-c*c)
	if cosTheta2 > 0 {
		return math3d.Vec3{}, math3d.Vec3{}, false
	}

	dir = incident.Reflect(normal)

	offset := is.Normal.Scale(surfaceEpsilon)
	if dir.Dot(is.Normal) < 0 {
		orig = is.Point.Sub(offset)
	} else {
		orig = is.Point.Add(offset)
	}

	return orig, dir, true
}

// RefractRay computes the refracted ray at an intersection per Snell's law.
// It returns ok=false under total internal reflection. The returned origin
// is offset along the (possibly flipped) normal on the side the refracted
// ray exits.
func RefractRay(incident math3d.Vec3, is geom.Intersection, refractiveIndex float64) (orig, dir math3d.Vec3, ok bool) {
	normal := is.Normal
	c := -normal.Dot(incident)

	r := refractiveIndex
	if c >= 0 {
		r = 1 / refractiveIndex
	}
	if c < 0 {
		c = -c
		normal = normal.Negate()
	}

	cosTheta2 := 1 - r*r*(1-c*c)
	if cosTheta2 < 0 {
		return math3d.Vec3{}, math3d.Vec3{}, false
	}

	dir = incident.Scale(r).Add(normal.Scale(r*c - math.Sqrt(cosTheta2))).Normalize()

	offset := normal.Scale(surfaceEpsilon)
	if dir.Dot(normal) > 0 {
		orig = is.Point.Add(offset)
	} else {
		orig = is.Point.Sub(offset)
	}

	return orig, dir, true
}

package render

import (
	"math"

	"github.com/tlawson/lumen/pkg/geom"
	"github.com/tlawson/lumen/pkg/math3d"
	"github.com/tlawson/lumen/pkg/scene"
)

// maxDepth bounds the shading recursion: a primary ray plus two bounces.
// Raising it deepens glass-on-glass fidelity at quadratic cost.
const maxDepth = 3

// closestIntersection scans every shape and keeps the hit nearest the ray
// origin by squared distance. Ties go to the first shape encountered.
func closestIntersection(orig, dir math3d.Vec3, shapes []geom.Shape) (geom.Intersection, bool) {
	var (
		best     geom.Intersection
		bestDist float64
		found    bool
	)

	for _, shape := range shapes {
		hit, ok := shape.Intersect(orig, dir)
		if !ok {
			continue
		}
		dist := hit.Point.Sub(orig).LenSq()
		if !found || dist < bestDist {
			best = hit
			bestDist = dist
			found = true
		}
	}

	return best, found
}

// intersectAny reports whether anything at all lies along the ray. Used for
// shadow rays, where the hit details are irrelevant, so it short-circuits on
// the first positive result.
func intersectAny(orig, dir math3d.Vec3, shapes []geom.Shape) bool {
	for _, shape := range shapes {
		if _, ok := shape.Intersect(orig, dir); ok {
			return true
		}
	}
	return false
}

// CastRay returns the radiance along a ray. depth counts from 1 for primary
// rays; when the recursion bound is exceeded the background is returned.
// Secondary rays that miss contribute nothing, so the background does not
// pollute reflections.
func CastRay(orig, dir math3d.Vec3, shapes []geom.Shape, lights []scene.Light, background math3d.Vec3, depth int) math3d.Vec3 {
	if depth > maxDepth {
		return background
	}

	hit, ok := closestIntersection(orig, dir, shapes)
	if !ok {
		if depth == 1 {
			return background
		}
		return math3d.Zero3()
	}

	radiance := background.Add(directLighting(orig, hit, shapes, lights))

	if hit.Reflectance.Dielectric {
		radiance = radiance.
			Add(reflectedLighting(dir, hit, shapes, lights, background, depth)).
			Add(refractedLighting(dir, hit, shapes, lights, background, depth))
	}

	return radiance
}

// directLighting accumulates the Lambertian diffuse and Phong specular
// contributions of every visible light, then scales the sum by the surface's
// diffusion factor.
func directLighting(viewOrig math3d.Vec3, hit geom.Intersection, shapes []geom.Shape, lights []scene.Light) math3d.Vec3 {
	total := math3d.Zero3()
	viewer := viewOrig.Sub(hit.Point).Normalize()

	for _, light := range lights {
		lightDir := light.Position.Sub(hit.Point).Normalize()

		// Shadow test. The origin leaves the surface on the light's side.
		shadowOrig := hit.Point.Add(hit.Normal.Scale(shadowEpsilon))
		if lightDir.Dot(hit.Normal) < 0 {
			shadowOrig = hit.Point.Sub(hit.Normal.Scale(shadowEpsilon))
		}
		if intersectAny(shadowOrig, lightDir, shapes) {
			continue
		}

		// Lambertian diffuse.
		diffuse := math.Max(0, lightDir.Dot(hit.Normal)) * light.Intensity
		total = total.Add(light.Color.Mul(hit.Reflectance.DiffuseColor).Scale(diffuse))

		// Phong specular.
		reflected := lightDir.Negate().Reflect(hit.Normal)
		specular := math.Pow(math.Max(0, reflected.Dot(viewer)), hit.Reflectance.SpecularExponent)
		total = total.Add(light.Color.Scale(specular * hit.Reflectance.Specular))
	}

	return total.Scale(hit.Reflectance.Diffusion)
}

func reflectedLighting(dir math3d.Vec3, hit geom.Intersection, shapes []geom.Shape, lights []scene.Light, background math3d.Vec3, depth int) math3d.Vec3 {
	orig, reflected, ok := ReflectRay(dir, hit, hit.Reflectance.RefractiveIndex)
	if !ok {
		return math3d.Zero3()
	}
	return CastRay(orig, reflected, shapes, lights, background, depth+1).Scale(hit.Reflectance.Reflection)
}

func refractedLighting(dir math3d.Vec3, hit geom.Intersection, shapes []geom.Shape, lights []scene.Light, background math3d.Vec3, depth int) math3d.Vec3 {
	orig, refracted, ok := RefractRay(dir, hit, hit.Reflectance.RefractiveIndex)
	if !ok {
		return math3d.Zero3()
	}
	return CastRay(orig, refracted, shapes, lights, background, depth+1).Scale(1 - hit.Reflectance.Reflection)
}

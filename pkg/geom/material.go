package geom

import (
	"github.com/tlawson/lumen/pkg/math3d"
)

// Reflectance bundles the surface parameters consumed by the shading
// equation. Dielectric surfaces additionally spawn reflection and refraction
// rays; opaque surfaces skip that recursion entirely.
type Reflectance struct {
	// Diffusion scales the summed direct lighting, in [0, 1].
	Diffusion float64
	// DiffuseColor is the surface albedo, each channel in [0, 1].
	DiffuseColor math3d.Vec3
	// Specular scales the Phong highlight, in [0, 1].
	Specular float64
	// SpecularExponent is the Phong highlight sharpness, > 0.
	SpecularExponent float64
	// Dielectric marks glass-like surfaces.
	Dielectric bool
	// Reflection weights the reflected contribution, in [0, 1]; the
	// refracted contribution gets the complement 1 - Reflection.
	Reflection float64
	// RefractiveIndex is the material's index of refraction, > 0.
	RefractiveIndex float64
}

// DefaultReflectance returns a neutral opaque gray surface.
func DefaultReflectance() Reflectance {
	return Reflectance{
		Diffusion:        1,
		DiffuseColor:     math3d.V3(0.5, 0.5, 0.5),
		Specular:         0.5,
		SpecularExponent: 30,
		Dielectric:       false,
		Reflection:       0.5,
		RefractiveIndex:  1,
	}
}

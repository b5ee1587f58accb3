// Package scene owns the renderable world: a heterogeneous shape list, point
// lights, the camera position and the background color.
package scene

import (
	"github.com/tlawson/lumen/pkg/geom"
	"github.com/tlawson/lumen/pkg/math3d"
)

// Light is a point light source. Its color is L∞-normalized at construction
// so intensity alone controls brightness.
type Light struct {
	Position  math3d.Vec3
	Color     math3d.Vec3
	Intensity float64
}

// NewLight creates a light with an L∞-normalized color.
func NewLight(position, color math3d.Vec3, intensity float64) Light {
	return Light{
		Position:  position,
		Color:     color.NormalizeInf(),
		Intensity: intensity,
	}
}

// Scene owns its shapes and lights exclusively. Shapes share no mutable
// state, so a Scene may be read concurrently; the camera is the only field
// meant to change between renders.
type Scene struct {
	Camera     math3d.Vec3
	Shapes     []geom.Shape
	Lights     []Light
	Background math3d.Vec3
}

// DefaultBackground is the sky color used when a scene does not name one.
var DefaultBackground = math3d.V3(0.2, 0.7, 0.8)

// New returns an empty scene with the default background.
func New() *Scene {
	return &Scene{Background: DefaultBackground}
}

// OffsetCamera adds a translation to the camera position.
func (s *Scene) OffsetCamera(offset math3d.Vec3) {
	s.Camera = s.Camera.Add(offset)
}

// Default builds the demo scene: five spheres, a triangle, a reflective
// dielectric floor and two lights.
func Default() *Scene {
	s := New()

	refl := geom.DefaultReflectance()

	// Red sphere
	refl.DiffuseColor = math3d.V3(0.8, 0, 0)
	refl.SpecularExponent = 100
	s.Shapes = append(s.Shapes, geom.NewSphere(math3d.V3(-5, 0, -16), 4, refl))

	// Purple triangle
	refl.DiffuseColor = math3d.V3(0.6, 0, 0.7)
	s.Shapes = append(s.Shapes, geom.NewConvexPolygon([]math3d.Vec3{
		math3d.V3(7, -4, -8),
		math3d.V3(15, 0, -9),
		math3d.V3(6, 3, -8),
	}, refl))

	// Floor
	refl.Diffusion = 1
	refl.Specular = 1
	refl.Dielectric = true
	refl.RefractiveIndex = 1.5
	refl.Reflection = 0.5
	refl.DiffuseColor = math3d.V3(0.3, 0.9, 0.9)
	s.Shapes = append(s.Shapes, geom.NewConvexPolygon([]math3d.Vec3{
		math3d.V3(20, -3, -50),
		math3d.V3(-20, -3, -50),
		math3d.V3(-15, -6, -3),
		math3d.V3(15, -6, -3),
	}, refl))

	// Blue glass sphere
	refl.Specular = 1
	refl.Diffusion = 0.1
	refl.DiffuseColor = math3d.V3(0, 0, 0.2)
	refl.Dielectric = true
	refl.RefractiveIndex = 1.5
	refl.Reflection = 0.2
	s.Shapes = append(s.Shapes, geom.NewSphere(math3d.V3(-0.5, -1.5, -5), 2, refl))

	// Green sphere
	refl.Diffusion = 1
	refl.Reflection = 1
	refl.Dielectric = false
	refl.Specular = 0.8
	refl.DiffuseColor = math3d.V3(0, 1, 0)
	s.Shapes = append(s.Shapes, geom.NewSphere(math3d.V3(6, -0.5, -18), 3, refl))

	// White sphere
	refl.DiffuseColor = math3d.V3(0.9, 0.9, 0.9)
	s.Shapes = append(s.Shapes, geom.NewSphere(math3d.V3(-10, 6, -14), 4, refl))

	// Amber sphere
	refl.DiffuseColor = math3d.V3(0.9, 0.6, 0.1)
	refl.SpecularExponent = 50
	s.Shapes = append(s.Shapes, geom.NewSphere(math3d.V3(2, 4, -20), 2, refl))

	s.Lights = append(s.Lights,
		NewLight(math3d.Zero3(), math3d.Ones(), 1),
		NewLight(math3d.V3(20, 20, 20), math3d.V3(1, 0.5, 0.5), 0.8),
	)

	return s
}

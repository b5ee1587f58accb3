package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tlawson/lumen/pkg/geom"
	"github.com/tlawson/lumen/pkg/math3d"
	"github.com/tlawson/lumen/pkg/models"
)

// sceneFile is the YAML schema for a scene on disk. Vectors are
// three-element sequences.
type sceneFile struct {
	Camera     *[3]float64   `yaml:"camera,omitempty"`
	Background *[3]float64   `yaml:"background,omitempty"`
	Lights     []lightFile   `yaml:"lights"`
	Spheres    []sphereFile  `yaml:"spheres,omitempty"`
	Polygons   []polygonFile `yaml:"polygons,omitempty"`
	Meshes     []meshFile    `yaml:"meshes,omitempty"`
}

type lightFile struct {
	Position  [3]float64 `yaml:"position"`
	Color     [3]float64 `yaml:"color"`
	Intensity float64    `yaml:"intensity"`
}

type sphereFile struct {
	Center   [3]float64    `yaml:"center"`
	Radius   float64       `yaml:"radius"`
	Material *materialFile `yaml:"material,omitempty"`
}

type polygonFile struct {
	Vertices [][3]float64  `yaml:"vertices"`
	Material *materialFile `yaml:"material,omitempty"`
}

type meshFile struct {
	Path     string        `yaml:"path"`
	Scale    float64       `yaml:"scale,omitempty"`
	Offset   *[3]float64   `yaml:"offset,omitempty"`
	Material *materialFile `yaml:"material,omitempty"`
}

// materialFile mirrors geom.Reflectance. Omitted fields keep the default
// reflectance's values, so zero is still expressible.
type materialFile struct {
	Diffusion        *float64    `yaml:"diffusion,omitempty"`
	DiffuseColor     *[3]float64 `yaml:"diffuse_color,omitempty"`
	Specular         *float64    `yaml:"specular,omitempty"`
	SpecularExponent *float64    `yaml:"specular_exponent,omitempty"`
	Dielectric       *bool       `yaml:"dielectric,omitempty"`
	Reflection       *float64    `yaml:"reflection,omitempty"`
	RefractiveIndex  *float64    `yaml:"refractive_index,omitempty"`
}

func toVec(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func fromVec(v math3d.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func (m *materialFile) reflectance() geom.Reflectance {
	refl := geom.DefaultReflectance()
	if m == nil {
		return refl
	}
	if m.Diffusion != nil {
		refl.Diffusion = *m.Diffusion
	}
	if m.DiffuseColor != nil {
		refl.DiffuseColor = toVec(*m.DiffuseColor)
	}
	if m.Specular != nil {
		refl.Specular = *m.Specular
	}
	if m.SpecularExponent != nil {
		refl.SpecularExponent = *m.SpecularExponent
	}
	if m.Dielectric != nil {
		refl.Dielectric = *m.Dielectric
	}
	if m.Reflection != nil {
		refl.Reflection = *m.Reflection
	}
	if m.RefractiveIndex != nil {
		refl.RefractiveIndex = *m.RefractiveIndex
	}
	return refl
}

// Load reads a YAML scene file. Mesh paths are resolved relative to the
// scene file's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a YAML scene document. meshDir anchors relative mesh paths.
func Parse(data []byte, meshDir string) (*Scene, error) {
	var file sceneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	s := New()
	if file.Camera != nil {
		s.Camera = toVec(*file.Camera)
	}
	if file.Background != nil {
		s.Background = toVec(*file.Background)
	}

	for _, l := range file.Lights {
		s.Lights = append(s.Lights, NewLight(toVec(l.Position), toVec(l.Color), l.Intensity))
	}

	for _, sp := range file.Spheres {
		if sp.Radius <= 0 {
			return nil, fmt.Errorf("sphere at %v: radius must be positive", sp.Center)
		}
		s.Shapes = append(s.Shapes, geom.NewSphere(toVec(sp.Center), sp.Radius, sp.Material.reflectance()))
	}

	for _, p := range file.Polygons {
		if len(p.Vertices) < 3 {
			return nil, fmt.Errorf("polygon with %d vertices: need at least three", len(p.Vertices))
		}
		vertices := make([]math3d.Vec3, len(p.Vertices))
		for i, v := range p.Vertices {
			vertices[i] = toVec(v)
		}
		s.Shapes = append(s.Shapes, geom.NewConvexPolygon(vertices, p.Material.reflectance()))
	}

	for _, mf := range file.Meshes {
		scale := mf.Scale
		if scale == 0 {
			scale = 1
		}
		path := mf.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(meshDir, path)
		}
		mesh, err := models.Load(path, scale, mf.Material.reflectance())
		if err != nil {
			return nil, fmt.Errorf("mesh %s: %w", mf.Path, err)
		}
		if mf.Offset != nil {
			mesh.Offset(toVec(*mf.Offset))
		}
		s.Shapes = append(s.Shapes, mesh)
	}

	return s, nil
}

// Save writes the scene's camera, background and lights as YAML. Shapes
// loaded from code or mesh files are not round-tripped; Save exists so a
// viewer session can persist its camera placement next to a scene file.
func (s *Scene) Save(path string) error {
	camera := fromVec(s.Camera)
	background := fromVec(s.Background)
	file := sceneFile{
		Camera:     &camera,
		Background: &background,
	}
	for _, l := range s.Lights {
		file.Lights = append(file.Lights, lightFile{
			Position:  fromVec(l.Position),
			Color:     fromVec(l.Color),
			Intensity: l.Intensity,
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

// Package models loads triangle meshes from Wavefront OBJ and binary glTF
// files into geom.Mesh values.
package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tlawson/lumen/pkg/geom"
	"github.com/tlawson/lumen/pkg/math3d"
)

// Load reads a mesh file, dispatching on the extension (.obj, .glb, .gltf).
// Vertex positions are multiplied by scale while loading, and every triangle
// gets the given reflectance.
func Load(path string, scale float64, reflectance geom.Reflectance) (*geom.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path, scale, reflectance)
	case ".glb", ".gltf":
		return LoadGLB(path, scale, reflectance)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", filepath.Ext(path))
	}
}

// LoadOBJ parses a Wavefront .obj file. Only vertex positions and faces are
// consumed; normals come from the winding order and materials from the
// caller. Faces with more than three vertices are fan-triangulated.
func LoadOBJ(path string, scale float64, reflectance geom.Reflectance) (*geom.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := parseOBJ(f, filepath.Base(path), scale, reflectance)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mesh, nil
}

func parseOBJ(r io.Reader, name string, scale float64, reflectance geom.Reflectance) (*geom.Mesh, error) {
	mesh := geom.NewMesh(name)
	var positions []math3d.Vec3

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs three coordinates", lineNo)
			}
			var coords [3]float64
			for i := range coords {
				c, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				coords[i] = c * scale
			}
			positions = append(positions, math3d.V3(coords[0], coords[1], coords[2]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least three vertices", lineNo)
			}
			indices := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := parseFaceIndex(ref, len(positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				indices = append(indices, idx)
			}
			// Fan triangulation around the first vertex.
			for i := 1; i+1 < len(indices); i++ {
				v0 := positions[indices[0]]
				v1 := positions[indices[i]]
				v2 := positions[indices[i+1]]
				if v1.Sub(v0).Cross(v2.Sub(v1)).LenSq() == 0 {
					// Degenerate face, drop it.
					continue
				}
				mesh.AddTriangle(*geom.NewTriangle([3]math3d.Vec3{v0, v1, v2}, reflectance), reflectance)
			}
		}
		// vn, vt, usemtl, o, g, s are ignored.
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if mesh.TriangleCount() == 0 {
		return nil, fmt.Errorf("no faces found")
	}
	return mesh, nil
}

// parseFaceIndex resolves one face vertex reference ("7", "7/1", "7//2",
// "7/1/2", or a negative relative index) to a zero-based position index.
func parseFaceIndex(ref string, positionCount int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	idx, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q: %w", ref, err)
	}
	if idx < 0 {
		idx = positionCount + idx
	} else {
		idx--
	}
	if idx < 0 || idx >= positionCount {
		return 0, fmt.Errorf("face index %q out of range", ref)
	}
	return idx, nil
}

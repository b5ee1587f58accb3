package models

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/tlawson/lumen/pkg/geom"
	"github.com/tlawson/lumen/pkg/math3d"
)

// LoadGLB loads a binary glTF (.glb/.gltf) file. Only triangle primitives
// with embedded buffers are consumed; vertex positions are multiplied by
// scale while loading.
func LoadGLB(path string, scale float64, reflectance geom.Reflectance) (*geom.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := geom.NewMesh(path)

	for _, m := range doc.Meshes {
		if err := appendPrimitives(doc, m, mesh, scale, reflectance); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
	}

	if mesh.TriangleCount() == 0 {
		return nil, fmt.Errorf("no triangles in %s", path)
	}
	return mesh, nil
}

func appendPrimitives(doc *gltf.Document, m *gltf.Mesh, mesh *geom.Mesh, scale float64, reflectance geom.Reflectance) error {
	for _, prim := range m.Primitives {
		// The decoder applies the spec default (triangles) to primitives
		// without an explicit mode, so mode 0 here really is POINTS.
		if prim.Mode != gltf.PrimitiveTriangles {
			// Points and lines have no surface to intersect.
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readPositions(doc, posIdx, scale)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			v0 := positions[indices[i]]
			v1 := positions[indices[i+1]]
			v2 := positions[indices[i+2]]
			if v1.Sub(v0).Cross(v2.Sub(v1)).LenSq() == 0 {
				continue
			}
			mesh.AddTriangle(*geom.NewTriangle([3]math3d.Vec3{v0, v1, v2}, reflectance), reflectance)
		}
	}
	return nil
}

// readPositions reads a VEC3 float accessor, scaling each position.
func readPositions(doc *gltf.Document, accessorIdx int, scale float64) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		off := i * stride
		result[i] = math3d.V3(
			float64(readFloat32(data[off:]))*scale,
			float64(readFloat32(data[off+4:]))*scale,
			float64(readFloat32(data[off+8:]))*scale,
		)
	}
	return result, nil
}

// readIndices reads a scalar index accessor of any component width.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]

	var width int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		width = 1
	case gltf.ComponentUshort:
		width = 2
	case gltf.ComponentUint:
		width = 4
	default:
		return nil, fmt.Errorf("unexpected index component type %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, width)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		off := i * stride
		switch width {
		case 1:
			result[i] = int(data[off])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[off:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return result, nil
}

// accessorBytes resolves an accessor to its backing bytes and element
// stride. Only embedded (GLB) buffers are supported.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elementSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}

	view := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[view.Buffer]
	if buffer.URI != "" {
		return nil, 0, fmt.Errorf("external buffers not supported")
	}
	if buffer.Data == nil {
		return nil, 0, fmt.Errorf("buffer has no data")
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elementSize
	}

	start := view.ByteOffset + accessor.ByteOffset
	end := start + (accessor.Count-1)*stride + elementSize
	if end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor overruns its buffer")
	}

	return buffer.Data[start:], stride, nil
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

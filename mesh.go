package arena

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type MeshAttribute string

const (
	AttributePosition MeshAttribute = "Vertex_Position"
	AttributeNormal   MeshAttribute = "Vertex_Normal"
	AttributeUV0      MeshAttribute = "Vertex_Uv"
)

// MeshAsset is an indexed triangle list.
type MeshAsset struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

func (m *MeshAsset) VertexCount() int {
	return len(m.Positions)
}

// WithInsertedAttribute replaces an attribute. values must be []mgl32.Vec3 for
// positions and normals, and []mgl32.Vec2 or [][2]float32 for UVs.
func (m MeshAsset) WithInsertedAttribute(attribute MeshAttribute, values any) (MeshAsset, error) {
	switch attribute {
	case AttributePosition, AttributeNormal:
		vs, ok := values.([]mgl32.Vec3)
		if !ok {
			return m, fmt.Errorf("%s expects []mgl32.Vec3, got %T", attribute, values)
		}
		// An empty mesh takes any position count; otherwise every attribute keeps the vertex count.
		if attribute == AttributePosition && m.VertexCount() == 0 {
			m.Positions = vs
			return m, nil
		}
		if len(vs) != m.VertexCount() {
			return m, fmt.Errorf("%s: %d values for %d vertices: %w", attribute, len(vs), m.VertexCount(), ErrAttributeLength)
		}
		if attribute == AttributePosition {
			m.Positions = vs
		} else {
			m.Normals = vs
		}
	case AttributeUV0:
		var uvs []mgl32.Vec2
		switch vs := values.(type) {
		case []mgl32.Vec2:
			uvs = vs
		case [][2]float32:
			uvs = make([]mgl32.Vec2, len(vs))
			for i, v := range vs {
				uvs[i] = mgl32.Vec2(v)
			}
		default:
			return m, fmt.Errorf("%s expects []mgl32.Vec2, got %T", attribute, values)
		}
		if len(uvs) != m.VertexCount() {
			return m, fmt.Errorf("%s: %d values for %d vertices: %w", attribute, len(uvs), m.VertexCount(), ErrAttributeLength)
		}
		m.UVs = uvs
	default:
		return m, fmt.Errorf("%q: %w", attribute, ErrUnknownAttribute)
	}
	return m, nil
}

// AABB returns the local-space bounds of the mesh.
func (m *MeshAsset) AABB() AABBComponent {
	if len(m.Positions) == 0 {
		return AABBComponent{}
	}
	aabb := AABBComponent{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		for i := 0; i < 3; i++ {
			aabb.Min[i] = min(aabb.Min[i], p[i])
			aabb.Max[i] = max(aabb.Max[i], p[i])
		}
	}
	return aabb
}

// PlaneMeshBuilder builds a single quad centred on the origin, facing Normal.
type PlaneMeshBuilder struct {
	HalfSize mgl32.Vec2
	Normal   mgl32.Vec3
}

// Build emits the corners (-x,-z), (+x,-z), (+x,+z), (-x,+z) in the plane's own
// frame, with UVs spanning the unit square, wound counter-clockwise seen from Normal.
func (b PlaneMeshBuilder) Build() MeshAsset {
	normal := b.Normal
	if normal.Len() < 1e-6 {
		normal = mgl32.Vec3{0, 1, 0}
	}
	normal = normal.Normalize()
	rot := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 1, 0}, normal)

	hx, hz := b.HalfSize.X(), b.HalfSize.Y()
	corners := []mgl32.Vec3{
		{-hx, 0, -hz},
		{hx, 0, -hz},
		{hx, 0, hz},
		{-hx, 0, hz},
	}
	mesh := MeshAsset{
		Positions: make([]mgl32.Vec3, 4),
		Normals:   make([]mgl32.Vec3, 4),
		UVs: []mgl32.Vec2{
			{0, 0},
			{1, 0},
			{1, 1},
			{0, 1},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
	for i, c := range corners {
		mesh.Positions[i] = rot.Rotate(c)
		mesh.Normals[i] = normal
	}
	return mesh
}

// Cuboid is an axis-aligned box primitive.
type Cuboid struct {
	HalfSize mgl32.Vec3
}

func CuboidFromHalfSize(hx, hy, hz float32) Cuboid {
	return Cuboid{HalfSize: mgl32.Vec3{hx, hy, hz}}
}

// Mesh emits 4 vertices per face (24 total) so each face has flat normals.
func (c Cuboid) Mesh() MeshAsset {
	h := c.HalfSize
	type face struct {
		normal, u, v mgl32.Vec3
	}
	faces := []face{
		{normal: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
		{normal: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
		{normal: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
		{normal: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
		{normal: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
		{normal: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	}

	mesh := MeshAsset{
		Positions: make([]mgl32.Vec3, 0, 24),
		Normals:   make([]mgl32.Vec3, 0, 24),
		UVs:       make([]mgl32.Vec2, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}
	scale := func(v mgl32.Vec3) mgl32.Vec3 {
		return mgl32.Vec3{v[0] * h[0], v[1] * h[1], v[2] * h[2]}
	}
	for _, f := range faces {
		base := uint32(len(mesh.Positions))
		center := scale(f.normal)
		du, dv := scale(f.u), scale(f.v)
		quad := []struct {
			su, sv float32
			uv     mgl32.Vec2
		}{
			{-1, -1, mgl32.Vec2{0, 1}},
			{1, -1, mgl32.Vec2{1, 1}},
			{1, 1, mgl32.Vec2{1, 0}},
			{-1, 1, mgl32.Vec2{0, 0}},
		}
		for _, q := range quad {
			mesh.Positions = append(mesh.Positions, center.Add(du.Mul(q.su)).Add(dv.Mul(q.sv)))
			mesh.Normals = append(mesh.Normals, f.normal)
			mesh.UVs = append(mesh.UVs, q.uv)
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}

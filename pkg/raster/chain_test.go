package raster

import (
	"testing"

	"github.com/soft3d/raster/pkg/vecmath"
)

// mockMesh is a minimal in-memory Mesh for exercising the chain decoder.
type mockMesh struct {
	verts []vecmath.Vec3
	norms []vecmath.Vec3
	uvs   []vecmath.Vec2
	faces []uint16
	tex   Texture
	min   vecmath.Vec3
	max   vecmath.Vec3
	next  Mesh
}

func (m *mockMesh) Vertices() []vecmath.Vec3        { return m.verts }
func (m *mockMesh) Normals() []vecmath.Vec3         { return m.norms }
func (m *mockMesh) Texcoords() []vecmath.Vec2       { return m.uvs }
func (m *mockMesh) Faces() []uint16                 { return m.faces }
func (m *mockMesh) Texture() Texture                { return m.tex }
func (m *mockMesh) Bounds() (min, max vecmath.Vec3) { return m.min, m.max }
func (m *mockMesh) Material() MeshMaterial {
	return MeshMaterial{Color: RGB{1, 0, 0}, AmbientStrength: 1, DiffuseStrength: 1, SpecularExponent: 1}
}
func (m *mockMesh) Next() Mesh { return m.next }

// A two-triangle strip over a unit quad: chain N=2, vertices 0,1,2, then a
// successor adding vertex 3 and retaining slot 1 (bit 15 set).
func quadStripMesh() *mockMesh {
	return &mockMesh{
		verts: []vecmath.Vec3{
			{X: -0.5, Y: -0.5, Z: 0},
			{X: 0.5, Y: -0.5, Z: 0},
			{X: -0.5, Y: 0.5, Z: 0},
			{X: 0.5, Y: 0.5, Z: 0},
		},
		faces: []uint16{
			2, 0, 1, 2, // N=2, triangle (0,1,2)
			3 | 0x8000, // successor: vid=3, bit15 set -> keep slot 1, evict slot 0
			0,          // terminator
		},
	}
}

func TestDecodeChainEmitsBothStripTriangles(t *testing.T) {
	c := newTestContext(32, 32)
	mesh := quadStripMesh()

	c.decodeChain(mesh, FlatShading, true)

	// Both triangles together cover the full quad (screen x and y in
	// 7.75..23.25); sample a pixel on each side of the shared diagonal.
	left := c.target.GetPixel(8, 16)
	right := c.target.GetPixel(20, 16)
	if left.A == 0 {
		t.Error("first triangle of the strip did not render")
	}
	if right.A == 0 {
		t.Error("second triangle of the strip (after the successor swap) did not render")
	}
}

func TestDrawMeshReturnCodes(t *testing.T) {
	t.Run("missing geometry", func(t *testing.T) {
		c := newTestContext(8, 8)
		mesh := &mockMesh{faces: []uint16{0}} // no vertices
		if got := c.DrawMesh(mesh, FlatShading, false); got != ErrMissingGeometry {
			t.Errorf("DrawMesh() = %d, want ErrMissingGeometry", got)
		}
	})

	t.Run("ok", func(t *testing.T) {
		c := newTestContext(32, 32)
		mesh := quadStripMesh()
		if got := c.DrawMesh(mesh, FlatShading, false); got != DrawOK {
			t.Errorf("DrawMesh() = %d, want DrawOK", got)
		}
	})
}

func TestDrawMeshWalksNextChain(t *testing.T) {
	c := newTestContext(32, 32)
	second := quadStripMesh()
	first := &mockMesh{verts: []vecmath.Vec3{}, faces: []uint16{0}, next: second}

	// first contributes nothing (empty chain), second should still render.
	if got := c.DrawMesh(first, FlatShading, false); got != DrawOK {
		t.Fatalf("DrawMesh() = %d, want DrawOK", got)
	}
	if c.target.GetPixel(16, 16).A == 0 {
		t.Error("mesh linked via Next() was never rendered")
	}
}

func TestDrawMeshUsesMeshMaterial(t *testing.T) {
	c := newTestContext(32, 32)
	c.SetMaterialColor(RGB{0, 0, 1})

	mesh := quadStripMesh()
	c.DrawMesh(mesh, FlatShading, true)
	meshColored := c.target.GetPixel(16, 16)

	c2 := newTestContext(32, 32)
	c2.SetMaterialColor(RGB{0, 0, 1})
	c2.DrawMesh(mesh, FlatShading, false)
	contextColored := c2.target.GetPixel(16, 16)

	if meshColored == contextColored {
		t.Error("DrawMesh with useMeshMaterial=true should differ from the Context's own material")
	}

	// The Context's own material must be restored after the mesh-material
	// mesh finishes, so a subsequent non-mesh-material draw still uses it.
	if got := c.derived.objectColor; got != (RGB{0, 0, 1}) {
		t.Errorf("material was not restored after DrawMesh: objectColor = %v", got)
	}
}

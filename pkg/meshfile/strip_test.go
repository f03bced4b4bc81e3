package meshfile

import (
	"testing"

	"github.com/soft3d/raster/pkg/vecmath"
)

// quadMesh builds two adjacent triangles over a unit quad, sharing the
// edge between vertices 0 and 2.
func quadMesh() *Mesh {
	m := NewMesh("quad")
	m.Vertices = []MeshVertex{
		{Position: vecmath.V3(-0.5, -0.5, 0)},
		{Position: vecmath.V3(0.5, -0.5, 0)},
		{Position: vecmath.V3(-0.5, 0.5, 0)},
		{Position: vecmath.V3(0.5, 0.5, 0)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: -1},
		{V: [3]int{1, 3, 2}, Material: -1},
	}
	m.CalculateBounds()
	return m
}

func TestEncodeChainsMergesAdjacentFaces(t *testing.T) {
	faces := []Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{1, 3, 2}},
	}
	stream := encodeChains(faces, false, false)

	// N=2, then three vertex_recs for the first triangle, one succ_rec,
	// then the terminator.
	want := []uint16{2, 0, 1, 2}
	for i, v := range want {
		if stream[i] != v {
			t.Fatalf("stream[%d] = %d, want %d (stream=%v)", i, stream[i], v, stream)
		}
	}
	if stream[len(stream)-1] != 0 {
		t.Errorf("stream must end with a zero terminator, got %v", stream)
	}
}

func TestEncodeChainsStartsNewChainWhenEdgeNotShared(t *testing.T) {
	// Second face shares no edge with the first: two independent
	// one-triangle chains.
	faces := []Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{10, 11, 12}},
	}
	stream := encodeChains(faces, false, false)

	if stream[0] != 1 {
		t.Fatalf("first chain header = %d, want 1 (no successor folded in)", stream[0])
	}
	// First chain: header + 3 verts = 4 uint16s.
	if stream[4] != 1 {
		t.Fatalf("second chain header = %d, want 1", stream[4])
	}
}

func TestEmitChainRecordsSuccessorBitPerSpec(t *testing.T) {
	// Second face shares vertices 0 (slot 0) and 2 (the tip) with the first
	// triangle, so it retains slot 0 and evicts slot 1: bit 15 clear.
	chain := []Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{0, 2, 3}}, // shares 0 (slot 0) and 2 (tip), new vertex is 3
	}
	stream := emitChain(nil, chain, false, false)

	succ := stream[4]
	if succ&0x8000 != 0 {
		t.Errorf("successor retaining slot 0 must leave bit 15 clear, got %#x", succ)
	}
	if succ&^0x8000 != 3 {
		t.Errorf("successor vertex id = %d, want 3", succ&^0x8000)
	}
}

func TestAppendVertexRecKeepsAttrIndexUnmasked(t *testing.T) {
	// A successor record with bit 15 set must still look up attributes
	// using the plain vertex index, not the masked stream value.
	out := appendVertexRec(nil, 5|0x8000, 5, true, true)
	if out[0]&^0x8000 != 5 {
		t.Fatalf("stream vid = %d, want 5 with bit15 preserved", out[0])
	}
	if out[1] != 5 || out[2] != 5 {
		t.Errorf("texcoord/normal indices must use the unmasked attrIndex, got uv=%d n=%d", out[1], out[2])
	}
}

func TestStripProducesRenderableChain(t *testing.T) {
	packed := Strip(quadMesh())

	if len(packed.Vertices()) != 4 {
		t.Fatalf("Vertices() len = %d, want 4", len(packed.Vertices()))
	}
	if packed.Normals() != nil {
		t.Error("mesh with zero normals should pack with a nil normal pool")
	}
	faces := packed.Faces()
	if faces[0] != 2 {
		t.Fatalf("chain header = %d, want 2 (both triangles merged into one chain)", faces[0])
	}
	if faces[len(faces)-1] != 0 {
		t.Error("packed face stream must end with a zero terminator")
	}
}

func TestStripCarriesMaterialFromMeshMaterials(t *testing.T) {
	m := quadMesh()
	m.Materials = []Material{
		{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}, Roughness: 0.5},
	}
	m.Faces[0].Material = 0

	packed := Strip(m)
	mat := packed.Material()
	if mat.Color.R != 1 || mat.Color.G != 0 {
		t.Errorf("Material().Color = %v, want red", mat.Color)
	}
	if mat.SpecularStrength != 0.5 {
		t.Errorf("SpecularStrength = %f, want 0.5 (1-Roughness)", mat.SpecularStrength)
	}
}

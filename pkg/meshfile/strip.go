package meshfile

import (
	"github.com/soft3d/raster/pkg/raster"
	"github.com/soft3d/raster/pkg/vecmath"
)

// PackedMesh is the compiled, chain-encoded form of a Mesh: flat
// vertex/normal/texcoord pools plus the face stream pkg/raster's Context
// walks directly. It implements raster.Mesh.
type PackedMesh struct {
	verts []vecmath.Vec3
	norms []vecmath.Vec3 // nil if the source mesh had none
	uvs   []vecmath.Vec2 // nil if the source mesh had none
	faces []uint16
	tex   raster.Texture
	min   vecmath.Vec3
	max   vecmath.Vec3
	mat   raster.MeshMaterial
	next  raster.Mesh
}

func (p *PackedMesh) Vertices() []vecmath.Vec3        { return p.verts }
func (p *PackedMesh) Normals() []vecmath.Vec3         { return p.norms }
func (p *PackedMesh) Texcoords() []vecmath.Vec2       { return p.uvs }
func (p *PackedMesh) Faces() []uint16                 { return p.faces }
func (p *PackedMesh) Texture() raster.Texture         { return p.tex }
func (p *PackedMesh) Bounds() (min, max vecmath.Vec3) { return p.min, p.max }
func (p *PackedMesh) Material() raster.MeshMaterial   { return p.mat }
func (p *PackedMesh) Next() raster.Mesh               { return p.next }

// SetNext chains another PackedMesh (or any raster.Mesh) after this one,
// so a single Context.DrawMesh call traverses both.
func (p *PackedMesh) SetNext(m raster.Mesh) { p.next = m }

// SetTexture attaches a texture for TextureShading draw calls. Strip never
// sets one itself: a mesh's base-color image, when present, arrives as raw
// bytes from the loader rather than as a raster.Texture, so attaching it is
// left to the caller once it has decoded (or substituted) one.
func (p *PackedMesh) SetTexture(t raster.Texture) { p.tex = t }

// Strip compiles a Mesh into a PackedMesh, greedily grouping adjacent
// faces into triangle-strip chains (spec.md §6's grammar) wherever the
// next face shares an edge made of the running strip's newest vertex and
// one of its two other slots (see advanceSlots), falling back to a
// degenerate one-triangle chain otherwise. Every vertex keeps its own record (no
// attempt to weld shared positions with differing normals/uvs), matching
// how the loader already lays out per-corner attributes.
func Strip(m *Mesh) *PackedMesh {
	p := &PackedMesh{
		verts: make([]vecmath.Vec3, len(m.Vertices)),
		min:   m.BoundsMin,
		max:   m.BoundsMax,
	}
	hasNormals := false
	hasUV := false
	for i, v := range m.Vertices {
		p.verts[i] = v.Position
		if v.Normal != (vecmath.Vec3{}) {
			hasNormals = true
		}
		if v.UV != (vecmath.Vec2{}) {
			hasUV = true
		}
	}
	if hasNormals {
		p.norms = make([]vecmath.Vec3, len(m.Vertices))
		for i, v := range m.Vertices {
			p.norms[i] = v.Normal
		}
	}
	if hasUV {
		p.uvs = make([]vecmath.Vec2, len(m.Vertices))
		for i, v := range m.Vertices {
			p.uvs[i] = v.UV
		}
	}
	if mat := m.GetMaterial(0); mat != nil {
		p.mat = raster.MeshMaterial{
			Color:            raster.RGB{R: mat.BaseColor[0], G: mat.BaseColor[1], B: mat.BaseColor[2]},
			AmbientStrength:  0.2,
			DiffuseStrength:  1 - mat.Metallic*0.5,
			SpecularStrength: 1 - mat.Roughness,
			SpecularExponent: int(4 + (1-mat.Roughness)*60),
		}
	}

	p.faces = encodeChains(m.Faces, hasUV, hasNormals)
	return p
}

// encodeChains walks faces in order, starting a new chain whenever the
// current face can't be reached from the running strip's three slots, and
// emitting a zero terminator at the end.
func encodeChains(faces []Face, hasUV, hasNormals bool) []uint16 {
	var out []uint16
	i := 0
	for i < len(faces) {
		chain := []Face{faces[i]}
		i++
		slot0, slot1, slot2 := faces[i-1].V[0], faces[i-1].V[1], faces[i-1].V[2]
		for i < len(faces) {
			newSlot0, newSlot1, newSlot2, _, ok := advanceSlots(slot0, slot1, slot2, faces[i])
			if !ok {
				break
			}
			chain = append(chain, faces[i])
			slot0, slot1, slot2 = newSlot0, newSlot1, newSlot2
			i++
		}
		out = emitChain(out, chain, hasUV, hasNormals)
	}
	out = append(out, 0)
	return out
}

// advanceSlots reports whether f is reachable as the successor triangle
// after slots (slot0, slot1, slot2) — f must consist of the outgoing tip
// (slot2) plus exactly one of slot0/slot1, plus one new vertex — and if so
// returns the slot triple after applying it, mirroring pkg/raster's chain
// decoder exactly.
func advanceSlots(slot0, slot1, slot2 int, f Face) (newSlot0, newSlot1, newSlot2 int, retainSlot1, ok bool) {
	hasSlot0, hasSlot1, hasTip := containsVertex(f, slot0), containsVertex(f, slot1), containsVertex(f, slot2)
	switch {
	case hasSlot0 && hasTip && !hasSlot1:
		retainSlot1 = false
	case hasSlot1 && hasTip && !hasSlot0:
		retainSlot1 = true
	default:
		return 0, 0, 0, false, false
	}

	newVertex := -1
	for _, v := range f.V {
		if v != slot0 && v != slot1 && v != slot2 {
			newVertex = v
		}
	}
	if newVertex < 0 {
		return 0, 0, 0, false, false
	}

	oldTip := slot2
	if retainSlot1 {
		slot0 = oldTip
	} else {
		slot1 = oldTip
	}
	return slot0, slot1, newVertex, retainSlot1, true
}

func containsVertex(f Face, v int) bool {
	return f.V[0] == v || f.V[1] == v || f.V[2] == v
}

// emitChain appends one chain's header, initial triangle, and successor
// records to out.
func emitChain(out []uint16, chain []Face, hasUV, hasNormals bool) []uint16 {
	out = append(out, uint16(len(chain)))

	first := chain[0]
	for _, vid := range first.V {
		out = appendVertexRec(out, vid, vid, hasUV, hasNormals)
	}

	slot0, slot1, slot2 := first.V[0], first.V[1], first.V[2]
	for _, f := range chain[1:] {
		newSlot0, newSlot1, newSlot2, retainSlot1, _ := advanceSlots(slot0, slot1, slot2, f)

		encodedVid := newSlot2
		if retainSlot1 {
			// Keep slot 1, evict slot 0: bit 15 set.
			encodedVid |= 0x8000
		}
		out = appendVertexRec(out, encodedVid, newSlot2, hasUV, hasNormals)
		slot0, slot1, slot2 = newSlot0, newSlot1, newSlot2
	}
	return out
}

// appendVertexRec appends one vertex/tid/nid record. encodedVid is the
// index field as written to the stream (possibly with bit 15 set for a
// successor); attrIndex is the plain vertex index used to look up the
// texcoord/normal, since the loader keeps per-corner attributes keyed by
// the same index as position.
func appendVertexRec(out []uint16, encodedVid, attrIndex int, hasUV, hasNormals bool) []uint16 {
	out = append(out, uint16(encodedVid))
	if hasUV {
		out = append(out, uint16(attrIndex))
	}
	if hasNormals {
		out = append(out, uint16(attrIndex))
	}
	return out
}

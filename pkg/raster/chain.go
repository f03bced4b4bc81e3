package raster

import "github.com/soft3d/raster/pkg/vecmath"

// MeshMaterial is a mesh's own material parameters, swapped into the
// Context's derived cache for the duration of a draw call when the
// caller asks to render with "mesh material" rather than the Context's
// currently configured one.
type MeshMaterial struct {
	Color            RGB
	AmbientStrength  float64
	DiffuseStrength  float64
	SpecularStrength float64
	SpecularExponent int
}

// Mesh is the packed, chain-encoded mesh format described in spec.md §6:
// flat vertex/normal/texcoord pools plus a run-length face stream of
// triangle-strip-like chains. pkg/meshfile's loaded meshes implement
// this; pkg/raster never needs to know how a Mesh was loaded.
type Mesh interface {
	Vertices() []vecmath.Vec3
	Normals() []vecmath.Vec3   // nil if the mesh carries no normals
	Texcoords() []vecmath.Vec2 // nil if the mesh carries no texture coordinates
	Faces() []uint16           // the chain-encoded face stream, see decodeChain
	Texture() Texture          // nil if untextured
	Bounds() (min, max vecmath.Vec3)
	Material() MeshMaterial
	Next() Mesh // nil if this is the last mesh in the chain
}

// chainSlot is one of the three traversal slots ("previous two vertices
// plus one new") described in spec.md §4.4. Everything here is computed
// once when the slot is loaded and reused for every subsequent triangle
// that keeps referencing it, so transform and projection are amortized
// across the chain. Shading is not cached in the slot: emitChainTriangle
// evaluates the lighting again for every triangle it emits.
type chainSlot struct {
	ok         bool
	q          vecmath.Vec3 // view-space position
	ndc        vecmath.Vec3
	sx, sy     float64
	invw       float64
	depthOverW float64
	uv         vecmath.Vec2
	uvOverW    vecmath.Vec2
	normal     vecmath.Vec3 // transformed (mult0), zero if mesh has no normals
}

// loadSlot transforms and projects one vertex record, caching everything
// that later triangles referencing this slot can reuse unchanged.
func (c *Context) loadSlot(m Mesh, vid, tid, nid uint16, hasUV, hasNormals bool) chainSlot {
	verts := m.Vertices()
	if int(vid) >= len(verts) {
		return chainSlot{}
	}
	q := c.derived.modelView.MulAsPoint(verts[vid])
	ndc, invw, ok := c.projectVertex(q)
	s := chainSlot{ok: ok, q: q, ndc: ndc, invw: invw, depthOverW: ndc.Z * invw}
	s.sx, s.sy = c.toScreen(ndc)

	if hasUV {
		if uvs := m.Texcoords(); int(tid) < len(uvs) {
			s.uv = uvs[tid]
			s.uvOverW = s.uv.Scale(invw)
		}
	}
	if hasNormals {
		if norms := m.Normals(); int(nid) < len(norms) {
			s.normal = c.derived.modelView.MulAsDirection(norms[nid])
		}
	}
	return s
}

// emitChainTriangle runs the cull/clip/shade/rasterize tail of the
// pipeline for a triangle built from three already-transformed slots.
func (c *Context) emitChainTriangle(s0, s1, s2 chainSlot, tex Texture, flags ShaderFlag, skipClipTest bool) {
	if !s0.ok || !s1.ok || !s2.ok {
		return
	}
	if !skipClipTest {
		if c.coarseClipReject(s0.q.Z, s0.ndc) ||
			c.coarseClipReject(s1.q.Z, s1.ndc) ||
			c.coarseClipReject(s2.q.Z, s2.ndc) {
			return
		}
	}

	faceNormal := s1.q.Sub(s0.q).Cross(s2.q.Sub(s0.q))
	var cameraDot float64
	if c.orthographic {
		cameraDot = faceNormal.Dot(vecmath.V3(0, 0, -1))
	} else {
		cameraDot = faceNormal.Dot(s0.q)
	}
	if c.cullingDir != CullNone && cameraDot*float64(c.cullingDir) > 0 {
		return
	}
	flipSign := c.cullingDir == CullNone && cameraDot > 0
	withTexture := flags&TextureShading != 0

	slots := [3]chainSlot{s0, s1, s2}
	var pv [3]projVertex
	for i, s := range slots {
		pv[i] = projVertex{sx: s.sx, sy: s.sy, invw: s.invw, depthOverW: s.depthOverW, uvOverW: s.uvOverW}
	}

	if flags&GouraudShading != 0 {
		for i, s := range slots {
			col := c.shade(c.phongDots(s.normal, flipSign), withTexture)
			pv[i].colorOverW = col.Scale(s.invw)
		}
	} else {
		n := faceNormal.Normalize()
		col := c.shade(c.phongDots(n, flipSign), withTexture)
		for i := range pv {
			pv[i].colorOverW = col.Scale(slots[i].invw)
		}
	}

	c.rasterizeTriangle(pv, tex, withTexture)
}

// decodeChain walks the face stream grammar of spec.md §6:
//
//	stream  := chain*  0
//	chain   := N  vertex_rec  vertex_rec  vertex_rec  (succ_rec){N-1}
//	vertex_rec := vid [ tid ] [ nid ]
//	succ_rec   := (vid | (vid|0x8000)) [ tid ] [ nid ]
//
// Bit 15 of a successor's vid selects which of the two predecessor
// triangle vertices is retained: clear keeps slot 0 (slot 1 is evicted),
// set keeps slot 1 (slot 0 is evicted). A zero chain header terminates
// the stream.
func (c *Context) decodeChain(m Mesh, flags ShaderFlag, skipClipTest bool) {
	hasUV := m.Texcoords() != nil
	hasNormals := m.Normals() != nil
	tex := m.Texture()
	faces := m.Faces()

	readVertexRec := func(pos int) (slot chainSlot, next int) {
		vid := faces[pos]
		pos++
		var tid, nid uint16
		if hasUV {
			tid = faces[pos]
			pos++
		}
		if hasNormals {
			nid = faces[pos]
			pos++
		}
		return c.loadSlot(m, vid, tid, nid, hasUV, hasNormals), pos
	}

	pos := 0
	for pos < len(faces) {
		n := faces[pos]
		pos++
		if n == 0 {
			break
		}

		var slot [3]chainSlot
		for i := 0; i < 3 && pos < len(faces); i++ {
			slot[i], pos = readVertexRec(pos)
		}
		c.emitChainTriangle(slot[0], slot[1], slot[2], tex, flags, skipClipTest)

		for t := 1; t < int(n) && pos < len(faces); t++ {
			succ := faces[pos]
			pos++
			retainSlot1 := succ&0x8000 != 0
			vid := succ &^ 0x8000

			var tid, nid uint16
			if hasUV {
				tid = faces[pos]
				pos++
			}
			if hasNormals {
				nid = faces[pos]
				pos++
			}

			// The outgoing tip becomes the evicted predecessor's new
			// value; the freshly read vertex becomes the tip.
			oldTip := slot[2]
			if retainSlot1 {
				slot[0] = oldTip
			} else {
				slot[1] = oldTip
			}
			slot[2] = c.loadSlot(m, vid, tid, nid, hasUV, hasNormals)

			c.emitChainTriangle(slot[0], slot[1], slot[2], tex, flags, skipClipTest)
		}
	}
}

package raster

import "github.com/soft3d/raster/pkg/vecmath"

// DrawQuad runs the quad pipeline of spec.md §4.3: four coplanar vertices,
// treated as triangles (0,1,2) and (0,2,3). The culling decision is made
// once on (0,1,2), since coplanarity guarantees triangle (0,2,3) shares
// it. If any of the four vertices fails the coarse clip test the whole
// quad is discarded.
func (c *Context) DrawQuad(pos [4]vecmath.Vec3, normals *[4]vecmath.Vec3, uv *[4]vecmath.Vec2, tex Texture, flags ShaderFlag) int {
	if c.target == nil {
		return ErrNoRasterTarget
	}
	if c.depthTestEnabled() && c.depth == nil {
		return ErrNoDepthBuffer
	}

	flags = maskShaderFlags(flags, normals != nil, uv != nil, tex)

	var q [4]viewSpace
	for i := range pos {
		q[i].q = c.derived.modelView.MulAsPoint(pos[i])
	}
	faceNormal := q[1].q.Sub(q[0].q).Cross(q[2].q.Sub(q[0].q))
	var cameraDot float64
	if c.orthographic {
		cameraDot = faceNormal.Dot(vecmath.V3(0, 0, -1))
	} else {
		cameraDot = faceNormal.Dot(q[0].q)
	}
	if c.cullingDir != CullNone && cameraDot*float64(c.cullingDir) > 0 {
		return DrawOK
	}
	flipSign := c.cullingDir == CullNone && cameraDot > 0

	var pv [4]projVertex
	for i := range pos {
		ndc, invw, ok := c.projectVertex(q[i].q)
		if !ok || c.coarseClipReject(q[i].q.Z, ndc) {
			return DrawOK
		}
		sx, sy := c.toScreen(ndc)
		pv[i] = projVertex{sx: sx, sy: sy, invw: invw, depthOverW: ndc.Z * invw}
		if uv != nil {
			pv[i].uvOverW = uv[i].Scale(invw)
		}
	}

	withTexture := flags&TextureShading != 0
	if flags&GouraudShading != 0 {
		for i := range pos {
			n := c.derived.modelView.MulAsDirection(normals[i])
			col := c.shade(c.phongDots(n, flipSign), withTexture)
			pv[i].colorOverW = col.Scale(pv[i].invw)
		}
	} else {
		n := faceNormal.Normalize()
		col := c.shade(c.phongDots(n, flipSign), withTexture)
		for i := range pv {
			pv[i].colorOverW = col.Scale(pv[i].invw)
		}
	}

	c.rasterizeTriangle([3]projVertex{pv[0], pv[1], pv[2]}, tex, withTexture)
	c.rasterizeTriangle([3]projVertex{pv[0], pv[2], pv[3]}, tex, withTexture)
	return DrawOK
}

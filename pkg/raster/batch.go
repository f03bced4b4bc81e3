package raster

import "github.com/soft3d/raster/pkg/vecmath"

// DrawTriangles draws an array of independent triangles, indexed into a
// shared vertex/normal/uv pool. indices is grouped in runs of three. This
// is the array-oriented sibling of DrawTriangle described in spec.md's
// external interfaces; unlike the single-primitive call, a null required
// array here is a precondition violation rather than something to mask
// around.
func (c *Context) DrawTriangles(vertices []vecmath.Vec3, indices []int, normals []vecmath.Vec3, uv []vecmath.Vec2, tex Texture, flags ShaderFlag) int {
	if c.target == nil {
		return ErrNoRasterTarget
	}
	if c.depthTestEnabled() && c.depth == nil {
		return ErrNoDepthBuffer
	}
	if vertices == nil || indices == nil {
		return ErrMissingGeometry
	}
	if flags&TextureShading != 0 && tex == nil {
		return ErrMissingGeometry
	}

	for i := 0; i+2 < len(indices); i += 3 {
		pos := [3]vecmath.Vec3{vertices[indices[i]], vertices[indices[i+1]], vertices[indices[i+2]]}

		var normPtr *[3]vecmath.Vec3
		if normals != nil {
			norm := [3]vecmath.Vec3{normals[indices[i]], normals[indices[i+1]], normals[indices[i+2]]}
			normPtr = &norm
		}

		var uvPtr *[3]vecmath.Vec2
		if uv != nil {
			u := [3]vecmath.Vec2{uv[indices[i]], uv[indices[i+1]], uv[indices[i+2]]}
			uvPtr = &u
		}

		c.DrawTriangle(pos, normPtr, uvPtr, tex, flags)
	}
	return DrawOK
}

// DrawQuads draws an array of independent quads, indexed into a shared
// vertex/normal/uv pool. indices is grouped in runs of four.
func (c *Context) DrawQuads(vertices []vecmath.Vec3, indices []int, normals []vecmath.Vec3, uv []vecmath.Vec2, tex Texture, flags ShaderFlag) int {
	if c.target == nil {
		return ErrNoRasterTarget
	}
	if c.depthTestEnabled() && c.depth == nil {
		return ErrNoDepthBuffer
	}
	if vertices == nil || indices == nil {
		return ErrMissingGeometry
	}
	if flags&TextureShading != 0 && tex == nil {
		return ErrMissingGeometry
	}

	for i := 0; i+3 < len(indices); i += 4 {
		pos := [4]vecmath.Vec3{
			vertices[indices[i]], vertices[indices[i+1]],
			vertices[indices[i+2]], vertices[indices[i+3]],
		}

		var normPtr *[4]vecmath.Vec3
		if normals != nil {
			norm := [4]vecmath.Vec3{
				normals[indices[i]], normals[indices[i+1]],
				normals[indices[i+2]], normals[indices[i+3]],
			}
			normPtr = &norm
		}

		var uvPtr *[4]vecmath.Vec2
		if uv != nil {
			u := [4]vecmath.Vec2{
				uv[indices[i]], uv[indices[i+1]],
				uv[indices[i+2]], uv[indices[i+3]],
			}
			uvPtr = &u
		}

		c.DrawQuad(pos, normPtr, uvPtr, tex, flags)
	}
	return DrawOK
}

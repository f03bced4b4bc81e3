package raster

import (
	"github.com/soft3d/raster/pkg/vecmath"
)

// ShaderFlag selects which of flat/gouraud/texture shading a primitive
// draw call should attempt. Flags whose required inputs are absent are
// masked off rather than causing an error.
type ShaderFlag uint8

const (
	FlatShading    ShaderFlag = 1 << 0 // uniform color per face
	GouraudShading ShaderFlag = 1 << 1 // per-vertex color, overrides flat when normals are available
	TextureShading ShaderFlag = 1 << 2 // perspective-correct sampled, may combine with either
)

// Texture is the interface the rasterizer samples through; pkg/meshfile's
// loaded textures implement it. Kept as an interface (rather than a
// concrete type) so this package never needs to import the asset-loading
// package.
type Texture interface {
	Sample(u, v float64) RGB
}

// maskShaderFlags drops flags whose required inputs are missing: GOURAUD
// needs per-vertex normals, TEXTURE needs both texture coordinates and an
// attached image.
func maskShaderFlags(flags ShaderFlag, hasNormals, hasUV bool, tex Texture) ShaderFlag {
	if !hasNormals {
		flags &^= GouraudShading
	}
	if !hasUV || tex == nil {
		flags &^= TextureShading
	}
	return flags
}

// projVertex is a vertex after the model-view transform, projection, and
// shading steps: everything the low-level rasterizer needs, already
// divided through by w where the attribute must be perspective-correct
// (screen position excepted, which is the basis of the barycentric test
// itself).
type projVertex struct {
	sx, sy     float64 // screen coordinates, tile-relative
	invw       float64
	depthOverW float64
	colorOverW RGB
	uvOverW    vecmath.Vec2
}

// viewSpace holds the per-vertex state the pipeline carries between the
// transform, cull, and project steps of §4.2.
type viewSpace struct {
	q      vecmath.Vec3 // view-space position
	normal vecmath.Vec3 // view-space normal (mult0), zero if absent
}

// transformAndCull runs steps 1-2 of the single-triangle pipeline:
// transform to view space and test the face for back/front facing.
// Returns the view-space vertices, the (unnormalized) face normal, the
// camera-facing dot product, and whether the triangle should be
// discarded outright by culling.
func (c *Context) transformAndCull(pos [3]vecmath.Vec3) (vs [3]viewSpace, faceNormal vecmath.Vec3, cameraDot float64, discard bool) {
	for i := range pos {
		vs[i].q = c.derived.modelView.MulAsPoint(pos[i])
	}
	faceNormal = vs[1].q.Sub(vs[0].q).Cross(vs[2].q.Sub(vs[0].q))
	if c.orthographic {
		cameraDot = faceNormal.Dot(vecmath.V3(0, 0, -1))
	} else {
		cameraDot = faceNormal.Dot(vs[0].q)
	}
	if c.cullingDir != CullNone && cameraDot*float64(c.cullingDir) > 0 {
		discard = true
	}
	return
}

// projectVertex runs step 3: project a view-space position through the
// (Y-flipped) projection matrix, performing the perspective divide or
// substituting the orthographic "2-z" trick. It returns NDC; toScreen maps
// that into tile-relative screen coordinates.
func (c *Context) projectVertex(q vecmath.Vec3) (ndc vecmath.Vec3, invw float64, ok bool) {
	clip := c.projMatrix.MulVec4(vecmath.V4FromV3(q, 1))
	if c.orthographic {
		ndc = clip.Vec3()
		w := 2 - ndc.Z
		if w == 0 {
			return ndc, 0, false
		}
		invw = 1 / w
	} else {
		if clip.W == 0 {
			return ndc, 0, false
		}
		ndc = clip.PerspectiveDivide()
		invw = 1 / clip.W
	}
	return ndc, invw, true
}

// coarseClipReject implements step 4: the conservative reject described
// in spec.md's discussion of the coarse clip test. qz is the view-space
// depth (pre-projection); ndc is the projected position.
func (c *Context) coarseClipReject(qz float64, ndc vecmath.Vec3) bool {
	bound := c.coarseClipBound()
	return qz >= 0 ||
		ndc.X < -bound || ndc.X > bound ||
		ndc.Y < -bound || ndc.Y > bound ||
		ndc.Z < -1 || ndc.Z > 1
}

// toScreen maps an NDC position (already Y-flip-corrected by the stored
// projection matrix) into viewport pixel coordinates, then offsets by the
// tile origin to get target-relative coordinates.
func (c *Context) toScreen(ndc vecmath.Vec3) (sx, sy float64) {
	vx := (ndc.X + 1) * 0.5 * float64(c.lx-1)
	vy := (ndc.Y + 1) * 0.5 * float64(c.ly-1)
	return vx - float64(c.ox), vy - float64(c.oy)
}

// ProjectPoint runs the transform and projection steps for a single
// model-space point, without any face culling or shading: the model-view
// and projection matrices currently set on the Context, followed by the
// perspective divide (or orthographic substitute) and the screen mapping.
// ok is false when the point lies behind the eye or on the w=0 plane.
// Grounded on the same single-point screen-space need a camera-driven
// overlay (wireframe, debug markers) has, independent of the triangle
// rasterizer's cull/shade/depth steps.
func (c *Context) ProjectPoint(p vecmath.Vec3) (sx, sy float64, ok bool) {
	q := c.derived.modelView.MulAsPoint(p)
	ndc, _, ok := c.projectVertex(q)
	if !ok || q.Z >= 0 {
		return 0, 0, false
	}
	sx, sy = c.toScreen(ndc)
	return sx, sy, true
}

// DrawTriangle runs the full single-triangle pipeline: transform, cull,
// project, coarse clip test, shade, and rasterize. normals and uv may be
// nil; flags are masked down to whatever inputs are actually available.
func (c *Context) DrawTriangle(pos [3]vecmath.Vec3, normals *[3]vecmath.Vec3, uv *[3]vecmath.Vec2, tex Texture, flags ShaderFlag) int {
	if c.target == nil {
		return ErrNoRasterTarget
	}
	if c.depthTestEnabled() && c.depth == nil {
		return ErrNoDepthBuffer
	}

	flags = maskShaderFlags(flags, normals != nil, uv != nil, tex)

	vs, faceNormal, cameraDot, discard := c.transformAndCull(pos)
	if discard {
		return DrawOK
	}
	flipSign := c.cullingDir == CullNone && cameraDot > 0

	var pv [3]projVertex
	for i := range pos {
		ndc, invw, ok := c.projectVertex(vs[i].q)
		if !ok || c.coarseClipReject(vs[i].q.Z, ndc) {
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

	c.rasterizeTriangle(pv, tex, withTexture)
	return DrawOK
}

// depthTestEnabled reports whether depth testing is in effect for this
// Context. Depth testing is on by default (NewContext) and is switched
// with SetDepthTestEnabled; while it is on, draw calls require an attached
// depth buffer. This is the on/off knob described in spec.md §6.
func (c *Context) depthTestEnabled() bool {
	return c.depthTestWanted
}

// SetDepthTestEnabled turns depth testing on or off. When on, draw calls
// require an attached depth buffer (ErrNoDepthBuffer otherwise) and
// fragments are rejected unless nearer than the stored value. When off,
// later primitives always overwrite earlier ones at the same pixel.
func (c *Context) SetDepthTestEnabled(enabled bool) {
	c.depthTestWanted = enabled
}

// edgeFn evaluates the 2D edge function for the directed edge a->b at
// point p: positive on one side, negative on the other, zero on the line.
func edgeFn(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// rasterizeTriangle walks the screen-space bounding box of pv, testing
// each pixel center with the edge function and, for pixels inside the
// triangle, perspective-correcting the interpolated depth/color/uv before
// the depth test and pixel write.
func (c *Context) rasterizeTriangle(pv [3]projVertex, tex Texture, withTexture bool) {
	area := edgeFn(pv[0].sx, pv[0].sy, pv[1].sx, pv[1].sy, pv[2].sx, pv[2].sy)
	if area == 0 {
		return
	}

	minX, maxX, minY, maxY := triBounds(pv, c.target.Width, c.target.Height)
	if minX > maxX || minY > maxY {
		return
	}

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			w0 := edgeFn(pv[1].sx, pv[1].sy, pv[2].sx, pv[2].sy, px, py) / area
			w1 := edgeFn(pv[2].sx, pv[2].sy, pv[0].sx, pv[0].sy, px, py) / area
			w2 := edgeFn(pv[0].sx, pv[0].sy, pv[1].sx, pv[1].sy, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			invw := w0*pv[0].invw + w1*pv[1].invw + w2*pv[2].invw
			if invw == 0 {
				continue
			}
			w := 1 / invw
			depth := (w0*pv[0].depthOverW + w1*pv[1].depthOverW + w2*pv[2].depthOverW) * w

			// The depth buffer is indexed in viewport space, not
			// tile-relative space, so it stays valid across tiles
			// rendered with different offsets.
			depthIdx := -1
			if c.depthTestEnabled() {
				vx := x + c.ox
				vy := y + c.oy
				depthIdx = vy*c.lx + vx
				if depthIdx < 0 || depthIdx >= len(c.depth) || depth >= c.depth[depthIdx] {
					continue
				}
			}

			col := RGB{
				R: (w0*pv[0].colorOverW.R + w1*pv[1].colorOverW.R + w2*pv[2].colorOverW.R) * w,
				G: (w0*pv[0].colorOverW.G + w1*pv[1].colorOverW.G + w2*pv[2].colorOverW.G) * w,
				B: (w0*pv[0].colorOverW.B + w1*pv[1].colorOverW.B + w2*pv[2].colorOverW.B) * w,
			}

			if withTexture {
				u := (w0*pv[0].uvOverW.X + w1*pv[1].uvOverW.X + w2*pv[2].uvOverW.X) * w
				v := (w0*pv[0].uvOverW.Y + w1*pv[1].uvOverW.Y + w2*pv[2].uvOverW.Y) * w
				col = col.Mul(tex.Sample(u, v))
			}

			if depthIdx >= 0 {
				c.depth[depthIdx] = depth
			}
			c.target.SetPixel(x, y, col.ToRGBA())
		}
	}
}

// triBounds clamps the triangle's screen bounding box to the raster
// target's actual dimensions.
func triBounds(pv [3]projVertex, width, height int) (minX, maxX, minY, maxY int) {
	fminX := min3f(pv[0].sx, pv[1].sx, pv[2].sx)
	fmaxX := max3f(pv[0].sx, pv[1].sx, pv[2].sx)
	fminY := min3f(pv[0].sy, pv[1].sy, pv[2].sy)
	fmaxY := max3f(pv[0].sy, pv[1].sy, pv[2].sy)

	minX = clampInt(int(fminX), 0, width-1)
	maxX = clampInt(int(fmaxX)+1, 0, width-1)
	minY = clampInt(int(fminY), 0, height-1)
	maxY = clampInt(int(fmaxY)+1, 0, height-1)
	return
}

func min3f(a, b, c float64) float64 {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

func max3f(a, b, c float64) float64 {
	if a > b {
		if a > c {
			return a
		}
		return c
	}
	if b > c {
		return b
	}
	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

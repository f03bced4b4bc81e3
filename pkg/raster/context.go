package raster

import (
	"github.com/soft3d/raster/pkg/vecmath"
)

// Culling direction values for Context.SetCulling.
const (
	CullCCW     = -1 // discard counter-clockwise-facing triangles
	CullNone    = 0  // render both winding orders
	CullCW      = +1 // discard clockwise-facing triangles
)

// Return codes shared by every draw entry point.
const (
	DrawOK                 = 0
	ErrNoRasterTarget      = -1
	ErrNoDepthBuffer       = -2
	ErrMissingGeometry     = -3
)

// derived holds every value recomputed from Context's inputs. Nothing in
// this struct is set directly by a caller; it only changes as a side
// effect of a setter on Context.
type derived struct {
	modelView   vecmath.Mat4
	normInverse float64

	lightView  vecmath.Vec3 // unit vector, surface -> light, view space, scaled by normInverse
	halfVector vecmath.Vec3 // normalize(lightView + (0,0,1)), scaled by normInverse

	premulAmbient  RGB
	premulDiffuse  RGB
	premulSpecular RGB
	objectColor    RGB
}

// Context is the long-lived renderer state: projection/view/model
// matrices, light and material parameters, the attached raster target and
// depth buffer, and the cache of values derived from all of the above. It
// corresponds to one frame target; multiple independent Contexts (with
// disjoint raster targets) may be used from separate goroutines, but a
// single Context must not be driven from more than one goroutine at once.
type Context struct {
	lx, ly int // viewport size, [1,2048]
	ox, oy int // tile offset within the viewport

	target          *Framebuffer
	depth           []float64
	depthTestWanted bool

	projMatrix      vecmath.Mat4 // stored with Y row already inverted
	orthographic    bool
	viewMatrix      vecmath.Mat4
	modelMatrix     vecmath.Mat4

	lightDirWorld vecmath.Vec3
	ambientColor  RGB
	diffuseColor  RGB
	specularColor RGB

	materialColor     RGB
	ambientStrength   float64
	diffuseStrength   float64
	specularStrength  float64
	specularExponent  int

	cullingDir int

	derived derived

	powTable         [16]float64
	powTableExponent int
	powTableValid    bool
}

// NewContext creates a renderer context for an LX x LY viewport. LX and LY
// must be in [1, 2048]. Defaults mirror a typical fixed-function renderer:
// identity matrices, white ambient, diffuse and specular light, neutral
// silver-ish material, back-face culling of clockwise triangles.
func NewContext(lx, ly int) *Context {
	c := &Context{
		lx: lx, ly: ly,
		projMatrix:       vecmath.Identity(),
		viewMatrix:       vecmath.Identity(),
		modelMatrix:      vecmath.Identity(),
		lightDirWorld:    vecmath.V3(0, 0, -1),
		ambientColor:     White(),
		diffuseColor:     White(),
		specularColor:    White(),
		materialColor:    RGB{0.75, 0.75, 0.75},
		ambientStrength:  0.15,
		diffuseStrength:  0.7,
		specularStrength: 0.5,
		specularExponent: 16,
		cullingDir:       CullCW,
		depthTestWanted:  true,
	}
	c.recomputeModelView()
	c.recomputeMaterial()
	return c
}

// Viewport returns the configured viewport dimensions.
func (c *Context) Viewport() (lx, ly int) { return c.lx, c.ly }

// SetOffset positions the raster target within the viewport, supporting
// tile rendering.
func (c *Context) SetOffset(ox, oy int) {
	c.ox, c.oy = ox, oy
}

// Offset returns the current tile offset.
func (c *Context) Offset() (ox, oy int) { return c.ox, c.oy }

// SetTarget attaches the raster target. The target's dimensions must not
// exceed the viewport; it is the caller's responsibility to keep it
// attached for the duration of any draw call.
func (c *Context) SetTarget(fb *Framebuffer) {
	c.target = fb
}

// SetDepthBuffer attaches a depth buffer; it is never allocated or freed
// by the Context. Draw calls check only that a buffer is attached, not its
// length: with fewer than LX*LY entries they still return DrawOK, and
// pixels whose depth index lies past the end of buf are not drawn.
func (c *Context) SetDepthBuffer(buf []float64) {
	c.depth = buf
}

// ClearDepthBuffer resets the attached depth buffer to math.MaxFloat64 (far), so the
// first write anywhere always passes the "nearer wins" test. No-op if no
// depth buffer is attached.
func (c *Context) ClearDepthBuffer() {
	if c.depth == nil {
		return
	}
	ClearDepthBuffer(c.depth)
}

// SetProjectionMatrix stores m as the projection matrix. Internally the Y
// row is inverted once here, since the raster target's Y grows downward
// while NDC Y grows upward; GetProjectionMatrix undoes the flip so callers
// always see the matrix they supplied.
func (c *Context) SetProjectionMatrix(m vecmath.Mat4) {
	m.InvertYAxis()
	c.projMatrix = m
}

// GetProjectionMatrix returns the projection matrix as originally
// supplied (the internal Y flip is undone).
func (c *Context) GetProjectionMatrix() vecmath.Mat4 {
	m := c.projMatrix
	m.InvertYAxis()
	return m
}

// SetOrtho configures an orthographic projection. The perspective divide
// is skipped for primitives drawn under this projection.
func (c *Context) SetOrtho(left, right, bottom, top, near, far float64) {
	var m vecmath.Mat4
	m.SetOrtho(left, right, bottom, top, near, far)
	c.orthographic = true
	c.SetProjectionMatrix(m)
}

// SetFrustum configures a perspective projection from frustum bounds.
func (c *Context) SetFrustum(left, right, bottom, top, near, far float64) {
	var m vecmath.Mat4
	m.SetFrustum(left, right, bottom, top, near, far)
	c.orthographic = false
	c.SetProjectionMatrix(m)
}

// SetPerspective configures a perspective projection from a vertical
// field of view (radians), aspect ratio, near and far planes.
func (c *Context) SetPerspective(fovy, aspect, near, far float64) {
	var m vecmath.Mat4
	m.SetPerspective(fovy, aspect, near, far)
	c.orthographic = false
	c.SetProjectionMatrix(m)
}

// SetViewMatrix stores the world-to-view matrix and recomputes every value
// derived from it.
func (c *Context) SetViewMatrix(m vecmath.Mat4) {
	c.viewMatrix = m
	c.recomputeModelView()
}

// GetViewMatrix returns the current view matrix.
func (c *Context) GetViewMatrix() vecmath.Mat4 { return c.viewMatrix }

// SetLookAt builds and stores the view matrix from an eye/center/up triple.
func (c *Context) SetLookAt(eye, center, up vecmath.Vec3) {
	var m vecmath.Mat4
	m.SetLookAt(eye, center, up)
	c.SetViewMatrix(m)
}

// SetModelMatrix stores the local-to-world matrix and recomputes every
// value derived from it.
func (c *Context) SetModelMatrix(m vecmath.Mat4) {
	c.modelMatrix = m
	c.recomputeModelView()
}

// GetModelMatrix returns the current model matrix.
func (c *Context) GetModelMatrix() vecmath.Mat4 { return c.modelMatrix }

// SetLightDirection sets the light's world-space direction and recomputes
// the view-space light vector and half-vector.
func (c *Context) SetLightDirection(dir vecmath.Vec3) {
	c.lightDirWorld = dir
	c.recomputeLight()
}

// SetLightAmbient sets the light's ambient color and recomputes the
// premultiplied material cache.
func (c *Context) SetLightAmbient(col RGB) {
	c.ambientColor = col
	c.recomputeMaterial()
}

// SetLightDiffuse sets the light's diffuse color.
func (c *Context) SetLightDiffuse(col RGB) {
	c.diffuseColor = col
	c.recomputeMaterial()
}

// SetLightSpecular sets the light's specular color.
func (c *Context) SetLightSpecular(col RGB) {
	c.specularColor = col
	c.recomputeMaterial()
}

// SetLight sets the light's direction and all three colors in one call.
func (c *Context) SetLight(dir vecmath.Vec3, ambient, diffuse, specular RGB) {
	c.lightDirWorld = dir
	c.ambientColor = ambient
	c.diffuseColor = diffuse
	c.specularColor = specular
	c.recomputeLight()
	c.recomputeMaterial()
}

// SetMaterialColor sets the material's base color.
func (c *Context) SetMaterialColor(col RGB) {
	c.materialColor = col
	c.recomputeMaterial()
}

// SetMaterialAmbientStrength sets how strongly ambient light affects this
// material.
func (c *Context) SetMaterialAmbientStrength(s float64) {
	c.ambientStrength = s
	c.recomputeMaterial()
}

// SetMaterialDiffuseStrength sets how strongly diffuse light affects this
// material.
func (c *Context) SetMaterialDiffuseStrength(s float64) {
	c.diffuseStrength = s
	c.recomputeMaterial()
}

// SetMaterialSpecularStrength sets how strongly specular light affects
// this material.
func (c *Context) SetMaterialSpecularStrength(s float64) {
	c.specularStrength = s
	c.recomputeMaterial()
}

// SetMaterialSpecularExponent sets the Phong specular exponent. The
// specular power table is not rebuilt here; it is rebuilt lazily the next
// time it is needed, keyed off this value.
func (c *Context) SetMaterialSpecularExponent(e int) {
	c.specularExponent = e
}

// SetMaterial sets every material parameter in one call.
func (c *Context) SetMaterial(col RGB, ambientStrength, diffuseStrength, specularStrength float64, exponent int) {
	c.materialColor = col
	c.ambientStrength = ambientStrength
	c.diffuseStrength = diffuseStrength
	c.specularStrength = specularStrength
	c.specularExponent = exponent
	c.recomputeMaterial()
}

// SetCulling sets the culling direction: CullCW discards clockwise-facing
// triangles, CullCCW discards counter-clockwise, CullNone disables
// culling.
func (c *Context) SetCulling(dir int) {
	c.cullingDir = dir
}

// recomputeModelView re-derives the model-view matrix, the normal
// norm-inverse factor, and everything that in turn depends on those (the
// light vector and half-vector are expressed in view space, so they move
// whenever the model-view matrix does).
func (c *Context) recomputeModelView() {
	c.derived.modelView = c.viewMatrix.Mul(c.modelMatrix)
	axisZ := c.derived.modelView.MulAsDirection(vecmath.V3(0, 0, 1))
	if l := axisZ.Len(); l > 0 {
		c.derived.normInverse = 1 / l
	} else {
		c.derived.normInverse = 1
	}
	c.recomputeLight()
}

// recomputeLight re-derives the view-space light vector and half-vector
// from the current light direction and model-view matrix.
func (c *Context) recomputeLight() {
	viewDir := c.derived.modelView.MulAsDirection(c.lightDirWorld).Normalize()
	toSource := viewDir.Negate()
	c.derived.lightView = toSource.Scale(c.derived.normInverse)

	half := toSource.Add(vecmath.V3(0, 0, 1)).Normalize()
	c.derived.halfVector = half.Scale(c.derived.normInverse)
}

// recomputeMaterial re-derives the premultiplied ambient/diffuse/specular
// colors and the effective object color.
func (c *Context) recomputeMaterial() {
	c.derived.premulAmbient = c.ambientColor.Scale(c.ambientStrength)
	c.derived.premulDiffuse = c.diffuseColor.Scale(c.diffuseStrength)
	c.derived.premulSpecular = c.specularColor.Scale(c.specularStrength)
	c.derived.objectColor = c.materialColor
}

// powTableFor returns the 16-entry specular power table for the current
// exponent, rebuilding it only when the exponent has changed since the
// last call. See light.go for the table's domain and interpolation.
func (c *Context) powTableFor() [16]float64 {
	if !c.powTableValid || c.powTableExponent != c.specularExponent {
		c.powTable = buildSpecularTable(c.specularExponent)
		c.powTableExponent = c.specularExponent
		c.powTableValid = true
	}
	return c.powTable
}

// withMeshMaterial temporarily swaps the derived material cache for a
// mesh's own material, returning a function that restores the prior
// cache. Used by mesh traversal when the caller requests "use mesh
// material" instead of the Context's own.
func (c *Context) withMeshMaterial(col RGB, ambientStrength, diffuseStrength, specularStrength float64, exponent int) func() {
	savedColor, savedA, savedD, savedS, savedE := c.materialColor, c.ambientStrength, c.diffuseStrength, c.specularStrength, c.specularExponent
	c.SetMaterial(col, ambientStrength, diffuseStrength, specularStrength, exponent)
	return func() {
		c.SetMaterial(savedColor, savedA, savedD, savedS, savedE)
	}
}

// DrawMesh traverses a chain-encoded mesh (and, through Next, every mesh
// linked after it), running the cull/clip/shade/rasterize pipeline over
// its packed face stream. If useMeshMaterial is set, each mesh's own
// material temporarily replaces the Context's configured material for the
// duration of that mesh's traversal.
func (c *Context) DrawMesh(m Mesh, flags ShaderFlag, useMeshMaterial bool) int {
	if c.target == nil {
		return ErrNoRasterTarget
	}
	if c.depthTestEnabled() && c.depth == nil {
		return ErrNoDepthBuffer
	}

	for mesh := m; mesh != nil; mesh = mesh.Next() {
		if mesh.Vertices() == nil || mesh.Faces() == nil {
			return ErrMissingGeometry
		}
		meshFlags := maskShaderFlags(flags, mesh.Normals() != nil, mesh.Texcoords() != nil, mesh.Texture())

		var restore func()
		if useMeshMaterial {
			mat := mesh.Material()
			restore = c.withMeshMaterial(mat.Color, mat.AmbientStrength, mat.DiffuseStrength, mat.SpecularStrength, mat.SpecularExponent)
		}

		skip, skipClipTest := false, false
		if min, max := mesh.Bounds(); !(AABB{Min: min, Max: max}).IsZero() {
			viewProj := c.projMatrix.Mul(c.derived.modelView)
			skip, skipClipTest = meshClipState(AABB{Min: min, Max: max}, viewProj, c.coarseClipBound())
		}
		if !skip {
			c.decodeChain(mesh, meshFlags, skipClipTest)
		}

		if restore != nil {
			restore()
		}
	}
	return DrawOK
}

// coarseClipBound is the conservative projected-coordinate bound used by
// the per-primitive clip test: bound = 2048 / max(LX,LY).
func (c *Context) coarseClipBound() float64 {
	m := c.lx
	if c.ly > m {
		m = c.ly
	}
	return 2048 / float64(m)
}

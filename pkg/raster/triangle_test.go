package raster

import (
	"math"
	"testing"

	"github.com/soft3d/raster/pkg/vecmath"
)

func newTestContext(w, h int) *Context {
	c := NewContext(w, h)
	c.SetTarget(NewFramebuffer(w, h))
	c.SetDepthBuffer(NewDepthBuffer(w, h))
	c.SetOrtho(-1, 1, -1, 1, 0.1, 10)
	var view vecmath.Mat4
	view.SetLookAt(vecmath.V3(0, 0, 5), vecmath.Zero3(), vecmath.V3(0, 1, 0))
	c.SetViewMatrix(view)
	c.SetLight(vecmath.V3(0, 0, -1), White(), White(), Black())
	c.SetMaterial(White(), 1, 0, 0, 1)
	c.SetCulling(CullNone)
	return c
}

// A large CCW triangle facing the camera, filling most of the viewport.
func coveringTriangle() [3]vecmath.Vec3 {
	return [3]vecmath.Vec3{
		{X: -0.8, Y: -0.8, Z: 0},
		{X: 0.8, Y: -0.8, Z: 0},
		{X: 0, Y: 0.8, Z: 0},
	}
}

func TestDrawTriangleRendersInteriorPixel(t *testing.T) {
	c := newTestContext(32, 32)
	if got := c.DrawTriangle(coveringTriangle(), nil, nil, nil, FlatShading); got != DrawOK {
		t.Fatalf("DrawTriangle() = %d, want DrawOK", got)
	}
	px := c.target.GetPixel(16, 16)
	if px.A == 0 {
		t.Fatal("viewport-center pixel was never written")
	}
	if px.R == 0 && px.G == 0 && px.B == 0 {
		t.Errorf("viewport-center pixel is black, want lit ambient color")
	}
}

func TestDrawTriangleBackfaceCulling(t *testing.T) {
	c := newTestContext(32, 32)
	c.SetCulling(CullCW)

	ccw := coveringTriangle() // winds CCW in NDC, front-facing under CullCW
	c.DrawTriangle(ccw, nil, nil, nil, FlatShading)
	front := c.target.GetPixel(16, 16)
	if front.A == 0 {
		t.Fatal("CCW triangle should render when CullCW discards CW faces")
	}

	c2 := newTestContext(32, 32)
	c2.SetCulling(CullCW)
	cw := ccw
	cw[1], cw[2] = cw[2], cw[1] // reverse winding
	c2.DrawTriangle(cw, nil, nil, nil, FlatShading)
	back := c2.target.GetPixel(16, 16)
	if back.A != 0 {
		t.Error("CW-wound triangle should be discarded under CullCW")
	}
}

func TestDrawTriangleDepthTest(t *testing.T) {
	c := newTestContext(32, 32)
	near := coveringTriangle()
	far := coveringTriangle()
	for i := range far {
		far[i].Z = -5
	}

	// Draw the near triangle in red first, then the far one in blue; the
	// far triangle is drawn second and must not overwrite the nearer red.
	c.SetMaterialColor(RGB{1, 0, 0})
	c.DrawTriangle(near, nil, nil, nil, FlatShading)
	c.SetMaterialColor(RGB{0, 0, 1})
	c.DrawTriangle(far, nil, nil, nil, FlatShading)

	px := c.target.GetPixel(16, 16)
	if px.B > px.R {
		t.Errorf("far triangle drawn after near one won the depth test: pixel=%v", px)
	}
}

func TestDrawTriangleCoarseClipDiscard(t *testing.T) {
	c := newTestContext(32, 32)
	huge := [3]vecmath.Vec3{
		{X: -1e6, Y: -1e6, Z: 0},
		{X: 1e6, Y: -1e6, Z: 0},
		{X: 0, Y: 1e6, Z: 0},
	}
	// A triangle this large projects far outside the coarse clip bound and
	// must be discarded rather than rasterized against a bogus screen box.
	if got := c.DrawTriangle(huge, nil, nil, nil, FlatShading); got != DrawOK {
		t.Fatalf("DrawTriangle() = %d, want DrawOK (discard is silent)", got)
	}
	px := c.target.GetPixel(16, 16)
	if px.A != 0 {
		t.Error("triangle outside the coarse clip bound should not have been rasterized")
	}
}

func TestMaskShaderFlagsDropsUnavailableInputs(t *testing.T) {
	flags := GouraudShading | TextureShading
	got := maskShaderFlags(flags, false, false, nil)
	if got&GouraudShading != 0 {
		t.Error("GouraudShading should be masked off without normals")
	}
	if got&TextureShading != 0 {
		t.Error("TextureShading should be masked off without uv/texture")
	}
}

func TestOrthographicProjectVertex(t *testing.T) {
	c := newTestContext(16, 16)
	q := vecmath.V3(0, 0, -2) // 2 units in front of the camera
	ndc, invw, ok := c.projectVertex(q)
	if !ok {
		t.Fatal("projectVertex failed for a point in front of the camera")
	}
	wantW := 2 - ndc.Z
	if math.Abs(1/invw-wantW) > 1e-9 {
		t.Errorf("invw = %v, want 1/(2-z) = %v", invw, 1/wantW)
	}
}

func TestEdgeFnSignConsistentWithArea(t *testing.T) {
	area := edgeFn(0, 0, 1, 0, 0, 1)
	inside := edgeFn(0, 0, 1, 0, 0.25, 0.25)
	if (area > 0) != (inside > 0) {
		t.Error("edge function sign for an interior point should match the triangle area's sign")
	}
}

package raster

import (
	"math"
	"testing"

	"github.com/soft3d/raster/pkg/vecmath"
)

func TestNewContextDefaults(t *testing.T) {
	c := NewContext(64, 48)
	lx, ly := c.Viewport()
	if lx != 64 || ly != 48 {
		t.Fatalf("Viewport() = (%d,%d), want (64,48)", lx, ly)
	}
	if c.cullingDir != CullCW {
		t.Errorf("default culling = %d, want CullCW", c.cullingDir)
	}
	if !c.depthTestEnabled() {
		t.Error("depth testing should default to enabled")
	}
}

func TestSetProjectionMatrixRoundTrip(t *testing.T) {
	c := NewContext(32, 32)
	var want vecmath.Mat4
	want.SetPerspective(math.Pi/3, 1, 0.1, 100)

	c.SetProjectionMatrix(want)
	got := c.GetProjectionMatrix()

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("GetProjectionMatrix()[%d] = %v, want %v (internal Y flip leaked)", i, got[i], want[i])
		}
	}
}

func TestRecomputeModelViewIsIdempotent(t *testing.T) {
	c := NewContext(16, 16)
	c.SetLightDirection(vecmath.V3(1, -1, 0.5))

	var view vecmath.Mat4
	view.SetLookAt(vecmath.V3(0, 0, 5), vecmath.Zero3(), vecmath.V3(0, 1, 0))
	c.SetViewMatrix(view)

	first := c.derived
	c.recomputeModelView()
	second := c.derived

	if first.lightView != second.lightView || first.halfVector != second.halfVector {
		t.Error("recomputeModelView is not idempotent for a stationary camera and light")
	}
}

func TestCoarseClipBound(t *testing.T) {
	c := NewContext(1024, 256)
	want := 2048.0 / 1024.0
	if got := c.coarseClipBound(); got != want {
		t.Errorf("coarseClipBound() = %v, want %v", got, want)
	}
}

func TestSetMaterialRecomputesObjectColor(t *testing.T) {
	c := NewContext(8, 8)
	c.SetMaterial(RGB{0.2, 0.4, 0.6}, 0.1, 0.5, 0.3, 32)
	if c.derived.objectColor != (RGB{0.2, 0.4, 0.6}) {
		t.Errorf("objectColor = %v, want {0.2 0.4 0.6}", c.derived.objectColor)
	}
	if c.derived.premulDiffuse != (RGB{0.5, 0.5, 0.5}) {
		t.Errorf("premulDiffuse = %v, want white light scaled by 0.5", c.derived.premulDiffuse)
	}
}

func TestDrawTriangleReturnCodes(t *testing.T) {
	pos := [3]vecmath.Vec3{{X: -1}, {X: 1}, {Y: 1}}

	t.Run("no target", func(t *testing.T) {
		c := NewContext(8, 8)
		if got := c.DrawTriangle(pos, nil, nil, nil, FlatShading); got != ErrNoRasterTarget {
			t.Errorf("DrawTriangle() = %d, want ErrNoRasterTarget", got)
		}
	})

	t.Run("no depth buffer", func(t *testing.T) {
		c := NewContext(8, 8)
		c.SetTarget(NewFramebuffer(8, 8))
		if got := c.DrawTriangle(pos, nil, nil, nil, FlatShading); got != ErrNoDepthBuffer {
			t.Errorf("DrawTriangle() = %d, want ErrNoDepthBuffer", got)
		}
	})

	t.Run("ok", func(t *testing.T) {
		c := NewContext(8, 8)
		c.SetTarget(NewFramebuffer(8, 8))
		c.SetDepthBuffer(NewDepthBuffer(8, 8))
		if got := c.DrawTriangle(pos, nil, nil, nil, FlatShading); got != DrawOK {
			t.Errorf("DrawTriangle() = %d, want DrawOK", got)
		}
	})
}

func TestDrawTrianglesMissingGeometry(t *testing.T) {
	c := NewContext(8, 8)
	c.SetTarget(NewFramebuffer(8, 8))
	c.SetDepthBuffer(NewDepthBuffer(8, 8))

	if got := c.DrawTriangles(nil, []int{0, 1, 2}, nil, nil, nil, FlatShading); got != ErrMissingGeometry {
		t.Errorf("DrawTriangles() with nil vertices = %d, want ErrMissingGeometry", got)
	}
	if got := c.DrawTriangles([]vecmath.Vec3{{}}, nil, nil, nil, nil, FlatShading); got != ErrMissingGeometry {
		t.Errorf("DrawTriangles() with nil indices = %d, want ErrMissingGeometry", got)
	}
}

package raster

import (
	"testing"

	"github.com/soft3d/raster/pkg/vecmath"
)

func TestFrustumIntersectAABB(t *testing.T) {
	var proj vecmath.Mat4
	proj.SetPerspective(1.0, 1.0, 0.1, 100)
	f := NewFrustumFromMatrix(proj)

	inside := AABB{Min: vecmath.V3(-0.1, -0.1, -2), Max: vecmath.V3(0.1, 0.1, -1)}
	if !f.IntersectAABB(inside) {
		t.Error("box directly in front of the camera should intersect the frustum")
	}

	behind := AABB{Min: vecmath.V3(-0.1, -0.1, 1), Max: vecmath.V3(0.1, 0.1, 2)}
	if f.IntersectAABB(behind) {
		t.Error("box behind the camera should not intersect the frustum")
	}
}

func TestFrustumContainsAABB(t *testing.T) {
	var proj vecmath.Mat4
	proj.SetPerspective(1.2, 1.0, 0.1, 100)
	f := NewFrustumFromMatrix(proj)

	tiny := AABB{Min: vecmath.V3(-0.01, -0.01, -5), Max: vecmath.V3(0.01, 0.01, -4.9)}
	if !f.ContainsAABB(tiny) {
		t.Error("a tiny box well within the frustum should be fully contained")
	}

	straddling := AABB{Min: vecmath.V3(-100, -100, -5), Max: vecmath.V3(100, 100, -4)}
	if f.ContainsAABB(straddling) {
		t.Error("a box straddling the frustum bounds should not be reported as fully contained")
	}
}

func TestMeshClipStateDiscardsOutsideBox(t *testing.T) {
	var proj vecmath.Mat4
	proj.SetPerspective(1.0, 1.0, 0.1, 100)

	box := AABB{Min: vecmath.V3(-0.1, -0.1, 1), Max: vecmath.V3(0.1, 0.1, 2)} // behind the camera
	discard, _ := meshClipState(box, proj, 2)
	if !discard {
		t.Error("mesh entirely behind the camera should be discarded")
	}
}

func TestMeshClipStateSkipsClipTestWhenWellInside(t *testing.T) {
	var proj vecmath.Mat4
	proj.SetPerspective(1.2, 1.0, 0.1, 100)

	box := AABB{Min: vecmath.V3(-0.001, -0.001, -5), Max: vecmath.V3(0.001, 0.001, -4.999)}
	discard, skipClipTest := meshClipState(box, proj, 2)
	if discard {
		t.Fatal("tiny centered box should not be discarded")
	}
	if !skipClipTest {
		t.Error("tiny centered box should be well inside the loose clip bound")
	}
}

func TestAABBIsZero(t *testing.T) {
	if !(AABB{}).IsZero() {
		t.Error("the zero-value AABB should report IsZero")
	}
	nonZero := AABB{Min: vecmath.V3(0, 0, 0), Max: vecmath.V3(1, 1, 1)}
	if nonZero.IsZero() {
		t.Error("a box with a nonzero extent should not report IsZero")
	}
}

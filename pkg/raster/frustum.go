package raster

import (
	"github.com/soft3d/raster/pkg/vecmath"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal vecmath.Vec3
	D      float64
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	len := p.Normal.Len()
	if len == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / len)
	p.D /= len
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point vecmath.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum represents the 6 planes of a view frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a combined
// view-projection matrix, clipping X and Y to the standard [-w, w] bound.
// Uses the Gribb/Hartmann method. The resulting planes have normals
// pointing inward.
func NewFrustumFromMatrix(m vecmath.Mat4) Frustum {
	return newFrustumFromMatrix(m, 1)
}

// newFrustumFromMatrix is NewFrustumFromMatrix generalized to an arbitrary
// X/Y clip bound, used by buildLooseFrustum to extract a frustum clipped to
// the conservative coarse-clip bound instead of the standard +-1.
func newFrustumFromMatrix(m vecmath.Mat4, xyBound float64) Frustum {
	var f Frustum

	// For column-major matrix m, row i element j is at m[i + j*4].
	// Row 0: m[0], m[4], m[8], m[12]
	// Row 1: m[1], m[5], m[9], m[13]
	// Row 2: m[2], m[6], m[10], m[14]
	// Row 3: m[3], m[7], m[11], m[15]

	row0 := vecmath.V3(m[0], m[4], m[8])
	row1 := vecmath.V3(m[1], m[5], m[9])
	row2 := vecmath.V3(m[2], m[6], m[10])
	row3 := vecmath.V3(m[3], m[7], m[11])
	d0, d1, d2, d3 := m[12], m[13], m[14], m[15]

	scaledRow0 := row0.Scale(1 / xyBound)
	scaledRow1 := row1.Scale(1 / xyBound)
	scaledD0 := d0 / xyBound
	scaledD1 := d1 / xyBound

	f.Planes[FrustumLeft] = Plane{Normal: row3.Add(scaledRow0), D: d3 + scaledD0}
	f.Planes[FrustumRight] = Plane{Normal: row3.Sub(scaledRow0), D: d3 - scaledD0}
	f.Planes[FrustumBottom] = Plane{Normal: row3.Add(scaledRow1), D: d3 + scaledD1}
	f.Planes[FrustumTop] = Plane{Normal: row3.Sub(scaledRow1), D: d3 - scaledD1}
	f.Planes[FrustumNear] = Plane{Normal: row3.Add(row2), D: d3 + d2}
	f.Planes[FrustumFar] = Plane{Normal: row3.Sub(row2), D: d3 - d2}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// buildLooseFrustum extracts a frustum clipped to +-bound on X and Y
// instead of the standard +-1, matching the conservative coarse clip test
// applied per-triangle (see Context.coarseClipBound).
func buildLooseFrustum(m vecmath.Mat4, bound float64) Frustum {
	return newFrustumFromMatrix(m, bound)
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min vecmath.Vec3
	Max vecmath.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max vecmath.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the AABB.
func (b AABB) Center() vecmath.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() vecmath.Vec3 {
	return b.Max.Sub(b.Min)
}

// HalfSize returns half the dimensions (extents from center).
func (b AABB) HalfSize() vecmath.Vec3 {
	return b.Size().Scale(0.5)
}

// Extents is an alias for HalfSize.
func (b AABB) Extents() vecmath.Vec3 {
	return b.HalfSize()
}

// Transform returns an AABB that bounds the original AABB after
// transformation by m, by transforming all 8 corners and taking their
// bounds.
func (b AABB) Transform(m vecmath.Mat4) AABB {
	corners := [8]vecmath.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	newMin := m.MulAsPoint(corners[0])
	newMax := newMin
	for i := 1; i < 8; i++ {
		p := m.MulAsPoint(corners[i])
		newMin = newMin.Min(p)
		newMax = newMax.Max(p)
	}
	return AABB{Min: newMin, Max: newMax}
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p vecmath.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IsZero reports whether the AABB is the zero value, the convention a Mesh
// uses to mean "no bounds available, skip the mesh-level clip shortcut".
func (b AABB) IsZero() bool {
	return b.Min == vecmath.Vec3{} && b.Max == vecmath.Vec3{}
}

// IntersectAABB tests if the AABB intersects or is inside the frustum.
// Returns true if any part of the AABB is visible. Uses the "positive
// vertex" optimization for faster rejection.
func (f Frustum) IntersectAABB(box AABB) bool {
	for i := range f.Planes {
		plane := f.Planes[i]
		pVertex := vecmath.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB tests if the AABB is completely inside the frustum. Returns
// true only if the corner closest to each plane (in that plane's outward
// direction) is still on the inward side of it.
func (f Frustum) ContainsAABB(box AABB) bool {
	for i := range f.Planes {
		plane := f.Planes[i]
		nVertex := vecmath.V3(
			selectComponent(plane.Normal.X >= 0, box.Min.X, box.Max.X),
			selectComponent(plane.Normal.Y >= 0, box.Min.Y, box.Max.Y),
			selectComponent(plane.Normal.Z >= 0, box.Min.Z, box.Max.Z),
		)
		if plane.DistanceToPoint(nVertex) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p vecmath.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere tests if a sphere intersects the frustum.
func (f Frustum) IntersectsSphere(center vecmath.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

// selectComponent returns a if cond is true, otherwise b.
func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// ExtractFrustum is an alias for NewFrustumFromMatrix for API consistency.
func ExtractFrustum(m vecmath.Mat4) Frustum {
	return NewFrustumFromMatrix(m)
}

// IntersectsFrustum is an alias for IntersectAABB for API consistency.
func (f Frustum) IntersectsFrustum(box AABB) bool {
	return f.IntersectAABB(box)
}

// TransformAABB transforms an AABB by a matrix and returns the new bounds.
func TransformAABB(box AABB, m vecmath.Mat4) AABB {
	return box.Transform(m)
}

// meshClipState runs the two mesh-level bounding tests of spec.md §4.4:
// a full-discard test against the exact view-projection frustum, and a
// looser "no per-triangle clip test needed" test against a frustum
// widened to the same conservative bound the per-triangle coarse clip test
// uses. Both tests compare the model-space box against planes extracted
// from viewProj = projection * model-view.
func meshClipState(box AABB, viewProj vecmath.Mat4, bound float64) (discard, skipClipTest bool) {
	tight := NewFrustumFromMatrix(viewProj)
	if !tight.IntersectAABB(box) {
		return true, false
	}
	loose := buildLooseFrustum(viewProj, bound)
	return false, loose.ContainsAABB(box)
}

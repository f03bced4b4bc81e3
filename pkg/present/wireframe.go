package present

import (
	"image/color"

	"github.com/soft3d/raster/pkg/raster"
	"github.com/soft3d/raster/pkg/vecmath"
)

// Wireframe draws 3D line overlays by projecting through a raster.Context's
// current model-view/projection state and plotting the result directly
// into a raster.Framebuffer.
type Wireframe struct {
	ctx *raster.Context
	fb  *raster.Framebuffer
}

// NewWireframe creates a wireframe overlay drawing into fb using ctx's
// current camera state.
func NewWireframe(ctx *raster.Context, fb *raster.Framebuffer) *Wireframe {
	return &Wireframe{ctx: ctx, fb: fb}
}

// DrawLine3D projects both endpoints and plots the segment if at least one
// endpoint is visible.
func (w *Wireframe) DrawLine3D(p1, p2 vecmath.Vec3, c color.RGBA) {
	x1, y1, vis1 := w.ctx.ProjectPoint(p1)
	x2, y2, vis2 := w.ctx.ProjectPoint(p2)
	if !vis1 && !vis2 {
		return
	}
	drawLine(w.fb, int(x1), int(y1), int(x2), int(y2), c)
}

// DrawMesh renders m as edges only, walking the same chain grammar
// raster.Context.DrawMesh decodes (spec.md §6) but plotting each
// triangle's three edges instead of shading and filling it. Meshes are
// drawn one after another following m.Next(), matching DrawMesh's own
// chained-mesh traversal.
func (w *Wireframe) DrawMesh(m raster.Mesh, c color.RGBA) {
	for cur := m; cur != nil; cur = cur.Next() {
		w.drawMeshFaces(cur, c)
	}
}

func (w *Wireframe) drawMeshFaces(m raster.Mesh, c color.RGBA) {
	verts := m.Vertices()
	hasUV := m.Texcoords() != nil
	hasNormals := m.Normals() != nil
	faces := m.Faces()

	recStride := 1
	if hasUV {
		recStride++
	}
	if hasNormals {
		recStride++
	}

	readVid := func(pos int) int { return int(faces[pos] &^ 0x8000) }

	pos := 0
	for pos < len(faces) {
		n := faces[pos]
		pos++
		if n == 0 {
			break
		}

		var slot [3]int
		for i := 0; i < 3 && pos < len(faces); i++ {
			slot[i] = readVid(pos)
			pos += recStride
		}
		if v, ok := triVerts(verts, slot); ok {
			w.drawTriEdges(v, c)
		}

		for t := 1; t < int(n) && pos < len(faces); t++ {
			succ := faces[pos]
			retainSlot1 := succ&0x8000 != 0
			newVid := readVid(pos)
			pos += recStride

			oldTip := slot[2]
			if retainSlot1 {
				slot[0] = oldTip
			} else {
				slot[1] = oldTip
			}
			slot[2] = newVid

			if v, ok := triVerts(verts, slot); ok {
				w.drawTriEdges(v, c)
			}
		}
	}
}

func triVerts(verts []vecmath.Vec3, idx [3]int) ([3]vecmath.Vec3, bool) {
	var v [3]vecmath.Vec3
	for i, id := range idx {
		if id < 0 || id >= len(verts) {
			return v, false
		}
		v[i] = verts[id]
	}
	return v, true
}

func (w *Wireframe) drawTriEdges(v [3]vecmath.Vec3, c color.RGBA) {
	w.DrawLine3D(v[0], v[1], c)
	w.DrawLine3D(v[1], v[2], c)
	w.DrawLine3D(v[2], v[0], c)
}

// DrawCube draws a wireframe cube centered at center.
func (w *Wireframe) DrawCube(center vecmath.Vec3, size float64, c color.RGBA) {
	w.drawBoxEdges(cubeVertices(center, size), c)
}

// DrawTransformedCube draws a wireframe cube, transforming its local
// vertices by transform before projecting them.
func (w *Wireframe) DrawTransformedCube(transform vecmath.Mat4, size float64, c color.RGBA) {
	local := cubeVertices(vecmath.Zero3(), size)
	var world [8]vecmath.Vec3
	for i, v := range local {
		world[i] = transform.MulAsPoint(v)
	}
	w.drawBoxEdges(world, c)
}

func cubeVertices(center vecmath.Vec3, size float64) [8]vecmath.Vec3 {
	half := size / 2
	return [8]vecmath.Vec3{
		vecmath.V3(center.X-half, center.Y-half, center.Z-half),
		vecmath.V3(center.X+half, center.Y-half, center.Z-half),
		vecmath.V3(center.X+half, center.Y+half, center.Z-half),
		vecmath.V3(center.X-half, center.Y+half, center.Z-half),
		vecmath.V3(center.X-half, center.Y-half, center.Z+half),
		vecmath.V3(center.X+half, center.Y-half, center.Z+half),
		vecmath.V3(center.X+half, center.Y+half, center.Z+half),
		vecmath.V3(center.X-half, center.Y+half, center.Z+half),
	}
}

var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0}, // back face
	{4, 5}, {5, 6}, {6, 7}, {7, 4}, // front face
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // connecting edges
}

func (w *Wireframe) drawBoxEdges(v [8]vecmath.Vec3, c color.RGBA) {
	for _, e := range cubeEdges {
		w.DrawLine3D(v[e[0]], v[e[1]], c)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := vecmath.Zero3()
	w.DrawLine3D(origin, vecmath.V3(length, 0, 0), ColorRed)
	w.DrawLine3D(origin, vecmath.V3(0, length, 0), ColorGreen)
	w.DrawLine3D(origin, vecmath.V3(0, 0, length), ColorBlue)
}

// DrawGrid draws a grid on the XZ plane at y=0.
func (w *Wireframe) DrawGrid(size, step float64, c color.RGBA) {
	half := size / 2
	for x := -half; x <= half; x += step {
		w.DrawLine3D(vecmath.V3(x, 0, -half), vecmath.V3(x, 0, half), c)
	}
	for z := -half; z <= half; z += step {
		w.DrawLine3D(vecmath.V3(-half, 0, z), vecmath.V3(half, 0, z), c)
	}
}

// DrawPoint draws a point as a small cross.
func (w *Wireframe) DrawPoint(pos vecmath.Vec3, size float64, c color.RGBA) {
	half := size / 2
	w.DrawLine3D(vecmath.V3(pos.X-half, pos.Y, pos.Z), vecmath.V3(pos.X+half, pos.Y, pos.Z), c)
	w.DrawLine3D(vecmath.V3(pos.X, pos.Y-half, pos.Z), vecmath.V3(pos.X, pos.Y+half, pos.Z), c)
	w.DrawLine3D(vecmath.V3(pos.X, pos.Y, pos.Z-half), vecmath.V3(pos.X, pos.Y, pos.Z+half), c)
}

// drawLine plots a line into fb using Bresenham's algorithm, clipping each
// point to the framebuffer's bounds as it goes.
func drawLine(fb *raster.Framebuffer, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package present

import (
	"github.com/charmbracelet/harmonica"

	"github.com/soft3d/raster/pkg/raster"
	"github.com/soft3d/raster/pkg/vecmath"
)

// RotationAxis tracks position and velocity for one rotation axis, with
// velocity decaying toward zero through a critically-damped spring rather
// than a fixed friction coefficient, so input impulses settle smoothly
// instead of snapping to rest.
type RotationAxis struct {
	Position float64
	Velocity float64

	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity animating Velocity toward 0
}

// NewRotationAxis creates an axis whose velocity decays at fps frames per
// second. Frequency 4.0 is a moderate decay speed; damping 1.0 is critical
// (no overshoot).
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Update applies velocity to position for one frame, then decays velocity
// toward zero.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// OrbitCamera holds a spring-damped pitch/yaw/roll orbit around a fixed
// center point, and drives a raster.Context's view matrix from it. Mouse
// drags and key input apply impulses to Velocity; Update advances the
// simulation and Apply pushes the result to the Context.
type OrbitCamera struct {
	Pitch, Yaw, Roll RotationAxis
	Distance         float64

	center vecmath.Vec3
	up     vecmath.Vec3
	fps    int
}

// NewOrbitCamera creates an orbit camera looking at center from distance,
// with rotation springs tuned for fps frames per second.
func NewOrbitCamera(center vecmath.Vec3, distance float64, fps int) *OrbitCamera {
	return &OrbitCamera{
		Pitch:    NewRotationAxis(fps),
		Yaw:      NewRotationAxis(fps),
		Roll:     NewRotationAxis(fps),
		Distance: distance,
		center:   center,
		up:       vecmath.V3(0, 1, 0),
		fps:      fps,
	}
}

// Update advances all three rotation springs by one frame.
func (o *OrbitCamera) Update() {
	o.Pitch.Update()
	o.Yaw.Update()
	o.Roll.Update()
}

// ApplyImpulse adds to each axis's velocity, e.g. from a mouse drag delta
// or a held key's torque.
func (o *OrbitCamera) ApplyImpulse(pitch, yaw, roll float64) {
	o.Pitch.Velocity += pitch
	o.Yaw.Velocity += yaw
	o.Roll.Velocity += roll
}

// Reset zeroes every axis's position and velocity.
func (o *OrbitCamera) Reset() {
	o.Pitch = NewRotationAxis(o.fps)
	o.Yaw = NewRotationAxis(o.fps)
	o.Roll = NewRotationAxis(o.fps)
}

// Eye computes the current eye position: distance behind center, rotated
// by the accumulated yaw/pitch (roll spins the up vector instead, since an
// orbit camera has no meaningful roll around its own view axis).
func (o *OrbitCamera) Eye() vecmath.Vec3 {
	offset := vecmath.RotateY(o.Yaw.Position).MulAsDirection(vecmath.V3(0, 0, o.Distance))
	offset = vecmath.RotateX(o.Pitch.Position).MulAsDirection(offset)
	return o.center.Add(offset)
}

// Up returns the current up vector, rotated by the accumulated roll.
func (o *OrbitCamera) Up() vecmath.Vec3 {
	return vecmath.RotateZ(o.Roll.Position).MulAsDirection(o.up).Normalize()
}

// Apply pushes the orbit camera's current eye/center/up onto ctx's view
// matrix via SetLookAt.
func (o *OrbitCamera) Apply(ctx *raster.Context) {
	ctx.SetLookAt(o.Eye(), o.center, o.Up())
}

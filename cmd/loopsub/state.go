package main

import (
	"errors"
	"fmt"
	"math"
	"time"

	"fortio.org/log"
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/loopsub/pkg/diredge"
	"github.com/taigrr/loopsub/pkg/loop"
	"github.com/taigrr/loopsub/pkg/math3d"
)

// RotationAxis tracks position and velocity for one rotation axis with spring decay.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewRotationAxis creates an axis with a critically damped spring for velocity decay.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and, when damping, eases velocity toward 0.
func (a *RotationAxis) Update(damping bool) {
	a.Position += a.Velocity
	if damping {
		a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	}
}

// RotationState holds the three view rotation axes.
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	r := &RotationState{fps: max(fps, 1)}
	r.Reset()
	return r
}

func (r *RotationState) Update(damping bool) {
	r.Pitch.Update(damping)
	r.Yaw.Update(damping)
	r.Roll.Update(damping)
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// Matrix returns the current view rotation.
func (r *RotationState) Matrix() math3d.Mat4 {
	return math3d.RotateX(r.Pitch.Position).
		Mul(math3d.RotateY(r.Yaw.Position)).
		Mul(math3d.RotateZ(r.Roll.Position))
}

// ViewState holds the viewer toggles.
type ViewState struct {
	Wireframe    bool
	ShowHUD      bool
	SpinMode     bool
	BackfaceCull bool
	Zoom         float64 // multiplier on render.DefaultZoom
	LightMode    bool    // mouse position steers the light until the next click
	LightDir     math3d.Vec3
	PendingLight math3d.Vec3
}

// NewViewState creates default view state.
func NewViewState(lightDir math3d.Vec3) *ViewState {
	return &ViewState{
		ShowHUD:      true,
		BackfaceCull: true,
		Zoom:         1,
		LightDir:     lightDir.Normalize(),
	}
}

// ZoomBy scales the zoom, clamped to [0.2, 8].
func (v *ViewState) ZoomBy(f float64) {
	v.Zoom = min(max(v.Zoom*f, 0.2), 8)
}

// Light is the direction to shade with, following the mouse in light mode.
func (v *ViewState) Light() math3d.Vec3 {
	if v.LightMode {
		return v.PendingLight
	}
	return v.LightDir
}

// ScreenToLightDir maps a screen position onto the hemisphere facing the viewer.
func ScreenToLightDir(screenX, screenY, width, height int) math3d.Vec3 {
	nx := (float64(screenX)/float64(max(width, 1)))*2 - 1
	ny := (float64(screenY)/float64(max(height, 1)))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	return math3d.V3(nx, -ny, math.Sqrt(1-lenSq)).Normalize()
}

// errTooDense stops refinement before the viewer runs out of memory or frame budget.
var errTooDense = errors.New("too many triangles")

// levelStack keeps every subdivision level so the viewer can step back.
type levelStack struct {
	levels   []*diredge.Surface
	times    []time.Duration
	maxFaces int
}

func newLevelStack(base *diredge.Surface, maxFaces int) *levelStack {
	return &levelStack{levels: []*diredge.Surface{base}, times: []time.Duration{0}, maxFaces: maxFaces}
}

func (l *levelStack) current() *diredge.Surface { return l.levels[len(l.levels)-1] }

func (l *levelStack) level() int { return len(l.levels) - 1 }

func (l *levelStack) lastDuration() time.Duration { return l.times[len(l.times)-1] }

// refine pushes one more level computed from a copy of the current one.
func (l *levelStack) refine() error {
	cur := l.current()
	if l.maxFaces > 0 && 4*cur.FaceCount() > l.maxFaces {
		return fmt.Errorf("level %d: %d triangles: %w", l.level()+1, 4*cur.FaceCount(), errTooDense)
	}
	next := cur.Clone()
	start := time.Now()
	if err := loop.Subdivide(next); err != nil {
		return fmt.Errorf("level %d: %w", l.level()+1, err)
	}
	l.levels = append(l.levels, next)
	l.times = append(l.times, time.Since(start))
	log.Debugf("viewer: level %d, %d triangles in %v", l.level(), next.FaceCount(), l.lastDuration())
	return nil
}

// undo drops the newest level, keeping the input.
func (l *levelStack) undo() bool {
	if len(l.levels) == 1 {
		return false
	}
	l.levels = l.levels[:len(l.levels)-1]
	l.times = l.times[:len(l.times)-1]
	return true
}

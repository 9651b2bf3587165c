// Package camera holds the projection math for scene cameras. Cameras are a
// closed set of lens kinds described by immutable parameter structs; the
// functions here derive matrices from them and never keep state.
package camera

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ZoomSensitivity scales a scroll delta before it is subtracted from the zoom.
	ZoomSensitivity float32 = 0.25
	// MinZoom is the lower clamp applied after every scroll-driven adjustment.
	MinZoom float32 = 0.25
)

// Kind selects the projection formula.
type Kind uint8

const (
	Orthographic Kind = iota
	Perspective
)

func (k Kind) String() string {
	switch k {
	case Orthographic:
		return "orthographic"
	case Perspective:
		return "perspective"
	default:
		return fmt.Sprintf("camera.Kind(%d)", uint8(k))
	}
}

// OrthographicParams describes an orthographic frustum. Size is the half
// height of the view volume at zoom 1.
type OrthographicParams struct {
	Size float32
	Near float32
	Far  float32
}

// PerspectiveParams describes a perspective frustum. FovY is in radians.
type PerspectiveParams struct {
	FovY float32
	Near float32
	Far  float32
}

// Options are backend policy knobs applied on top of the lens.
type Options struct {
	// ReverseDepth swaps near and far when building the projection.
	ReverseDepth bool
	// SwapYAxis negates the Y row of the projection to match backends whose
	// clip space Y points the other way.
	SwapYAxis bool
}

// Lens is the full, immutable description of a camera projection.
type Lens struct {
	Kind         Kind
	Orthographic OrthographicParams
	Perspective  PerspectiveParams
	Zoom         float32
	Options      Options
}

// DefaultOrthographic returns a lens with the engine's default 2D settings.
func DefaultOrthographic() Lens {
	return Lens{
		Kind:         Orthographic,
		Orthographic: OrthographicParams{Size: 1, Near: -1, Far: 1},
		Zoom:         1,
	}
}

// DefaultPerspective returns a 45 degree perspective lens.
func DefaultPerspective() Lens {
	return Lens{
		Kind:        Perspective,
		Perspective: PerspectiveParams{FovY: mgl32.DegToRad(45), Near: 0.01, Far: 1000},
		Zoom:        1,
	}
}

var yFlip = mgl32.Diag4(mgl32.Vec4{1, -1, 1, 1})

// Projection computes the projection matrix of l for the given aspect ratio
// (width / height).
func Projection(l Lens, aspect float32) mgl32.Mat4 {
	var proj mgl32.Mat4
	switch l.Kind {
	case Orthographic:
		proj = orthographic(l.Orthographic, l.Zoom, aspect, l.Options.ReverseDepth)
	case Perspective:
		proj = perspective(l.Perspective, aspect, l.Options.ReverseDepth)
	default:
		panic(fmt.Sprintf("camera: unknown lens kind %s", l.Kind))
	}
	if l.Options.SwapYAxis {
		proj = yFlip.Mul4(proj)
	}
	return proj
}

func orthographic(p OrthographicParams, zoom, aspect float32, reverse bool) mgl32.Mat4 {
	halfH := p.Size * zoom
	halfW := aspect * halfH
	near, far := p.Near, p.Far
	if reverse {
		near, far = far, near
	}
	return mgl32.Ortho(-halfW, halfW, -halfH, halfH, near, far)
}

func perspective(p PerspectiveParams, aspect float32, reverse bool) mgl32.Mat4 {
	near, far := p.Near, p.Far
	if reverse {
		near, far = far, near
	}
	return mgl32.Perspective(p.FovY, aspect, near, far)
}

// ApplyScroll returns the zoom after a scroll of delta, clamped to MinZoom.
func ApplyScroll(zoom, delta float32) float32 {
	zoom -= delta * ZoomSensitivity
	if zoom < MinZoom {
		return MinZoom
	}
	return zoom
}

// Aspect returns width/height, reporting false for a degenerate viewport
// (e.g. a minimized window).
func Aspect(width, height int) (float32, bool) {
	if width <= 0 || height <= 0 {
		return 0, false
	}
	return float32(width) / float32(height), true
}

// View returns the view matrix of a camera placed at position and rotated
// by rotation radians around Z.
func View(position mgl32.Vec3, rotation float32) mgl32.Mat4 {
	m := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	if rotation != 0 {
		m = m.Mul4(mgl32.HomogRotate3DZ(rotation))
	}
	return m.Inv()
}

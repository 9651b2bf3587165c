package component

import (
	"github.com/bootzin/BootEngine-sub000/camera"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a lens plus its cached projection. Inactive cameras are ignored by
// rendering and by event handling; only callers toggle Active.
type Camera struct {
	Lens           camera.Lens
	Active         bool
	ViewportWidth  int
	ViewportHeight int
	Projection     mgl32.Mat4
}

// NewCamera returns an active camera sized to the viewport with its
// projection already computed.
func NewCamera(lens camera.Lens, width, height int) *Camera {
	c := &Camera{Lens: lens, Active: true, Projection: mgl32.Ident4()}
	c.Resize(width, height)
	return c
}

// Resize records the viewport size and recomputes the projection. A
// degenerate size (minimized window) keeps the previous projection.
func (c *Camera) Resize(width, height int) bool {
	if _, ok := camera.Aspect(width, height); !ok {
		return false
	}
	c.ViewportWidth, c.ViewportHeight = width, height
	c.Recalculate()
	return true
}

// Scroll applies a scroll delta to the zoom and recomputes the projection.
func (c *Camera) Scroll(delta float32) {
	c.Lens.Zoom = camera.ApplyScroll(c.Lens.Zoom, delta)
	c.Recalculate()
}

// Recalculate rebuilds Projection from the lens and the last viewport size.
func (c *Camera) Recalculate() {
	aspect, ok := camera.Aspect(c.ViewportWidth, c.ViewportHeight)
	if !ok {
		return
	}
	c.Projection = camera.Projection(c.Lens, aspect)
}

var CameraComponent = NewNamedComponent[Camera]("Camera")

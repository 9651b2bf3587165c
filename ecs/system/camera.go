package system

import (
	"github.com/bootzin/BootEngine-sub000/camera"
	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/ecs/component"
	"github.com/bootzin/BootEngine-sub000/event"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// CameraSystem keeps active camera projections in sync with the viewport and
// the mouse wheel.
type CameraSystem struct {
	log *zap.Logger
}

func NewCameraSystem(log *zap.Logger) *CameraSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CameraSystem{log: log.Named("camera")}
}

// Listen registers the resize and scroll listeners.
func (cs *CameraSystem) Listen(events *EventSystem) {
	events.On(event.WindowResize, cs.onResize)
	events.On(event.MouseScroll, cs.onScroll)
}

func (cs *CameraSystem) onResize(w *ecs.World, ev event.Event) {
	size, ok := ev.Resize()
	if !ok {
		return
	}
	ecs.ForEach(w, component.CameraComponent.Kind(), func(e ecs.Entity, c *component.Camera) {
		if !c.Active {
			return
		}
		if !c.Resize(size.Width, size.Height) {
			cs.log.Debug("ignored degenerate viewport",
				zap.Stringer("camera", e),
				zap.Int("width", size.Width),
				zap.Int("height", size.Height))
		}
	})
}

func (cs *CameraSystem) onScroll(w *ecs.World, ev event.Event) {
	scroll, ok := ev.Scroll()
	if !ok || scroll.Y == 0 {
		return
	}
	ecs.ForEach(w, component.CameraComponent.Kind(), func(_ ecs.Entity, c *component.Camera) {
		if c.Active {
			c.Scroll(scroll.Y)
		}
	})
}

// Update refreshes active projections so lens edits made by other systems
// take effect in the same frame.
func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.CameraComponent.Kind(), func(_ ecs.Entity, c *component.Camera) {
		if c.Active {
			c.Recalculate()
		}
	})
}

// ActiveCamera returns the first active camera and its view matrix. The view
// is the identity when the camera entity has no Transform.
func ActiveCamera(w *ecs.World) (ecs.Entity, *component.Camera, mgl32.Mat4, bool) {
	var (
		found ecs.Entity
		cam   *component.Camera
	)
	ecs.ForEach(w, component.CameraComponent.Kind(), func(e ecs.Entity, c *component.Camera) {
		if cam != nil || !c.Active {
			return
		}
		found, cam = e, c
	})
	if cam == nil {
		return 0, nil, mgl32.Ident4(), false
	}
	view := mgl32.Ident4()
	if t, ok := ecs.Get(w, found, component.TransformComponent.Kind()); ok {
		view = camera.View(t.Position, t.Rotation)
	}
	return found, cam, view, true
}

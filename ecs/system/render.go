package system

import (
	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/render"
	"go.uber.org/zap"
)

// RenderSystem draws the world through the first active camera once per frame.
type RenderSystem struct {
	renderer *render.Renderer2D
	log      *zap.Logger
	warned   bool
}

func NewRenderSystem(renderer *render.Renderer2D, log *zap.Logger) *RenderSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderSystem{renderer: renderer, log: log.Named("render")}
}

func (r *RenderSystem) Update(w *ecs.World) {
	if r == nil || r.renderer == nil || w == nil {
		return
	}

	_, cam, view, ok := ActiveCamera(w)
	if !ok {
		if !r.warned {
			r.log.Warn("no active camera, skipping frame")
			r.warned = true
		}
		return
	}
	r.warned = false

	if err := r.renderer.BeginScene(cam, view); err != nil {
		panic("render system: begin scene: " + err.Error())
	}
	if err := r.renderer.DrawWorld(w); err != nil {
		panic("render system: draw world: " + err.Error())
	}
	if err := r.renderer.Flush(); err != nil {
		panic("render system: flush: " + err.Error())
	}
	if err := r.renderer.EndScene(); err != nil {
		panic("render system: end scene: " + err.Error())
	}
}

package system

import (
	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/ecs/component"
)

// MovementSystem integrates Velocity into Transform with a fixed step.
type MovementSystem struct {
	step float32
}

// NewMovementSystem returns a system advancing by step seconds per tick.
func NewMovementSystem(step float32) *MovementSystem {
	return &MovementSystem{step: step}
}

func (ms *MovementSystem) Update(w *ecs.World) {
	if w == nil || ms.step <= 0 {
		return
	}
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.VelocityComponent.Kind(),
		func(_ ecs.Entity, t *component.Transform, v *component.Velocity) {
			t.Position = t.Position.Add(v.Linear.Mul(ms.step))
			t.Rotation += v.Angular * ms.step
		})
}

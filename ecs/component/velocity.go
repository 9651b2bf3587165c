package component

import "github.com/go-gl/mathgl/mgl32"

// Velocity is a per-second rate applied to a Transform. Angular is radians per
// second around Z.
type Velocity struct {
	Linear  mgl32.Vec3
	Angular float32
}

var VelocityComponent = NewNamedComponent[Velocity]("Velocity")

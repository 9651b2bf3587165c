package component

import "github.com/go-gl/mathgl/mgl32"

// Transform places an entity in the world. Rotation is in radians around Z.
type Transform struct {
	Position mgl32.Vec3
	Rotation float32
	Scale    mgl32.Vec2
}

// NewTransform returns a transform at position with unit scale.
func NewTransform(position mgl32.Vec3) *Transform {
	return &Transform{Position: position, Scale: mgl32.Vec2{1, 1}}
}

// Model composes Scale, then Rotation around Z, then Translation. The
// rotation matrix is skipped when Rotation is zero.
func (t Transform) Model() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	if t.Rotation != 0 {
		m = m.Mul4(mgl32.HomogRotate3DZ(t.Rotation))
	}
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), 1))
}

var TransformComponent = NewNamedComponent[Transform]("Transform")

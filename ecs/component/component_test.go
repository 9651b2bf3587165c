package component

import (
	"errors"
	"testing"

	"github.com/bootzin/BootEngine-sub000/camera"
	"github.com/bootzin/BootEngine-sub000/event"
	"github.com/go-gl/mathgl/mgl32"
)

func TestTransformModel(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
		want mgl32.Mat4
	}{
		{
			name: "origin_unit_scale_is_identity",
			tr:   Transform{Scale: mgl32.Vec2{1, 1}},
			want: mgl32.Ident4(),
		},
		{
			name: "translate_and_scale_without_rotation",
			tr:   Transform{Position: mgl32.Vec3{3, -2, 0.5}, Scale: mgl32.Vec2{2, 4}},
			want: mgl32.Translate3D(3, -2, 0.5).Mul4(mgl32.Scale3D(2, 4, 1)),
		},
		{
			name: "scale_then_rotate_then_translate",
			tr:   Transform{Position: mgl32.Vec3{1, 1, 0}, Rotation: mgl32.DegToRad(90), Scale: mgl32.Vec2{2, 1}},
			want: mgl32.Translate3D(1, 1, 0).Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(90))).Mul4(mgl32.Scale3D(2, 1, 1)),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.tr.Model()
			if !got.ApproxEqual(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	// with the rotation above, the local +X axis (scaled by 2) lands on +Y
	m := tests[2].tr.Model()
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	if !p.Vec3().ApproxEqual(mgl32.Vec3{1, 3, 0}) {
		t.Fatalf("expected (1,3,0), got %v", p)
	}
}

func TestCameraScrollClamps(t *testing.T) {
	c := NewCamera(camera.DefaultOrthographic(), 800, 600)
	c.Scroll(5)
	if c.Lens.Zoom != 0.25 {
		t.Fatalf("expected zoom clamped to 0.25, got %v", c.Lens.Zoom)
	}
	want := camera.Projection(c.Lens, 800.0/600.0)
	if !c.Projection.ApproxEqual(want) {
		t.Fatalf("projection not recomputed after scroll")
	}
}

func TestCameraResizeIgnoresDegenerateViewport(t *testing.T) {
	c := NewCamera(camera.DefaultOrthographic(), 800, 600)
	before := c.Projection
	if c.Resize(0, 600) {
		t.Fatalf("zero width resize should be rejected")
	}
	if c.Projection != before || c.ViewportWidth != 800 {
		t.Fatalf("degenerate resize must keep the previous state")
	}
	if !c.Resize(400, 400) {
		t.Fatalf("valid resize rejected")
	}
	if c.Projection == before {
		t.Fatalf("expected projection to change with aspect")
	}
}

func TestEventComponentsAreDistinct(t *testing.T) {
	seen := map[ComponentID]event.Kind{}
	for _, k := range event.Kinds() {
		id := EventComponent(k).Kind().ID()
		if prev, dup := seen[id]; dup {
			t.Fatalf("%s and %s share component id %d", prev, k, id)
		}
		seen[id] = k
	}
}

func TestNamedKinds(t *testing.T) {
	for name, id := range map[string]ComponentID{
		"Transform": TransformComponent.Kind().ID(),
		"Sprite":    SpriteComponent.Kind().ID(),
		"Camera":    CameraComponent.Kind().ID(),
		"Velocity":  VelocityComponent.Kind().ID(),
		"Tag":       TagComponent.Kind().ID(),
	} {
		got, ok := Lookup(name)
		if !ok || got != id {
			t.Fatalf("lookup %s: expected %d, got %d ok=%v", name, id, got, ok)
		}
	}
	if err := Register("Transform", 9999); !errors.Is(err, ErrDuplicateKindName) {
		t.Fatalf("expected ErrDuplicateKindName, got %v", err)
	}
	if TransformComponent.Kind().String() != "Transform" {
		t.Fatalf("expected kind name in String, got %s", TransformComponent.Kind())
	}
}

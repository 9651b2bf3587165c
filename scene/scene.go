// Package scene saves and loads world contents as YAML. Components are keyed
// by their registered kind name.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bootzin/BootEngine-sub000/camera"
	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/ecs/component"
	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var ErrUnknownComponent = errors.New("scene: unknown component")

// TextureResolver maps a texture name to a texture. It is consulted for
// sprites that name a texture.
type TextureResolver func(name string) (gfx.Texture, error)

type document struct {
	Entities []entityDoc `yaml:"entities"`
}

type entityDoc struct {
	Components map[string]yaml.Node `yaml:"components"`
}

type tagDoc struct {
	Name string `yaml:"name"`
}

type transformDoc struct {
	Position [3]float32 `yaml:"position,flow"`
	Rotation float32    `yaml:"rotation"`
	Scale    [2]float32 `yaml:"scale,flow"`
}

type spriteDoc struct {
	Color   [4]float32 `yaml:"color,flow"`
	Texture string     `yaml:"texture,omitempty"`
	Tiling  float32    `yaml:"tiling"`
}

type velocityDoc struct {
	Linear  [3]float32 `yaml:"linear,flow"`
	Angular float32    `yaml:"angular"`
}

type cameraDoc struct {
	Projection   string  `yaml:"projection"`
	Size         float32 `yaml:"size,omitempty"`
	FovY         float32 `yaml:"fov_y,omitempty"`
	Near         float32 `yaml:"near"`
	Far          float32 `yaml:"far"`
	Zoom         float32 `yaml:"zoom"`
	ReverseDepth bool    `yaml:"reverse_depth,omitempty"`
	SwapYAxis    bool    `yaml:"swap_y_axis,omitempty"`
	Active       bool    `yaml:"active"`
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
}

// codec converts one component kind between the world and its document form.
type codec struct {
	encode func(w *ecs.World, e ecs.Entity) (any, bool)
	decode func(w *ecs.World, e ecs.Entity, n *yaml.Node, textures TextureResolver) error
}

var codecs = map[string]codec{
	kindName(component.TagComponent.Kind()): {
		encode: func(w *ecs.World, e ecs.Entity) (any, bool) {
			t, ok := ecs.Get(w, e, component.TagComponent.Kind())
			if !ok {
				return nil, false
			}
			return tagDoc{Name: t.Name}, true
		},
		decode: func(w *ecs.World, e ecs.Entity, n *yaml.Node, _ TextureResolver) error {
			var d tagDoc
			if err := n.Decode(&d); err != nil {
				return err
			}
			return ecs.Add(w, e, component.TagComponent.Kind(), &component.Tag{Name: d.Name})
		},
	},
	kindName(component.TransformComponent.Kind()): {
		encode: func(w *ecs.World, e ecs.Entity) (any, bool) {
			t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
			if !ok {
				return nil, false
			}
			return transformDoc{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}, true
		},
		decode: func(w *ecs.World, e ecs.Entity, n *yaml.Node, _ TextureResolver) error {
			d := transformDoc{Scale: [2]float32{1, 1}}
			if err := n.Decode(&d); err != nil {
				return err
			}
			return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
				Position: mgl32.Vec3(d.Position),
				Rotation: d.Rotation,
				Scale:    mgl32.Vec2(d.Scale),
			})
		},
	},
	kindName(component.SpriteComponent.Kind()): {
		encode: func(w *ecs.World, e ecs.Entity) (any, bool) {
			s, ok := ecs.Get(w, e, component.SpriteComponent.Kind())
			if !ok {
				return nil, false
			}
			return spriteDoc{Color: s.Color, Texture: s.TextureName, Tiling: s.Tiling()}, true
		},
		decode: func(w *ecs.World, e ecs.Entity, n *yaml.Node, textures TextureResolver) error {
			d := spriteDoc{Color: [4]float32{1, 1, 1, 1}, Tiling: 1}
			if err := n.Decode(&d); err != nil {
				return err
			}
			s := &component.Sprite{Color: mgl32.Vec4(d.Color), TextureName: d.Texture, TilingFactor: d.Tiling}
			if d.Texture != "" && textures != nil {
				tex, err := textures(d.Texture)
				if err != nil {
					return fmt.Errorf("texture %q: %w", d.Texture, err)
				}
				s.Texture = tex
			}
			return ecs.Add(w, e, component.SpriteComponent.Kind(), s)
		},
	},
	kindName(component.VelocityComponent.Kind()): {
		encode: func(w *ecs.World, e ecs.Entity) (any, bool) {
			v, ok := ecs.Get(w, e, component.VelocityComponent.Kind())
			if !ok {
				return nil, false
			}
			return velocityDoc{Linear: v.Linear, Angular: v.Angular}, true
		},
		decode: func(w *ecs.World, e ecs.Entity, n *yaml.Node, _ TextureResolver) error {
			var d velocityDoc
			if err := n.Decode(&d); err != nil {
				return err
			}
			return ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{Linear: mgl32.Vec3(d.Linear), Angular: d.Angular})
		},
	},
	kindName(component.CameraComponent.Kind()): {
		encode: func(w *ecs.World, e ecs.Entity) (any, bool) {
			c, ok := ecs.Get(w, e, component.CameraComponent.Kind())
			if !ok {
				return nil, false
			}
			return encodeCamera(c), true
		},
		decode: func(w *ecs.World, e ecs.Entity, n *yaml.Node, _ TextureResolver) error {
			d := cameraDoc{Projection: camera.Orthographic.String(), Size: 1, Near: -1, Far: 1, Zoom: 1, Active: true}
			if err := n.Decode(&d); err != nil {
				return err
			}
			c, err := decodeCamera(d)
			if err != nil {
				return err
			}
			return ecs.Add(w, e, component.CameraComponent.Kind(), c)
		},
	},
}

func kindName[T any](kind component.ComponentKind[T]) string {
	name, ok := component.Name(kind.ID())
	if !ok {
		panic(fmt.Sprintf("scene: component kind %d has no registered name", kind.ID()))
	}
	return name
}

func encodeCamera(c *component.Camera) cameraDoc {
	d := cameraDoc{
		Projection:   c.Lens.Kind.String(),
		Zoom:         c.Lens.Zoom,
		ReverseDepth: c.Lens.Options.ReverseDepth,
		SwapYAxis:    c.Lens.Options.SwapYAxis,
		Active:       c.Active,
		Width:        c.ViewportWidth,
		Height:       c.ViewportHeight,
	}
	switch c.Lens.Kind {
	case camera.Perspective:
		d.FovY, d.Near, d.Far = c.Lens.Perspective.FovY, c.Lens.Perspective.Near, c.Lens.Perspective.Far
	default:
		d.Size, d.Near, d.Far = c.Lens.Orthographic.Size, c.Lens.Orthographic.Near, c.Lens.Orthographic.Far
	}
	return d
}

func decodeCamera(d cameraDoc) (*component.Camera, error) {
	lens := camera.Lens{
		Zoom:    d.Zoom,
		Options: camera.Options{ReverseDepth: d.ReverseDepth, SwapYAxis: d.SwapYAxis},
	}
	switch d.Projection {
	case camera.Orthographic.String():
		lens.Kind = camera.Orthographic
		lens.Orthographic = camera.OrthographicParams{Size: d.Size, Near: d.Near, Far: d.Far}
	case camera.Perspective.String():
		lens.Kind = camera.Perspective
		lens.Perspective = camera.PerspectiveParams{FovY: d.FovY, Near: d.Near, Far: d.Far}
	default:
		return nil, fmt.Errorf("unknown projection %q", d.Projection)
	}
	if lens.Zoom < camera.MinZoom {
		lens.Zoom = camera.MinZoom
	}
	c := component.NewCamera(lens, d.Width, d.Height)
	c.Active = d.Active
	return c, nil
}

// Marshal encodes every entity holding at least one persisted component.
func Marshal(w *ecs.World) ([]byte, error) {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)

	var doc struct {
		Entities []map[string]map[string]any `yaml:"entities"`
	}
	for _, e := range ecs.Entities(w) {
		comps := make(map[string]any)
		for _, name := range names {
			if v, ok := codecs[name].encode(w, e); ok {
				comps[name] = v
			}
		}
		if len(comps) == 0 {
			continue
		}
		doc.Entities = append(doc.Entities, map[string]map[string]any{"components": comps})
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("scene: marshal: %w", err)
	}
	return out, nil
}

// Unmarshal creates one entity per document entry. On error the entities
// created so far are destroyed.
func Unmarshal(data []byte, w *ecs.World, textures TextureResolver) ([]ecs.Entity, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scene: unmarshal: %w", err)
	}

	created := make([]ecs.Entity, 0, len(doc.Entities))
	fail := func(err error) ([]ecs.Entity, error) {
		for _, e := range created {
			ecs.DestroyEntity(w, e)
		}
		return nil, err
	}

	for i, ed := range doc.Entities {
		names := make([]string, 0, len(ed.Components))
		for name := range ed.Components {
			if _, ok := codecs[name]; !ok {
				return fail(fmt.Errorf("%w: entity %d: %q", ErrUnknownComponent, i, name))
			}
			names = append(names, name)
		}
		sort.Strings(names)

		e := ecs.CreateEntity(w)
		created = append(created, e)
		for _, name := range names {
			node := ed.Components[name]
			if err := codecs[name].decode(w, e, &node, textures); err != nil {
				return fail(fmt.Errorf("scene: entity %d: %s: %w", i, name, err))
			}
		}
	}
	return created, nil
}

package render

import (
	"errors"
	"testing"

	"github.com/bootzin/BootEngine-sub000/camera"
	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/ecs/component"
	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/bootzin/BootEngine-sub000/gfx/headless"
	"github.com/bootzin/BootEngine-sub000/resource"
	"github.com/go-gl/mathgl/mgl32"
)

type fixture struct {
	dev      *headless.Device
	textures *resource.Cache[gfx.Texture]
	r        *Renderer2D
	w        *ecs.World
	cam      *component.Camera
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := headless.NewDevice(false)
	textures := &resource.Cache[gfx.Texture]{}
	shaders := &resource.Cache[gfx.ShaderSet]{}
	set, err := dev.CreateShaderSet(SpriteShaderName, map[gfx.Stage][]byte{
		gfx.StageVertex:   []byte("vs"),
		gfx.StageFragment: []byte("fs"),
	})
	if err != nil {
		t.Fatalf("shader set: %v", err)
	}
	if err := shaders.Add(SpriteShaderName, set); err != nil {
		t.Fatalf("add shader: %v", err)
	}
	r, err := NewRenderer2D(Context{Device: dev, Textures: textures, Shaders: shaders})
	if err != nil {
		t.Fatalf("NewRenderer2D: %v", err)
	}
	return &fixture{
		dev:      dev,
		textures: textures,
		r:        r,
		w:        ecs.NewWorld(),
		cam:      component.NewCamera(camera.DefaultOrthographic(), 800, 600),
	}
}

func (f *fixture) texture(t *testing.T) gfx.Texture {
	t.Helper()
	tex, err := f.dev.CreateTexture(gfx.TextureDescription{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	return tex
}

func (f *fixture) sprite(t *testing.T, pos mgl32.Vec3, tex gfx.Texture) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(f.w)
	ecs.MustAdd(f.w, e, component.TransformComponent.Kind(), component.NewTransform(pos))
	s := component.NewSprite(mgl32.Vec4{1, 1, 1, 1})
	s.Texture = tex
	ecs.MustAdd(f.w, e, component.SpriteComponent.Kind(), s)
	return e
}

func (f *fixture) frame(t *testing.T) {
	t.Helper()
	if err := f.r.BeginScene(f.cam, mgl32.Ident4()); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := f.r.DrawWorld(f.w); err != nil {
		t.Fatalf("DrawWorld: %v", err)
	}
	if err := f.r.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := f.r.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}
}

func TestGroupsByTexture(t *testing.T) {
	tests := []struct {
		name  string
		order []int
	}{
		{name: "a_a_b", order: []int{0, 0, 1}},
		{name: "b_a_a", order: []int{1, 0, 0}},
		{name: "a_b_a", order: []int{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			texs := []gfx.Texture{f.texture(t), f.texture(t)}
			for _, i := range tt.order {
				f.sprite(t, mgl32.Vec3{}, texs[i])
			}
			f.frame(t)

			counts := map[gfx.Texture]uint32{}
			var next uint32
			for _, g := range f.r.Groups() {
				if g.Offset != next {
					t.Fatalf("group offset = %d, want %d", g.Offset, next)
				}
				next += g.Count
				counts[g.Texture] = g.Count
			}
			if len(counts) != 2 || counts[texs[0]] != 2 || counts[texs[1]] != 1 {
				t.Fatalf("group counts = %v", counts)
			}

			draws := f.dev.Draws()
			if len(draws) != 2 {
				t.Fatalf("draws = %d, want 2", len(draws))
			}
			for i, g := range f.r.Groups() {
				args := draws[i].Args
				want := gfx.DrawArgs{IndexCount: 6, InstanceCount: g.Count, InstanceStart: g.Offset}
				if args != want {
					t.Fatalf("draw %d args = %+v, want %+v", i, args, want)
				}
				if draws[i].ResourceSets[TextureSetSlot] != g.ResourceSet {
					t.Fatalf("draw %d bound the wrong texture set", i)
				}
			}
			if got := f.r.Stats().DrawCalls; got != 2 {
				t.Fatalf("stats draw calls = %d, want 2", got)
			}
		})
	}
}

func TestEmptyFrameStillClears(t *testing.T) {
	f := newFixture(t)
	f.frame(t)
	if got := len(f.dev.Clears()); got != 1 {
		t.Fatalf("clears = %d, want 1", got)
	}
	if got := len(f.dev.Draws()); got != 0 {
		t.Fatalf("draws = %d, want 0", got)
	}
	if got := len(f.r.Groups()); got != 0 {
		t.Fatalf("groups = %d, want 0", got)
	}
}

func TestUntexturedSpritesShareWhiteGroup(t *testing.T) {
	f := newFixture(t)
	f.sprite(t, mgl32.Vec3{}, nil)
	f.sprite(t, mgl32.Vec3{1, 0, 0}, nil)
	f.frame(t)

	groups := f.r.Groups()
	if len(groups) != 1 || groups[0].Count != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	white, ok := f.textures.Get(WhiteTextureName)
	if !ok || groups[0].Texture != white {
		t.Fatalf("untextured group not bound to the white texture")
	}
	if px := headless.Pixels(white); len(px) != 4 || px[0] != 0xff || px[3] != 0xff {
		t.Fatalf("white pixels = %v", px)
	}
}

func TestTextureChangeMovesEntity(t *testing.T) {
	f := newFixture(t)
	a, b := f.texture(t), f.texture(t)
	e := f.sprite(t, mgl32.Vec3{}, a)
	f.sprite(t, mgl32.Vec3{}, a)
	f.frame(t)

	ecs.MustGet(f.w, e, component.SpriteComponent.Kind()).Texture = b
	f.frame(t)

	counts := map[gfx.Texture]uint32{}
	for _, g := range f.r.Groups() {
		counts[g.Texture] = g.Count
	}
	if counts[a] != 1 || counts[b] != 1 {
		t.Fatalf("counts after texture change = %v", counts)
	}
	st := f.r.states[e]
	if st == nil || st.set.Resources()[3] != b {
		t.Fatalf("entity resource set not rebound to new texture")
	}
}

func TestStaleGroupsDropped(t *testing.T) {
	f := newFixture(t)
	a, b := f.texture(t), f.texture(t)
	f.sprite(t, mgl32.Vec3{}, a)
	e := f.sprite(t, mgl32.Vec3{}, b)
	f.frame(t)
	if len(f.r.Groups()) != 2 {
		t.Fatalf("groups = %d, want 2", len(f.r.Groups()))
	}

	ecs.DestroyEntity(f.w, e)
	f.frame(t)
	groups := f.r.Groups()
	if len(groups) != 1 || groups[0].Texture != a {
		t.Fatalf("groups after destroy = %+v", groups)
	}
	if _, ok := f.r.groups[b]; ok {
		t.Fatalf("zero-count group kept")
	}
}

func TestDestroyedEntityStateDisposed(t *testing.T) {
	f := newFixture(t)
	tex := f.texture(t)
	f.sprite(t, mgl32.Vec3{}, tex)
	e := f.sprite(t, mgl32.Vec3{}, tex)
	f.frame(t)
	withTwo := f.dev.Live()
	st := f.r.states[e]
	if st == nil {
		t.Fatalf("no state for drawn entity")
	}

	ecs.DestroyEntity(f.w, e)
	f.frame(t)
	if _, ok := f.r.states[e]; ok {
		t.Fatalf("state kept for destroyed entity")
	}
	for _, obj := range []any{st.transform, st.color, st.tiling, st.set} {
		if !headless.Disposed(obj) {
			t.Fatalf("state object %T not disposed", obj)
		}
	}
	// 3 buffers and a resource set per entity.
	if got := f.dev.Live(); got != withTwo-4 {
		t.Fatalf("live objects = %d, want %d", got, withTwo-4)
	}
}

func TestRemovedSpriteStateDisposed(t *testing.T) {
	f := newFixture(t)
	e := f.sprite(t, mgl32.Vec3{}, nil)
	f.frame(t)
	ecs.MustRemove(f.w, e, component.SpriteComponent.Kind())
	f.frame(t)
	if len(f.r.states) != 0 {
		t.Fatalf("states = %d, want 0", len(f.r.states))
	}
}

func TestSceneErrors(t *testing.T) {
	f := newFixture(t)
	if err := f.r.EndScene(); !errors.Is(err, ErrSceneNotBegun) {
		t.Fatalf("EndScene without begin = %v", err)
	}
	if err := f.r.Flush(); !errors.Is(err, ErrSceneNotBegun) {
		t.Fatalf("Flush without begin = %v", err)
	}
	if err := f.r.DrawWorld(f.w); !errors.Is(err, ErrSceneNotBegun) {
		t.Fatalf("DrawWorld without begin = %v", err)
	}
	if err := f.r.BeginScene(nil, mgl32.Ident4()); !errors.Is(err, ErrNoActiveCamera) {
		t.Fatalf("BeginScene(nil) = %v", err)
	}
	f.cam.Active = false
	if err := f.r.BeginScene(f.cam, mgl32.Ident4()); !errors.Is(err, ErrNoActiveCamera) {
		t.Fatalf("BeginScene(inactive) = %v", err)
	}
	f.cam.Active = true
	f.frame(t)
	if err := f.r.EndScene(); !errors.Is(err, ErrSceneNotBegun) {
		t.Fatalf("second EndScene = %v", err)
	}
}

func TestBeginSceneOverwritesCamera(t *testing.T) {
	f := newFixture(t)
	view1 := mgl32.Translate3D(1, 2, 0)
	view2 := mgl32.Translate3D(-3, 0, 0)

	for _, view := range []mgl32.Mat4{view1, view2} {
		if err := f.r.BeginScene(f.cam, view); err != nil {
			t.Fatalf("BeginScene: %v", err)
		}
		got := gfx.ReadMatrix(headless.Bytes(f.r.cameraBuffer), 0)
		want := f.cam.Projection.Mul4(view)
		if !got.ApproxEqual(want) {
			t.Fatalf("camera buffer = %v, want %v", got, want)
		}
		if err := f.r.EndScene(); err != nil {
			t.Fatalf("EndScene: %v", err)
		}
	}
}

func TestInstanceBufferGrowsAndHoldsModels(t *testing.T) {
	f := newFixture(t)
	const n = 100
	for i := 0; i < n; i++ {
		f.sprite(t, mgl32.Vec3{float32(i), 0, 0}, nil)
	}
	f.frame(t)

	if f.r.instanceCap != 128 {
		t.Fatalf("instance capacity = %d, want 128", f.r.instanceCap)
	}
	data := headless.Bytes(f.r.instances)
	seen := map[float32]bool{}
	for i := uint32(0); i < n; i++ {
		m := gfx.ReadMatrix(data, i*instanceStride)
		seen[m.At(0, 3)] = true
		colorOff, _ := InstanceLayout.Offset("Color")
		if a := gfx.ReadFloat32(data, i*instanceStride+colorOff+12); a != 1 {
			t.Fatalf("instance %d alpha = %v", i, a)
		}
		tilingOff, _ := InstanceLayout.Offset("Tiling")
		if tl := gfx.ReadFloat32(data, i*instanceStride+tilingOff); tl != 1 {
			t.Fatalf("instance %d tiling = %v", i, tl)
		}
	}
	if len(seen) != n {
		t.Fatalf("distinct translations = %d, want %d", len(seen), n)
	}
}

func TestGroupsOrderedByDepth(t *testing.T) {
	f := newFixture(t)
	near, far := f.texture(t), f.texture(t)
	f.sprite(t, mgl32.Vec3{0, 0, 0.5}, near)
	f.sprite(t, mgl32.Vec3{0, 0, -0.5}, far)
	f.sprite(t, mgl32.Vec3{0, 0, -0.25}, near)
	f.frame(t)

	groups := f.r.Groups()
	if len(groups) != 2 || groups[0].Texture != far || groups[1].Texture != near {
		t.Fatalf("groups not ordered by minimum depth: %+v", groups)
	}
	data := headless.Bytes(f.r.instances)
	z0 := gfx.ReadMatrix(data, groups[1].Offset*instanceStride).At(2, 3)
	z1 := gfx.ReadMatrix(data, (groups[1].Offset+1)*instanceStride).At(2, 3)
	if z0 > z1 {
		t.Fatalf("instances within group not sorted by z: %v then %v", z0, z1)
	}
}

func TestDisposeReleasesEverything(t *testing.T) {
	dev := headless.NewDevice(false)
	textures := &resource.Cache[gfx.Texture]{}
	shaders := &resource.Cache[gfx.ShaderSet]{}
	set, _ := dev.CreateShaderSet(SpriteShaderName, map[gfx.Stage][]byte{
		gfx.StageVertex:   nil,
		gfx.StageFragment: nil,
	})
	_ = shaders.Add(SpriteShaderName, set)
	before := dev.Live()

	r, err := NewRenderer2D(Context{Device: dev, Textures: textures, Shaders: shaders})
	if err != nil {
		t.Fatalf("NewRenderer2D: %v", err)
	}
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	ecs.MustAdd(w, e, component.TransformComponent.Kind(), component.NewTransform(mgl32.Vec3{}))
	ecs.MustAdd(w, e, component.SpriteComponent.Kind(), component.NewSprite(mgl32.Vec4{1, 0, 0, 1}))
	cam := component.NewCamera(camera.DefaultOrthographic(), 640, 480)
	if err := r.BeginScene(cam, mgl32.Ident4()); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	_ = r.DrawWorld(w)
	_ = r.Flush()
	_ = r.EndScene()

	r.Dispose()
	if got := dev.Live(); got != before {
		t.Fatalf("live objects after Dispose = %d, want %d", got, before)
	}
	if _, ok := textures.Get(WhiteTextureName); ok {
		t.Fatalf("owned white texture still cached")
	}
}

func TestMissingShader(t *testing.T) {
	dev := headless.NewDevice(false)
	_, err := NewRenderer2D(Context{
		Device:   dev,
		Textures: &resource.Cache[gfx.Texture]{},
		Shaders:  &resource.Cache[gfx.ShaderSet]{},
	})
	if !errors.Is(err, ErrMissingShader) {
		t.Fatalf("err = %v, want ErrMissingShader", err)
	}
	if dev.Live() != 0 {
		t.Fatalf("live objects after failed init = %d", dev.Live())
	}
}

// Package render turns drawable entities into batched, instanced draw calls.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/bootzin/BootEngine-sub000/ecs"
	"github.com/bootzin/BootEngine-sub000/ecs/component"
	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/bootzin/BootEngine-sub000/resource"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	ErrNoActiveCamera = errors.New("render: no active camera")
	ErrSceneNotBegun  = errors.New("render: scene not begun")
	ErrMissingShader  = errors.New("render: missing shader set")
)

const (
	// WhiteTextureName is the cache name of the 1x1 opaque white texture
	// bound for untextured sprites.
	WhiteTextureName = "white"
	// SpriteShaderName is the cache name of the sprite shader set.
	SpriteShaderName = "sprite"

	quadIndexCount          = 6
	initialInstanceCapacity = 64
	uniformAlign            = 16
)

// QuadLayout is the per-vertex layout of the shared unit quad.
var QuadLayout = gfx.VertexLayout{Elements: []gfx.VertexElement{
	{Name: "Position", Format: gfx.Float3},
	{Name: "TexCoord", Format: gfx.Float2},
}}

// InstanceLayout is the per-instance layout of the shared instance buffer.
var InstanceLayout = gfx.VertexLayout{
	Elements: []gfx.VertexElement{
		{Name: "Model", Format: gfx.Float4x4},
		{Name: "Color", Format: gfx.Float4},
		{Name: "Tiling", Format: gfx.Float1},
	},
	InstanceStepRate: 1,
}

var instanceStride = InstanceLayout.Stride()

// Resource slots used by the sprite pipeline.
const (
	CameraSetSlot  = 0
	TextureSetSlot = 1
)

// Context carries the collaborators a renderer needs. Nothing is looked up
// globally.
type Context struct {
	Device     gfx.Device
	Textures   *resource.Cache[gfx.Texture]
	Shaders    *resource.Cache[gfx.ShaderSet]
	Logger     *zap.Logger
	ClearColor color.Color
}

// InstanceGroup is one texture's slice of the shared instance buffer; it is
// drawn with a single instanced call.
type InstanceGroup struct {
	Texture     gfx.Texture
	ResourceSet gfx.ResourceSet
	Count       uint32
	Offset      uint32

	cursor uint32
}

// Stats describes the last flushed frame.
type Stats struct {
	Drawables int
	Groups    int
	DrawCalls int
}

// entityState is the GPU state owned on behalf of one drawable entity.
type entityState struct {
	transform gfx.Buffer
	color     gfx.Buffer
	tiling    gfx.Buffer
	set       gfx.ResourceSet
	texture   gfx.Texture
	frame     uint64
}

type drawable struct {
	entity  ecs.Entity
	model   mgl32.Mat4
	color   mgl32.Vec4
	tiling  float32
	texture gfx.Texture
	z       float32
}

// Renderer2D batches sprites by texture. It is not safe for concurrent use.
type Renderer2D struct {
	dev        gfx.Device
	textures   *resource.Cache[gfx.Texture]
	log        *zap.Logger
	clearColor color.Color

	commands      gfx.CommandList
	pipeline      gfx.Pipeline
	quadVertices  gfx.Buffer
	quadIndices   gfx.Buffer
	cameraBuffer  gfx.Buffer
	cameraLayout  gfx.ResourceLayout
	textureLayout gfx.ResourceLayout
	entityLayout  gfx.ResourceLayout
	cameraSet     gfx.ResourceSet
	white         gfx.Texture
	ownsWhite     bool

	instances   gfx.Buffer
	instanceCap uint32
	scratch     []byte

	states  map[ecs.Entity]*entityState
	groups  map[gfx.Texture]*InstanceGroup
	order   []*InstanceGroup
	pending []drawable

	frame   uint64
	inScene bool
	stats   Stats
}

// NewRenderer2D creates the renderer's shared GPU objects. The sprite shader
// set must already be registered in ctx.Shaders.
func NewRenderer2D(ctx Context) (*Renderer2D, error) {
	if ctx.Device == nil || ctx.Textures == nil || ctx.Shaders == nil {
		return nil, errors.New("render: incomplete context")
	}
	log := ctx.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clear := ctx.ClearColor
	if clear == nil {
		clear = color.RGBA{A: 0xff}
	}
	r := &Renderer2D{
		dev:        ctx.Device,
		textures:   ctx.Textures,
		log:        log.Named("renderer2d"),
		clearColor: clear,
		states:     make(map[ecs.Entity]*entityState),
		groups:     make(map[gfx.Texture]*InstanceGroup),
	}
	if err := r.init(ctx.Shaders); err != nil {
		r.Dispose()
		return nil, err
	}
	return r, nil
}

func (r *Renderer2D) init(shaders *resource.Cache[gfx.ShaderSet]) error {
	shaderSet, ok := shaders.Get(SpriteShaderName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingShader, SpriteShaderName)
	}

	var err error
	if r.white, err = r.whiteTexture(); err != nil {
		return err
	}

	if r.cameraLayout, err = r.dev.CreateResourceLayout(
		gfx.ResourceLayoutElement{Name: "ViewProjection", Kind: gfx.KindUniformBuffer},
	); err != nil {
		return fmt.Errorf("render: camera layout: %w", err)
	}
	if r.textureLayout, err = r.dev.CreateResourceLayout(
		gfx.ResourceLayoutElement{Name: "SpriteTexture", Kind: gfx.KindTexture},
	); err != nil {
		return fmt.Errorf("render: texture layout: %w", err)
	}
	if r.entityLayout, err = r.dev.CreateResourceLayout(
		gfx.ResourceLayoutElement{Name: "Transform", Kind: gfx.KindUniformBuffer},
		gfx.ResourceLayoutElement{Name: "Color", Kind: gfx.KindUniformBuffer},
		gfx.ResourceLayoutElement{Name: "Tiling", Kind: gfx.KindUniformBuffer},
		gfx.ResourceLayoutElement{Name: "SpriteTexture", Kind: gfx.KindTexture},
	); err != nil {
		return fmt.Errorf("render: entity layout: %w", err)
	}

	if r.pipeline, err = r.dev.CreatePipeline(gfx.PipelineDescription{
		Shaders:         shaderSet,
		ResourceLayouts: []gfx.ResourceLayout{r.cameraLayout, r.textureLayout},
		VertexLayouts:   []gfx.VertexLayout{QuadLayout, InstanceLayout},
		Topology:        gfx.TriangleList,
		DepthTest:       true,
	}); err != nil {
		return fmt.Errorf("render: pipeline: %w", err)
	}

	if r.quadVertices, err = r.createBuffer(quadVertexData(), gfx.UsageVertex); err != nil {
		return fmt.Errorf("render: quad vertices: %w", err)
	}
	if r.quadIndices, err = r.createBuffer(gfx.Uint16s(0, 1, 2, 2, 3, 0), gfx.UsageIndex); err != nil {
		return fmt.Errorf("render: quad indices: %w", err)
	}
	if r.cameraBuffer, err = r.createBuffer(gfx.Matrix(mgl32.Ident4()), gfx.UsageUniform|gfx.UsageDynamic); err != nil {
		return fmt.Errorf("render: camera buffer: %w", err)
	}
	if r.cameraSet, err = r.dev.CreateResourceSet(r.cameraLayout, r.cameraBuffer); err != nil {
		return fmt.Errorf("render: camera set: %w", err)
	}
	if err = r.ensureInstanceCapacity(initialInstanceCapacity); err != nil {
		return err
	}
	if r.commands, err = r.dev.CreateCommandList(); err != nil {
		return fmt.Errorf("render: command list: %w", err)
	}
	return nil
}

// whiteTexture returns the cached white texture, creating and registering it
// on first use.
func (r *Renderer2D) whiteTexture() (gfx.Texture, error) {
	if t, ok := r.textures.Get(WhiteTextureName); ok && t != nil {
		return t, nil
	}
	t, err := r.dev.CreateTexture(gfx.TextureDescription{Width: 1, Height: 1, Format: gfx.FormatRGBA8})
	if err != nil {
		return nil, fmt.Errorf("render: white texture: %w", err)
	}
	if err := r.dev.UpdateTexture(t, []byte{0xff, 0xff, 0xff, 0xff}, 0, 0, 1, 1); err != nil {
		t.Dispose()
		return nil, fmt.Errorf("render: white texture: %w", err)
	}
	if err := r.textures.Add(WhiteTextureName, t); err != nil {
		t.Dispose()
		return nil, fmt.Errorf("render: white texture: %w", err)
	}
	r.ownsWhite = true
	return t, nil
}

// quadVertexData is a unit quad centred on the origin: position xyz, uv.
func quadVertexData() []byte {
	return gfx.Float32s(
		-0.5, -0.5, 0, 0, 1,
		0.5, -0.5, 0, 1, 1,
		0.5, 0.5, 0, 1, 0,
		-0.5, 0.5, 0, 0, 0,
	)
}

func (r *Renderer2D) createBuffer(data []byte, usage gfx.BufferUsage) (gfx.Buffer, error) {
	b, err := r.dev.CreateBuffer(uint32(len(data)), usage)
	if err != nil {
		return nil, err
	}
	if err := r.dev.UpdateBuffer(b, 0, data); err != nil {
		b.Dispose()
		return nil, err
	}
	return b, nil
}

func (r *Renderer2D) ensureInstanceCapacity(n uint32) error {
	if r.instances != nil && n <= r.instanceCap {
		return nil
	}
	capacity := r.instanceCap
	if capacity == 0 {
		capacity = initialInstanceCapacity
	}
	for capacity < n {
		capacity *= 2
	}
	b, err := r.dev.CreateBuffer(capacity*instanceStride, gfx.UsageVertex|gfx.UsageDynamic)
	if err != nil {
		return fmt.Errorf("render: instance buffer: %w", err)
	}
	if r.instances != nil {
		r.instances.Dispose()
	}
	r.instances = b
	r.instanceCap = capacity
	return nil
}

// BeginScene uploads the view-projection of cam and starts collecting
// drawables. The camera buffer is fully overwritten on every call.
func (r *Renderer2D) BeginScene(cam *component.Camera, view mgl32.Mat4) error {
	if cam == nil || !cam.Active {
		return ErrNoActiveCamera
	}
	viewProj := cam.Projection.Mul4(view)
	if err := r.dev.UpdateBuffer(r.cameraBuffer, 0, gfx.Matrix(viewProj)); err != nil {
		return fmt.Errorf("render: upload camera: %w", err)
	}
	r.pending = r.pending[:0]
	r.frame++
	r.inScene = true
	return nil
}

// Submit queues one drawable for the current scene.
func (r *Renderer2D) Submit(e ecs.Entity, t *component.Transform, s *component.Sprite) error {
	if !r.inScene {
		return ErrSceneNotBegun
	}
	if t == nil || s == nil {
		return nil
	}
	tex := s.Texture
	if tex == nil {
		tex = r.white
	}
	r.pending = append(r.pending, drawable{
		entity:  e,
		model:   t.Model(),
		color:   s.Color,
		tiling:  s.Tiling(),
		texture: tex,
		z:       t.Position.Z(),
	})
	return nil
}

// DrawWorld submits every entity holding both Transform and Sprite.
func (r *Renderer2D) DrawWorld(w *ecs.World) error {
	if !r.inScene {
		return ErrSceneNotBegun
	}
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.SpriteComponent.Kind(),
		func(e ecs.Entity, t *component.Transform, s *component.Sprite) {
			_ = r.Submit(e, t, s)
		})
	return nil
}

// Flush syncs per-entity GPU state, rebuilds the texture groups, clears the
// target and issues one instanced draw per group.
func (r *Renderer2D) Flush() error {
	if !r.inScene {
		return ErrSceneNotBegun
	}

	sort.SliceStable(r.pending, func(i, j int) bool {
		return r.pending[i].z < r.pending[j].z
	})

	for i := range r.pending {
		if err := r.syncState(&r.pending[i]); err != nil {
			return err
		}
	}
	r.pruneStates()

	if err := r.buildGroups(); err != nil {
		return err
	}
	total := uint32(len(r.pending))
	if err := r.writeInstances(total); err != nil {
		return err
	}

	cl := r.commands
	cl.Begin()
	cl.ClearColorTarget(r.clearColor)
	cl.ClearDepthTarget(1)
	if total > 0 {
		cl.SetPipeline(r.pipeline)
		cl.SetVertexBuffer(0, r.quadVertices)
		cl.SetVertexBuffer(1, r.instances)
		cl.SetIndexBuffer(r.quadIndices, gfx.IndexUint16)
		cl.SetResourceSet(CameraSetSlot, r.cameraSet)
		for _, g := range r.order {
			cl.SetResourceSet(TextureSetSlot, g.ResourceSet)
			cl.DrawIndexed(quadIndexCount, g.Count, 0, 0, g.Offset)
		}
	}
	cl.End()
	if err := r.dev.SubmitCommands(cl); err != nil {
		return fmt.Errorf("render: submit: %w", err)
	}

	prevGroups := r.stats.Groups
	r.stats = Stats{Drawables: len(r.pending), Groups: len(r.order), DrawCalls: len(r.order)}
	if r.stats.Groups != prevGroups {
		r.log.Debug("batch groups changed",
			zap.Int("groups", r.stats.Groups),
			zap.Int("drawables", r.stats.Drawables))
	}
	r.pending = r.pending[:0]
	return nil
}

// EndScene closes the scene opened by BeginScene. It does not draw.
func (r *Renderer2D) EndScene() error {
	if !r.inScene {
		return ErrSceneNotBegun
	}
	r.inScene = false
	return nil
}

func (r *Renderer2D) syncState(d *drawable) error {
	st, ok := r.states[d.entity]
	if !ok {
		var err error
		if st, err = r.createState(d.texture); err != nil {
			return fmt.Errorf("render: state for %s: %w", d.entity, err)
		}
		r.states[d.entity] = st
	} else if st.texture != d.texture {
		set, err := r.dev.CreateResourceSet(r.entityLayout, st.transform, st.color, st.tiling, d.texture)
		if err != nil {
			return fmt.Errorf("render: rebind %s: %w", d.entity, err)
		}
		st.set.Dispose()
		st.set = set
		st.texture = d.texture
	}
	st.frame = r.frame

	if err := r.dev.UpdateBuffer(st.transform, 0, gfx.Matrix(d.model)); err != nil {
		return err
	}
	if err := r.dev.UpdateBuffer(st.color, 0, gfx.Float32s(d.color[:]...)); err != nil {
		return err
	}
	return r.dev.UpdateBuffer(st.tiling, 0, gfx.Float32s(d.tiling))
}

func (r *Renderer2D) createState(tex gfx.Texture) (*entityState, error) {
	st := &entityState{texture: tex}
	var err error
	if st.transform, err = r.dev.CreateBuffer(64, gfx.UsageUniform|gfx.UsageDynamic); err != nil {
		return nil, err
	}
	if st.color, err = r.dev.CreateBuffer(16, gfx.UsageUniform|gfx.UsageDynamic); err != nil {
		st.dispose()
		return nil, err
	}
	if st.tiling, err = r.dev.CreateBuffer(uniformAlign, gfx.UsageUniform|gfx.UsageDynamic); err != nil {
		st.dispose()
		return nil, err
	}
	if st.set, err = r.dev.CreateResourceSet(r.entityLayout, st.transform, st.color, st.tiling, tex); err != nil {
		st.dispose()
		return nil, err
	}
	return st, nil
}

func (st *entityState) dispose() {
	for _, d := range []gfx.Disposable{st.set, st.tiling, st.color, st.transform} {
		if d != nil {
			d.Dispose()
		}
	}
}

// pruneStates disposes the state of entities that were not drawn this frame:
// destroyed entities and entities that lost their Sprite or Transform.
func (r *Renderer2D) pruneStates() {
	for e, st := range r.states {
		if st.frame != r.frame {
			st.dispose()
			delete(r.states, e)
		}
	}
}

// Release disposes the GPU state of e immediately. It must be called between
// frames.
func (r *Renderer2D) Release(e ecs.Entity) {
	if st, ok := r.states[e]; ok {
		st.dispose()
		delete(r.states, e)
	}
}

// buildGroups counts drawables per texture and assigns contiguous offsets.
// Groups are ordered by first appearance in the depth-sorted drawables, so
// earlier groups hold the farthest sprites.
func (r *Renderer2D) buildGroups() error {
	for _, g := range r.groups {
		g.Count = 0
		g.cursor = 0
	}
	r.order = r.order[:0]
	for _, d := range r.pending {
		g, ok := r.groups[d.texture]
		if !ok {
			set, err := r.dev.CreateResourceSet(r.textureLayout, d.texture)
			if err != nil {
				return fmt.Errorf("render: texture set: %w", err)
			}
			g = &InstanceGroup{Texture: d.texture, ResourceSet: set}
			r.groups[d.texture] = g
		}
		if g.Count == 0 {
			r.order = append(r.order, g)
		}
		g.Count++
	}
	for tex, g := range r.groups {
		if g.Count == 0 {
			g.ResourceSet.Dispose()
			delete(r.groups, tex)
		}
	}
	var offset uint32
	for _, g := range r.order {
		g.Offset = offset
		offset += g.Count
	}
	return nil
}

func (r *Renderer2D) writeInstances(total uint32) error {
	if total == 0 {
		return nil
	}
	if err := r.ensureInstanceCapacity(total); err != nil {
		return err
	}
	size := int(total * instanceStride)
	if cap(r.scratch) < size {
		r.scratch = make([]byte, size)
	}
	r.scratch = r.scratch[:size]
	for _, d := range r.pending {
		g := r.groups[d.texture]
		at := (g.Offset + g.cursor) * instanceStride
		g.cursor++
		buf := r.scratch[at:at]
		buf = gfx.AppendMatrix(buf, d.model)
		buf = gfx.AppendFloat32s(buf, d.color[:]...)
		gfx.AppendFloat32s(buf, d.tiling)
	}
	return r.dev.UpdateBuffer(r.instances, 0, r.scratch)
}

// Groups returns the instance groups of the last flush in draw order.
func (r *Renderer2D) Groups() []InstanceGroup {
	out := make([]InstanceGroup, 0, len(r.order))
	for _, g := range r.order {
		out = append(out, *g)
	}
	return out
}

// Stats returns counters of the last flush.
func (r *Renderer2D) Stats() Stats {
	return r.stats
}

// WhiteTexture returns the fallback texture bound for untextured sprites.
func (r *Renderer2D) WhiteTexture() gfx.Texture {
	return r.white
}

// Dispose releases every GPU object owned by the renderer.
func (r *Renderer2D) Dispose() {
	for e, st := range r.states {
		st.dispose()
		delete(r.states, e)
	}
	for tex, g := range r.groups {
		g.ResourceSet.Dispose()
		delete(r.groups, tex)
	}
	r.order = nil
	for _, d := range []gfx.Disposable{
		r.commands, r.instances, r.cameraSet, r.cameraBuffer, r.quadIndices, r.quadVertices,
		r.pipeline, r.entityLayout, r.textureLayout, r.cameraLayout,
	} {
		if d != nil {
			d.Dispose()
		}
	}
	r.commands, r.instances, r.cameraSet, r.cameraBuffer = nil, nil, nil, nil
	r.quadIndices, r.quadVertices, r.pipeline = nil, nil, nil
	r.entityLayout, r.textureLayout, r.cameraLayout = nil, nil, nil
	if r.ownsWhite && r.white != nil {
		r.textures.Remove(WhiteTextureName)
		r.white.Dispose()
		r.white = nil
		r.ownsWhite = false
	}
}

// Package ebitengfx implements gfx.Device on top of ebiten. Ebiten has no
// programmable vertex stage, so indexed instanced draws are expanded on the
// CPU into one DrawTrianglesShader32 call per draw; the fragment stage is a
// Kage shader.
package ebitengfx

import (
	"errors"
	"fmt"
	"image"

	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

var (
	ErrNoTarget        = errors.New("ebitengfx: no render target")
	ErrUnboundResource = errors.New("ebitengfx: draw is missing a bound resource")
)

// Resource slots the device reads while expanding a draw. They match the
// sprite pipeline's resource layouts.
const (
	cameraSlot  = 0
	textureSlot = 1
)

// Device draws onto the image passed to SetTarget.
type Device struct {
	target *ebiten.Image
	log    *zap.Logger

	vertices []ebiten.Vertex
	indices  []uint32
}

func NewDevice(log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{log: log.Named("ebitengfx")}
}

// SetTarget selects the image subsequent submissions draw onto, usually the
// screen handed to ebiten.Game.Draw.
func (d *Device) SetTarget(img *ebiten.Image) {
	d.target = img
}

func (d *Device) Features() gfx.Features {
	return gfx.Features{Name: "ebiten"}
}

type base struct {
	dev      *Device
	disposed bool
}

type buffer struct {
	base
	usage gfx.BufferUsage
	data  []byte
}

func (b *buffer) Dispose()               { b.disposed = true }
func (b *buffer) Size() uint32           { return uint32(len(b.data)) }
func (b *buffer) Usage() gfx.BufferUsage { return b.usage }

func (d *Device) CreateBuffer(size uint32, usage gfx.BufferUsage) (gfx.Buffer, error) {
	return &buffer{base: base{dev: d}, usage: usage, data: make([]byte, size)}, nil
}

func (d *Device) UpdateBuffer(b gfx.Buffer, offset uint32, data []byte) error {
	eb, err := d.ownBuffer(b)
	if err != nil {
		return err
	}
	if uint64(offset)+uint64(len(data)) > uint64(len(eb.data)) {
		return fmt.Errorf("ebitengfx: update %d bytes at %d of %d: %w", len(data), offset, len(eb.data), gfx.ErrOutOfRange)
	}
	copy(eb.data[offset:], data)
	return nil
}

func (d *Device) ownBuffer(b gfx.Buffer) (*buffer, error) {
	eb, ok := b.(*buffer)
	if !ok || eb.dev != d {
		return nil, gfx.ErrForeignResource
	}
	if eb.disposed {
		return nil, gfx.ErrDisposed
	}
	return eb, nil
}

type texture struct {
	base
	img *ebiten.Image
}

func (t *texture) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.img.Deallocate()
}

func (t *texture) Width() uint32  { return uint32(t.img.Bounds().Dx()) }
func (t *texture) Height() uint32 { return uint32(t.img.Bounds().Dy()) }

// Image returns the ebiten image backing a texture of this package.
func Image(t gfx.Texture) (*ebiten.Image, bool) {
	et, ok := t.(*texture)
	if !ok || et.disposed {
		return nil, false
	}
	return et.img, true
}

func (d *Device) CreateTexture(desc gfx.TextureDescription) (gfx.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("ebitengfx: texture size %dx%d", desc.Width, desc.Height)
	}
	img := ebiten.NewImage(int(desc.Width), int(desc.Height))
	return &texture{base: base{dev: d}, img: img}, nil
}

func (d *Device) UpdateTexture(t gfx.Texture, pixels []byte, x, y, width, height uint32) error {
	et, ok := t.(*texture)
	if !ok || et.dev != d {
		return gfx.ErrForeignResource
	}
	if et.disposed {
		return gfx.ErrDisposed
	}
	if x+width > et.Width() || y+height > et.Height() || uint32(len(pixels)) < 4*width*height {
		return gfx.ErrOutOfRange
	}
	region := image.Rect(int(x), int(y), int(x+width), int(y+height))
	sub, ok := et.img.SubImage(region).(*ebiten.Image)
	if !ok {
		return gfx.ErrOutOfRange
	}
	sub.WritePixels(pixels[:4*width*height])
	return nil
}

type resourceLayout struct {
	base
	elements []gfx.ResourceLayoutElement
}

func (l *resourceLayout) Dispose()                              { l.disposed = true }
func (l *resourceLayout) Elements() []gfx.ResourceLayoutElement { return l.elements }

func (d *Device) CreateResourceLayout(elements ...gfx.ResourceLayoutElement) (gfx.ResourceLayout, error) {
	return &resourceLayout{base: base{dev: d}, elements: append([]gfx.ResourceLayoutElement(nil), elements...)}, nil
}

type resourceSet struct {
	base
	layout    gfx.ResourceLayout
	resources []any
}

func (s *resourceSet) Dispose()                   { s.disposed = true }
func (s *resourceSet) Layout() gfx.ResourceLayout { return s.layout }
func (s *resourceSet) Resources() []any           { return s.resources }

func (d *Device) CreateResourceSet(layout gfx.ResourceLayout, resources ...any) (gfx.ResourceSet, error) {
	if err := gfx.ValidateResources(layout, resources); err != nil {
		return nil, err
	}
	return &resourceSet{base: base{dev: d}, layout: layout, resources: append([]any(nil), resources...)}, nil
}

type shaderSet struct {
	base
	name   string
	shader *ebiten.Shader
}

func (s *shaderSet) Name() string { return s.name }

func (s *shaderSet) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.shader.Deallocate()
}

// CreateShaderSet compiles the fragment stage as Kage. The vertex stage is
// required for parity with other backends but is not compiled.
func (d *Device) CreateShaderSet(name string, stages map[gfx.Stage][]byte) (gfx.ShaderSet, error) {
	for _, st := range []gfx.Stage{gfx.StageVertex, gfx.StageFragment} {
		if _, ok := stages[st]; !ok {
			return nil, fmt.Errorf("ebitengfx: shader set %q: %s: %w", name, st, gfx.ErrMissingStage)
		}
	}
	shader, err := ebiten.NewShader(stages[gfx.StageFragment])
	if err != nil {
		return nil, fmt.Errorf("ebitengfx: compile %q: %w", name, err)
	}
	return &shaderSet{base: base{dev: d}, name: name, shader: shader}, nil
}

type pipeline struct {
	base
	desc gfx.PipelineDescription
}

func (p *pipeline) Dispose()                             { p.disposed = true }
func (p *pipeline) Description() gfx.PipelineDescription { return p.desc }

func (d *Device) CreatePipeline(desc gfx.PipelineDescription) (gfx.Pipeline, error) {
	if _, ok := desc.Shaders.(*shaderSet); !ok {
		return nil, fmt.Errorf("ebitengfx: pipeline needs a shader set from this device: %w", gfx.ErrForeignResource)
	}
	if len(desc.VertexLayouts) < 2 {
		return nil, fmt.Errorf("ebitengfx: pipeline needs vertex and instance layouts: %w", gfx.ErrLayoutMismatch)
	}
	return &pipeline{base: base{dev: d}, desc: desc}, nil
}

type commandList struct {
	gfx.CommandBuffer
	dev *Device
}

func (d *Device) CreateCommandList() (gfx.CommandList, error) {
	return &commandList{dev: d}, nil
}

// SubmitCommands replays cl onto the current target.
func (d *Device) SubmitCommands(cl gfx.CommandList) error {
	ecl, ok := cl.(*commandList)
	if !ok || ecl.dev != d {
		return gfx.ErrForeignResource
	}
	if err := ecl.Ready(); err != nil {
		return err
	}
	if d.target == nil {
		return ErrNoTarget
	}

	var state gfx.Bindings
	for _, cmd := range ecl.Commands() {
		if state.Apply(cmd) {
			continue
		}
		switch cmd.Op {
		case gfx.OpClearColor:
			d.target.Fill(cmd.Color)
		case gfx.OpUpdateBuffer:
			if err := d.UpdateBuffer(cmd.Buffer, cmd.Offset, cmd.Data); err != nil {
				return err
			}
		case gfx.OpDrawIndexed:
			if err := d.draw(&state, cmd.Draw); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Device) draw(state *gfx.Bindings, args gfx.DrawArgs) error {
	p, ok := state.Pipeline.(*pipeline)
	if !ok {
		return fmt.Errorf("ebitengfx: draw without pipeline: %w", ErrUnboundResource)
	}
	in, err := d.drawInput(state, p.desc)
	if err != nil {
		return err
	}

	bounds := d.target.Bounds()
	in.viewport = mgl32.Vec2{float32(bounds.Dx()), float32(bounds.Dy())}
	d.vertices, d.indices = expand(d.vertices[:0], d.indices[:0], in, args)
	if len(d.indices) == 0 {
		if args.InstanceCount > 0 {
			d.log.Debug("dropped draw with out of range indices",
				zap.Uint32("indices", args.IndexCount),
				zap.Uint32("instances", args.InstanceCount))
		}
		return nil
	}

	op := &ebiten.DrawTrianglesShaderOptions{}
	op.Images[0] = in.image
	d.target.DrawTrianglesShader32(d.vertices, d.indices, p.desc.Shaders.(*shaderSet).shader, op)
	return nil
}

func (d *Device) drawInput(state *gfx.Bindings, desc gfx.PipelineDescription) (drawInput, error) {
	var in drawInput
	quad, err := d.ownBuffer(state.VertexBuffers[0])
	if err != nil {
		return in, fmt.Errorf("ebitengfx: vertex buffer: %w", err)
	}
	instances, err := d.ownBuffer(state.VertexBuffers[1])
	if err != nil {
		return in, fmt.Errorf("ebitengfx: instance buffer: %w", err)
	}
	indices, err := d.ownBuffer(state.IndexBuffer)
	if err != nil {
		return in, fmt.Errorf("ebitengfx: index buffer: %w", err)
	}

	cam, err := d.ownBuffer(firstResource[gfx.Buffer](state.ResourceSets[cameraSlot]))
	if err != nil {
		return in, fmt.Errorf("ebitengfx: camera buffer: %w", err)
	}
	img, ok := Image(firstResource[gfx.Texture](state.ResourceSets[textureSlot]))
	if !ok {
		return in, fmt.Errorf("ebitengfx: texture: %w", ErrUnboundResource)
	}

	in.vertexLayout = desc.VertexLayouts[0]
	in.instanceLayout = desc.VertexLayouts[1]
	in.vertexData = quad.data
	in.instanceData = instances.data
	in.indexData = indices.data
	in.indexFormat = state.IndexFormat
	in.viewProj = gfx.ReadMatrix(cam.data, 0)
	in.image = img
	in.texSize = mgl32.Vec2{float32(img.Bounds().Dx()), float32(img.Bounds().Dy())}
	return in, nil
}

func firstResource[T any](rs gfx.ResourceSet) T {
	var zero T
	if rs == nil {
		return zero
	}
	for _, r := range rs.Resources() {
		if v, ok := r.(T); ok {
			return v
		}
	}
	return zero
}

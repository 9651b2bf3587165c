// Package headless is a gfx.Device that keeps every object in memory and
// records draw calls instead of rasterizing. It backs tests and the
// "headless" graphics backend.
package headless

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/bootzin/BootEngine-sub000/gfx"
)

// DrawCall is a draw that reached the device through SubmitCommands.
type DrawCall struct {
	Pipeline      gfx.Pipeline
	Args          gfx.DrawArgs
	ResourceSets  map[uint32]gfx.ResourceSet
	VertexBuffers map[uint32]gfx.Buffer
	IndexBuffer   gfx.Buffer
}

// Device is an in-memory gfx.Device.
type Device struct {
	mu       sync.Mutex
	features gfx.Features
	live     int
	draws    []DrawCall
	clears   []color.Color
	submits  int
}

// NewDevice creates a headless device. yInverted reports the clip-space
// convention the device claims to use.
func NewDevice(yInverted bool) *Device {
	return &Device{features: gfx.Features{Name: "headless", ClipSpaceYInverted: yInverted, DepthTest: true}}
}

func (d *Device) Features() gfx.Features {
	return d.features
}

func (d *Device) track() {
	d.mu.Lock()
	d.live++
	d.mu.Unlock()
}

func (d *Device) release() {
	d.mu.Lock()
	d.live--
	d.mu.Unlock()
}

// Live returns the number of created and not yet disposed objects.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// Draws returns the draw calls submitted since the last ResetStats.
func (d *Device) Draws() []DrawCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DrawCall(nil), d.draws...)
}

// Clears returns the clear colors submitted since the last ResetStats.
func (d *Device) Clears() []color.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]color.Color(nil), d.clears...)
}

// Submits returns the number of submitted command lists.
func (d *Device) Submits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submits
}

// ResetStats forgets recorded draws, clears and submits.
func (d *Device) ResetStats() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws = nil
	d.clears = nil
	d.submits = 0
}

type base struct {
	dev      *Device
	disposed bool
}

func (b *base) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.dev.release()
}

type buffer struct {
	base
	usage gfx.BufferUsage
	data  []byte
}

func (b *buffer) Size() uint32           { return uint32(len(b.data)) }
func (b *buffer) Usage() gfx.BufferUsage { return b.usage }

// Bytes returns the contents of a buffer created by a headless device.
func Bytes(b gfx.Buffer) []byte {
	hb, ok := b.(*buffer)
	if !ok {
		return nil
	}
	return hb.data
}

// Disposed reports whether a headless object has been disposed.
func Disposed(obj any) bool {
	switch o := obj.(type) {
	case *buffer:
		return o.disposed
	case *texture:
		return o.disposed
	case *resourceSet:
		return o.disposed
	case *resourceLayout:
		return o.disposed
	case *pipeline:
		return o.disposed
	case *shaderSet:
		return o.disposed
	default:
		return false
	}
}

func (d *Device) CreateBuffer(size uint32, usage gfx.BufferUsage) (gfx.Buffer, error) {
	d.track()
	return &buffer{base: base{dev: d}, usage: usage, data: make([]byte, size)}, nil
}

func (d *Device) UpdateBuffer(b gfx.Buffer, offset uint32, data []byte) error {
	hb, err := d.ownBuffer(b)
	if err != nil {
		return err
	}
	if uint64(offset)+uint64(len(data)) > uint64(len(hb.data)) {
		return fmt.Errorf("update %d bytes at %d of %d: %w", len(data), offset, len(hb.data), gfx.ErrOutOfRange)
	}
	copy(hb.data[offset:], data)
	return nil
}

func (d *Device) ownBuffer(b gfx.Buffer) (*buffer, error) {
	hb, ok := b.(*buffer)
	if !ok || hb.dev != d {
		return nil, gfx.ErrForeignResource
	}
	if hb.disposed {
		return nil, gfx.ErrDisposed
	}
	return hb, nil
}

type texture struct {
	base
	width, height uint32
	pixels        []byte
}

func (t *texture) Width() uint32  { return t.width }
func (t *texture) Height() uint32 { return t.height }

// Pixels returns the RGBA contents of a texture created by a headless device.
func Pixels(t gfx.Texture) []byte {
	ht, ok := t.(*texture)
	if !ok {
		return nil
	}
	return ht.pixels
}

func (d *Device) CreateTexture(desc gfx.TextureDescription) (gfx.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("headless: texture size %dx%d", desc.Width, desc.Height)
	}
	d.track()
	return &texture{
		base:   base{dev: d},
		width:  desc.Width,
		height: desc.Height,
		pixels: make([]byte, 4*desc.Width*desc.Height),
	}, nil
}

func (d *Device) UpdateTexture(t gfx.Texture, pixels []byte, x, y, width, height uint32) error {
	ht, ok := t.(*texture)
	if !ok || ht.dev != d {
		return gfx.ErrForeignResource
	}
	if ht.disposed {
		return gfx.ErrDisposed
	}
	if x+width > ht.width || y+height > ht.height || uint32(len(pixels)) < 4*width*height {
		return gfx.ErrOutOfRange
	}
	for row := uint32(0); row < height; row++ {
		dst := 4 * ((y+row)*ht.width + x)
		src := 4 * row * width
		copy(ht.pixels[dst:dst+4*width], pixels[src:src+4*width])
	}
	return nil
}

type resourceLayout struct {
	base
	elements []gfx.ResourceLayoutElement
}

func (l *resourceLayout) Elements() []gfx.ResourceLayoutElement { return l.elements }

func (d *Device) CreateResourceLayout(elements ...gfx.ResourceLayoutElement) (gfx.ResourceLayout, error) {
	d.track()
	return &resourceLayout{base: base{dev: d}, elements: append([]gfx.ResourceLayoutElement(nil), elements...)}, nil
}

type resourceSet struct {
	base
	layout    gfx.ResourceLayout
	resources []any
}

func (s *resourceSet) Layout() gfx.ResourceLayout { return s.layout }
func (s *resourceSet) Resources() []any           { return s.resources }

func (d *Device) CreateResourceSet(layout gfx.ResourceLayout, resources ...any) (gfx.ResourceSet, error) {
	if err := gfx.ValidateResources(layout, resources); err != nil {
		return nil, err
	}
	d.track()
	return &resourceSet{base: base{dev: d}, layout: layout, resources: append([]any(nil), resources...)}, nil
}

type shaderSet struct {
	base
	name   string
	stages map[gfx.Stage][]byte
}

func (s *shaderSet) Name() string { return s.name }

func (d *Device) CreateShaderSet(name string, stages map[gfx.Stage][]byte) (gfx.ShaderSet, error) {
	for _, st := range []gfx.Stage{gfx.StageVertex, gfx.StageFragment} {
		if _, ok := stages[st]; !ok {
			return nil, fmt.Errorf("shader set %q: %s: %w", name, st, gfx.ErrMissingStage)
		}
	}
	d.track()
	return &shaderSet{base: base{dev: d}, name: name, stages: stages}, nil
}

type pipeline struct {
	base
	desc gfx.PipelineDescription
}

func (p *pipeline) Description() gfx.PipelineDescription { return p.desc }

func (d *Device) CreatePipeline(desc gfx.PipelineDescription) (gfx.Pipeline, error) {
	if desc.Shaders == nil {
		return nil, fmt.Errorf("headless: pipeline without shaders: %w", gfx.ErrMissingStage)
	}
	d.track()
	return &pipeline{base: base{dev: d}, desc: desc}, nil
}

type commandList struct {
	gfx.CommandBuffer
	dev *Device
}

func (d *Device) CreateCommandList() (gfx.CommandList, error) {
	return &commandList{dev: d}, nil
}

func (d *Device) SubmitCommands(cl gfx.CommandList) error {
	hcl, ok := cl.(*commandList)
	if !ok || hcl.dev != d {
		return gfx.ErrForeignResource
	}
	if err := hcl.Ready(); err != nil {
		return err
	}

	var state gfx.Bindings
	var draws []DrawCall
	var clears []color.Color
	for _, cmd := range hcl.Commands() {
		if state.Apply(cmd) {
			continue
		}
		switch cmd.Op {
		case gfx.OpClearColor:
			clears = append(clears, cmd.Color)
		case gfx.OpUpdateBuffer:
			if err := d.UpdateBuffer(cmd.Buffer, cmd.Offset, cmd.Data); err != nil {
				return err
			}
		case gfx.OpDrawIndexed:
			if state.Pipeline == nil || state.IndexBuffer == nil {
				return fmt.Errorf("headless: draw without pipeline or index buffer: %w", gfx.ErrNotRecording)
			}
			draws = append(draws, DrawCall{
				Pipeline:      state.Pipeline,
				Args:          cmd.Draw,
				ResourceSets:  copyMap(state.ResourceSets),
				VertexBuffers: copyMap(state.VertexBuffers),
				IndexBuffer:   state.IndexBuffer,
			})
		}
	}

	d.mu.Lock()
	d.draws = append(d.draws, draws...)
	d.clears = append(d.clears, clears...)
	d.submits++
	d.mu.Unlock()
	return nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

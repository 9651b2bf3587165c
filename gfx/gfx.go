// Package gfx is the graphics device abstraction the renderer talks to.
// Backends (headless, ebiten) implement Device; every call is synchronous
// from the caller's point of view.
package gfx

import (
	"errors"
	"image/color"
)

var (
	ErrDisposed        = errors.New("gfx: resource disposed")
	ErrOutOfRange      = errors.New("gfx: write out of buffer range")
	ErrForeignResource = errors.New("gfx: resource created by another device")
	ErrLayoutMismatch  = errors.New("gfx: resources do not match layout")
	ErrNotRecording    = errors.New("gfx: command list not recording")
	ErrMissingStage    = errors.New("gfx: shader set missing required stage")
)

// BufferUsage is a bit set describing how a buffer is bound.
type BufferUsage uint8

const (
	UsageVertex BufferUsage = 1 << iota
	UsageIndex
	UsageUniform
	UsageDynamic
)

// PixelFormat of a texture. Only 8-bit RGBA is used by the engine.
type PixelFormat uint8

const (
	FormatRGBA8 PixelFormat = iota
)

// TextureDescription describes a texture to create.
type TextureDescription struct {
	Width  uint32
	Height uint32
	Format PixelFormat
}

// ResourceKind is the kind of a single binding inside a resource layout.
type ResourceKind uint8

const (
	KindUniformBuffer ResourceKind = iota
	KindTexture
)

// ResourceLayoutElement describes one binding slot.
type ResourceLayoutElement struct {
	Name string
	Kind ResourceKind
}

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// VertexFormat is the format of one vertex attribute.
type VertexFormat uint8

const (
	Float1 VertexFormat = iota
	Float2
	Float3
	Float4
	Float4x4
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint32 {
	switch f {
	case Float1:
		return 4
	case Float2:
		return 8
	case Float3:
		return 12
	case Float4:
		return 16
	case Float4x4:
		return 64
	default:
		return 0
	}
}

// VertexElement is a named attribute within a vertex layout.
type VertexElement struct {
	Name   string
	Format VertexFormat
}

// VertexLayout describes one vertex buffer slot. InstanceStepRate 0 means
// per-vertex data, 1 means per-instance data.
type VertexLayout struct {
	Elements         []VertexElement
	InstanceStepRate uint32
}

// Stride returns the packed size of one element of the layout.
func (l VertexLayout) Stride() uint32 {
	var n uint32
	for _, e := range l.Elements {
		n += e.Format.Size()
	}
	return n
}

// Offset returns the byte offset of the named attribute.
func (l VertexLayout) Offset(name string) (uint32, bool) {
	var n uint32
	for _, e := range l.Elements {
		if e.Name == name {
			return n, true
		}
		n += e.Format.Size()
	}
	return 0, false
}

// Topology of the primitives produced by a pipeline.
type Topology uint8

const (
	TriangleList Topology = iota
	TriangleStrip
)

// PipelineDescription ties shaders, resource layouts and vertex layouts together.
type PipelineDescription struct {
	Shaders         ShaderSet
	ResourceLayouts []ResourceLayout
	VertexLayouts   []VertexLayout
	Topology        Topology
	DepthTest       bool
}

// IndexFormat of an index buffer.
type IndexFormat uint8

const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

// Disposable GPU objects must be disposed explicitly; nothing is reclaimed
// automatically.
type Disposable interface {
	Dispose()
}

type Buffer interface {
	Disposable
	Size() uint32
	Usage() BufferUsage
}

type Texture interface {
	Disposable
	Width() uint32
	Height() uint32
}

type ResourceLayout interface {
	Disposable
	Elements() []ResourceLayoutElement
}

type ResourceSet interface {
	Disposable
	Layout() ResourceLayout
	Resources() []any
}

type ShaderSet interface {
	Disposable
	Name() string
}

type Pipeline interface {
	Disposable
	Description() PipelineDescription
}

// CommandList records draw commands between Begin and End. Nothing reaches the
// backend until the list is submitted.
type CommandList interface {
	Disposable
	Begin()
	End()
	ClearColorTarget(c color.Color)
	ClearDepthTarget(depth float32)
	SetPipeline(p Pipeline)
	SetVertexBuffer(slot uint32, b Buffer)
	SetIndexBuffer(b Buffer, format IndexFormat)
	SetResourceSet(slot uint32, rs ResourceSet)
	UpdateBuffer(b Buffer, offset uint32, data []byte)
	DrawIndexed(indexCount, instanceCount, indexStart uint32, vertexOffset int32, instanceStart uint32)
}

// Features reports backend conventions the camera and renderer adapt to.
type Features struct {
	Name               string
	ClipSpaceYInverted bool
	DepthTest          bool
}

// Device creates GPU objects and executes command lists.
type Device interface {
	Features() Features
	CreateBuffer(size uint32, usage BufferUsage) (Buffer, error)
	UpdateBuffer(b Buffer, offset uint32, data []byte) error
	CreateTexture(desc TextureDescription) (Texture, error)
	UpdateTexture(t Texture, pixels []byte, x, y, width, height uint32) error
	CreateResourceLayout(elements ...ResourceLayoutElement) (ResourceLayout, error)
	CreateResourceSet(layout ResourceLayout, resources ...any) (ResourceSet, error)
	CreateShaderSet(name string, stages map[Stage][]byte) (ShaderSet, error)
	CreatePipeline(desc PipelineDescription) (Pipeline, error)
	CreateCommandList() (CommandList, error)
	SubmitCommands(cl CommandList) error
}

// ValidateResources checks that resources match the kinds of layout elements.
func ValidateResources(layout ResourceLayout, resources []any) error {
	elems := layout.Elements()
	if len(elems) != len(resources) {
		return ErrLayoutMismatch
	}
	for i, e := range elems {
		switch e.Kind {
		case KindUniformBuffer:
			b, ok := resources[i].(Buffer)
			if !ok || b.Usage()&UsageUniform == 0 {
				return ErrLayoutMismatch
			}
		case KindTexture:
			if _, ok := resources[i].(Texture); !ok {
				return ErrLayoutMismatch
			}
		}
	}
	return nil
}

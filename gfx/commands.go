package gfx

import "image/color"

// Op identifies a recorded command.
type Op uint8

const (
	OpClearColor Op = iota
	OpClearDepth
	OpSetPipeline
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpSetResourceSet
	OpUpdateBuffer
	OpDrawIndexed
)

// DrawArgs are the arguments of an indexed, instanced draw.
type DrawArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	IndexStart    uint32
	VertexOffset  int32
	InstanceStart uint32
}

// Command is one recorded operation. Only the fields relevant to Op are set.
type Command struct {
	Op          Op
	Color       color.Color
	Depth       float32
	Pipeline    Pipeline
	Slot        uint32
	Buffer      Buffer
	IndexFormat IndexFormat
	ResourceSet ResourceSet
	Offset      uint32
	Data        []byte
	Draw        DrawArgs
}

// CommandBuffer is a backend-neutral CommandList. Backends embed it and walk
// Commands on submit.
type CommandBuffer struct {
	commands  []Command
	recording bool
	ended     bool
	misuse    bool
	disposed  bool
}

func (c *CommandBuffer) Begin() {
	c.commands = c.commands[:0]
	c.recording = true
	c.ended = false
	c.misuse = false
}

func (c *CommandBuffer) End() {
	if !c.recording {
		c.misuse = true
		return
	}
	c.recording = false
	c.ended = true
}

func (c *CommandBuffer) record(cmd Command) {
	if !c.recording {
		c.misuse = true
		return
	}
	c.commands = append(c.commands, cmd)
}

func (c *CommandBuffer) ClearColorTarget(col color.Color) {
	c.record(Command{Op: OpClearColor, Color: col})
}

func (c *CommandBuffer) ClearDepthTarget(depth float32) {
	c.record(Command{Op: OpClearDepth, Depth: depth})
}

func (c *CommandBuffer) SetPipeline(p Pipeline) {
	c.record(Command{Op: OpSetPipeline, Pipeline: p})
}

func (c *CommandBuffer) SetVertexBuffer(slot uint32, b Buffer) {
	c.record(Command{Op: OpSetVertexBuffer, Slot: slot, Buffer: b})
}

func (c *CommandBuffer) SetIndexBuffer(b Buffer, format IndexFormat) {
	c.record(Command{Op: OpSetIndexBuffer, Buffer: b, IndexFormat: format})
}

func (c *CommandBuffer) SetResourceSet(slot uint32, rs ResourceSet) {
	c.record(Command{Op: OpSetResourceSet, Slot: slot, ResourceSet: rs})
}

func (c *CommandBuffer) UpdateBuffer(b Buffer, offset uint32, data []byte) {
	c.record(Command{Op: OpUpdateBuffer, Buffer: b, Offset: offset, Data: append([]byte(nil), data...)})
}

func (c *CommandBuffer) DrawIndexed(indexCount, instanceCount, indexStart uint32, vertexOffset int32, instanceStart uint32) {
	c.record(Command{Op: OpDrawIndexed, Draw: DrawArgs{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		IndexStart:    indexStart,
		VertexOffset:  vertexOffset,
		InstanceStart: instanceStart,
	}})
}

func (c *CommandBuffer) Dispose() {
	c.commands = nil
	c.disposed = true
}

// Commands returns the recorded commands.
func (c *CommandBuffer) Commands() []Command {
	return c.commands
}

// Ready reports an error unless the list was recorded with a matching
// Begin/End pair and no command was issued outside of it.
func (c *CommandBuffer) Ready() error {
	if c.disposed {
		return ErrDisposed
	}
	if c.misuse || !c.ended {
		return ErrNotRecording
	}
	return nil
}

// Bindings tracks the state set by commands while a backend replays a list.
type Bindings struct {
	Pipeline      Pipeline
	VertexBuffers map[uint32]Buffer
	IndexBuffer   Buffer
	IndexFormat   IndexFormat
	ResourceSets  map[uint32]ResourceSet
}

// Apply folds a state-setting command into b. It reports false for commands
// that are not state changes.
func (b *Bindings) Apply(cmd Command) bool {
	switch cmd.Op {
	case OpSetPipeline:
		b.Pipeline = cmd.Pipeline
	case OpSetVertexBuffer:
		if b.VertexBuffers == nil {
			b.VertexBuffers = make(map[uint32]Buffer)
		}
		b.VertexBuffers[cmd.Slot] = cmd.Buffer
	case OpSetIndexBuffer:
		b.IndexBuffer = cmd.Buffer
		b.IndexFormat = cmd.IndexFormat
	case OpSetResourceSet:
		if b.ResourceSets == nil {
			b.ResourceSets = make(map[uint32]ResourceSet)
		}
		b.ResourceSets[cmd.Slot] = cmd.ResourceSet
	default:
		return false
	}
	return true
}

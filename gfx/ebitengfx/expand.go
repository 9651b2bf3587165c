package ebitengfx

import (
	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// drawInput is everything a single indexed instanced draw reads.
type drawInput struct {
	vertexLayout   gfx.VertexLayout
	instanceLayout gfx.VertexLayout
	vertexData     []byte
	instanceData   []byte
	indexData      []byte
	indexFormat    gfx.IndexFormat
	viewProj       mgl32.Mat4
	image          *ebiten.Image
	texSize        mgl32.Vec2
	viewport       mgl32.Vec2
}

// expand runs the vertex stage on the CPU: every instance in the draw range
// gets its own copy of the referenced vertices, transformed to target pixels.
// Colors are premultiplied and the tiling factor travels in Custom0.
func expand(verts []ebiten.Vertex, inds []uint32, in drawInput, args gfx.DrawArgs) ([]ebiten.Vertex, []uint32) {
	vStride := in.vertexLayout.Stride()
	iStride := in.instanceLayout.Stride()
	posOff, ok := in.vertexLayout.Offset("Position")
	if vStride == 0 || iStride == 0 || !ok {
		return verts, inds
	}
	uvOff, hasUV := in.vertexLayout.Offset("TexCoord")
	modelOff, hasModel := in.instanceLayout.Offset("Model")
	colorOff, hasColor := in.instanceLayout.Offset("Color")
	tilingOff, hasTiling := in.instanceLayout.Offset("Tiling")

	vertexCount := uint32(len(in.vertexData)) / vStride
	local, ok := localIndices(in, args, vertexCount)
	if !ok {
		return verts, inds
	}

	end := args.InstanceStart + args.InstanceCount
	if n := uint32(len(in.instanceData)) / iStride; end > n {
		end = n
	}

	halfW, halfH := in.viewport.X()/2, in.viewport.Y()/2
	for inst := args.InstanceStart; inst < end; inst++ {
		at := inst * iStride
		model := mgl32.Ident4()
		if hasModel {
			model = gfx.ReadMatrix(in.instanceData, at+modelOff)
		}
		col := mgl32.Vec4{1, 1, 1, 1}
		if hasColor {
			for i := range col {
				col[i] = gfx.ReadFloat32(in.instanceData, at+colorOff+uint32(i)*4)
			}
		}
		tiling := float32(1)
		if hasTiling {
			if t := gfx.ReadFloat32(in.instanceData, at+tilingOff); t != 0 {
				tiling = t
			}
		}

		mvp := in.viewProj.Mul4(model)
		base := uint32(len(verts))
		for v := uint32(0); v < vertexCount; v++ {
			vat := v * vStride
			pos := mgl32.Vec4{
				gfx.ReadFloat32(in.vertexData, vat+posOff),
				gfx.ReadFloat32(in.vertexData, vat+posOff+4),
				gfx.ReadFloat32(in.vertexData, vat+posOff+8),
				1,
			}
			clip := mvp.Mul4x1(pos)
			if w := clip.W(); w != 0 && w != 1 {
				clip = clip.Mul(1 / w)
			}
			var u, tv float32
			if hasUV {
				u = gfx.ReadFloat32(in.vertexData, vat+uvOff)
				tv = gfx.ReadFloat32(in.vertexData, vat+uvOff+4)
			}
			verts = append(verts, ebiten.Vertex{
				DstX:    (clip.X() + 1) * halfW,
				DstY:    (1 - clip.Y()) * halfH,
				SrcX:    u * in.texSize.X(),
				SrcY:    tv * in.texSize.Y(),
				ColorR:  col.X() * col.W(),
				ColorG:  col.Y() * col.W(),
				ColorB:  col.Z() * col.W(),
				ColorA:  col.W(),
				Custom0: tiling,
			})
		}
		for _, idx := range local {
			inds = append(inds, base+idx)
		}
	}
	return verts, inds
}

// localIndices resolves the draw's index range against the vertex buffer. It
// reports false when the range or any index is out of bounds.
func localIndices(in drawInput, args gfx.DrawArgs, vertexCount uint32) ([]uint32, bool) {
	size := uint32(2)
	if in.indexFormat == gfx.IndexUint32 {
		size = 4
	}
	if args.IndexStart+args.IndexCount > uint32(len(in.indexData))/size {
		return nil, false
	}
	out := make([]uint32, 0, args.IndexCount)
	for k := uint32(0); k < args.IndexCount; k++ {
		idx := int64(gfx.ReadIndex(in.indexData, in.indexFormat, args.IndexStart+k)) + int64(args.VertexOffset)
		if idx < 0 || idx >= int64(vertexCount) {
			return nil, false
		}
		out = append(out, uint32(idx))
	}
	return out, true
}

package ebitengfx

import (
	"testing"

	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/bootzin/BootEngine-sub000/render"
	"github.com/go-gl/mathgl/mgl32"
)

func instanceBytes(model mgl32.Mat4, col mgl32.Vec4, tiling float32) []byte {
	b := gfx.AppendMatrix(nil, model)
	b = gfx.AppendFloat32s(b, col[:]...)
	return gfx.AppendFloat32s(b, tiling)
}

func quadInput(instances []byte) drawInput {
	return drawInput{
		vertexLayout:   render.QuadLayout,
		instanceLayout: render.InstanceLayout,
		vertexData: gfx.Float32s(
			-0.5, -0.5, 0, 0, 1,
			0.5, -0.5, 0, 1, 1,
			0.5, 0.5, 0, 1, 0,
			-0.5, 0.5, 0, 0, 0,
		),
		instanceData: instances,
		indexData:    gfx.Uint16s(0, 1, 2, 2, 3, 0),
		indexFormat:  gfx.IndexUint16,
		viewProj:     mgl32.Ident4(),
		texSize:      mgl32.Vec2{8, 4},
		viewport:     mgl32.Vec2{100, 100},
	}
}

func TestExpandSingleInstance(t *testing.T) {
	in := quadInput(instanceBytes(mgl32.Ident4(), mgl32.Vec4{1, 0.5, 0, 0.5}, 2))
	verts, inds := expand(nil, nil, in, gfx.DrawArgs{IndexCount: 6, InstanceCount: 1})

	if len(verts) != 4 || len(inds) != 6 {
		t.Fatalf("got %d vertices and %d indices, want 4 and 6", len(verts), len(inds))
	}
	v := verts[0]
	if v.DstX != 25 || v.DstY != 75 {
		t.Fatalf("bottom-left vertex at (%v,%v), want (25,75)", v.DstX, v.DstY)
	}
	if v.SrcX != 0 || v.SrcY != 4 {
		t.Fatalf("bottom-left texel (%v,%v), want (0,4)", v.SrcX, v.SrcY)
	}
	if v.ColorR != 0.5 || v.ColorG != 0.25 || v.ColorA != 0.5 {
		t.Fatalf("color not premultiplied: %+v", v)
	}
	if v.Custom0 != 2 {
		t.Fatalf("tiling = %v, want 2", v.Custom0)
	}
}

func TestExpandInstanceRange(t *testing.T) {
	var data []byte
	for i := 0; i < 3; i++ {
		data = append(data, instanceBytes(mgl32.Translate3D(float32(i)*0.1, 0, 0), mgl32.Vec4{1, 1, 1, 1}, 0)...)
	}
	in := quadInput(data)

	tests := []struct {
		name      string
		args      gfx.DrawArgs
		wantVerts int
	}{
		{name: "all", args: gfx.DrawArgs{IndexCount: 6, InstanceCount: 3}, wantVerts: 12},
		{name: "offset", args: gfx.DrawArgs{IndexCount: 6, InstanceCount: 2, InstanceStart: 1}, wantVerts: 8},
		{name: "clamped", args: gfx.DrawArgs{IndexCount: 6, InstanceCount: 5, InstanceStart: 2}, wantVerts: 4},
		{name: "bad_indices", args: gfx.DrawArgs{IndexCount: 12, InstanceCount: 1}, wantVerts: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verts, inds := expand(nil, nil, in, tt.args)
			if len(verts) != tt.wantVerts {
				t.Fatalf("vertices = %d, want %d", len(verts), tt.wantVerts)
			}
			if len(inds) != tt.wantVerts/4*6 {
				t.Fatalf("indices = %d, want %d", len(inds), tt.wantVerts/4*6)
			}
			for _, i := range inds {
				if int(i) >= len(verts) {
					t.Fatalf("index %d out of %d vertices", i, len(verts))
				}
			}
		})
	}

	verts, _ := expand(nil, nil, in, gfx.DrawArgs{IndexCount: 6, InstanceCount: 1, InstanceStart: 1})
	if !mgl32.FloatEqualThreshold(verts[0].DstX, 30, 1e-4) {
		t.Fatalf("second instance x = %v, want 30", verts[0].DstX)
	}
	if verts[0].Custom0 != 1 {
		t.Fatalf("zero tiling not treated as 1: %v", verts[0].Custom0)
	}
}

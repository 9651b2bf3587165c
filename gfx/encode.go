package gfx

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AppendFloat32s appends little-endian float32 values to dst.
func AppendFloat32s(dst []byte, vals ...float32) []byte {
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// Float32s encodes vals as little-endian bytes.
func Float32s(vals ...float32) []byte {
	return AppendFloat32s(make([]byte, 0, 4*len(vals)), vals...)
}

// AppendMatrix appends m in column-major order.
func AppendMatrix(dst []byte, m mgl32.Mat4) []byte {
	return AppendFloat32s(dst, m[:]...)
}

// Matrix encodes m in column-major order.
func Matrix(m mgl32.Mat4) []byte {
	return AppendMatrix(make([]byte, 0, 64), m)
}

// Uint16s encodes vals as little-endian bytes.
func Uint16s(vals ...uint16) []byte {
	out := make([]byte, 0, 2*len(vals))
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

// ReadFloat32 decodes the float32 at byte offset off.
func ReadFloat32(b []byte, off uint32) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

// ReadMatrix decodes a column-major matrix at byte offset off.
func ReadMatrix(b []byte, off uint32) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = ReadFloat32(b, off+uint32(i)*4)
	}
	return m
}

// ReadIndex decodes the index at position i of an index buffer.
func ReadIndex(b []byte, format IndexFormat, i uint32) uint32 {
	if format == IndexUint32 {
		return binary.LittleEndian.Uint32(b[i*4:])
	}
	return uint32(binary.LittleEndian.Uint16(b[i*2:]))
}

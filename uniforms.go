package raydemo

import "encoding/binary"

// UniformSize is the byte size of the encoded uniform record.
const UniformSize = 12

// UniformBufferSize is the GPU allocation for the uniform record, rounded
// up to the 16-byte uniform alignment.
const UniformBufferSize = 16

// Uniforms is the per-frame record read by the ray shader.
type Uniforms struct {
	// Frame increments once per ray redraw and wraps at 2³². It seeds the
	// per-pixel random sequence.
	Frame  uint32
	Width  uint32
	Height uint32
}

// Advance increments the frame counter.
func (u *Uniforms) Advance() {
	u.Frame++
}

// Bytes returns the 12-byte little-endian encoding: frame, width, height.
func (u Uniforms) Bytes() []byte {
	b := make([]byte, UniformSize)
	binary.LittleEndian.PutUint32(b[0:4], u.Frame)
	binary.LittleEndian.PutUint32(b[4:8], u.Width)
	binary.LittleEndian.PutUint32(b[8:12], u.Height)
	return b
}

// DecodeUniforms parses a record written by Bytes. Short input yields zeros
// for the missing fields.
func DecodeUniforms(b []byte) Uniforms {
	var u Uniforms
	if len(b) >= 4 {
		u.Frame = binary.LittleEndian.Uint32(b[0:4])
	}
	if len(b) >= 8 {
		u.Width = binary.LittleEndian.Uint32(b[4:8])
	}
	if len(b) >= 12 {
		u.Height = binary.LittleEndian.Uint32(b[8:12])
	}
	return u
}

package tracer

// Hash is a one-at-a-time integer hash. The ray shader uses the same
// function to seed each pixel.
func Hash(x uint32) uint32 {
	x += x << 10
	x ^= x >> 6
	x += x << 3
	x ^= x >> 11
	x += x << 15
	return x
}

// RNG is the xorshift32 generator used per pixel by the ray shader.
type RNG struct {
	state uint32
}

// NewPixelRNG seeds the generator for one pixel of one frame.
// Every frame is an independent sample, so the frame counter is mixed
// into the seed.
func NewPixelRNG(pixel, frame uint32) *RNG {
	s := Hash(pixel ^ Hash(frame))
	if s == 0 {
		// xorshift has a fixed point at zero.
		s = 1
	}
	return &RNG{state: s}
}

// Uint32 advances the generator.
func (r *RNG) Uint32() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float32 returns a value in [0, 1) built from the top 24 bits.
func (r *RNG) Float32() float32 {
	return float32(r.Uint32()>>8) / 16777216.0
}

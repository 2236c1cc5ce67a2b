package pico

// TestCode packs four signed 8-bit pixel offsets (dr1, dc1, dr2, dc2) into a
// single 32-bit value, least-significant byte first. A zero code always
// evaluates to 1 (both sampled points fall on the same pixel, which compares
// <= itself), which is how tree growth encodes a placeholder node that sends
// every sample down the same branch.
type TestCode int32

// offsets unpacks the four signed byte offsets from the code.
func (t TestCode) offsets() (dr1, dc1, dr2, dc2 int8) {
	v := int32(t)
	dr1 = int8(v)
	dc1 = int8(v >> 8)
	dr2 = int8(v >> 16)
	dc2 = int8(v >> 24)
	return
}

// EvalTest samples the two pixel locations a binary test code describes at
// (r, c) with window half-extents (sr, sc) in img, and returns 1 iff the
// first sampled intensity is less than or equal to the second, else 0. Both
// candidate coordinates are clamped independently into the image bounds
// before the lookup; this is the system's innermost hot loop and is kept
// branch-light by delegating clamping to GrayImage.At.
func EvalTest(code TestCode, r, c, sr, sc int, img *GrayImage) int {
	dr1, dc1, dr2, dc2 := code.offsets()

	r1 := (256*r + int(dr1)*sr) / 256
	c1 := (256*c + int(dc1)*sc) / 256
	r2 := (256*r + int(dr2)*sr) / 256
	c2 := (256*c + int(dc2)*sc) / 256

	if img.At(r1, c1) <= img.At(r2, c2) {
		return 1
	}
	return 0
}

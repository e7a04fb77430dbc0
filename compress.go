package dilithium

// power2Round decomposes r into (r1, r0) such that r = r1 * 2^d + r0 mod q,
// with r0 centered in (-2^(d-1), 2^(d-1)]. Used once at key generation to
// split t into (t1, t0).
func power2Round(r fieldElement) (r1, r0 fieldElement) {
	r1 = r >> d
	r0 = r - r1<<d

	const half = 1 << (d - 1) // 8192

	if r0 > half {
		r0 = fieldSub(r0, 1<<d)
		r1++
	}
	return r1, r0
}

// highBits extracts the high-order part of r under decomposition by
// alpha = (q-1)/16, as one of the 16 values 0..15. The top segment of Z_q
// wraps to 0, matching the Decompose special case.
func highBits(r fieldElement) uint32 {
	r1 := int32((r + 127) >> 7)
	r1 = (r1*1025 + (1 << 21)) >> 22
	return uint32(r1) & 15
}

// decompose splits r into (r1, r0) with r = r1*alpha + r0 mod q and r0
// centered in (-alpha/2, alpha/2]. When the centered remainder would push
// r1 past the top value, r1 wraps to 0 and r0 absorbs the -1 adjustment;
// highBits already encodes that wrap, so r0 here just takes up the slack.
func decompose(r fieldElement) (r1 uint32, r0 int32) {
	r1 = highBits(r)
	r0 = int32(r) - int32(r1)*alpha
	// Center r0.
	r0 -= ((int32(qMinus1Div2) - r0) >> 31) & q
	return r1, r0
}

// makeHint computes the hint bit for a single coefficient: 1 when adding z
// to r changes the high bits the verifier reconstructs, 0 otherwise.
func makeHint(z, r fieldElement) fieldElement {
	if highBits(fieldAdd(r, z)) != highBits(r) {
		return 1
	}
	return 0
}

// useHint recovers the corrected high bits of r: with the hint set, r1 is
// nudged by ±1 mod 16 depending on the sign of the centered low bits.
func useHint(hint, r fieldElement) fieldElement {
	r1, r0 := decompose(r)
	if hint == 0 {
		return fieldElement(r1)
	}
	if r0 > 0 {
		return fieldElement((r1 + 1) & 15)
	}
	return fieldElement((r1 - 1) & 15)
}

// infinityNorm computes |a| where a is interpreted as signed mod q.
func infinityNorm(a fieldElement) uint32 {
	if uint32(a) <= qMinus1Div2 {
		return uint32(a)
	}
	return q - uint32(a)
}

// polyInfinityNorm returns the maximum absolute value of any coefficient.
func polyInfinityNorm[T ~[n]fieldElement](f T) uint32 {
	var max uint32
	for i := range f {
		v := infinityNorm(f[i])
		if v > max {
			max = v
		}
	}
	return max
}

// vectorInfinityNorm returns the maximum infinity norm across a vector of
// polynomials.
func vectorInfinityNorm[T ~[n]fieldElement](v []T) uint32 {
	var max uint32
	for i := range v {
		norm := polyInfinityNorm(v[i])
		if norm > max {
			max = norm
		}
	}
	return max
}

// countOnes counts the number of nonzero coefficients in a vector.
func countOnes[T ~[n]fieldElement](v []T) int {
	count := 0
	for i := range v {
		for j := range v[i] {
			if v[i][j] != 0 {
				count++
			}
		}
	}
	return count
}

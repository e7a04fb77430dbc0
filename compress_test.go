package dilithium

import (
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPower2Round(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(10))
	check := func(r fieldElement) {
		r1, r0 := power2Round(r)
		require.LessOrEqual(t, uint32(r1), uint32(511), "r = %d", r)
		require.LessOrEqual(t, infinityNorm(r0), uint32(1<<(d-1)), "r = %d", r)
		require.Equal(t, r, fieldAdd(r1<<d, r0), "r = %d", r)
	}

	check(0)
	check(1)
	check(q - 1)
	check(1 << (d - 1))
	check(1<<(d-1) + 1)
	for trial := 0; trial < 10000; trial++ {
		check(fieldElement(rnd.Int31n(q)))
	}
}

func TestDecompose(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(11))
	check := func(r fieldElement) {
		r1, r0 := decompose(r)
		require.Less(t, r1, uint32(16), "r = %d", r)
		abs := r0
		if abs < 0 {
			abs = -abs
		}
		require.LessOrEqual(t, abs, int32(alpha/2), "r = %d", r)
		got := (int64(r1)*alpha + int64(r0) + q) % q
		require.Equal(t, int64(r), got, "r = %d", r)
	}

	check(0)
	check(alpha / 2)
	check(alpha/2 + 1)
	check(alpha)
	for trial := 0; trial < 10000; trial++ {
		check(fieldElement(rnd.Int31n(q)))
	}

	// The top segment of Z_q wraps to the zero bucket.
	r1, r0 := decompose(q - 1)
	require.Equal(t, uint32(0), r1)
	require.Equal(t, int32(-1), r0)
}

// TestHints exercises the hint recovery property the verifier relies on:
// given h = MakeHint computed against r, UseHint applied to the perturbed
// value r + z recovers HighBits(r) as long as z stays within gamma2.
func TestHints(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(12))
	for trial := 0; trial < 20000; trial++ {
		r := fieldElement(rnd.Int31n(q))
		mag := uint32(rnd.Int31n(gamma2)) // |z| < gamma2, as the signer enforces
		z := fieldElement(mag)
		if mag != 0 && rnd.Intn(2) == 1 {
			z = fieldElement(q - mag)
		}

		h := makeHint(z, r)
		got := useHint(h, fieldAdd(r, z))
		require.Equal(t, fieldElement(highBits(r)), got, "r = %d, z = %d", r, z)
	}
}

func TestMakeHintZero(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(13))
	for trial := 0; trial < 1000; trial++ {
		r := fieldElement(rnd.Int31n(q))
		require.Equal(t, fieldElement(0), makeHint(0, r))
	}
}

func TestInfinityNorm(t *testing.T) {
	require.Equal(t, uint32(0), infinityNorm(0))
	require.Equal(t, uint32(1), infinityNorm(1))
	require.Equal(t, uint32(1), infinityNorm(q-1))
	require.Equal(t, uint32(qMinus1Div2), infinityNorm(qMinus1Div2))
	require.Equal(t, uint32(qMinus1Div2), infinityNorm(qMinus1Div2+1))

	v := []ringElement{{1, q - 5}, {3}}
	require.Equal(t, uint32(5), vectorInfinityNorm(v))
	require.Equal(t, 3, countOnes(v))
}

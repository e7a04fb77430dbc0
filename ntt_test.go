package dilithium

import (
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomRingElement(rnd *mrand.Rand) ringElement {
	var f ringElement
	for i := range f {
		f[i] = fieldElement(rnd.Int31n(q))
	}
	return f
}

func TestNTTRoundTrip(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		f := randomRingElement(rnd)
		require.Equal(t, f, invNTT(ntt(f)))
	}
}

// schoolbookMul multiplies two polynomials modulo x^n + 1 directly, as the
// correctness reference for the NTT-based multiplication.
func schoolbookMul(a, b ringElement) ringElement {
	var acc [n]int64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p := int64(a[i]) * int64(b[j]) % q
			if i+j < n {
				acc[i+j] += p
			} else {
				acc[i+j-n] -= p
			}
		}
	}

	var c ringElement
	for i := range c {
		c[i] = fieldElement((acc[i]%q + q) % q)
	}
	return c
}

func TestNTTMul(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(2))
	for trial := 0; trial < 10; trial++ {
		a := randomRingElement(rnd)
		b := randomRingElement(rnd)
		require.Equal(t, schoolbookMul(a, b), invNTT(nttMul(ntt(a), ntt(b))))
	}
}

func TestNTTLinearity(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(3))
	a := randomRingElement(rnd)
	b := randomRingElement(rnd)
	require.Equal(t, ntt(polyAdd(a, b)), polyAdd(ntt(a), ntt(b)))
}

package dilithium

import (
	"crypto"
	"crypto/subtle"
	"errors"
	"io"

	"golang.org/x/crypto/sha3"
)

var errSigningFault = errors.New("dilithium: rejection sampling failed to converge")

// Sign signs the given message with the private key. This implements the
// crypto.Signer interface.
//
// Signing is deterministic, so rand is ignored. The message is signed
// directly rather than hashed first; opts must be nil or indicate an
// unhashed message via crypto.Hash(0).
func (sk *PrivateKey) Sign(rand io.Reader, message []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.Hash(0) {
		return nil, errors.New("dilithium: message must not be hashed before signing")
	}
	sig, _, err := sk.signInternal(message)
	return sig, err
}

// messageHash computes mu = CRH(tr || message).
func messageHash(tr *[crhSize]byte, message []byte) [crhSize]byte {
	h := sha3.NewShake256()
	h.Write(tr[:])
	h.Write(message)

	var mu [crhSize]byte
	h.Read(mu[:])
	return mu
}

// signInternal runs the Fiat-Shamir with aborts loop and returns the
// signature along with the number of attempts it took.
func (sk *PrivateKey) signInternal(message []byte) ([]byte, int, error) {
	m := sk.mode
	mu := messageHash(&sk.tr, message)

	s1NTT := make([]nttElement, m.l)
	for i := 0; i < m.l; i++ {
		s1NTT[i] = ntt(sk.s1[i])
	}
	s2NTT := make([]nttElement, m.k)
	t0NTT := make([]nttElement, m.k)
	for i := 0; i < m.k; i++ {
		s2NTT[i] = ntt(sk.s2[i])
		t0NTT[i] = ntt(sk.t0[i])
	}

	y := make([]ringElement, m.l)
	yNTT := make([]nttElement, m.l)
	z := make([]ringElement, m.l)
	w := make([]ringElement, m.k)
	w1 := make([]ringElement, m.k)
	wMinusCs2 := make([]ringElement, m.k)
	ct0 := make([]ringElement, m.k)
	hints := make([]ringElement, m.k)

attempts:
	for kappa := 0; kappa < maxSignAttempts; kappa++ {
		// Sample the masking vector y and compute the commitment
		// w = A*y, rounded to w1.
		for i := 0; i < m.l; i++ {
			y[i] = expandMask(sk.key[:], mu[:], uint16(kappa*m.l+i))
			yNTT[i] = ntt(y[i])
		}
		for i := 0; i < m.k; i++ {
			var acc nttElement
			for j := 0; j < m.l; j++ {
				acc = polyAdd(acc, nttMul(sk.a[i*m.l+j], yNTT[j]))
			}
			w[i] = invNTT(acc)
			for j := 0; j < n; j++ {
				w1[i][j] = fieldElement(highBits(w[i][j]))
			}
		}

		c := sampleInBall(challengeXOF(mu[:], w1))
		cNTT := ntt(c)

		// z = y + c*s1, rejected when a coefficient leaks into the
		// outer gamma1 - beta band.
		for i := 0; i < m.l; i++ {
			z[i] = polyAdd(y[i], invNTT(nttMul(cNTT, s1NTT[i])))
		}
		if vectorInfinityNorm(z) >= gamma1-m.beta {
			continue
		}

		// The low bits of w - c*s2 must stay clear of the decomposition
		// boundary, and its high bits must still equal w1.
		for i := 0; i < m.k; i++ {
			wMinusCs2[i] = polySub(w[i], invNTT(nttMul(cNTT, s2NTT[i])))
			for j := 0; j < n; j++ {
				r1, r0 := decompose(wMinusCs2[i][j])
				if r0 < 0 {
					r0 = -r0
				}
				if uint32(r0) >= gamma2-m.beta || r1 != uint32(w1[i][j]) {
					continue attempts
				}
			}
		}

		// c*t0 compensates for the dropped low bits of t; it must be
		// small enough for the hint mechanism to absorb.
		for i := 0; i < m.k; i++ {
			ct0[i] = invNTT(nttMul(cNTT, t0NTT[i]))
		}
		if vectorInfinityNorm(ct0) >= gamma2 {
			continue
		}

		for i := 0; i < m.k; i++ {
			for j := 0; j < n; j++ {
				hints[i][j] = makeHint(ct0[i][j], wMinusCs2[i][j])
			}
		}
		if countOnes(hints) > m.omega {
			continue
		}

		sig := make([]byte, 0, m.SignatureSize())
		for i := 0; i < m.l; i++ {
			sig = append(sig, packZ(z[i])...)
		}
		sig = append(sig, packHint(hints, m.omega)...)
		sig = append(sig, packChallenge(c)...)
		return sig, kappa + 1, nil
	}

	return nil, maxSignAttempts, errSigningFault
}

// Verify reports whether sig is a valid signature of message under pk.
func (pk *PublicKey) Verify(sig, message []byte) bool {
	m := pk.mode
	if len(sig) != m.SignatureSize() {
		return false
	}

	z := make([]ringElement, m.l)
	zNTT := make([]nttElement, m.l)
	offset := 0
	for i := 0; i < m.l; i++ {
		z[i] = unpackZ(sig[offset : offset+polyZSize])
		zNTT[i] = ntt(z[i])
		offset += polyZSize
	}
	if vectorInfinityNorm(z) >= gamma1-m.beta {
		return false
	}

	hints := make([]ringElement, m.k)
	if !unpackHint(sig[offset:offset+m.omega+m.k], hints, m.omega) {
		return false
	}
	offset += m.omega + m.k

	cBytes := sig[offset:]
	c, ok := unpackChallenge(cBytes)
	if !ok {
		return false
	}
	cNTT := ntt(c)

	mu := messageHash(&pk.tr, message)

	// Reconstruct w1 from A*z - c*t1*2^d, corrected by the hints.
	w1 := make([]ringElement, m.k)
	for i := 0; i < m.k; i++ {
		var acc nttElement
		for j := 0; j < m.l; j++ {
			acc = polyAdd(acc, nttMul(pk.a[i*m.l+j], zNTT[j]))
		}

		// t1 coefficients are at most 511, so shifting by d stays below q.
		var t1Shifted ringElement
		for j := 0; j < n; j++ {
			t1Shifted[j] = pk.t1[i][j] << d
		}
		acc = polySub(acc, nttMul(cNTT, ntt(t1Shifted)))

		w := invNTT(acc)
		for j := 0; j < n; j++ {
			w1[i][j] = useHint(hints[i][j], w[j])
		}
	}

	// Recompute the challenge and compare in constant time. The challenge
	// encoding is canonical, so comparing the packed forms is exact.
	c2 := sampleInBall(challengeXOF(mu[:], w1))
	return subtle.ConstantTimeCompare(cBytes, packChallenge(c2)) == 1
}

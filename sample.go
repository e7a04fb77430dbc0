package dilithium

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// sampleNTTPoly generates a uniformly random polynomial directly in the NTT
// domain by rejection sampling 24-bit words from SHAKE128(rho || s || r).
// The accepted values are the matrix entry A[r][s] in point-value order;
// no forward transform is applied.
//
// Each candidate is a little-endian 24-bit word masked to 23 bits before
// the comparison against q. The masking follows the reference
// implementation, not the literal submission text.
func sampleNTTPoly(rho []byte, s, r byte) nttElement {
	h := sha3.NewShake128()
	h.Write(rho)
	h.Write([]byte{s, r})

	var buf [168]byte // SHAKE128 rate
	var a nttElement
	j := 0

	for {
		h.Read(buf[:])
		for i := 0; i < len(buf) && j < n; i += 3 {
			t := uint32(buf[i]) | uint32(buf[i+1])<<8 | (uint32(buf[i+2])&0x7f)<<16
			if t < q {
				a[j] = fieldElement(t)
				j++
			}
		}
		if j >= n {
			return a
		}
	}
}

// sampleBoundedPoly generates a polynomial with coefficients in [-eta, eta]
// by rejection sampling nibbles from SHAKE256(seed || nonce). A nibble v is
// rejected when v > 2*eta and otherwise maps to eta - v.
func sampleBoundedPoly(seed []byte, eta uint32, nonce uint16) ringElement {
	h := sha3.NewShake256()
	h.Write(seed)
	h.Write([]byte{byte(nonce), byte(nonce >> 8)})

	var buf [136]byte // SHAKE256 rate
	var a ringElement
	j := 0
	offset := len(buf)

	for j < n {
		if offset >= len(buf) {
			h.Read(buf[:])
			offset = 0
		}

		z0 := uint32(buf[offset] & 0x0f)
		z1 := uint32(buf[offset] >> 4)
		offset++

		if z0 <= 2*eta {
			a[j] = fieldSub(fieldElement(eta), fieldElement(z0))
			j++
		}
		if j < n && z1 <= 2*eta {
			a[j] = fieldSub(fieldElement(eta), fieldElement(z1))
			j++
		}
	}
	return a
}

// expandMask generates a masking polynomial with coefficients in
// (-gamma1, gamma1] from SHAKE256(key || mu || nonce). Candidates are the
// two 20-bit halves of each 5-byte group, rejected when above 2*gamma1-2
// and mapped to gamma1-1-v.
func expandMask(key, mu []byte, nonce uint16) ringElement {
	h := sha3.NewShake256()
	h.Write(key)
	h.Write(mu)
	h.Write([]byte{byte(nonce), byte(nonce >> 8)})

	var buf [135]byte // 27 five-byte groups per squeeze
	var f ringElement
	j := 0

	for {
		h.Read(buf[:])
		for i := 0; i < len(buf) && j < n; i += 5 {
			t0 := uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2]&0x0f)<<16
			t1 := uint32(buf[i+2])>>4 | uint32(buf[i+3])<<4 | uint32(buf[i+4])<<12

			if t0 <= 2*gamma1-2 {
				f[j] = maskCoefficient(t0)
				j++
			}
			if j < n && t1 <= 2*gamma1-2 {
				f[j] = maskCoefficient(t1)
				j++
			}
		}
		if j >= n {
			return f
		}
	}
}

// maskCoefficient maps an accepted 20-bit sample to gamma1-1-t mod q.
func maskCoefficient(t uint32) fieldElement {
	v := int32(gamma1-1) - int32(t)
	if v < 0 {
		v += q
	}
	return fieldElement(v)
}

// sampleInBall derives the challenge polynomial with exactly wc nonzero
// coefficients, each ±1, from the given XOF stream. The first 8 bytes are
// the compressed sign bits; positions are then rejection-sampled one byte
// at a time with a rotating upper bound, placing values into the high
// indices [n-wc, n) first (Fisher-Yates).
//
// Signer and verifier must derive the identical polynomial from identical
// streams, so both the sign and position consumption order are fixed.
func sampleInBall(h sha3.ShakeHash) ringElement {
	var buf [136]byte
	h.Read(buf[:])

	signs := binary.LittleEndian.Uint64(buf[:8])
	offset := 8

	var c ringElement
	for i := n - wc; i < n; i++ {
		var j byte
		for {
			if offset >= len(buf) {
				h.Read(buf[:])
				offset = 0
			}
			j = buf[offset]
			offset++
			if int(j) <= i {
				break
			}
		}

		c[i] = c[j]
		if signs&1 == 0 {
			c[j] = 1
		} else {
			c[j] = q - 1 // -1 mod q
		}
		signs >>= 1
	}
	return c
}

// challengeXOF starts the H(mu, w1) stream that sampleInBall consumes:
// SHAKE256 over mu followed by the packed w1 vector.
func challengeXOF(mu []byte, w1 []ringElement) sha3.ShakeHash {
	h := sha3.NewShake256()
	h.Write(mu)
	for i := range w1 {
		h.Write(packW1(w1[i]))
	}
	return h
}

package dilithium

import (
	"encoding/binary"
	"errors"
)

// packT1 packs a polynomial with 9-bit coefficients (public key t1), eight
// coefficients per nine bytes in little-endian bit order.
func packT1(f ringElement) []byte {
	b := make([]byte, polyT1Size)
	idx := 0
	for i := 0; i < n; i += 8 {
		var x uint64
		for j := 0; j < 7; j++ {
			x |= uint64(f[i+j]) << (9 * j)
		}
		hi := uint64(f[i+7])
		x |= hi << 63

		binary.LittleEndian.PutUint64(b[idx:], x)
		b[idx+8] = byte(hi >> 1)
		idx += 9
	}
	return b
}

// unpackT1 unpacks a polynomial with 9-bit coefficients.
func unpackT1(b []byte) ringElement {
	var f ringElement
	const mask = (1 << 9) - 1
	for i := 0; i < n; i += 8 {
		x := binary.LittleEndian.Uint64(b)
		hi := uint64(b[8])
		b = b[9:]

		for j := 0; j < 7; j++ {
			f[i+j] = fieldElement((x >> (9 * j)) & mask)
		}
		f[i+7] = fieldElement(((x >> 63) | hi<<1) & mask)
	}
	return f
}

// packT0 packs a polynomial with 14-bit centered coefficients (private key
// t0), four coefficients per seven bytes. A coefficient t in
// (-2^13, 2^13] is stored as 2^13 - t.
func packT0(f ringElement) []byte {
	b := make([]byte, polyT0Size)
	const center = 1 << (d - 1) // 8192
	idx := 0
	for i := 0; i < n; i += 4 {
		x := uint64(fieldSub(center, f[i]))
		x |= uint64(fieldSub(center, f[i+1])) << 14
		x |= uint64(fieldSub(center, f[i+2])) << 28
		x |= uint64(fieldSub(center, f[i+3])) << 42

		b[idx] = byte(x)
		b[idx+1] = byte(x >> 8)
		b[idx+2] = byte(x >> 16)
		b[idx+3] = byte(x >> 24)
		b[idx+4] = byte(x >> 32)
		b[idx+5] = byte(x >> 40)
		b[idx+6] = byte(x >> 48)
		idx += 7
	}
	return b
}

// unpackT0 unpacks a polynomial with 14-bit centered coefficients.
func unpackT0(b []byte) ringElement {
	var f ringElement
	const center = 1 << (d - 1)
	const mask = (1 << 14) - 1
	for i := 0; i < n; i += 4 {
		x := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
			uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48
		b = b[7:]

		f[i] = fieldSub(center, fieldElement(x&mask))
		f[i+1] = fieldSub(center, fieldElement((x>>14)&mask))
		f[i+2] = fieldSub(center, fieldElement((x>>28)&mask))
		f[i+3] = fieldSub(center, fieldElement((x>>42)&mask))
	}
	return f
}

// packEta packs a polynomial with coefficients in [-eta, eta], two 4-bit
// centered values per byte. A coefficient s is stored as eta - s.
func packEta(f ringElement, eta uint32) []byte {
	b := make([]byte, polyEtaSize)
	e := fieldElement(eta)
	for i := 0; i < n; i += 2 {
		b[i/2] = byte(fieldSub(e, f[i])) | byte(fieldSub(e, f[i+1]))<<4
	}
	return b
}

// unpackEta unpacks a polynomial with coefficients in [-eta, eta],
// rejecting nibbles outside [0, 2*eta].
func unpackEta(b []byte, eta uint32) (ringElement, error) {
	var f ringElement
	e := fieldElement(eta)
	for i := 0; i < n; i += 2 {
		z0 := uint32(b[i/2] & 0x0f)
		z1 := uint32(b[i/2] >> 4)
		if z0 > 2*eta || z1 > 2*eta {
			return ringElement{}, errors.New("dilithium: invalid eta encoding")
		}
		f[i] = fieldSub(e, fieldElement(z0))
		f[i+1] = fieldSub(e, fieldElement(z1))
	}
	return f, nil
}

// packZ packs a response polynomial with coefficients in (-gamma1, gamma1),
// 20 bits per coefficient. A coefficient z is stored as gamma1 - 1 - z.
func packZ(f ringElement) []byte {
	b := make([]byte, polyZSize)
	const gm1 = gamma1 - 1
	idx := 0
	for i := 0; i < n; i += 4 {
		var x1, x2 uint64
		x1 = uint64(fieldSub(gm1, f[i]))
		x1 |= uint64(fieldSub(gm1, f[i+1])) << 20
		x1 |= uint64(fieldSub(gm1, f[i+2])) << 40
		x2 = uint64(fieldSub(gm1, f[i+3]))
		x1 |= x2 << 60
		x2 >>= 4

		binary.LittleEndian.PutUint64(b[idx:], x1)
		b[idx+8] = byte(x2)
		b[idx+9] = byte(x2 >> 8)
		idx += 10
	}
	return b
}

// unpackZ unpacks a response polynomial packed with packZ. Out-of-range
// values survive unpacking and are caught by the verifier's norm check.
func unpackZ(b []byte) ringElement {
	var f ringElement
	const gm1 = gamma1 - 1
	const mask = (1 << 20) - 1
	for i := 0; i < n; i += 4 {
		x1 := binary.LittleEndian.Uint64(b)
		x2 := uint64(b[8]) | uint64(b[9])<<8
		b = b[10:]

		f[i] = fieldSub(gm1, fieldElement(x1&mask))
		f[i+1] = fieldSub(gm1, fieldElement((x1>>20)&mask))
		f[i+2] = fieldSub(gm1, fieldElement((x1>>40)&mask))
		f[i+3] = fieldSub(gm1, fieldElement(((x1>>60)|x2<<4)&mask))
	}
	return f
}

// packW1 packs a rounded commitment polynomial with 4-bit coefficients.
func packW1(f ringElement) []byte {
	b := make([]byte, polyW1Size)
	for i := 0; i < n; i += 2 {
		b[i/2] = byte(f[i]) | byte(f[i+1])<<4
	}
	return b
}

// packHint packs the hint vector sparsely: the positions of set bits per
// polynomial, then one cumulative count byte per polynomial, omega+k bytes
// in total.
func packHint(hints []ringElement, omega int) []byte {
	k := len(hints)
	b := make([]byte, omega+k)
	idx := 0
	for i := 0; i < k; i++ {
		for j := 0; j < n; j++ {
			if hints[i][j] != 0 {
				b[idx] = byte(j)
				idx++
			}
		}
		b[omega+i] = byte(idx)
	}
	return b
}

// unpackHint unpacks the hint vector, enforcing canonical encoding:
// positions strictly increasing within each polynomial, counts monotone and
// within omega, unused position bytes zero.
func unpackHint(b []byte, hints []ringElement, omega int) bool {
	k := len(hints)
	idx := 0
	for i := 0; i < k; i++ {
		limit := int(b[omega+i])
		if limit < idx || limit > omega {
			return false
		}
		prev := idx
		for ; idx < limit; idx++ {
			pos := b[idx]
			if idx > prev && b[idx-1] >= pos {
				return false
			}
			hints[i][pos] = 1
		}
	}
	for ; idx < omega; idx++ {
		if b[idx] != 0 {
			return false
		}
	}
	return true
}

// packChallenge packs the challenge polynomial as a 256-bit position bitmap
// followed by the compressed sign word: one sign bit per set position, in
// position order.
func packChallenge(c ringElement) []byte {
	b := make([]byte, challengeSize)
	var signs, mask uint64
	mask = 1
	for i := 0; i < n; i++ {
		if c[i] != 0 {
			b[i/8] |= 1 << (i % 8)
			if c[i] == q-1 {
				signs |= mask
			}
			mask <<= 1
		}
	}
	binary.LittleEndian.PutUint64(b[n/8:], signs)
	return b
}

// unpackChallenge unpacks a challenge polynomial, enforcing weight exactly
// wc and zero unused sign bits.
func unpackChallenge(b []byte) (ringElement, bool) {
	var c ringElement
	signs := binary.LittleEndian.Uint64(b[n/8:])
	weight := 0
	for i := 0; i < n; i++ {
		if b[i/8]>>(i%8)&1 != 0 {
			if weight == wc {
				return ringElement{}, false
			}
			weight++
			if signs&1 != 0 {
				c[i] = q - 1
			} else {
				c[i] = 1
			}
			signs >>= 1
		}
	}
	if weight != wc || signs != 0 {
		return ringElement{}, false
	}
	return c, true
}

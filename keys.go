package dilithium

import (
	"crypto"
	"errors"
	"io"

	"golang.org/x/crypto/sha3"
)

// PrivateKey is a Dilithium private key.
type PrivateKey struct {
	mode *Mode
	rho  [SeedSize]byte // public seed
	key  [SeedSize]byte // K, the deterministic signing seed
	tr   [crhSize]byte  // CRH(rho || t1)
	s1   []ringElement  // secret vector, length l
	s2   []ringElement  // secret vector, length k
	t0   []ringElement  // low bits of t, length k
	a    []nttElement   // matrix A in NTT form, k*l entries
}

// PublicKey is a Dilithium public key.
type PublicKey struct {
	mode *Mode
	rho  [SeedSize]byte
	t1   []ringElement // high bits of t, length k
	tr   [crhSize]byte
	a    []nttElement
}

// Key is a key pair retaining its generation seed.
type Key struct {
	PrivateKey
	seed [SeedSize]byte
	t1   []ringElement
}

// GenerateKey generates a new key pair for this parameter set.
func (m *Mode) GenerateKey(rand io.Reader) (*Key, error) {
	var seed [SeedSize]byte
	if _, err := io.ReadFull(rand, seed[:]); err != nil {
		return nil, err
	}
	return m.NewKeyFromSeed(seed[:])
}

// NewKeyFromSeed deterministically derives a key pair from a 32-byte seed.
func (m *Mode) NewKeyFromSeed(seed []byte) (*Key, error) {
	if len(seed) != SeedSize {
		return nil, errors.New("dilithium: invalid seed length")
	}

	key := &Key{}
	copy(key.seed[:], seed)
	key.generate(m)
	return key, nil
}

// generate derives all key components from the seed.
func (key *Key) generate(m *Mode) {
	key.mode = m

	// Expand seed into (rho, rho', K).
	h := sha3.NewShake256()
	h.Write(key.seed[:])

	var expanded [3 * SeedSize]byte
	h.Read(expanded[:])

	copy(key.rho[:], expanded[:32])
	rhoPrime := expanded[32:64]
	copy(key.key[:], expanded[64:96])

	// Sample secret vectors s1, s2.
	key.s1 = make([]ringElement, m.l)
	key.s2 = make([]ringElement, m.k)
	for i := 0; i < m.l; i++ {
		key.s1[i] = sampleBoundedPoly(rhoPrime, m.eta, uint16(i))
	}
	for i := 0; i < m.k; i++ {
		key.s2[i] = sampleBoundedPoly(rhoPrime, m.eta, uint16(m.l+i))
	}

	key.a = expandA(key.rho[:], m)

	// Compute t = A*s1 + s2 and round it.
	key.t1, key.t0 = computeT(key.a, key.s1, key.s2, m)

	// tr = CRH(rho || t1), taken over the encoded public key.
	h.Reset()
	h.Write(key.PublicKeyBytes())
	h.Read(key.tr[:])
}

// expandA derives the k x l public matrix from rho, entry (i,j) sampled
// directly in the NTT domain.
func expandA(rho []byte, m *Mode) []nttElement {
	a := make([]nttElement, m.k*m.l)
	for i := 0; i < m.k; i++ {
		for j := 0; j < m.l; j++ {
			a[i*m.l+j] = sampleNTTPoly(rho, byte(j), byte(i))
		}
	}
	return a
}

// computeT computes t = A*s1 + s2 and splits it with Power2Round.
func computeT(a []nttElement, s1, s2 []ringElement, m *Mode) (t1, t0 []ringElement) {
	s1NTT := make([]nttElement, m.l)
	for i := 0; i < m.l; i++ {
		s1NTT[i] = ntt(s1[i])
	}

	t1 = make([]ringElement, m.k)
	t0 = make([]ringElement, m.k)
	for i := 0; i < m.k; i++ {
		var acc nttElement
		for j := 0; j < m.l; j++ {
			acc = polyAdd(acc, nttMul(a[i*m.l+j], s1NTT[j]))
		}
		t := polyAdd(invNTT(acc), s2[i])

		for j := 0; j < n; j++ {
			t1[i][j], t0[i][j] = power2Round(t[j])
		}
	}
	return t1, t0
}

// PublicKeyBytes returns the encoded public key.
func (key *Key) PublicKeyBytes() []byte {
	return encodePublicKey(key.mode, &key.rho, key.t1)
}

// PublicKey returns the public key for this key pair.
func (key *Key) PublicKey() *PublicKey {
	pk := &PublicKey{
		mode: key.mode,
		rho:  key.rho,
		tr:   key.tr,
		t1:   make([]ringElement, key.mode.k),
		a:    key.a,
	}
	copy(pk.t1, key.t1)
	return pk
}

// Bytes returns the generation seed (32 bytes).
func (key *Key) Bytes() []byte {
	b := make([]byte, SeedSize)
	copy(b, key.seed[:])
	return b
}

// PrivateKeyBytes returns the full encoded private key.
func (key *Key) PrivateKeyBytes() []byte {
	return key.PrivateKey.Bytes()
}

func encodePublicKey(m *Mode, rho *[SeedSize]byte, t1 []ringElement) []byte {
	b := make([]byte, m.PublicKeySize())
	copy(b[:SeedSize], rho[:])
	offset := SeedSize
	for i := 0; i < m.k; i++ {
		copy(b[offset:], packT1(t1[i]))
		offset += polyT1Size
	}
	return b
}

// Bytes returns the encoded private key.
func (sk *PrivateKey) Bytes() []byte {
	m := sk.mode
	b := make([]byte, m.PrivateKeySize())
	copy(b[:32], sk.rho[:])
	copy(b[32:64], sk.key[:])
	copy(b[64:64+crhSize], sk.tr[:])

	offset := 64 + crhSize
	for i := 0; i < m.l; i++ {
		copy(b[offset:], packEta(sk.s1[i], m.eta))
		offset += polyEtaSize
	}
	for i := 0; i < m.k; i++ {
		copy(b[offset:], packEta(sk.s2[i], m.eta))
		offset += polyEtaSize
	}
	for i := 0; i < m.k; i++ {
		copy(b[offset:], packT0(sk.t0[i]))
		offset += polyT0Size
	}
	return b
}

// Mode returns the parameter set this key belongs to.
func (sk *PrivateKey) Mode() *Mode {
	return sk.mode
}

// Bytes returns the encoded public key.
func (pk *PublicKey) Bytes() []byte {
	return encodePublicKey(pk.mode, &pk.rho, pk.t1)
}

// Mode returns the parameter set this key belongs to.
func (pk *PublicKey) Mode() *Mode {
	return pk.mode
}

// Equal reports whether pk and other are the same public key.
func (pk *PublicKey) Equal(other crypto.PublicKey) bool {
	o, ok := other.(*PublicKey)
	if !ok || pk.mode != o.mode || pk.rho != o.rho {
		return false
	}
	for i := range pk.t1 {
		if pk.t1[i] != o.t1[i] {
			return false
		}
	}
	return true
}

// NewPublicKey parses an encoded public key.
func (m *Mode) NewPublicKey(b []byte) (*PublicKey, error) {
	if len(b) != m.PublicKeySize() {
		return nil, errors.New("dilithium: invalid public key length")
	}

	pk := &PublicKey{mode: m, t1: make([]ringElement, m.k)}
	copy(pk.rho[:], b[:SeedSize])

	offset := SeedSize
	for i := 0; i < m.k; i++ {
		pk.t1[i] = unpackT1(b[offset : offset+polyT1Size])
		offset += polyT1Size
	}

	pk.a = expandA(pk.rho[:], m)

	// tr = CRH(rho || t1)
	h := sha3.NewShake256()
	h.Write(b)
	h.Read(pk.tr[:])

	return pk, nil
}

// NewPrivateKey parses an encoded private key.
func (m *Mode) NewPrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) != m.PrivateKeySize() {
		return nil, errors.New("dilithium: invalid private key length")
	}

	sk := &PrivateKey{
		mode: m,
		s1:   make([]ringElement, m.l),
		s2:   make([]ringElement, m.k),
		t0:   make([]ringElement, m.k),
	}
	copy(sk.rho[:], b[:32])
	copy(sk.key[:], b[32:64])
	copy(sk.tr[:], b[64:64+crhSize])

	offset := 64 + crhSize
	var err error
	for i := 0; i < m.l; i++ {
		sk.s1[i], err = unpackEta(b[offset:offset+polyEtaSize], m.eta)
		if err != nil {
			return nil, err
		}
		offset += polyEtaSize
	}
	for i := 0; i < m.k; i++ {
		sk.s2[i], err = unpackEta(b[offset:offset+polyEtaSize], m.eta)
		if err != nil {
			return nil, err
		}
		offset += polyEtaSize
	}
	for i := 0; i < m.k; i++ {
		sk.t0[i] = unpackT0(b[offset : offset+polyT0Size])
		offset += polyT0Size
	}

	sk.a = expandA(sk.rho[:], m)

	return sk, nil
}

// Public returns the public key corresponding to this private key.
// This implements the crypto.Signer interface.
func (sk *PrivateKey) Public() crypto.PublicKey {
	m := sk.mode
	pk := &PublicKey{
		mode: m,
		rho:  sk.rho,
		tr:   sk.tr,
		a:    sk.a,
	}
	pk.t1, _ = computeT(sk.a, sk.s1, sk.s2, m)
	return pk
}

// Package dilithium implements the CRYSTALS-Dilithium digital signature
// scheme as specified in the round-2 NIST PQC submission.
//
// Dilithium is a lattice-based signature scheme built on the Fiat-Shamir
// with aborts paradigm over the ring Z_q[x]/(x^256+1). This package
// implements the four round-2 parameter sets:
//   - Mode1: weak security parameters
//   - Mode2: medium security parameters
//   - Mode3: recommended security parameters
//   - Mode4: very high security parameters
//
// Note that the round-2 wire formats are not compatible with ML-DSA
// (FIPS 204), which standardized a later revision of the scheme.
//
// Basic usage:
//
//	key, err := dilithium.Mode3.GenerateKey(rand.Reader)
//	if err != nil {
//	    // handle error
//	}
//	sig, err := key.Sign(rand.Reader, message, nil)
//	if err != nil {
//	    // handle error
//	}
//	valid := key.PublicKey().Verify(sig, message)
//
// Signing is deterministic: the signature depends only on the private key
// and the message, per the round-2 specification.
package dilithium

import "crypto"

// Global Dilithium constants shared by all round-2 parameter sets.
const (
	// n is the number of coefficients in polynomials.
	n = 256

	// q is the modulus: q = 2^23 - 2^13 + 1 = 8380417
	q = 8380417

	// d is the number of bits dropped from t by Power2Round.
	d = 14

	// wc is the number of nonzero (±1) coefficients in the challenge
	// polynomial.
	wc = 60

	// SeedSize is the size of the random seed used for key generation.
	SeedSize = 32

	// crhSize is the output size of CRH, the collision-resistant hash
	// (SHAKE256 with 384-bit output).
	crhSize = 48
)

// Derived constants.
const (
	qMinus1Div2 = (q - 1) / 2

	// gamma1 bounds the masking vector coefficients: y in (-gamma1, gamma1].
	gamma1 = (q - 1) / 16 // 523776

	// gamma2 is the low-order rounding range; alpha = 2*gamma2 is the
	// Decompose divisor.
	gamma2 = gamma1 / 2 // 261888
	alpha  = 2 * gamma2
)

// Encoding size constants (bytes per polynomial).
const (
	polyT1Size  = n * 9 / 8  // t1 packed, 9 bits per coefficient
	polyT0Size  = n * 14 / 8 // t0 packed, 14 bits per coefficient
	polyEtaSize = n * 4 / 8  // s1/s2 packed, one nibble per coefficient
	polyZSize   = n * 20 / 8 // z packed, 20 bits per coefficient
	polyW1Size  = n * 4 / 8  // w1 packed, 4 bits per coefficient

	// challengeSize is the fixed-weight challenge encoding: a 256-bit
	// position bitmap followed by a 64-bit compressed sign word.
	challengeSize = n/8 + 8
)

// maxSignAttempts bounds the signing rejection loop. The expected number of
// iterations is a small constant, so running into this ceiling indicates a
// broken parameter set or sampler rather than bad luck; it also keeps the
// mask nonce kappa*l+i within 16 bits for every mode.
const maxSignAttempts = 8000

// Mode identifies a Dilithium parameter set. The exported Mode1..Mode4
// values are the only valid instances.
type Mode struct {
	name  string
	k     int    // rows of A, length of t/s2/h
	l     int    // columns of A, length of y/s1/z
	eta   uint32 // secret coefficient bound
	beta  uint32 // eta * wc, rejection margin
	omega int    // maximum number of set hint bits
}

// Round-2 parameter sets.
var (
	Mode1 = &Mode{name: "Dilithium1", k: 3, l: 2, eta: 7, beta: 375, omega: 64}
	Mode2 = &Mode{name: "Dilithium2", k: 4, l: 3, eta: 6, beta: 325, omega: 80}
	Mode3 = &Mode{name: "Dilithium3", k: 5, l: 4, eta: 5, beta: 275, omega: 96}
	Mode4 = &Mode{name: "Dilithium4", k: 6, l: 5, eta: 3, beta: 175, omega: 120}
)

// modes lists all parameter sets, for table-driven tests.
var modes = []*Mode{Mode1, Mode2, Mode3, Mode4}

// Name returns the name of the parameter set, e.g. "Dilithium3".
func (m *Mode) Name() string {
	return m.name
}

// PublicKeySize returns the size of an encoded public key in bytes.
func (m *Mode) PublicKeySize() int {
	return SeedSize + m.k*polyT1Size
}

// PrivateKeySize returns the size of an encoded private key in bytes.
func (m *Mode) PrivateKeySize() int {
	return SeedSize + SeedSize + crhSize + (m.k+m.l)*polyEtaSize + m.k*polyT0Size
}

// SignatureSize returns the size of a signature in bytes.
func (m *Mode) SignatureSize() int {
	return m.l*polyZSize + m.omega + m.k + challengeSize
}

// Compile-time interface assertions for crypto.Signer.
var (
	_ crypto.Signer = (*PrivateKey)(nil)
	_ crypto.Signer = (*Key)(nil)
)

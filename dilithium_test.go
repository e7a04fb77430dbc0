package dilithium

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// testSeed is a fixed key generation seed used across the deterministic
// tests.
const testSeed = "7c9935a0b07694aa0c6d10e4db6b1add2fd81a25ccb148032dcd739936737f2d"

func testKey(t *testing.T, m *Mode) *Key {
	t.Helper()
	seed, err := hex.DecodeString(testSeed)
	require.NoError(t, err)
	key, err := m.NewKeyFromSeed(seed)
	require.NoError(t, err)
	return key
}

func TestModeSizes(t *testing.T) {
	for _, tc := range []struct {
		mode   *Mode
		pk, sk int
		sig    int
	}{
		{Mode1, 896, 2096, 1387},
		{Mode2, 1184, 2800, 2044},
		{Mode3, 1472, 3504, 2701},
		{Mode4, 1760, 4208, 3366},
	} {
		require.Equal(t, tc.pk, tc.mode.PublicKeySize(), tc.mode.Name())
		require.Equal(t, tc.sk, tc.mode.PrivateKeySize(), tc.mode.Name())
		require.Equal(t, tc.sig, tc.mode.SignatureSize(), tc.mode.Name())
	}
}

func TestSignVerify(t *testing.T) {
	for _, m := range modes {
		t.Run(m.Name(), func(t *testing.T) {
			key, err := m.GenerateKey(rand.Reader)
			require.NoError(t, err)
			pk := key.PublicKey()

			msg := []byte("the quick brown fox jumps over the lazy dog")
			sig, err := key.Sign(nil, msg, nil)
			require.NoError(t, err)
			require.Len(t, sig, m.SignatureSize())

			require.True(t, pk.Verify(sig, msg))
			require.False(t, pk.Verify(sig, []byte("the quick brown fox")))
			require.False(t, pk.Verify(sig[:len(sig)-1], msg))

			other, err := m.GenerateKey(rand.Reader)
			require.NoError(t, err)
			require.False(t, other.PublicKey().Verify(sig, msg))

			// Empty message is valid.
			sig, err = key.Sign(nil, nil, nil)
			require.NoError(t, err)
			require.True(t, pk.Verify(sig, nil))
		})
	}
}

func TestDeterminism(t *testing.T) {
	for _, m := range modes {
		t.Run(m.Name(), func(t *testing.T) {
			key1 := testKey(t, m)
			key2 := testKey(t, m)

			require.Equal(t, key1.PublicKeyBytes(), key2.PublicKeyBytes())
			require.Equal(t, key1.PrivateKeyBytes(), key2.PrivateKeyBytes())

			msg := []byte("determinism")
			sig1, err := key1.Sign(nil, msg, nil)
			require.NoError(t, err)
			sig2, err := key2.Sign(nil, msg, nil)
			require.NoError(t, err)
			require.Equal(t, sig1, sig2)
		})
	}
}

func TestSignerOpts(t *testing.T) {
	key := testKey(t, Mode3)
	msg := []byte("opts")

	_, err := key.Sign(rand.Reader, msg, crypto.Hash(0))
	require.NoError(t, err)

	_, err = key.Sign(rand.Reader, msg, crypto.SHA256)
	require.Error(t, err)
}

func TestKeyEncoding(t *testing.T) {
	for _, m := range modes {
		t.Run(m.Name(), func(t *testing.T) {
			key := testKey(t, m)
			pk := key.PublicKey()
			msg := []byte("encoding")

			sk2, err := m.NewPrivateKey(key.PrivateKeyBytes())
			require.NoError(t, err)
			require.Equal(t, key.PrivateKeyBytes(), sk2.Bytes())

			pk2, err := m.NewPublicKey(pk.Bytes())
			require.NoError(t, err)
			require.True(t, pk.Equal(pk2))
			require.Equal(t, pk.Bytes(), pk2.Bytes())

			// Public recomputes t1 from the secret vectors.
			pk3, ok := sk2.Public().(*PublicKey)
			require.True(t, ok)
			require.True(t, pk.Equal(pk3))

			sig, err := sk2.Sign(nil, msg, nil)
			require.NoError(t, err)
			require.True(t, pk2.Verify(sig, msg))

			_, err = m.NewPublicKey(pk.Bytes()[:m.PublicKeySize()-1])
			require.Error(t, err)
			_, err = m.NewPrivateKey(key.PrivateKeyBytes()[:m.PrivateKeySize()-1])
			require.Error(t, err)
			_, err = m.NewKeyFromSeed(make([]byte, SeedSize-1))
			require.Error(t, err)
		})
	}
}

func TestPublicKeyEqual(t *testing.T) {
	key1 := testKey(t, Mode2)
	key3 := testKey(t, Mode3)

	require.True(t, key1.PublicKey().Equal(key1.PublicKey()))
	require.False(t, key1.PublicKey().Equal(key3.PublicKey()))

	other, err := Mode2.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.False(t, key1.PublicKey().Equal(other.PublicKey()))
}

// TestVerifyBitFlips checks that flipping any single bit of a valid
// signature makes verification fail, sampling positions across the z, hint
// and challenge regions.
func TestVerifyBitFlips(t *testing.T) {
	key := testKey(t, Mode1)
	pk := key.PublicKey()
	msg := []byte("bit flips")

	sig, err := key.Sign(nil, msg, nil)
	require.NoError(t, err)
	require.True(t, pk.Verify(sig, msg))

	step := len(sig)/64 + 1
	for pos := 0; pos < len(sig); pos += step {
		for bit := 0; bit < 8; bit += 3 {
			mangled := bytes.Clone(sig)
			mangled[pos] ^= 1 << bit
			require.False(t, pk.Verify(mangled, msg), "flipped bit %d of byte %d", bit, pos)
		}
	}
}

// TestRejectionRate sanity-checks the abort loop: signing must always
// terminate well below the attempt ceiling, with the small expected number
// of iterations.
func TestRejectionRate(t *testing.T) {
	key := testKey(t, Mode3)

	total := 0
	const trials = 25
	for i := 0; i < trials; i++ {
		_, attempts, err := key.signInternal([]byte(fmt.Sprintf("message %d", i)))
		require.NoError(t, err)
		require.GreaterOrEqual(t, attempts, 1)
		total += attempts
	}
	require.Less(t, total, trials*20)
}

type katVector struct {
	Mode      string `json:"mode"`
	Seed      string `json:"seed"`
	Message   string `json:"message"`
	PublicKey string `json:"pk"`
	SecretKey string `json:"sk"`
	Signature string `json:"sig"`
}

// TestKnownAnswers validates against pre-generated vectors when present.
// The file is not checked in; drop one in testdata/ to run this.
func TestKnownAnswers(t *testing.T) {
	f, err := os.Open("testdata/kat.json")
	if os.IsNotExist(err) {
		t.Skip("testdata/kat.json not present")
	}
	require.NoError(t, err)
	defer f.Close()

	var vectors []katVector
	require.NoError(t, json.NewDecoder(f).Decode(&vectors))

	byName := make(map[string]*Mode)
	for _, m := range modes {
		byName[m.Name()] = m
	}

	for i, v := range vectors {
		m := byName[v.Mode]
		require.NotNil(t, m, "vector %d: unknown mode %q", i, v.Mode)

		seed, err := hex.DecodeString(v.Seed)
		require.NoError(t, err)
		msg, err := hex.DecodeString(v.Message)
		require.NoError(t, err)

		key, err := m.NewKeyFromSeed(seed)
		require.NoError(t, err)

		require.Equal(t, v.PublicKey, hex.EncodeToString(key.PublicKeyBytes()), "vector %d", i)
		require.Equal(t, v.SecretKey, hex.EncodeToString(key.PrivateKeyBytes()), "vector %d", i)

		sig, err := key.Sign(nil, msg, nil)
		require.NoError(t, err)
		require.Equal(t, v.Signature, hex.EncodeToString(sig), "vector %d", i)
		require.True(t, key.PublicKey().Verify(sig, msg), "vector %d", i)
	}
}

func BenchmarkKeyGen(b *testing.B) {
	seed := make([]byte, SeedSize)
	for i := 0; i < b.N; i++ {
		if _, err := Mode3.NewKeyFromSeed(seed); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSign(b *testing.B) {
	seed := make([]byte, SeedSize)
	key, err := Mode3.NewKeyFromSeed(seed)
	if err != nil {
		b.Fatal(err)
	}
	msg := []byte("benchmark message")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := key.Sign(nil, msg, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	seed := make([]byte, SeedSize)
	key, err := Mode3.NewKeyFromSeed(seed)
	if err != nil {
		b.Fatal(err)
	}
	pk := key.PublicKey()
	msg := []byte("benchmark message")
	sig, err := key.Sign(nil, msg, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !pk.Verify(sig, msg) {
			b.Fatal("verification failed")
		}
	}
}

package auth

import (
	"bytes"
	"testing"
)

// =========================================================================
// HELPER
// =========================================================================

// newTestHasher returns a hasher with a tiny iteration count so the
// property tests below run in microseconds.
func newTestHasher() *PasswordHasher {
	return NewPasswordHasherForTest(10)
}

func mustSalt(t *testing.T, h *PasswordHasher) []byte {
	t.Helper()
	salt, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	return salt
}

// =========================================================================
// GenerateSalt TESTS
// =========================================================================

func TestGenerateSalt_Length(t *testing.T) {
	salt := mustSalt(t, newTestHasher())
	if len(salt) != SaltLength {
		t.Errorf("len(salt) = %d, want %d", len(salt), SaltLength)
	}
}

func TestGenerateSalt_Random(t *testing.T) {
	h := newTestHasher()
	if bytes.Equal(mustSalt(t, h), mustSalt(t, h)) {
		t.Error("GenerateSalt() returned the same salt twice")
	}
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_ProductionParameters(t *testing.T) {
	h := NewPasswordHasher()
	if h.iterations != Iterations {
		t.Fatalf("iterations = %d, want %d", h.iterations, Iterations)
	}
	if Iterations < 50_000 {
		t.Errorf("Iterations = %d, must stay at or above 50000", Iterations)
	}

	hash, err := h.Hash("pw1", []byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if len(hash) != KeyLength {
		t.Errorf("len(hash) = %d, want %d", len(hash), KeyLength)
	}
}

func TestHash_Deterministic(t *testing.T) {
	h := newTestHasher()
	salt := mustSalt(t, h)

	first, err := h.Hash("correct-horse", salt)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := h.Hash("correct-horse", salt)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("Hash() is not deterministic for identical password and salt")
	}
}

func TestHash_DifferentSaltsDiffer(t *testing.T) {
	h := newTestHasher()

	a, _ := h.Hash("same-password", mustSalt(t, h))
	b, _ := h.Hash("same-password", mustSalt(t, h))

	if bytes.Equal(a, b) {
		t.Error("Hash() produced identical hashes for different salts")
	}
}

func TestHash_RejectsEmptySalt(t *testing.T) {
	if _, err := newTestHasher().Hash("pw", nil); err == nil {
		t.Fatal("Hash() should fail with an empty salt")
	}
}

func TestHash_RejectsInvalidIterations(t *testing.T) {
	h := NewPasswordHasherForTest(0)
	if _, err := h.Hash("pw", []byte("salt")); err == nil {
		t.Fatal("Hash() should fail with zero iterations")
	}
}

// =========================================================================
// Verify / Equal TESTS
// =========================================================================

func TestVerify(t *testing.T) {
	h := newTestHasher()
	salt := mustSalt(t, h)
	stored, err := h.Hash("the-real-password", salt)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct", "the-real-password", true},
		{"wrong", "the-wrong-password", false},
		{"empty", "", false},
		{"prefix", "the-real", false},
		{"unicode", "пароль-密码", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.Verify(tc.password, salt, stored)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("Verify(%q) = %v, want %v", tc.password, got, tc.want)
			}
		})
	}
}

func TestVerify_HashFailureIsAnError(t *testing.T) {
	ok, err := newTestHasher().Verify("pw", nil, make([]byte, KeyLength))
	if err == nil {
		t.Fatal("Verify() should surface the hashing error")
	}
	if ok {
		t.Error("Verify() reported a match alongside an error")
	}
}

func TestEqual(t *testing.T) {
	base := bytes.Repeat([]byte{0xAB}, KeyLength)

	firstByte := bytes.Clone(base)
	firstByte[0] ^= 0xFF
	lastByte := bytes.Clone(base)
	lastByte[KeyLength-1] ^= 0xFF

	cases := []struct {
		name   string
		stored []byte
		want   bool
	}{
		{"identical", bytes.Clone(base), true},
		{"mismatch at first byte", firstByte, false},
		{"mismatch at last byte", lastByte, false},
		{"shorter", base[:KeyLength-1], false},
		{"longer", append(bytes.Clone(base), 0x00), false},
		{"empty", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(base, tc.stored); got != tc.want {
				t.Errorf("Equal() = %v, want %v", got, tc.want)
			}
		})
	}
}

// =========================================================================
// ROUND-TRIP TEST
// =========================================================================

func TestHashVerify_RoundTrip(t *testing.T) {
	h := newTestHasher()

	cases := []struct {
		name     string
		password string
	}{
		{"simple alphanumeric", "hello123"},
		{"special characters", "p@$$w0rd!#%"},
		{"unicode", "пароль-密码"},
		{"whitespace", "  leading and trailing  "},
		{"long", string(bytes.Repeat([]byte("a"), 500))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			salt := mustSalt(t, h)
			hash, err := h.Hash(tc.password, salt)
			if err != nil {
				t.Fatalf("Hash(%q) error = %v", tc.password, err)
			}

			ok, err := h.Verify(tc.password, salt, hash)
			if err != nil || !ok {
				t.Errorf("Verify() failed for %q: ok=%v err=%v", tc.password, ok, err)
			}
		})
	}
}

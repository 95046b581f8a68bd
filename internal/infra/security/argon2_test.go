package security

import (
	"strings"
	"testing"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()

	// Small memory/iteration counts keep the test fast; the encoding and
	// verification paths are identical to production parameters.
	hasher, err := NewHasher(Argon2Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return hasher
}

func TestHasherRoundTrip(t *testing.T) {
	hasher := testHasher(t)

	encoded, err := hasher.Hash("Secret123!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if !strings.HasPrefix(encoded, "argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := hasher.Verify(encoded, "Secret123!")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}
}

func TestHasherRejectsWrongPassword(t *testing.T) {
	hasher := testHasher(t)

	encoded, err := hasher.Hash("Secret123!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	ok, err := hasher.Verify(encoded, "NotTheSecret")
	if err != nil {
		t.Fatalf("Verify returned error on mismatch: %v", err)
	}
	if ok {
		t.Fatal("expected mismatching password to fail verification")
	}
}

func TestHasherUniqueSalts(t *testing.T) {
	hasher := testHasher(t)

	first, err := hasher.Hash("Secret123!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("Secret123!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}

func TestHasherMalformedHash(t *testing.T) {
	hasher := testHasher(t)

	cases := []string{
		"not-a-hash",
		"argon2id$v=19$m=8192,t=1,p=1$short",
		"bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	}

	for _, encoded := range cases {
		if _, err := hasher.Verify(encoded, "whatever"); err == nil {
			t.Errorf("expected error for malformed hash %q", encoded)
		}
	}
}

func TestNewHasherRejectsWeakParams(t *testing.T) {
	if _, err := NewHasher(Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}); err == nil {
		t.Fatal("expected error for sub-minimum memory")
	}
	if _, err := NewHasher(Argon2Params{Memory: 8 * 1024, Iterations: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}); err == nil {
		t.Fatal("expected error for zero iterations")
	}
}

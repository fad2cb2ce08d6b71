package helpers

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	for _, p := range []string{"secret", "", "çãõ unicode", strings.Repeat("x", 60)} {
		hash, err := h.Hash(p)
		if err != nil {
			t.Fatalf("Hash(%q): %v", p, err)
		}
		if hash == p {
			t.Fatalf("hash must not equal plaintext")
		}
		if !h.Verify(p, hash) {
			t.Fatalf("Verify(%q, Hash(%q)) = false", p, p)
		}
		if h.Verify(p+"!", hash) {
			t.Fatalf("Verify accepted a different password for %q", p)
		}
	}
}

func TestPasswordHasherSalts(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	a, _ := h.Hash("secret")
	b, _ := h.Hash("secret")
	if a == b {
		t.Fatal("two hashes of the same password should differ")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	for _, bad := range []string{"", "not-a-hash", "$2a$10$short"} {
		if h.Verify("secret", bad) {
			t.Fatalf("Verify against %q should be false", bad)
		}
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	if got := NewPasswordHasher(1).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", got, bcrypt.DefaultCost)
	}
	if got := NewPasswordHasher(99).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", got, bcrypt.DefaultCost)
	}
	if got := NewPasswordHasher(bcrypt.MinCost).Cost; got != bcrypt.MinCost {
		t.Fatalf("cost = %d, want %d", got, bcrypt.MinCost)
	}
}

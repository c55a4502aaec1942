package auth

import (
	"bytes"
	"testing"
)

func TestArgon2Hasher_Deterministic(t *testing.T) {
	h := Argon2Hasher{}
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}

	first := h.Hash("secret-password", salt)
	second := h.Hash("secret-password", salt)
	if !bytes.Equal(first, second) {
		t.Fatalf("same (password, salt) produced different digests")
	}
	if len(first) != digestLen {
		t.Fatalf("digest length = %d, want %d", len(first), digestLen)
	}
}

func TestArgon2Hasher_DifferentSalts(t *testing.T) {
	h := Argon2Hasher{}
	saltA, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	saltB, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	if bytes.Equal(saltA, saltB) {
		t.Fatalf("two fresh salts are identical")
	}

	if bytes.Equal(h.Hash("secret-password", saltA), h.Hash("secret-password", saltB)) {
		t.Fatalf("same password with different salts produced identical digests")
	}
}

func TestArgon2Hasher_Compare(t *testing.T) {
	h := Argon2Hasher{}
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	digest := h.Hash("secret-password", salt)

	if !h.Compare(digest, "secret-password", salt) {
		t.Fatalf("expected matching password to compare equal")
	}
	if h.Compare(digest, "wrong-password", salt) {
		t.Fatalf("expected wrong password to compare unequal")
	}
	otherSalt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	if h.Compare(digest, "secret-password", otherSalt) {
		t.Fatalf("expected wrong salt to compare unequal")
	}
}

func TestNewSalt_Length(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	if len(salt) != saltLen {
		t.Fatalf("salt length = %d, want %d", len(salt), saltLen)
	}
}

package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	// MinCost keeps the suite fast; cost does not change the contract.
	hasher := &PasswordHasher{cost: bcrypt.MinCost}

	hash, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" {
		t.Fatal("Hash() returned empty hash")
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext password")
	}

	if !hasher.Verify("correct horse battery staple", hash) {
		t.Error("Verify() = false for correct password")
	}
	if hasher.Verify("wrong password", hash) {
		t.Error("Verify() = true for wrong password")
	}
	if hasher.Verify("", hash) {
		t.Error("Verify() = true for empty password")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher := &PasswordHasher{cost: bcrypt.MinCost}

	first, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical, expected distinct salts")
	}
}

func TestVerifyRejectsGarbageHash(t *testing.T) {
	hasher := NewPasswordHasher()
	if hasher.Verify("password123", "not-a-bcrypt-hash") {
		t.Error("Verify() = true for malformed hash")
	}
}

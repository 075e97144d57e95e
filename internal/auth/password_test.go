package auth

import "testing"

func TestHashPasswordSaltsPerCall(t *testing.T) {
	first, err := HashPassword("p@ss1234")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("p@ss1234")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for the same plaintext")
	}
	if !VerifyPassword(first, "p@ss1234") || !VerifyPassword(second, "p@ss1234") {
		t.Fatal("hashes do not verify against the original plaintext")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordMismatch(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if VerifyPassword(hash, "battery-staple") {
		t.Fatal("expected mismatch")
	}
}

func TestVerifyPasswordMalformedHashIsNoMatch(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatal("malformed hash must be treated as a mismatch")
	}
	if VerifyPassword("", "anything") {
		t.Fatal("empty hash must be treated as a mismatch")
	}
}

package utils

import (
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "secret"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !CheckPassword(password, hash) {
		t.Errorf("expected password check to pass")
	}
	if CheckPassword("wrongpassword", hash) {
		t.Errorf("expected password check to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := "supersecret"

	token, err := GenerateToken("123", "coach", secret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "123" {
		t.Errorf("expected UserID 123, got %s", claims.UserID)
	}
	if claims.Role != "coach" {
		t.Errorf("expected coach role, got %s", claims.Role)
	}

	if _, err := ValidateToken(token, "wrongsecret"); err == nil {
		t.Errorf("expected error with wrong secret")
	}
	if _, err := ValidateToken(token+"x", secret); err == nil {
		t.Errorf("expected error for tampered token")
	}
}

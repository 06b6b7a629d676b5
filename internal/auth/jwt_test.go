package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "super-secret-key"
	issuer := "buyfromegypt"
	validity := time.Hour
	auth := NewAuthenticator(secret, issuer, validity)

	userID := "user-123"
	name := "Test User"

	// Generate Token
	token, err := auth.GenerateToken(userID, name)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("generated token is empty")
	}

	// Validate Token
	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("expected user ID %s, got %s", userID, claims.UserID)
	}
	if claims.Name != name {
		t.Errorf("expected name %s, got %s", name, claims.Name)
	}
	if claims.Issuer != issuer {
		t.Errorf("expected issuer %s, got %s", issuer, claims.Issuer)
	}
}

func TestExpiredToken(t *testing.T) {
	secret := "super-secret-key"
	auth := NewAuthenticator(secret, "buyfromegypt", -time.Minute) // Expired immediately

	token, err := auth.GenerateToken("u1", "user")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	_, err = auth.ValidateToken(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestInvalidSignature(t *testing.T) {
	auth1 := NewAuthenticator("secret1", "buyfromegypt", time.Hour)
	auth2 := NewAuthenticator("secret2", "buyfromegypt", time.Hour)

	token, _ := auth1.GenerateToken("u1", "user")

	_, err := auth2.ValidateToken(token)
	if err == nil {
		t.Fatal("expected error for invalid signature, got nil")
	}
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, _ := m.Generate("user-1", "")
	m.now = func() time.Time { return issued.Add(2 * time.Minute) }

	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, _ := NewTokenManager("one", time.Hour).Generate("user-1", "")
	if _, err := NewTokenManager("two", time.Hour).Validate(token); err == nil {
		t.Fatal("token signed with another secret should be rejected")
	}
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("secret", time.Hour).Validate(token); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Password@123")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "Password@123" {
		t.Fatal("password was stored in plain text")
	}
	if !CheckPassword(hash, "Password@123") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "password@123") {
		t.Error("wrong password accepted")
	}
}

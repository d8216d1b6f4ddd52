package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestNewTokenManager_EmptySecret_ReturnsError は空のシークレットを拒否することを検証する。
func TestNewTokenManager_EmptySecret_ReturnsError(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

// TestNewTokenManager_DefaultLifetime は有効期間未指定時に既定値が使われることを検証する。
func TestNewTokenManager_DefaultLifetime(t *testing.T) {
	tm, err := NewTokenManager("secret", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.lifetime != DefaultTokenLifetime {
		t.Errorf("lifetime = %v, want %v", tm.lifetime, DefaultTokenLifetime)
	}
}

// TestTokenManager_RoundTrip は発行したトークンのクレームが検証で取り出せることを検証する。
func TestTokenManager_RoundTrip(t *testing.T) {
	tm, _ := NewTokenManager("secret", time.Hour)

	token, err := tm.Generate("user-1", "a@example.com", true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.ID != "user-1" || claims.Email != "a@example.com" || !claims.Admin {
		t.Errorf("claims = %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("lifetime in token = %v, want 1h", got)
	}
}

// TestTokenManager_Expired は期限切れトークンを拒否することを検証する。
func TestTokenManager_Expired(t *testing.T) {
	tm, _ := NewTokenManager("secret", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return issued }

	token, err := tm.Generate("user-1", "a@example.com", false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tm.now = time.Now
	if _, err := tm.Validate(token); err == nil {
		t.Error("expected error for expired token")
	}
}

// TestTokenManager_WrongSecret は別シークレットで署名されたトークンを拒否することを検証する。
func TestTokenManager_WrongSecret(t *testing.T) {
	issuer, _ := NewTokenManager("secret-a", time.Hour)
	verifier, _ := NewTokenManager("secret-b", time.Hour)

	token, _ := issuer.Generate("user-1", "a@example.com", false)
	if _, err := verifier.Validate(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

// TestTokenManager_RejectsNoneAlgorithm は署名なしトークンを拒否することを検証する。
func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	tm, _ := NewTokenManager("secret", time.Hour)

	claims := &Claims{
		ID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	if _, err := tm.Validate(unsigned); err == nil {
		t.Error("expected error for alg=none token")
	}
}

// TestTokenManager_MissingUserID はユーザーIDのないトークンを拒否することを検証する。
func TestTokenManager_MissingUserID(t *testing.T) {
	tm, _ := NewTokenManager("secret", time.Hour)

	token, _ := tm.Generate("", "a@example.com", false)
	if _, err := tm.Validate(token); err == nil {
		t.Error("expected error for token without _id")
	}
}

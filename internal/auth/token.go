package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime はトークン有効期間の既定値。
const DefaultTokenLifetime = 24 * time.Hour

// Claims はアクセストークンのクレーム。
// ユーザーID・メールアドレス・管理者フラグを保持する。
type Claims struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// TokenManager はHS256署名のアクセストークンを発行・検証する。
type TokenManager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenManager はTokenManagerを生成する。secretが空の場合はエラーを返す。
func NewTokenManager(secret string, lifetime time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required but was empty")
	}
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenManager{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Generate はユーザーのアクセストークンを発行する。
func (m *TokenManager) Generate(userID, email string, admin bool) (string, error) {
	now := m.now()
	claims := &Claims{
		ID:    userID,
		Email: email,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate はトークンの署名・有効期限を検証し、クレームを返す。
// HMAC以外の署名方式は拒否する。
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access-token JWT payload. SessionID ties the stateless token
// back to its revocable session row.
type Claims struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
	Role           string `json:"role"`
	SessionID      string `json:"sessionId"`
	Email          string `json:"email"`
	jwt.RegisteredClaims
}

// AccessTokenParams carries the identity baked into an access token.
type AccessTokenParams struct {
	UserID         string
	OrganizationID string
	Role           string
	SessionID      string
	Email          string
}

// Service issues and verifies the two token kinds used by the auth flows:
// signed JWT access tokens and opaque refresh tokens stored only as hashes.
type Service struct {
	secret    []byte
	accessTTL time.Duration
}

func NewService(secret string, accessTTL time.Duration) *Service {
	return &Service{secret: []byte(secret), accessTTL: accessTTL}
}

// GenerateAccessToken signs a short-lived HS256 JWT.
func (s *Service) GenerateAccessToken(p AccessTokenParams) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:         p.UserID,
		OrganizationID: p.OrganizationID,
		Role:           p.Role,
		SessionID:      p.SessionID,
		Email:          p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken parses and validates an access token.
func (s *Service) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// NewRefreshToken generates an opaque refresh token. The raw token goes to
// the client; the session row stores only the hash.
func (s *Service) NewRefreshToken() (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), nil
}

// HashToken returns the stored form of an opaque token
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

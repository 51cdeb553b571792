// Package auth gates privileged admin operations behind the configured
// secret and short-lived bearer tokens.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	klog "github.com/Klingon-tech/walletsim/internal/log"
)

// ErrUnauthorized indicates a bad password or a bad/missing bearer token.
var ErrUnauthorized = errors.New("unauthorized")

const tokenIssuer = "walletsimd"

// Gate validates the admin secret and issues per-login expiring session
// tokens. Tokens are HS256 JWTs signed with a key generated at construction,
// so every token dies with the process.
type Gate struct {
	passwordHash []byte
	signingKey   []byte
	ttl          time.Duration
}

// NewGate creates a gate for the given admin password. The password is kept
// only as a bcrypt hash. ttl bounds the lifetime of issued tokens.
func NewGate(password string, ttl time.Duration) (*Gate, error) {
	if password == "" {
		return nil, errors.New("admin password must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	return &Gate{passwordHash: hash, signingKey: key, ttl: ttl}, nil
}

// Login checks password against the configured secret and, on match, issues
// a fresh session token with its expiry time. A mismatch yields
// ErrUnauthorized.
func (g *Gate) Login(password string) (string, time.Time, error) {
	if err := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)); err != nil {
		klog.Auth.Warn().Msg("admin login rejected")
		return "", time.Time{}, ErrUnauthorized
	}

	now := time.Now()
	expiry := now.Add(g.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "admin",
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	klog.Auth.Info().Time("expires_at", expiry).Msg("admin session issued")
	return token, expiry, nil
}

// Authorize validates an Authorization header of the form "Bearer <token>".
// Any parse, signature, or expiry failure yields ErrUnauthorized.
func (g *Gate) Authorize(header string) error {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return ErrUnauthorized
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.signingKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrUnauthorized
	}
	return nil
}

package utils

import (
	"errors"
	"fmt"
	"time"

	"toolhub/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that fails validation,
// whatever the cause (malformed, bad signature, expired).
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims custom claims for JWT
type JWTClaims struct {
	User model.SessionUser `json:"user"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
	now       func() time.Time
}

// JWTOption customises a JWTUtil
type JWTOption func(*JWTUtil)

// WithIssuer sets the iss claim written and required by the util.
func WithIssuer(issuer string) JWTOption {
	return func(ju *JWTUtil) {
		ju.issuer = issuer
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) JWTOption {
	return func(ju *JWTUtil) {
		if now != nil {
			ju.now = now
		}
	}
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, ttl time.Duration, opts ...JWTOption) *JWTUtil {
	ju := &JWTUtil{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(ju)
	}
	return ju
}

// TTL returns the lifetime applied to issued tokens.
func (ju *JWTUtil) TTL() time.Duration {
	return ju.ttl
}

// GenerateToken signs a token carrying user that expires after the configured TTL
func (ju *JWTUtil) GenerateToken(user model.SessionUser) (string, error) {
	now := ju.now()
	claims := &JWTClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ju.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    ju.issuer,
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken checks signature, expiry and issuer and returns the claims
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ju.now),
	}
	if ju.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ju.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return ju.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.User.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnverified reads the claims of a token without checking its signature.
// Only clients that cannot hold the secret should use it, and only for display hints.
func DecodeUnverified(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

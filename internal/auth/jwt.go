package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm constants for JWT signing methods
const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
)

var (
	// ErrNoVerificationKey is returned when no key source can verify a token
	ErrNoVerificationKey = errors.New("no verification key configured for token")
	// ErrMissingSubject is returned for tokens without a user id
	ErrMissingSubject = errors.New("token has no subject")
)

// JWTHeader represents the parsed JWT header
type JWTHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ,omitempty"`
}

// Claims are the session token claims issued by the identity provider
type Claims struct {
	jwt.RegisteredClaims
	FirstName *string `json:"first_name,omitempty"`
	Username  string  `json:"username,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// KeyFetcher resolves the public key for an asymmetric token by key id
type KeyFetcher interface {
	FetchPublicKey(ctx context.Context, kid string) (interface{}, error)
}

// VerifierConfig configures a Verifier
type VerifierConfig struct {
	// Issuer, when set, must match the token's iss claim
	Issuer string
	// HS256Secret verifies tokens that carry no key id
	HS256Secret []byte
}

// Verifier validates session tokens.
//
// Tokens with a key id are verified asymmetrically (RS256/ES256) with keys
// from the KeyFetcher. Tokens without one are accepted only when an HS256
// secret is configured. A kid never selects HS256, which blocks algorithm
// confusion between the two paths.
type Verifier struct {
	keys   KeyFetcher
	secret []byte
	issuer string
}

// NewVerifier creates a Verifier. keys may be nil when only HS256 is used.
func NewVerifier(cfg VerifierConfig, keys KeyFetcher) *Verifier {
	return &Verifier{
		keys:   keys,
		secret: cfg.HS256Secret,
		issuer: cfg.Issuer,
	}
}

// Verify parses and validates tokenString, returning its claims
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = stripBearerPrefix(tokenString)

	header, err := ParseJWTHeader(tokenString)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var keyFunc jwt.Keyfunc
	switch {
	case header.Kid != "":
		if v.keys == nil {
			return nil, ErrNoVerificationKey
		}
		opts = append(opts, jwt.WithValidMethods([]string{AlgorithmRS256, AlgorithmES256}))
		keyFunc = func(t *jwt.Token) (interface{}, error) {
			return v.keys.FetchPublicKey(ctx, header.Kid)
		}
	case len(v.secret) > 0:
		opts = append(opts, jwt.WithValidMethods([]string{AlgorithmHS256}))
		keyFunc = func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		}
	default:
		return nil, ErrNoVerificationKey
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, opts...); err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// stripBearerPrefix removes the "Bearer " prefix from a token string
func stripBearerPrefix(tokenString string) string {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	return strings.TrimSpace(tokenString)
}

// ParseJWTHeader extracts and parses the JWT header from a token string
func ParseJWTHeader(tokenString string) (*JWTHeader, error) {
	tokenString = stripBearerPrefix(tokenString)

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid JWT format: expected 3 parts, got %d", len(parts))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT header: %w", err)
	}

	var header JWTHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse JWT header: %w", err)
	}

	return &header, nil
}

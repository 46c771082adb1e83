// Package jwtverifier verifies asymmetrically signed bearer tokens with golang-jwt.
package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// Supported signing algorithms.
const (
	AlgEdDSA = "EdDSA"
	AlgRS256 = "RS256"
	AlgES256 = "ES256"
)

var _ ports.TokenVerifier = (*Verifier)(nil)

// Config holds verification settings.
type Config struct {
	PublicKeyPEM []byte // Required
	Algorithm    string // Optional: defaults to EdDSA
	Issuer       string // Optional: checked when set
	Audience     string // Optional: checked when set
	Leeway       time.Duration
	Now          func() time.Time // Optional: overrides the clock used for exp/nbf/iat
}

// Verifier checks signature and registered time claims and returns the payload untouched.
// Only the configured algorithm is accepted, so "none" and HMAC-with-public-key tokens fail.
type Verifier struct {
	key    any
	parser *jwt.Parser
}

// tokenClaims is the wire shape of an access token.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// New builds a Verifier from cfg.
func New(cfg Config) (*Verifier, error) {
	alg := cfg.Algorithm
	if alg == "" {
		alg = AlgEdDSA
	}
	key, err := ParsePublicKey(alg, cfg.PublicKeyPEM)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}

	return &Verifier{key: key, parser: jwt.NewParser(opts...)}, nil
}

// ParsePublicKey decodes a PEM public key for the given algorithm.
func ParsePublicKey(alg string, pemBytes []byte) (any, error) {
	if len(pemBytes) == 0 {
		return nil, errors.New("public key is required")
	}

	var (
		key any
		err error
	)
	switch alg {
	case AlgEdDSA:
		key, err = jwt.ParseEdPublicKeyFromPEM(pemBytes)
	case AlgRS256:
		key, err = jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	case AlgES256:
		key, err = jwt.ParseECPublicKeyFromPEM(pemBytes)
	default:
		return nil, fmt.Errorf("unsupported token algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s public key: %w", alg, err)
	}
	return key, nil
}

// Verify implements ports.TokenVerifier.
func (v *Verifier) Verify(_ context.Context, rawToken string) (domainauth.RawClaims, error) {
	var claims tokenClaims
	_, err := v.parser.ParseWithClaims(rawToken, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return domainauth.RawClaims{}, domainauth.BadToken(classify(err), err)
	}

	return domainauth.RawClaims{
		Subject:     claims.Subject,
		SessionID:   claims.ID,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Roles:       claims.Roles,
	}, nil
}

func classify(err error) domainauth.VerifyFailure {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domainauth.VerifyExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domainauth.VerifyBadSignature
	default:
		return domainauth.VerifyMalformed
	}
}

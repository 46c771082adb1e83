package oidc

// Package oidc verifies bearer tokens with go-oidc, either against a static public key
// or against the JWKS advertised by an issuer's discovery document.

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"

	"github.com/artisanhub/marketplace-api/internal/adapters/jwtverifier"
	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

var _ ports.TokenVerifier = (*Verifier)(nil)

// VerifierConfig holds configuration for the OIDC verifier.
type VerifierConfig struct {
	Issuer   string // Required
	Audience string // Optional: aud is not checked when empty
	// Algorithm restricts accepted signatures. Defaults to EdDSA.
	Algorithm string
	// PublicKeyPEM pins a single verification key. When empty, keys come from DiscoveryURL.
	PublicKeyPEM []byte
	DiscoveryURL string
	HTTPClient   *http.Client     // Optional, defaults to a 30s-timeout client
	Now          func() time.Time // Optional
}

// Verifier implements ports.TokenVerifier on top of gooidc.IDTokenVerifier.
type Verifier struct {
	verifier *gooidc.IDTokenVerifier
}

// extraClaims are the non-registered claims read from a verified token.
type extraClaims struct {
	JTI   string   `json:"jti"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// NewVerifier creates a Verifier. With a discovery URL it performs one discovery fetch.
func NewVerifier(ctx context.Context, config VerifierConfig) (*Verifier, error) {
	if config.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	alg := config.Algorithm
	if alg == "" {
		alg = jwtverifier.AlgEdDSA
	}

	oidcConfig := &gooidc.Config{
		ClientID:             config.Audience,
		SkipClientIDCheck:    config.Audience == "",
		SupportedSigningAlgs: []string{alg},
		Now:                  config.Now,
	}

	if len(config.PublicKeyPEM) > 0 {
		key, err := jwtverifier.ParsePublicKey(alg, config.PublicKeyPEM)
		if err != nil {
			return nil, err
		}
		keySet := &gooidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key}}
		return &Verifier{verifier: gooidc.NewVerifier(config.Issuer, keySet, oidcConfig)}, nil
	}

	if config.DiscoveryURL == "" {
		return nil, errors.New("either a public key or a discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	discoveryCtx := gooidc.ClientContext(ctx, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(discoveryCtx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	return &Verifier{verifier: op.Verifier(oidcConfig)}, nil
}

// Verify implements ports.TokenVerifier.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (domainauth.RawClaims, error) {
	tok, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return domainauth.RawClaims{}, domainauth.BadToken(classify(err), err)
	}

	var extra extraClaims
	if err := tok.Claims(&extra); err != nil {
		return domainauth.RawClaims{}, domainauth.BadToken(domainauth.VerifyMalformed, err)
	}

	return domainauth.RawClaims{
		Subject:     tok.Subject,
		SessionID:   extra.JTI,
		Email:       extra.Email,
		DisplayName: extra.Name,
		Roles:       extra.Roles,
	}, nil
}

// classify maps go-oidc failures. Only expiry has a typed error; the rest are matched on text.
func classify(err error) domainauth.VerifyFailure {
	var expired *gooidc.TokenExpiredError
	if errors.As(err, &expired) {
		return domainauth.VerifyExpired
	}
	msg := err.Error()
	if strings.Contains(msg, "signature") || strings.Contains(msg, "unsupported algorithm") {
		return domainauth.VerifyBadSignature
	}
	return domainauth.VerifyMalformed
}

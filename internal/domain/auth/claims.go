package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// RawClaims is the verified-but-untrusted payload handed back by a token verifier.
// It must pass ParseClaims before anything reads it.
type RawClaims struct {
	Subject     string
	SessionID   string
	Email       string
	DisplayName string
	Roles       []string
}

// TokenClaims is a claim set that passed schema validation.
type TokenClaims struct {
	SubjectUserID string
	SessionID     string
	Email         string
	DisplayName   string
	Roles         RoleSet
}

const maxDisplayNameLen = 200

// ParseClaims validates raw claims against the fixed schema. Any violation is a hard failure.
func ParseClaims(raw RawClaims) (TokenClaims, error) {
	if err := validateUUID("sub", raw.Subject); err != nil {
		return TokenClaims{}, err
	}
	if err := validateUUID("jti", raw.SessionID); err != nil {
		return TokenClaims{}, err
	}
	if err := validateEmail(raw.Email); err != nil {
		return TokenClaims{}, err
	}
	if strings.TrimSpace(raw.DisplayName) == "" {
		return TokenClaims{}, errors.New("claim name is required")
	}
	if len(raw.DisplayName) > maxDisplayNameLen {
		return TokenClaims{}, fmt.Errorf("claim name exceeds %d bytes", maxDisplayNameLen)
	}
	roles, err := ParseRoleSet(raw.Roles)
	if err != nil {
		return TokenClaims{}, fmt.Errorf("claim roles: %w", err)
	}

	return TokenClaims{
		SubjectUserID: raw.Subject,
		SessionID:     raw.SessionID,
		Email:         raw.Email,
		DisplayName:   raw.DisplayName,
		Roles:         roles,
	}, nil
}

// validateUUID accepts only the canonical 36-character hyphenated form.
func validateUUID(field, v string) error {
	if len(v) != 36 {
		return fmt.Errorf("claim %s must be a canonical UUID", field)
	}
	if _, err := uuid.Parse(v); err != nil {
		return fmt.Errorf("claim %s: %w", field, err)
	}
	return nil
}

func validateEmail(v string) error {
	addr, err := mail.ParseAddress(v)
	if err != nil {
		return fmt.Errorf("claim email: %w", err)
	}
	// Reject "Name <addr>" forms; the claim must be the bare address.
	if addr.Name != "" || addr.Address != v {
		return errors.New("claim email must be a bare address")
	}
	return nil
}

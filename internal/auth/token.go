// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/versocms/verso/internal/model"
)

// TokenTTL is the fixed lifetime of issued tokens.
const TokenTTL = 4 * time.Hour

// TokenService signs and verifies stateless HS256 session tokens. The
// signing secret is immutable after construction; if the process was
// started without a pinned secret the config layer generates a random one,
// which makes tokens unverifiable across restarts (documented behavior).
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service bound to the given secret.
func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret}
}

type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Issue encodes the identity claim into a signed token expiring after ttl.
func (s *TokenService) Issue(claim *model.Claim, ttl time.Duration) (string, error) {
	now := time.Now()
	tc := tokenClaims{
		Username: claim.Username,
		Role:     claim.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify decodes a token into its identity claim. It fails open: any
// cryptographic, structural or expiry failure yields nil, which downstream
// checks must treat as an anonymous caller.
func (s *TokenService) Verify(token string) *model.Claim {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return nil
	}
	return &model.Claim{
		SubjectID: tc.Subject,
		Username:  tc.Username,
		Role:      tc.Role,
	}
}

// FromHeader extracts and verifies the claim carried by an Authorization
// header. The header must be exactly two space-separated parts with the
// first literally "Bearer"; anything else is treated as anonymous, not
// rejected.
func (s *TokenService) FromHeader(header string) *model.Claim {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil
	}
	return s.Verify(parts[1])
}

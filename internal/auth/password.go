// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides the authentication primitives of the resource
// layer: password hashing, stateless token issue/verify and the role-based
// permission policy.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the fixed work factor for password hashes.
const BcryptCost = 12

// HashPassword creates a self-salting bcrypt hash of the password. A
// hashing failure is fatal to the calling operation and surfaces as a
// server error.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
// A mismatch is a normal false, not an error.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer exchanges credentials for an opaque token.
type Issuer interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, email, password string) (string, error)
}

// StandInIssuerName is the "iss" claim of every stand-in token.
const StandInIssuerName = "cerevo-stand-in"

// DefaultTokenTTL is how long a stand-in token claims to be valid.
const DefaultTokenTTL = 24 * time.Hour

// Claims are the claims carried by a stand-in token.
type Claims struct {
	Email   string `json:"email"`
	StandIn bool   `json:"stand_in"`
	jwt.RegisteredClaims
}

// StandInIssuer accepts any credentials and signs a token with a key that
// lives only as long as the issuer. It performs no verification of the
// password and must not be mistaken for real authentication.
type StandInIssuer struct {
	key []byte
	ttl time.Duration

	// Delay simulates a network round trip. Zero means none.
	Delay time.Duration

	now func() time.Time
}

// NewStandInIssuer creates a stand-in issuer with a fresh signing key.
func NewStandInIssuer() (*StandInIssuer, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return &StandInIssuer{key: key, ttl: DefaultTokenTTL, now: time.Now}, nil
}

// Login implements Issuer.
func (s *StandInIssuer) Login(ctx context.Context, email, _ string) (string, error) {
	return s.issue(ctx, email)
}

// Signup implements Issuer.
func (s *StandInIssuer) Signup(ctx context.Context, email, _ string) (string, error) {
	return s.issue(ctx, email)
}

func (s *StandInIssuer) issue(ctx context.Context, email string) (string, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	now := s.now()
	claims := Claims{
		Email:   email,
		StandIn: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    StandInIssuerName,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify checks a token minted by this issuer and returns its claims.
func (s *StandInIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(StandInIssuerName),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// InspectToken decodes a token's claims without verifying its signature.
// It is for display only.
func InspectToken(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	if claims.Issuer == "" && claims.Email == "" {
		return nil, errors.New("token carries no identity claims")
	}
	return claims, nil
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the cryptographic primitives of the identity service:
// credential hashing, opaque token generation and session token signing.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. The
// auth package consumes it through small interfaces so tests can swap it out.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token failure kinds returned by [TokenService.Verify].
var (
	ErrTokenExpired          = errors.New("sec: session token expired")
	ErrTokenMalformed        = errors.New("sec: session token malformed")
	ErrTokenSignatureInvalid = errors.New("sec: session token signature invalid")
)

// AuthClaims is the payload of a session token.
//
// The subject, nickname, screen id and confirmation flag are embedded so the
// middleware can rebuild the caller's identity without a store round trip.
type AuthClaims struct {
	jwt.RegisteredClaims

	Nickname    string `json:"nick"`
	ScreenID    string `json:"sid"`
	IsConfirmed bool   `json:"cfm"`
}

// UserID returns the account id carried in the subject claim.
func (claims *AuthClaims) UserID() string {
	return claims.Subject
}

// SessionSubject is the account projection a session token is issued for.
type SessionSubject struct {
	ID          string
	Nickname    string
	ScreenID    string
	IsConfirmed bool
}

// TokenService signs and verifies session tokens.
//
// The key material and algorithm are fixed for the life of the process; there
// is no key id, so replacing the key invalidates every outstanding token.
type TokenService struct {
	method     jwt.SigningMethod
	signingKey any
	verifyKey  any
	issuer     string
	timeToLive time.Duration
	now        func() time.Time
}

// NewHMACTokenService creates an HS512 [TokenService] from a shared secret.
func NewHMACTokenService(secret []byte, issuer string, timeToLive time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("sec: empty session secret")
	}
	if timeToLive <= 0 {
		return nil, errors.New("sec: session ttl must be positive")
	}

	return &TokenService{
		method:     jwt.SigningMethodHS512,
		signingKey: secret,
		verifyKey:  secret,
		issuer:     issuer,
		timeToLive: timeToLive,
		now:        time.Now,
	}, nil
}

// NewRSATokenService creates an RS256 [TokenService] from PEM files on disk.
func NewRSATokenService(privateKeyPath, publicKeyPath, issuer string, timeToLive time.Duration) (*TokenService, error) {
	if timeToLive <= 0 {
		return nil, errors.New("sec: session ttl must be positive")
	}

	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return newRSA(privateKey, publicKey, issuer, timeToLive), nil
}

func newRSA(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string, timeToLive time.Duration) *TokenService {
	return &TokenService{
		method:     jwt.SigningMethodRS256,
		signingKey: privateKey,
		verifyKey:  publicKey,
		issuer:     issuer,
		timeToLive: timeToLive,
		now:        time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (service *TokenService) TTL() time.Duration {
	return service.timeToLive
}

// Issue signs a session token for subject and returns it with its expiry.
func (service *TokenService) Issue(subject SessionSubject) (string, time.Time, error) {
	issuedAt := service.now()
	expiresAt := issuedAt.Add(service.timeToLive)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Nickname:    subject.Nickname,
		ScreenID:    subject.ScreenID,
		IsConfirmed: subject.IsConfirmed,
	}

	signed, err := jwt.NewWithClaims(service.method, claims).SignedString(service.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks signature, issuer and expiry of tokenString.
//
// Failures are exactly one of [ErrTokenExpired], [ErrTokenMalformed] or
// [ErrTokenSignatureInvalid], wrapped around the parser error.
func (service *TokenService) Verify(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return service.verifyKey, nil
		},
		jwt.WithValidMethods([]string{service.method.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	return claims, nil
}

// classify folds the parser's error tree into the three session failure kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}

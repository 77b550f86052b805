// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// # Credential Hashing

// AlgorithmPBKDF2SHA512 identifies credentials derived with PBKDF2-HMAC-SHA512.
const AlgorithmPBKDF2SHA512 = "pbkdf2-sha512"

const (
	// MinIterations is the lowest accepted PBKDF2 iteration count.
	MinIterations = 100_000

	// MinKeyLength is the lowest accepted derived key length in bytes.
	MinKeyLength = 64

	// SaltLength is the number of random bytes behind every salt.
	SaltLength = 64
)

// ErrUnsupportedAlgorithm is returned when a stored credential names an unknown KDF.
var ErrUnsupportedAlgorithm = errors.New("sec: unsupported credential algorithm")

// HashParams are the KDF parameters applied to newly written credentials.
type HashParams struct {
	Iterations int
	KeyLength  int
}

// Credential is a stored password verifier. The parameters travel with the
// digest so they can be raised later without invalidating existing accounts.
type Credential struct {
	Algorithm  string `json:"algorithm"  bson:"algorithm"`
	Iterations int    `json:"iterations" bson:"iterations"`
	KeyLength  int    `json:"keyLength"  bson:"keyLength"`
	Salt       string `json:"salt"       bson:"salt"`
	Hash       string `json:"hash"       bson:"hash"`
}

// Hasher derives and verifies salted password credentials.
//
// It is immutable after construction and safe for concurrent use.
type Hasher struct {
	params HashParams
}

// NewHasher validates params against the safety floor and returns a [Hasher].
func NewHasher(params HashParams) (*Hasher, error) {
	if params.Iterations < MinIterations {
		return nil, fmt.Errorf("sec: iterations %d below minimum %d", params.Iterations, MinIterations)
	}
	if params.KeyLength < MinKeyLength {
		return nil, fmt.Errorf("sec: key length %d below minimum %d", params.KeyLength, MinKeyLength)
	}
	return &Hasher{params: params}, nil
}

// Params returns the parameters used for new credentials.
func (hasher *Hasher) Params() HashParams {
	return hasher.params
}

// GenerateSalt returns [SaltLength] random bytes encoded as standard base64.
func (hasher *Hasher) GenerateSalt() (string, error) {
	raw := make([]byte, SaltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Hash derives a credential for password with the given salt and the current params.
func (hasher *Hasher) Hash(password, salt string) (Credential, error) {
	if salt == "" {
		return Credential{}, errors.New("sec: empty salt")
	}

	digest := derive(password, salt, hasher.params.Iterations, hasher.params.KeyLength)

	return Credential{
		Algorithm:  AlgorithmPBKDF2SHA512,
		Iterations: hasher.params.Iterations,
		KeyLength:  hasher.params.KeyLength,
		Salt:       salt,
		Hash:       base64.StdEncoding.EncodeToString(digest),
	}, nil
}

// Verify re-derives password with the parameters stored on the credential and
// compares digests in constant time.
func (hasher *Hasher) Verify(password string, stored Credential) (bool, error) {
	if stored.Algorithm != AlgorithmPBKDF2SHA512 {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, stored.Algorithm)
	}
	if stored.Iterations < 1 || stored.KeyLength < 1 || stored.Salt == "" {
		return false, errors.New("sec: credential is missing derivation parameters")
	}

	expected, err := base64.StdEncoding.DecodeString(stored.Hash)
	if err != nil {
		return false, fmt.Errorf("sec: corrupt credential digest: %w", err)
	}

	actual := derive(password, stored.Salt, stored.Iterations, stored.KeyLength)

	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

// NeedsRehash reports whether stored was derived with parameters other than the current ones.
func (hasher *Hasher) NeedsRehash(stored Credential) bool {
	return stored.Algorithm != AlgorithmPBKDF2SHA512 ||
		stored.Iterations != hasher.params.Iterations ||
		stored.KeyLength != hasher.params.KeyLength
}

// derive runs PBKDF2-HMAC-SHA512. The salt is used in its encoded text form.
func derive(password, salt string, iterations, keyLength int) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha512.New)
}

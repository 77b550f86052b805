// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Handlers use it for request shape checks. Rules that are domain invariants
// (the password policy) are exported as plain predicates so the service layer
// enforces the same rule for programmatic callers.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/epiclogue/internal/platform/apperr"
)

// PasswordMinLength is the minimum number of characters of a password.
const PasswordMinLength = 8

// PasswordSymbols is the fixed symbol set a password must draw from.
const PasswordSymbols = "$@!%*#?&"

var (
	// handleRegex matches public handles such as screen ids.
	handleRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// Validator is not safe for concurrent use; build one per request.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// Email fails if the value is not a bare RFC 5322 address.
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Password fails if the value does not satisfy [IsStrongPassword].
func (v *Validator) Password(field, value string) *Validator {
	if !IsStrongPassword(value) {
		v.add(field, fmt.Sprintf(
			"Minimum %d characters with at least one letter, one digit and one of %s",
			PasswordMinLength, PasswordSymbols,
		))
	}
	return v
}

// Handle fails if the value is not 3 to 30 letters, digits or underscores.
func (v *Validator) Handle(field, value string) *Validator {
	if !handleRegex.MatchString(value) {
		v.add(field, "Must be 3-30 letters, digits or underscores")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
//	v.Custom("userPwRe", pw != pwRe, "Passwords do not match")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a VALIDATION_ERROR [apperr.AppError] if any rule failed, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}

// # Password Policy

// IsStrongPassword reports whether password has at least [PasswordMinLength]
// characters, one ASCII letter, one digit and one symbol from [PasswordSymbols],
// and contains nothing outside those classes.
func IsStrongPassword(password string) bool {
	if len(password) < PasswordMinLength {
		return false
	}

	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		default:
			return false
		}
	}

	return hasLetter && hasDigit && hasSymbol
}

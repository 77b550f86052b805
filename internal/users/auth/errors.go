// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"net/http"

	"github.com/taibuivan/epiclogue/internal/platform/apperr"
)

// # Error Kinds

// Kind names one caller-actionable failure of the lifecycle operations.
type Kind string

const (
	KindValidationFailed    Kind = apperr.CodeValidation
	KindDuplicateEmail      Kind = "DUPLICATE_EMAIL"
	KindPasswordMismatch    Kind = "PASSWORD_MISMATCH"
	KindUserNotFound        Kind = "USER_NOT_FOUND"
	KindInvalidCredential   Kind = "INVALID_CREDENTIAL"
	KindAccountDeactivated  Kind = "ACCOUNT_DEACTIVATED"
	KindAlreadyConfirmed    Kind = "ALREADY_CONFIRMED"
	KindTokenMismatch       Kind = "TOKEN_MISMATCH"
	KindUnsupportedProvider Kind = "UNSUPPORTED_PROVIDER"

	// KindInfrastructure covers every error that is not one of the kinds above.
	KindInfrastructure Kind = "INFRASTRUCTURE"
)

// Sentinel errors, one per kind. Operations return these (or copies carrying
// field details) so errors.Is and [KindOf] both work.
var (
	ErrDuplicateEmail      = apperr.New(string(KindDuplicateEmail), http.StatusConflict, "Email is already registered")
	ErrPasswordMismatch    = apperr.New(string(KindPasswordMismatch), http.StatusBadRequest, "Passwords do not match")
	ErrUserNotFound        = apperr.New(string(KindUserNotFound), http.StatusNotFound, "Cannot find user")
	ErrInvalidCredential   = apperr.New(string(KindInvalidCredential), http.StatusUnauthorized, "Password is incorrect")
	ErrAccountDeactivated  = apperr.New(string(KindAccountDeactivated), http.StatusForbidden, "Account has been deactivated")
	ErrAlreadyConfirmed    = apperr.New(string(KindAlreadyConfirmed), http.StatusConflict, "Account is already confirmed")
	ErrTokenMismatch       = apperr.New(string(KindTokenMismatch), http.StatusBadRequest, "Token does not match")
	ErrUnsupportedProvider = apperr.New(string(KindUnsupportedProvider), http.StatusBadRequest, "SNS provider is not supported")

	// ErrFederatedAccount carries KindUnsupportedProvider: passwords of SNS
	// accounts are managed by their provider.
	ErrFederatedAccount = apperr.New(string(KindUnsupportedProvider), http.StatusBadRequest, "Account signs in through an SNS provider")
)

var kinds = map[string]Kind{
	string(KindValidationFailed):    KindValidationFailed,
	string(KindDuplicateEmail):      KindDuplicateEmail,
	string(KindPasswordMismatch):    KindPasswordMismatch,
	string(KindUserNotFound):        KindUserNotFound,
	string(KindInvalidCredential):   KindInvalidCredential,
	string(KindAccountDeactivated):  KindAccountDeactivated,
	string(KindAlreadyConfirmed):    KindAlreadyConfirmed,
	string(KindTokenMismatch):       KindTokenMismatch,
	string(KindUnsupportedProvider): KindUnsupportedProvider,
}

// KindOf returns the kind carried by err, or [KindInfrastructure].
func KindOf(err error) Kind {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		return KindInfrastructure
	}
	if kind, ok := kinds[appError.Code]; ok {
		return kind
	}
	return KindInfrastructure
}

// validationFailed builds a ValidationFailed error for a single field.
func validationFailed(field, message string) error {
	return apperr.ValidationError("Validation failed", apperr.FieldError{Field: field, Message: message})
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr folds driver-specific database errors into a small set of
// sentinels the store implementations share.
//
// Stores call [Wrap] on every driver error. Services then branch with
// errors.Is on [ErrNotFound] and [ErrDuplicate] without importing pgx or the
// mongo driver.
package dberr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a queried record does not exist.
	ErrNotFound = errors.New("dberr: record not found")

	// ErrDuplicate is matched by every [*DuplicateError].
	ErrDuplicate = errors.New("dberr: unique constraint violated")
)

// DuplicateError reports a unique index violation and the index that fired.
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("dberr: unique constraint %q violated", e.Constraint)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDuplicate) hold for any violated constraint.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// IsDuplicateOf reports whether err is a unique violation of constraint.
func IsDuplicateOf(err error, constraint string) bool {
	var duplicate *DuplicateError
	return errors.As(err, &duplicate) && duplicate.Constraint == constraint
}

// Wrap classifies err and prefixes it with action for log context.
// A nil err stays nil.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", action, classify(err))
}

func classify(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return &DuplicateError{Constraint: pgErr.ConstraintName, Err: err}
	}

	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateError{Constraint: mongoIndexName(err.Error()), Err: err}
	}

	return err
}

// mongoIndexName extracts the index from "E11000 duplicate key error
// collection: db.accounts index: account_email_key dup key: ...".
func mongoIndexName(message string) string {
	_, rest, found := strings.Cut(message, "index: ")
	if !found {
		return ""
	}
	name, _, _ := strings.Cut(rest, " ")
	return name
}

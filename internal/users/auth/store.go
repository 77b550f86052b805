// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Account Data Access

// AccountStore persists accounts.
//
// Every method is atomic for a single record. Implementations return
// [dberr.ErrNotFound] for missing records and a [dberr.DuplicateError] naming
// the violated index when email or (snsId, snsType) is already taken.
type AccountStore interface {

	/*
		FindByID returns the account with the given id.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with exactly this email.

		Parameters:
		  - context: context.Context
		  - email: string (already normalized)

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindBySNSID returns the federated account of a provider identity.

		Parameters:
		  - context: context.Context
		  - snsID: string (provider user id)
		  - provider: Provider

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or storage failures
	*/
	FindBySNSID(context context.Context, snsID string, provider Provider) (*Account, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account (fully populated, including ID)

		Returns:
		  - error: dberr.DuplicateError or storage failures
	*/
	Create(context context.Context, account *Account) error

	/*
		Update applies changes to one account and returns its new state.

		Parameters:
		  - context: context.Context
		  - id: string
		  - changes: Changes

		Returns:
		  - *Account: Updated entity
		  - error: dberr.ErrNotFound, dberr.DuplicateError or storage failures
	*/
	Update(context context.Context, id string, changes Changes) (*Account, error)

	/*
		Delete removes the account permanently.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: dberr.ErrNotFound or storage failures
	*/
	Delete(context context.Context, id string) error

	/*
		ListAll returns every account ordered by join date.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Account: All accounts
		  - error: Storage failures
	*/
	ListAll(context context.Context) ([]*Account, error)
}

// # Volatile Data Access

// ResetTokenStore keeps one pending password reset token per email address.
type ResetTokenStore interface {

	// Save stores token for email, replacing any pending one, for ttl.
	Save(context context.Context, email, token string, ttl time.Duration) error

	// Consume removes and returns the pending token of email in one step, or
	// fails with dberr.ErrNotFound. At most one caller receives a given token.
	Consume(context context.Context, email string) (string, error)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/epiclogue/internal/platform/database/schema"
	"github.com/taibuivan/epiclogue/internal/platform/dberr"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
	"github.com/taibuivan/epiclogue/internal/platform/validate"
	"github.com/taibuivan/epiclogue/pkg/uuid"
)

// # Definitions & Constructors

// Service implements the account lifecycle.
//
// It holds no per-account state: every operation re-reads the account before
// mutating it, and uniqueness under concurrency is left to the store indexes.
type Service struct {
	accounts AccountStore
	resets   ResetTokenStore
	hasher   *sec.Hasher
	now      func() time.Time
}

// Option customizes a [Service].
type Option func(*Service)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(service *Service) {
		service.now = now
	}
}

// NewService constructs a [Service] over its stores and credential hasher.
func NewService(accounts AccountStore, resets ResetTokenStore, hasher *sec.Hasher, options ...Option) *Service {
	service := &Service{
		accounts: accounts,
		resets:   resets,
		hasher:   hasher,
		now:      time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Registration Flow

// CreateUserInput holds the data required to register a password account.
type CreateUserInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	Nickname        string
	Language        Language
}

/*
CreateUser registers an unconfirmed password account.

Description: Checks the email is free, the passwords match and satisfy the
policy, then hashes the password with a fresh salt and attaches a random
confirmation token. The token is returned on the account for the caller to
mail.

Parameters:
  - context: context.Context
  - input: CreateUserInput

Returns:
  - *Account: Created entity carrying its confirmation token
  - error: DuplicateEmail, PasswordMismatch, ValidationFailed or storage failures
*/
func (service *Service) CreateUser(context context.Context, input CreateUserInput) (*Account, error) {
	email := NormalizeEmail(input.Email)

	// An early lookup gives the common case a clean error; the unique index
	// still decides when two registrations race.
	if _, err := service.accounts.FindByEmail(context, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("auth_service_create_lookup_failed: %w", err)
	}

	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	if err := checkPassword(FieldPassword, input.Password); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Custom(FieldLanguage, !input.Language.Valid(), "Unsupported display language")
	if err := validator.Err(); err != nil {
		return nil, err
	}
	if err := checkNickname(input.Nickname); err != nil {
		return nil, err
	}

	credential, err := service.newCredential(input.Password)
	if err != nil {
		return nil, err
	}

	token, err := sec.GenerateSecureToken(ConfirmationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("auth_service_confirmation_token_failed: %w", err)
	}

	now := service.now()
	account := &Account{
		ID:                 uuid.New(),
		Email:              email,
		Credential:         credential,
		Nickname:           input.Nickname,
		ScreenID:           ScreenIDFromEmail(email),
		IsConfirmed:        false,
		ConfirmationToken:  &token,
		DisplayLanguage:    input.Language,
		AvailableLanguages: []Language{input.Language},
		SNSType:            ProviderNormal,
		JoinedAt:           now,
		UpdatedAt:          now,
	}

	if err := service.accounts.Create(context, account); err != nil {
		if dberr.IsDuplicateOf(err, schema.UserAccount.EmailKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("auth_service_create_failed: %w", err)
	}

	return account, nil
}

// # Authentication Flow

/*
Login verifies a password against the stored credential.

Description: The password is checked before the deactivation state, so a
wrong password never reveals that an account is deactivated. Credentials
derived with outdated parameters are re-hashed on success; a failed re-hash
does not fail the login.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Account: The authenticated account
  - error: UserNotFound, InvalidCredential, AccountDeactivated or storage failures
*/
func (service *Service) Login(context context.Context, email, password string) (*Account, error) {
	account, err := service.findByEmail(context, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	// Federated accounts hold a placeholder credential that must never be
	// matched against user input.
	if account.IsFederated() {
		return nil, ErrInvalidCredential
	}

	matched, err := service.hasher.Verify(password, account.Credential)
	if err != nil {
		return nil, fmt.Errorf("auth_service_verify_failed: %w", err)
	}
	if !matched {
		return nil, ErrInvalidCredential
	}

	if account.IsDeactivated() {
		return nil, ErrAccountDeactivated
	}

	if service.hasher.NeedsRehash(account.Credential) {
		if rehashed, err := service.replaceCredential(context, account.ID, password); err == nil {
			account = rehashed
		}
	}

	return account, nil
}

// # Confirmation Flow

/*
ConfirmUser redeems the confirmation token mailed at registration.

Description: An already confirmed account fails before any token comparison.
The comparison runs in constant time. Success clears the token, so the
operation is single use.

Parameters:
  - context: context.Context
  - email: string
  - token: string

Returns:
  - error: UserNotFound, AlreadyConfirmed, TokenMismatch or storage failures
*/
func (service *Service) ConfirmUser(context context.Context, email, token string) error {
	account, err := service.findByEmail(context, NormalizeEmail(email))
	if err != nil {
		return err
	}

	if account.IsConfirmed {
		return ErrAlreadyConfirmed
	}

	if account.ConfirmationToken == nil || !sec.TokensEqual(*account.ConfirmationToken, token) {
		return ErrTokenMismatch
	}

	if _, err := service.update(context, account.ID, Changes{Confirm: true}); err != nil {
		return fmt.Errorf("auth_service_confirm_failed: %w", err)
	}

	return nil
}

// # Credential Management

/*
ChangePassword replaces the credential of an account.

Description: A fresh salt is generated on every call, so two changes to the
same password never produce the same digest.

Parameters:
  - context: context.Context
  - email: string
  - newPassword: string

Returns:
  - error: UserNotFound, UnsupportedProvider, ValidationFailed or storage failures
*/
func (service *Service) ChangePassword(context context.Context, email, newPassword string) error {
	account, err := service.findPasswordAccount(context, email)
	if err != nil {
		return err
	}

	if err := checkPassword(FieldNewPassword, newPassword); err != nil {
		return err
	}

	if _, err := service.replaceCredential(context, account.ID, newPassword); err != nil {
		return err
	}

	return nil
}

/*
RequestPasswordReset issues a single-use reset token for email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Reset token to mail to the account owner
  - error: UserNotFound, UnsupportedProvider or storage failures
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	account, err := service.findPasswordAccount(context, email)
	if err != nil {
		return "", err
	}

	token, err := sec.GenerateSecureToken(ConfirmationTokenBytes)
	if err != nil {
		return "", fmt.Errorf("auth_service_reset_token_failed: %w", err)
	}

	if err := service.resets.Save(context, account.Email, token, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_reset_save_failed: %w", err)
	}

	return token, nil
}

// ResetPasswordInput carries a reset token redemption.
type ResetPasswordInput struct {
	Email           string
	Token           string
	Password        string
	PasswordConfirm string
}

/*
ResetPassword redeems a reset token and sets a new password.

Description: The pending token is taken from the store atomically before it
is compared, so it redeems at most once even under concurrent requests. A
wrong token or a failed change therefore requires a new reset request.

Parameters:
  - context: context.Context
  - input: ResetPasswordInput

Returns:
  - error: PasswordMismatch, UserNotFound, UnsupportedProvider, TokenMismatch, ValidationFailed or storage failures
*/
func (service *Service) ResetPassword(context context.Context, input ResetPasswordInput) error {
	if input.Password != input.PasswordConfirm {
		return ErrPasswordMismatch
	}

	account, err := service.findPasswordAccount(context, input.Email)
	if err != nil {
		return err
	}

	if err := checkPassword(FieldNewPassword, input.Password); err != nil {
		return err
	}

	pending, err := service.resets.Consume(context, account.Email)
	if errors.Is(err, dberr.ErrNotFound) {
		return ErrTokenMismatch
	}
	if err != nil {
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}
	if !sec.TokensEqual(pending, input.Token) {
		return ErrTokenMismatch
	}

	if _, err := service.replaceCredential(context, account.ID, input.Password); err != nil {
		return err
	}

	return nil
}

// findPasswordAccount loads the account behind email, refusing federated ones.
func (service *Service) findPasswordAccount(context context.Context, email string) (*Account, error) {
	account, err := service.findByEmail(context, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if account.IsFederated() {
		return nil, ErrFederatedAccount
	}
	return account, nil
}

// # Account State

/*
DeactivateUser marks an account as deactivated.

Description: Every call stamps the current time, including repeated calls on
an already deactivated account.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: UserNotFound or storage failures
*/
func (service *Service) DeactivateUser(context context.Context, id string) error {
	if _, err := service.FindByID(context, id); err != nil {
		return err
	}

	now := service.now()
	if _, err := service.update(context, id, Changes{DeactivatedAt: &now}); err != nil {
		return fmt.Errorf("auth_service_deactivate_failed: %w", err)
	}

	return nil
}

/*
UpdateUser applies a generic profile patch.

Parameters:
  - context: context.Context
  - id: string
  - patch: AccountPatch

Returns:
  - *Account: Updated entity
  - error: UserNotFound, ValidationFailed or storage failures
*/
func (service *Service) UpdateUser(context context.Context, id string, patch AccountPatch) (*Account, error) {
	account, err := service.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := checkPatch(patch); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return account, nil
	}

	updated, err := service.update(context, id, Changes{AccountPatch: patch})
	if err != nil {
		return nil, fmt.Errorf("auth_service_update_failed: %w", err)
	}

	return updated, nil
}

/*
DeleteUser removes an account permanently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: UserNotFound or storage failures
*/
func (service *Service) DeleteUser(context context.Context, id string) error {
	if _, err := service.FindByID(context, id); err != nil {
		return err
	}

	if err := service.accounts.Delete(context, id); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("auth_service_delete_failed: %w", err)
	}

	return nil
}

// # Queries

// FindByID returns the account with id or UserNotFound.
func (service *Service) FindByID(context context.Context, id string) (*Account, error) {
	account, err := service.accounts.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_find_by_id_failed: %w", err)
	}
	return account, nil
}

// FindByEmail returns the account registered with email or UserNotFound.
func (service *Service) FindByEmail(context context.Context, email string) (*Account, error) {
	return service.findByEmail(context, NormalizeEmail(email))
}

// ListAll returns every account.
func (service *Service) ListAll(context context.Context) ([]*Account, error) {
	accounts, err := service.accounts.ListAll(context)
	if err != nil {
		return nil, fmt.Errorf("auth_service_list_failed: %w", err)
	}
	return accounts, nil
}

// # Helpers

func (service *Service) findByEmail(context context.Context, email string) (*Account, error) {
	account, err := service.accounts.FindByEmail(context, email)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_find_by_email_failed: %w", err)
	}
	return account, nil
}

// newCredential hashes password with a fresh salt and the current parameters.
func (service *Service) newCredential(password string) (sec.Credential, error) {
	salt, err := service.hasher.GenerateSalt()
	if err != nil {
		return sec.Credential{}, fmt.Errorf("auth_service_salt_failed: %w", err)
	}

	credential, err := service.hasher.Hash(password, salt)
	if err != nil {
		return sec.Credential{}, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	return credential, nil
}

func (service *Service) replaceCredential(context context.Context, id, password string) (*Account, error) {
	credential, err := service.newCredential(password)
	if err != nil {
		return nil, err
	}

	account, err := service.update(context, id, Changes{Credential: &credential})
	if err != nil {
		return nil, fmt.Errorf("auth_service_credential_update_failed: %w", err)
	}

	return account, nil
}

// update stamps UpdatedAt and maps a vanished record to UserNotFound.
func (service *Service) update(context context.Context, id string, changes Changes) (*Account, error) {
	changes.UpdatedAt = service.now()

	account, err := service.accounts.Update(context, id, changes)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return account, err
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taibuivan/epiclogue/internal/platform/database/schema"
	"github.com/taibuivan/epiclogue/internal/platform/dberr"
	"github.com/taibuivan/epiclogue/pkg/uuid"
)

// # Federated Identity

// SNSProfile is a provider identity already verified and normalized by the
// boundary. The service never talks to the provider.
type SNSProfile struct {
	Provider       Provider
	ProviderUserID string
	Email          string
	DisplayName    string
	AvatarURL      string
}

/*
SNSLogin signs in a federated identity, creating its account on first use.

Description: Existing accounts are returned unchanged; profile fields edited
locally are never overwritten by provider data. New accounts are confirmed
immediately and receive a placeholder credential derived from their email
that the password login refuses to match. When two first logins race, the
loser of the unique (snsId, snsType) index re-reads and returns the winner.

Parameters:
  - context: context.Context
  - profile: SNSProfile
  - language: Language (display language of a new account)

Returns:
  - *Account: Existing or newly created account
  - error: UnsupportedProvider, AccountDeactivated, ValidationFailed, DuplicateEmail or storage failures
*/
func (service *Service) SNSLogin(context context.Context, profile SNSProfile, language Language) (*Account, error) {
	if !profile.Provider.IsFederated() {
		return nil, ErrUnsupportedProvider
	}
	if strings.TrimSpace(profile.ProviderUserID) == "" {
		return nil, validationFailed(FieldSNSData, "Provider user id is required")
	}

	account, err := service.findBySNSID(context, profile.ProviderUserID, profile.Provider)
	if err == nil {
		if account.IsDeactivated() {
			return nil, ErrAccountDeactivated
		}
		return account, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("auth_service_sns_lookup_failed: %w", err)
	}

	account, err = service.newFederatedAccount(profile, language)
	if err != nil {
		return nil, err
	}

	if err := service.accounts.Create(context, account); err != nil {
		return service.resolveFederatedConflict(context, profile, err)
	}

	return account, nil
}

func (service *Service) newFederatedAccount(profile SNSProfile, language Language) (*Account, error) {
	email := NormalizeEmail(profile.Email)
	if email == "" {
		return nil, validationFailed(FieldEmail, "Provider did not share an email address")
	}
	if !language.Valid() {
		language = LanguageKorean
	}

	nickname := strings.TrimSpace(profile.DisplayName)
	if nickname == "" {
		nickname, _, _ = strings.Cut(email, "@")
	}

	credential, err := service.newCredential(email)
	if err != nil {
		return nil, err
	}

	snsID := profile.ProviderUserID
	now := service.now()

	return &Account{
		ID:                 uuid.New(),
		Email:              email,
		Credential:         credential,
		Nickname:           truncateRunes(nickname, NicknameMaxLength),
		ScreenID:           ScreenIDFromEmail(email),
		IsConfirmed:        true,
		DisplayLanguage:    language,
		AvailableLanguages: []Language{language},
		SNSID:              &snsID,
		SNSType:            profile.Provider,
		Profile:            Image{Origin: profile.AvatarURL, Thumbnail: profile.AvatarURL},
		JoinedAt:           now,
		UpdatedAt:          now,
	}, nil
}

// resolveFederatedConflict handles a failed federated create. A concurrent
// first login of the same identity wins the index and its account is returned.
// Which index fires first is up to the database, so any duplicate re-reads by
// provider identity before blaming the email.
func (service *Service) resolveFederatedConflict(context context.Context, profile SNSProfile, createErr error) (*Account, error) {
	if !errors.Is(createErr, dberr.ErrDuplicate) {
		return nil, fmt.Errorf("auth_service_sns_create_failed: %w", createErr)
	}

	winner, err := service.findBySNSID(context, profile.ProviderUserID, profile.Provider)
	switch {
	case err == nil:
		if winner.IsDeactivated() {
			return nil, ErrAccountDeactivated
		}
		return winner, nil

	case !errors.Is(err, dberr.ErrNotFound):
		return nil, fmt.Errorf("auth_service_sns_reread_failed: %w", err)

	case dberr.IsDuplicateOf(createErr, schema.UserAccount.EmailKey):
		// The email belongs to a password account or another provider.
		return nil, ErrDuplicateEmail

	default:
		return nil, fmt.Errorf("auth_service_sns_create_failed: %w", createErr)
	}
}

func (service *Service) findBySNSID(context context.Context, snsID string, provider Provider) (*Account, error) {
	return service.accounts.FindBySNSID(context, snsID, provider)
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the account lifecycle of the Epiclogue identity service.

It owns registration, password login, email confirmation, password change,
deactivation, deletion and federated (SNS) sign-in, together with the stores
that persist accounts.

# Architecture

  - Entities: [Account] and its value types.
  - Service: lifecycle rules, credential hashing and error kinds.
  - Stores: [AccountStore] on Postgres, MongoDB or memory; reset tokens on Redis.
  - Handler: the /auth HTTP routes, session cookies and mail dispatch.

The service never logs and never sends mail. Both happen at the boundary
after a mutation has committed.
*/
package auth

import (
	"slices"
	"time"

	"github.com/taibuivan/epiclogue/internal/platform/sec"
)

// # Domain Entities

// Account is a user's durable identity record.
//
// Invariant: IsConfirmed implies ConfirmationToken == nil.
type Account struct {
	ID         string
	Email      string
	Credential sec.Credential

	Nickname          string
	ScreenID          string
	IsConfirmed       bool
	ConfirmationToken *string
	DeactivatedAt     *time.Time

	DisplayLanguage    Language
	AvailableLanguages []Language
	Country            int

	SNSID   *string
	SNSType Provider

	Profile Image
	Banner  Image
	Intro   string

	JoinedAt        time.Time
	TermsAcceptedAt *time.Time
	UpdatedAt       time.Time
}

// IsDeactivated reports whether the account has been deactivated.
func (account *Account) IsDeactivated() bool {
	return account.DeactivatedAt != nil
}

// IsFederated reports whether the account was created by an SNS login.
func (account *Account) IsFederated() bool {
	return account.SNSID != nil
}

// Clone returns a deep copy so stores never share pointers with callers.
func (account *Account) Clone() *Account {
	if account == nil {
		return nil
	}

	copied := *account
	copied.ConfirmationToken = clonePtr(account.ConfirmationToken)
	copied.DeactivatedAt = clonePtr(account.DeactivatedAt)
	copied.SNSID = clonePtr(account.SNSID)
	copied.TermsAcceptedAt = clonePtr(account.TermsAcceptedAt)
	copied.AvailableLanguages = slices.Clone(account.AvailableLanguages)
	return &copied
}

func clonePtr[T any](value *T) *T {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

// Image is an uploaded picture and its thumbnail.
type Image struct {
	Origin    string `json:"origin"`
	Thumbnail string `json:"thumbnail"`
}

// # Language

// Language is the display language of an account.
type Language int

const (
	LanguageKorean Language = iota
	LanguageJapanese
	LanguageEnglish
	LanguageChineseSimplified
	LanguageChineseTraditional
)

// Valid reports whether the language is one of the supported values.
func (language Language) Valid() bool {
	return language >= LanguageKorean && language <= LanguageChineseTraditional
}

// # Provider

// Provider identifies how an account signs in.
type Provider string

const (
	// ProviderNormal marks password accounts.
	ProviderNormal Provider = "normal"

	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderKakao    Provider = "kakao"
	ProviderApple    Provider = "apple"
	ProviderNaver    Provider = "naver"
)

// FederatedProviders lists the SNS providers accepted by SNSLogin.
var FederatedProviders = []Provider{
	ProviderGoogle, ProviderFacebook, ProviderKakao, ProviderApple, ProviderNaver,
}

// IsFederated reports whether provider is a supported SNS provider.
func (provider Provider) IsFederated() bool {
	return slices.Contains(FederatedProviders, provider)
}

// # Mutations

// AccountPatch is the generic profile patch. Nil fields are left unchanged.
//
// It deliberately has no email or credential fields; those change only
// through ChangePassword and the confirmation flow.
type AccountPatch struct {
	Nickname           *string
	ScreenID           *string
	Intro              *string
	Profile            *Image
	Banner             *Image
	DisplayLanguage    *Language
	AvailableLanguages *[]Language
	Country            *int
	TermsAcceptedAt    *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (patch AccountPatch) IsEmpty() bool {
	return patch == AccountPatch{}
}

// Changes is the store-level update applied by the service.
type Changes struct {
	AccountPatch

	// Credential replaces the stored verifier.
	Credential *sec.Credential

	// Confirm sets IsConfirmed and clears the confirmation token.
	Confirm bool

	// DeactivatedAt sets the deactivation timestamp.
	DeactivatedAt *time.Time

	// UpdatedAt is always written.
	UpdatedAt time.Time
}

// Apply writes changes onto account. Stores without a query language use it
// so every implementation shares the same semantics.
func (changes Changes) Apply(account *Account) {
	patch := changes.AccountPatch

	if patch.Nickname != nil {
		account.Nickname = *patch.Nickname
	}
	if patch.ScreenID != nil {
		account.ScreenID = *patch.ScreenID
	}
	if patch.Intro != nil {
		account.Intro = *patch.Intro
	}
	if patch.Profile != nil {
		account.Profile = *patch.Profile
	}
	if patch.Banner != nil {
		account.Banner = *patch.Banner
	}
	if patch.DisplayLanguage != nil {
		account.DisplayLanguage = *patch.DisplayLanguage
	}
	if patch.AvailableLanguages != nil {
		account.AvailableLanguages = slices.Clone(*patch.AvailableLanguages)
	}
	if patch.Country != nil {
		account.Country = *patch.Country
	}
	if patch.TermsAcceptedAt != nil {
		account.TermsAcceptedAt = clonePtr(patch.TermsAcceptedAt)
	}

	if changes.Credential != nil {
		account.Credential = *changes.Credential
	}
	if changes.Confirm {
		account.IsConfirmed = true
		account.ConfirmationToken = nil
	}
	if changes.DeactivatedAt != nil {
		account.DeactivatedAt = clonePtr(changes.DeactivatedAt)
	}

	account.UpdatedAt = changes.UpdatedAt
}

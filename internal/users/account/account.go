// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account serves the signed-in user's own profile.

It is a thin layer over the lifecycle engine in package auth: reads are
projected so credential material, confirmation tokens and deactivation state
never leave the service, and writes go through the generic profile patch.

# Architecture

  - Entities: [Profile] (read projection).
  - Domain: depends on [auth.Service] through the [Lifecycle] contract.
  - Security: every route requires a session; reads and edits also require a
    confirmed email address.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/epiclogue/internal/users/auth"
)

// # Domain Entities

// Profile is the client-facing view of an [auth.Account].
type Profile struct {
	ID                 string          `json:"id"`
	Email              string          `json:"email"`
	Nickname           string          `json:"nick"`
	ScreenID           string          `json:"screenId"`
	IsConfirmed        bool            `json:"isConfirmed"`
	DisplayLanguage    auth.Language   `json:"displayLanguage"`
	AvailableLanguages []auth.Language `json:"availableLanguages"`
	Country            int             `json:"country"`
	SNSType            auth.Provider   `json:"snsType"`
	Profile            auth.Image      `json:"profile"`
	Banner             auth.Image      `json:"banner"`
	Intro              string          `json:"intro"`
	JoinedAt           time.Time       `json:"joinDate"`
	TermsAcceptedAt    *time.Time      `json:"termsAcceptedAt,omitempty"`
}

// NewProfile projects account. It returns nil for a nil account.
func NewProfile(account *auth.Account) *Profile {
	if account == nil {
		return nil
	}

	languages := account.AvailableLanguages
	if languages == nil {
		languages = []auth.Language{}
	}

	return &Profile{
		ID:                 account.ID,
		Email:              account.Email,
		Nickname:           account.Nickname,
		ScreenID:           account.ScreenID,
		IsConfirmed:        account.IsConfirmed,
		DisplayLanguage:    account.DisplayLanguage,
		AvailableLanguages: languages,
		Country:            account.Country,
		SNSType:            account.SNSType,
		Profile:            account.Profile,
		Banner:             account.Banner,
		Intro:              account.Intro,
		JoinedAt:           account.JoinedAt,
		TermsAcceptedAt:    account.TermsAcceptedAt,
	}
}

// # Dependency Contracts

// Lifecycle is the part of [auth.Service] the profile layer needs.
type Lifecycle interface {
	FindByID(context context.Context, id string) (*auth.Account, error)
	UpdateUser(context context.Context, id string, patch auth.AccountPatch) (*auth.Account, error)
	DeactivateUser(context context.Context, id string) error
	DeleteUser(context context.Context, id string) error
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/epiclogue/internal/platform/validate"
)

// # Account Policy

const (
	// ScreenIDLength is the number of hex characters kept from the email digest.
	ScreenIDLength = 14

	// NicknameMaxLength bounds nicknames in characters.
	NicknameMaxLength = 30

	// IntroMaxLength bounds the profile introduction in characters.
	IntroMaxLength = 300

	// ConfirmationTokenBytes is the entropy of confirmation and reset tokens.
	ConfirmationTokenBytes = 24
)

// NormalizeEmail trims surrounding space, NFC-normalizes and lowercases email.
//
// The handler applies it before calling the service and the service applies
// it again, so lookups and uniqueness checks never depend on the caller.
func NormalizeEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	return cases.Lower(language.Und).String(norm.NFC.String(trimmed))
}

// ScreenIDFromEmail derives the public screen id: the first 14 hex characters
// of sha256(email). Collisions are possible and accepted.
func ScreenIDFromEmail(email string) string {
	digest := sha256.Sum256([]byte(email))
	return hex.EncodeToString(digest[:])[:ScreenIDLength]
}

// checkPassword enforces the complexity policy for programmatic callers.
func checkPassword(field, password string) error {
	if !validate.IsStrongPassword(password) {
		return validationFailed(field, "Password must be at least 8 characters with a letter, a digit and one of "+validate.PasswordSymbols)
	}
	return nil
}

// checkNickname requires a non-blank nickname within [NicknameMaxLength].
func checkNickname(nickname string) error {
	if strings.TrimSpace(nickname) == "" {
		return validationFailed(FieldNickname, "Nickname is required")
	}
	if utf8.RuneCountInString(nickname) > NicknameMaxLength {
		return validationFailed(FieldNickname, "Nickname is too long")
	}
	return nil
}

// checkPatch validates the fields of a generic profile patch.
func checkPatch(patch AccountPatch) error {
	validator := &validate.Validator{}

	if patch.Nickname != nil {
		validator.Required(FieldNickname, *patch.Nickname).
			MaxLen(FieldNickname, *patch.Nickname, NicknameMaxLength)
	}
	if patch.ScreenID != nil {
		validator.Handle(FieldScreenID, *patch.ScreenID)
	}
	if patch.Intro != nil {
		validator.MaxLen(FieldIntro, *patch.Intro, IntroMaxLength)
	}
	if patch.DisplayLanguage != nil {
		validator.Custom(FieldLanguage, !patch.DisplayLanguage.Valid(), "Unsupported display language")
	}
	if patch.AvailableLanguages != nil {
		for _, available := range *patch.AvailableLanguages {
			if !available.Valid() {
				validator.Custom(FieldAvailableLanguages, true, "Unsupported language in list")
				break
			}
		}
	}
	if patch.Country != nil {
		validator.Range(FieldCountry, *patch.Country, 0, CountryMax)
	}

	return validator.Err()
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Flow Constraints

const (
	// ResetTokenTTL is how long a password reset token stays redeemable.
	ResetTokenTTL = 1 * time.Hour

	// CountryMax is the highest country code (Korea, Japan, US, China, Taiwan).
	CountryMax = 4
)

// # Field Identifiers

// JSON field names shared by validation errors and request payloads. They
// follow the names the web client already sends.
const (
	FieldEmail              = "email"
	FieldPassword           = "userPw"
	FieldPasswordConfirm    = "userPwRe"
	FieldNewPassword        = "userPwNew"
	FieldNewPasswordConfirm = "userPwNewRe"
	FieldNickname           = "userNick"
	FieldLanguage           = "userLang"
	FieldToken              = "token"
	FieldSNSType            = "snsType"
	FieldSNSData            = "snsData"
	FieldScreenID           = "screenId"
	FieldIntro              = "intro"
	FieldAvailableLanguages = "availableLanguages"
	FieldCountry            = "country"
	FieldMessage            = "message"
)

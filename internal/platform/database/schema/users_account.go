// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables, columns and unique constraints the SQL
// stores build their statements from.
package schema

import "strings"

// UserAccountTable represents the 'users.account' table.
type UserAccountTable struct {
	Table string

	ID                 string
	Email              string
	PasswordHash       string
	PasswordSalt       string
	PasswordAlgo       string
	PasswordIterations string
	PasswordKeyLen     string
	Nickname           string
	ScreenID           string
	IsConfirmed        string
	ConfirmToken       string
	DeactivatedAt      string
	DisplayLanguage    string
	AvailableLanguages string
	Country            string
	SNSID              string
	SNSType            string
	ProfileOrigin      string
	ProfileThumbnail   string
	BannerOrigin       string
	BannerThumbnail    string
	Intro              string
	TermsAcceptedAt    string
	JoinedAt           string
	UpdatedAt          string

	// Unique constraints, shared with the Mongo index names.
	EmailKey string
	SNSKey   string
}

// UserAccount is the schema definition for users.account.
var UserAccount = UserAccountTable{
	Table: "users.account",

	ID:                 "id",
	Email:              "email",
	PasswordHash:       "passwordhash",
	PasswordSalt:       "passwordsalt",
	PasswordAlgo:       "passwordalgo",
	PasswordIterations: "passworditerations",
	PasswordKeyLen:     "passwordkeylen",
	Nickname:           "nickname",
	ScreenID:           "screenid",
	IsConfirmed:        "isconfirmed",
	ConfirmToken:       "confirmtoken",
	DeactivatedAt:      "deactivatedat",
	DisplayLanguage:    "displaylanguage",
	AvailableLanguages: "availablelanguages",
	Country:            "country",
	SNSID:              "snsid",
	SNSType:            "snstype",
	ProfileOrigin:      "profileorigin",
	ProfileThumbnail:   "profilethumbnail",
	BannerOrigin:       "bannerorigin",
	BannerThumbnail:    "bannerthumbnail",
	Intro:              "intro",
	TermsAcceptedAt:    "termsacceptedat",
	JoinedAt:           "joinedat",
	UpdatedAt:          "updatedat",

	EmailKey: "account_email_key",
	SNSKey:   "account_sns_key",
}

// Columns returns every column in the order the stores scan them.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email,
		t.PasswordHash, t.PasswordSalt, t.PasswordAlgo, t.PasswordIterations, t.PasswordKeyLen,
		t.Nickname, t.ScreenID, t.IsConfirmed, t.ConfirmToken, t.DeactivatedAt,
		t.DisplayLanguage, t.AvailableLanguages, t.Country,
		t.SNSID, t.SNSType,
		t.ProfileOrigin, t.ProfileThumbnail, t.BannerOrigin, t.BannerThumbnail, t.Intro,
		t.TermsAcceptedAt, t.JoinedAt, t.UpdatedAt,
	}
}

// ColumnList returns [UserAccountTable.Columns] joined for a SELECT or INSERT list.
func (t UserAccountTable) ColumnList() string {
	return strings.Join(t.Columns(), ", ")
}

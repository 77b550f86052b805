// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epiclogue/internal/platform/apperr"
	"github.com/taibuivan/epiclogue/internal/platform/validate"
)

func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"valid_string", "epiclogue", false},
		{"empty_string", "", true},
		{"whitespace_only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("userNick", tt.value)

			if !tt.hasError {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
				return
			}

			ae := apperr.As(v.Err())
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, "userNick", ae.Details[0].Field)
		})
	}
}

func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "a@x.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "a@", false},
		{"display_name_form", "Tay <a@x.com>", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abc12345!", true},
		{"a1$bcdef", true},
		{"Abc1234!", true},
		{"Abc123!", false},     // too short
		{"Abcdefgh!", false},   // no digit
		{"12345678!", false},   // no letter
		{"Abc123456", false},   // no symbol
		{"Abc 12345!", false},  // space is outside the allowed classes
		{"Abc12345^", false},   // symbol outside the fixed set
		{"Äbc12345!", false},   // non-ASCII letter
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.IsStrongPassword(tt.password))

			v := &validate.Validator{}
			v.Password("userPw", tt.password)
			assert.Equal(t, !tt.want, v.HasErrors())
		})
	}
}

func TestValidator_Handle(t *testing.T) {
	v := &validate.Validator{}
	v.Handle("screenId", "1f3870be274f6c")
	assert.False(t, v.HasErrors())

	v.Handle("screenId", "no spaces")
	v.Handle("screenId", "ab")
	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 2)
}

func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("userNick", "").
		Range("userLang", 9, 0, 4).
		Email("email", "not-an-email").
		OneOf("snsType", "myspace", "google", "facebook").
		Custom("userPwRe", true, "Passwords do not match").
		Err()

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 5)
}

func TestValidator_Chain_Success(t *testing.T) {
	err := (&validate.Validator{}).
		Required("userNick", "tay").
		MinLen("userNick", "tay", 1).
		MaxLen("userNick", "tay", 30).
		Email("email", "tay@epiclogue.com").
		Password("userPw", "Abc12345!").
		Err()

	assert.NoError(t, err)
}

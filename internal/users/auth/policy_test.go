// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/epiclogue/internal/platform/apperr"
	"github.com/taibuivan/epiclogue/internal/users/auth"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a@x.com", "a@x.com"},
		{"  Reader@Epiclogue.COM\t", "reader@epiclogue.com"},
		{"é@x.com", "é@x.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.NormalizeEmail(tt.input))
		})
	}
}

func TestScreenIDFromEmail(t *testing.T) {
	id := auth.ScreenIDFromEmail("a@x.com")

	assert.Len(t, id, auth.ScreenIDLength)
	assert.Regexp(t, `^[0-9a-f]+$`, id)
	assert.Equal(t, id, auth.ScreenIDFromEmail("a@x.com"))
	assert.NotEqual(t, id, auth.ScreenIDFromEmail("b@x.com"))
}

func TestLanguage_Valid(t *testing.T) {
	assert.True(t, auth.LanguageKorean.Valid())
	assert.True(t, auth.LanguageChineseTraditional.Valid())
	assert.False(t, auth.Language(-1).Valid())
	assert.False(t, auth.Language(5).Valid())
}

func TestProvider_IsFederated(t *testing.T) {
	for _, provider := range auth.FederatedProviders {
		assert.True(t, provider.IsFederated(), provider)
	}
	assert.False(t, auth.ProviderNormal.IsFederated())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want auth.Kind
	}{
		{"sentinel", auth.ErrTokenMismatch, auth.KindTokenMismatch},
		{"wrapped sentinel", errors.Join(errors.New("context"), auth.ErrUserNotFound), auth.KindUserNotFound},
		{"validation", apperr.ValidationError("bad"), auth.KindValidationFailed},
		{"foreign app error", apperr.Internal(errors.New("boom")), auth.KindInfrastructure},
		{"plain error", errors.New("dial tcp: refused"), auth.KindInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.KindOf(tt.err))
		})
	}
}

func TestSentinelStatuses(t *testing.T) {
	tests := []struct {
		err  *apperr.AppError
		want int
	}{
		{auth.ErrDuplicateEmail, http.StatusConflict},
		{auth.ErrPasswordMismatch, http.StatusBadRequest},
		{auth.ErrUserNotFound, http.StatusNotFound},
		{auth.ErrInvalidCredential, http.StatusUnauthorized},
		{auth.ErrAccountDeactivated, http.StatusForbidden},
		{auth.ErrAlreadyConfirmed, http.StatusConflict},
		{auth.ErrTokenMismatch, http.StatusBadRequest},
		{auth.ErrUnsupportedProvider, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus)
		})
	}
}

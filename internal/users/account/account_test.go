// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/middleware"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
	"github.com/taibuivan/epiclogue/internal/users/account"
	"github.com/taibuivan/epiclogue/internal/users/auth"
)

const password = "Abc12345!"

type fixture struct {
	lifecycle *auth.Service
	tokens    *sec.TokenService
	server    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := sec.NewHasher(sec.HashParams{Iterations: sec.MinIterations, KeyLength: sec.MinKeyLength})
	require.NoError(t, err)
	lifecycle := auth.NewService(auth.NewMemoryAccountStore(), auth.NewMemoryResetTokenStore(), hasher)

	tokens, err := sec.NewHMACTokenService([]byte("account-test-secret"), constants.AuthIssuer, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := account.NewHandler(account.NewService(lifecycle, logger), auth.CookieOptions{})

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Mount("/users", handler.Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{lifecycle: lifecycle, tokens: tokens, server: server}
}

// register creates an account, optionally confirms it, and returns a bearer token.
func (f *fixture) register(t *testing.T, email string, confirm bool) (*auth.Account, string) {
	t.Helper()

	created, err := f.lifecycle.CreateUser(context.Background(), auth.CreateUserInput{
		Email: email, Password: password, PasswordConfirm: password, Nickname: "reader",
	})
	require.NoError(t, err)

	if confirm {
		require.NoError(t, f.lifecycle.ConfirmUser(context.Background(), email, *created.ConfirmationToken))
	}

	token, _, err := f.tokens.Issue(sec.SessionSubject{
		ID: created.ID, Nickname: created.Nickname, ScreenID: created.ScreenID, IsConfirmed: confirm,
	})
	require.NoError(t, err)

	return created, token
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()

	request, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	response, err := f.server.Client().Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

func decodeRaw(t *testing.T, response *http.Response) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&envelope))
	return envelope.Data
}

func TestGetMe_HidesCredentialMaterial(t *testing.T) {
	f := newFixture(t)
	created, token := f.register(t, "a@x.com", true)

	response := f.do(t, http.MethodGet, "/users/me", token, "")
	require.Equal(t, http.StatusOK, response.StatusCode)

	data := decodeRaw(t, response)
	assert.Equal(t, created.ID, data["id"])
	assert.Equal(t, "reader", data["nick"])
	assert.Equal(t, true, data["isConfirmed"])

	for _, hidden := range []string{"credential", "confirmationToken", "confirmToken", "deactivatedAt", "salt", "hash"} {
		assert.NotContains(t, data, hidden)
	}
}

func TestGetMe_Guards(t *testing.T) {
	f := newFixture(t)
	_, unconfirmed := f.register(t, "a@x.com", false)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/users/me", "", "").StatusCode)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/users/me", unconfirmed, "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/users/me", "not-a-jwt", "").StatusCode)
}

func TestUpdateMe(t *testing.T) {
	f := newFixture(t)
	created, token := f.register(t, "a@x.com", true)

	response := f.do(t, http.MethodPatch, "/users/me", token,
		`{"userNick":"renamed","intro":"hello","userLang":2,"availableLanguages":[0,2],"country":1,"acceptTerms":true}`)
	require.Equal(t, http.StatusOK, response.StatusCode)

	data := decodeRaw(t, response)
	assert.Equal(t, "renamed", data["nick"])
	assert.Equal(t, "hello", data["intro"])
	assert.EqualValues(t, 2, data["displayLanguage"])
	assert.NotEmpty(t, data["termsAcceptedAt"])

	stored, err := f.lifecycle.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []auth.Language{auth.LanguageKorean, auth.LanguageEnglish}, stored.AvailableLanguages)
	assert.Equal(t, created.Credential, stored.Credential)
	assert.Equal(t, "a@x.com", stored.Email)
}

func TestUpdateMe_Failures(t *testing.T) {
	f := newFixture(t)
	_, token := f.register(t, "a@x.com", true)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"blank nickname", `{"userNick":""}`, http.StatusBadRequest},
		{"language out of range", `{"userLang":9}`, http.StatusBadRequest},
		{"malformed json", `{"userNick":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.do(t, http.MethodPatch, "/users/me", token, tt.body).StatusCode)
		})
	}
}

func TestDeactivateMe(t *testing.T) {
	f := newFixture(t)
	created, token := f.register(t, "a@x.com", false)

	response := f.do(t, http.MethodPost, "/users/me/deactivate", token, "")
	require.Equal(t, http.StatusNoContent, response.StatusCode)
	assert.Contains(t, response.Header.Get("Set-Cookie"), constants.AccessTokenCookieName+"=;")

	stored, err := f.lifecycle.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeactivated())

	_, err = f.lifecycle.Login(context.Background(), "a@x.com", password)
	assert.Equal(t, auth.KindAccountDeactivated, auth.KindOf(err))
}

func TestDeleteMe(t *testing.T) {
	f := newFixture(t)
	created, token := f.register(t, "a@x.com", true)

	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/users/me", token, "").StatusCode)

	_, err := f.lifecycle.FindByID(context.Background(), created.ID)
	assert.Equal(t, auth.KindUserNotFound, auth.KindOf(err))

	response := f.do(t, http.MethodDelete, "/users/me", token, "")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

func TestNewProfile(t *testing.T) {
	assert.Nil(t, account.NewProfile(nil))

	profile := account.NewProfile(&auth.Account{ID: "1", Nickname: "n"})
	require.NotNil(t, profile)
	assert.Equal(t, []auth.Language{}, profile.AvailableLanguages)
}

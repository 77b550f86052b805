// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/epiclogue/internal/platform/apperr"
	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/ctxutil"
	"github.com/taibuivan/epiclogue/internal/platform/respond"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
)

// TokenVerifier verifies session tokens. It is satisfied by [*sec.TokenService].
type TokenVerifier interface {
	Verify(tokenString string) (*sec.AuthClaims, error)
}

// Authenticate resolves the caller's session and injects its claims.
//
// # Flow
//  1. An 'Authorization: Bearer <token>' header wins. A malformed header or
//     a token that fails verification is rejected with 401.
//  2. Otherwise the access_token cookie is tried. A cookie that fails
//     verification is ignored so a stale browser session cannot block the
//     public login and join routes.
//  3. Without either the request proceeds as anonymous.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			context := request.Context()
			logger := ctxutil.GetLogger(context)

			var claims *sec.AuthClaims

			if authHeader := request.Header.Get(constants.HeaderAuthorization); authHeader != "" {
				scheme, token, found := strings.Cut(authHeader, " ")
				if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}

				verified, err := verifier.Verify(token)
				if err != nil {
					respond.Error(writer, request, sessionError(err))
					return
				}
				claims = verified

			} else if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
				verified, err := verifier.Verify(cookie.Value)
				if err != nil {
					logger.DebugContext(context, "session_cookie_ignored", slog.String("error", err.Error()))
				} else {
					claims = verified
				}
			}

			if claims == nil {
				next.ServeHTTP(writer, request)
				return
			}

			context = ctxutil.WithAuthUser(context, claims)
			context = ctxutil.WithLogger(context, logger.With(slog.String("user_id", claims.UserID())))
			next.ServeHTTP(writer, request.WithContext(context))
		})
	}
}

// sessionError maps a verification failure to the 401 reported to clients.
func sessionError(err error) *apperr.AppError {
	if errors.Is(err, sec.ErrTokenExpired) {
		return apperr.Unauthorized("Session expired")
	}
	return apperr.Unauthorized("Invalid session token")
}

// RequireAuth blocks anonymous requests. Mount it after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireConfirmed blocks sessions of accounts that have not confirmed their
// email address. It implies [RequireAuth].
func RequireConfirmed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		if !claims.IsConfirmed {
			respond.Error(writer, request, apperr.Forbidden("Email confirmation required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

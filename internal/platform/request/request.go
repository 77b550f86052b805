// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil extracts data from HTTP requests.

It hides the router's parameter API and the body decoding pattern so every
handler reports malformed input the same way.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/epiclogue/internal/platform/apperr"
	"github.com/taibuivan/epiclogue/internal/platform/ctxutil"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
	"github.com/taibuivan/epiclogue/internal/platform/validate"
)

// maxBodyBytes bounds decoded request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into target.

Parameters:
  - request: *http.Request
  - target: any (pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Query retrieves a single query string value.
func Query(request *http.Request, name string) string {
	return request.URL.Query().Get(name)
}

// Claims returns the session claims, or nil for anonymous requests.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns its claims.

Returns:
  - *sec.AuthClaims: the verified session claims
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUserID returns the account id of the authenticated caller.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID(), nil
}

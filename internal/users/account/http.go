// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/epiclogue/internal/platform/middleware"
	requestutil "github.com/taibuivan/epiclogue/internal/platform/request"
	"github.com/taibuivan/epiclogue/internal/platform/respond"
	"github.com/taibuivan/epiclogue/internal/users/auth"
	"github.com/taibuivan/epiclogue/pkg/pointer"
)

// Handler implements the /users endpoints.
type Handler struct {
	accountService *Service
	cookies        auth.CookieOptions
	now            func() time.Time
}

// NewHandler constructs an account [Handler]. cookies must match the options
// the auth handler sets the session cookie with.
func NewHandler(service *Service, cookies auth.CookieOptions) *Handler {
	return &Handler{accountService: service, cookies: cookies, now: time.Now}
}

// Routes returns a [chi.Router] with the profile endpoints.
//
// # Endpoints
//   - GET    /me            : Own profile (confirmed sessions only).
//   - PATCH  /me            : Partial profile update (confirmed sessions only).
//   - POST   /me/deactivate : Deactivates the account and ends the session.
//   - DELETE /me            : Deletes the account and ends the session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(confirmed chi.Router) {
		confirmed.Use(middleware.RequireConfirmed)
		confirmed.Get("/me", handler.getMe)
		confirmed.Patch("/me", handler.updateMe)
	})

	// Leaving must not depend on having confirmed the email.
	router.Group(func(authenticated chi.Router) {
		authenticated.Use(middleware.RequireAuth)
		authenticated.Post("/me/deactivate", handler.deactivateMe)
		authenticated.Delete("/me", handler.deleteMe)
	})

	return router
}

// # Profile Endpoints

/*
GET /api/v1/users/me.

Response:
  - 200: Profile
  - 401: Authentication required
  - 403: Email confirmation required
  - 404: USER_NOT_FOUND (account deleted while the session was alive)
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// updateMeRequest is the partial profile payload. Absent fields are kept.
type updateMeRequest struct {
	Nickname           *string     `json:"userNick"`
	ScreenID           *string     `json:"screenId"`
	Intro              *string     `json:"intro"`
	Profile            *auth.Image `json:"profile"`
	Banner             *auth.Image `json:"banner"`
	DisplayLanguage    *int        `json:"userLang"`
	AvailableLanguages []int       `json:"availableLanguages"`
	Country            *int        `json:"country"`
	AcceptTerms        bool        `json:"acceptTerms"`
}

func (input updateMeRequest) patch(now time.Time) auth.AccountPatch {
	patch := auth.AccountPatch{
		Nickname: input.Nickname,
		ScreenID: input.ScreenID,
		Intro:    input.Intro,
		Profile:  input.Profile,
		Banner:   input.Banner,
		Country:  input.Country,
	}

	if input.DisplayLanguage != nil {
		patch.DisplayLanguage = pointer.To(auth.Language(*input.DisplayLanguage))
	}

	if input.AvailableLanguages != nil {
		languages := make([]auth.Language, 0, len(input.AvailableLanguages))
		for _, language := range input.AvailableLanguages {
			languages = append(languages, auth.Language(language))
		}
		patch.AvailableLanguages = pointer.To(languages)
	}

	if input.AcceptTerms {
		patch.TermsAcceptedAt = pointer.To(now)
	}

	return patch
}

/*
PATCH /api/v1/users/me.

Description: Field rules (nickname length, screen id shape, language and
country ranges) are enforced by the lifecycle engine.

Request:
  - Body: updateMeRequest

Response:
  - 200: Profile
  - 400: VALIDATION_ERROR
  - 401/403: Session missing or unconfirmed
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), userID, input.patch(handler.now()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// # Account State Endpoints

/*
POST /api/v1/users/me/deactivate.

Response:
  - 204: Deactivated, session cookie cleared
  - 401: Authentication required
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) deactivateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Deactivate(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	auth.ClearSessionCookie(writer, handler.cookies)
	respond.NoContent(writer)
}

/*
DELETE /api/v1/users/me.

Response:
  - 204: Deleted, session cookie cleared
  - 401: Authentication required
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Delete(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	auth.ClearSessionCookie(writer, handler.cookies)
	respond.NoContent(writer)
}

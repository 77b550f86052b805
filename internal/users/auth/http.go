// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/ctxutil"
	"github.com/taibuivan/epiclogue/internal/platform/metrics"
	requestutil "github.com/taibuivan/epiclogue/internal/platform/request"
	"github.com/taibuivan/epiclogue/internal/platform/respond"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
	"github.com/taibuivan/epiclogue/internal/platform/validate"
	"github.com/taibuivan/epiclogue/internal/users/mail"
	"github.com/taibuivan/epiclogue/pkg/pointer"
)

// # Definitions & Constructors

// SessionIssuer signs session tokens. Implemented by [sec.TokenService].
type SessionIssuer interface {
	Issue(subject sec.SessionSubject) (string, time.Time, error)
}

// CookieOptions scope the access_token cookie.
type CookieOptions struct {
	Domain string
	Secure bool
}

// Handler implements the /auth endpoints.
//
// Mails are dispatched only after the service call succeeded. A dispatch
// failure is logged and never changes the response.
type Handler struct {
	service  *Service
	sessions SessionIssuer
	mailer   mail.Dispatcher
	metrics  *metrics.Metrics
	cookies  CookieOptions
}

// NewHandler constructs a [Handler]. recorder may be nil.
func NewHandler(service *Service, sessions SessionIssuer, mailer mail.Dispatcher, recorder *metrics.Metrics, cookies CookieOptions) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		mailer:   mailer,
		metrics:  recorder,
		cookies:  cookies,
	}
}

// Routes returns a [chi.Router] with the authentication routes.
//
// # Endpoints
//   - POST  /join       : Registers a password account and mails the confirmation link.
//   - POST  /login      : Password login; sets the access_token cookie.
//   - POST  /logout     : Clears the access_token cookie.
//   - POST  /sns-login  : Federated login or first-time registration.
//   - POST  /find-pass  : Mails a password reset link.
//   - PATCH /find-pass  : Redeems the reset token with a new password.
//   - GET   /mail-auth  : Confirms the email address.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/join", handler.join)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/sns-login", handler.snsLogin)
	router.Post("/find-pass", handler.requestPasswordReset)
	router.Patch("/find-pass", handler.resetPassword)
	router.Get("/mail-auth", handler.confirmEmail)

	return router
}

// # Request Payloads

type joinRequest struct {
	Email    string `json:"email"`
	Password string `json:"userPw"`
	Confirm  string `json:"userPwRe"`
	Nickname string `json:"userNick"`
	Language *int   `json:"userLang"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"userPw"`
}

type snsLoginRequest struct {
	SNSType  string          `json:"snsType"`
	SNSData  json.RawMessage `json:"snsData"`
	Language *int            `json:"userLang"`
}

type findPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"userPwNew"`
	Confirm     string `json:"userPwNewRe"`
}

// # Response Payloads

// SessionResponse is returned by both login routes.
type SessionResponse struct {
	Nickname        string `json:"nick"`
	ScreenID        string `json:"screenId"`
	DisplayLanguage int    `json:"displayLanguage"`
	AccessToken     string `json:"accessToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// # Registration

/*
Join registers a password account.

POST /api/v1/auth/join

Request:
  - Body: joinRequest (email, userPw, userPwRe, userNick, userLang)

Response:
  - 201: {message: "Mail sent"}
  - 400: VALIDATION_ERROR or PASSWORD_MISMATCH
  - 409: DUPLICATE_EMAIL
*/
func (handler *Handler) join(writer http.ResponseWriter, request *http.Request) {
	var input joinRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	email := NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		Required(FieldPasswordConfirm, input.Confirm).
		Required(FieldNickname, input.Nickname).
		Custom(FieldLanguage, input.Language == nil, "is required")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.CreateUser(request.Context(), CreateUserInput{
		Email:           email,
		Password:        input.Password,
		PasswordConfirm: input.Confirm,
		Nickname:        input.Nickname,
		Language:        Language(*input.Language),
	})
	handler.record("join", err)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	logger := ctxutil.GetLogger(request.Context())
	logger.Info("account_created", slog.String("user_id", account.ID))

	if err := handler.mailer.SendConfirmation(request.Context(), account.Email, pointer.Val(account.ConfirmationToken)); err != nil {
		logger.Error("mail_dispatch_failed", slog.String("kind", "confirmation"), slog.Any("error", err))
	}

	respond.Created(writer, messageResponse{Message: "Mail sent"})
}

// # Sessions

/*
Login authenticates with email and password.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (email, userPw)

Response:
  - 200: SessionResponse, access_token cookie set
  - 401: INVALID_CREDENTIAL
  - 403: ACCOUNT_DEACTIVATED
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	email := NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.Login(request.Context(), email, input.Password)
	handler.record("login", err)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.startSession(writer, request, account)
}

// Logout clears the session cookie. Tokens are stateless, so nothing else
// is revoked.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	ClearSessionCookie(writer, handler.cookies)
	respond.NoContent(writer)
}

/*
SNSLogin signs in with a provider profile.

POST /api/v1/auth/sns-login

Description: The provider payload is normalized here; the service only sees
an [SNSProfile]. First-time identities are registered and confirmed.

Request:
  - Body: snsLoginRequest (snsType, snsData, userLang)

Response:
  - 200: SessionResponse, access_token cookie set
  - 400: UNSUPPORTED_PROVIDER or VALIDATION_ERROR
  - 403: ACCOUNT_DEACTIVATED
  - 409: DUPLICATE_EMAIL
*/
func (handler *Handler) snsLogin(writer http.ResponseWriter, request *http.Request) {
	var input snsLoginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	profile, err := NormalizeSNSProfile(input.SNSType, input.SNSData)
	if err != nil {
		handler.record("sns_login", err)
		respond.Error(writer, request, err)
		return
	}

	language := LanguageKorean
	if input.Language != nil {
		language = Language(*input.Language)
	}

	account, err := handler.service.SNSLogin(request.Context(), profile, language)
	handler.record("sns_login", err)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.startSession(writer, request, account)
}

// startSession issues a token for account, sets the cookie and writes the
// session response.
func (handler *Handler) startSession(writer http.ResponseWriter, request *http.Request, account *Account) {
	token, expiresAt, err := handler.sessions.Issue(sec.SessionSubject{
		ID:          account.ID,
		Nickname:    account.Nickname,
		ScreenID:    account.ScreenID,
		IsConfirmed: account.IsConfirmed,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    token,
		Path:     constants.AccessTokenCookiePath,
		Domain:   handler.cookies.Domain,
		Expires:  expiresAt,
		Secure:   handler.cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respond.OK(writer, SessionResponse{
		Nickname:        account.Nickname,
		ScreenID:        account.ScreenID,
		DisplayLanguage: int(account.DisplayLanguage),
		AccessToken:     token,
	})
}

// ClearSessionCookie expires the access_token cookie on the client.
func ClearSessionCookie(writer http.ResponseWriter, cookies CookieOptions) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    "",
		Path:     constants.AccessTokenCookiePath,
		Domain:   cookies.Domain,
		MaxAge:   -1,
		Secure:   cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// # Password Recovery

/*
RequestPasswordReset mails a reset link.

POST /api/v1/auth/find-pass

Request:
  - Body: findPasswordRequest (email)

Response:
  - 200: {message}
  - 400: VALIDATION_ERROR or UNSUPPORTED_PROVIDER (SNS account)
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input findPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	email := NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.service.RequestPasswordReset(request.Context(), email)
	handler.record("request_password_reset", err)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.mailer.SendPasswordReset(request.Context(), email, token); err != nil {
		ctxutil.GetLogger(request.Context()).Error("mail_dispatch_failed",
			slog.String("kind", "password_reset"), slog.Any("error", err))
	}

	respond.OK(writer, messageResponse{Message: "Find account mail sent"})
}

/*
ResetPassword redeems a reset token.

PATCH /api/v1/auth/find-pass

Request:
  - Body: resetPasswordRequest (email, token, userPwNew, userPwNewRe)

Response:
  - 200: {message: "Password changed"}
  - 400: PASSWORD_MISMATCH, TOKEN_MISMATCH, VALIDATION_ERROR or UNSUPPORTED_PROVIDER (SNS account)
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldToken, input.Token).
		Required(FieldNewPassword, input.NewPassword).
		Required(FieldNewPasswordConfirm, input.Confirm)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.service.ResetPassword(request.Context(), ResetPasswordInput{
		Email:           input.Email,
		Token:           input.Token,
		Password:        input.NewPassword,
		PasswordConfirm: input.Confirm,
	})
	handler.record("reset_password", err)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Password changed"})
}

// # Email Confirmation

/*
ConfirmEmail redeems the confirmation link.

GET /api/v1/auth/mail-auth?email=&token=

Response:
  - 200: {message: "Email confirmed"}
  - 400: TOKEN_MISMATCH
  - 404: USER_NOT_FOUND
  - 409: ALREADY_CONFIRMED
*/
func (handler *Handler) confirmEmail(writer http.ResponseWriter, request *http.Request) {
	email := requestutil.Query(request, FieldEmail)
	token := requestutil.Query(request, FieldToken)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Required(FieldToken, token)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.service.ConfirmUser(request.Context(), email, token)
	handler.record("confirm", err)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Email confirmed"})
}

// record counts the outcome of one operation by its error kind.
func (handler *Handler) record(operation string, err error) {
	result := metrics.OutcomeSuccess
	if err != nil {
		result = string(KindOf(err))
	}
	handler.metrics.RecordAuth(operation, result)
}

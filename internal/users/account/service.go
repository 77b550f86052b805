// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"

	"github.com/taibuivan/epiclogue/internal/users/auth"
)

// # Service Layer

// Service exposes the signed-in user's profile operations.
//
// Errors from the lifecycle engine are returned unchanged so their kinds
// reach the HTTP layer intact.
type Service struct {
	lifecycle Lifecycle
	logger    *slog.Logger
}

// NewService constructs a [Service] over the lifecycle engine.
func NewService(lifecycle Lifecycle, logger *slog.Logger) *Service {
	return &Service{lifecycle: lifecycle, logger: logger}
}

// # Profile Management

/*
GetProfile returns the projected profile of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: Projection without credential material
  - error: UserNotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	account, err := service.lifecycle.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return NewProfile(account), nil
}

/*
UpdateProfile applies a partial profile patch.

Parameters:
  - context: context.Context
  - userID: string
  - patch: auth.AccountPatch

Returns:
  - *Profile: The updated projection
  - error: UserNotFound, ValidationFailed or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, patch auth.AccountPatch) (*Profile, error) {
	account, err := service.lifecycle.UpdateUser(context, userID, patch)
	if err != nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		service.logger.Info("user_profile_updated", slog.String("user_id", userID))
	}

	return NewProfile(account), nil
}

// Deactivate marks the user's account as deactivated.
func (service *Service) Deactivate(context context.Context, userID string) error {
	if err := service.lifecycle.DeactivateUser(context, userID); err != nil {
		return err
	}

	service.logger.Warn("user_account_deactivated", slog.String("user_id", userID))
	return nil
}

// Delete removes the user's account permanently.
func (service *Service) Delete(context context.Context, userID string) error {
	if err := service.lifecycle.DeleteUser(context, userID); err != nil {
		return err
	}

	service.logger.Warn("user_account_deleted", slog.String("user_id", userID))
	return nil
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epiclogue/internal/platform/database/schema"
	"github.com/taibuivan/epiclogue/internal/platform/dberr"
	"github.com/taibuivan/epiclogue/internal/users/auth"
	"github.com/taibuivan/epiclogue/pkg/pointer"
)

func storedAccount(id, email string, joined time.Time) *auth.Account {
	return &auth.Account{
		ID:       id,
		Email:    email,
		Nickname: "n",
		SNSType:  auth.ProviderNormal,
		JoinedAt: joined,
	}
}

func TestMemoryAccountStore_UniqueIndexes(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryAccountStore()

	snsID := "k-1"
	federated := storedAccount("1", "a@x.com", fixedNow)
	federated.SNSID, federated.SNSType = &snsID, auth.ProviderKakao
	require.NoError(t, store.Create(ctx, federated))

	err := store.Create(ctx, storedAccount("2", "a@x.com", fixedNow))
	assert.True(t, dberr.IsDuplicateOf(err, schema.UserAccount.EmailKey))

	sameIdentity := storedAccount("3", "b@x.com", fixedNow)
	sameIdentity.SNSID, sameIdentity.SNSType = pointer.To("k-1"), auth.ProviderKakao
	err = store.Create(ctx, sameIdentity)
	assert.True(t, dberr.IsDuplicateOf(err, schema.UserAccount.SNSKey))
	assert.ErrorIs(t, err, dberr.ErrDuplicate)

	otherProvider := storedAccount("4", "c@x.com", fixedNow)
	otherProvider.SNSID, otherProvider.SNSType = pointer.To("k-1"), auth.ProviderNaver
	assert.NoError(t, store.Create(ctx, otherProvider))

	found, err := store.FindBySNSID(ctx, "k-1", auth.ProviderNaver)
	require.NoError(t, err)
	assert.Equal(t, "4", found.ID)
}

func TestMemoryAccountStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryAccountStore()

	original := storedAccount("1", "a@x.com", fixedNow)
	original.AvailableLanguages = []auth.Language{auth.LanguageKorean}
	require.NoError(t, store.Create(ctx, original))

	original.Nickname = "mutated"
	original.AvailableLanguages[0] = auth.LanguageEnglish

	found, err := store.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "n", found.Nickname)
	assert.Equal(t, []auth.Language{auth.LanguageKorean}, found.AvailableLanguages)

	found.Nickname = "again"
	reread, err := store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "n", reread.Nickname)
}

func TestMemoryAccountStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryAccountStore()
	token := "confirm-me"

	account := storedAccount("1", "a@x.com", fixedNow)
	account.ConfirmationToken = &token
	require.NoError(t, store.Create(ctx, account))

	later := fixedNow.Add(time.Minute)
	updated, err := store.Update(ctx, "1", auth.Changes{
		AccountPatch: auth.AccountPatch{Intro: pointer.To("hi")},
		Confirm:      true,
		UpdatedAt:    later,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsConfirmed)
	assert.Nil(t, updated.ConfirmationToken)
	assert.Equal(t, "hi", updated.Intro)
	assert.Equal(t, later, updated.UpdatedAt)

	_, err = store.Update(ctx, "missing", auth.Changes{UpdatedAt: later})
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "1"))
	assert.ErrorIs(t, store.Delete(ctx, "1"), dberr.ErrNotFound)
	_, err = store.FindByID(ctx, "1")
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

func TestMemoryAccountStore_ListAllOrder(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryAccountStore()

	require.NoError(t, store.Create(ctx, storedAccount("c", "c@x.com", fixedNow.Add(time.Hour))))
	require.NoError(t, store.Create(ctx, storedAccount("b", "b@x.com", fixedNow)))
	require.NoError(t, store.Create(ctx, storedAccount("a", "a@x.com", fixedNow)))

	accounts, err := store.ListAll(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestMemoryResetTokenStore(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryResetTokenStore()

	_, err := store.Consume(ctx, testEmail)
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	require.NoError(t, store.Save(ctx, testEmail, "tok", time.Hour))
	token, err := store.Consume(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = store.Consume(ctx, testEmail)
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	require.NoError(t, store.Save(ctx, testEmail, "expired", -time.Second))
	_, err = store.Consume(ctx, testEmail)
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

func TestChanges_ApplyLeavesUnsetFields(t *testing.T) {
	account := storedAccount("1", "a@x.com", fixedNow)
	account.Intro = "keep"

	auth.Changes{AccountPatch: auth.AccountPatch{Nickname: pointer.To("new")}, UpdatedAt: fixedNow}.Apply(account)

	assert.Equal(t, "new", account.Nickname)
	assert.Equal(t, "keep", account.Intro)
	assert.Equal(t, "a@x.com", account.Email)
	assert.True(t, auth.AccountPatch{}.IsEmpty())
	assert.False(t, auth.AccountPatch{Intro: pointer.To("")}.IsEmpty())
}

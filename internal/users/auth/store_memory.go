// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/epiclogue/internal/platform/database/schema"
	"github.com/taibuivan/epiclogue/internal/platform/dberr"
	"github.com/taibuivan/epiclogue/pkg/pointer"
)

// # In-Memory Account Store

// MemoryAccountStore keeps accounts in process memory (STORAGE_DRIVER=memory).
//
// It enforces the same unique indexes as the database stores and hands out
// copies, so callers cannot mutate stored state. Contents are lost on exit.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryAccountStore creates an empty store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]*Account)}
}

func (store *MemoryAccountStore) FindByID(_ context.Context, id string) (*Account, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	account, found := store.accounts[id]
	if !found {
		return nil, dberr.Wrap(dberr.ErrNotFound, "memory_account_find_by_id")
	}
	return account.Clone(), nil
}

func (store *MemoryAccountStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	return store.findFirst("memory_account_find_by_email", func(account *Account) bool {
		return account.Email == email
	})
}

func (store *MemoryAccountStore) FindBySNSID(_ context.Context, snsID string, provider Provider) (*Account, error) {
	return store.findFirst("memory_account_find_by_sns_id", func(account *Account) bool {
		return account.SNSID != nil && pointer.Val(account.SNSID) == snsID && account.SNSType == provider
	})
}

func (store *MemoryAccountStore) Create(_ context.Context, account *Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.checkUnique(account); err != nil {
		return err
	}

	store.accounts[account.ID] = account.Clone()
	return nil
}

func (store *MemoryAccountStore) Update(_ context.Context, id string, changes Changes) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	current, found := store.accounts[id]
	if !found {
		return nil, dberr.Wrap(dberr.ErrNotFound, "memory_account_update")
	}

	updated := current.Clone()
	changes.Apply(updated)
	store.accounts[id] = updated

	return updated.Clone(), nil
}

func (store *MemoryAccountStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, found := store.accounts[id]; !found {
		return dberr.Wrap(dberr.ErrNotFound, "memory_account_delete")
	}
	delete(store.accounts, id)
	return nil
}

func (store *MemoryAccountStore) ListAll(_ context.Context) ([]*Account, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	accounts := make([]*Account, 0, len(store.accounts))
	for _, account := range store.accounts {
		accounts = append(accounts, account.Clone())
	}

	slices.SortFunc(accounts, func(a, b *Account) int {
		if order := a.JoinedAt.Compare(b.JoinedAt); order != 0 {
			return order
		}
		return strings.Compare(a.ID, b.ID)
	})

	return accounts, nil
}

func (store *MemoryAccountStore) findFirst(action string, match func(*Account) bool) (*Account, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	for _, account := range store.accounts {
		if match(account) {
			return account.Clone(), nil
		}
	}
	return nil, dberr.Wrap(dberr.ErrNotFound, action)
}

// checkUnique mirrors the email and (snsid, snstype) unique indexes.
func (store *MemoryAccountStore) checkUnique(candidate *Account) error {
	for _, existing := range store.accounts {
		if existing.Email == candidate.Email {
			return &dberr.DuplicateError{Constraint: schema.UserAccount.EmailKey}
		}
		if candidate.SNSID != nil && existing.SNSID != nil &&
			*existing.SNSID == *candidate.SNSID && existing.SNSType == candidate.SNSType {
			return &dberr.DuplicateError{Constraint: schema.UserAccount.SNSKey}
		}
	}
	return nil
}

// # In-Memory Reset Token Store

type memoryResetToken struct {
	token     string
	expiresAt time.Time
}

// MemoryResetTokenStore keeps reset tokens in process memory for tests and
// single-process embedding. The API process always uses [RedisResetTokenStore].
type MemoryResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryResetToken
	now    func() time.Time
}

// NewMemoryResetTokenStore creates an empty store.
func NewMemoryResetTokenStore() *MemoryResetTokenStore {
	return &MemoryResetTokenStore{tokens: make(map[string]memoryResetToken), now: time.Now}
}

func (store *MemoryResetTokenStore) Save(_ context.Context, email, token string, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.tokens[email] = memoryResetToken{token: token, expiresAt: store.now().Add(ttl)}
	return nil
}

func (store *MemoryResetTokenStore) Consume(_ context.Context, email string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, found := store.tokens[email]
	delete(store.tokens, email)
	if !found || !store.now().Before(entry.expiresAt) {
		return "", dberr.Wrap(dberr.ErrNotFound, "memory_reset_token_consume")
	}
	return entry.token, nil
}

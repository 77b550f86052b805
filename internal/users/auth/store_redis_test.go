// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/dberr"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
	"github.com/taibuivan/epiclogue/internal/users/auth"
)

func newRedisStore(t *testing.T) (*auth.RedisResetTokenStore, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewRedisResetTokenStore(client), server
}

func TestRedisResetTokenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and consume", func(t *testing.T) {
		store, server := newRedisStore(t)

		require.NoError(t, store.Save(ctx, testEmail, "tok-1", time.Hour))
		assert.True(t, server.Exists(constants.RedisPrefixResetToken+testEmail))
		assert.Equal(t, time.Hour, server.TTL(constants.RedisPrefixResetToken+testEmail))

		token, err := store.Consume(ctx, testEmail)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
		assert.False(t, server.Exists(constants.RedisPrefixResetToken+testEmail))

		_, err = store.Consume(ctx, testEmail)
		assert.ErrorIs(t, err, dberr.ErrNotFound)
	})

	t.Run("save replaces the pending token", func(t *testing.T) {
		store, _ := newRedisStore(t)

		require.NoError(t, store.Save(ctx, testEmail, "tok-1", time.Hour))
		require.NoError(t, store.Save(ctx, testEmail, "tok-2", time.Hour))

		token, err := store.Consume(ctx, testEmail)
		require.NoError(t, err)
		assert.Equal(t, "tok-2", token)
	})

	t.Run("expired token is not found", func(t *testing.T) {
		store, server := newRedisStore(t)

		require.NoError(t, store.Save(ctx, testEmail, "tok-1", time.Minute))
		server.FastForward(2 * time.Minute)

		_, err := store.Consume(ctx, testEmail)
		assert.ErrorIs(t, err, dberr.ErrNotFound)
	})

	t.Run("concurrent consumers share one token", func(t *testing.T) {
		store, _ := newRedisStore(t)
		require.NoError(t, store.Save(ctx, testEmail, "tok-1", time.Hour))

		const consumers = 8
		var (
			wg      sync.WaitGroup
			winners atomic.Int32
		)
		for range consumers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if token, err := store.Consume(ctx, testEmail); err == nil && token == "tok-1" {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), winners.Load())
	})

	t.Run("connection failure is not a miss", func(t *testing.T) {
		store, server := newRedisStore(t)
		server.Close()

		_, err := store.Consume(ctx, testEmail)
		require.Error(t, err)
		assert.NotErrorIs(t, err, dberr.ErrNotFound)
	})
}

func TestService_PasswordResetOnRedis(t *testing.T) {
	store, server := newRedisStore(t)
	service := auth.NewService(auth.NewMemoryAccountStore(), store, newHasher(t, sec.MinIterations))

	_, err := service.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	token, err := service.RequestPasswordReset(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, auth.ResetTokenTTL, server.TTL(constants.RedisPrefixResetToken+testEmail))

	server.FastForward(auth.ResetTokenTTL + time.Second)

	err = service.ResetPassword(context.Background(), auth.ResetPasswordInput{
		Email: testEmail, Token: token, Password: "Reset2026!", PasswordConfirm: "Reset2026!",
	})
	assertKind(t, err, auth.KindTokenMismatch)
}

func TestService_ConcurrentResetRedeemsOnce(t *testing.T) {
	store, _ := newRedisStore(t)
	service := auth.NewService(auth.NewMemoryAccountStore(), store, newHasher(t, sec.MinIterations))

	_, err := service.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	token, err := service.RequestPasswordReset(context.Background(), testEmail)
	require.NoError(t, err)

	passwords := []string{"Reset2026!", "Other2026!", "Third2026!", "Fourth2026!"}
	results := make([]error, len(passwords))

	var wg sync.WaitGroup
	for i, password := range passwords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = service.ResetPassword(context.Background(), auth.ResetPasswordInput{
				Email: testEmail, Token: token, Password: password, PasswordConfirm: password,
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assertKind(t, err, auth.KindTokenMismatch)
	}
	assert.Equal(t, 1, succeeded)
}

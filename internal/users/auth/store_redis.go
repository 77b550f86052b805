// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/dberr"
)

// # Reset Token Store

// RedisResetTokenStore implements [ResetTokenStore] with expiring Redis keys.
type RedisResetTokenStore struct {
	client redis.UniversalClient
}

// NewRedisResetTokenStore creates a Redis-backed [ResetTokenStore].
func NewRedisResetTokenStore(client redis.UniversalClient) *RedisResetTokenStore {
	return &RedisResetTokenStore{client: client}
}

func resetTokenKey(email string) string {
	return constants.RedisPrefixResetToken + email
}

/*
Save stores token under the email key with a TTL, replacing any pending token.

Parameters:
  - context: context.Context
  - email: string
  - token: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (store *RedisResetTokenStore) Save(context context.Context, email, token string, ttl time.Duration) error {
	if err := store.client.Set(context, resetTokenKey(email), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_save_failed: %w", err)
	}
	return nil
}

/*
Consume takes the pending token of email with GETDEL, so concurrent
redemptions cannot both observe it.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Pending token
  - error: dberr.ErrNotFound when absent or expired, or connectivity errors
*/
func (store *RedisResetTokenStore) Consume(context context.Context, email string) (string, error) {
	token, err := store.client.GetDel(context, resetTokenKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", dberr.Wrap(dberr.ErrNotFound, "redis_reset_token_consume")
	}
	if err != nil {
		return "", fmt.Errorf("redis_reset_token_consume_failed: %w", err)
	}
	return token, nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"postdeck/config"
	"postdeck/internal/domain/entity"
	"postdeck/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultSummaryTTL = 5 * time.Minute

// accountCache implements service.AccountCache on top of redis.
// Cached entries never include the password hash; credential checks always
// read the database row.
type accountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// cachedAccount is the redis JSON projection of an account.
type cachedAccount struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Kind      string     `json:"kind"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewAccountCache is the constructor for accountCache. It returns nil when
// redis is not configured so consumers can skip caching entirely.
func NewAccountCache(client *redis.Client, cfg *config.Config) service.AccountCache {
	if client == nil {
		return nil
	}

	ttl := defaultSummaryTTL
	if cfg.Redis != nil && cfg.Redis.SummaryTTL > 0 {
		ttl = cfg.Redis.SummaryTTL
	}

	return &accountCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached account and whether it was present.
func (c *accountCache) Get(ctx context.Context, id uuid.UUID) (*entity.Account, bool, error) {
	data, err := c.client.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, errors.Wrap(err, "failed to read account from cache")
	}

	var cached cachedAccount
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode cached account")
	}

	return &entity.Account{
		ID:        cached.ID,
		Username:  cached.Username,
		Email:     cached.Email,
		Kind:      entity.AccountKind(cached.Kind),
		ParentID:  cached.ParentID,
		CreatedAt: cached.CreatedAt,
		UpdatedAt: cached.UpdatedAt,
	}, true, nil
}

// Set stores the account summary under its id with the configured TTL.
func (c *accountCache) Set(ctx context.Context, account *entity.Account) error {
	data, err := json.Marshal(&cachedAccount{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Kind:      account.Kind.String(),
		ParentID:  account.ParentID,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode account for cache")
	}

	return errors.Wrap(
		c.client.Set(ctx, accountKey(account.ID), data, c.ttl).Err(),
		"failed to write account to cache",
	)
}

// Invalidate drops the cached summary after a mutation or deletion.
func (c *accountCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return errors.Wrap(
		c.client.Del(ctx, accountKey(id)).Err(),
		"failed to invalidate cached account",
	)
}

func accountKey(id uuid.UUID) string {
	return fmt.Sprintf("account:%s", id)
}

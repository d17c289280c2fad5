package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bank-ledger-api/logger"
	"bank-ledger-api/model"
	"bank-ledger-api/repository"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ICacheClient defines the contract for a cache client.
// *redis.Client satisfies it; tests point one at miniredis.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const DefaultDirectoryTTL = 10 * time.Minute

// directoryLoadTimeout bounds a shared store lookup, which outlives any
// single caller's context.
const directoryLoadTimeout = 5 * time.Second

// AccountDirectory resolves owners and account numbers to account references.
// Only the immutable id/owner/number triple is cached, never a balance.
type AccountDirectory struct {
	accounts repository.IAccountRepository
	cache    ICacheClient
	ttl      time.Duration
	group    singleflight.Group
}

// NewAccountDirectory builds a directory over accounts. A nil cache disables caching.
func NewAccountDirectory(accounts repository.IAccountRepository, cache ICacheClient, ttl time.Duration) *AccountDirectory {
	if ttl <= 0 {
		ttl = DefaultDirectoryTTL
	}
	return &AccountDirectory{accounts: accounts, cache: cache, ttl: ttl}
}

func ownerKey(ownerID int64) string   { return fmt.Sprintf("account:owner:%d", ownerID) }
func numberKey(number string) string { return fmt.Sprintf("account:number:%s", number) }

// ByOwner returns the account held by ownerID.
func (d *AccountDirectory) ByOwner(ctx context.Context, ownerID int64) (model.AccountRef, error) {
	return d.lookup(ctx, ownerKey(ownerID), func(ctx context.Context) (*model.Account, error) {
		return d.accounts.GetAccountByOwnerID(ctx, ownerID)
	})
}

// ByNumber returns the account addressed by number.
func (d *AccountDirectory) ByNumber(ctx context.Context, number string) (model.AccountRef, error) {
	return d.lookup(ctx, numberKey(number), func(ctx context.Context) (*model.Account, error) {
		return d.accounts.GetAccountByNumber(ctx, number)
	})
}

func (d *AccountDirectory) lookup(ctx context.Context, key string, load func(ctx context.Context) (*model.Account, error)) (model.AccountRef, error) {
	log := logger.Log.WithField("cache_key", key)

	// 1. Try Redis.
	if d.cache != nil {
		cached, err := d.cache.Get(ctx, key).Result()
		if err == nil {
			var ref model.AccountRef
			if err := json.Unmarshal([]byte(cached), &ref); err == nil {
				return ref, nil
			}
			log.Warn("Discarding undecodable cache entry")
		} else if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("Cache read failed, falling back to store")
		}
	}

	// 2. Miss: load once per key no matter how many callers are waiting.
	// The load runs detached from the first caller's ctx; each caller waits
	// on its own.
	ch := d.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), directoryLoadTimeout)
		defer cancel()

		acc, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		ref := acc.Ref()
		if d.cache != nil {
			if data, err := json.Marshal(ref); err == nil {
				if err := d.cache.Set(loadCtx, key, data, d.ttl).Err(); err != nil {
					log.WithError(err).Warn("Failed to populate cache")
				}
			}
		}
		return ref, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return model.AccountRef{}, res.Err
		}
		return res.Val.(model.AccountRef), nil
	case <-ctx.Done():
		return model.AccountRef{}, ctx.Err()
	}
}

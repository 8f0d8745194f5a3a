package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/models"
	"ms-dayreport/internal/report"
)

const (
	// KeyPrefix namespaces every cache key written by this service.
	KeyPrefix = "dayreport:orders:"
	// IndexKey holds the set of dates with a live cache entry. Bulk
	// invalidation enumerates this set instead of pattern-scanning the store.
	IndexKey = "dayreport:orders:index"
	// DefaultTTL is how long a computed report stays fresh.
	DefaultTTL = time.Hour
)

// RedisClient is the slice of go-redis the cache needs. *redis.Client
// satisfies it; tests substitute an in-memory fake.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// Computer produces the rows for a date on a cache miss.
type Computer interface {
	Aggregate(ctx context.Context, date string) (*report.AggregateResult, error)
}

// entry is the stored shape. ExpiresAt is checked on read in addition to the
// Redis TTL, so a store with lagging expiry still reports stale data as a miss.
type entry struct {
	Date      string            `json:"date"`
	Rows      []models.OrderRow `json:"rows"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (e *entry) IsFresh() bool {
	return time.Now().Before(e.ExpiresAt)
}

// Cache memoizes day reports in Redis with a fixed TTL. Writes are full
// overwrites, so racing writers can at worst duplicate a computation, never
// corrupt an entry. A dead store degrades to computing every request.
type Cache struct {
	Client   RedisClient
	Computer Computer
	TTL      time.Duration
	Logger   *logger.Logger
}

func New(client RedisClient, computer Computer, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{Client: client, Computer: computer, TTL: ttl, Logger: log}
}

// Key derives the storage key for a canonical date string.
func Key(date string) string {
	sum := sha256.Sum256([]byte(date))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// GetOrCompute returns the rows for a date and whether they came from the
// cache. forceRefresh always recomputes and overwrites the stored entry.
func (c *Cache) GetOrCompute(ctx context.Context, date string, forceRefresh bool) ([]models.OrderRow, bool, error) {
	key := Key(date)

	if !forceRefresh {
		raw, err := c.Client.Get(ctx, key).Result()
		if err == nil {
			var cached entry
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil && cached.IsFresh() {
				c.logCache("HIT", key, date)
				return cached.Rows, true, nil
			}
			// Unreadable or stale entry falls through to recompute.
		} else if err != redis.Nil {
			storeErr := &report.CacheStoreError{Op: "get", Err: err}
			if c.Logger != nil {
				c.Logger.Error("CACHE", storeErr.Error())
			}
		}
	}

	result, err := c.Computer.Aggregate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	c.logCache("MISS", key, date)

	c.store(ctx, key, date, result.Rows)

	return result.Rows, false, nil
}

// store writes the full entry and records the date in the key index. Store
// failures are logged and swallowed: serving the freshly computed rows matters
// more than memoizing them.
func (c *Cache) store(ctx context.Context, key, date string, rows []models.OrderRow) {
	now := time.Now()
	payload, err := json.Marshal(entry{
		Date:      date,
		Rows:      rows,
		CreatedAt: now,
		ExpiresAt: now.Add(c.TTL),
	})
	if err != nil {
		if c.Logger != nil {
			c.Logger.Error("CACHE", fmt.Sprintf("failed to marshal entry for %s: %v", date, err))
		}
		return
	}

	if err := c.Client.Set(ctx, key, payload, c.TTL).Err(); err != nil {
		if c.Logger != nil {
			c.Logger.Error("CACHE", (&report.CacheStoreError{Op: "set", Err: err}).Error())
		}
		return
	}

	if err := c.Client.SAdd(ctx, IndexKey, date).Err(); err != nil && c.Logger != nil {
		c.Logger.Error("CACHE", (&report.CacheStoreError{Op: "sadd", Err: err}).Error())
	}
}

// Invalidate drops the entry for one date.
func (c *Cache) Invalidate(ctx context.Context, date string) error {
	if err := c.Client.Del(ctx, Key(date)).Err(); err != nil {
		return &report.CacheStoreError{Op: "del", Err: err}
	}
	if err := c.Client.SRem(ctx, IndexKey, date).Err(); err != nil {
		return &report.CacheStoreError{Op: "srem", Err: err}
	}
	c.logCache("INVALIDATE", Key(date), date)
	return nil
}

// InvalidateAll drops every entry this service has written, by exact
// enumeration of the key index.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	dates, err := c.Client.SMembers(ctx, IndexKey).Result()
	if err != nil {
		return &report.CacheStoreError{Op: "smembers", Err: err}
	}

	keys := make([]string, 0, len(dates)+1)
	for _, date := range dates {
		keys = append(keys, Key(date))
	}
	keys = append(keys, IndexKey)

	if err := c.Client.Del(ctx, keys...).Err(); err != nil {
		return &report.CacheStoreError{Op: "del", Err: err}
	}
	c.logCache("INVALIDATE_ALL", IndexKey, fmt.Sprintf("%d entries", len(dates)))
	return nil
}

func (c *Cache) logCache(action, key, detail string) {
	if c.Logger != nil {
		c.Logger.LogCache(action, key, detail)
	}
}

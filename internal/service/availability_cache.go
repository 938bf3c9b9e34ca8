package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// RedisAvailabilityKeyPrefix prefixes availability:<doctor>:<date> keys
	RedisAvailabilityKeyPrefix = "availability:"

	// RedisAvailabilityVersionPrefix prefixes the per doctor/date version counter
	// bumped by every invalidation
	RedisAvailabilityVersionPrefix = "availability:ver:"

	// Timeout for individual Redis operations
	redisCacheTimeout = 2 * time.Second

	// Upper bound for a shared load, independent of the request that started it
	availabilityLoadTimeout = 10 * time.Second

	// Version counters outlive any entry or in-flight load
	availabilityVersionTTL = 24 * time.Hour
)

var errStaleAvailability = errors.New("availability changed while loading")

// LoadFunc computes availability when the cache has no entry
type LoadFunc func(ctx context.Context) ([]string, error)

// AvailabilityCache caches resolved availability per doctor and date.
// The database stays authoritative: the cache only serves reads and is
// invalidated after every committed booking or status change.
type AvailabilityCache interface {
	GetOrLoad(ctx context.Context, doctorID uuid.UUID, date string, load LoadFunc) ([]string, error)
	Invalidate(ctx context.Context, doctorID uuid.UUID, date string)
}

// RedisAvailabilityCache stores availability as JSON arrays in Redis.
//
// Key Features:
// - Concurrent misses for the same key run the loader once (singleflight)
// - Entries expire after the configured TTL or the day after the date, whichever is first
// - A load only populates the cache if no invalidation happened since it started
// - Redis failures are logged and fall back to the loader; they never fail a request
type RedisAvailabilityCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
	group       singleflight.Group
}

func NewRedisAvailabilityCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

func (c *RedisAvailabilityCache) GetOrLoad(ctx context.Context, doctorID uuid.UUID, date string, load LoadFunc) ([]string, error) {
	key := availabilityKey(doctorID, date)

	if slots, ok := c.get(ctx, key); ok {
		return slots, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Shared by every waiter, so detached from the first caller's cancellation
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), availabilityLoadTimeout)
		defer cancel()

		verKey := availabilityVersionKey(doctorID, date)
		version, versionOK := c.version(loadCtx, verKey)

		slots, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if versionOK {
			c.setIfUnchanged(loadCtx, key, verKey, version, date, slots)
		}
		return slots, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Invalidate drops the entry and bumps its version so loads already in flight
// do not write their snapshot back
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, doctorID uuid.UUID, date string) {
	key := availabilityKey(doctorID, date)
	verKey := availabilityVersionKey(doctorID, date)

	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisCacheTimeout)
	defer cancel()

	_, err := c.redisClient.TxPipelined(opCtx, func(pipe redis.Pipeliner) error {
		pipe.Incr(opCtx, verKey)
		pipe.Expire(opCtx, verKey, availabilityVersionTTL)
		pipe.Del(opCtx, key)
		return nil
	})
	if err != nil {
		c.log.Warnf("Failed to invalidate availability cache %s (non-fatal): %+v", key, err)
		return
	}
	c.log.Debugf("Invalidated availability cache %s", key)
}

// version returns the invalidation counter; a missing counter reads as 0
func (c *RedisAvailabilityCache) version(ctx context.Context, verKey string) (int64, bool) {
	opCtx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	version, err := c.redisClient.Get(opCtx, verKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warnf("Failed to read availability version %s (non-fatal): %+v", verKey, err)
		return 0, false
	}
	return version, true
}

func (c *RedisAvailabilityCache) get(ctx context.Context, key string) ([]string, bool) {
	opCtx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.redisClient.Get(opCtx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read availability cache %s (non-fatal): %+v", key, err)
		}
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.log.Warnf("Discarding corrupt availability cache entry %s: %+v", key, err)
		return nil, false
	}
	return slots, true
}

// setIfUnchanged stores slots only while the version still equals the one
// observed before loading
func (c *RedisAvailabilityCache) setIfUnchanged(ctx context.Context, key, verKey string, version int64, date string, slots []string) {
	raw, err := json.Marshal(slots)
	if err != nil {
		c.log.Warnf("Failed to encode availability for %s: %+v", key, err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	err = c.redisClient.Watch(opCtx, func(tx *redis.Tx) error {
		current, err := tx.Get(opCtx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleAvailability
		}

		_, err = tx.TxPipelined(opCtx, func(pipe redis.Pipeliner) error {
			pipe.Set(opCtx, key, raw, c.calculateTTL(date))
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleAvailability), errors.Is(err, redis.TxFailedErr):
		c.log.Debugf("Skipping stale availability for %s", key)
	default:
		c.log.Warnf("Failed to write availability cache %s (non-fatal): %+v", key, err)
	}
}

// calculateTTL returns the configured TTL, capped at the end of the day after date
func (c *RedisAvailabilityCache) calculateTTL(date string) time.Duration {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return c.ttl
	}

	ttl := time.Until(day.AddDate(0, 0, 2))
	if ttl <= 0 {
		// Past date - short TTL for cleanup
		return 1 * time.Minute
	}
	if ttl > c.ttl {
		return c.ttl
	}
	return ttl
}

func availabilityKey(doctorID uuid.UUID, date string) string {
	return fmt.Sprintf("%s%s:%s", RedisAvailabilityKeyPrefix, doctorID, date)
}

func availabilityVersionKey(doctorID uuid.UUID, date string) string {
	return fmt.Sprintf("%s%s:%s", RedisAvailabilityVersionPrefix, doctorID, date)
}

// NoopAvailabilityCache always loads. Used when Redis is not configured.
type NoopAvailabilityCache struct{}

func (NoopAvailabilityCache) GetOrLoad(ctx context.Context, _ uuid.UUID, _ string, load LoadFunc) ([]string, error) {
	return load(ctx)
}

func (NoopAvailabilityCache) Invalidate(context.Context, uuid.UUID, string) {}

// Package cache memoizes per-player projections in Redis. Entries are
// keyed by player, target year, and a hash of the tuning config, so a
// sweep running many configs never reads another config's results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/halverson/pennantcast/internal/config"
	"github.com/halverson/pennantcast/internal/model"
)

// Cache wraps a Redis client with projection-shaped get/set helpers.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	hits   int64
	misses int64
}

// Stats is a point-in-time hit/miss snapshot.
type Stats struct {
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Ratio  float64 `json:"ratio"`
}

// New builds a cache around an existing Redis client. A zero TTL
// defaults to 24 hours; projections for a fixed dataset and config
// never go stale, the TTL just bounds memory.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// ConfigHash fingerprints a tuning config for cache keying. Two configs
// with identical constants hash identically regardless of name.
func ConfigHash(cfg config.TuningConfig) string {
	cfg.Name = ""
	data, err := json.Marshal(cfg)
	if err != nil {
		// TuningConfig is plain data; marshal cannot fail in practice.
		return "unhashable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// GetPitcher fetches a cached pitcher projection. The bool reports
// whether the entry existed.
func (c *Cache) GetPitcher(ctx context.Context, playerID string, year int, cfgHash string) (*model.ProjectedPitcher, bool, error) {
	var out model.ProjectedPitcher
	ok, err := c.get(ctx, pitcherKey(playerID, year, cfgHash), &out)
	if !ok || err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

// SetPitcher stores a pitcher projection.
func (c *Cache) SetPitcher(ctx context.Context, cfgHash string, p model.ProjectedPitcher) error {
	return c.set(ctx, pitcherKey(p.PlayerID, p.Year, cfgHash), p)
}

// GetBatter fetches a cached batter projection.
func (c *Cache) GetBatter(ctx context.Context, playerID string, year int, cfgHash string) (*model.ProjectedBatter, bool, error) {
	var out model.ProjectedBatter
	ok, err := c.get(ctx, batterKey(playerID, year, cfgHash), &out)
	if !ok || err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

// SetBatter stores a batter projection.
func (c *Cache) SetBatter(ctx context.Context, cfgHash string, b model.ProjectedBatter) error {
	return c.set(ctx, batterKey(b.PlayerID, b.Year, cfgHash), b)
}

// GetTeams fetches the cached team aggregates for one season run.
func (c *Cache) GetTeams(ctx context.Context, year int, cfgHash string) ([]model.TeamAggregate, bool, error) {
	var out []model.TeamAggregate
	ok, err := c.get(ctx, teamsKey(year, cfgHash), &out)
	if !ok || err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// SetTeams stores the team aggregates for one season run.
func (c *Cache) SetTeams(ctx context.Context, year int, cfgHash string, teams []model.TeamAggregate) error {
	return c.set(ctx, teamsKey(year, cfgHash), teams)
}

// Stats returns the cumulative hit/miss counts.
func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.Ratio = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *Cache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		atomic.AddInt64(&c.misses, 1)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		// A corrupt entry reads as a miss; the caller recomputes and
		// overwrites it.
		atomic.AddInt64(&c.misses, 1)
		return false, nil
	}
	atomic.AddInt64(&c.hits, 1)
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func pitcherKey(playerID string, year int, cfgHash string) string {
	return fmt.Sprintf("proj:pitcher:%s:%d:%s", playerID, year, cfgHash)
}

func batterKey(playerID string, year int, cfgHash string) string {
	return fmt.Sprintf("proj:batter:%s:%d:%s", playerID, year, cfgHash)
}

func teamsKey(year int, cfgHash string) string {
	return fmt.Sprintf("proj:teams:%d:%s", year, cfgHash)
}

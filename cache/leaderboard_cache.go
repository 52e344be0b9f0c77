package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL     = 30 * time.Second
	leaderboardKey = "prediction-pool:leaderboard:v1"
	generationKey  = "prediction-pool:leaderboard:generation"
)

// setIfCurrentScript writes the standing only while the generation is the one
// the caller read before computing it.
var setIfCurrentScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// LeaderboardCache keeps the derived standing in Redis. The database stays
// the source of truth. Every scoring write bumps the generation, and a
// standing computed before the bump is never stored.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New parses a redis:// URL and verifies the connection.
func New(ctx context.Context, redisURL string, ttl time.Duration, logger *slog.Logger) (*LeaderboardCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewWithClient(client, ttl, logger), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *LeaderboardCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LeaderboardCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached standing together with the current generation.
// A miss still reports the generation, to be passed back to SetIfCurrent.
func (c *LeaderboardCache) Get(ctx context.Context) ([]models.LeaderboardEntry, int64, bool, error) {
	values, err := c.client.MGet(ctx, leaderboardKey, generationKey).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis mget %s: %w", leaderboardKey, err)
	}

	generation, err := parseGeneration(values[1])
	if err != nil {
		return nil, 0, false, err
	}

	data, ok := values[0].(string)
	if !ok {
		return nil, generation, false, nil
	}

	var standing []models.LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &standing); err != nil {
		// Битую запись удаляем, чтобы следующий запрос пересчитал таблицу
		c.logger.WarnContext(ctx, "Dropping undecodable leaderboard cache entry", slog.Any("error", err))
		_ = c.client.Del(ctx, leaderboardKey).Err()
		return nil, generation, false, nil
	}
	return standing, generation, true, nil
}

// SetIfCurrent stores standing unless the cache was invalidated after
// generation was read. It reports whether the entry was written.
func (c *LeaderboardCache) SetIfCurrent(ctx context.Context, generation int64, standing []models.LeaderboardEntry) (bool, error) {
	data, err := json.Marshal(standing)
	if err != nil {
		return false, fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	written, err := setIfCurrentScript.Run(ctx, c.client,
		[]string{leaderboardKey, generationKey},
		strconv.FormatInt(generation, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set %s: %w", leaderboardKey, err)
	}
	return written == 1, nil
}

// Invalidate drops the entry and moves to a new generation in one transaction.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, leaderboardKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", leaderboardKey, err)
	}
	return nil
}

func parseGeneration(value interface{}) (int64, error) {
	raw, ok := value.(string)
	if !ok {
		return 0, nil
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid leaderboard cache generation %q: %w", raw, err)
	}
	return generation, nil
}

func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}

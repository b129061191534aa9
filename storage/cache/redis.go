package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/darasoft/shule/core"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// PredictionCache is a TTL'd read-through cache for the analytics
// responses, keyed per student. It is strictly best-effort: callers fall
// back to computing on any error.
type PredictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPredictionCache(conf *core.Config) *PredictionCache {
	return &PredictionCache{
		client: redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		}),
		ttl: conf.Redis.PredictionTTL,
	}
}

func (c *PredictionCache) key(kind, studentID string) string {
	return "analytics:" + kind + ":" + studentID
}

func (c *PredictionCache) Get(ctx context.Context, kind, studentID string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.key(kind, studentID)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, "reading cached prediction")
	}
	if err = json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, "unmarshalling cached prediction")
	}
	return nil
}

func (c *PredictionCache) Set(ctx context.Context, kind, studentID string, val interface{}) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "marshalling prediction")
	}
	if err = c.client.Set(ctx, c.key(kind, studentID), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "caching prediction")
	}
	return nil
}

// Invalidate drops all cached analytics for a student. Called when new
// grades or attendance land so stale scores don't outlive their TTL.
func (c *PredictionCache) Invalidate(ctx context.Context, studentID string) error {
	keys := []string{
		c.key("dropout-prediction", studentID),
		c.key("grade-predictions", studentID),
		c.key("risk-factors", studentID),
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "invalidating predictions")
}

func (c *PredictionCache) Ping(ctx context.Context) error {
	return errors.Wrap(c.client.Ping(ctx).Err(), "pinging redis")
}

func (c *PredictionCache) Close() error {
	return c.client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLVideos  = 5 * time.Minute  // full video list (changes once a day)
	TTLStatus  = 1 * time.Minute  // status/stats block
	TTLPosts   = 30 * time.Second // published post pages (editor may be active)
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixVideos = "videos:"
	PrefixStatus = "status:"
	PrefixPosts  = "posts:"
	PrefixPost   = "post:"
)

// ErrCacheMiss key not present
var ErrCacheMiss = errors.New("cache miss")

// Service Redis-backed cache for the video list, site status and post pages
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetVideos(ctx context.Context) ([]byte, error)
	SetVideos(ctx context.Context, data interface{}) error
	InvalidateVideos(ctx context.Context) error

	GetStatus(ctx context.Context) ([]byte, error)
	SetStatus(ctx context.Context, data interface{}) error
	InvalidateStatus(ctx context.Context) error

	GetPostPage(ctx context.Context, page, limit int, publishedOnly bool) ([]byte, error)
	SetPostPage(ctx context.Context, page, limit int, publishedOnly bool, data interface{}) error
	InvalidatePosts(ctx context.Context) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service backed by the given Redis client
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) getRaw(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (c *redisCache) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) GetVideos(ctx context.Context) ([]byte, error) {
	return c.getRaw(ctx, PrefixVideos+"all")
}

func (c *redisCache) SetVideos(ctx context.Context, data interface{}) error {
	return c.setJSON(ctx, PrefixVideos+"all", data, TTLVideos)
}

func (c *redisCache) InvalidateVideos(ctx context.Context) error {
	return c.Delete(ctx, PrefixVideos+"all")
}

func (c *redisCache) GetStatus(ctx context.Context) ([]byte, error) {
	return c.getRaw(ctx, PrefixStatus+"site")
}

func (c *redisCache) SetStatus(ctx context.Context, data interface{}) error {
	return c.setJSON(ctx, PrefixStatus+"site", data, TTLStatus)
}

func (c *redisCache) InvalidateStatus(ctx context.Context) error {
	return c.Delete(ctx, PrefixStatus+"site")
}

func postPageKey(page, limit int, publishedOnly bool) string {
	return fmt.Sprintf("%sp%d:l%d:pub%t", PrefixPosts, page, limit, publishedOnly)
}

func (c *redisCache) GetPostPage(ctx context.Context, page, limit int, publishedOnly bool) ([]byte, error) {
	return c.getRaw(ctx, postPageKey(page, limit, publishedOnly))
}

func (c *redisCache) SetPostPage(ctx context.Context, page, limit int, publishedOnly bool, data interface{}) error {
	return c.setJSON(ctx, postPageKey(page, limit, publishedOnly), data, TTLPosts)
}

// InvalidatePosts drops every cached post page. Pages are keyed by
// page/limit/published so a scan is needed rather than a single DEL.
func (c *redisCache) InvalidatePosts(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, PrefixPosts+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Delete(ctx, keys...)
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "coloringbook:history"

// RedisHistory keeps the whole history as one JSON array under a single key
type RedisHistory struct {
	client *redis.Client
	key    string
	limit  int
}

// NewRedisHistory accepts a redis:// URL or a plain host:port address
func NewRedisHistory(connectionString string, limit int) (*RedisHistory, error) {
	var opts *redis.Options
	if strings.Contains(connectionString, "://") {
		parsed, err := redis.ParseURL(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: connectionString}
	}

	return &RedisHistory{
		client: redis.NewClient(opts),
		key:    defaultRedisKey,
		limit:  limit,
	}, nil
}

// CreateSchema only verifies the connection; the key is created on first write
func (r *RedisHistory) CreateSchema(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisHistory) Limit() int {
	return r.limit
}

func (r *RedisHistory) Add(ctx context.Context, item *Item) error {
	prepareItem(item)
	items, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]*Item, 0, len(items)+1)
	kept = append(kept, item)
	for _, existing := range items {
		if existing.ID != item.ID {
			kept = append(kept, existing)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt.After(kept[j].CreatedAt)
	})
	if len(kept) > r.limit {
		kept = kept[:r.limit]
	}
	return r.save(ctx, kept)
}

func (r *RedisHistory) List(ctx context.Context) ([]*Item, error) {
	return r.load(ctx)
}

func (r *RedisHistory) Get(ctx context.Context, id string) (*Item, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, nil
}

func (r *RedisHistory) Delete(ctx context.Context, id string) error {
	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i, item := range items {
		if item.ID == id {
			return r.save(ctx, append(items[:i], items[i+1:]...))
		}
	}
	return ErrNotFound
}

func (r *RedisHistory) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func (r *RedisHistory) Close() error {
	return r.client.Close()
}

func (r *RedisHistory) load(ctx context.Context) ([]*Item, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []*Item{}, nil
	}
	if err != nil {
		return nil, err
	}

	items := []*Item{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("corrupt history under %s: %w", r.key, err)
	}
	return items, nil
}

func (r *RedisHistory) save(ctx context.Context, items []*Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}

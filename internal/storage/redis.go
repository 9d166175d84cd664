package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/skycast/internal/weather"
)

// RedisKey holds the JSON array of saved places.
const RedisKey = "places:saved"

// ConnectRedis parses redisURL, creates a client, and verifies connectivity with a ping.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// RedisStore keeps the list under a single key with no expiry.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore constructs a RedisStore using RedisKey.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: RedisKey}
}

// Load returns an empty list when the key does not exist.
func (s *RedisStore) Load(ctx context.Context) ([]weather.Place, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []weather.Place{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	places, err := weather.DecodePlaces(val)
	if err != nil {
		return nil, corrupt(fmt.Errorf("decoding %s: %w", s.key, err))
	}
	return places, nil
}

func (s *RedisStore) Save(ctx context.Context, places []weather.Place) error {
	if places == nil {
		places = []weather.Place{}
	}
	b, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("encoding places: %w", err)
	}

	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

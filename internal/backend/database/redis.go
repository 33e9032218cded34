package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "spectra"

// RedisDatabase keeps each table as a list; every entry is a JSON array of the row's values.
type RedisDatabase struct {
	client *redis.Client
	prefix string
}

// NewRedisDatabase connects to a redis URL such as redis://localhost:6379/0.
func NewRedisDatabase(ctx context.Context, connectionString, keyPrefix string) (TabularStore, error) {
	options, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, unavailable(fmt.Errorf("invalid redis url: %w", err))
	}
	// every operation is attempted once
	options.MaxRetries = -1

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable(err)
	}

	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisDatabase{client: client, prefix: keyPrefix}, nil
}

func (r *RedisDatabase) key(table Table) string {
	return r.prefix + ":" + table.Name
}

func (r *RedisDatabase) ReadAll(ctx context.Context, table Table) ([]Record, error) {
	entries, err := r.client.LRange(ctx, r.key(table), 0, -1).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	records := make([]Record, 0, len(entries))
	for i, entry := range entries {
		var values []string
		if err := json.Unmarshal([]byte(entry), &values); err != nil {
			return nil, fmt.Errorf("failed to decode row %d of %s: %w", i, table.Name, err)
		}
		records = append(records, table.Decode(table.Columns, values))
	}
	return records, nil
}

func (r *RedisDatabase) Append(ctx context.Context, table Table, values []string) error {
	if err := table.checkArity(values); err != nil {
		return err
	}
	entry, err := json.Marshal(values)
	if err != nil {
		return rejected(err)
	}

	if err := r.client.RPush(ctx, r.key(table), entry).Err(); err != nil {
		// a reply from the server means it refused the command
		var redisErr redis.Error
		if errors.As(err, &redisErr) {
			return rejected(err)
		}
		return unavailable(err)
	}
	return nil
}

func (r *RedisDatabase) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}

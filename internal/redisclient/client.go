package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-picker/internal/models"

	"github.com/go-redis/redis/v8"
)

const pricingKeyPrefix = "pricing:"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection, used by the readiness probe
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func pricingKey(identity string) string {
	return pricingKeyPrefix + identity
}

// Get returns the cached pricing record for identity, or nil on a miss
func (c *Client) Get(ctx context.Context, identity string) (*models.PricingRecord, error) {
	data, err := c.rdb.Get(ctx, pricingKey(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing %s: %w", identity, err)
	}

	var rec models.PricingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode pricing %s: %w", identity, err)
	}
	return &rec, nil
}

// Put stores record under identity. Pricing entries do not expire; a newer
// fetch overwrites them.
func (c *Client) Put(ctx context.Context, identity string, record models.PricingRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode pricing %s: %w", identity, err)
	}
	if err := c.rdb.Set(ctx, pricingKey(identity), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write pricing %s: %w", identity, err)
	}
	return nil
}

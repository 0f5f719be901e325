package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kindred/internal/platform/config"
)

// Client is the redis connection backing the custom message queue.
type Client struct {
	*redis.Client
}

// New dials redis from the provided configuration. An empty URL means the
// deployment runs without redis and the caller should fall back to the
// in-memory queue; that case returns nil without error. The context bounds
// the startup ping.
func New(ctx context.Context, cfg config.Redis) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

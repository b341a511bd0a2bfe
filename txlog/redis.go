/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package txlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKey = "eventgraph:txlog"

// Redis keeps entries as JSON in a capped list, newest at the head.
type Redis struct {
	client   *redis.Client
	key      string
	capacity int64
	now      func() time.Time
}

// NewRedisClient creates a client and verifies connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("Redis client connected", zap.String("addr", addr))
	return rdb, nil
}

// NewRedis returns a recorder on key (defaultKey when empty) keeping capacity entries.
func NewRedis(client *redis.Client, key string, capacity int) *Redis {
	if key == "" {
		key = defaultKey
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Redis{client: client, key: key, capacity: int64(capacity), now: time.Now}
}

// Record pushes e and trims the list in one transaction.
func (r *Redis) Record(ctx context.Context, e Entry) error {
	body, err := json.Marshal(stamp(e, r.now))
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, r.key, body)
		p.LTrim(ctx, r.key, 0, r.capacity-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("txlog push: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first. Undecodable entries are skipped.
func (r *Redis) Recent(ctx context.Context, n int) ([]Entry, error) {
	stop := int64(n) - 1
	if n <= 0 {
		stop = -1
	}
	raw, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("txlog range: %w", err)
	}
	out := make([]Entry, 0, len(raw))
	for _, s := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

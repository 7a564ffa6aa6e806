// Package cache stores rendered query responses in Redis so identical
// queries inside the snapshot TTL never repeat the resolve/aggregate work.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/medeinalab/stock-query-service/internal/config"
	"github.com/medeinalab/stock-query-service/internal/models"
)

const keyPrefix = "stockquery:v1:"

type ResponseCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

func NewResponseCache(cfg config.RedisConfig, logger *zap.Logger) *ResponseCache {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	return &ResponseCache{
		client: client,
		ttl:    cfg.ResponseTTL,
		logger: logger,
	}
}

// Key derives the cache key from everything that shapes a response. Terms can
// contain arbitrary user text, so the key is a digest rather than the raw
// term.
func Key(req *models.QueryRequest) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d", req.Term, req.View, req.Limit, req.Cursor)))
	return keyPrefix + hex.EncodeToString(sum[:16])
}

// Get is best effort: any Redis or decode failure reads as a miss.
func (c *ResponseCache) Get(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, bool) {
	data, err := c.client.Get(ctx, Key(req)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("response cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var resp models.QueryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("response cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &resp, true
}

// Set is best effort: a failed write only costs the next request a recompute.
func (c *ResponseCache) Set(ctx context.Context, req *models.QueryRequest, resp *models.QueryResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("response cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, Key(req), data, c.ttl).Err(); err != nil {
		c.logger.Debug("response cache write failed", zap.Error(err))
	}
}

func (c *ResponseCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ResponseCache) Close() error {
	return c.client.Close()
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/student-insight/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func reportKey(userID, contentHash string) string {
	return fmt.Sprintf("report:%s:%s", userID, contentHash)
}

func (c *Client) SetReport(ctx context.Context, userID, contentHash string, report interface{}, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	err = c.client.Set(ctx, reportKey(userID, contentHash), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set report cache: %w", err)
	}

	logger.Debug("Report cached", zap.String("content_hash", contentHash), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetReport(ctx context.Context, userID, contentHash string, report interface{}) (bool, error) {
	data, err := c.client.Get(ctx, reportKey(userID, contentHash)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report cache: %w", err)
	}

	err = json.Unmarshal(data, report)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	logger.Debug("Report cache hit", zap.String("content_hash", contentHash))
	return true, nil
}

// InvalidateReports drops every cached report for one user. Called after any
// record mutation so stale reports never outlive the data they describe.
func (c *Client) InvalidateReports(ctx context.Context, userID string) error {
	iter := c.client.Scan(ctx, 0, fmt.Sprintf("report:%s:*", userID), 0).Iterator()
	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Report cache invalidated", zap.String("user_id", userID))
	return nil
}

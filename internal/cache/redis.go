package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/config"
	"github.com/Freeeeeet/timetable/internal/model"
)

const (
	generationKey = "timetable:conflicts:generation"
	reportPrefix  = "timetable:conflicts:report:"
)

// Redis shares the conflict report between API replicas.
type Redis struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects and pings the server.
func NewRedis(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("Redis connected", zap.String("addr", cfg.Addr))

	return NewRedisWithClient(rdb, ttl, logger), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb *goredis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get cache generation: %w", err)
	}
	return gen, nil
}

func (c *Redis) Get(ctx context.Context, gen int64) (*model.ConflictReport, bool, error) {
	data, err := c.rdb.Get(ctx, reportKey(gen)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached report: %w", err)
	}

	var r model.ConflictReport
	if err := json.Unmarshal(data, &r); err != nil {
		// A broken entry is treated as a miss and overwritten by the next scan.
		c.logger.Warn("Discarding unreadable cached report", zap.Error(err))
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *Redis) Set(ctx context.Context, gen int64, r *model.ConflictReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.rdb.Set(ctx, reportKey(gen), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached report: %w", err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

func reportKey(gen int64) string {
	return reportPrefix + strconv.FormatInt(gen, 10)
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"solver-server/internal/config"
)

const keyPrefix = "solver:warmstart:"

// WarmStart stores the last known solution per parameter vector so that
// repeated requests with the same parameters start the search from the
// previous optimum instead of zero.
type WarmStart struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg config.RedisConfig) (*WarmStart, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 20
	}
	if cfg.MinIdleConns <= 0 {
		cfg.MinIdleConns = 2
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := time.Duration(cfg.TTLSec) * time.Second
	return &WarmStart{client: client, ttl: ttl}, nil
}

// Load returns the cached solution for p, or (nil, false, nil) on a miss.
func (w *WarmStart) Load(ctx context.Context, p []float64) ([]float64, bool, error) {
	val, err := w.client.Get(ctx, key(p)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var u []float64
	if err := json.Unmarshal([]byte(val), &u); err != nil {
		return nil, false, fmt.Errorf("decode cached solution: %w", err)
	}
	return u, true, nil
}

func (w *WarmStart) Store(ctx context.Context, p, u []float64) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return w.client.Set(ctx, key(p), data, w.ttl).Err()
}

func (w *WarmStart) Close() error {
	return w.client.Close()
}

// key is the exact parameter vector; two requests warm-start off each
// other only when their parameters are bitwise identical.
func key(p []float64) string {
	var sb strings.Builder
	sb.WriteString(keyPrefix)
	for i, v := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return sb.String()
}

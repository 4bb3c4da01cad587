package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/buildlab-academy/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "bla"

var (
	mu     sync.RWMutex
	client *redis.Client
	prefix = defaultPrefix
)

// InitRedis 初始化 Redis 客户端，未启用时缓存全部退化为空操作
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		Use(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	Use(redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Prefix)
	return nil
}

// Use 直接注入客户端（测试中用于 miniredis）
func Use(c *redis.Client, keyPrefix string) {
	mu.Lock()
	defer mu.Unlock()
	client = c
	prefix = strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return Client() != nil
}

// Client 获取 Redis 客户端
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// Close 关闭连接
func Close() error {
	c := Client()
	if c == nil {
		return nil
	}
	return c.Close()
}

// GetJSON 获取 JSON 缓存
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	c := Client()
	if c == nil {
		return false, nil
	}
	val, err := c.Get(ctx, BuildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c := Client()
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, BuildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	c := Client()
	if c == nil {
		return nil
	}
	return c.Del(ctx, BuildKey(key)).Err()
}

// BuildKey 拼接全局前缀
func BuildKey(key string) string {
	mu.RLock()
	p := prefix
	mu.RUnlock()
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return p
	}
	return p + ":" + trimmed
}

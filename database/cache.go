package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuhuo/column-form/config"
	"github.com/yuhuo/column-form/logger"
	"github.com/yuhuo/column-form/models"
)

const cacheKeyPrefix = "column-form:columns:"

// Source 是 QueryHelper 对外提供的元数据查询能力
type Source interface {
	GetColumnsMeta(ctx context.Context, db, table string) ([]models.ColumnMeta, error)
	GetGenerationExpression(ctx context.Context, db, table, column string) (string, error)
	GetForeignKeys(ctx context.Context, db, table string) ([]models.ForeignKey, error)
	GetChildReferences(ctx context.Context, db, table string) (models.ChildReferences, error)
	GetServerVersion(ctx context.Context) (int, error)
	GetTableStamp(ctx context.Context, db, table string) (string, error)
}

// cacheStore 是 CachedProvider 用到的 redis 命令子集
type cacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// cacheEntry 缓存的列定义，Stamp 与表当前的时间戳不一致时作废
type cacheEntry struct {
	Stamp   string              `json:"stamp"`
	Columns []models.ColumnMeta `json:"columns"`
}

// CachedProvider 在 Redis 中缓存列定义，其他查询直接透传
type CachedProvider struct {
	Source
	store  cacheStore
	server string
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider 包装元数据源，server 为 host:port，用于区分共用同一个 Redis 的不同实例
func NewCachedProvider(source Source, store cacheStore, server string, ttl time.Duration, log *logger.Logger) *CachedProvider {
	return &CachedProvider{
		Source: source,
		store:  store,
		server: server,
		ttl:    ttl,
		logger: log,
	}
}

// NewRedisClient 根据配置创建并检查 redis 客户端
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// CacheKey 返回表的缓存键，各部分分别加反引号，不会因为名字中的 "." 产生歧义
func CacheKey(server, db, table string) string {
	return cacheKeyPrefix + quoteIdent(server) + "." + quoteIdent(db) + "." + quoteIdent(table)
}

// GetColumnsMeta 优先读取缓存，缓存不可用或已过时时回落到数据库
func (p *CachedProvider) GetColumnsMeta(ctx context.Context, db, table string) ([]models.ColumnMeta, error) {
	key := CacheKey(p.server, db, table)

	stamp, err := p.Source.GetTableStamp(ctx, db, table)
	if err != nil || stamp == "" {
		// 无法判断缓存是否过时，直接查库
		if err != nil {
			p.warn(fmt.Sprintf("bypassing cache for %s: %v", key, err))
		}
		return p.Source.GetColumnsMeta(ctx, db, table)
	}

	val, err := p.store.Get(ctx, key).Result()
	switch {
	case err == nil:
		var entry cacheEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			p.warn(fmt.Sprintf("discarding corrupt cache entry %s", key))
		} else if entry.Stamp != stamp {
			p.debug(fmt.Sprintf("cache stale %s: %s != %s", key, entry.Stamp, stamp))
		} else {
			p.debug(fmt.Sprintf("cache hit %s", key))
			return entry.Columns, nil
		}
	case errors.Is(err, redis.Nil):
		p.debug(fmt.Sprintf("cache miss %s", key))
	default:
		p.warn(fmt.Sprintf("cache read failed for %s: %v", key, err))
	}

	columns, err := p.Source.GetColumnsMeta(ctx, db, table)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cacheEntry{Stamp: stamp, Columns: columns})
	if err != nil {
		p.warn(fmt.Sprintf("failed to encode columns for %s: %v", key, err))
		return columns, nil
	}
	if err := p.store.Set(ctx, key, data, p.ttl).Err(); err != nil {
		p.warn(fmt.Sprintf("cache write failed for %s: %v", key, err))
	}
	return columns, nil
}

// Invalidate 删除表的缓存
func (p *CachedProvider) Invalidate(ctx context.Context, db, table string) error {
	key := CacheKey(p.server, db, table)
	if err := p.store.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache %s: %w", key, err)
	}
	p.debug(fmt.Sprintf("cache invalidated %s", key))
	return nil
}

func (p *CachedProvider) debug(msg string) {
	if p.logger != nil {
		p.logger.Debug(msg)
	}
}

func (p *CachedProvider) warn(msg string) {
	if p.logger != nil {
		p.logger.Warn(msg)
	}
}

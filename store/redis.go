package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/rushteam/meeplekit/core"
)

// RedisCatalogStore 把目录条目发布到 Redis，供进程外消费方读取。
// key 形如 <prefix>:<run_id>:<game_id>，latest 指针是 <prefix>:latest。
// 不做查询路径上的目录来源：查询侧用内存目录，这里只是发布通道。
type RedisCatalogStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCatalogStore 连接 Redis 并创建发布器。
func NewRedisCatalogStore(addr string, db int, prefix string) (*RedisCatalogStore, error) {
	if prefix == "" {
		prefix = "meeplekit"
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCatalogStore{client: client, prefix: prefix}, nil
}

// Publish 写入一个 run 的全部条目与元数据，并把 latest 指针切过去。
func (s *RedisCatalogStore) Publish(ctx context.Context, meta core.RunMetadata, entries []core.CatalogEntry) error {
	pipe := s.client.Pipeline()
	for i := range entries {
		data, err := json.Marshal(&entries[i])
		if err != nil {
			return fmt.Errorf("marshal entry %s: %w", entries[i].Game.ID, err)
		}
		pipe.Set(ctx, s.entryKey(meta.RunID, entries[i].Game.ID), data, 0)
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal run metadata: %w", err)
	}
	pipe.Set(ctx, s.metaKey(meta.RunID), metaData, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish run %s: %w", meta.RunID, err)
	}
	// 条目全部落库后才切指针
	if err := s.client.Set(ctx, s.prefix+":latest", meta.RunID, 0).Err(); err != nil {
		return fmt.Errorf("set latest pointer: %w", err)
	}
	return nil
}

// GetEntry 按 run 与游戏标识读取单个条目。
func (s *RedisCatalogStore) GetEntry(ctx context.Context, runID, gameID string) (*core.CatalogEntry, error) {
	data, err := s.client.Get(ctx, s.entryKey(runID, gameID)).Bytes()
	if err == redis.Nil {
		return nil, core.NewNotFoundError(core.ModuleStore, "catalog entry not found", []string{gameID})
	}
	if err != nil {
		return nil, err
	}
	var entry core.CatalogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal entry %s: %w", gameID, err)
	}
	return &entry, nil
}

// LatestRunID 读取 latest 指针。
func (s *RedisCatalogStore) LatestRunID(ctx context.Context) (string, error) {
	runID, err := s.client.Get(ctx, s.prefix+":latest").Result()
	if err == redis.Nil {
		return "", core.NewNotFoundError(core.ModuleStore, "no run has been published yet", nil)
	}
	return runID, err
}

// Close 关闭 Redis 连接。
func (s *RedisCatalogStore) Close() error {
	return s.client.Close()
}

func (s *RedisCatalogStore) entryKey(runID, gameID string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, runID, gameID)
}

func (s *RedisCatalogStore) metaKey(runID string) string {
	return fmt.Sprintf("%s:%s:metadata", s.prefix, runID)
}

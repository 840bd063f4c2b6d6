package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/embed"
	"github.com/rushteam/meeplekit/explain"
	"github.com/rushteam/meeplekit/feature"
	"github.com/rushteam/meeplekit/rank"
	"github.com/rushteam/meeplekit/taste"
)

// Config 是 meeplekit 的顶层配置，训练与查询共用一份。
type Config struct {
	Feature feature.Config `yaml:"feature"`
	Embed   embed.Config   `yaml:"embed"`
	Taste   taste.Config   `yaml:"taste"`
	Explain explain.Config `yaml:"explain"`
	Rank    RankConfig     `yaml:"rank"`
	Serving ServingConfig  `yaml:"serving"`
	Store   StoreConfig    `yaml:"store"`
	Logging LoggingConfig  `yaml:"logging"`
}

// RankConfig 控制相似度排序节点。
type RankConfig struct {
	// Aggregation 多质心聚合方式：max 或 mean，默认 max。
	Aggregation string `yaml:"aggregation"`
	// Parallelism 打分并发度，<=1 串行。
	Parallelism int `yaml:"parallelism"`
	// ChunkSize 并发分片大小。
	ChunkSize int `yaml:"chunk_size"`
}

// ServingConfig 控制查询侧行为。
type ServingConfig struct {
	// DefaultAmount 查询未指定数量时的默认返回条数。
	DefaultAmount int `yaml:"default_amount"`
	// FilterExpr 可选的 CEL 自定义过滤表达式。
	FilterExpr string `yaml:"filter_expr"`
}

// StoreConfig 控制 run 产物的落地与发布。
type StoreConfig struct {
	// RunDir 训练 run 的本地根目录。
	RunDir string `yaml:"run_dir"`
	// Redis 可选的目录发布通道；Addr 为空时关闭。
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig Redis 连接参数。
type RedisConfig struct {
	Addr   string `yaml:"addr"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig 控制结构化日志输出。
type LoggingConfig struct {
	// Level 取 zerolog 级别名：debug / info / warn / error。
	Level string `yaml:"level"`
	// Pretty 输出人类可读格式（开发用），关闭时输出 JSON。
	Pretty bool `yaml:"pretty"`
}

// Load 从 YAML 文件读取并校验配置。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.NewConfigError(core.ModuleConfig, "parse config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 做跨段一致性校验；各组件构造时还会做自己的细则校验。
func (c *Config) Validate() error {
	if _, err := rank.ParseAggregation(c.Rank.Aggregation); err != nil {
		return err
	}
	if c.Rank.Parallelism < 0 || c.Rank.ChunkSize < 0 {
		return core.NewConfigError(core.ModuleConfig, "rank parallelism and chunk_size must not be negative")
	}
	if c.Serving.DefaultAmount < 0 {
		return core.NewConfigError(core.ModuleConfig, "serving default_amount must not be negative")
	}
	// 归一化开关必须训练、聚合两侧一致，否则点积捷径打出错误分数
	if c.Embed.Normalize != c.Taste.Normalize {
		return core.NewConfigError(core.ModuleConfig,
			"embed.normalize (%v) and taste.normalize (%v) must match", c.Embed.Normalize, c.Taste.Normalize)
	}
	return nil
}

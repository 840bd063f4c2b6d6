package pipeline

import (
	"context"

	"github.com/rushteam/meeplekit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：从嵌入目录生成候选集
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不满足场景约束的候选
	KindRank        Kind = "rank"        // 排序阶段：按质心相似度打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：Top-N 截断等结果修饰
	KindPostProcess Kind = "postprocess" // 后处理阶段：生成解释等注解操作
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 items -> 输出 items"的形态，方便召回生成、过滤截断、排序重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据 config 构建 Node，供配置驱动的工厂使用。
type NodeBuilder = func(config map[string]interface{}) (Node, error)

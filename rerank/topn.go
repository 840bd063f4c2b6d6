package rerank

import (
	"context"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pipeline"
)

// TopNNode 在排序后截取前 N 个候选。
// N <= 0 时使用查询的 Amount；两者都未指定则不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 {
		limit = rctx.Amount
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}

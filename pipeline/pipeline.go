package pipeline

import (
	"context"

	"github.com/rushteam/meeplekit/core"
)

// Pipeline 是 meeplekit 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 查询链路固定形态为 召回 → 过滤 → 排序 → 重排 → 解释，
// 每个阶段都可以替换或插入自定义 Node。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

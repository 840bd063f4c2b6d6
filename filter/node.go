package filter

import (
	"context"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pipeline"
	"github.com/rushteam/meeplekit/pkg/utils"
)

// FilterNode 是过滤 Node，组合多个过滤器对候选集做合取过滤。
// 任何一个过滤器返回 true，该候选就会被剔除，剔除原因写入 Label。
// 过滤发生在排序之前：被剔除的候选不参与打分。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		remove := false
		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				return nil, err
			}
			if ok {
				remove = true
				reason = f.Name()
				break
			}
		}

		if remove {
			item.PutLabel("filtered", utils.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

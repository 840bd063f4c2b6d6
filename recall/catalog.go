package recall

import (
	"context"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pipeline"
)

// CatalogSource 提供嵌入目录的全量条目，由 store 层实现。
type CatalogSource interface {
	Entries() []core.CatalogEntry
}

// CatalogScanNode 从嵌入目录生成候选集，排除用户已喜欢的游戏。
// 目录规模在万级以内，全量扫描即可，无需近似索引。
type CatalogScanNode struct {
	Source CatalogSource
}

func NewCatalogScanNode(source CatalogSource) *CatalogScanNode {
	return &CatalogScanNode{Source: source}
}

func (n *CatalogScanNode) Name() string {
	return "recall.catalog_scan"
}

func (n *CatalogScanNode) Kind() pipeline.Kind {
	return pipeline.KindRecall
}

func (n *CatalogScanNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Source == nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInternalError, "catalog source is not configured")
	}
	entries := n.Source.Entries()
	liked := rctx.LikedSet()

	out := make([]*core.Item, 0, len(entries))
	for i := range entries {
		if _, ok := liked[entries[i].Game.ID]; ok {
			continue
		}
		out = append(out, entries[i].Item())
	}
	// 召回是链路首个阶段，入参 items 正常为空，追加语义保持幂等
	return append(items, out...), nil
}

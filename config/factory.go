package config

import (
	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/explain"
	"github.com/rushteam/meeplekit/feature"
	"github.com/rushteam/meeplekit/filter"
	"github.com/rushteam/meeplekit/pipeline"
	"github.com/rushteam/meeplekit/pkg/conv"
	"github.com/rushteam/meeplekit/rank"
	"github.com/rushteam/meeplekit/recall"
	"github.com/rushteam/meeplekit/rerank"
)

// DefaultFactory 返回注册了全部内置 Node 的工厂，供配置驱动的 Pipeline 使用。
// recall.catalog_scan 需要目录来源，通过闭包注入。
func DefaultFactory(source recall.CatalogSource) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("recall.catalog_scan", func(_ map[string]interface{}) (pipeline.Node, error) {
		return recall.NewCatalogScanNode(source), nil
	})

	factory.Register("filter.contextual", buildContextualFilterNode)

	factory.Register("rank.centroid_similarity", buildCentroidSimilarityNode)

	factory.Register("rerank.topn", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
	})

	factory.Register("explain", buildExplainNode)

	return factory
}

func buildContextualFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filters := []filter.Filter{
		&filter.PlayerCountFilter{},
		&filter.PlayTimeFilter{},
		&filter.LikedFilter{},
	}
	if expr := conv.ConfigGet[string](cfg, "expr", ""); expr != "" {
		ef, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, ef)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func buildCentroidSimilarityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	agg, err := rank.ParseAggregation(conv.ConfigGet[string](cfg, "aggregation", ""))
	if err != nil {
		return nil, err
	}
	return &rank.CentroidSimilarityNode{
		Aggregation: agg,
		Normalized:  conv.ConfigGet[bool](cfg, "normalized", false),
		Parallelism: conv.ConfigGetInt(cfg, "parallelism", 0),
		ChunkSize:   conv.ConfigGetInt(cfg, "chunk_size", 0),
	}, nil
}

func buildExplainNode(cfg map[string]interface{}) (pipeline.Node, error) {
	var fieldWeights map[core.TagField]float64
	if raw := conv.MapToFloat64(conv.ConfigGet[map[string]any](cfg, "field_weights", nil)); len(raw) > 0 {
		fieldWeights = make(map[core.TagField]float64, len(raw))
		for field, w := range raw {
			fieldWeights[core.TagField(field)] = w
		}
	}
	return explain.NewNode(explain.Config{
		MaxReferences:     conv.ConfigGetInt(cfg, "max_references", 0),
		MaxFeatures:       conv.ConfigGetInt(cfg, "max_features", 0),
		PositiveThreshold: conv.ConfigGetFloat(cfg, "positive_threshold", 0),
		NeutralThreshold:  conv.ConfigGetFloat(cfg, "neutral_threshold", 0),
		FieldWeights:      fieldWeights,
	})
}

// tagFieldWeights 从特征配置的文本块权重推导各标签字段的解释权重。
// description 是自由文本，没有对应的标签字段。
func tagFieldWeights(fields []feature.TextFieldConfig) map[core.TagField]float64 {
	out := make(map[core.TagField]float64)
	for _, tf := range fields {
		switch tf.Field {
		case feature.TextFieldMechanics:
			out[core.TagFieldMechanic] = tf.Weight
		case feature.TextFieldCategories:
			out[core.TagFieldCategory] = tf.Weight
		case feature.TextFieldThemes:
			out[core.TagFieldTheme] = tf.Weight
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ServingPipeline 按顶层配置组装标准查询 Pipeline：
// 召回 → 场景过滤 → 质心排序 → Top-N 截断 → 解释。
func ServingPipeline(cfg *Config, source recall.CatalogSource) (*pipeline.Pipeline, error) {
	agg, err := rank.ParseAggregation(cfg.Rank.Aggregation)
	if err != nil {
		return nil, err
	}

	filters := []filter.Filter{
		&filter.PlayerCountFilter{},
		&filter.PlayTimeFilter{},
		&filter.LikedFilter{},
	}
	if cfg.Serving.FilterExpr != "" {
		ef, err := filter.NewExprFilter(cfg.Serving.FilterExpr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, ef)
	}

	explainCfg := cfg.Explain
	if explainCfg.FieldWeights == nil {
		explainCfg.FieldWeights = tagFieldWeights(cfg.Feature.TextFields)
	}
	explainNode, err := explain.NewNode(explainCfg)
	if err != nil {
		return nil, err
	}

	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			recall.NewCatalogScanNode(source),
			&filter.FilterNode{Filters: filters},
			&rank.CentroidSimilarityNode{
				Aggregation: agg,
				Normalized:  cfg.Embed.Normalize,
				Parallelism: cfg.Rank.Parallelism,
				ChunkSize:   cfg.Rank.ChunkSize,
			},
			&rerank.TopNNode{},
			explainNode,
		},
	}, nil
}

package rank

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pipeline"
	"github.com/rushteam/meeplekit/pkg/utils"
	"github.com/rushteam/meeplekit/pkg/vecmath"
)

// Aggregation 是多质心分数的聚合方式。
type Aggregation string

const (
	// AggregationMax 取最高质心相似度：单一口味命中即可推荐。
	AggregationMax Aggregation = "max"
	// AggregationMean 取平均质心相似度：偏向同时贴近多种口味的游戏。
	AggregationMean Aggregation = "mean"
)

// ParseAggregation 解析聚合方式名称。
func ParseAggregation(name string) (Aggregation, error) {
	switch Aggregation(name) {
	case AggregationMax, AggregationMean:
		return Aggregation(name), nil
	case "":
		return AggregationMax, nil
	default:
		return "", core.NewConfigError(core.ModuleRank, "unknown aggregation %q", name)
	}
}

// CentroidSimilarityNode 按口味质心的余弦相似度给候选打分并降序排序。
// 质心与目录向量都已 L2 归一时余弦退化为点积，Normalized 开启该捷径。
type CentroidSimilarityNode struct {
	// Aggregation 多质心聚合方式，默认 max。
	Aggregation Aggregation
	// Normalized 标记向量已归一化，按点积打分。
	Normalized bool
	// Parallelism 打分并发度，<=1 时串行。
	Parallelism int
	// ChunkSize 每个并发分片的候选数，默认 256。
	ChunkSize int
}

const defaultChunkSize = 256

func (n *CentroidSimilarityNode) Name() string {
	return "rank.centroid_similarity"
}

func (n *CentroidSimilarityNode) Kind() pipeline.Kind {
	return pipeline.KindRank
}

func (n *CentroidSimilarityNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if len(rctx.Centroids) == 0 {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInternalError,
			"no taste centroids available for ranking")
	}

	agg := n.Aggregation
	if agg == "" {
		agg = AggregationMax
	}

	if err := n.score(ctx, rctx.Centroids, agg, items); err != nil {
		return nil, err
	}

	// 分数降序；同分按评分数降序，再按标识升序，保证确定性
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		ri, rj := 0, 0
		if items[i].Game != nil {
			ri = items[i].Game.NumRatings
		}
		if items[j].Game != nil {
			rj = items[j].Game.NumRatings
		}
		if ri != rj {
			return ri > rj
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// score 分片并发打分。
func (n *CentroidSimilarityNode) score(ctx context.Context, centroids [][]float64, agg Aggregation, items []*core.Item) error {
	chunk := n.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	if n.Parallelism <= 1 || len(items) <= chunk {
		return n.scoreChunk(centroids, agg, items)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(n.Parallelism)
	for start := 0; start < len(items); start += chunk {
		end := start + chunk
		if end > len(items) {
			end = len(items)
		}
		part := items[start:end]
		g.Go(func() error {
			return n.scoreChunk(centroids, agg, part)
		})
	}
	return g.Wait()
}

func (n *CentroidSimilarityNode) scoreChunk(centroids [][]float64, agg Aggregation, items []*core.Item) error {
	for _, item := range items {
		if item == nil || len(item.Vector) == 0 {
			return core.NewDomainError(core.ModuleRank, core.ErrorCodeInternalError,
				"candidate missing embedding vector")
		}
		item.Score = n.aggregate(centroids, agg, item.Vector)
		item.PutLabel("rank.score", utils.Label{
			Value:  strconv.FormatFloat(item.Score, 'f', 6, 64),
			Source: n.Name(),
		})
	}
	return nil
}

func (n *CentroidSimilarityNode) aggregate(centroids [][]float64, agg Aggregation, vector []float64) float64 {
	var best, sum float64
	for i, c := range centroids {
		var sim float64
		if n.Normalized {
			sim = vecmath.Dot(c, vector)
		} else {
			sim = vecmath.Cosine(c, vector)
		}
		if i == 0 || sim > best {
			best = sim
		}
		sum += sim
	}
	if agg == AggregationMean {
		return sum / float64(len(centroids))
	}
	return best
}

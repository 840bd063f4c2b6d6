package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/meeplekit/config"
	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pipeline"
	"github.com/rushteam/meeplekit/store"
	"github.com/rushteam/meeplekit/taste"
)

// Query 是一次推荐请求。
type Query struct {
	// LikedIDs 用户喜欢的游戏标识，必填。
	LikedIDs []string
	// Players 本次人数，0 表示不按人数过滤。
	Players int
	// AvailableMinutes 可用时长（分钟），0 表示不按时长过滤。
	AvailableMinutes int
	// Amount 期望返回条数，0 取配置的默认值。
	Amount int
	// Mode 解释方式，空取 reference。
	Mode core.ExplainMode
	// Params 自定义过滤表达式的附加求值参数。
	Params map[string]any
}

// Recommender 是查询门面：解析喜欢集合 → 聚合口味质心 → 跑 Pipeline。
// 并发安全；目录热切换经由 store.Handle 对查询透明。
type Recommender struct {
	handle     *store.Handle
	pipeline   *pipeline.Pipeline
	aggregator *taste.Aggregator
	defaults   config.ServingConfig
	logger     zerolog.Logger
}

// New 组装推荐门面。
func New(cfg *config.Config, handle *store.Handle, logger zerolog.Logger) (*Recommender, error) {
	if handle == nil {
		return nil, core.NewConfigError(core.ModuleRecommend, "catalog handle is required")
	}
	aggregator, err := taste.NewAggregator(cfg.Taste)
	if err != nil {
		return nil, err
	}
	p, err := config.ServingPipeline(cfg, handle)
	if err != nil {
		return nil, err
	}
	return &Recommender{
		handle:     handle,
		pipeline:   p,
		aggregator: aggregator,
		defaults:   cfg.Serving,
		logger:     logger,
	}, nil
}

// Recommend 执行一次查询。空结果集是合法输出，不是错误。
func (r *Recommender) Recommend(ctx context.Context, q Query) ([]core.Recommendation, error) {
	start := time.Now()

	amount := q.Amount
	if amount <= 0 {
		amount = r.defaults.DefaultAmount
	}
	rctx := &core.RecommendContext{
		LikedIDs:         q.LikedIDs,
		Players:          q.Players,
		AvailableMinutes: q.AvailableMinutes,
		Amount:           amount,
		Mode:             q.Mode,
		Params:           q.Params,
	}
	if err := rctx.Validate(); err != nil {
		return nil, err
	}

	catalog := r.handle.Catalog()
	if catalog == nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInternalError,
			"no catalog loaded")
	}

	liked, err := taste.ResolveLiked(catalog.Get, q.LikedIDs)
	if err != nil {
		return nil, err
	}
	rctx.LikedItems = liked

	centroids, err := r.aggregator.Centroids(liked)
	if err != nil {
		return nil, err
	}
	rctx.Centroids = centroids

	items, err := r.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	out := make([]core.Recommendation, 0, len(items))
	for i, item := range items {
		if item.Game == nil {
			continue
		}
		out = append(out, core.Recommendation{
			Game:        *item.Game,
			Score:       item.Score,
			Rank:        i + 1,
			Explanation: item.Explanation,
		})
	}

	r.logger.Debug().
		Int("liked", len(q.LikedIDs)).
		Int("centroids", len(centroids)).
		Int("results", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation served")
	return out, nil
}

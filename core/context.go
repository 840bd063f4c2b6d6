package core

import "github.com/rushteam/meeplekit/pkg/utils"

// RecommendContext 承载一次查询的偏好与场景约束，贯穿整个 Pipeline 透传。
// 每次请求新建一个，单次请求内只读（Centroids 由偏好聚合写入一次）。
type RecommendContext struct {
	// LikedIDs 是用户标记喜欢的游戏标识，查询的锚点。
	LikedIDs []string

	// Players 是本次游戏的人数；0 表示未指定（不做人数过滤）。
	Players int

	// AvailableMinutes 是可用游玩时长（分钟）；0 表示未指定（不做时长过滤）。
	AvailableMinutes int

	// Amount 是期望返回的推荐数量；<=0 表示不截断。
	Amount int

	// Mode 选择解释方式，默认 reference。
	Mode ExplainMode

	// Centroids 是偏好聚合产出的口味质心（行向量，已 L2 归一）。
	// 由 taste.Aggregator 写入，排序节点只读。
	Centroids [][]float64

	// LikedItems 是喜欢游戏解析出的目录条目，供参照物解释使用。
	LikedItems []*Item

	// Labels 是查询级标签，可驱动 Pipeline 行为（观测/实验分组等）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（自定义过滤表达式的求值环境等）。
	Params map[string]any
}

// LikedSet 返回喜欢游戏标识的集合形式，便于排除判断。
func (rctx *RecommendContext) LikedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(rctx.LikedIDs))
	for _, id := range rctx.LikedIDs {
		set[id] = struct{}{}
	}
	return set
}

// PutLabel 写入查询级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// Validate 做查询前置校验；LikedIDs 为空是 INVALID_INPUT。
func (rctx *RecommendContext) Validate() error {
	if len(rctx.LikedIDs) == 0 {
		return NewDomainError(ModuleRecommend, ErrorCodeInvalidInput,
			"at least one liked game is required to anchor recommendations")
	}
	if rctx.Players < 0 {
		return NewDomainError(ModuleRecommend, ErrorCodeInvalidInput, "players must not be negative")
	}
	if rctx.AvailableMinutes < 0 {
		return NewDomainError(ModuleRecommend, ErrorCodeInvalidInput, "available minutes must not be negative")
	}
	return nil
}

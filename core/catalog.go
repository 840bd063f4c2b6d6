package core

import "time"

// CatalogEntry 是嵌入目录中的一行：定长稠密向量 + 可解释元数据。
// 目录产出后只读，是推荐查询的部署单元。
type CatalogEntry struct {
	Game   Game      `json:"game"`
	Vector []float64 `json:"vector"`
}

// Item 把目录条目转成链路内的候选承载结构。
func (e *CatalogEntry) Item() *Item {
	it := NewItem(e.Game.ID)
	it.Game = &e.Game
	it.Vector = e.Vector
	return it
}

// RunMetadata 记录一次训练 run 的超参数与输入统计。
// 一个 run 一条记录，永不修改，只被更新的 run 取代。
type RunMetadata struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	// 输入统计
	RowsBeforeFilters int `json:"rows_before_filters"`
	RowsAfterFilters  int `json:"rows_after_filters"`

	// 嵌入结构
	Dimensions int  `json:"dimensions"`
	Normalized bool `json:"normalized"`

	// Hyperparams 是训练时生效的配置快照（序列化后的 YAML/JSON 片段）。
	Hyperparams map[string]any `json:"hyperparams,omitempty"`

	// Evaluation 是训练侧的结构性评估（按标签邻居组计算的 recall@k）。
	Evaluation *RecallEvaluation `json:"evaluation,omitempty"`
}

// RecallEvaluation 是基于共享标签邻居组的 recall@k 评估结果。
type RecallEvaluation struct {
	TopK       int     `json:"top_k"`
	HitRate    float64 `json:"hit_rate"`
	MeanRecall float64 `json:"mean_recall"`
	NumQueries int     `json:"num_queries"`
}

// Recommendation 是最终输出记录：游戏、相似度分数与解释块。
// 临时对象，可由目录 + 查询重算得到。
type Recommendation struct {
	Game        Game         `json:"game"`
	Score       float64      `json:"score"`
	Rank        int          `json:"rank"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

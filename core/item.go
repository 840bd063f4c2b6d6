package core

import "github.com/rushteam/meeplekit/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选游戏、向量、分数、标签。
// Labels 用于解释与观测；Score 用于排序决策。
type Item struct {
	ID     string
	Score  float64
	Game   *Game
	Vector []float64
	Labels map[string]utils.Label

	// Explanation 由解释节点填充，排序节点不读不写。
	Explanation *Explanation
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Influence 是解释条目的影响方向。
type Influence string

const (
	InfluencePositive Influence = "positive"
	InfluenceNeutral  Influence = "neutral"
	InfluenceNegative Influence = "negative"
)

// ExplainMode 选择解释方式：参照物（最相似的喜欢游戏）或共享特征。
type ExplainMode string

const (
	ExplainReference ExplainMode = "reference"
	ExplainFeature   ExplainMode = "feature"
)

// Explanation 是单个推荐的解释块（reference / feature 二选一的 tagged variant）。
type Explanation struct {
	Mode       ExplainMode       `json:"mode"`
	References []ReferenceDetail `json:"references,omitempty"`
	Features   []FeatureDetail   `json:"features,omitempty"`
}

// ReferenceDetail 指向嵌入空间中与候选最相似的喜欢游戏。
type ReferenceDetail struct {
	GameID     string    `json:"game_id"`
	Name       string    `json:"name"`
	Similarity float64   `json:"similarity"`
	Influence  Influence `json:"influence"`
}

// FeatureDetail 是候选与喜欢集合共享（或缺失）的一个可解释特征维度。
type FeatureDetail struct {
	Label     string    `json:"label"`
	Field     TagField  `json:"field"`
	Weight    float64   `json:"weight"`
	Influence Influence `json:"influence"`
}

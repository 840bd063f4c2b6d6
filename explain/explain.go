package explain

import (
	"context"
	"sort"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pipeline"
	"github.com/rushteam/meeplekit/pkg/vecmath"
)

// Config 控制解释生成。
type Config struct {
	// MaxReferences 参照物解释最多引用的喜欢游戏数，默认 3。
	MaxReferences int `yaml:"max_references" json:"max_references"`
	// MaxFeatures 特征解释最多列出的特征数，默认 5。
	MaxFeatures int `yaml:"max_features" json:"max_features"`
	// PositiveThreshold 相似度不低于该值标记 positive，默认 0.6。
	PositiveThreshold float64 `yaml:"positive_threshold" json:"positive_threshold"`
	// NeutralThreshold 相似度不低于该值标记 neutral，低于标记 negative，默认 0.25。
	NeutralThreshold float64 `yaml:"neutral_threshold" json:"neutral_threshold"`
	// FieldWeights 各标签来源字段的块权重，特征贡献权重按其放大；
	// 未配置的字段按 1 处理。通常由特征配置的文本块权重推导。
	FieldWeights map[core.TagField]float64 `yaml:"field_weights" json:"field_weights"`
}

const (
	defaultMaxReferences     = 3
	defaultMaxFeatures       = 5
	defaultPositiveThreshold = 0.6
	defaultNeutralThreshold  = 0.25
)

// Node 为每个候选生成解释块。只做注解，从不改变候选顺序和分数。
type Node struct {
	config Config
}

// NewNode 创建解释节点，零值配置回落到默认值。
func NewNode(config Config) (*Node, error) {
	if config.MaxReferences == 0 {
		config.MaxReferences = defaultMaxReferences
	}
	if config.MaxFeatures == 0 {
		config.MaxFeatures = defaultMaxFeatures
	}
	if config.PositiveThreshold == 0 {
		config.PositiveThreshold = defaultPositiveThreshold
	}
	if config.NeutralThreshold == 0 {
		config.NeutralThreshold = defaultNeutralThreshold
	}
	if config.MaxReferences < 0 || config.MaxFeatures < 0 {
		return nil, core.NewConfigError(core.ModuleExplain, "max_references and max_features must not be negative")
	}
	if config.NeutralThreshold > config.PositiveThreshold {
		return nil, core.NewConfigError(core.ModuleExplain,
			"neutral_threshold %v must not exceed positive_threshold %v",
			config.NeutralThreshold, config.PositiveThreshold)
	}
	return &Node{config: config}, nil
}

func (n *Node) Name() string {
	return "explain.node"
}

func (n *Node) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *Node) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	mode := rctx.Mode
	if mode == "" {
		mode = core.ExplainReference
	}

	switch mode {
	case core.ExplainReference:
		for _, item := range items {
			item.Explanation = n.referenceExplanation(rctx, item)
		}
	case core.ExplainFeature:
		likedTags := likedTagFrequency(rctx.LikedItems)
		for _, item := range items {
			item.Explanation = n.featureExplanation(likedTags, len(rctx.LikedItems), item)
		}
	default:
		return nil, core.NewDomainError(core.ModuleExplain, core.ErrorCodeNotSupported,
			"unknown explain mode "+string(mode))
	}
	return items, nil
}

// referenceExplanation 找出与候选最相似的喜欢游戏作为参照物。
func (n *Node) referenceExplanation(rctx *core.RecommendContext, item *core.Item) *core.Explanation {
	refs := make([]core.ReferenceDetail, 0, len(rctx.LikedItems))
	for _, liked := range rctx.LikedItems {
		if liked.Game == nil || len(liked.Vector) == 0 || len(item.Vector) == 0 {
			continue
		}
		sim := vecmath.Cosine(item.Vector, liked.Vector)
		refs = append(refs, core.ReferenceDetail{
			GameID:     liked.Game.ID,
			Name:       liked.Game.Name,
			Similarity: sim,
			Influence:  n.influence(sim),
		})
	}
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Similarity != refs[j].Similarity {
			return refs[i].Similarity > refs[j].Similarity
		}
		return refs[i].GameID < refs[j].GameID
	})
	if len(refs) > n.config.MaxReferences {
		refs = refs[:n.config.MaxReferences]
	}
	return &core.Explanation{Mode: core.ExplainReference, References: refs}
}

// featureExplanation 列出候选与喜欢集合共享的标签（positive）
// 以及候选独有的标签（negative）。
// 权重 = 标签在喜欢集合中的出现比例 × 来源字段的块权重。
func (n *Node) featureExplanation(likedTags map[core.TagValue]int, likedCount int, item *core.Item) *core.Explanation {
	if item.Game == nil {
		return &core.Explanation{Mode: core.ExplainFeature}
	}

	var shared, own []core.FeatureDetail
	for _, tag := range item.Game.Tags() {
		count := likedTags[tag]
		if count > 0 && likedCount > 0 {
			shared = append(shared, core.FeatureDetail{
				Label:     tag.Label,
				Field:     tag.Field,
				Weight:    float64(count) / float64(likedCount) * n.fieldWeight(tag.Field),
				Influence: core.InfluencePositive,
			})
		} else {
			own = append(own, core.FeatureDetail{
				Label:     tag.Label,
				Field:     tag.Field,
				Influence: core.InfluenceNegative,
			})
		}
	}
	sort.SliceStable(shared, func(i, j int) bool {
		if shared[i].Weight != shared[j].Weight {
			return shared[i].Weight > shared[j].Weight
		}
		return shared[i].Label < shared[j].Label
	})
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].Label < own[j].Label
	})

	features := append(shared, own...)
	if len(features) > n.config.MaxFeatures {
		features = features[:n.config.MaxFeatures]
	}
	return &core.Explanation{Mode: core.ExplainFeature, Features: features}
}

func (n *Node) fieldWeight(field core.TagField) float64 {
	if w, ok := n.config.FieldWeights[field]; ok && w > 0 {
		return w
	}
	return 1
}

func (n *Node) influence(similarity float64) core.Influence {
	switch {
	case similarity >= n.config.PositiveThreshold:
		return core.InfluencePositive
	case similarity >= n.config.NeutralThreshold:
		return core.InfluenceNeutral
	default:
		return core.InfluenceNegative
	}
}

// likedTagFrequency 统计每个标签被多少个喜欢游戏携带。
func likedTagFrequency(liked []*core.Item) map[core.TagValue]int {
	freq := make(map[core.TagValue]int)
	for _, it := range liked {
		if it.Game == nil {
			continue
		}
		seen := make(map[core.TagValue]struct{})
		for _, tag := range it.Game.Tags() {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			freq[tag]++
		}
	}
	return freq
}

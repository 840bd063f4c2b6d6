package embed

import (
	"sort"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pkg/vecmath"
)

// EvaluationConfig 控制训练侧的结构性评估。
type EvaluationConfig struct {
	// TopK 每个查询取最近的 K 个邻居；0 跳过评估。
	TopK int `yaml:"top_k" json:"top_k"`
	// MinSharedTags 相关判定：共享标签数不低于该值即视为相关。默认 2。
	MinSharedTags int `yaml:"min_shared_tags" json:"min_shared_tags"`
	// MaxQueries 评估查询数上限（取目录前缀），0 表示全量。
	MaxQueries int `yaml:"max_queries" json:"max_queries"`
}

// EvaluateRecall 用共享标签邻居组评估嵌入质量。
// 没有任何游戏构成邻居组时返回 nil（小目录属正常情况）。
func EvaluateRecall(entries []core.CatalogEntry, cfg EvaluationConfig) *core.RecallEvaluation {
	if cfg.TopK <= 0 || len(entries) < 2 {
		return nil
	}
	minShared := cfg.MinSharedTags
	if minShared <= 0 {
		minShared = 2
	}

	tagSets := make([]map[string]struct{}, len(entries))
	for i := range entries {
		tags := entries[i].Game.Tags()
		set := make(map[string]struct{}, len(tags))
		for _, tv := range tags {
			set[string(tv.Field)+":"+tv.Label] = struct{}{}
		}
		tagSets[i] = set
	}

	limit := len(entries)
	if cfg.MaxQueries > 0 && cfg.MaxQueries < limit {
		limit = cfg.MaxQueries
	}

	var hits, queries int
	var recallSum float64
	for qi := 0; qi < limit; qi++ {
		relevant := make(map[int]struct{})
		for ci := range entries {
			if ci == qi {
				continue
			}
			if sharedTags(tagSets[qi], tagSets[ci]) >= minShared {
				relevant[ci] = struct{}{}
			}
		}
		if len(relevant) == 0 {
			continue
		}
		queries++

		top := nearestIndices(entries, qi, cfg.TopK)
		found := 0
		for _, ci := range top {
			if _, ok := relevant[ci]; ok {
				found++
			}
		}
		if found > 0 {
			hits++
		}
		denom := len(relevant)
		if cfg.TopK < denom {
			denom = cfg.TopK
		}
		recallSum += float64(found) / float64(denom)
	}

	if queries == 0 {
		return nil
	}
	return &core.RecallEvaluation{
		TopK:       cfg.TopK,
		HitRate:    float64(hits) / float64(queries),
		MeanRecall: recallSum / float64(queries),
		NumQueries: queries,
	}
}

func sharedTags(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for tag := range a {
		if _, ok := b[tag]; ok {
			count++
		}
	}
	return count
}

// nearestIndices 返回按余弦相似度降序的前 k 个邻居下标（排除自身）。
func nearestIndices(entries []core.CatalogEntry, qi, k int) []int {
	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(entries)-1)
	for ci := range entries {
		if ci == qi {
			continue
		}
		candidates = append(candidates, scored{ci, vecmath.Cosine(entries[qi].Vector, entries[ci].Vector)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return entries[candidates[i].idx].Game.ID < entries[candidates[j].idx].Game.ID
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = candidates[i].idx
	}
	return out
}

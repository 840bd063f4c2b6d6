package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// 过滤节点记录剔除原因、排序节点记录聚合策略、解释节点记录参照来源，
// 都通过 Label 落在 Item / RecommendContext 上。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / explain / rule ...
}

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

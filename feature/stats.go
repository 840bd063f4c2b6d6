package feature

import (
	"math"
	"sort"
)

// FeatureStatistics 特征统计信息
type FeatureStatistics struct {
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Median float64
	P25    float64
	P75    float64
}

// ComputeStatistics 计算一列数值的统计信息；NaN 值被跳过。
func ComputeStatistics(values []float64) *FeatureStatistics {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return &FeatureStatistics{}
	}

	sorted := make([]float64, len(clean))
	copy(sorted, clean)
	sort.Float64s(sorted)

	stats := &FeatureStatistics{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
	}

	sum := 0.0
	for _, v := range clean {
		sum += v
	}
	stats.Mean = sum / float64(len(clean))

	variance := 0.0
	for _, v := range clean {
		variance += (v - stats.Mean) * (v - stats.Mean)
	}
	stats.Std = math.Sqrt(variance / float64(len(clean)))

	stats.Median = Percentile(sorted, 0.5)
	stats.P25 = Percentile(sorted, 0.25)
	stats.P75 = Percentile(sorted, 0.75)

	return stats
}

// Percentile 计算已升序排序切片的 p 分位数（线性插值）。
// 流行度分位截断等阈值计算也走这里，保证口径一致。
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

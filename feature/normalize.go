package feature

import "math"

// Normalizer 是数值列归一化/标准化接口。先 Fit 全列，再逐值 Apply。
type Normalizer interface {
	// Fit 根据整列取值拟合参数；NaN 视为缺失。
	Fit(values []float64)
	// Apply 归一化单个值；NaN（缺失）映射到中心值对应的输出。
	Apply(value float64) float64
}

// ZScoreNormalizer Z-score 标准化（Standardization）
// 公式: z = (x - μ) / σ
// 特点: 均值变为 0，标准差变为 1；缺失值落在 0。
type ZScoreNormalizer struct {
	Mean float64
	Std  float64
}

func (n *ZScoreNormalizer) Fit(values []float64) {
	stats := ComputeStatistics(values)
	n.Mean = stats.Mean
	n.Std = stats.Std
}

func (n *ZScoreNormalizer) Apply(value float64) float64 {
	if math.IsNaN(value) {
		value = n.Mean
	}
	if n.Std > 0 {
		return (value - n.Mean) / n.Std
	}
	return 0
}

// MinMaxNormalizer Min-Max 归一化
// 公式: x' = (x - min) / (max - min)
// 特点: 将值缩放到 [0, 1] 区间；缺失值落在区间中点。
type MinMaxNormalizer struct {
	Min float64
	Max float64
}

func (n *MinMaxNormalizer) Fit(values []float64) {
	stats := ComputeStatistics(values)
	n.Min = stats.Min
	n.Max = stats.Max
}

func (n *MinMaxNormalizer) Apply(value float64) float64 {
	rangeVal := n.Max - n.Min
	if math.IsNaN(value) {
		if rangeVal > 0 {
			return 0.5
		}
		return 0
	}
	if rangeVal > 0 {
		return (value - n.Min) / rangeVal
	}
	return 0
}

// 归一化策略名称（配置取值）
const (
	ScalingZScore = "zscore"
	ScalingMinMax = "minmax"
)

// NewNormalizer 按策略名创建归一化器；未知策略返回 nil。
func NewNormalizer(strategy string) Normalizer {
	switch strategy {
	case ScalingZScore:
		return &ZScoreNormalizer{}
	case ScalingMinMax:
		return &MinMaxNormalizer{}
	default:
		return nil
	}
}

// ScalerState 是拟合后缩放器参数的可序列化形态，随模型落盘，
// 使加载后的 run 能对新样本复现同一套缩放。
type ScalerState struct {
	Scaling string  `json:"scaling"`
	Mean    float64 `json:"mean,omitempty"`
	Std     float64 `json:"std,omitempty"`
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
}

// StateOf 捕获一个已 Fit 的缩放器的参数。
func StateOf(scaling string, n Normalizer) ScalerState {
	switch v := n.(type) {
	case *ZScoreNormalizer:
		return ScalerState{Scaling: scaling, Mean: v.Mean, Std: v.Std}
	case *MinMaxNormalizer:
		return ScalerState{Scaling: scaling, Min: v.Min, Max: v.Max}
	default:
		return ScalerState{Scaling: scaling}
	}
}

// Apply 按落盘参数缩放单个值，语义与拟合时的归一化器一致。
// 未知策略按恒等处理，缺失值落 0。
func (s ScalerState) Apply(value float64) float64 {
	switch s.Scaling {
	case ScalingZScore:
		n := ZScoreNormalizer{Mean: s.Mean, Std: s.Std}
		return n.Apply(value)
	case ScalingMinMax:
		n := MinMaxNormalizer{Min: s.Min, Max: s.Max}
		return n.Apply(value)
	default:
		if math.IsNaN(value) {
			return 0
		}
		return value
	}
}

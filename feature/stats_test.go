package feature

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestComputeStatistics 测试统计量计算与 NaN 跳过
func TestComputeStatistics(t *testing.T) {
	stats := ComputeStatistics([]float64{1, 2, math.NaN(), 3, 4})
	if !almostEqual(stats.Mean, 2.5) {
		t.Errorf("期望均值 2.5，实际 %v", stats.Mean)
	}
	if !almostEqual(stats.Min, 1) || !almostEqual(stats.Max, 4) {
		t.Errorf("期望 min=1 max=4，实际 min=%v max=%v", stats.Min, stats.Max)
	}
	if !almostEqual(stats.Median, 2.5) {
		t.Errorf("期望中位数 2.5，实际 %v", stats.Median)
	}
	// 总体标准差: sqrt(((1.5)^2+(0.5)^2+(0.5)^2+(1.5)^2)/4) = sqrt(1.25)
	if !almostEqual(stats.Std, math.Sqrt(1.25)) {
		t.Errorf("期望标准差 %v，实际 %v", math.Sqrt(1.25), stats.Std)
	}

	empty := ComputeStatistics([]float64{math.NaN()})
	if empty.Mean != 0 || empty.Std != 0 {
		t.Errorf("全 NaN 输入期望零值统计: %+v", empty)
	}
}

// TestPercentile 线性插值分位数
func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	tests := []struct {
		p        float64
		expected float64
	}{
		{0, 10},
		{0.5, 25},
		{1, 40},
		{0.25, 17.5},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); !almostEqual(got, tt.expected) {
			t.Errorf("p=%v: 期望 %v，实际 %v", tt.p, tt.expected, got)
		}
	}
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("空切片期望 0，实际 %v", got)
	}
}

// TestZScoreNormalizer z-score 标准化与缺失值
func TestZScoreNormalizer(t *testing.T) {
	n := &ZScoreNormalizer{}
	n.Fit([]float64{2, 4, 6})
	if !almostEqual(n.Mean, 4) {
		t.Fatalf("期望均值 4，实际 %v", n.Mean)
	}
	if got := n.Apply(4); !almostEqual(got, 0) {
		t.Errorf("均值处期望 0，实际 %v", got)
	}
	if got := n.Apply(math.NaN()); !almostEqual(got, 0) {
		t.Errorf("缺失值期望落在 0，实际 %v", got)
	}
	up := n.Apply(6)
	if up <= 0 {
		t.Errorf("高于均值期望正数，实际 %v", up)
	}

	// 常数列：标准差为 0，所有输出为 0
	c := &ZScoreNormalizer{}
	c.Fit([]float64{5, 5, 5})
	if got := c.Apply(5); got != 0 {
		t.Errorf("常数列期望 0，实际 %v", got)
	}
}

// TestMinMaxNormalizer min-max 归一化与缺失值
func TestMinMaxNormalizer(t *testing.T) {
	n := &MinMaxNormalizer{}
	n.Fit([]float64{10, 20, 30})
	if got := n.Apply(10); !almostEqual(got, 0) {
		t.Errorf("最小值期望 0，实际 %v", got)
	}
	if got := n.Apply(30); !almostEqual(got, 1) {
		t.Errorf("最大值期望 1，实际 %v", got)
	}
	if got := n.Apply(math.NaN()); !almostEqual(got, 0.5) {
		t.Errorf("缺失值期望中点 0.5，实际 %v", got)
	}
}

// TestNewNormalizer 策略名映射
func TestNewNormalizer(t *testing.T) {
	if _, ok := NewNormalizer(ScalingZScore).(*ZScoreNormalizer); !ok {
		t.Error("zscore 应返回 ZScoreNormalizer")
	}
	if _, ok := NewNormalizer(ScalingMinMax).(*MinMaxNormalizer); !ok {
		t.Error("minmax 应返回 MinMaxNormalizer")
	}
	if NewNormalizer("log") != nil {
		t.Error("未知策略应返回 nil")
	}
}

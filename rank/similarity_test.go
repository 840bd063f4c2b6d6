package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/meeplekit/core"
)

func scored(id string, numRatings int, vector []float64) *core.Item {
	it := core.NewItem(id)
	it.Game = &core.Game{ID: id, NumRatings: numRatings}
	it.Vector = vector
	return it
}

// TestCentroidSimilarity_MaxAggregation 最高质心相似度打分与降序排序
func TestCentroidSimilarity_MaxAggregation(t *testing.T) {
	node := &CentroidSimilarityNode{Aggregation: AggregationMax, Normalized: true}
	rctx := &core.RecommendContext{
		Centroids: [][]float64{{1, 0}, {0, 1}},
	}
	items := []*core.Item{
		scored("far", 10, []float64{-1, 0}),
		scored("x-axis", 10, []float64{1, 0}),
		scored("diag", 10, []float64{math.Sqrt2 / 2, math.Sqrt2 / 2}),
	}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].ID != "x-axis" {
		t.Errorf("期望 x-axis 最高分，实际 %s", out[0].ID)
	}
	if math.Abs(out[0].Score-1) > 1e-9 {
		t.Errorf("x-axis 期望分数 1，实际 %v", out[0].Score)
	}
	if out[2].ID != "far" {
		t.Errorf("期望 far 最低分，实际 %s", out[2].ID)
	}
	// far 的 max(-1, 0) = 0
	if math.Abs(out[2].Score-0) > 1e-9 {
		t.Errorf("far 期望分数 0，实际 %v", out[2].Score)
	}
}

// TestCentroidSimilarity_MaxGEMean 同一候选同一质心集合下 max >= mean
func TestCentroidSimilarity_MaxGEMean(t *testing.T) {
	centroids := [][]float64{{1, 0}, {0, 1}, {-0.5, 0.5}}
	vectors := [][]float64{
		{0.3, 0.7}, {1, 0}, {-0.2, -0.9}, {0.5, 0.5},
	}
	maxNode := &CentroidSimilarityNode{Aggregation: AggregationMax}
	meanNode := &CentroidSimilarityNode{Aggregation: AggregationMean}
	for _, v := range vectors {
		m := maxNode.aggregate(centroids, AggregationMax, v)
		a := meanNode.aggregate(centroids, AggregationMean, v)
		if m < a {
			t.Errorf("向量 %v: max %v < mean %v", v, m, a)
		}
	}
}

// TestCentroidSimilarity_TieBreak 同分按评分数降序，再按标识升序
func TestCentroidSimilarity_TieBreak(t *testing.T) {
	node := &CentroidSimilarityNode{Normalized: true}
	rctx := &core.RecommendContext{Centroids: [][]float64{{1, 0}}}
	items := []*core.Item{
		scored("b", 100, []float64{1, 0}),
		scored("a", 100, []float64{1, 0}),
		scored("c", 500, []float64{1, 0}),
	}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b"}
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("位置 %d 期望 %s，实际 %s", i, id, out[i].ID)
		}
	}
}

// TestCentroidSimilarity_Parallel 并发分片打分与串行结果一致
func TestCentroidSimilarity_Parallel(t *testing.T) {
	centroids := [][]float64{{1, 0}, {0.5, 0.5}}
	build := func() []*core.Item {
		items := make([]*core.Item, 100)
		for i := range items {
			items[i] = scored(string(rune('a'+i%26))+string(rune('0'+i/26)), i, []float64{float64(i) / 100, 1 - float64(i)/100})
		}
		return items
	}
	serial := &CentroidSimilarityNode{}
	parallel := &CentroidSimilarityNode{Parallelism: 4, ChunkSize: 10}
	rctx1 := &core.RecommendContext{Centroids: centroids}
	rctx2 := &core.RecommendContext{Centroids: centroids}
	out1, err := serial.Process(context.Background(), rctx1, build())
	if err != nil {
		t.Fatal(err)
	}
	out2, err := parallel.Process(context.Background(), rctx2, build())
	if err != nil {
		t.Fatal(err)
	}
	for i := range out1 {
		if out1[i].ID != out2[i].ID || math.Abs(out1[i].Score-out2[i].Score) > 1e-12 {
			t.Fatalf("位置 %d 不一致: %s/%v vs %s/%v", i, out1[i].ID, out1[i].Score, out2[i].ID, out2[i].Score)
		}
	}
}

// TestCentroidSimilarity_Errors 缺质心与缺向量
func TestCentroidSimilarity_Errors(t *testing.T) {
	node := &CentroidSimilarityNode{}
	rctx := &core.RecommendContext{}
	if _, err := node.Process(context.Background(), rctx, []*core.Item{scored("a", 1, []float64{1})}); err == nil {
		t.Error("无质心应报错")
	}
	rctx.Centroids = [][]float64{{1, 0}}
	if _, err := node.Process(context.Background(), rctx, []*core.Item{core.NewItem("noVec")}); err == nil {
		t.Error("候选缺向量应报错")
	}
}

// TestParseAggregation 聚合方式解析
func TestParseAggregation(t *testing.T) {
	if agg, err := ParseAggregation(""); err != nil || agg != AggregationMax {
		t.Errorf("空名称应取默认 max: %v %v", agg, err)
	}
	if agg, err := ParseAggregation("mean"); err != nil || agg != AggregationMean {
		t.Errorf("mean 解析失败: %v %v", agg, err)
	}
	if _, err := ParseAggregation("median"); err == nil {
		t.Error("未知聚合方式应报错")
	}
}

package filter

import (
	"context"
	"testing"

	"github.com/rushteam/meeplekit/core"
)

func candidate(id string, minP, maxP, minutes int) *core.Item {
	it := core.NewItem(id)
	it.Game = &core.Game{ID: id, MinPlayers: minP, MaxPlayers: maxP, PlayingTimeMinutes: minutes}
	return it
}

// TestPlayerCountFilter 人数过滤与缺失值语义
func TestPlayerCountFilter(t *testing.T) {
	f := &PlayerCountFilter{}
	tests := []struct {
		name    string
		players int
		item    *core.Item
		remove  bool
	}{
		{"in range", 3, candidate("a", 2, 4, 60), false},
		{"below range", 1, candidate("a", 2, 4, 60), true},
		{"above range", 5, candidate("a", 2, 4, 60), true},
		{"unspecified query", 0, candidate("a", 2, 4, 60), false},
		{"missing bounds removed", 3, candidate("a", 0, 0, 60), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := &core.RecommendContext{Players: tt.players}
			got, err := f.ShouldFilter(context.Background(), rctx, tt.item)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.remove {
				t.Errorf("期望 remove=%v，实际 %v", tt.remove, got)
			}
		})
	}
}

// TestPlayTimeFilter 时长过滤与缺失值语义
func TestPlayTimeFilter(t *testing.T) {
	f := &PlayTimeFilter{}
	rctx := &core.RecommendContext{AvailableMinutes: 90}
	if got, _ := f.ShouldFilter(context.Background(), rctx, candidate("a", 2, 4, 60)); got {
		t.Error("60 分钟的游戏在 90 分钟内应保留")
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, candidate("a", 2, 4, 120)); !got {
		t.Error("120 分钟的游戏应剔除")
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, candidate("a", 2, 4, 0)); !got {
		t.Error("时长缺失且约束生效时应剔除")
	}
	none := &core.RecommendContext{}
	if got, _ := f.ShouldFilter(context.Background(), none, candidate("a", 2, 4, 0)); got {
		t.Error("未指定时长时应放行")
	}
}

// TestLikedFilter 兜底排除喜欢集合
func TestLikedFilter(t *testing.T) {
	f := &LikedFilter{}
	rctx := &core.RecommendContext{LikedIDs: []string{"g1", "g2"}}
	if got, _ := f.ShouldFilter(context.Background(), rctx, candidate("g1", 2, 4, 60)); !got {
		t.Error("喜欢的游戏应剔除")
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, candidate("g9", 2, 4, 60)); got {
		t.Error("其他游戏应保留")
	}
}

// TestExprFilter CEL 表达式过滤
func TestExprFilter(t *testing.T) {
	f, err := NewExprFilter("game.playing_time_minutes <= 90")
	if err != nil {
		t.Fatalf("编译失败: %v", err)
	}
	rctx := &core.RecommendContext{}
	if got, _ := f.ShouldFilter(context.Background(), rctx, candidate("a", 2, 4, 60)); got {
		t.Error("表达式为真应保留")
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, candidate("a", 2, 4, 120)); !got {
		t.Error("表达式为假应剔除")
	}

	if _, err := NewExprFilter("game.playing_time <> 1"); err == nil {
		t.Error("非法表达式应报错")
	} else if !core.IsConfigInvalid(err) {
		t.Errorf("期望 CONFIG_INVALID: %v", err)
	}

	// 空表达式恒不过滤
	empty, err := NewExprFilter("")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := empty.ShouldFilter(context.Background(), rctx, candidate("a", 2, 4, 999)); got {
		t.Error("空表达式不应过滤")
	}
}

// TestFilterNode 组合过滤与原因标签
func TestFilterNode(t *testing.T) {
	node := &FilterNode{Filters: []Filter{&PlayerCountFilter{}, &PlayTimeFilter{}}}
	rctx := &core.RecommendContext{Players: 3, AvailableMinutes: 90}
	items := []*core.Item{
		candidate("keep", 2, 4, 60),
		candidate("too-long", 2, 4, 120),
		candidate("wrong-players", 5, 8, 60),
	}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "keep" {
		t.Fatalf("期望只保留 keep，实际 %d 个", len(out))
	}
	// 被剔除的候选带原因标签
	if lbl, ok := items[1].Labels["filtered"]; !ok || lbl.Source != "filter.play_time" {
		t.Errorf("期望 filtered 标签来自 filter.play_time: %+v", items[1].Labels)
	}
	if lbl, ok := items[2].Labels["filtered"]; !ok || lbl.Source != "filter.player_count" {
		t.Errorf("期望 filtered 标签来自 filter.player_count: %+v", items[2].Labels)
	}
}

// TestFilterNode_EmptyResult 全部剔除是合法结果，不报错
func TestFilterNode_EmptyResult(t *testing.T) {
	node := &FilterNode{Filters: []Filter{&PlayerCountFilter{}}}
	rctx := &core.RecommendContext{Players: 10}
	out, err := node.Process(context.Background(), rctx, []*core.Item{candidate("a", 2, 4, 60)})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("期望空结果集，实际 %d 个", len(out))
	}
}

package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/meeplekit/core"
)

func items(n int) []*core.Item {
	out := make([]*core.Item, n)
	for i := range out {
		out[i] = core.NewItem(string(rune('a' + i)))
	}
	return out
}

// TestTopNNode 截断语义：显式 N 优先，回落到查询 Amount
func TestTopNNode(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		amount   int
		in       int
		expected int
	}{
		{"explicit n", 2, 0, 5, 2},
		{"fallback to amount", 0, 3, 5, 3},
		{"no limit", 0, 0, 5, 5},
		{"fewer than n", 10, 0, 5, 5},
		{"n takes precedence", 2, 4, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &TopNNode{N: tt.n}
			rctx := &core.RecommendContext{Amount: tt.amount}
			out, err := node.Process(context.Background(), rctx, items(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != tt.expected {
				t.Errorf("期望 %d 个，实际 %d", tt.expected, len(out))
			}
		})
	}
}

// TestTopNNode_KeepsOrder 截断不改变顺序
func TestTopNNode_KeepsOrder(t *testing.T) {
	node := &TopNNode{N: 3}
	in := items(5)
	out, err := node.Process(context.Background(), &core.RecommendContext{}, in)
	if err != nil {
		t.Fatal(err)
	}
	for i := range out {
		if out[i].ID != in[i].ID {
			t.Fatalf("位置 %d 顺序被改变", i)
		}
	}
}

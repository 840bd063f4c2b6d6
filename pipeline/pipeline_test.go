package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/meeplekit/core"
)

type fakeNode struct {
	name string
	kind Kind
	fn   func(items []*core.Item) []*core.Item
}

func (n *fakeNode) Name() string { return n.name }
func (n *fakeNode) Kind() Kind   { return n.kind }
func (n *fakeNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return n.fn(items), nil
}

// TestPipeline_Run 节点按序执行，输出串联
func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		&fakeNode{name: "gen", kind: KindRecall, fn: func(items []*core.Item) []*core.Item {
			return []*core.Item{core.NewItem("a"), core.NewItem("b"), core.NewItem("c")}
		}},
		&fakeNode{name: "drop", kind: KindFilter, fn: func(items []*core.Item) []*core.Item {
			return items[:2]
		}},
	}}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("链式执行结果不对: %v", out)
	}
}

// TestLoadFromYAML 配置解析与工厂构建
func TestLoadFromYAML(t *testing.T) {
	content := `
pipeline:
  name: serving
  nodes:
    - type: noop
      config:
        limit: 5
`
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.Pipeline.Name != "serving" || len(cfg.Pipeline.Nodes) != 1 {
		t.Fatalf("配置不对: %+v", cfg)
	}
	if cfg.Pipeline.Nodes[0].Type != "noop" {
		t.Errorf("节点类型不对: %+v", cfg.Pipeline.Nodes[0])
	}

	factory := NewNodeFactory()
	factory.Register("noop", func(config map[string]interface{}) (Node, error) {
		return &fakeNode{name: "noop", kind: KindPostProcess, fn: func(items []*core.Item) []*core.Item {
			return items
		}}, nil
	})
	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if len(p.Nodes) != 1 || p.Nodes[0].Name() != "noop" {
		t.Errorf("Pipeline 不对: %+v", p.Nodes)
	}

	// 未注册类型报错
	cfg.Pipeline.Nodes[0].Type = "ghost"
	if _, err := cfg.BuildPipeline(factory); err == nil {
		t.Error("未注册类型应报错")
	}
}

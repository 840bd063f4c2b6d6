package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/meeplekit/core"
)

func sampleEntries() []core.CatalogEntry {
	return []core.CatalogEntry{
		{Game: core.Game{ID: "g1", Name: "Alpha"}, Vector: []float64{1, 0}},
		{Game: core.Game{ID: "g2", Name: "Beta"}, Vector: []float64{0, 1}},
	}
}

func sampleMeta(runID string, created time.Time) core.RunMetadata {
	return core.RunMetadata{
		RunID:            runID,
		CreatedAt:        created,
		RowsAfterFilters: 2,
		Dimensions:       2,
		Normalized:       true,
	}
}

// TestMemoryCatalog 索引查找与元数据
func TestMemoryCatalog(t *testing.T) {
	meta := sampleMeta("run-1", time.Now())
	c := NewMemoryCatalog(meta, sampleEntries())
	if len(c.Entries()) != 2 {
		t.Fatalf("期望 2 个条目，实际 %d", len(c.Entries()))
	}
	entry, ok := c.Get("g2")
	if !ok || entry.Game.Name != "Beta" {
		t.Errorf("Get(g2) 失败: %v %v", entry, ok)
	}
	if _, ok := c.Get("nope"); ok {
		t.Error("不存在的标识应返回 false")
	}
	if c.Metadata().RunID != "run-1" {
		t.Errorf("元数据不对: %+v", c.Metadata())
	}
}

// TestHandle_Swap 热切换后读方看到新目录
func TestHandle_Swap(t *testing.T) {
	h := NewHandle(nil)
	if h.Catalog() != nil || h.Entries() != nil {
		t.Error("未加载时应返回 nil")
	}
	first := NewMemoryCatalog(sampleMeta("run-1", time.Now()), sampleEntries())
	h.Swap(first)
	if h.Catalog().Metadata().RunID != "run-1" {
		t.Error("切换后应看到 run-1")
	}
	second := NewMemoryCatalog(sampleMeta("run-2", time.Now()), sampleEntries()[:1])
	h.Swap(second)
	if h.Catalog().Metadata().RunID != "run-2" || len(h.Entries()) != 1 {
		t.Error("切换后应看到 run-2")
	}
}

// TestFilesystemRunStore_RoundTrip 保存、读取与 latest 指针
func TestFilesystemRunStore_RoundTrip(t *testing.T) {
	s, err := NewFilesystemRunStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	meta := sampleMeta("run-1", time.Now().UTC().Truncate(time.Second))

	if err := s.SaveRun(ctx, meta, sampleEntries(), nil); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	gotMeta, gotEntries, err := s.LoadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if gotMeta.RunID != "run-1" || !gotMeta.Normalized {
		t.Errorf("元数据不对: %+v", gotMeta)
	}
	if len(gotEntries) != 2 || gotEntries[0].Game.ID != "g1" {
		t.Errorf("条目不对: %+v", gotEntries)
	}
	if len(gotEntries[0].Vector) != 2 {
		t.Errorf("向量丢失: %+v", gotEntries[0])
	}

	// latest 指针
	if _, _, err := s.LoadLatest(ctx); !core.IsNotFound(err) {
		t.Errorf("未发布时 LoadLatest 应 NOT_FOUND: %v", err)
	}
	if err := s.SetLatest(ctx, "run-1"); err != nil {
		t.Fatalf("切指针失败: %v", err)
	}
	latestMeta, _, err := s.LoadLatest(ctx)
	if err != nil || latestMeta.RunID != "run-1" {
		t.Errorf("LoadLatest 不对: %v %v", latestMeta, err)
	}
}

// TestFilesystemRunStore_Model 模型产物随 run 落盘并可回读
func TestFilesystemRunStore_Model(t *testing.T) {
	s, err := NewFilesystemRunStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	model := map[string]any{"dimensions": float64(2)}
	if err := s.SaveRun(ctx, sampleMeta("run-1", time.Now()), sampleEntries(), model); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	var got map[string]any
	if err := s.LoadModel(ctx, "run-1", &got); err != nil {
		t.Fatalf("读取模型失败: %v", err)
	}
	if got["dimensions"] != float64(2) {
		t.Errorf("模型不对: %v", got)
	}

	// 未落模型的 run
	if err := s.SaveRun(ctx, sampleMeta("run-2", time.Now()), sampleEntries(), nil); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadModel(ctx, "run-2", &got); !core.IsNotFound(err) {
		t.Errorf("无模型应 NOT_FOUND: %v", err)
	}
}

// TestFilesystemRunStore_LatestSwitches 新 run 发布后指针切换
func TestFilesystemRunStore_LatestSwitches(t *testing.T) {
	s, err := NewFilesystemRunStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	base := time.Now().UTC()
	for i, id := range []string{"run-a", "run-b"} {
		if err := s.SaveRun(ctx, sampleMeta(id, base.Add(time.Duration(i)*time.Minute)), sampleEntries(), nil); err != nil {
			t.Fatal(err)
		}
		if err := s.SetLatest(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	meta, _, err := s.LoadLatest(ctx)
	if err != nil || meta.RunID != "run-b" {
		t.Errorf("期望 latest 是 run-b: %v %v", meta, err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0] != "run-a" || runs[1] != "run-b" {
		t.Errorf("期望按创建时间升序: %v", runs)
	}
}

// TestFilesystemRunStore_Errors 非法 run 标识与缺失 run
func TestFilesystemRunStore_Errors(t *testing.T) {
	s, err := NewFilesystemRunStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.SaveRun(ctx, sampleMeta("", time.Now()), nil, nil); err == nil {
		t.Error("空 run 标识应报错")
	}
	if err := s.SaveRun(ctx, sampleMeta("../evil", time.Now()), nil, nil); err == nil {
		t.Error("带路径分隔符的 run 标识应报错")
	}
	if err := s.SetLatest(ctx, "ghost"); !core.IsNotFound(err) {
		t.Errorf("指向不存在的 run 应 NOT_FOUND: %v", err)
	}
	if _, _, err := s.LoadRun(ctx, "ghost"); !core.IsNotFound(err) {
		t.Errorf("读取不存在的 run 应 NOT_FOUND: %v", err)
	}
	if _, err := NewFilesystemRunStore(""); err == nil {
		t.Error("空根目录应报错")
	}
}

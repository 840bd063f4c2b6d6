package feature

import (
	"math"
	"testing"

	"github.com/rushteam/meeplekit/core"
)

func sampleGames() []core.Game {
	return []core.Game{
		{
			ID: "g1", Name: "Deep Sea Trading", Description: "Trade goods under the sea with deck building.",
			Mechanics: []string{"deck building", "trading"}, Categories: []string{"economic"},
			MinPlayers: 2, MaxPlayers: 4, PlayingTimeMinutes: 60,
			Complexity: 2.5, AvgRating: 7.8, NumRatings: 5000, YearPublished: 2018,
		},
		{
			ID: "g2", Name: "Castle Siege", Description: "Area control battles around a castle.",
			Mechanics: []string{"area control"}, Categories: []string{"war"},
			MinPlayers: 2, MaxPlayers: 5, PlayingTimeMinutes: 120,
			Complexity: 3.2, AvgRating: 7.2, NumRatings: 1200, YearPublished: 2015,
		},
		{
			ID: "g3", Name: "Garden Party", Description: "Light set collection for families.",
			Mechanics: []string{"set collection"}, Categories: []string{"family"},
			MinPlayers: 1, MaxPlayers: 6, PlayingTimeMinutes: 30,
			Complexity: 1.4, AvgRating: 6.9, NumRatings: 300, YearPublished: 2021,
		},
	}
}

func defaultConfig() Config {
	return Config{
		TextFields: []TextFieldConfig{
			{Field: TextFieldDescription, Weight: 1.0},
			{Field: TextFieldMechanics, Weight: 2.0},
		},
		Numeric: NumericConfig{
			Columns: []string{"complexity", "avg_rating"},
			Scaling: ScalingZScore,
			Weight:  0.5,
		},
	}
}

// TestNewBuilder_Validation 测试配置校验
func TestNewBuilder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		wantOK bool
	}{
		{"valid", func(c *Config) {}, true},
		{"no text fields", func(c *Config) { c.TextFields = nil }, false},
		{"unknown text field", func(c *Config) { c.TextFields[0].Field = "title" }, false},
		{"duplicate text field", func(c *Config) { c.TextFields[1].Field = TextFieldDescription }, false},
		{"non-positive text weight", func(c *Config) { c.TextFields[0].Weight = 0 }, false},
		{"unknown numeric column", func(c *Config) { c.Numeric.Columns = []string{"price"} }, false},
		{"unknown scaling", func(c *Config) { c.Numeric.Scaling = "log" }, false},
		{"non-positive numeric weight", func(c *Config) { c.Numeric.Weight = -1 }, false},
		{"ngram min above max", func(c *Config) { c.Tokenization.NGramMin = 3; c.Tokenization.NGramMax = 2 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			_, err := NewBuilder(cfg)
			if tt.wantOK && err != nil {
				t.Fatalf("期望配置合法，实际报错: %v", err)
			}
			if !tt.wantOK {
				if err == nil {
					t.Fatal("期望配置错误，实际通过了校验")
				}
				if !core.IsConfigInvalid(err) {
					t.Errorf("期望 CONFIG_INVALID 错误，实际: %v", err)
				}
			}
		})
	}
}

// TestBuilder_Build 测试矩阵行对齐与块结构
func TestBuilder_Build(t *testing.T) {
	b, err := NewBuilder(defaultConfig())
	if err != nil {
		t.Fatalf("创建 Builder 失败: %v", err)
	}
	m, report, err := b.Build(sampleGames())
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if m.Rows() != 3 {
		t.Fatalf("期望 3 行，实际 %d", m.Rows())
	}
	if report.RetainedRows != 3 || report.SourceRows != 3 {
		t.Errorf("报告行数不对: %+v", report)
	}
	// 行顺序与 IDs 对齐
	for _, block := range m.TextBlocks {
		if len(block.Docs) != m.Rows() {
			t.Errorf("文本块 %s 行数 %d != %d", block.Name, len(block.Docs), m.Rows())
		}
	}
	if len(m.Numeric.Rows) != m.Rows() || m.NumericColumns() != 2 {
		t.Errorf("数值块形状不对: %d x %d", len(m.Numeric.Rows), m.NumericColumns())
	}
	// mechanics 块应产出原子短语词元
	mech := m.TextBlocks[1]
	if mech.Name != TextFieldMechanics {
		t.Fatalf("期望第二块是 mechanics，实际 %s", mech.Name)
	}
	found := false
	for _, tok := range mech.Docs[0] {
		if tok == "deck_building" {
			found = true
		}
	}
	if !found {
		t.Errorf("mechanics 词元缺少 deck_building: %v", mech.Docs[0])
	}
}

// TestBuilder_Build_AllFiltered 全部被过滤时视为配置错误
func TestBuilder_Build_AllFiltered(t *testing.T) {
	cfg := defaultConfig()
	cfg.Filters.MaxYear = 1900
	b, err := NewBuilder(cfg)
	if err != nil {
		t.Fatalf("创建 Builder 失败: %v", err)
	}
	_, report, err := b.Build(sampleGames())
	if err == nil {
		t.Fatal("期望过滤后为空时报错")
	}
	if !core.IsConfigInvalid(err) {
		t.Errorf("期望 CONFIG_INVALID 错误，实际: %v", err)
	}
	if report == nil || report.RetainedRows != 0 {
		t.Errorf("期望报告保留 0 行: %+v", report)
	}
}

// TestApplyFilters_Conjunction 合取语义：过滤条件顺序无关
func TestApplyFilters_Conjunction(t *testing.T) {
	games := sampleGames()
	cfg := FiltersConfig{MaxYear: 2019, MaxPlayingTimeMinutes: 90}
	kept, report := applyFilters(cfg, games)
	// g1 同时满足；g2 超时长；g3 超年份
	if len(kept) != 1 || games[kept[0]].ID != "g1" {
		t.Fatalf("期望只保留 g1，实际: %v", kept)
	}
	var yearRemoved, timeRemoved int
	for _, e := range report.Filters {
		switch e.Name {
		case "max_year":
			yearRemoved = e.Removed
		case "max_playing_time_minutes":
			timeRemoved = e.Removed
		}
	}
	if yearRemoved != 1 || timeRemoved != 1 {
		t.Errorf("各过滤剔除数不对: year=%d time=%d", yearRemoved, timeRemoved)
	}
}

// TestApplyFilters_LongGameException 长游戏豁免：评分数足够则超时长仍保留
func TestApplyFilters_LongGameException(t *testing.T) {
	games := sampleGames()
	games[1].PlayingTimeMinutes = 240
	cfg := FiltersConfig{MaxPlayingTimeMinutes: 90, LongGameMinRatings: 1000}
	kept, _ := applyFilters(cfg, games)
	ids := map[string]bool{}
	for _, i := range kept {
		ids[games[i].ID] = true
	}
	// g2 评分数 1200 >= 1000，豁免保留；g3 本身未超时长
	if !ids["g1"] || !ids["g2"] || !ids["g3"] {
		t.Errorf("期望三个都保留，实际: %v", ids)
	}

	cfg.LongGameMinRatings = 5000
	kept, _ = applyFilters(cfg, games)
	for _, i := range kept {
		if games[i].ID == "g2" {
			t.Error("g2 评分数不足豁免下限，不应保留")
		}
	}
}

// TestApplyFilters_HardBounds 硬性边界始终生效
func TestApplyFilters_HardBounds(t *testing.T) {
	games := []core.Game{
		{ID: "ok", MinPlayers: 2, MaxPlayers: 4, PlayingTimeMinutes: 60, AvgRating: 7},
		{ID: "too-many-players", MinPlayers: 2, MaxPlayers: 50, PlayingTimeMinutes: 60, AvgRating: 7},
		{ID: "daylong", MinPlayers: 2, MaxPlayers: 4, PlayingTimeMinutes: 1440, AvgRating: 7},
		{ID: "bad-rating", MinPlayers: 2, MaxPlayers: 4, PlayingTimeMinutes: 60, AvgRating: 11},
		{ID: "inverted", MinPlayers: 5, MaxPlayers: 2, PlayingTimeMinutes: 60, AvgRating: 7},
	}
	kept, _ := applyFilters(FiltersConfig{}, games)
	if len(kept) != 1 || games[kept[0]].ID != "ok" {
		var ids []string
		for _, i := range kept {
			ids = append(ids, games[i].ID)
		}
		t.Fatalf("期望只保留 ok，实际: %v", ids)
	}
}

// TestApplyFilters_PopularityQuantile 分位阈值在全量输入上计算
func TestApplyFilters_PopularityQuantile(t *testing.T) {
	games := sampleGames() // 评分数 5000, 1200, 300
	cfg := FiltersConfig{MinPopularityQuantile: 0.5}
	kept, report := applyFilters(cfg, games)
	// 中位数 1200，g3 评分数 300 被剔除
	for _, i := range kept {
		if games[i].ID == "g3" {
			t.Error("g3 低于分位阈值，不应保留")
		}
	}
	for _, e := range report.Filters {
		if e.Name == "min_popularity_quantile" {
			if math.Abs(e.Threshold-1200) > 1e-9 {
				t.Errorf("期望中位阈值 1200，实际 %v", e.Threshold)
			}
		}
	}
}

// TestNumericValue 测试数值列访问与缺失语义
func TestNumericValue(t *testing.T) {
	g := core.Game{Complexity: 2.5}
	if v := NumericValue(&g, "complexity"); v != 2.5 {
		t.Errorf("期望 2.5，实际 %v", v)
	}
	if v := NumericValue(&g, "playing_time_minutes"); !math.IsNaN(v) {
		t.Errorf("缺失值期望 NaN，实际 %v", v)
	}
	if v := NumericValue(&g, "nonexistent"); !math.IsNaN(v) {
		t.Errorf("未知列期望 NaN，实际 %v", v)
	}
}

package feature

import (
	"sort"
	"time"

	"github.com/rushteam/meeplekit/core"
)

// FiltersConfig 是可配置的领域过滤条件。零值表示对应过滤关闭。
// 所有过滤条件按合取（conjunction）生效，彼此顺序无关。
type FiltersConfig struct {
	// MaxYear 只保留发行年份不晚于该值的游戏；年份缺失放行。
	MaxYear int `yaml:"max_year" json:"max_year"`

	// MinPopularityQuantile 按评分数的分位截断：低于该分位阈值的剔除。
	MinPopularityQuantile float64 `yaml:"min_popularity_quantile" json:"min_popularity_quantile"`

	// MaxRequiredPlayers 剔除起步人数超过该值的游戏。
	MaxRequiredPlayers int `yaml:"max_required_players" json:"max_required_players"`

	// MaxPlayingTimeMinutes 剔除时长超过该值的游戏；
	// 配合 LongGameMinRatings 形成长游戏豁免：超长但评分数不低于
	// 豁免下限的仍然保留。时长缺失放行。
	MaxPlayingTimeMinutes int `yaml:"max_playing_time_minutes" json:"max_playing_time_minutes"`

	// LongGameMinRatings 是长游戏豁免的评分数下限；0 表示无豁免。
	LongGameMinRatings int `yaml:"long_game_min_ratings" json:"long_game_min_ratings"`
}

// 硬性边界：与可配置过滤无关的绝对合理范围，始终生效。
const (
	hardMinPlayers        = 1
	hardMaxPlayers        = 20
	hardMaxPlayingMinutes = 1440 // 一天
	hardMaxRating         = 10.0
)

// ReportEntry 记录单个过滤条件的剔除效果。
// 过滤为合取语义，Removed 统计的是"不满足该条件"的输入行数，允许彼此重叠。
type ReportEntry struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Threshold   float64 `json:"threshold,omitempty"`
	Removed     int     `json:"removed"`
	RemovalRate float64 `json:"removal_rate"`
}

// Report 是一次特征构建的过滤效果报告。
type Report struct {
	GeneratedAt  time.Time     `json:"generated_at"`
	SourceRows   int           `json:"source_rows"`
	RetainedRows int           `json:"retained_rows"`
	Filters      []ReportEntry `json:"filters"`
}

// rowPredicate 是单个过滤条件：返回 true 表示保留。
type rowPredicate struct {
	name      string
	value     float64
	threshold float64
	keep      func(g *core.Game) bool
}

// buildPredicates 把配置展开成谓词列表；分位阈值在全量输入上预先计算。
func buildPredicates(cfg FiltersConfig, games []core.Game) []rowPredicate {
	var preds []rowPredicate

	if cfg.MaxYear > 0 {
		maxYear := cfg.MaxYear
		preds = append(preds, rowPredicate{
			name:  "max_year",
			value: float64(maxYear),
			keep: func(g *core.Game) bool {
				return g.YearPublished == 0 || g.YearPublished <= maxYear
			},
		})
	}

	if cfg.MinPopularityQuantile > 0 {
		counts := make([]float64, 0, len(games))
		for i := range games {
			counts = append(counts, float64(games[i].NumRatings))
		}
		sort.Float64s(counts)
		threshold := Percentile(counts, cfg.MinPopularityQuantile)
		preds = append(preds, rowPredicate{
			name:      "min_popularity_quantile",
			value:     cfg.MinPopularityQuantile,
			threshold: threshold,
			keep: func(g *core.Game) bool {
				return float64(g.NumRatings) >= threshold
			},
		})
	}

	if cfg.MaxRequiredPlayers > 0 {
		ceiling := cfg.MaxRequiredPlayers
		preds = append(preds, rowPredicate{
			name:  "max_required_players",
			value: float64(ceiling),
			keep: func(g *core.Game) bool {
				return g.MinPlayers == 0 || g.MinPlayers <= ceiling
			},
		})
	}

	if cfg.MaxPlayingTimeMinutes > 0 {
		maxMinutes := cfg.MaxPlayingTimeMinutes
		ratingsFloor := cfg.LongGameMinRatings
		preds = append(preds, rowPredicate{
			name:  "max_playing_time_minutes",
			value: float64(maxMinutes),
			keep: func(g *core.Game) bool {
				if g.PlayingTimeMinutes == 0 || g.PlayingTimeMinutes <= maxMinutes {
					return true
				}
				// 长游戏豁免：评分数足够多说明确实有人在玩
				return ratingsFloor > 0 && g.NumRatings >= ratingsFloor
			},
		})
	}

	// 硬性边界，不可配置、不可关闭；缺失值（0）不在判定范围内
	preds = append(preds,
		rowPredicate{
			name:  "hard_player_bounds",
			value: hardMaxPlayers,
			keep: func(g *core.Game) bool {
				if g.MinPlayers > 0 && (g.MinPlayers < hardMinPlayers || g.MinPlayers > hardMaxPlayers) {
					return false
				}
				if g.MaxPlayers > 0 && g.MaxPlayers > hardMaxPlayers {
					return false
				}
				if g.MinPlayers > 0 && g.MaxPlayers > 0 && g.MinPlayers > g.MaxPlayers {
					return false
				}
				return true
			},
		},
		rowPredicate{
			name:  "hard_playing_time",
			value: hardMaxPlayingMinutes,
			keep: func(g *core.Game) bool {
				return g.PlayingTimeMinutes < hardMaxPlayingMinutes
			},
		},
		rowPredicate{
			name:  "hard_rating_range",
			value: hardMaxRating,
			keep: func(g *core.Game) bool {
				return g.AvgRating >= 0 && g.AvgRating <= hardMaxRating
			},
		},
	)

	return preds
}

// applyFilters 按合取语义过滤，返回保留下标与报告。
func applyFilters(cfg FiltersConfig, games []core.Game) ([]int, *Report) {
	preds := buildPredicates(cfg, games)
	removed := make([]int, len(preds))

	kept := make([]int, 0, len(games))
	for i := range games {
		keep := true
		for pi, p := range preds {
			if !p.keep(&games[i]) {
				removed[pi]++
				keep = false
			}
		}
		if keep {
			kept = append(kept, i)
		}
	}

	report := &Report{
		GeneratedAt:  time.Now().UTC(),
		SourceRows:   len(games),
		RetainedRows: len(kept),
		Filters:      make([]ReportEntry, 0, len(preds)),
	}
	for pi, p := range preds {
		rate := 0.0
		if len(games) > 0 {
			rate = float64(removed[pi]) / float64(len(games))
		}
		report.Filters = append(report.Filters, ReportEntry{
			Name:        p.name,
			Value:       p.value,
			Threshold:   p.threshold,
			Removed:     removed[pi],
			RemovalRate: rate,
		})
	}
	return kept, report
}

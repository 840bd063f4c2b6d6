package core

// Game 是经过整理（curated）的桌游条目，由外部摄取层产出，核心只读。
// 约定 Min/MaxPlayers、PlayingTimeMinutes、YearPublished 用 0 表示缺失。
type Game struct {
	ID          string `json:"id"` // 稳定标识（如 BGG ID）
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// 类目标签：机制、类别、主题（摄取层已归一为小写短语）
	Mechanics  []string `json:"mechanics,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Themes     []string `json:"themes,omitempty"`

	// 数值属性
	MinPlayers         int     `json:"min_players,omitempty"`
	MaxPlayers         int     `json:"max_players,omitempty"`
	PlayingTimeMinutes int     `json:"playing_time_minutes,omitempty"`
	Complexity         float64 `json:"complexity,omitempty"`
	AvgRating          float64 `json:"avg_rating,omitempty"`
	NumRatings         int     `json:"num_ratings,omitempty"`
	YearPublished      int     `json:"year_published,omitempty"`
}

// HasPlayers 判断 players 人数是否落在该游戏支持的区间内。
// Min/MaxPlayers 任一为 0（缺失）时视为不可判定，返回 false。
func (g *Game) HasPlayers(players int) bool {
	if g.MinPlayers <= 0 || g.MaxPlayers <= 0 {
		return false
	}
	return g.MinPlayers <= players && players <= g.MaxPlayers
}

// FitsWithin 判断游戏时长是否不超过 minutes 分钟。
// PlayingTimeMinutes 为 0（缺失）时视为不可判定，返回 false。
func (g *Game) FitsWithin(minutes int) bool {
	if g.PlayingTimeMinutes <= 0 {
		return false
	}
	return g.PlayingTimeMinutes <= minutes
}

// Tags 返回全部可解释标签（机制 + 类别 + 主题），用于特征型解释。
func (g *Game) Tags() []TagValue {
	out := make([]TagValue, 0, len(g.Mechanics)+len(g.Categories)+len(g.Themes))
	for _, m := range g.Mechanics {
		out = append(out, TagValue{Label: m, Field: TagFieldMechanic})
	}
	for _, c := range g.Categories {
		out = append(out, TagValue{Label: c, Field: TagFieldCategory})
	}
	for _, t := range g.Themes {
		out = append(out, TagValue{Label: t, Field: TagFieldTheme})
	}
	return out
}

// TagField 标识标签来源字段。
type TagField string

const (
	TagFieldMechanic TagField = "mechanic"
	TagFieldCategory TagField = "category"
	TagFieldTheme    TagField = "theme"
)

// TagValue 是一个带来源字段的可解释标签。
type TagValue struct {
	Label string
	Field TagField
}

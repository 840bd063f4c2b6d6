package feature

import (
	"math"
	"strings"

	"github.com/rushteam/meeplekit/core"
)

// TextFieldConfig 指定一段参与向量化的文本来源及其块权重。
type TextFieldConfig struct {
	// Field 是文本来源：description / mechanics / categories / themes。
	Field string `yaml:"field" json:"field"`
	// Weight 是该文本块在融合矩阵中的权重，必须为正。
	Weight float64 `yaml:"weight" json:"weight"`
}

// NumericConfig 指定参与融合的数值列及缩放策略。
type NumericConfig struct {
	// Columns 可选：complexity / avg_rating / num_ratings /
	// playing_time_minutes / min_players / max_players / year_published。
	Columns []string `yaml:"columns" json:"columns"`
	// Scaling 取 "zscore" 或 "minmax"。
	Scaling string `yaml:"scaling" json:"scaling"`
	// Weight 是数值块整体权重，必须为正（无数值列时忽略）。
	Weight float64 `yaml:"weight" json:"weight"`
}

// Config 是特征构建的完整配置。
type Config struct {
	Filters      FiltersConfig       `yaml:"filters" json:"filters"`
	TextFields   []TextFieldConfig   `yaml:"text_fields" json:"text_fields"`
	Numeric      NumericConfig       `yaml:"numeric" json:"numeric"`
	Tokenization TokenizationConfig  `yaml:"tokenization" json:"tokenization"`
	Stopwords    []string            `yaml:"stopwords" json:"stopwords"`
	Synonyms     map[string][]string `yaml:"synonyms" json:"synonyms"`
}

// 合法的文本来源字段
const (
	TextFieldDescription = "description"
	TextFieldMechanics   = "mechanics"
	TextFieldCategories  = "categories"
	TextFieldThemes      = "themes"
)

var numericAccessors = map[string]func(g *core.Game) float64{
	"complexity": func(g *core.Game) float64 {
		if g.Complexity == 0 {
			return math.NaN()
		}
		return g.Complexity
	},
	"avg_rating": func(g *core.Game) float64 {
		if g.AvgRating == 0 && g.NumRatings == 0 {
			return math.NaN()
		}
		return g.AvgRating
	},
	"num_ratings": func(g *core.Game) float64 {
		return float64(g.NumRatings)
	},
	"playing_time_minutes": func(g *core.Game) float64 {
		if g.PlayingTimeMinutes == 0 {
			return math.NaN()
		}
		return float64(g.PlayingTimeMinutes)
	},
	"min_players": func(g *core.Game) float64 {
		if g.MinPlayers == 0 {
			return math.NaN()
		}
		return float64(g.MinPlayers)
	},
	"max_players": func(g *core.Game) float64 {
		if g.MaxPlayers == 0 {
			return math.NaN()
		}
		return float64(g.MaxPlayers)
	},
	"year_published": func(g *core.Game) float64 {
		if g.YearPublished == 0 {
			return math.NaN()
		}
		return float64(g.YearPublished)
	},
}

// Builder 把整理后的游戏目录转成可供嵌入训练的特征矩阵。
type Builder struct {
	config    Config
	tokenizer *Tokenizer
}

// NewBuilder 校验配置并构造 Builder。
func NewBuilder(config Config) (*Builder, error) {
	if len(config.TextFields) == 0 {
		return nil, core.NewConfigError(core.ModuleFeature, "at least one text field is required")
	}
	seen := map[string]bool{}
	for _, tf := range config.TextFields {
		switch tf.Field {
		case TextFieldDescription, TextFieldMechanics, TextFieldCategories, TextFieldThemes:
		default:
			return nil, core.NewConfigError(core.ModuleFeature, "unknown text field %q", tf.Field)
		}
		if seen[tf.Field] {
			return nil, core.NewConfigError(core.ModuleFeature, "duplicate text field %q", tf.Field)
		}
		seen[tf.Field] = true
		if tf.Weight <= 0 {
			return nil, core.NewConfigError(core.ModuleFeature, "text field %q weight must be positive, got %v", tf.Field, tf.Weight)
		}
	}
	for _, col := range config.Numeric.Columns {
		if _, ok := numericAccessors[col]; !ok {
			return nil, core.NewConfigError(core.ModuleFeature, "unknown numeric column %q", col)
		}
	}
	if len(config.Numeric.Columns) > 0 {
		if config.Numeric.Weight <= 0 {
			return nil, core.NewConfigError(core.ModuleFeature, "numeric weight must be positive, got %v", config.Numeric.Weight)
		}
		switch config.Numeric.Scaling {
		case ScalingZScore, ScalingMinMax:
		default:
			return nil, core.NewConfigError(core.ModuleFeature, "unknown scaling strategy %q", config.Numeric.Scaling)
		}
	}
	cfg := config
	if cfg.Tokenization.NGramMin == 0 {
		cfg.Tokenization.NGramMin = 1
	}
	if cfg.Tokenization.NGramMax == 0 {
		cfg.Tokenization.NGramMax = cfg.Tokenization.NGramMin
	}
	if cfg.Tokenization.NGramMin > cfg.Tokenization.NGramMax {
		return nil, core.NewConfigError(core.ModuleFeature, "ngram_min %d exceeds ngram_max %d",
			cfg.Tokenization.NGramMin, cfg.Tokenization.NGramMax)
	}
	return &Builder{
		config:    cfg,
		tokenizer: NewTokenizer(cfg.Tokenization, cfg.Stopwords, cfg.Synonyms),
	}, nil
}

// Build 先按合取过滤目录，再产出按行对齐的特征矩阵与过滤报告。
// 过滤后为空视为配置错误：继续训练没有意义。
func (b *Builder) Build(games []core.Game) (*Matrix, *Report, error) {
	kept, report := applyFilters(b.config.Filters, games)
	if len(kept) == 0 {
		return nil, report, core.NewConfigError(core.ModuleFeature,
			"filters removed all %d games, nothing left to train on", len(games))
	}

	m := &Matrix{
		IDs:   make([]string, 0, len(kept)),
		Games: make([]core.Game, 0, len(kept)),
	}
	for _, idx := range kept {
		m.IDs = append(m.IDs, games[idx].ID)
		m.Games = append(m.Games, games[idx])
	}

	for _, tf := range b.config.TextFields {
		block := TextBlock{
			Name:   tf.Field,
			Weight: tf.Weight,
			Docs:   make([][]string, 0, len(m.Games)),
		}
		for i := range m.Games {
			block.Docs = append(block.Docs, b.textTokens(&m.Games[i], tf.Field))
		}
		m.TextBlocks = append(m.TextBlocks, block)
	}

	if len(b.config.Numeric.Columns) > 0 {
		block, err := b.numericBlock(m.Games)
		if err != nil {
			return nil, report, err
		}
		m.Numeric = *block
	}
	return m, report, nil
}

// textTokens 取单个游戏在指定文本来源上的词元序列。
// 自由文本走完整分词流程，标签字段作为原子短语词元。
func (b *Builder) textTokens(g *core.Game, field string) []string {
	switch field {
	case TextFieldDescription:
		return b.tokenizer.Tokens(g.Name + " " + g.Description)
	case TextFieldMechanics:
		return b.tokenizer.TagTokens(g.Mechanics)
	case TextFieldCategories:
		return b.tokenizer.TagTokens(g.Categories)
	case TextFieldThemes:
		return b.tokenizer.TagTokens(g.Themes)
	}
	return nil
}

// numericBlock 逐列拟合缩放器并生成数值块，缺失值由缩放器映射到中位位置。
func (b *Builder) numericBlock(games []core.Game) (*NumericBlock, error) {
	cols := b.config.Numeric.Columns
	block := &NumericBlock{
		Columns: append([]string(nil), cols...),
		Weight:  b.config.Numeric.Weight,
		Rows:    make([][]float64, len(games)),
	}
	for i := range block.Rows {
		block.Rows[i] = make([]float64, len(cols))
	}
	for ci, col := range cols {
		accessor := numericAccessors[col]
		raw := make([]float64, len(games))
		for i := range games {
			raw[i] = accessor(&games[i])
		}
		norm := NewNormalizer(b.config.Numeric.Scaling)
		norm.Fit(raw)
		for i := range games {
			block.Rows[i][ci] = norm.Apply(raw[i])
		}
		block.Scalers = append(block.Scalers, StateOf(b.config.Numeric.Scaling, norm))
	}
	return block, nil
}

// NumericValue 按列名取单个游戏的原始数值，未知列或缺失返回 NaN。
func NumericValue(g *core.Game, column string) float64 {
	accessor, ok := numericAccessors[strings.ToLower(column)]
	if !ok {
		return math.NaN()
	}
	return accessor(g)
}

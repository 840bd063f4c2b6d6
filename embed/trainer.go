package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/feature"
	"github.com/rushteam/meeplekit/pkg/vecmath"
)

// Config 是嵌入训练配置。
type Config struct {
	// Dimensions 目标嵌入维度 k。
	Dimensions int `yaml:"dimensions" json:"dimensions"`
	// Normalize 训练后对嵌入行做 L2 归一化；归一化后余弦退化为点积。
	Normalize bool `yaml:"normalize" json:"normalize"`
	// TFIDF 对所有文本块生效的向量化参数。
	TFIDF TFIDFConfig `yaml:"tfidf" json:"tfidf"`
	// Evaluation 评估参数；TopK 为 0 时跳过评估。
	Evaluation EvaluationConfig `yaml:"evaluation" json:"evaluation"`
}

// Result 是一次训练的完整产物。
type Result struct {
	Entries  []core.CatalogEntry
	Metadata core.RunMetadata
	Model    *Model
}

// Trainer 把特征矩阵训练成嵌入目录：
// 逐文本块 TF-IDF → 加权水平拼接（含数值块）→ 截断 SVD → 可选 L2。
type Trainer struct {
	config Config
	logger zerolog.Logger
}

// NewTrainer 校验配置并创建训练器。
func NewTrainer(config Config, logger zerolog.Logger) (*Trainer, error) {
	if config.Dimensions <= 0 {
		return nil, core.NewConfigError(core.ModuleEmbed, "dimensions must be positive, got %d", config.Dimensions)
	}
	if config.TFIDF.MaxDF < 0 || config.TFIDF.MaxDF > 1 {
		return nil, core.NewConfigError(core.ModuleEmbed, "max_df must be in [0,1], got %v", config.TFIDF.MaxDF)
	}
	return &Trainer{config: config, logger: logger}, nil
}

// Train 执行一次完整训练。sourceRows 是过滤前的目录行数，仅用于元数据。
func (t *Trainer) Train(ctx context.Context, m *feature.Matrix, sourceRows int) (*Result, error) {
	if m == nil || m.Rows() == 0 {
		return nil, core.NewConfigError(core.ModuleEmbed, "empty feature matrix")
	}
	start := time.Now()
	runID := fmt.Sprintf("%s-%s", start.UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
	logger := t.logger.With().Str("run_id", runID).Logger()
	logger.Info().Int("rows", m.Rows()).Int("dimensions", t.config.Dimensions).Msg("training started")

	fused, model, err := t.fuse(m)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("fused_features", len(fused[0])).Msg("feature blocks fused")

	svd := NewTruncatedSVD(t.config.Dimensions)
	embedding, err := svd.FitTransform(fused)
	if err != nil {
		return nil, err
	}
	model.SVD = svd
	model.Normalized = t.config.Normalize

	if t.config.Normalize {
		vecmath.NormalizeRows(embedding)
	}

	entries := make([]core.CatalogEntry, m.Rows())
	for i := range entries {
		entries[i] = core.CatalogEntry{Game: m.Games[i], Vector: embedding[i]}
	}

	meta := core.RunMetadata{
		RunID:             runID,
		CreatedAt:         start.UTC(),
		RowsBeforeFilters: sourceRows,
		RowsAfterFilters:  m.Rows(),
		Dimensions:        t.config.Dimensions,
		Normalized:        t.config.Normalize,
		Hyperparams: map[string]any{
			"tfidf_min_df":       t.config.TFIDF.MinDF,
			"tfidf_max_df":       t.config.TFIDF.MaxDF,
			"tfidf_max_features": t.config.TFIDF.MaxFeatures,
			"tfidf_sublinear_tf": t.config.TFIDF.SublinearTF,
		},
	}

	if t.config.Evaluation.TopK > 0 {
		eval := EvaluateRecall(entries, t.config.Evaluation)
		meta.Evaluation = eval
		if eval != nil {
			logger.Info().
				Int("top_k", eval.TopK).
				Float64("hit_rate", eval.HitRate).
				Float64("mean_recall", eval.MeanRecall).
				Int("queries", eval.NumQueries).
				Msg("recall evaluation")
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("training finished")
	return &Result{Entries: entries, Metadata: meta, Model: model}, nil
}

// fuse 逐块向量化并按权重水平拼接成稠密矩阵。
func (t *Trainer) fuse(m *feature.Matrix) ([][]float64, *Model, error) {
	model := &Model{}
	width := m.NumericColumns()
	blockRows := make([][][]float64, 0, len(m.TextBlocks))

	for _, block := range m.TextBlocks {
		vec := NewTFIDFVectorizer(t.config.TFIDF)
		if err := vec.Fit(block.Docs); err != nil {
			return nil, nil, err
		}
		rows := vec.Transform(block.Docs)
		for i := range rows {
			for j := range rows[i] {
				rows[i][j] *= block.Weight
			}
		}
		model.Vectorizers = append(model.Vectorizers, vec)
		model.BlockWeights = append(model.BlockWeights, block.Weight)
		blockRows = append(blockRows, rows)
		width += vec.Dimensions()
	}
	if m.NumericColumns() > 0 {
		model.Numeric = &NumericModel{
			Columns: append([]string(nil), m.Numeric.Columns...),
			Weight:  m.Numeric.Weight,
			Scalers: append([]feature.ScalerState(nil), m.Numeric.Scalers...),
		}
	}

	fused := make([][]float64, m.Rows())
	for i := range fused {
		row := make([]float64, 0, width)
		for _, rows := range blockRows {
			row = append(row, rows[i]...)
		}
		if m.NumericColumns() > 0 {
			for _, v := range m.Numeric.Rows[i] {
				row = append(row, v*m.Numeric.Weight)
			}
		}
		fused[i] = row
	}
	return fused, model, nil
}

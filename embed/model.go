package embed

import (
	"math"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/feature"
	"github.com/rushteam/meeplekit/pkg/vecmath"
)

// Model 持有把新样本折入（fold-in）嵌入空间所需的全部已拟合组件：
// 逐块向量化器、块权重、数值列缩放参数与 V_k。
// 随 run 产物一并落盘，加载后可独立完成 Transform。
type Model struct {
	// Vectorizers 逐文本块的已拟合向量化器，与训练时的块序一致。
	Vectorizers []*TFIDFVectorizer `json:"vectorizers"`
	// BlockWeights 各文本块的融合权重，与 Vectorizers 对齐。
	BlockWeights []float64 `json:"block_weights"`
	// Numeric 数值块的列、权重与缩放参数；训练无数值块时为 nil。
	Numeric *NumericModel `json:"numeric,omitempty"`
	// SVD 截断 SVD 组件，持有 V_k。
	SVD *TruncatedSVD `json:"svd"`
	// Normalized 训练时是否做了 L2 归一化，折入时保持一致。
	Normalized bool `json:"normalized"`
}

// NumericModel 是数值块的落盘形态。
type NumericModel struct {
	Columns []string              `json:"columns"`
	Weight  float64               `json:"weight"`
	Scalers []feature.ScalerState `json:"scalers,omitempty"`
}

// Row 是一条待折入嵌入空间的新样本：
// 逐文本块的词元序列（调用方按训练同款分词产出）+ 数值列原始值。
type Row struct {
	// BlockDocs 与 Model.Vectorizers 对齐，每块一个词元序列。
	BlockDocs [][]string
	// Numeric 与 Model.Numeric.Columns 对齐的原始值，缺失用 NaN。
	Numeric []float64
}

// Transform 把新样本折入已训练的嵌入空间：
// 逐块 TF-IDF → 加权拼接 → 缩放数值列 → x·V_k → 与训练一致的可选 L2。
// 训练集内的行经 Transform 会精确还原其目录向量。
func (m *Model) Transform(rows []Row) ([][]float64, error) {
	if m.SVD == nil {
		return nil, core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInternalError, "model has no svd component")
	}
	fused := make([][]float64, len(rows))
	for i, r := range rows {
		if len(r.BlockDocs) != len(m.Vectorizers) {
			return nil, core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInvalidInput,
				"row must carry one doc per text block")
		}
		var row []float64
		for bi, vec := range m.Vectorizers {
			w := 1.0
			if bi < len(m.BlockWeights) {
				w = m.BlockWeights[bi]
			}
			v := vec.Transform([][]string{r.BlockDocs[bi]})[0]
			for j := range v {
				v[j] *= w
			}
			row = append(row, v...)
		}
		if m.Numeric != nil && len(m.Numeric.Columns) > 0 {
			if len(r.Numeric) != len(m.Numeric.Columns) {
				return nil, core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInvalidInput,
					"row must carry one value per numeric column")
			}
			for ci, raw := range r.Numeric {
				val := raw
				if ci < len(m.Numeric.Scalers) {
					val = m.Numeric.Scalers[ci].Apply(raw)
				} else if math.IsNaN(val) {
					val = 0
				}
				row = append(row, val*m.Numeric.Weight)
			}
		}
		fused[i] = row
	}

	out, err := m.SVD.Transform(fused)
	if err != nil {
		return nil, err
	}
	if m.Normalized {
		vecmath.NormalizeRows(out)
	}
	return out, nil
}

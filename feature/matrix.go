package feature

import "github.com/rushteam/meeplekit/core"

// Matrix 是特征矩阵：保留行序稳定、按游戏标识索引，
// 文本块 + 数值块分组存放，块权重在本次训练 run 内固定。
type Matrix struct {
	// IDs 是保留行的游戏标识，行序与各块一致。
	IDs []string

	// Games 是保留行的完整元数据，目录装配时回填。
	Games []core.Game

	// TextBlocks 每个文本字段一块，向量化时各块独立加权。
	TextBlocks []TextBlock

	// Numeric 是缩放后的数值块。
	Numeric NumericBlock
}

// TextBlock 是单个文本字段的 token 文档集。
type TextBlock struct {
	Name   string
	Weight float64
	// Docs 每行一个 token 序列，与 Matrix.IDs 对齐。
	Docs [][]string
}

// NumericBlock 是缩放后的数值特征块。
type NumericBlock struct {
	Columns []string
	Weight  float64
	// Rows 每行与 Matrix.IDs 对齐，列与 Columns 对齐。
	Rows [][]float64
	// Scalers 逐列拟合出的缩放参数，与 Columns 对齐，随模型落盘。
	Scalers []ScalerState
}

// Rows 返回矩阵行数。
func (m *Matrix) Rows() int { return len(m.IDs) }

// NumericColumns 返回数值块的列数；无数值块时为 0。
func (m *Matrix) NumericColumns() int { return len(m.Numeric.Columns) }

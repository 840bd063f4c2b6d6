package embed

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/meeplekit/core"
	"gonum.org/v1/gonum/mat"
)

// TruncatedSVD 截断奇异值分解降维。
// 嵌入取 U_k·Σ_k；右奇异向量 V_k 保留用于把新行投影到同一空间。
type TruncatedSVD struct {
	// Components 目标维度 k。
	Components int

	// VK 是 features x k 的右奇异向量矩阵，Fit 后可用。
	VK *mat.Dense
	// SingularValues 前 k 个奇异值，降序。
	SingularValues []float64
}

// NewTruncatedSVD 创建 k 维截断 SVD。
func NewTruncatedSVD(components int) *TruncatedSVD {
	return &TruncatedSVD{Components: components}
}

// FitTransform 在融合特征矩阵上做 SVD 并返回 rows x k 的嵌入矩阵。
// 行数或特征数不大于 k 时无法降维，返回 CONFIG_INVALID。
func (s *TruncatedSVD) FitTransform(rows [][]float64) ([][]float64, error) {
	n := len(rows)
	if n == 0 {
		return nil, core.NewConfigError(core.ModuleEmbed, "empty matrix for svd")
	}
	features := len(rows[0])
	if s.Components <= 0 {
		return nil, core.NewConfigError(core.ModuleEmbed, "svd components must be positive, got %d", s.Components)
	}
	if n <= s.Components || features <= s.Components {
		return nil, core.NewConfigError(core.ModuleEmbed,
			"matrix %dx%d too small for %d components", n, features, s.Components)
	}

	dense := mat.NewDense(n, features, nil)
	for i, row := range rows {
		dense.SetRow(i, row)
	}

	var svd mat.SVD
	if ok := svd.Factorize(dense, mat.SVDThin); !ok {
		return nil, core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInternalError, "svd factorization failed to converge")
	}

	var u mat.Dense
	svd.UTo(&u)
	var v mat.Dense
	svd.VTo(&v)
	values := svd.Values(nil)

	k := s.Components
	s.SingularValues = append([]float64(nil), values[:k]...)
	s.VK = mat.NewDense(features, k, nil)
	for i := 0; i < features; i++ {
		for j := 0; j < k; j++ {
			s.VK.Set(i, j, v.At(i, j))
		}
	}

	// 嵌入 = U_k · Σ_k
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, k)
		for j := 0; j < k; j++ {
			row[j] = u.At(i, j) * values[j]
		}
		out[i] = row
	}
	return out, nil
}

type svdJSON struct {
	Components     int         `json:"components"`
	SingularValues []float64   `json:"singular_values"`
	VK             [][]float64 `json:"vk"`
}

// MarshalJSON 把 V_k 展开成行切片，使模型可随 run 产物落盘。
func (s *TruncatedSVD) MarshalJSON() ([]byte, error) {
	out := svdJSON{Components: s.Components, SingularValues: s.SingularValues}
	if s.VK != nil {
		features, k := s.VK.Dims()
		out.VK = make([][]float64, features)
		for i := 0; i < features; i++ {
			row := make([]float64, k)
			for j := 0; j < k; j++ {
				row[j] = s.VK.At(i, j)
			}
			out.VK[i] = row
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON 从落盘形态重建 V_k。
func (s *TruncatedSVD) UnmarshalJSON(data []byte) error {
	var in svdJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Components = in.Components
	s.SingularValues = in.SingularValues
	s.VK = nil
	if len(in.VK) > 0 {
		features := len(in.VK)
		k := len(in.VK[0])
		s.VK = mat.NewDense(features, k, nil)
		for i, row := range in.VK {
			if len(row) != k {
				return core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInvalidInput, "ragged vk matrix in model payload")
			}
			s.VK.SetRow(i, row)
		}
	}
	return nil
}

// Transform 把新特征行投影到已拟合的嵌入空间: x · V_k。
func (s *TruncatedSVD) Transform(rows [][]float64) ([][]float64, error) {
	if s.VK == nil {
		return nil, core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInternalError, "svd not fitted")
	}
	features, k := s.VK.Dims()
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != features {
			return nil, core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInvalidInput,
				fmt.Sprintf("row has %d features, expected %d", len(row), features))
		}
		projected := make([]float64, k)
		for j := 0; j < k; j++ {
			var sum float64
			for f := 0; f < features; f++ {
				sum += row[f] * s.VK.At(f, j)
			}
			projected[j] = sum
		}
		out[i] = projected
	}
	return out, nil
}

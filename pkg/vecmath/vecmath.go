// Package vecmath 提供嵌入向量的基础数值运算：点积、范数、余弦相似度、行归一化。
// 排序、聚合、训练各模块共用，保证相似度口径一致。
package vecmath

import "math"

// Dot 计算内积；长度不一致返回 0。
func Dot(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm 计算 L2 范数。
func Norm(a []float64) float64 {
	var sum float64
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Cosine 计算余弦相似度；任一向量为零向量时返回 0。
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize 返回 v 的单位向量；零向量原样拷贝返回。
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	n := Norm(v)
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// NormalizeRows 原地把每一行归一为单位向量；零行保持不变。
func NormalizeRows(rows [][]float64) {
	for _, row := range rows {
		n := Norm(row)
		if n == 0 {
			continue
		}
		for i := range row {
			row[i] /= n
		}
	}
}

// Mean 计算行向量集合的均值向量；空集返回 nil。
func Mean(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, len(rows[0]))
	for _, row := range rows {
		for i, v := range row {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rows))
	}
	return out
}

// EuclideanSq 计算欧氏距离的平方（k-means 指派用，省一次开方）。
func EuclideanSq(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

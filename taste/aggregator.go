package taste

import (
	"math"
	"math/rand"
	"time"

	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/pkg/vecmath"
)

// Config 控制偏好中心点（taste centroid）的聚合。
type Config struct {
	// Clusters 中心点数 k；喜欢游戏去重后不超过 k 时直接取恒等中心点。
	Clusters int `yaml:"clusters" json:"clusters"`
	// MaxIterations k-means 迭代上限，0 取默认 50。
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
	// Seed k-means 初始化种子；0 表示按当前时间取种（结果不可复现）。
	Seed int64 `yaml:"seed" json:"seed"`
	// Normalize 对中心点做 L2 归一化，与归一化目录配套使用。
	Normalize bool `yaml:"normalize" json:"normalize"`
}

const defaultMaxIterations = 50

// Aggregator 把用户喜欢的若干游戏向量压缩成 k 个偏好中心点。
type Aggregator struct {
	config Config
}

// NewAggregator 校验配置并创建聚合器。
func NewAggregator(config Config) (*Aggregator, error) {
	if config.Clusters <= 0 {
		return nil, core.NewConfigError(core.ModuleTaste, "clusters must be positive, got %d", config.Clusters)
	}
	if config.MaxIterations < 0 {
		return nil, core.NewConfigError(core.ModuleTaste, "max_iterations must be non-negative, got %d", config.MaxIterations)
	}
	return &Aggregator{config: config}, nil
}

// ResolveLiked 把喜欢的游戏标识解析成目录条目，按先后序去重。
// 任何一个标识不存在都算失败，缺失标识全部收进一个 NOT_FOUND 错误。
func ResolveLiked(lookup func(id string) (*core.CatalogEntry, bool), ids []string) ([]*core.Item, error) {
	seen := make(map[string]struct{}, len(ids))
	items := make([]*core.Item, 0, len(ids))
	var missing []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		entry, ok := lookup(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		items = append(items, entry.Item())
	}
	if len(missing) > 0 {
		return nil, core.NewNotFoundError(core.ModuleTaste, "liked games not found in catalog", missing)
	}
	return items, nil
}

// Centroids 聚合喜欢游戏的向量。
// 去重后数量不超过 k 时每个向量自成一个中心点；否则跑一轮 k-means。
func (a *Aggregator) Centroids(items []*core.Item) ([][]float64, error) {
	if len(items) == 0 {
		return nil, core.NewDomainError(core.ModuleTaste, core.ErrorCodeInvalidInput, "no liked items to aggregate")
	}
	dims := 0
	vectors := make([][]float64, 0, len(items))
	for _, it := range items {
		if len(it.Vector) == 0 {
			return nil, core.NewDomainError(core.ModuleTaste, core.ErrorCodeInternalError,
				"catalog entry missing embedding vector")
		}
		if dims == 0 {
			dims = len(it.Vector)
		} else if len(it.Vector) != dims {
			return nil, core.NewDomainError(core.ModuleTaste, core.ErrorCodeInternalError,
				"catalog embedding dimensions are inconsistent")
		}
		vectors = append(vectors, it.Vector)
	}

	var centroids [][]float64
	if len(vectors) <= a.config.Clusters {
		centroids = make([][]float64, len(vectors))
		for i, v := range vectors {
			centroids[i] = append([]float64(nil), v...)
		}
	} else {
		centroids = a.kmeans(vectors)
	}

	if a.config.Normalize {
		vecmath.NormalizeRows(centroids)
	}
	return centroids, nil
}

// kmeans 带种子的 Lloyd 迭代。空簇保留上一轮中心点。
func (a *Aggregator) kmeans(vectors [][]float64) [][]float64 {
	k := a.config.Clusters
	maxIter := a.config.MaxIterations
	if maxIter == 0 {
		maxIter = defaultMaxIterations
	}
	seed := a.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// 初始化：随机取第一个中心点，其余按最远点遍历（farthest-first）
	// 选取，远离已有中心点的簇不会被漏掉
	centroids := make([][]float64, 0, k)
	first := rng.Intn(len(vectors))
	centroids = append(centroids, append([]float64(nil), vectors[first]...))
	for len(centroids) < k {
		bestIdx, bestDist := -1, -1.0
		for vi, v := range vectors {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				if d := vecmath.EuclideanSq(v, c); d < minDist {
					minDist = d
				}
			}
			if minDist > bestDist {
				bestIdx, bestDist = vi, minDist
			}
		}
		centroids = append(centroids, append([]float64(nil), vectors[bestIdx]...))
	}

	assignments := make([]int, len(vectors))
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for vi, v := range vectors {
			best, bestDist := 0, vecmath.EuclideanSq(v, centroids[0])
			for ci := 1; ci < k; ci++ {
				if d := vecmath.EuclideanSq(v, centroids[ci]); d < bestDist {
					best, bestDist = ci, d
				}
			}
			if assignments[vi] != best {
				assignments[vi] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for ci := range sums {
			sums[ci] = make([]float64, len(vectors[0]))
		}
		for vi, v := range vectors {
			ci := assignments[vi]
			counts[ci]++
			for d := range v {
				sums[ci][d] += v[d]
			}
		}
		for ci := 0; ci < k; ci++ {
			if counts[ci] == 0 {
				continue
			}
			for d := range sums[ci] {
				centroids[ci][d] = sums[ci][d] / float64(counts[ci])
			}
		}
	}
	return centroids
}

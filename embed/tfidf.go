package embed

import (
	"math"
	"sort"

	"github.com/goccy/go-json"

	"github.com/rushteam/meeplekit/core"
)

// TFIDFConfig 控制单个文本块的 TF-IDF 向量化。
type TFIDFConfig struct {
	// MinDF 词项最少出现的文档数（绝对值）；低于被剔除。0 表示不限。
	MinDF int `yaml:"min_df" json:"min_df"`
	// MaxDF 词项最多出现的文档比例 (0,1]；高于被剔除。0 表示不限。
	MaxDF float64 `yaml:"max_df" json:"max_df"`
	// MaxFeatures 词表上限，按文档频率降序（同频按词项字典序）截断。0 表示不限。
	MaxFeatures int `yaml:"max_features" json:"max_features"`
	// SublinearTF 用 1 + ln(tf) 替代原始词频。
	SublinearTF bool `yaml:"sublinear_tf" json:"sublinear_tf"`
}

// TFIDFVectorizer 对一个文本块做 TF-IDF 向量化。
// 先 Fit 建词表与 idf，再 Transform 得到 L2 归一化的行向量。
type TFIDFVectorizer struct {
	config TFIDFConfig

	// Vocabulary 词项 -> 列下标
	Vocabulary map[string]int
	// Terms 列下标 -> 词项（与 Vocabulary 互逆）
	Terms []string
	// IDF 平滑逆文档频率: ln((1+n)/(1+df)) + 1
	IDF []float64
}

// NewTFIDFVectorizer 创建向量化器。
func NewTFIDFVectorizer(config TFIDFConfig) *TFIDFVectorizer {
	return &TFIDFVectorizer{config: config}
}

// Fit 在全量文档上建词表并计算 idf。
func (v *TFIDFVectorizer) Fit(docs [][]string) error {
	if len(docs) == 0 {
		return core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInvalidInput, "no documents to fit")
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := len(docs)
	maxDFCount := n
	if v.config.MaxDF > 0 && v.config.MaxDF < 1 {
		maxDFCount = int(v.config.MaxDF * float64(n))
	}

	type termDF struct {
		term string
		df   int
	}
	candidates := make([]termDF, 0, len(df))
	for term, count := range df {
		if v.config.MinDF > 0 && count < v.config.MinDF {
			continue
		}
		if count > maxDFCount {
			continue
		}
		candidates = append(candidates, termDF{term, count})
	}
	if len(candidates) == 0 {
		return core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInvalidInput,
			"document frequency bounds removed every term")
	}

	// 词表截断：文档频率降序，同频按词项字典序，保证确定性
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].df != candidates[j].df {
			return candidates[i].df > candidates[j].df
		}
		return candidates[i].term < candidates[j].term
	})
	if v.config.MaxFeatures > 0 && len(candidates) > v.config.MaxFeatures {
		candidates = candidates[:v.config.MaxFeatures]
	}

	// 词表列序固定为字典序，与截断顺序解耦
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].term < candidates[j].term
	})

	v.Vocabulary = make(map[string]int, len(candidates))
	v.Terms = make([]string, len(candidates))
	v.IDF = make([]float64, len(candidates))
	for i, c := range candidates {
		v.Vocabulary[c.term] = i
		v.Terms[i] = c.term
		v.IDF[i] = math.Log(float64(1+n)/float64(1+c.df)) + 1
	}
	return nil
}

// Transform 把文档转成 TF-IDF 行向量（L2 归一化）。
// 词表外的词项忽略；全零行保持全零。
func (v *TFIDFVectorizer) Transform(docs [][]string) [][]float64 {
	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		rows[i] = v.transformOne(doc)
	}
	return rows
}

func (v *TFIDFVectorizer) transformOne(doc []string) []float64 {
	row := make([]float64, len(v.Terms))
	counts := make(map[int]int, len(doc))
	for _, term := range doc {
		if col, ok := v.Vocabulary[term]; ok {
			counts[col]++
		}
	}
	var sumSq float64
	for col, count := range counts {
		tf := float64(count)
		if v.config.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		val := tf * v.IDF[col]
		row[col] = val
		sumSq += val * val
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for col := range counts {
			row[col] /= norm
		}
	}
	return row
}

// Dimensions 返回词表大小。
func (v *TFIDFVectorizer) Dimensions() int { return len(v.Terms) }

type tfidfJSON struct {
	Config TFIDFConfig `json:"config"`
	Terms  []string    `json:"terms"`
	IDF    []float64   `json:"idf"`
}

// MarshalJSON 落盘词表与 idf；Vocabulary 可由 Terms 重建，不落盘。
func (v *TFIDFVectorizer) MarshalJSON() ([]byte, error) {
	return json.Marshal(tfidfJSON{Config: v.config, Terms: v.Terms, IDF: v.IDF})
}

// UnmarshalJSON 重建词表下标映射。
func (v *TFIDFVectorizer) UnmarshalJSON(data []byte) error {
	var in tfidfJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Terms) != len(in.IDF) {
		return core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInvalidInput, "terms and idf length mismatch in model payload")
	}
	v.config = in.Config
	v.Terms = in.Terms
	v.IDF = in.IDF
	v.Vocabulary = make(map[string]int, len(in.Terms))
	for i, term := range in.Terms {
		v.Vocabulary[term] = i
	}
	return nil
}

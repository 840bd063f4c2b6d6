package feature

import (
	"regexp"
	"strings"
)

var tokenRE = regexp.MustCompile(`[a-z0-9']+`)

// TokenizationConfig 控制文本字段的切词行为。
type TokenizationConfig struct {
	// NGramMin / NGramMax 是 n-gram 范围；n-gram 内的词用 '_' 连接，
	// 保持为单个原子 token，向量化时不会被再次拆散。
	NGramMin int `yaml:"ngram_min" json:"ngram_min"`
	NGramMax int `yaml:"ngram_max" json:"ngram_max"`

	// RemoveStopwords 开启领域停用词剔除。
	RemoveStopwords bool `yaml:"remove_stopwords" json:"remove_stopwords"`

	// UnifySynonyms 开启同义短语归一。
	UnifySynonyms bool `yaml:"unify_synonyms" json:"unify_synonyms"`
}

// Tokenizer 把自由文本切成 token 序列：
// 小写化 → 同义短语归一 → 切词 → 停用词剔除 → n-gram 展开。
type Tokenizer struct {
	config    TokenizationConfig
	stopwords map[string]struct{}
	synonyms  *SynonymNormalizer
}

// NewTokenizer 构建切词器。synonyms 可为 nil；stopwords 内部转小写。
func NewTokenizer(config TokenizationConfig, stopwords []string, synonyms map[string][]string) *Tokenizer {
	t := &Tokenizer{config: config}
	if config.RemoveStopwords && len(stopwords) > 0 {
		t.stopwords = make(map[string]struct{}, len(stopwords))
		for _, w := range stopwords {
			t.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
	if config.UnifySynonyms && len(synonyms) > 0 {
		t.synonyms = NewSynonymNormalizer(synonyms)
	}
	return t
}

// Tokens 切分一段自由文本。空文本返回空切片。
func (t *Tokenizer) Tokens(text string) []string {
	lowered := strings.ToLower(text)
	lowered = strings.ReplaceAll(lowered, "-", " ")
	lowered = strings.ReplaceAll(lowered, "/", " ")
	if t.synonyms != nil {
		lowered = t.synonyms.Normalize(lowered)
	}

	raw := tokenRE.FindAllString(lowered, -1)
	tokens := raw
	if t.stopwords != nil {
		tokens = tokens[:0]
		for _, tok := range raw {
			if _, ok := t.stopwords[tok]; !ok {
				tokens = append(tokens, tok)
			}
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	minN := t.config.NGramMin
	maxN := t.config.NGramMax
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	ngrams := make([]string, 0, len(tokens)*(maxN-minN+1))
	if minN == 1 {
		ngrams = append(ngrams, tokens...)
	}
	start := minN
	if start < 2 {
		start = 2
	}
	for size := start; size <= maxN; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			ngrams = append(ngrams, strings.Join(tokens[i:i+size], "_"))
		}
	}
	return ngrams
}

// TagTokens 把类目标签短语转成原子 token（空格→'_'），保序去重。
// 标签不吃停用词和 n-gram：短语本身就是可解释单元。
func (t *Tokenizer) TagTokens(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		phrase := canonicalize(tag)
		if t.synonyms != nil {
			phrase = t.synonyms.Normalize(phrase)
		}
		if phrase == "" {
			continue
		}
		token := strings.ReplaceAll(phrase, " ", "_")
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

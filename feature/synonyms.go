package feature

import (
	"regexp"
	"sort"
	"strings"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// SynonymNormalizer 把文本中的同义短语替换为规范短语。
// 每个规范短语编译成一条变体交替（alternation）正则，单趟替换，
// 替换产物不会被后续变体再次命中；变体按长度降序排列，
// 保证长变体优先于其前缀短变体。替换基于词边界。
type SynonymNormalizer struct {
	patterns []synonymPattern
}

type synonymPattern struct {
	re          *regexp.Regexp
	replacement string
}

// NewSynonymNormalizer 由 canonical -> variants 表构建归一器。
// canonical 自身也加入变体集合，保证大小写/连字符差异被统一。
func NewSynonymNormalizer(synonyms map[string][]string) *SynonymNormalizer {
	n := &SynonymNormalizer{}
	canonicals := make([]string, 0, len(synonyms))
	for canonical := range synonyms {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		canonicalValue := canonicalize(canonical)
		seen := map[string]struct{}{}
		var entries []string
		for _, v := range append([]string{canonical}, synonyms[canonical]...) {
			cleaned := canonicalize(v)
			if cleaned == "" {
				continue
			}
			if _, ok := seen[cleaned]; ok {
				continue
			}
			seen[cleaned] = struct{}{}
			entries = append(entries, cleaned)
		}
		if len(entries) == 0 {
			continue
		}
		// 长变体优先，避免前缀短变体先命中
		sort.Slice(entries, func(i, j int) bool {
			if len(entries[i]) != len(entries[j]) {
				return len(entries[i]) > len(entries[j])
			}
			return entries[i] < entries[j]
		})
		quoted := make([]string, len(entries))
		for i, e := range entries {
			quoted[i] = regexp.QuoteMeta(e)
		}
		re := regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
		n.patterns = append(n.patterns, synonymPattern{re: re, replacement: canonicalValue})
	}
	return n
}

// canonicalize 统一分隔符并压缩空白。
func canonicalize(value string) string {
	cleaned := strings.ToLower(value)
	cleaned = strings.ReplaceAll(cleaned, "-", " ")
	cleaned = strings.ReplaceAll(cleaned, "/", " ")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(cleaned, " "))
}

// Normalize 对已小写化的文本做同义短语替换。
func (n *SynonymNormalizer) Normalize(text string) string {
	if n == nil || len(n.patterns) == 0 {
		return text
	}
	normalized := whitespaceRE.ReplaceAllString(text, " ")
	for _, p := range n.patterns {
		normalized = p.re.ReplaceAllString(normalized, p.replacement)
	}
	return normalized
}

package guard

import (
	"fmt"
	"strings"
)

// 受限品牌词与危险关键字是进程级只读策略数据，启动时装配一次。
// 配置中的追加项排在默认项之后，不改变默认项的先匹配顺序。

// defaultRestrictedTerms 默认受限品牌词（竞品名称），按声明顺序匹配
var defaultRestrictedTerms = []string{
	"mcdonald",
	"mcdonalds",
	"kfc",
	"spur",
	"nando",
	"nandos",
	"wimpy",
	"steers",
	"burger king",
	"ocean basket",
	"pizza hut",
	"dominos",
	"debonairs",
	"roman's pizza",
	"fishaways",
	"vida",
	"mugg & bean",
	"seattle coffee",
}

// defaultForbiddenKeywords 默认危险SQL关键字，安全校验按词边界匹配
var defaultForbiddenKeywords = []string{
	"INSERT",
	"UPDATE",
	"DELETE",
	"DROP",
	"ALTER",
	"CREATE",
	"TRUNCATE",
	"EXEC",
	"EXECUTE",
	"GRANT",
	"REVOKE",
	"ATTACH",
	"PRAGMA",
}

// RestrictedTerms 返回默认受限词表加配置追加项的完整词表
func RestrictedTerms(extra []string) []string {
	terms := make([]string, 0, len(defaultRestrictedTerms)+len(extra))
	terms = append(terms, defaultRestrictedTerms...)
	terms = append(terms, extra...)
	return terms
}

// ForbiddenKeywords 返回默认危险关键字表加配置追加项的完整关键字表
func ForbiddenKeywords(extra []string) []string {
	keywords := make([]string, 0, len(defaultForbiddenKeywords)+len(extra))
	keywords = append(keywords, defaultForbiddenKeywords...)
	keywords = append(keywords, extra...)
	return keywords
}

// ScreenResult 问题预检结果
type ScreenResult struct {
	Blocked     bool   `json:"blocked"`      // 是否被拦截
	MatchedTerm string `json:"matched_term"` // 命中的受限词
	Reason      string `json:"reason"`       // 拦截原因（用户可读）
}

// Screener 问题预检器。
// 在调用外部模型之前拦截涉及受限品牌的问题，是整条流水线上
// 成本最低的一道拒绝，预检不通过的问题不产生任何外部调用。
type Screener struct {
	terms []string
}

// NewScreener 创建预检器，terms 为完整受限词表（含配置追加项）
func NewScreener(terms []string) *Screener {
	copied := make([]string, len(terms))
	copy(copied, terms)
	return &Screener{terms: copied}
}

// Screen 对问题做大小写不敏感的子串匹配，按词表顺序返回第一个命中项。
// 纯内存操作，无任何I/O。
func (s *Screener) Screen(question string) ScreenResult {
	lower := strings.ToLower(question)
	for _, term := range s.terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return ScreenResult{
				Blocked:     true,
				MatchedTerm: term,
				Reason:      fmt.Sprintf("问题涉及受限品牌「%s」，无法处理", term),
			}
		}
	}
	return ScreenResult{}
}

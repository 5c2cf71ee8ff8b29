package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/breddycfc/social-places-ai-test/reporting/generator"
)

// Verdict 安全校验结论
type Verdict struct {
	Approved       bool   `json:"approved"`        // 是否放行
	MatchedKeyword string `json:"matched_keyword"` // 命中的危险关键字
	Reason         string `json:"reason"`          // 拒绝原因（用户可读）
}

// Validator SQL安全校验器，执行前的最后一道防线。
// 与合成器完全独立：不信任候选查询自带的只读声明，只看SQL文本本身。
// 纯内存操作，不访问数据库也不调用模型。
type Validator struct {
	keywords map[string]struct{}
}

// NewValidator 创建校验器，keywords 为完整危险关键字表（含配置追加项）
func NewValidator(keywords []string) *Validator {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToUpper(strings.TrimSpace(kw))
		if kw != "" {
			set[kw] = struct{}{}
		}
	}
	return &Validator{keywords: set}
}

// Validate 校验候选查询。只依据SQL文本判定，DeclaredReadOnly 不参与裁决。
func (v *Validator) Validate(candidate *generator.QueryCandidate) Verdict {
	if candidate == nil {
		return rejected("", "候选查询为空")
	}
	return v.ValidateSQL(candidate.SQLText)
}

// ValidateSQL 对SQL文本做词法级安全校验：
//  1. 跳过字符串字面量、带引号的标识符与注释后按词切分，
//     字面量和标识符内的关键字子串不会误命中；
//  2. 首个词必须是SELECT；
//  3. 任何词命中危险关键字即拒绝（词边界匹配）；
//  4. 语句终止符之后出现任何有效内容按语句堆叠拒绝，仅容忍结尾的单个分号。
//
// 无法识别的结构一律拒绝，宁可错杀不可放过。
func (v *Validator) ValidateSQL(sqlText string) Verdict {
	runes := []rune(sqlText)
	n := len(runes)
	i := 0
	sawFirstWord := false
	terminated := false

	for i < n {
		ch := runes[i]
		switch {
		case ch == '-' && i+1 < n && runes[i+1] == '-':
			// 行注释跳到行尾
			for i < n && runes[i] != '\n' {
				i++
			}
		case ch == '/' && i+1 < n && runes[i+1] == '*':
			// 块注释跳到 */，未闭合则吞掉剩余全部
			i += 2
			for i+1 < n && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			if i+1 < n {
				i += 2
			} else {
				i = n
			}
		case unicode.IsSpace(ch):
			i++
		case terminated:
			// 终止符之后的任何有效内容都视为第二条语句
			return rejected("", "包含多条SQL语句，仅允许单条SELECT查询")
		case ch == ';':
			terminated = true
			i++
		case ch == '\'':
			// 字符串字面量，'' 为转义
			i++
			for i < n {
				if runes[i] == '\'' {
					if i+1 < n && runes[i+1] == '\'' {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
		case ch == '"':
			i = skipQuoted(runes, i, '"')
		case ch == '`':
			i = skipQuoted(runes, i, '`')
		case isWordStart(ch):
			j := i
			for j < n && isWordPart(runes[j]) {
				j++
			}
			word := strings.ToUpper(string(runes[i:j]))
			if !sawFirstWord {
				sawFirstWord = true
				if word != "SELECT" {
					if _, bad := v.keywords[word]; bad {
						return rejected(word, fmt.Sprintf("包含危险关键字 %s，仅允许只读的SELECT查询", word))
					}
					return rejected("", fmt.Sprintf("查询必须以SELECT开头，收到的是 %s", word))
				}
			} else if _, bad := v.keywords[word]; bad {
				return rejected(word, fmt.Sprintf("包含危险关键字 %s，仅允许只读的SELECT查询", word))
			}
			i = j
		default:
			// 运算符、括号、数字等符号对安全裁决无影响
			i++
		}
	}

	if !sawFirstWord {
		return rejected("", "SQL为空或仅包含注释")
	}
	return Verdict{Approved: true}
}

// skipQuoted 跳过以 quote 包裹的标识符，返回新的游标位置
func skipQuoted(runes []rune, start int, quote rune) int {
	i := start + 1
	n := len(runes)
	for i < n && runes[i] != quote {
		i++
	}
	if i < n {
		i++
	}
	return i
}

func isWordStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isWordPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func rejected(keyword, reason string) Verdict {
	return Verdict{
		Approved:       false,
		MatchedKeyword: keyword,
		Reason:         reason,
	}
}

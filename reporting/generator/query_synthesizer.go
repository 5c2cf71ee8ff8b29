package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/sashabaranov/go-openai"

	"github.com/breddycfc/social-places-ai-test/core/config"
	coreErrors "github.com/breddycfc/social-places-ai-test/core/errors"
	"github.com/breddycfc/social-places-ai-test/core/model"
	"github.com/breddycfc/social-places-ai-test/pkg/schema"
)

// DefaultSchemaDescription 内置的评论库结构说明，随用户消息发给模型。
// 配置 report.schemaDescription 非空时整体替换。
const DefaultSchemaDescription = `DATABASE SCHEMA:

Table: reviews
    id              INTEGER PRIMARY KEY
    store_name      TEXT (e.g., 'Social Places V&A Waterfront')
    brand_name      TEXT (always 'Social Places' for this database)
    platform        TEXT (Google, Facebook, TripAdvisor, Instagram, Hellopeter)
    review_date     DATETIME
    review_comment  TEXT
    reviewer_name   TEXT
    review_status   TEXT (Resolved, Open, Pending)
    rating          INTEGER (1-5)
    created_at      DATETIME

Table: review_categories
    id              INTEGER PRIMARY KEY
    review_id       INTEGER (foreign key to reviews.id)
    category_name   TEXT (e.g., 'Service', 'Food', 'Cleanliness', 'Atmosphere', 'Environment')
    sentiment       TEXT (Positive, Negative, Neutral)

Table: review_ratings (dynamic rating fields)
    id              INTEGER PRIMARY KEY
    review_id       INTEGER (foreign key to reviews.id)
    field_name      TEXT (e.g., 'Service', 'Cleanliness')
    rating_value    INTEGER (1-5)

Table: review_extras (dynamic extra fields)
    id              INTEGER PRIMARY KEY
    review_id       INTEGER (foreign key to reviews.id)
    field_name      TEXT (e.g., 'Waitron Name', 'Meal Ordered')
    field_value     TEXT

INDEXES:
    reviews(store_name), reviews(brand_name), reviews(platform),
    reviews(review_date), reviews(rating),
    review_categories(review_id), review_categories(category_name),
    review_categories(sentiment),
    review_ratings(review_id), review_extras(review_id)

AVAILABLE STORES:
    - Social Places V&A Waterfront
    - Social Places Canal Walk
    - Social Places Gateway
    - Social Places Sandton City
    - Social Places Menlyn Park
    - Social Places Eastgate
    - Social Places Tyger Valley
    - Social Places Cavendish Square
    - Social Places Mall of Africa
    - Social Places Brooklyn Mall

IMPORTANT NOTES:
- This is a READ-ONLY database. Only SELECT queries are allowed.
- For sentiment analysis, JOIN reviews with review_categories.
- Use proper JOINs when accessing related tables.
- Prefer filtering on indexed columns for performance.`

// queryRules 发给模型的行为规则（系统消息）。
// 规则只作为指令传输，强制执行完全由安全校验器负责。
const queryRules = `You are a SQL query generator for a restaurant review analytics system.

Convert the user's natural language question into a single SQLite SELECT query.

RULES:
1. ONLY generate SELECT statements. Never INSERT, UPDATE, DELETE, DROP or any other modification command.
2. Generate exactly one statement. Never stack multiple statements.
3. Always use proper table aliases for readability.
4. For questions about sentiment or categories, JOIN with the review_categories table.
5. For questions about specific rating fields (Service, Cleanliness), JOIN with the review_ratings table.
6. For questions about extra fields (Waitron Name, Meal Ordered), JOIN with the review_extras table.
7. Use appropriate aggregations (COUNT, AVG, SUM) for summary questions.
8. Include ORDER BY and LIMIT for "top" or "bottom" style questions.
9. Prefer filtering on indexed columns (store_name, brand_name, platform, review_date, rating).
10. Add a LIMIT clause whenever a question could return many rows (default LIMIT 100).
11. Use DATE functions for time-based filtering.
12. Set declared_read_only to whether the generated statement only reads data.

HANDLING AMBIGUOUS QUESTIONS:
If a question is unclear or could have multiple interpretations, set is_ambiguous to true,
describe the needed clarification in clarification_hint, and still provide a best-guess SQL
query for the most likely interpretation. Never return an empty sql_query.`

// responseSchemaJSON 模型结构化输出的JSON Schema（strict模式，所有字段必填）
const responseSchemaJSON = `{
  "type": "object",
  "properties": {
    "sql_query": {
      "type": "string",
      "description": "The SQLite SELECT statement that answers the question"
    },
    "explanation": {
      "type": "string",
      "description": "Plain language explanation of what the query does"
    },
    "is_ambiguous": {
      "type": "boolean",
      "description": "Whether the question needs clarification"
    },
    "clarification_hint": {
      "type": ["string", "null"],
      "description": "What clarification is needed, null when not ambiguous"
    },
    "declared_read_only": {
      "type": "boolean",
      "description": "Whether the generated statement only reads data"
    }
  },
  "required": ["sql_query", "explanation", "is_ambiguous", "clarification_hint", "declared_read_only"],
  "additionalProperties": false
}`

// DefaultClarificationHint 模型声明歧义却未给出澄清说明时的兜底提示
const DefaultClarificationHint = "问题存在多种理解方式，已按最可能的意图生成查询；如结果不符，请补充更具体的条件（例如门店、时间范围或数量）。"

// QueryCandidate 候选查询。模型输出属于不可信数据，这里只做转录，
// 能否执行由安全校验器独立裁决。
type QueryCandidate struct {
	SQLText           string `json:"sql"`                // 生成的SQL文本
	Explanation       string `json:"explanation"`        // 查询逻辑说明
	IsAmbiguous       bool   `json:"is_ambiguous"`       // 问题是否有歧义
	ClarificationHint string `json:"clarification_hint"` // 需要澄清的内容
	DeclaredReadOnly  bool   `json:"declared_read_only"` // 模型自述的只读声明，校验器不信任该值
}

// ModelCaller 模型调用接口
type ModelCaller interface {
	ChatCompletion(ctx context.Context, params model.ChatCompletionParams) (*openai.ChatCompletionResponse, error)
}

// Config 合成器配置
type Config struct {
	ModelName         string        // 模型名称
	Temperature       float32       // 采样温度，SQL生成要求低随机性
	Timeout           time.Duration // 模型调用超时，与SQL执行超时互相独立
	SchemaDescription string        // 评论库结构说明，为空时使用内置说明
}

// Synthesizer 查询合成器：把自然语言问题转换为候选SQL查询。
// 对外部模型的唯一依赖收敛在 ModelCaller 接口上。
type Synthesizer struct {
	caller ModelCaller
	cfg    Config
}

// NewSynthesizer 创建查询合成器
func NewSynthesizer(caller ModelCaller, cfg Config) *Synthesizer {
	if cfg.SchemaDescription == "" {
		cfg.SchemaDescription = DefaultSchemaDescription
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Duration(config.DefaultModelTimeoutSeconds) * time.Second
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = config.DefaultModelTemperature
	}
	return &Synthesizer{caller: caller, cfg: cfg}
}

// SchemaDescription 返回当前生效的评论库结构说明
func (s *Synthesizer) SchemaDescription() string {
	return s.cfg.SchemaDescription
}

// Synthesize 将自然语言问题转换为候选查询。
// 失败统一归入生成失败错误族：服务不可达、回复缺字段或不可解析、
// 模型调用超时。模型声明歧义不算失败，仍返回最优猜测SQL并附带澄清提示。
func (s *Synthesizer) Synthesize(ctx context.Context, question string) (*QueryCandidate, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	params := model.ChatCompletionParams{
		ModelName:   s.cfg.ModelName,
		Temperature: s.cfg.Temperature,
		Messages: []*schema.Message{
			schema.SystemMessage(queryRules),
			schema.UserMessage(s.buildUserMessage(question)),
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "sql_query_response",
				Schema: json.RawMessage(responseSchemaJSON),
				Strict: true,
			},
		},
	}

	resp, err := s.caller.ChatCompletion(callCtx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, coreErrors.Newf(coreErrors.ErrGenerationTimeout, "模型调用超过 %s 超时限制", s.cfg.Timeout)
		}
		return nil, coreErrors.Newf(coreErrors.ErrGenerationFailed, "模型服务调用失败: %v", err)
	}
	if len(resp.Choices) == 0 {
		return nil, coreErrors.New(coreErrors.ErrGenerationMalformed, "模型未返回任何候选内容")
	}

	return s.parseReply(ctx, resp.Choices[0].Message.Content)
}

// buildUserMessage 组装用户消息：库结构说明加原始问题
func (s *Synthesizer) buildUserMessage(question string) string {
	var sb strings.Builder
	sb.WriteString(s.cfg.SchemaDescription)
	sb.WriteString("\n\nUSER QUESTION: ")
	sb.WriteString(question)
	sb.WriteString("\n\nGenerate a SQL query to answer this question. Follow all rules.")
	return sb.String()
}

// modelReply 模型结构化回复。必填字段用指针表示，缺失即判定回复畸形；
// clarification_hint 契约上允许为null。
type modelReply struct {
	SQLQuery          *string `json:"sql_query"`
	Explanation       *string `json:"explanation"`
	IsAmbiguous       *bool   `json:"is_ambiguous"`
	ClarificationHint *string `json:"clarification_hint"`
	DeclaredReadOnly  *bool   `json:"declared_read_only"`
}

// parseReply 严格解析模型回复并落实候选查询的两条不变量：
// 成功回复的SQL不能为空；声明歧义必须带非空澄清提示，缺失时用兜底提示补齐。
func (s *Synthesizer) parseReply(ctx context.Context, content string) (*QueryCandidate, error) {
	var reply modelReply
	if err := sonic.Unmarshal([]byte(content), &reply); err != nil {
		g.Log().Warningf(ctx, "模型回复不是合法JSON: %v, 内容: %s", err, content)
		return nil, coreErrors.Newf(coreErrors.ErrGenerationMalformed, "模型回复无法解析: %v", err)
	}
	if missing := missingFields(&reply); len(missing) > 0 {
		return nil, coreErrors.Newf(coreErrors.ErrGenerationMalformed, "模型回复缺少必填字段: %s", strings.Join(missing, ", "))
	}

	candidate := &QueryCandidate{
		SQLText:          strings.TrimSpace(*reply.SQLQuery),
		Explanation:      strings.TrimSpace(*reply.Explanation),
		IsAmbiguous:      *reply.IsAmbiguous,
		DeclaredReadOnly: *reply.DeclaredReadOnly,
	}
	if reply.ClarificationHint != nil {
		candidate.ClarificationHint = strings.TrimSpace(*reply.ClarificationHint)
	}
	if candidate.SQLText == "" {
		return nil, coreErrors.New(coreErrors.ErrGenerationMalformed, "模型回复中SQL为空")
	}
	if candidate.IsAmbiguous && candidate.ClarificationHint == "" {
		candidate.ClarificationHint = DefaultClarificationHint
	}
	return candidate, nil
}

// missingFields 收集回复中缺失的必填字段名
func missingFields(r *modelReply) []string {
	var missing []string
	if r.SQLQuery == nil {
		missing = append(missing, "sql_query")
	}
	if r.Explanation == nil {
		missing = append(missing, "explanation")
	}
	if r.IsAmbiguous == nil {
		missing = append(missing, "is_ambiguous")
	}
	if r.DeclaredReadOnly == nil {
		missing = append(missing, "declared_read_only")
	}
	return missing
}

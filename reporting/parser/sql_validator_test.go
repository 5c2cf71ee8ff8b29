package parser

import (
	"testing"

	"github.com/breddycfc/social-places-ai-test/reporting/generator"
	"github.com/breddycfc/social-places-ai-test/reporting/guard"
)

func newTestValidator() *Validator {
	return NewValidator(guard.ForbiddenKeywords(nil))
}

func TestValidateSQL(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name         string
		sql          string
		wantApproved bool
		wantKeyword  string
	}{
		{
			name:         "普通SELECT放行",
			sql:          "SELECT store_name, AVG(rating) FROM reviews GROUP BY store_name",
			wantApproved: true,
		},
		{
			name:         "小写select放行",
			sql:          "select * from reviews limit 5",
			wantApproved: true,
		},
		{
			name:         "带子查询的SELECT放行",
			sql:          "SELECT * FROM reviews WHERE id IN (SELECT review_id FROM review_extras) ORDER BY id",
			wantApproved: true,
		},
		{
			name:         "行注释开头放行",
			sql:          "-- 各门店平均分\nSELECT AVG(rating) FROM reviews",
			wantApproved: true,
		},
		{
			name:         "块注释开头放行",
			sql:          "/* hint */ SELECT 1",
			wantApproved: true,
		},
		{
			name:         "结尾单个分号放行",
			sql:          "SELECT * FROM reviews;",
			wantApproved: true,
		},
		{
			name:         "分号后仅注释放行",
			sql:          "SELECT 1; -- done",
			wantApproved: true,
		},
		{
			name:         "字面量中的关键字不误伤",
			sql:          "SELECT * FROM reviews WHERE review_comment LIKE '%delete%'",
			wantApproved: true,
		},
		{
			name:         "转义引号字面量不误伤",
			sql:          "SELECT 'it''s time to update the menu' AS note FROM reviews LIMIT 1",
			wantApproved: true,
		},
		{
			name:         "双引号标识符不误伤",
			sql:          `SELECT "drop" FROM audit_words`,
			wantApproved: true,
		},
		{
			name:         "反引号标识符不误伤",
			sql:          "SELECT `update` FROM audit_words",
			wantApproved: true,
		},
		{
			name:         "标识符含关键字子串不误伤",
			sql:          "SELECT executive_summary FROM reports WHERE created_at > '2024-01-01'",
			wantApproved: true,
		},
		{
			name:        "UPDATE语句拒绝",
			sql:         "UPDATE reviews SET rating = 5",
			wantKeyword: "UPDATE",
		},
		{
			name:        "DELETE语句拒绝",
			sql:         "DELETE FROM reviews WHERE rating < 3",
			wantKeyword: "DELETE",
		},
		{
			name:        "INSERT带SELECT仍拒绝",
			sql:         "INSERT INTO archive SELECT * FROM reviews",
			wantKeyword: "INSERT",
		},
		{
			name:        "SELECT中混入DROP拒绝",
			sql:         "SELECT 1 FROM reviews UNION ALL DROP TABLE reviews",
			wantKeyword: "DROP",
		},
		{
			name:        "PRAGMA拒绝",
			sql:         "PRAGMA table_info(reviews)",
			wantKeyword: "PRAGMA",
		},
		{
			name:        "ATTACH拒绝",
			sql:         "SELECT 1 WHERE EXISTS (ATTACH DATABASE 'x' AS y)",
			wantKeyword: "ATTACH",
		},
		{
			name:        "TRUNCATE拒绝",
			sql:         "TRUNCATE TABLE reviews",
			wantKeyword: "TRUNCATE",
		},
		{
			name:        "EXEC拒绝",
			sql:         "EXEC sp_reviews",
			wantKeyword: "EXEC",
		},
		{
			name: "语句堆叠拒绝",
			sql:  "SELECT * FROM reviews; DROP TABLE reviews",
		},
		{
			name: "双分号拒绝",
			sql:  "SELECT 1;;",
		},
		{
			name: "WITH开头拒绝",
			sql:  "WITH t AS (SELECT 1) SELECT * FROM t",
		},
		{
			name: "括号包裹的SELECT拒绝首词缺失",
			sql:  "(SELECT 1)",
			// 括号不是词，首词仍是SELECT，应放行
			wantApproved: true,
		},
		{
			name: "空串拒绝",
			sql:  "",
		},
		{
			name: "仅注释拒绝",
			sql:  "-- nothing here",
		},
		{
			name: "仅空白拒绝",
			sql:  "   \n\t  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.ValidateSQL(tt.sql)
			if verdict.Approved != tt.wantApproved {
				t.Errorf("ValidateSQL(%q).Approved = %v, want %v (reason: %s)",
					tt.sql, verdict.Approved, tt.wantApproved, verdict.Reason)
			}
			if verdict.MatchedKeyword != tt.wantKeyword {
				t.Errorf("ValidateSQL(%q).MatchedKeyword = %q, want %q",
					tt.sql, verdict.MatchedKeyword, tt.wantKeyword)
			}
			if !tt.wantApproved && verdict.Reason == "" {
				t.Errorf("ValidateSQL(%q) 拒绝时必须给出原因", tt.sql)
			}
		})
	}
}

func TestValidateIgnoresReadOnlyClaim(t *testing.T) {
	v := newTestValidator()

	// 只读声明为真也不能改变对文本本身的裁决
	verdict := v.Validate(&generator.QueryCandidate{
		SQLText:          "DELETE FROM reviews",
		DeclaredReadOnly: true,
	})
	if verdict.Approved {
		t.Fatal("声明只读的DELETE必须被拒绝")
	}
	if verdict.MatchedKeyword != "DELETE" {
		t.Errorf("MatchedKeyword = %q, want DELETE", verdict.MatchedKeyword)
	}

	// 反向：声明非只读的纯SELECT照常放行
	verdict = v.Validate(&generator.QueryCandidate{
		SQLText:          "SELECT count(*) FROM reviews",
		DeclaredReadOnly: false,
	})
	if !verdict.Approved {
		t.Errorf("纯SELECT应放行, reason: %s", verdict.Reason)
	}
}

func TestValidateNilCandidate(t *testing.T) {
	v := newTestValidator()
	if verdict := v.Validate(nil); verdict.Approved {
		t.Fatal("空候选必须被拒绝")
	}
}

func TestValidateExtraKeywords(t *testing.T) {
	v := NewValidator(guard.ForbiddenKeywords([]string{"VACUUM"}))

	verdict := v.ValidateSQL("VACUUM")
	if verdict.Approved || verdict.MatchedKeyword != "VACUUM" {
		t.Errorf("追加关键字应生效: %+v", verdict)
	}
}

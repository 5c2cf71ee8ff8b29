package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gogf/gf/v2/frame/g"
	_ "github.com/mattn/go-sqlite3"

	"github.com/breddycfc/social-places-ai-test/core/config"
	coreErrors "github.com/breddycfc/social-places-ai-test/core/errors"
)

// PlanStep 存储引擎返回的查询计划步骤（EXPLAIN QUERY PLAN 的一行）
type PlanStep struct {
	ID     int    `json:"id"`     // 步骤编号
	Parent int    `json:"parent"` // 父步骤编号
	Detail string `json:"detail"` // 引擎给出的计划描述
}

// Result 查询执行结果。行数据与查询计划都是本次请求独占的快照，
// 返回后不再被执行器持有。
type Result struct {
	Columns   []string                 // 列名，按查询返回顺序
	Rows      []map[string]interface{} // 行数据
	PlanTrace []PlanStep               // 查询计划（尽力而为，可能为空）
	Elapsed   time.Duration            // 执行耗时
}

// Pool 只读SQLite执行池。
// 连接以 mode=ro 加 query_only 打开，任何写语句在引擎层直接失败，
// 与上游的安全校验构成互相独立的两道防线。
type Pool struct {
	db     *sql.DB
	dbPath string
}

// NewPool 打开只读执行池并验证数据库文件可读。
// busyTimeoutMs 用于缓解写路径持锁时的读阻塞。
func NewPool(dbPath string, busyTimeoutMs, maxOpenConns int) (*Pool, error) {
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = config.DefaultBusyTimeoutMs
	}
	if maxOpenConns <= 0 {
		maxOpenConns = config.DefaultMaxOpenConns
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_query_only=1&_busy_timeout=%d", dbPath, busyTimeoutMs)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开只读数据库失败: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("只读数据库连接测试失败: %w", err)
	}

	return &Pool{db: db, dbPath: dbPath}, nil
}

// Execute 在给定超时预算内执行单条只读查询。
// 超时通过可取消的上下文强制执行：到期即中断引擎内的语句，
// 返回超时错误并丢弃已扫描的部分行，不把截断结果当成功返回。
// 行数据取回后再获取查询计划，计划获取失败只降级为无性能分析，
// 不影响已取回的查询结果。
func (p *Pool) Execute(ctx context.Context, sqlText string, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultExecutionTimeoutSeconds) * time.Second
	}
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	rows, err := p.db.QueryContext(queryCtx, sqlText)
	if err != nil {
		return nil, classify(queryCtx, err, timeout)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, classify(queryCtx, err, timeout)
	}

	data := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, classify(queryCtx, err, timeout)
		}

		row := make(map[string]interface{}, len(columns))
		for i, colName := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				row[colName] = string(b)
			} else {
				row[colName] = val
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(queryCtx, err, timeout)
	}

	result := &Result{
		Columns: columns,
		Rows:    data,
		Elapsed: time.Since(start),
	}
	result.PlanTrace = p.explainPlan(queryCtx, sqlText)
	return result, nil
}

// Close 关闭执行池
func (p *Pool) Close() error {
	return p.db.Close()
}

// explainPlan 获取查询计划，失败只记录告警并返回空计划
func (p *Pool) explainPlan(ctx context.Context, sqlText string) []PlanStep {
	rows, err := p.db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+sqlText)
	if err != nil {
		g.Log().Warningf(ctx, "获取查询计划失败（不影响查询结果）: %v", err)
		return nil
	}
	defer rows.Close()

	var steps []PlanStep
	for rows.Next() {
		var step PlanStep
		var notUsed int
		if err := rows.Scan(&step.ID, &step.Parent, &notUsed, &step.Detail); err != nil {
			g.Log().Warningf(ctx, "解析查询计划失败（不影响查询结果）: %v", err)
			return nil
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		g.Log().Warningf(ctx, "读取查询计划失败（不影响查询结果）: %v", err)
		return nil
	}
	return steps
}

// classify 区分超时与引擎错误。上下文到期后引擎报告的中断错误
// 一律按超时归类，调用方依赖这两类错误走不同的提示文案。
func classify(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return coreErrors.Newf(coreErrors.ErrExecutionTimeout, "查询执行超过 %s 超时限制", timeout)
	}
	return coreErrors.Newf(coreErrors.ErrEngineFailure, "存储引擎执行失败: %v", err)
}

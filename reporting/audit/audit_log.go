package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/breddycfc/social-places-ai-test/core/config"
)

// Record 单次请求的终态审计快照
type Record struct {
	ID        string    `json:"id"`         // 请求ID
	Kind      string    `json:"kind"`       // question | sql
	Input     string    `json:"input"`      // 原始问题或SQL
	Status    string    `json:"status"`     // blocked | rejected | executed | failed
	Reason    string    `json:"reason"`     // 终止原因
	SQL       string    `json:"sql"`        // 实际校验/执行的SQL
	RowCount  int       `json:"row_count"`  // 返回行数
	ElapsedMs int64     `json:"elapsed_ms"` // 执行耗时（毫秒）
	CreatedAt time.Time `json:"created_at"` // 记录时间
}

// Log 进程内审计日志。固定容量，写满后淘汰最旧记录，不做持久化，
// 服务重启即清空。
type Log struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
}

// NewLog 创建审计日志，capacity 不合法时退回默认容量
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = config.DefaultAuditCapacity
	}
	return &Log{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}
}

// Append 追加一条终态记录并返回记录ID。
// 未携带ID时自动生成，未携带时间时取当前时间。
func (l *Log) Append(record Record) string {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) >= l.capacity {
		copy(l.records, l.records[1:])
		l.records = l.records[:len(l.records)-1]
	}
	l.records = append(l.records, record)
	return record.ID
}

// Recent 返回最新的至多 limit 条记录，新记录在前。
// limit 不合法时返回全部。
func (l *Log) Recent(limit int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.records) {
		limit = len(l.records)
	}
	out := make([]Record, 0, limit)
	for i := len(l.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// Size 当前记录条数
func (l *Log) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

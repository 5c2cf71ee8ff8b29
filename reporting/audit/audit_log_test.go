package audit

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendGeneratesID(t *testing.T) {
	log := NewLog(4)

	id := log.Append(Record{Kind: "question", Input: "q1", Status: "executed"})
	assert.NotEmpty(t, id)

	records := log.Recent(1)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestAppendKeepsProvidedID(t *testing.T) {
	log := NewLog(4)

	id := log.Append(Record{ID: "fixed-id", Kind: "sql", Input: "SELECT 1", Status: "executed"})
	assert.Equal(t, "fixed-id", id)
}

func TestCapacityEvictsOldest(t *testing.T) {
	log := NewLog(3)

	for i := 1; i <= 5; i++ {
		log.Append(Record{ID: fmt.Sprintf("r%d", i), Status: "executed"})
	}

	assert.Equal(t, 3, log.Size())
	records := log.Recent(10)
	require.Len(t, records, 3)
	// 新记录在前，最旧的 r1、r2 已被淘汰
	assert.Equal(t, "r5", records[0].ID)
	assert.Equal(t, "r4", records[1].ID)
	assert.Equal(t, "r3", records[2].ID)
}

func TestRecentLimit(t *testing.T) {
	log := NewLog(10)
	for i := 1; i <= 6; i++ {
		log.Append(Record{ID: fmt.Sprintf("r%d", i), Status: "blocked"})
	}

	records := log.Recent(2)
	require.Len(t, records, 2)
	assert.Equal(t, "r6", records[0].ID)
	assert.Equal(t, "r5", records[1].ID)

	// limit 不合法时返回全部
	assert.Len(t, log.Recent(0), 6)
	assert.Len(t, log.Recent(-1), 6)
	assert.Len(t, log.Recent(100), 6)
}

func TestConcurrentAppend(t *testing.T) {
	log := NewLog(64)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Append(Record{Input: fmt.Sprintf("q%d", n), Status: "executed"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, log.Size())
}

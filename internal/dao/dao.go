package dao

import (
	"context"
	"fmt"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	coreConfig "github.com/breddycfc/social-places-ai-test/core/config"
	gormModel "github.com/breddycfc/social-places-ai-test/internal/model/gorm"
)

var db *gorm.DB

// InitStore 初始化评论库：打开（必要时创建）SQLite文件、迁移表结构，并按需灌入演示数据。
// 这是唯一的写路径，查询接口走独立的只读连接。
func InitStore(ctx context.Context) error {
	dbPath := g.Cfg().MustGet(ctx, "report.dbPath", coreConfig.DefaultDBPath).String()

	var err error
	db, err = OpenStore(dbPath)
	if err != nil {
		return err
	}

	if g.Cfg().MustGet(ctx, "store.seedIfEmpty", true).Bool() {
		count := g.Cfg().MustGet(ctx, "store.seedReviewCount", coreConfig.DefaultSeedReviewCount).Int()
		inserted, err := SeedIfEmpty(ctx, db, count)
		if err != nil {
			return fmt.Errorf("灌入演示评论数据失败: %w", err)
		}
		if inserted > 0 {
			g.Log().Infof(ctx, "评论库为空，已灌入 %d 条演示评论 - 路径: %s", inserted, dbPath)
		}
	}
	return nil
}

// OpenStore 打开评论库的读写连接并完成表结构迁移
func OpenStore(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("打开评论库失败 (%s): %w", path, err)
	}
	if err = gormModel.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("迁移评论库表结构失败: %w", err)
	}
	return gdb, nil
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	if db == nil {
		g.Log().Fatal(gctx.New(), "review store not initialized")
	}
	return db
}

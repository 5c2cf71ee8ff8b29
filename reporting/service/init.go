package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"

	coreConfig "github.com/breddycfc/social-places-ai-test/core/config"
	"github.com/breddycfc/social-places-ai-test/core/model"
	"github.com/breddycfc/social-places-ai-test/reporting/analyzer"
	"github.com/breddycfc/social-places-ai-test/reporting/audit"
	"github.com/breddycfc/social-places-ai-test/reporting/executor"
	"github.com/breddycfc/social-places-ai-test/reporting/generator"
	"github.com/breddycfc/social-places-ai-test/reporting/guard"
	"github.com/breddycfc/social-places-ai-test/reporting/parser"
)

var reportService *ReportService

// Init 读取配置并装配报表网关服务图，启动时调用一次。
// 只读执行池要求库文件已存在，必须在评论库初始化之后调用。
func Init(ctx context.Context) error {
	// 守卫词表：默认词表加配置追加项
	terms := guard.RestrictedTerms(g.Cfg().MustGet(ctx, "guard.extraRestrictedTerms", []string{}).Strings())
	keywords := guard.ForbiddenKeywords(g.Cfg().MustGet(ctx, "guard.extraForbiddenKeywords", []string{}).Strings())

	// 只读执行池
	dbPath := g.Cfg().MustGet(ctx, "report.dbPath", coreConfig.DefaultDBPath).String()
	pool, err := executor.NewPool(
		dbPath,
		g.Cfg().MustGet(ctx, "report.busyTimeoutMs", coreConfig.DefaultBusyTimeoutMs).Int(),
		g.Cfg().MustGet(ctx, "report.maxOpenConns", coreConfig.DefaultMaxOpenConns).Int(),
	)
	if err != nil {
		return fmt.Errorf("初始化只读执行池失败: %w", err)
	}

	// 查询合成器（外部模型）
	modelService := model.NewModelService(
		g.Cfg().MustGet(ctx, "model.apiKey", "").String(),
		g.Cfg().MustGet(ctx, "model.baseURL", "").String(),
	)
	synth := generator.NewSynthesizer(modelService, generator.Config{
		ModelName:         g.Cfg().MustGet(ctx, "model.name", "").String(),
		Temperature:       g.Cfg().MustGet(ctx, "model.temperature", coreConfig.DefaultModelTemperature).Float32(),
		Timeout:           time.Duration(g.Cfg().MustGet(ctx, "model.timeoutSeconds", coreConfig.DefaultModelTimeoutSeconds).Int()) * time.Second,
		SchemaDescription: g.Cfg().MustGet(ctx, "report.schemaDescription", "").String(),
	})

	executionTimeout := time.Duration(g.Cfg().MustGet(ctx, "report.executionTimeoutSeconds",
		coreConfig.DefaultExecutionTimeoutSeconds).Int()) * time.Second

	reportService = New(
		guard.NewScreener(terms),
		synth,
		parser.NewValidator(keywords),
		pool,
		analyzer.New(),
		audit.NewLog(g.Cfg().MustGet(ctx, "audit.capacity", coreConfig.DefaultAuditCapacity).Int()),
		Options{
			ExecutionTimeout:  executionTimeout,
			SchemaDescription: synth.SchemaDescription(),
			RestrictedTerms:   terms,
			ForbiddenKeywords: keywords,
		},
	)

	g.Log().Infof(ctx, "Report service initialized - DB: %s, ExecTimeout: %s, Terms: %d, Keywords: %d",
		dbPath, executionTimeout, len(terms), len(keywords))
	return nil
}

// Get 获取报表网关单例
func Get() *ReportService {
	if reportService == nil {
		g.Log().Fatal(gctx.New(), "report service not initialized, call Init first")
	}
	return reportService
}

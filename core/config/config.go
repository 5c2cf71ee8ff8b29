package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogf/gf/v2/frame/g"
)

// 配置默认值（config.yaml 未显式配置时生效）
const (
	DefaultDBPath                  = "reviews.db"
	DefaultExecutionTimeoutSeconds = 120
	DefaultModelTimeoutSeconds     = 30
	DefaultModelTemperature        = 0.1
	DefaultBusyTimeoutMs           = 5000
	DefaultMaxOpenConns            = 8
	DefaultAuditCapacity           = 200
	DefaultSeedReviewCount         = 240
)

// ValidateConfiguration validates all required configuration items
func ValidateConfiguration(ctx context.Context) error {
	var missingConfigs []string
	var warnings []string

	// 验证模型配置（查询合成依赖外部模型服务，缺失则无法启动）
	modelAPIKey := g.Cfg().MustGet(ctx, "model.apiKey", "").String()
	modelBaseURL := g.Cfg().MustGet(ctx, "model.baseURL", "").String()
	modelName := g.Cfg().MustGet(ctx, "model.name", "").String()

	if modelAPIKey == "" {
		missingConfigs = append(missingConfigs, "model.apiKey")
	}
	if modelBaseURL == "" {
		missingConfigs = append(missingConfigs, "model.baseURL")
	}
	if modelName == "" {
		missingConfigs = append(missingConfigs, "model.name")
	}

	// 验证评论数据库配置（有默认值，缺失仅提示）
	dbPath := g.Cfg().MustGet(ctx, "report.dbPath", "").String()
	if dbPath == "" {
		warnings = append(warnings, fmt.Sprintf("report.dbPath is not set, using default %q", DefaultDBPath))
	}

	execTimeout := g.Cfg().MustGet(ctx, "report.executionTimeoutSeconds", 0).Int()
	if execTimeout < 0 {
		missingConfigs = append(missingConfigs, "report.executionTimeoutSeconds (must not be negative)")
	} else if execTimeout == 0 {
		warnings = append(warnings, fmt.Sprintf("report.executionTimeoutSeconds is not set, using default %d", DefaultExecutionTimeoutSeconds))
	}

	modelTimeout := g.Cfg().MustGet(ctx, "model.timeoutSeconds", 0).Int()
	if modelTimeout < 0 {
		missingConfigs = append(missingConfigs, "model.timeoutSeconds (must not be negative)")
	}

	// 输出警告信息
	if len(warnings) > 0 {
		g.Log().Warningf(ctx, "Configuration warnings:\n- %s", strings.Join(warnings, "\n- "))
	}

	// 检查是否有缺失的必需配置
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configuration items:\n- %s\n\nPlease check your config.yaml file and ensure all required settings are properly configured", strings.Join(missingConfigs, "\n- "))
	}

	// 输出成功信息
	g.Log().Info(ctx, "✓ All required configuration items are present")

	return nil
}

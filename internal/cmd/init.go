package cmd

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/breddycfc/social-places-ai-test/core/config"
	"github.com/breddycfc/social-places-ai-test/internal/dao"
	"github.com/breddycfc/social-places-ai-test/reporting/service"
)

// InitAll initializes all components of the application
func init() {
	ctx := context.Background()

	// Validate configuration before initializing components
	g.Log().Info(ctx, "Validating application configuration...")
	err := config.ValidateConfiguration(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Configuration validation failed:\n%v", err)
	}

	// Initialize review store (write path: creates the SQLite file and seeds demo data)
	err = dao.InitStore(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Review store initialization failed: %v", err)
	}

	// Initialize report service (guard, synthesizer, validator, executor, analyzer)
	err = service.Init(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Report service initialization failed: %v", err)
	}

	g.Log().Info(ctx, "✓ All components initialized successfully")
}

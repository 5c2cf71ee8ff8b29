package main

import (
	"github.com/gogf/gf/v2/os/gctx"

	"github.com/breddycfc/social-places-ai-test/internal/cmd"
)

func main() {
	cmd.Main.Run(gctx.GetInitCtx())
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/attunelabs/attune-backend/internal/app"
	"github.com/attunelabs/attune-backend/internal/platform/envutil"
	"github.com/attunelabs/attune-backend/internal/platform/shutdown"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a.Start()

	port := envutil.String("PORT", "8080")
	if err := a.Run(ctx, ":"+port); err != nil {
		a.Log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/app"
	jobsdomain "github.com/attunelabs/attune-backend/internal/domain/jobs"
	"github.com/attunelabs/attune-backend/internal/jobs/overnight"
	"github.com/attunelabs/attune-backend/internal/platform/shutdown"
)

// nightbuild runs one analysis batch (or one user) from the command line,
// outside the nightly schedule.
func main() {
	timezone := flag.String("timezone", "", "limit the batch to one IANA timezone")
	dryRun := flag.Bool("dry-run", false, "compute everything, persist nothing")
	userID := flag.String("user", "", "build a single user id instead of a batch")
	flag.Parse()

	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if *userID != "" {
		id, err := uuid.Parse(*userID)
		if err != nil {
			fmt.Printf("invalid -user id: %v\n", err)
			os.Exit(1)
		}
		result, err := a.Services.Builder.RunUser(ctx, id, *dryRun)
		if err != nil {
			a.Log.Error("User build failed", "user_id", id, "error", err)
			os.Exit(1)
		}
		printJSON(result)
		if result.Outcome == jobsdomain.OutcomeFailed {
			os.Exit(1)
		}
		return
	}

	summary, err := a.Services.Builder.RunBatch(ctx, overnight.BatchOptions{
		Timezone: *timezone,
		DryRun:   *dryRun,
		Trigger:  jobsdomain.TriggerManual,
	})
	if err != nil {
		a.Log.Error("Batch failed", "timezone", *timezone, "error", err)
		os.Exit(1)
	}
	printJSON(summary)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Printf("encode output: %v\n", err)
	}
}

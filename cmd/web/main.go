package main

import (
	"os"

	"zuschusscheck-web/internal/cli"
	"zuschusscheck-web/internal/shared/telemetry"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		telemetry.Error("command.failed", map[string]any{"error": err})
		telemetry.Sync()
		os.Exit(1)
	}
}

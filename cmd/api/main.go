package main

import (
	"os"

	"resume-match-api/internal/bootstrap"
	"resume-match-api/internal/shared/config"
	"resume-match-api/internal/shared/server"
	"resume-match-api/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{"addr": addr})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("server.error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}

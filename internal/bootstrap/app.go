package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"resume-match-api/internal/analyses"
	"resume-match-api/internal/llm"
	"resume-match-api/internal/llm/gemini"
	"resume-match-api/internal/llm/openai"
	"resume-match-api/internal/services/health"
	"resume-match-api/internal/shared/config"
	"resume-match-api/internal/shared/server"
	"resume-match-api/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	Gateway         llm.Gateway
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	HealthService   *health.Service
}

// Build wires config, gateway, service and router. A missing credential is
// not fatal: the analyze endpoint answers with a configuration error instead.
func Build(cfg config.Config) (*App, error) {
	telemetry.SetLevel(cfg.LogLevel)

	gateway, err := NewGateway(context.Background(), cfg)
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		telemetry.Error("config.missing_api_key", map[string]any{
			"provider": cfg.LLMProvider,
		})
		gateway = nil
	case err != nil:
		return nil, err
	}

	svc := &analyses.Service{
		Gateway:  gateway,
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
	}

	app := &App{
		Config:          cfg,
		Gateway:         svc.Gateway,
		AnalysesService: svc,
		AnalysisHandler: analyses.NewHandler(svc),
		HealthService:   health.NewService(cfg.LLMProvider, svc.Configured),
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		Health:          app.HealthService,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":            cfg.Env,
		"provider":       cfg.LLMProvider,
		"model":          cfg.LLMModel,
		"llm_configured": svc.Configured(),
	})
	return app, nil
}

// NewGateway constructs the provider client named by cfg.LLMProvider.
func NewGateway(ctx context.Context, cfg config.Config) (llm.Gateway, error) {
	timeout := time.Duration(cfg.LLMTimeoutSecs) * time.Second
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:      cfg.LLMAPIKey(),
			Model:       cfg.LLMModel,
			BaseURL:     cfg.LLMBaseURL,
			Temperature: cfg.LLMTemperature,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderGroq, config.ProviderOpenAI:
		client, err := openai.NewClient(openai.Options{
			Provider:    cfg.LLMProvider,
			APIKey:      cfg.LLMAPIKey(),
			Model:       cfg.LLMModel,
			BaseURL:     cfg.LLMBaseURL,
			Temperature: cfg.LLMTemperature,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}

package bootstrap

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-api/internal/shared/config"
	"resume-match-api/internal/shared/telemetry"
)

func TestMain(m *testing.M) {
	telemetry.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func baseConfig(provider string) config.Config {
	return config.Config{
		Port:            "8080",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LogLevel:        "info",
		LLMProvider:     provider,
		LLMModel:        config.DefaultModel(provider),
		LLMTimeoutSecs:  5,
	}
}

func TestBuildWithoutKeyServesConfigError(t *testing.T) {
	app, err := Build(baseConfig(config.ProviderGroq))
	require.NoError(t, err)
	assert.Nil(t, app.Gateway)
	assert.False(t, app.AnalysesService.Configured())

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"role":"SRE","resumeText":"Linux"}`))
	app.Router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"Server configuration error: API key not found"}`, resp.Body.String())

	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.JSONEq(t, `{"ok":true,"llmConfigured":false,"provider":"groq"}`, resp.Body.String())
}

func TestBuildRoutesThroughProvider(t *testing.T) {
	calls := 0
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		content := `{"skill_match_percentage":58,"matched_skills":["Python"],"missing_skills":["Airflow","dbt"],"resume_issues":["No metrics"],"improvement_suggestions":["Quantify pipeline throughput"],"simulated_score_after_improvements":74}`
		payload, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	defer provider.Close()

	cfg := baseConfig(config.ProviderOpenAI)
	cfg.LLMBaseURL = provider.URL
	app, err := Build(cfg.WithLLMAPIKey("test-key"))
	require.NoError(t, err)
	require.NotNil(t, app.Gateway)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"role":"Data Engineer","resumeText":"Python, SQL"}`))
	req.Header.Set("Content-Type", "application/json")
	app.Router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"skill_match_percentage":58,"matched_skills":["Python"],"missing_skills":["Airflow","dbt"],"resume_issues":["No metrics"],"improvement_suggestions":["Quantify pipeline throughput"],"simulated_score_after_improvements":74}`, resp.Body.String())
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
	assert.Equal(t, 1, calls)
}

func TestNewGatewayUnknownProvider(t *testing.T) {
	cfg := baseConfig("mystery").WithLLMAPIKey("k")
	_, err := NewGateway(t.Context(), cfg)
	assert.Error(t, err)
}

func TestBuildRejectsUnknownProviderFromEnv(t *testing.T) {
	for _, key := range []string{"CONFIG_FILE", "LLM_MODEL", "LLM_BASE_URL", "GROQ_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}
	t.Setenv("LLM_PROVIDER", "gemeni")
	t.Setenv("LLM_API_KEY", "k")

	_, err := Build(config.Load())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemeni")
}

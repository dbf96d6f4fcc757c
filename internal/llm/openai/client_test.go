package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-api/internal/llm"
	"resume-match-api/internal/shared/telemetry"
)

func TestMain(m *testing.M) {
	telemetry.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Options{Provider: "groq", APIKey: "test-key", Model: "llama-3.3-70b-versatile", BaseURL: url})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Options{Provider: "groq", APIKey: "  ", Model: "m"})
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, groqBaseURL, defaultBaseURL("groq"))
	assert.Equal(t, openAIBaseURL, defaultBaseURL("openai"))
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-3.3-70b-versatile", body["model"])
		assert.EqualValues(t, 0, body["temperature"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "user", messages[1].(map[string]any)["role"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv.URL).Complete(context.Background(), llm.BuildAnalysisPrompt("SRE", "Go"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCompleteProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"invalid api key"}}`, wantStatus: 401, wantMsg: "invalid api key"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`, wantStatus: 429, wantMsg: "slow down"},
		{name: "server error without body", status: http.StatusBadGateway, body: ``, wantStatus: 502},
		{name: "error payload with 200", status: http.StatusOK, body: `{"error":{"message":"model overloaded"}}`, wantStatus: 200, wantMsg: "model overloaded"},
		{name: "undecodable envelope", status: http.StatusOK, body: `not json`, wantStatus: 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Complete(context.Background(), llm.Prompt{User: "x"})
			var gwErr *llm.GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, "groq", gwErr.Provider)
			assert.Equal(t, tt.wantStatus, gwErr.Status)
			if tt.wantMsg != "" {
				assert.Contains(t, gwErr.Error(), tt.wantMsg)
			}
			assert.NotContains(t, gwErr.Error(), "test-key")
		})
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	for _, body := range []string{
		`{"choices":[{"message":{"content":"   "}}]}`,
		`{"choices":[]}`,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))
		_, err := newTestClient(t, srv.URL).Complete(context.Background(), llm.Prompt{User: "x"})
		srv.Close()
		assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	}
}

func TestCompleteHonorsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(t, srv.URL).Complete(ctx, llm.Prompt{User: "x"})
	var gwErr *llm.GatewayError
	require.ErrorAs(t, err, &gwErr)
}

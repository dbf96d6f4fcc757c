package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

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
	c, err := NewClient(context.Background(), Options{APIKey: "test-key", Model: "gemini-2.5-flash", BaseURL: url})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{Model: "gemini-2.5-flash"})
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
}

func TestCompleteUsesSchemaAndReturnsText(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gen := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", gen["responseMimeType"])
		schema := gen["responseSchema"].(map[string]any)
		assert.Len(t, schema["required"], 6)
		assert.Contains(t, body, "systemInstruction")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"skill_match_percentage\":70}"}]}}],"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":8,"totalTokenCount":20}}`)
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv.URL).Complete(context.Background(), llm.BuildAnalysisPrompt("SRE", "Go"))
	require.NoError(t, err)
	assert.Equal(t, `{"skill_match_percentage":70}`, out)
	assert.Equal(t, 1, calls)
}

func TestCompleteEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Complete(context.Background(), llm.Prompt{System: "s", User: "u"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Complete(context.Background(), llm.Prompt{System: "s", User: "u"})
	var gwErr *llm.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "gemini", gwErr.Provider)
	assert.Equal(t, http.StatusForbidden, gwErr.Status)
	assert.NotContains(t, gwErr.Error(), "test-key")
}

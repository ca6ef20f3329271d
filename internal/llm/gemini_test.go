package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		genConfig, _ := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", genConfig["responseMimeType"])
		assert.NotNil(t, genConfig["responseSchema"])
		assert.NotContains(t, genConfig, "maxOutputTokens")
		assert.NotNil(t, body["systemInstruction"])

		contents, _ := body["contents"].([]any)
		require.Len(t, contents, 1)
		parts, _ := contents[0].(map[string]any)["parts"].([]any)
		require.Len(t, parts, 2)
		inline, _ := parts[0].(map[string]any)["inlineData"].(map[string]any)
		assert.Equal(t, "application/pdf", inline["mimeType"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"verdict":"Original","reason":"r","summary":"s","accuracyScore":90}`}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"totalTokenCount": 42},
		})
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL, Model: "gemini-2.5-flash"})
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), GenerateRequest{
		System:     LegalSystemInstruction,
		Prompt:     LegalPrompt("is this deed genuine?", true),
		Attachment: &model.Attachment{Name: "deed.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-1.4")},
		Schema:     LegalSchema,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, `"verdict":"Original"`)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "gemini", provider.Name())
}

func TestGeminiProvider_ConfiguredOutputLimit(t *testing.T) {
	var sent map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sent, _ = body["generationConfig"].(map[string]any)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"result":"True","confidence":"High","detailedExplanation":"e","accuracyScore":90}`}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL, MaxTokens: 8192})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), GenerateRequest{Prompt: "x", Schema: FactSchema})
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.EqualValues(t, 8192, sent["maxOutputTokens"])
}

func TestGeminiProvider_CutOffAtTokenLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model"},
				"finishReason": "MAX_TOKENS",
			}},
		})
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), GenerateRequest{Prompt: "x", Schema: FactSchema})
	assert.ErrorContains(t, err, "output token limit")
}

func TestGeminiProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), GenerateRequest{Prompt: "x", Schema: FactSchema})
	assert.ErrorContains(t, err, "Gemini API error")
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

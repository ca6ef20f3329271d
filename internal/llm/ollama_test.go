package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2-vision", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, "object", req.Format["type"])
		assert.Len(t, req.Images, 1)

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.2-vision",
			Response:        "```json\n{\"verdict\":\"Needs Further Verification\",\"reason\":\"blurry\",\"summary\":\"Unclear.\",\"accuracyScore\":40}\n```",
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.2-vision"})
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), GenerateRequest{
		Prompt:     "check this",
		Attachment: &model.Attachment{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}},
		Schema:     LegalSchema,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.TokensUsed)

	res, err := ParseResult(model.ModeLegal, resp.Text)
	require.NoError(t, err)
	assert.Equal(t, model.LegalNeedsReview, res.Legal.Verdict)
}

func TestOllamaProvider_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing"})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), GenerateRequest{Prompt: "x", Schema: FactSchema})
	assert.ErrorContains(t, err, "model not found")

	noModel, err := NewOllamaProvider(Config{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = noModel.Generate(context.Background(), GenerateRequest{Prompt: "x", Schema: FactSchema})
	assert.ErrorContains(t, err, "model must be specified")
}

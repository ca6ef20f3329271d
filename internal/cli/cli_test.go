package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args. Persistent flags keep their
// values between runs, so callers pass the ones they rely on.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// fakeOllama answers every generate call with reply
func fakeOllama(t *testing.T, reply string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.2",
			"response": reply,
			"done":     true,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func setupEnv(t *testing.T, baseURL string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VERITAS_LLM_PROVIDER", "ollama")
	t.Setenv("VERITAS_LLM_MODEL", "llama3.2")
	t.Setenv("VERITAS_LLM_BASE_URL", baseURL)
	t.Setenv("VERITAS_LOG_LEVEL", "error")
	return home
}

const fakeReply = `{"result":"Fake","confidence":"High","detailedExplanation":"The Earth is an oblate spheroid.","accuracyScore":97}`

func TestVersion(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "veritas v"+Version)
}

func TestCheckFact_RecordsHistory(t *testing.T) {
	srv, calls := fakeOllama(t, fakeReply)
	setupEnv(t, srv.URL)

	out, err := execute(t, "check", "fact", "--json", "--no-cache", "--ephemeral=false", "The", "earth", "is", "flat")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var st session.State
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, session.StatusSuccess, st.Status)
	assert.Equal(t, model.FactFalse, st.Result.Fact.Result)

	out, err = execute(t, "history", "list", "--json", "--ephemeral=false")
	require.NoError(t, err)
	var entries []model.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "The earth is flat", entries[0].Query)
	assert.Equal(t, st.EntryID, entries[0].ID)

	out, err = execute(t, "history", "show", entries[0].ID, "--json", "--ephemeral=false")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "success"`)
	assert.Equal(t, int32(1), calls.Load())

	_, err = execute(t, "history", "clear", "--ephemeral=false")
	require.NoError(t, err)
	out, err = execute(t, "history", "list", "--json", "--ephemeral=false")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestCheckFact_ProviderFailure(t *testing.T) {
	srv, _ := fakeOllama(t, "not json at all")
	setupEnv(t, srv.URL)

	out, err := execute(t, "check", "fact", "--json", "--no-cache", "--ephemeral", "claim")
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Contains(t, out, session.MessageServiceBusy)
}

func TestCheckFact_EmptyIsRejected(t *testing.T) {
	srv, calls := fakeOllama(t, fakeReply)
	setupEnv(t, srv.URL)

	_, err := execute(t, "check", "fact", "--ephemeral", "  ")
	assert.ErrorIs(t, err, session.ErrEmptySubmission)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCheckLegal_RejectsUnsupportedFile(t *testing.T) {
	srv, calls := fakeOllama(t, fakeReply)
	setupEnv(t, srv.URL)

	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04"), 0o644))

	_, err := execute(t, "check", "legal", "--ephemeral", "--file", path)
	assert.True(t, model.IsValidationError(err))
	assert.Equal(t, int32(0), calls.Load())

	legalFile = ""
}

func TestReadAttachment(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "contract.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644))

	att, err := readAttachment(pdf)
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", att.Name)
	assert.Equal(t, "application/pdf", att.MIMEType)

	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = readAttachment(empty)
	assert.True(t, model.IsValidationError(err))

	_, err = readAttachment(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestTheme(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	out, err := execute(t, "theme", "--json=false", "--ephemeral=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Theme: dark")

	out, err = execute(t, "theme", "toggle", "--json=false", "--ephemeral=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Theme: light")

	out, err = execute(t, "theme", "--json=false", "--ephemeral=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Theme: light")

	_, err = execute(t, "theme", "sepia", "--ephemeral=false")
	assert.Error(t, err)
}

func TestFeedback(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	out, err := execute(t, "feedback", "--json=false", "--rating", "5", "--comments", "Great")
	require.NoError(t, err)
	assert.Contains(t, out, "mailto:feedback@veritas.local?subject=Veritas%20AI%20Feedback&body=Rating%3A%205%2F5")

	_, err = execute(t, "feedback", "--rating", "9")
	assert.True(t, model.IsValidationError(err))
	fbRating, fbComments = 0, ""
}

func TestConfigInitAndShow(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")
	path := filepath.Join(t.TempDir(), "veritas.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, "config", "init", "--config", path)
	assert.Error(t, err)

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "provider: ollama")
	assert.Contains(t, out, path)

	cfgFile = ""
}

func TestBatch(t *testing.T) {
	srv, calls := fakeOllama(t, fakeReply)
	setupEnv(t, srv.URL)

	path := filepath.Join(t.TempDir(), "claims.txt")
	require.NoError(t, os.WriteFile(path, []byte("# claims\nfirst\n\nsecond\nfirst\n"), 0o644))

	out, err := execute(t, "batch", path, "--json", "--no-cache", "--ephemeral")
	require.NoError(t, err)

	var items []batchItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Claim)
	assert.Equal(t, "second", items[1].Claim)
	assert.Empty(t, items[0].Error)
	assert.Equal(t, int32(2), calls.Load())
}

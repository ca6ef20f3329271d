package render

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/ppiankov/veritas/internal/llm"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/session"
	"github.com/ppiankov/veritas/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func factResult() model.Result {
	return model.NewFactResult(model.FactResult{
		Result:              model.FactFalse,
		Confidence:          model.ConfidenceHigh,
		DetailedExplanation: "Satellite imagery shows the **Earth** is round.",
		AccuracyScore:       97,
	})
}

func legalResult() model.Result {
	return model.NewLegalResult(model.LegalResult{
		Verdict:       model.LegalNeedsReview,
		Reason:        "The clause cites a repealed statute.",
		Summary:       "Lease agreement",
		AccuracyScore: 55,
	})
}

func TestPaletteFor(t *testing.T) {
	dark := PaletteFor(model.ThemeDark)
	light := PaletteFor(model.ThemeLight)
	assert.NotEqual(t, dark.Foreground, light.Foreground)
	assert.Equal(t, dark, PaletteFor(model.Theme("bogus")))
}

func TestRenderer_FactResult(t *testing.T) {
	for _, theme := range []model.Theme{model.ThemeDark, model.ThemeLight} {
		out := plain(New(theme, 80).Result(factResult()))
		assert.Contains(t, out, "Fact Check")
		assert.Contains(t, out, "Fake")
		assert.Contains(t, out, "High")
		assert.Contains(t, out, "97%")
		assert.Contains(t, out, "Satellite")
	}
}

func TestRenderer_LegalResult(t *testing.T) {
	out := plain(New(model.ThemeDark, 100).Result(legalResult()))
	assert.Contains(t, out, "Legal Check")
	assert.Contains(t, out, "Needs Further Verification")
	assert.Contains(t, out, "Lease agreement")
	assert.Contains(t, out, "55%")
	assert.Contains(t, out, "repealed")
}

func TestRenderer_State(t *testing.T) {
	r := New(model.ThemeDark, 80)
	res := factResult()

	assert.Contains(t, plain(r.State(session.State{Status: session.StatusIdle})), "Ready")
	assert.Contains(t, plain(r.State(session.State{Status: session.StatusLoading})), "Analyzing")
	assert.Contains(t, plain(r.State(session.State{Status: session.StatusFailed, Message: session.MessageServiceBusy})), session.MessageServiceBusy)
	assert.Contains(t, plain(r.State(session.State{Status: session.StatusSuccess, Result: &res})), "Fact Check")
}

func TestRenderer_History(t *testing.T) {
	r := New(model.ThemeLight, 100)
	assert.Contains(t, plain(r.History(nil)), "No history yet")

	entries := []model.HistoryEntry{
		{ID: "id-2", Query: "", FileName: "contract.pdf", Mode: model.ModeLegal, Result: legalResult(), Timestamp: 1_700_000_100_000},
		{ID: "id-1", Query: "the earth is flat", Mode: model.ModeFact, Result: factResult(), Timestamp: 1_700_000_000_000},
	}
	out := plain(r.History(entries))
	assert.Contains(t, out, "contract.pdf")
	assert.Contains(t, out, "the earth is flat")
	assert.Contains(t, out, "id-1")
	assert.Less(t, strings.Index(out, "id-2"), strings.Index(out, "id-1"))
}

func TestRenderer_Entry(t *testing.T) {
	e := model.HistoryEntry{ID: "id-1", Query: "the earth is flat", Mode: model.ModeFact, Result: factResult()}
	out := plain(New(model.ThemeDark, 80).Entry(e))
	assert.Contains(t, out, "id-1")
	assert.Contains(t, out, "the earth is flat")
	assert.Contains(t, out, "Fake")
}

func TestRenderer_Batch(t *testing.T) {
	res := factResult()
	results := []*worker.CheckResult{
		{Index: 0, Claim: "claim one", Result: &res},
		{Index: 1, Claim: "claim two", Error: &llm.ProviderError{Provider: "gemini", Op: "generate", Err: errors.New("quota")}},
		{Index: 2, Claim: "claim three", Error: errors.New("boom")},
	}
	out := plain(New(model.ThemeDark, 80).Batch(results))
	assert.Contains(t, out, "claim one")
	assert.Contains(t, out, session.MessageServiceBusy)
	assert.Contains(t, out, session.MessageUnknown)
	assert.Contains(t, out, "3 checked, 2 failed")
	assert.NotContains(t, out, "quota")
}

func TestScoreBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░ 50%", ScoreBar(50, 10))
	assert.Equal(t, "░░░░░░░░░░ 0%", ScoreBar(-5, 10))
	assert.Equal(t, "██████████ 100%", ScoreBar(120, 10))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "claim", Subject(model.HistoryEntry{Query: "claim", FileName: "a.pdf"}))
	assert.Equal(t, "📎 a.pdf", Subject(model.HistoryEntry{Query: "  ", FileName: "a.pdf"}))
	assert.Equal(t, "(empty)", Subject(model.HistoryEntry{}))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, factResult()))
	assert.Contains(t, buf.String(), `"mode": "fact"`)
	assert.Contains(t, buf.String(), `"accuracyScore": 97`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a b", truncate("a\nb", 10))
}

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/session"
	"github.com/ppiankov/veritas/internal/worker"
)

// Renderer formats results for the terminal in the user's theme
type Renderer struct {
	theme  model.Theme
	width  int
	styles styles
	md     *glamour.TermRenderer
}

// New creates a renderer. width <= 0 uses 80 columns.
func New(theme model.Theme, width int) *Renderer {
	if width <= 0 {
		width = 80
	}

	style := "dark"
	if theme == model.ThemeLight {
		style = "light"
	}

	// explanations fall back to plain text when glamour is unavailable
	md, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width-4),
	)

	return &Renderer{
		theme:  theme,
		width:  width,
		styles: newStyles(PaletteFor(theme), width-2),
		md:     md,
	}
}

// Result renders a result card
func (r *Renderer) Result(res model.Result) string {
	var lines []string

	switch {
	case res.Fact != nil:
		lines = append(lines,
			r.styles.title.Render("Fact Check"),
			r.field("Verdict", r.styles.verdict(res).Render(res.Verdict())),
			r.field("Confidence", r.styles.body.Render(string(res.Fact.Confidence))),
			r.field("Accuracy", ScoreBar(res.Fact.AccuracyScore, 20)),
			"",
			r.markdown(res.Fact.DetailedExplanation),
		)
	case res.Legal != nil:
		lines = append(lines,
			r.styles.title.Render("Legal Check"),
			r.field("Verdict", r.styles.verdict(res).Render(res.Verdict())),
			r.field("Accuracy", ScoreBar(res.Legal.AccuracyScore, 20)),
			r.field("Summary", r.styles.body.Render(res.Legal.Summary)),
			"",
			r.markdown(res.Legal.Reason),
		)
	default:
		return r.Failure("empty result")
	}

	return r.styles.card.Render(strings.Join(lines, "\n"))
}

// State renders a session snapshot
func (r *Renderer) State(st session.State) string {
	switch st.Status {
	case session.StatusSuccess:
		if st.Result != nil {
			return r.Result(*st.Result)
		}
	case session.StatusFailed:
		return r.Failure(st.Message)
	case session.StatusLoading:
		return r.styles.muted.Render("Analyzing...")
	}
	return r.styles.muted.Render("Ready.")
}

// Failure renders a user-facing failure message
func (r *Renderer) Failure(msg string) string {
	return r.styles.failure.Render("✗ " + msg)
}

// Entry renders one history entry with its result
func (r *Renderer) Entry(e model.HistoryEntry) string {
	header := fmt.Sprintf("%s  %s  %s",
		r.styles.label.Render(e.ID),
		r.styles.body.Render(string(e.Mode)),
		r.styles.label.Render(formatTime(e.Timestamp)),
	)
	return header + "\n" + r.styles.body.Render(Subject(e)) + "\n" + r.Result(e.Result)
}

// History renders the history list, newest first
func (r *Renderer) History(entries []model.HistoryEntry) string {
	if len(entries) == 0 {
		return r.styles.muted.Render("No history yet.")
	}

	rows := make([]string, 0, len(entries))
	for i, e := range entries {
		verdict := r.styles.verdict(e.Result).Width(28).Render(e.Result.Verdict())
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			r.styles.label.Width(4).Render(fmt.Sprintf("%d.", i+1)),
			r.styles.body.Width(7).Render(string(e.Mode)),
			verdict,
			r.styles.body.Width(6).Render(fmt.Sprintf("%d%%", e.Result.Score())),
			r.styles.body.Render(truncate(Subject(e), r.width-50)),
		))
		rows = append(rows, r.styles.label.Render("    "+e.ID+"  "+formatTime(e.Timestamp)))
	}
	return strings.Join(rows, "\n")
}

// Batch renders batch results in input order
func (r *Renderer) Batch(results []*worker.CheckResult) string {
	var sb strings.Builder
	failed := 0
	for _, res := range results {
		fmt.Fprintf(&sb, "%s %s\n", r.styles.label.Render(fmt.Sprintf("[%d]", res.Index+1)), r.styles.body.Render(truncate(res.Claim, r.width-8)))
		if res.Error != nil {
			failed++
			sb.WriteString("    " + r.Failure(session.FailureMessage(res.Error)) + "\n")
			continue
		}
		fmt.Fprintf(&sb, "    %s  %s\n", r.styles.verdict(*res.Result).Render(res.Result.Verdict()), ScoreBar(res.Result.Score(), 10))
	}
	fmt.Fprintf(&sb, "\n%s", r.styles.muted.Render(fmt.Sprintf("%d checked, %d failed", len(results), failed)))
	return sb.String()
}

func (r *Renderer) field(name, value string) string {
	return r.styles.label.Width(12).Render(name+":") + value
}

func (r *Renderer) markdown(text string) string {
	if r.md == nil {
		return r.styles.body.Render(text)
	}
	out, err := r.md.Render(text)
	if err != nil {
		return r.styles.body.Render(text)
	}
	return strings.Trim(out, "\n")
}

// ScoreBar draws a fixed-width bar for a 0-100 score
func ScoreBar(score, width int) string {
	score = max(0, min(100, score))
	filled := score * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %d%%", score)
}

// Subject is the text shown for an entry: the query, else the file name
func Subject(e model.HistoryEntry) string {
	switch {
	case strings.TrimSpace(e.Query) != "":
		return e.Query
	case e.FileName != "":
		return "📎 " + e.FileName
	default:
		return "(empty)"
	}
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	if n <= 1 {
		n = 20
	}
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}

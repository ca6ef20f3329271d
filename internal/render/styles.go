package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/veritas/internal/model"
)

// Palette is the color set for one theme
type Palette struct {
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Accent     lipgloss.Color
	Positive   lipgloss.Color
	Negative   lipgloss.Color
	Uncertain  lipgloss.Color
}

// PaletteFor returns the palette of theme
func PaletteFor(theme model.Theme) Palette {
	if theme == model.ThemeLight {
		return Palette{
			Foreground: lipgloss.Color("#101F38"),
			Muted:      lipgloss.Color("#5b6677"),
			Border:     lipgloss.Color("#c4cad3"),
			Accent:     lipgloss.Color("#1565C0"),
			Positive:   lipgloss.Color("#2E7D32"),
			Negative:   lipgloss.Color("#C62828"),
			Uncertain:  lipgloss.Color("#B26A00"),
		}
	}
	return Palette{
		Foreground: lipgloss.Color("#f2f2f2"),
		Muted:      lipgloss.Color("#8a96a8"),
		Border:     lipgloss.Color("#2a3850"),
		Accent:     lipgloss.Color("#64B5F6"),
		Positive:   lipgloss.Color("#8BC34A"),
		Negative:   lipgloss.Color("#e53935"),
		Uncertain:  lipgloss.Color("#FFC107"),
	}
}

// styles holds the lipgloss styles derived from a palette
type styles struct {
	card    lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	body    lipgloss.Style
	muted   lipgloss.Style
	failure lipgloss.Style
	palette Palette
}

func newStyles(p Palette, width int) styles {
	return styles{
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1).
			Width(width),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),
		label: lipgloss.NewStyle().
			Foreground(p.Muted),
		body: lipgloss.NewStyle().
			Foreground(p.Foreground),
		muted: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),
		failure: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Negative),
		palette: p,
	}
}

// verdict colors a verdict label by its polarity
func (s styles) verdict(res model.Result) lipgloss.Style {
	color := s.palette.Uncertain
	switch {
	case res.Fact != nil && res.Fact.Result == model.FactTrue,
		res.Legal != nil && res.Legal.Verdict == model.LegalOriginal:
		color = s.palette.Positive
	case res.Fact != nil && res.Fact.Result == model.FactFalse,
		res.Legal != nil && res.Legal.Verdict == model.LegalFake:
		color = s.palette.Negative
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

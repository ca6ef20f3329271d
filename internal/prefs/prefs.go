package prefs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/store"
)

// Preferences holds the persisted display theme
type Preferences struct {
	mu    sync.Mutex
	repo  *store.Repository[model.Theme]
	theme model.Theme
}

// New loads preferences from s. An unknown stored theme falls back to the default.
func New(s store.Store) *Preferences {
	repo := store.NewRepository(s, store.KeyTheme, func() model.Theme { return model.DefaultTheme })

	theme := repo.Load()
	if !theme.Valid() {
		theme = model.DefaultTheme
	}
	return &Preferences{repo: repo, theme: theme}
}

// ParseTheme parses a theme name (case-insensitive)
func ParseTheme(s string) (model.Theme, error) {
	t := model.Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q (supported: light, dark)", s)
	}
	return t, nil
}

// Theme returns the current theme
func (p *Preferences) Theme() model.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// SetTheme changes and persists the theme.
// The in-memory value changes even when the write fails.
func (p *Preferences) SetTheme(t model.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.theme = t
	return p.repo.Save(t)
}

// Toggle switches between light and dark and returns the new theme
func (p *Preferences) Toggle() (model.Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := model.ThemeDark
	if p.theme == model.ThemeDark {
		next = model.ThemeLight
	}
	p.theme = next
	return next, p.repo.Save(next)
}

package history

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/store"
	"go.uber.org/zap"
)

// DefaultLimit is the maximum number of entries kept
const DefaultLimit = 50

// ErrNotFound is returned when no entry has the requested id
var ErrNotFound = errors.New("history entry not found")

// Manager keeps the bounded, newest-first list of past analyses and persists
// it after every mutation. Storage failures are logged, never returned.
type Manager struct {
	mu      sync.RWMutex
	repo    *store.Repository[[]json.RawMessage]
	entries []model.HistoryEntry
	limit   int
	now     func() time.Time
	newID   func() string
}

// Option configures a Manager
type Option func(*Manager)

// WithLimit overrides DefaultLimit
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

// WithClock sets the time source used for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator sets the entry id generator
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates an empty manager backed by s. Call Load to read persisted entries.
func NewManager(s store.Store, opts ...Option) *Manager {
	m := &Manager{
		repo:  store.NewRepository(s, store.KeyHistory, func() []json.RawMessage { return nil }),
		limit: DefaultLimit,
		now:   time.Now,
		newID: NewID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID returns a time-ordered UUIDv7 string
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the in-memory list with the persisted one.
// Entries that fail to decode or whose result does not match their mode are dropped.
func (m *Manager) Load() []model.HistoryEntry {
	raw := m.repo.Load()

	entries := make([]model.HistoryEntry, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		var e model.HistoryEntry
		if err := json.Unmarshal(r, &e); err != nil || e.Validate() != nil {
			dropped++
			continue
		}
		entries = append(entries, e)
	}
	if dropped > 0 {
		zap.L().Warn("dropped invalid history entries", zap.Int("count", dropped))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(entries) > m.limit {
		entries = entries[:m.limit]
	}
	m.entries = entries
	return m.snapshot()
}

// Append prepends e, truncates to the limit and persists the list.
// Only an inconsistent entry is an error.
func (m *Manager) Append(e model.HistoryEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]model.HistoryEntry, 0, min(len(m.entries)+1, m.limit))
	entries = append(entries, e)
	for _, old := range m.entries {
		if len(entries) >= m.limit {
			break
		}
		entries = append(entries, old)
	}
	m.entries = entries
	m.persist()
	return nil
}

// Record builds an entry for a successful analysis and appends it
func (m *Manager) Record(sub model.Submission, res model.Result) (model.HistoryEntry, error) {
	e := model.HistoryEntry{
		ID:        m.newID(),
		Query:     sub.Query,
		FileName:  sub.FileName(),
		Result:    res,
		Mode:      sub.Mode,
		Timestamp: m.now().UnixMilli(),
	}
	if err := m.Append(e); err != nil {
		return model.HistoryEntry{}, err
	}
	return e, nil
}

// Clear removes every entry
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	m.persist()
	return nil
}

// Select returns the stored result of entry id
func (m *Manager) Select(id string) (model.Result, error) {
	e, ok := m.Get(id)
	if !ok {
		return model.Result{}, ErrNotFound
	}
	return e.Result, nil
}

// Get returns entry id
func (m *Manager) Get(id string) (model.HistoryEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.HistoryEntry{}, false
}

// Entries returns a copy of the list, newest first
func (m *Manager) Entries() []model.HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// Len returns the number of entries
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Limit returns the maximum number of entries kept
func (m *Manager) Limit() int {
	return m.limit
}

func (m *Manager) snapshot() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// persist writes the list; the caller holds m.mu
func (m *Manager) persist() {
	raw := make([]json.RawMessage, 0, len(m.entries))
	for _, e := range m.entries {
		data, err := json.Marshal(e)
		if err != nil {
			zap.L().Error("encode history entry", zap.String("id", e.ID), zap.Error(err))
			continue
		}
		raw = append(raw, data)
	}

	if err := m.repo.Save(raw); err != nil {
		zap.L().Error("persist history failed", zap.Int("entries", len(m.entries)), zap.Error(err))
	}
}

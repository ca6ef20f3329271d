package session

import (
	"context"
	"errors"
	"sync"

	"github.com/ppiankov/veritas/internal/history"
	"github.com/ppiankov/veritas/internal/llm"
	"github.com/ppiankov/veritas/internal/model"
	"go.uber.org/zap"
)

// Status is the phase of the current submission
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// User-facing failure messages
const (
	MessageServiceBusy = "Service busy, try again."
	MessageUnknown     = "An unknown error occurred."
)

// ErrEmptySubmission rejects a blank query with no attachment
var ErrEmptySubmission = &model.ValidationError{Field: "query", Message: "enter a query or attach a file"}

// State is a snapshot of what the user currently sees
type State struct {
	Status  Status        `json:"status"`
	Result  *model.Result `json:"result,omitempty"`
	EntryID string        `json:"entryId,omitempty"` // history entry backing Result
	Message string        `json:"message,omitempty"` // set when Failed
}

// Analyzer produces a result for one submission
type Analyzer interface {
	Analyze(ctx context.Context, sub model.Submission) (model.Result, error)
}

// History records successful analyses and looks them up for replay
type History interface {
	Record(sub model.Submission, res model.Result) (model.HistoryEntry, error)
	Get(id string) (model.HistoryEntry, bool)
}

// Session drives Idle -> Loading -> Success|Failed for one user.
// Each Submit, Reset and Select starts a new generation; a reply that
// arrives for an older generation is recorded in history but not shown.
type Session struct {
	analyzer Analyzer
	history  History

	mu         sync.Mutex
	state      State
	generation uint64
}

// New creates an idle session
func New(analyzer Analyzer, h History) *Session {
	return &Session{
		analyzer: analyzer,
		history:  h,
		state:    State{Status: StatusIdle},
	}
}

// State returns the current snapshot
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit analyzes sub and returns the resulting state.
// Only validation failures are returned as errors; analysis failures become a Failed state.
func (s *Session) Submit(ctx context.Context, sub model.Submission) (State, error) {
	if sub.Mode == model.ModeFact {
		sub.File = nil
	}
	if sub.IsEmpty() {
		return s.State(), ErrEmptySubmission
	}
	if !sub.Mode.Valid() {
		return s.State(), &model.ValidationError{Field: "mode", Message: "mode must be fact or legal"}
	}

	gen := s.begin(State{Status: StatusLoading})

	res, err := s.analyzer.Analyze(ctx, sub)
	if err == nil && (res.Mode != sub.Mode || res.Validate() != nil) {
		err = errors.New("analyzer returned a result for the wrong mode")
	}
	if err != nil {
		msg := FailureMessage(err)
		if msg == MessageUnknown {
			zap.L().Error("submission failed unexpectedly", zap.Error(err))
		}
		return s.publish(gen, State{Status: StatusFailed, Message: msg}), nil
	}

	next := State{Status: StatusSuccess, Result: &res}
	entry, err := s.history.Record(sub, res)
	if err != nil {
		zap.L().Error("history append rejected", zap.Error(err))
	} else {
		next.EntryID = entry.ID
	}

	return s.publish(gen, next), nil
}

// Reset returns to Idle without touching history
func (s *Session) Reset() State {
	s.begin(State{Status: StatusIdle})
	return s.State()
}

// Select replays a stored entry as the current result without calling the analyzer
func (s *Session) Select(id string) (State, error) {
	entry, ok := s.history.Get(id)
	if !ok {
		return s.State(), history.ErrNotFound
	}

	res := entry.Result
	s.begin(State{Status: StatusSuccess, Result: &res, EntryID: entry.ID})
	return s.State(), nil
}

// begin starts a new generation with state st
func (s *Session) begin(st State) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = st
	return s.generation
}

// publish sets st if gen is still current and returns the visible state
func (s *Session) publish(gen uint64, st State) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen == s.generation {
		s.state = st
	} else {
		zap.L().Debug("discarding stale reply", zap.Uint64("generation", gen), zap.Uint64("current", s.generation))
	}
	return s.state
}

// FailureMessage is the message shown to the user for a failed analysis.
// Causes stay in the logs.
func FailureMessage(err error) string {
	if llm.IsProviderError(err) {
		return MessageServiceBusy
	}
	return MessageUnknown
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ppiankov/veritas/internal/feedback"
	"github.com/ppiankov/veritas/internal/history"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/prefs"
	"go.uber.org/zap"
)

// HistoryResponse lists stored entries, newest first
type HistoryResponse struct {
	Entries []model.HistoryEntry `json:"entries"`
	Limit   int                  `json:"limit"`
}

// ThemeRequest sets the theme; "toggle" flips it
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ThemeResponse reports the current theme
type ThemeResponse struct {
	Theme model.Theme `json:"theme"`
}

// FeedbackResponse carries the mailto link for the client to open
type FeedbackResponse struct {
	Mailto string `json:"mailto"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sub, err := s.parseSubmission(w, r)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	st, err := s.session.Submit(r.Context(), sub)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.session.Reset())
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HistoryResponse{
		Entries: s.history.Entries(),
		Limit:   s.history.Limit(),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.history.Get(chi.URLParam(r, "entryID"))
	if !ok {
		respondError(w, http.StatusNotFound, "history entry not found")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleSelectEntry(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.Select(chi.URLParam(r, "entryID"))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ThemeResponse{Theme: s.prefs.Theme()})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	if req.Theme == "toggle" {
		_, err = s.prefs.Toggle()
	} else {
		theme, perr := prefs.ParseTheme(req.Theme)
		if perr != nil {
			respondError(w, http.StatusBadRequest, perr.Error())
			return
		}
		err = s.prefs.SetTheme(theme)
	}
	if err != nil {
		// the preference still applies for this process
		zap.L().Warn("persist theme failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, ThemeResponse{Theme: s.prefs.Theme()})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var fb model.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fb.Timestamp = time.Now()

	link, err := feedback.MailtoURL(s.opts.FeedbackRecipient, s.opts.FeedbackSubject, fb)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	zap.L().Info("feedback submitted", zap.Int("rating", fb.Rating))
	respondJSON(w, http.StatusOK, FeedbackResponse{Mailto: link})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case model.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"feedback-bot/internal/logger"
	"feedback-bot/internal/middleware"
	"feedback-bot/internal/models"
	"feedback-bot/internal/repository"
	"feedback-bot/internal/stats"

	"github.com/go-chi/chi/v5"
)

const (
	defaultWindowDays = 7
	maxWindowDays     = 365
)

type StatsReader interface {
	WindowStats(ctx context.Context, days int) (stats.Summary, error)
}

type FeedbackHandler struct {
	feedbackRepo repository.FeedbackRepository
	stats        StatsReader
}

func NewFeedbackHandler(feedbackRepo repository.FeedbackRepository, statsReader StatsReader) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackRepo: feedbackRepo,
		stats:        statsReader,
	}
}

// --- GET /api/stats ---

func (h *FeedbackHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	days, ok := windowDays(w, r)
	if !ok {
		return
	}

	summary, err := h.stats.WindowStats(r.Context(), days)
	if err != nil {
		logger.Error().Err(err).Int("days", days).Msg("failed to compute stats")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load statistics"})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// --- GET /api/feedback ---

func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	days, ok := windowDays(w, r)
	if !ok {
		return
	}

	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	records, err := h.feedbackRepo.FindSince(r.Context(), since)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list feedback")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load feedback"})
		return
	}
	if records == nil {
		records = []models.Feedback{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":     days,
		"feedback": records,
	})
}

// --- PATCH /api/feedback/{id}/resolve ---

func (h *FeedbackHandler) ResolveFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid feedback id"})
		return
	}

	err = h.feedbackRepo.MarkResolved(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "feedback not found"})
		return
	}
	if err != nil {
		logger.Error().Err(err).Uint64("feedback_id", id).Msg("failed to resolve feedback")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve feedback"})
		return
	}

	logger.Info().
		Uint64("feedback_id", id).
		Str("staff", middleware.GetStaff(r.Context())).
		Msg("feedback resolved")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"resolved": true,
	})
}

func windowDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultWindowDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxWindowDays {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 365"})
		return 0, false
	}
	return days, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

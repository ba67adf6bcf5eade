package handlers

import (
	"net/http"

	"feedback-bot/internal/logger"
	customMiddleware "feedback-bot/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the staff HTTP API. With an empty jwtSecret only the
// health check is served.
func NewRouter(feedbackHandler *FeedbackHandler, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "feedback-bot"})
	})

	if jwtSecret == "" {
		return r
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.StaffAuth(jwtSecret))

		r.Get("/stats", feedbackHandler.GetStats)
		r.Get("/feedback", feedbackHandler.ListFeedback)
		r.Patch("/feedback/{id}/resolve", feedbackHandler.ResolveFeedback)
	})

	return r
}

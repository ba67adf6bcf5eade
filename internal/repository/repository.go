package repository

import (
	"context"
	"time"

	"feedback-bot/internal/models"
)

// FeedbackRepository is the append-only feedback store. Implementations
// serialize writers themselves; callers may insert from many goroutines.
type FeedbackRepository interface {
	// EnsureSchema creates tables or indexes when absent. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error
	// Insert assigns ID and CreatedAt and writes the record atomically.
	Insert(ctx context.Context, feedback *models.Feedback) error
	// FindSince returns every record with CreatedAt >= since, in no particular order.
	FindSince(ctx context.Context, since time.Time) ([]models.Feedback, error)
	// MarkResolved is used by the staff resolution workflow only.
	MarkResolved(ctx context.Context, id uint64) error
}

var (
	_ FeedbackRepository = (*FeedbackRepo)(nil)
	_ FeedbackRepository = (*MongoFeedbackRepo)(nil)
)

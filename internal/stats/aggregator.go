package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"feedback-bot/internal/models"
)

// FeedbackReader is the part of the feedback store the aggregator needs.
type FeedbackReader interface {
	FindSince(ctx context.Context, since time.Time) ([]models.Feedback, error)
}

// Summary is the count and mean rating over a window.
type Summary struct {
	Days    int     `json:"days"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

type Aggregator struct {
	feedback FeedbackReader
	now      func() time.Time
}

func NewAggregator(feedback FeedbackReader) *Aggregator {
	return &Aggregator{feedback: feedback, now: time.Now}
}

// WindowStats summarizes feedback created within the trailing days-day
// window. The average is rounded to two decimals and is 0 for an empty window.
func (a *Aggregator) WindowStats(ctx context.Context, days int) (Summary, error) {
	if days <= 0 {
		return Summary{}, fmt.Errorf("window must be at least one day, got %d", days)
	}

	since := a.now().Add(-time.Duration(days) * 24 * time.Hour)
	records, err := a.feedback.FindSince(ctx, since)
	if err != nil {
		return Summary{}, err
	}

	return summarize(days, records), nil
}

func summarize(days int, records []models.Feedback) Summary {
	s := Summary{Days: days, Count: len(records)}
	if s.Count == 0 {
		return s
	}

	sum := 0
	for _, r := range records {
		sum += r.Rating
	}
	s.Average = math.Round(float64(sum)/float64(s.Count)*100) / 100
	return s
}

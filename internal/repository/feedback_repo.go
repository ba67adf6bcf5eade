package repository

import (
	"context"
	"sync"
	"time"

	"feedback-bot/internal/models"

	"gorm.io/gorm"
)

// FeedbackRepo stores feedback in a SQL database through gorm.
type FeedbackRepo struct {
	db      *gorm.DB
	writeMu sync.Mutex
	now     func() time.Time
}

func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo {
	return &FeedbackRepo{
		db:  db,
		now: time.Now,
	}
}

func (r *FeedbackRepo) EnsureSchema(ctx context.Context) error {
	return storageErr("migrate", r.db.WithContext(ctx).AutoMigrate(&models.Feedback{}))
}

func (r *FeedbackRepo) Insert(ctx context.Context, feedback *models.Feedback) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	feedback.ID = 0
	feedback.CreatedAt = r.now().UTC().Truncate(time.Microsecond)
	if err := r.db.WithContext(ctx).Create(feedback).Error; err != nil {
		feedback.ID = 0
		return storageErr("insert", err)
	}
	return nil
}

func (r *FeedbackRepo) FindSince(ctx context.Context, since time.Time) ([]models.Feedback, error) {
	var records []models.Feedback
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since.UTC()).
		Find(&records).Error
	if err != nil {
		return nil, storageErr("query", err)
	}
	return records, nil
}

func (r *FeedbackRepo) MarkResolved(ctx context.Context, id uint64) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	result := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("id = ?", id).
		Update("resolved", true)
	if result.Error != nil {
		return storageErr("resolve", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package models

import "time"

// Feedback is one completed guest conversation. Records are append-only;
// only the staff resolution workflow flips Resolved.
type Feedback struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" bson:"_id" json:"id"`
	UserID    *int64    `gorm:"index" bson:"user_id,omitempty" json:"user_id,omitempty"`
	Username  string    `bson:"username,omitempty" json:"username,omitempty"`
	Rating    int       `gorm:"not null" bson:"rating" json:"rating"`
	Comment   string    `gorm:"not null;default:''" bson:"comment" json:"comment"`
	PromoCode string    `gorm:"size:16;index" bson:"promo_code" json:"promo_code"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `gorm:"index" bson:"created_at" json:"created_at"`
	Resolved  bool      `gorm:"not null;default:false" bson:"resolved" json:"resolved"`
}

func (Feedback) TableName() string {
	return "feedback"
}

const (
	MinRating = 1
	MaxRating = 5
)

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

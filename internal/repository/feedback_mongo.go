package repository

import (
	"context"
	"errors"
	"time"

	"feedback-bot/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const feedbackCounterID = "feedback"

// MongoFeedbackRepo stores feedback in MongoDB. Numeric ids come from a
// counters document so they stay monotonic like an autoincrement column.
type MongoFeedbackRepo struct {
	collection *mongo.Collection
	counters   *mongo.Collection
	now        func() time.Time
}

func NewMongoFeedbackRepo(db *mongo.Database) *MongoFeedbackRepo {
	return &MongoFeedbackRepo{
		collection: db.Collection("feedback"),
		counters:   db.Collection("counters"),
		now:        time.Now,
	}
}

// EnsureSchema creates the indexes used by window queries and lookups.
func (r *MongoFeedbackRepo) EnsureSchema(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "promo_code", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return storageErr("ensure indexes", err)
}

func (r *MongoFeedbackRepo) nextID(ctx context.Context) (uint64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": feedbackCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return uint64(counter.Seq), nil
}

func (r *MongoFeedbackRepo) Insert(ctx context.Context, feedback *models.Feedback) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return storageErr("allocate id", err)
	}

	feedback.ID = id
	feedback.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, feedback); err != nil {
		feedback.ID = 0
		return storageErr("insert", err)
	}
	return nil
}

func (r *MongoFeedbackRepo) FindSince(ctx context.Context, since time.Time) ([]models.Feedback, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"created_at": bson.M{"$gte": since.UTC()}})
	if err != nil {
		return nil, storageErr("query", err)
	}

	var records []models.Feedback
	if err := cursor.All(ctx, &records); err != nil {
		return nil, storageErr("query", err)
	}
	return records, nil
}

func (r *MongoFeedbackRepo) MarkResolved(ctx context.Context, id uint64) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": int64(id)}, bson.M{
		"$set": bson.M{"resolved": true},
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return storageErr("resolve", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

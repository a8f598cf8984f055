package repositories

import (
	"context"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository stores the append-only activity log
type ActivityRepository interface {
	RecordActivity(ctx context.Context, activity *models.Activity) error
	GetActivitiesByUserID(ctx context.Context, userID string, limit int64) ([]models.Activity, error)
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("activities")}
}

// EnsureIndexes creates the lookup indexes used by GetActivitiesByUserID.
func (r *MongoActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "target_user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return errors.Wrap(err, "activityRepo.EnsureIndexes")
}

func (r *MongoActivityRepository) RecordActivity(ctx context.Context, activity *models.Activity) error {
	_, err := r.collection.InsertOne(ctx, activity)
	return errors.Wrap(err, "activityRepo.RecordActivity")
}

// GetActivitiesByUserID returns what userID did or had done to them, newest first.
func (r *MongoActivityRepository) GetActivitiesByUserID(ctx context.Context, userID string, limit int64) ([]models.Activity, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"actor_id": userID},
		bson.M{"target_user_id": userID},
	}}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "activityRepo.GetActivitiesByUserID.Find")
	}
	defer cursor.Close(ctx)

	activities := []models.Activity{}
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, errors.Wrap(err, "activityRepo.GetActivitiesByUserID.Decode")
	}
	return activities, nil
}

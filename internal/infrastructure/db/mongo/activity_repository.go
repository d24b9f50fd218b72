package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

const activityCollection = "console_activity"

// ActivityRepository persists the console's activity trail (normalized
// notices, guard denials, session lifecycle events) to MongoDB.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) ports.ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

type activityDoc struct {
	ID       string    `bson:"_id"`
	Severity string    `bson:"severity"`
	Summary  string    `bson:"summary"`
	Detail   string    `bson:"detail"`
	Source   string    `bson:"source,omitempty"`
	At       time.Time `bson:"at"`
}

// RecordNotice appends one notice to the activity trail.
func (r *ActivityRepository) RecordNotice(ctx context.Context, notice *domain.Notice) error {
	doc := activityDoc{
		ID:       notice.ID,
		Severity: string(notice.Severity),
		Summary:  notice.Summary,
		Detail:   notice.Detail,
		Source:   notice.Source,
		At:       notice.At.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentNotices returns the newest entries, most recent first.
func (r *ActivityRepository) RecentNotices(ctx context.Context, limit int64) ([]domain.Notice, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []activityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	notices := make([]domain.Notice, 0, len(docs))
	for _, d := range docs {
		notices = append(notices, domain.Notice{
			ID:       d.ID,
			Severity: domain.Severity(d.Severity),
			Summary:  d.Summary,
			Detail:   d.Detail,
			Source:   d.Source,
			At:       d.At,
		})
	}
	return notices, nil
}
